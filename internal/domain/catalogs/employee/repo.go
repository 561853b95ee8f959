package employee

import (
	"plantops/internal/domain"
)

// Repository defines the interface for Employee persistence.
type Repository interface {
	domain.CatalogRepository[*Employee]
}
