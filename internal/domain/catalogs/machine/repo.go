package machine

import (
	"plantops/internal/domain"
)

// Repository defines the interface for Machine persistence.
type Repository interface {
	domain.CatalogRepository[*Machine]
}
