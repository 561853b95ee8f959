package catalog_repo

import (
	"plantops/internal/domain/catalogs/employee"
	"plantops/internal/infrastructure/storage/postgres"
)

const employeeTable = "cat_employees"

// EmployeeRepo implements employee.Repository.
type EmployeeRepo struct {
	*BaseCatalogRepo[*employee.Employee]
}

// NewEmployeeRepo creates a new employee repository.
func NewEmployeeRepo() *EmployeeRepo {
	return &EmployeeRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			employeeTable,
			postgres.ExtractDBColumns[employee.Employee](),
			func() *employee.Employee { return &employee.Employee{} },
		),
	}
}
