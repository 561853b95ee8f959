package handlers

import (
	"plantops/internal/domain/catalogs/employee"
	"plantops/internal/infrastructure/http/v1/dto"
)

// EmployeeHTTPHandler is an alias to shorten generic signatures.
type EmployeeHTTPHandler = CatalogHandler[
	*employee.Employee,
	dto.CreateEmployeeRequest,
	dto.UpdateEmployeeRequest,
]

// NewEmployeeHandler wires the generic catalog handler to the employee service.
func NewEmployeeHandler(
	base *BaseHandler,
	service *employee.Service,
) *EmployeeHTTPHandler {

	config := CatalogHandlerConfig[
		*employee.Employee,
		dto.CreateEmployeeRequest,
		dto.UpdateEmployeeRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "employee",

		MapCreateDTO: func(req dto.CreateEmployeeRequest) *employee.Employee {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateEmployeeRequest, existing *employee.Employee) *employee.Employee {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *employee.Employee) any {
			return dto.FromEmployee(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
