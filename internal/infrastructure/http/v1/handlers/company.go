package handlers

import (
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/infrastructure/http/v1/dto"
)

// CompanyHandler handles HTTP requests for Companies.
type CompanyHandler = CatalogHandler[
	*company.Company,
	dto.CreateCompanyRequest,
	dto.UpdateCompanyRequest,
]

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(base *BaseHandler, service *company.Service) *CompanyHandler {
	config := CatalogHandlerConfig[
		*company.Company,
		dto.CreateCompanyRequest,
		dto.UpdateCompanyRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "company",

		// Map Create Request
		MapCreateDTO: func(req dto.CreateCompanyRequest) *company.Company {
			return req.ToEntity()
		},

		// Map Update Request
		MapUpdateDTO: func(req dto.UpdateCompanyRequest, existing *company.Company) *company.Company {
			req.ApplyTo(existing)
			return existing
		},

		// Map Response
		MapToDTO: func(entity *company.Company) any {
			return dto.FromCompany(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
