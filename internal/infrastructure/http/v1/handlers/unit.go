package handlers

import (
	"plantops/internal/domain/catalogs/unit"
	"plantops/internal/infrastructure/http/v1/dto"
)

// UnitHTTPHandler is an alias to shorten generic signatures.
type UnitHTTPHandler = CatalogHandler[
	*unit.Unit,
	dto.CreateUnitRequest,
	dto.UpdateUnitRequest,
]

// NewUnitHandler wires the generic catalog handler to the unit service.
func NewUnitHandler(
	base *BaseHandler,
	service *unit.Service,
) *UnitHTTPHandler {

	config := CatalogHandlerConfig[
		*unit.Unit,
		dto.CreateUnitRequest,
		dto.UpdateUnitRequest,
	]{
			Service:    service.CatalogService,
		EntityName: "unit",

			MapCreateDTO: func(req dto.CreateUnitRequest) *unit.Unit {
			return req.ToEntity()
		},

			MapUpdateDTO: func(req dto.UpdateUnitRequest, existing *unit.Unit) *unit.Unit {
			req.ApplyTo(existing)
			return existing
		},

			MapToDTO: func(entity *unit.Unit) any {
			return dto.FromUnit(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
