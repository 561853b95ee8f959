package handlers

import (
	"plantops/internal/domain/catalogs/zone"
	"plantops/internal/infrastructure/http/v1/dto"
)

// ZoneHTTPHandler is an alias to shorten generic signatures.
type ZoneHTTPHandler = CatalogHandler[
	*zone.Zone,
	dto.CreateZoneRequest,
	dto.UpdateZoneRequest,
]

// NewZoneHandler wires the generic catalog handler to the zone service.
func NewZoneHandler(
	base *BaseHandler,
	service *zone.Service,
) *ZoneHTTPHandler {

	config := CatalogHandlerConfig[
		*zone.Zone,
		dto.CreateZoneRequest,
		dto.UpdateZoneRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "zone",

		// Map Create Request
		MapCreateDTO: func(req dto.CreateZoneRequest) *zone.Zone {
			return req.ToEntity()
		},

		// Map Update Request
		MapUpdateDTO: func(req dto.UpdateZoneRequest, existing *zone.Zone) *zone.Zone {
			req.ApplyTo(existing)
			return existing
		},

		// Map Response
		MapToDTO: func(entity *zone.Zone) any {
			return dto.FromZone(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
