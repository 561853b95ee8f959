package handlers

import (
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/infrastructure/http/v1/dto"
)

// ItemHTTPHandler is an alias to shorten generic signatures.
type ItemHTTPHandler = CatalogHandler[
	*item.Item,
	dto.CreateItemRequest,
	dto.UpdateItemRequest,
]

// NewItemHandler wires the generic catalog handler to the item service.
func NewItemHandler(
	base *BaseHandler,
	service *item.Service,
) *ItemHTTPHandler {

	config := CatalogHandlerConfig[
		*item.Item,
		dto.CreateItemRequest,
		dto.UpdateItemRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "item",

		MapCreateDTO: func(req dto.CreateItemRequest) *item.Item {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateItemRequest, existing *item.Item) *item.Item {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *item.Item) any {
			return dto.FromItem(entity)
		},
	}

	return NewCatalogHandler(base, config)
}
