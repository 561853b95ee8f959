package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plantops/internal/core/id"
	"plantops/internal/domain"
	"plantops/internal/domain/documents/delivery"
	"plantops/internal/infrastructure/http/v1/dto"
)

// DeliveryHandler handles HTTP requests for Delivery documents.
type DeliveryHandler struct {
	*BaseDocumentHandler[*delivery.Delivery, dto.CreateDeliveryRequest, dto.UpdateDeliveryRequest]
	service *delivery.Service
}

// NewDeliveryHandler creates a new delivery handler.
func NewDeliveryHandler(base *BaseHandler, service *delivery.Service) *DeliveryHandler {
	cfg := BaseDocumentHandlerConfig[*delivery.Delivery, dto.CreateDeliveryRequest, dto.UpdateDeliveryRequest]{
		Service:    service,
		EntityName: "delivery",
		MapCreateDTO: func(req dto.CreateDeliveryRequest) *delivery.Delivery {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateDeliveryRequest, existing *delivery.Delivery) *delivery.Delivery {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *delivery.Delivery) any {
			return dto.FromDelivery(entity)
		},
		IsPostImmediately: func(req dto.CreateDeliveryRequest) bool {
			return req.PostImmediately
		},
	}

	return &DeliveryHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/delivery - list with filtering.
func (h *DeliveryHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := delivery.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if kind := c.Query("kind"); kind != "" {
		k := delivery.Kind(kind)
		filter.Kind = &k
	}

	if customer := c.Query("customerName"); customer != "" {
		filter.CustomerName = &customer
	}

	if zoneID := c.Query("zoneId"); zoneID != "" {
		parsed, err := id.Parse(zoneID)
		if err == nil {
			filter.ZoneID = &parsed
		}
	}

	if posted := c.Query("posted"); posted != "" {
		val := posted == "true"
		filter.Posted = &val
	}

	if dateFrom := c.Query("dateFrom"); dateFrom != "" {
		if parsed, err := time.Parse(time.RFC3339, dateFrom); err == nil {
			filter.DateFrom = &parsed
		}
	}

	if dateTo := c.Query("dateTo"); dateTo != "" {
		if parsed, err := time.Parse(time.RFC3339, dateTo); err == nil {
			filter.DateTo = &parsed
		}
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.DeliveryResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromDelivery(doc)
	}

	c.JSON(http.StatusOK, dto.DeliveryListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// RegisterRoutes registers delivery routes.
func (h *DeliveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.BaseDocumentHandler.RegisterRoutes(rg)
	rg.GET("", h.List)
}
