package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/domain"
	"plantops/internal/domain/documents/goods_receipt"
	"plantops/internal/infrastructure/http/v1/dto"
)

// GoodsReceiptHandler handles HTTP requests for GoodsReceipt documents.
type GoodsReceiptHandler struct {
	*BaseDocumentHandler[*goods_receipt.GoodsReceipt, dto.CreateGoodsReceiptRequest, dto.UpdateGoodsReceiptRequest]
	service *goods_receipt.Service
}

// NewGoodsReceiptHandler creates a new goods receipt handler.
func NewGoodsReceiptHandler(base *BaseHandler, service *goods_receipt.Service) *GoodsReceiptHandler {
	cfg := BaseDocumentHandlerConfig[*goods_receipt.GoodsReceipt, dto.CreateGoodsReceiptRequest, dto.UpdateGoodsReceiptRequest]{
		Service:    service,
		EntityName: "goods-receipt",
		MapCreateDTO: func(req dto.CreateGoodsReceiptRequest) *goods_receipt.GoodsReceipt {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateGoodsReceiptRequest, existing *goods_receipt.GoodsReceipt) *goods_receipt.GoodsReceipt {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(entity *goods_receipt.GoodsReceipt) any {
			return dto.FromGoodsReceipt(entity)
		},
		IsPostImmediately: func(req dto.CreateGoodsReceiptRequest) bool {
			return req.PostImmediately
		},
	}

	return &GoodsReceiptHandler{
		BaseDocumentHandler: NewBaseDocumentHandler(base, cfg),
		service:             service,
	}
}

// List handles GET /document/goods-receipt - list with filtering.
func (h *GoodsReceiptHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := goods_receipt.ListFilter{
		ListFilter: domain.DefaultListFilter(),
	}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "date DESC")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if supplier := c.Query("supplierName"); supplier != "" {
		filter.SupplierName = &supplier
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

	h.respondList(c, result)
}

// Copy handles POST /document/goods-receipt/:id/copy
func (h *GoodsReceiptHandler) Copy(c *gin.Context) {
	ctx := c.Request.Context()

	docID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	source, err := h.service.GetByID(ctx, docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	// Copy keeps supplier and lines but gets a fresh number and date
	copy := goods_receipt.NewGoodsReceipt(source.CompanyID, source.ZoneID)
	copy.Date = time.Now().UTC()
	copy.SupplierName = source.SupplierName
	copy.Comment = source.Comment

	for _, line := range source.Lines {
		copy.AddLine(line.ItemID, line.Quantity, line.UnitPrice)
	}

	if err := h.service.Create(ctx, copy); err != nil {
		h.Error(c, err)
		return
	}

	response := dto.FromGoodsReceipt(copy)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", response)
	c.JSON(http.StatusCreated, response)
}

// RegisterRoutes registers goods receipt routes.
func (h *GoodsReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	h.BaseDocumentHandler.RegisterRoutes(rg)
	rg.GET("", h.List)
	rg.POST("/:id/copy", h.Copy)
}

// respondList sends paginated list response.
func (h *GoodsReceiptHandler) respondList(c *gin.Context, result domain.ListResult[*goods_receipt.GoodsReceipt]) {
	items := make([]*dto.GoodsReceiptResponse, len(result.Items))
	for i, doc := range result.Items {
		items[i] = dto.FromGoodsReceipt(doc)
	}

	c.JSON(http.StatusOK, dto.GoodsReceiptListResponse{
		Items:      items,
		TotalCount: int(result.TotalCount),
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
