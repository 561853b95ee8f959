package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plantops/internal/core/apperror"
	"plantops/internal/domain/bom"
	"plantops/internal/infrastructure/http/v1/dto"
)

// BOMHandler extends the generic catalog handler with recipe-specific
// lookups: the active version for a finished item, and version history.
type BOMHandler struct {
	*CatalogHandler[*bom.BOM, dto.CreateBOMRequest, dto.UpdateBOMRequest]
	service *bom.Service
}

// NewBOMHandler wires the generic catalog handler to the BOM service.
func NewBOMHandler(base *BaseHandler, service *bom.Service) *BOMHandler {
	config := CatalogHandlerConfig[
		*bom.BOM,
		dto.CreateBOMRequest,
		dto.UpdateBOMRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "bom",

		MapCreateDTO: func(req dto.CreateBOMRequest) *bom.BOM {
			return req.ToEntity()
		},

		MapUpdateDTO: func(req dto.UpdateBOMRequest, existing *bom.BOM) *bom.BOM {
			req.ApplyTo(existing)
			return existing
		},

		MapToDTO: func(entity *bom.BOM) any {
			return dto.FromBOM(entity)
		},
	}

	return &BOMHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
	}
}

// GetActive handles GET /catalog/bom/active/:itemId - the currently active
// recipe version for a finished item.
func (h *BOMHandler) GetActive(c *gin.Context) {
	ctx := c.Request.Context()

	itemID := c.Param("itemId")
	if itemID == "" {
		h.Error(c, apperror.NewValidation("item id is required"))
		return
	}

	b, err := h.service.ResolveActive(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromBOM(b))
}

// ListVersions handles GET /catalog/bom/versions/:itemId - all recipe
// versions for a finished item, newest first.
func (h *BOMHandler) ListVersions(c *gin.Context) {
	ctx := c.Request.Context()

	itemID := c.Param("itemId")
	if itemID == "" {
		h.Error(c, apperror.NewValidation("item id is required"))
		return
	}

	versions, err := h.service.ListVersions(ctx, itemID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.BOMResponse, len(versions))
	for i, b := range versions {
		items[i] = dto.FromBOM(b)
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "totalCount": len(items)})
}
