package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/domain/reports"
	"plantops/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetOnHand handles GET /reports/on-hand
func (h *ReportsHandler) GetOnHand(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.OnHandReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	companyID, err := id.Parse(req.CompanyID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid companyId format"))
		return
	}

	filter := reports.OnHandFilter{
		CompanyID:   companyID,
		ExcludeZero: req.ExcludeZero == nil || *req.ExcludeZero,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}
	filter.ZoneIDs = parseIDList(req.ZoneIDs)
	filter.ItemIDs = parseIDList(req.ItemIDs)

	report, err := h.service.GetOnHand(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromOnHandReport(report))
}

// GetTurnover handles GET /reports/turnover
func (h *ReportsHandler) GetTurnover(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TurnoverReportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	companyID, err := id.Parse(req.CompanyID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid companyId format"))
		return
	}

	fromDate, err := time.Parse(time.RFC3339, req.FromDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
		return
	}

	toDate, err := time.Parse(time.RFC3339, req.ToDate)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
		return
	}

	filter := reports.TurnoverFilter{
		CompanyID: companyID,
		FromDate:  fromDate,
		ToDate:    toDate,
		Limit:     req.Limit,
		Offset:    req.Offset,
	}
	filter.ZoneIDs = parseIDList(req.ZoneIDs)
	filter.ItemIDs = parseIDList(req.ItemIDs)

	report, err := h.service.GetTurnover(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTurnoverReport(report))
}

// GetProductionVariance handles GET /reports/production-variance
func (h *ReportsHandler) GetProductionVariance(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ProductionVarianceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.Error(c, apperror.NewValidation(err.Error()))
		return
	}

	companyID, err := id.Parse(req.CompanyID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid companyId format"))
		return
	}

	filter := reports.ProductionVarianceFilter{
		CompanyID:       companyID,
		FinishedItemIDs: req.FinishedItemIDs,
		MachineIDs:      req.MachineIDs,
		Limit:           req.Limit,
		Offset:          req.Offset,
	}

	if req.FromDate != nil {
		t, err := time.Parse(time.RFC3339, *req.FromDate)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
			return
		}
		filter.FromDate = &t
	}
	if req.ToDate != nil {
		t, err := time.Parse(time.RFC3339, *req.ToDate)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
			return
		}
		filter.ToDate = &t
	}

	report, err := h.service.GetProductionVariance(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProductionVarianceReport(report))
}

// RegisterRoutes registers report routes.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/on-hand", h.GetOnHand)
	rg.GET("/turnover", h.GetTurnover)
	rg.GET("/production-variance", h.GetProductionVariance)
}

// parseIDList parses a list of string IDs, skipping invalid ones.
func parseIDList(raw []string) []id.ID {
	if len(raw) == 0 {
		return nil
	}
	out := make([]id.ID, 0, len(raw))
	for _, s := range raw {
		if parsed, err := id.Parse(s); err == nil {
			out = append(out, parsed)
		}
	}
	return out
}
