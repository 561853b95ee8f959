package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/domain/production"
	"plantops/internal/infrastructure/http/v1/dto"
)

// ProductionHandler handles HTTP requests for production logs.
type ProductionHandler struct {
	*BaseHandler
	service *production.Service
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(base *BaseHandler, service *production.Service) *ProductionHandler {
	return &ProductionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Start handles POST /production/logs
func (h *ProductionHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.StartProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	if !h.CheckCompanyAccess(c, in.CompanyID) {
		return
	}

	log, err := h.service.Start(ctx, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromProductionLog(log)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Close handles POST /production/logs/:id/close
func (h *ProductionHandler) Close(c *gin.Context) {
	ctx := c.Request.Context()

	logID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.CloseProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	log, err := h.service.Close(ctx, logID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromProductionLog(log)
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// Get handles GET /production/logs/:id
func (h *ProductionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	logID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	log, err := h.service.Get(ctx, logID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromProductionLog(log))
}

// List handles GET /production/logs
func (h *ProductionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := production.Filter{
		CompanyID: c.Query("companyId"),
		Limit:     h.ParseIntQuery(c, "limit", 50),
		Offset:    h.ParseIntQuery(c, "offset", 0),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := production.Status(statusStr)
		filter.Status = &status
	}

	if purposeStr := c.Query("purpose"); purposeStr != "" {
		purpose := production.Purpose(purposeStr)
		filter.Purpose = &purpose
	}

	if itemStr := c.Query("finishedItemId"); itemStr != "" {
		filter.FinishedItemID = &itemStr
	}

	if machineStr := c.Query("machineId"); machineStr != "" {
		filter.MachineID = &machineStr
	}

	if fromStr := c.Query("startedFrom"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid startedFrom format, expected RFC3339"))
			return
		}
		filter.StartedFrom = &parsed
	}

	if toStr := c.Query("startedTo"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid startedTo format, expected RFC3339"))
			return
		}
		filter.StartedTo = &parsed
	}

	logs, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]*dto.ProductionLogResponse, len(logs))
	for i, log := range logs {
		items[i] = dto.FromProductionLog(log)
	}

	c.JSON(http.StatusOK, dto.ProductionLogListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}
