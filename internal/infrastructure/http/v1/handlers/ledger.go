package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/domain/ledger"
	"plantops/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles HTTP requests for the stock ledger.
type LedgerHandler struct {
	*BaseHandler
	recorder *ledger.Service
}

// NewLedgerHandler creates a new stock ledger handler.
func NewLedgerHandler(base *BaseHandler, recorder *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		recorder:    recorder,
	}
}

// RecordMovement handles POST /ledger/movements
func (h *LedgerHandler) RecordMovement(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	if !h.CheckCompanyAccess(c, in.CompanyID.String()) {
		return
	}

	movement, err := h.recorder.Record(ctx, in)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.FromStockMovement(*movement)
	h.CompleteIdempotency(c, http.StatusCreated, "application/json", resp)
	c.JSON(http.StatusCreated, resp)
}

// Transfer handles POST /ledger/transfers
func (h *LedgerHandler) Transfer(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.TransferRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	if !h.CheckCompanyAccess(c, in.CompanyID.String()) {
		return
	}

	if err := h.recorder.Transfer(ctx, in); err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.SuccessResponse{Success: true, Message: "transfer recorded"}
	h.CompleteIdempotency(c, http.StatusOK, "application/json", resp)
	c.JSON(http.StatusOK, resp)
}

// GetBalance handles GET /ledger/balances/:companyId/:itemId/:zoneId
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()

	companyID, err := id.Parse(c.Param("companyId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid companyId format"))
		return
	}
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}
	zoneID, err := id.Parse(c.Param("zoneId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid zoneId format"))
		return
	}

	if !h.CheckCompanyAccess(c, companyID.String()) {
		return
	}

	balance, err := h.recorder.GetBalance(ctx, companyID, itemID, zoneID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStockBalance(balance))
}

// ListBalances handles GET /ledger/balances
func (h *LedgerHandler) ListBalances(c *gin.Context) {
	ctx := c.Request.Context()

	var filter ledger.BalanceFilter
	filter.ExcludeZero = c.Query("excludeZero") != "false"

	if companyStr := c.Query("companyId"); companyStr != "" {
		parsed, err := id.Parse(companyStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid companyId format"))
			return
		}
		filter.CompanyID = &parsed
	}

	if zoneStr := c.Query("zoneId"); zoneStr != "" {
		parsed, err := id.Parse(zoneStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid zoneId format"))
			return
		}
		filter.ZoneID = &parsed
	}

	if itemStr := c.Query("itemId"); itemStr != "" {
		parsed, err := id.Parse(itemStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemIDs = []id.ID{parsed}
	}

	balances, err := h.recorder.ListBalances(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockBalanceResponse, len(balances))
	for i, b := range balances {
		items[i] = dto.FromStockBalance(b)
	}

	c.JSON(http.StatusOK, dto.StockBalanceListResponse{Items: items})
}

// ListMovements handles GET /ledger/movements
func (h *LedgerHandler) ListMovements(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if companyStr := c.Query("companyId"); companyStr != "" {
		parsed, err := id.Parse(companyStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid companyId format"))
			return
		}
		filter.CompanyID = &parsed
	}

	if itemStr := c.Query("itemId"); itemStr != "" {
		parsed, err := id.Parse(itemStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid itemId format"))
			return
		}
		filter.ItemID = &parsed
	}

	if zoneStr := c.Query("zoneId"); zoneStr != "" {
		parsed, err := id.Parse(zoneStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid zoneId format"))
			return
		}
		filter.ZoneID = &parsed
	}

	if dirStr := c.Query("direction"); dirStr != "" {
		dir := entity.Direction(dirStr)
		filter.Direction = &dir
	}

	if typeStr := c.Query("movementType"); typeStr != "" {
		mt := entity.MovementType(typeStr)
		filter.MovementType = &mt
	}

	if fromStr := c.Query("fromDate"); fromStr != "" {
		parsed, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid fromDate format, expected RFC3339"))
			return
		}
		filter.FromDate = &parsed
	}

	if toStr := c.Query("toDate"); toStr != "" {
		parsed, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid toDate format, expected RFC3339"))
			return
		}
		filter.ToDate = &parsed
	}

	movements, err := h.recorder.ListMovements(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockMovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromStockMovement(m)
	}

	c.JSON(http.StatusOK, dto.StockMovementListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

// CheckConsistency handles GET /ledger/consistency/:companyId/:itemId/:zoneId
func (h *LedgerHandler) CheckConsistency(c *gin.Context) {
	ctx := c.Request.Context()

	companyID, err := id.Parse(c.Param("companyId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid companyId format"))
		return
	}
	itemID, err := id.Parse(c.Param("itemId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid itemId format"))
		return
	}
	zoneID, err := id.Parse(c.Param("zoneId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid zoneId format"))
		return
	}

	if !h.CheckCompanyAccess(c, companyID.String()) {
		return
	}

	ok, err := h.recorder.CheckConsistency(ctx, companyID, itemID, zoneID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConsistencyResponse{Consistent: ok})
}
