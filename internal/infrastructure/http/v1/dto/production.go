package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/catalogs/employee"
	"plantops/internal/domain/production"
)

// --- Request DTOs for Production Logs ---

// CrewMemberRequest names one crew member at run start.
type CrewMemberRequest struct {
	EmployeeID string     `json:"employeeId" binding:"required"`
	Role       string     `json:"role,omitempty"`
	StartAt    *time.Time `json:"startAt,omitempty"`
}

// StartProductionRequest is the request body for starting a run.
type StartProductionRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
	Purpose   string `json:"purpose" binding:"required"`

	FinishedItemID   string `json:"finishedItemId,omitempty"`
	SalesOrderLineID string `json:"salesOrderLineId,omitempty"`

	MachineID  string          `json:"machineId" binding:"required"`
	PlannedQty decimal.Decimal `json:"plannedQty" binding:"required"`

	RawZoneID      string `json:"rawZoneId" binding:"required"`
	WIPZoneID      string `json:"wipZoneId" binding:"required"`
	FinishedZoneID string `json:"finishedZoneId" binding:"required"`
	ScrapZoneID    string `json:"scrapZoneId" binding:"required"`

	StartAt *time.Time          `json:"startAt,omitempty"`
	Crew    []CrewMemberRequest `json:"crew,omitempty"`
	Comment string              `json:"comment,omitempty"`
}

// ToInput converts the request into a service start input.
func (r *StartProductionRequest) ToInput() (production.StartInput, error) {
	in := production.StartInput{
		CompanyID:      r.CompanyID,
		Purpose:        production.Purpose(r.Purpose),
		FinishedItemID: r.FinishedItemID,
		MachineID:      r.MachineID,
		PlannedQty:     types.NewQuantityFromDecimal(r.PlannedQty),
		RawZoneID:      r.RawZoneID,
		WIPZoneID:      r.WIPZoneID,
		FinishedZoneID: r.FinishedZoneID,
		ScrapZoneID:    r.ScrapZoneID,
		StartAt:        r.StartAt,
		Comment:        r.Comment,
	}

	if r.SalesOrderLineID != "" {
		lineID, err := id.Parse(r.SalesOrderLineID)
		if err != nil {
			return in, apperror.NewValidation("invalid salesOrderLineId format")
		}
		in.SalesOrderLineID = &lineID
	}

	for _, cm := range r.Crew {
		in.Crew = append(in.Crew, production.CrewInput{
			EmployeeID: cm.EmployeeID,
			Role:       employee.Role(cm.Role),
			StartAt:    cm.StartAt,
		})
	}

	return in, nil
}

// RawConsumptionRequest reports actual raw usage for one close.
type RawConsumptionRequest struct {
	RawItemID string          `json:"rawItemId" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// CrewUpdateRequest sets an end time for one crew member.
type CrewUpdateRequest struct {
	EmployeeID string    `json:"employeeId" binding:"required"`
	EndAt      time.Time `json:"endAt" binding:"required"`
}

// CloseProductionRequest is the request body for a (possibly partial)
// close. Quantities are deltas for this close, not cumulative totals.
type CloseProductionRequest struct {
	GoodQty   decimal.Decimal `json:"goodQty"`
	RejectQty decimal.Decimal `json:"rejectQty"`
	ScrapQty  decimal.Decimal `json:"scrapQty"`

	RawConsumption []RawConsumptionRequest `json:"rawConsumption,omitempty"`
	CrewUpdates    []CrewUpdateRequest     `json:"crewUpdates,omitempty"`

	CloseAt *time.Time `json:"closeAt,omitempty"`
}

// ToInput converts the request into a service close input.
func (r *CloseProductionRequest) ToInput() production.CloseInput {
	in := production.CloseInput{
		GoodQty:   types.NewQuantityFromDecimal(r.GoodQty),
		RejectQty: types.NewQuantityFromDecimal(r.RejectQty),
		ScrapQty:  types.NewQuantityFromDecimal(r.ScrapQty),
		CloseAt:   r.CloseAt,
	}

	for _, rc := range r.RawConsumption {
		in.RawConsumption = append(in.RawConsumption, production.ConsumptionInput{
			RawItemID: rc.RawItemID,
			Quantity:  types.NewQuantityFromDecimal(rc.Quantity),
		})
	}

	for _, cu := range r.CrewUpdates {
		in.CrewUpdates = append(in.CrewUpdates, production.CrewUpdate{
			EmployeeID: cu.EmployeeID,
			EndAt:      cu.EndAt,
		})
	}

	return in
}

// --- Response DTOs for Production Logs ---

// CrewMemberResponse represents one crew assignment.
type CrewMemberResponse struct {
	LineID     string     `json:"lineId"`
	EmployeeID string     `json:"employeeId"`
	Role       string     `json:"role"`
	StartAt    time.Time  `json:"startAt"`
	EndAt      *time.Time `json:"endAt,omitempty"`
}

// ProductionLogResponse represents a production run.
type ProductionLogResponse struct {
	DocumentResponse

	Status  string `json:"status"`
	Purpose string `json:"purpose"`

	FinishedItemID   string  `json:"finishedItemId"`
	MachineID        string  `json:"machineId"`
	SalesOrderLineID *string `json:"salesOrderLineId,omitempty"`
	BOMID            *string `json:"bomId,omitempty"`

	RawZoneID      string `json:"rawZoneId"`
	WIPZoneID      string `json:"wipZoneId"`
	FinishedZoneID string `json:"finishedZoneId"`
	ScrapZoneID    string `json:"scrapZoneId"`

	PlannedQty decimal.Decimal `json:"plannedQty"`
	GoodQty    decimal.Decimal `json:"goodQty"`
	RejectQty  decimal.Decimal `json:"rejectQty"`
	ScrapQty   decimal.Decimal `json:"scrapQty"`
	OEEPct     float64         `json:"oeePct"`

	IssuedRawQty  decimal.Decimal `json:"issuedRawQty"`
	IssuedRawCost decimal.Decimal `json:"issuedRawCost"`

	ExpectedRawCost      decimal.Decimal `json:"expectedRawCost"`
	ActualRawCost        decimal.Decimal `json:"actualRawCost"`
	MaterialVarianceCost decimal.Decimal `json:"materialVarianceCost"`
	MaterialVariancePct  float64         `json:"materialVariancePct"`

	StartAt time.Time  `json:"startAt"`
	CloseAt *time.Time `json:"closeAt,omitempty"`

	Crew []CrewMemberResponse `json:"crew,omitempty"`
}

// FromProductionLog creates a response DTO from the domain model.
func FromProductionLog(log *production.ProductionLog) *ProductionLogResponse {
	resp := &ProductionLogResponse{
		DocumentResponse: FromDocument(log.Document),
		Status:           string(log.Status),
		Purpose:          string(log.Purpose),
		FinishedItemID:   log.FinishedItemID,
		MachineID:        log.MachineID,
		BOMID:            log.BOMID,
		RawZoneID:        log.RawZoneID,
		WIPZoneID:        log.WIPZoneID,
		FinishedZoneID:   log.FinishedZoneID,
		ScrapZoneID:      log.ScrapZoneID,
		PlannedQty:       log.PlannedQty.Decimal(),
		GoodQty:          log.GoodQty.Decimal(),
		RejectQty:        log.RejectQty.Decimal(),
		ScrapQty:         log.ScrapQty.Decimal(),
		OEEPct:           log.OEEPct,
		IssuedRawQty:     log.IssuedRawQty.Decimal(),
		IssuedRawCost:    log.IssuedRawCost,

		ExpectedRawCost:      log.ExpectedRawCost,
		ActualRawCost:        log.ActualRawCost,
		MaterialVarianceCost: log.MaterialVarianceCost,
		MaterialVariancePct:  log.MaterialVariancePct,

		StartAt: log.StartAt,
		CloseAt: log.CloseAt,
	}

	if log.SalesOrderLineID != nil {
		lineID := log.SalesOrderLineID.String()
		resp.SalesOrderLineID = &lineID
	}

	for _, cm := range log.Crew {
		resp.Crew = append(resp.Crew, CrewMemberResponse{
			LineID:     cm.LineID.String(),
			EmployeeID: cm.EmployeeID,
			Role:       string(cm.Role),
			StartAt:    cm.StartAt,
			EndAt:      cm.EndAt,
		})
	}

	return resp
}

// ProductionLogListResponse represents a list of production runs.
type ProductionLogListResponse struct {
	Items      []*ProductionLogResponse `json:"items"`
	TotalCount int                      `json:"totalCount"`
}
