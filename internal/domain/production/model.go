// Package production implements the production log lifecycle: a run is
// opened against a finished item, raw materials are issued into work in
// progress, and successive closes move output into finished and scrap
// stock until the planned quantity is exhausted.
package production

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/catalogs/employee"
)

// DocumentType identifies production logs in movement references.
const DocumentType = "PROD_LOG"

var oneHundred = decimal.NewFromInt(100)

// Status is the production log state.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// Purpose says what the run produces for.
type Purpose string

const (
	PurposeOrder Purpose = "ORDER" // tied to a sales-order line
	PurposeStock Purpose = "STOCK" // produce to stock
)

// ProductionLog is one production run.
// Created OPEN by the start operation; mutated only by close operations;
// flips to CLOSED exactly when cumulative output reaches the plan.
type ProductionLog struct {
	entity.Document

	Status  Status  `db:"status" json:"status"`
	Purpose Purpose `db:"purpose" json:"purpose"`

	// FinishedItemID is the item being produced
	FinishedItemID string `db:"finished_item_id" json:"finishedItemId"`

	// MachineID is the machine the run is scheduled on
	MachineID string `db:"machine_id" json:"machineId"`

	// SalesOrderLineID is set for ORDER runs
	SalesOrderLineID *id.ID `db:"sales_order_line_id" json:"salesOrderLineId,omitempty"`

	// BOMID is the bill of materials version resolved at start
	BOMID *string `db:"bom_id" json:"bomId,omitempty"`

	// Zones resolved at start; closes reuse them
	RawZoneID      string `db:"raw_zone_id" json:"rawZoneId"`
	WIPZoneID      string `db:"wip_zone_id" json:"wipZoneId"`
	FinishedZoneID string `db:"finished_zone_id" json:"finishedZoneId"`
	ScrapZoneID    string `db:"scrap_zone_id" json:"scrapZoneId"`

	PlannedQty types.Quantity `db:"planned_qty" json:"plannedQty"`

	// Cumulative output, monotonically increasing across closes
	GoodQty   types.Quantity `db:"good_qty" json:"goodQty"`
	RejectQty types.Quantity `db:"reject_qty" json:"rejectQty"`
	ScrapQty  types.Quantity `db:"scrap_qty" json:"scrapQty"`

	// OEEPct approximates equipment effectiveness as good / planned * 100
	OEEPct float64 `db:"oee_pct" json:"oeePct"`

	// Raw material issued at start, referenced to this log
	IssuedRawQty  types.Quantity `db:"issued_raw_qty" json:"issuedRawQty"`
	IssuedRawCost types.Money    `db:"issued_raw_cost" json:"issuedRawCost"`

	// Net consumption adjustments applied during closes (signed)
	AdjustedRawQty  types.Quantity `db:"adjusted_raw_qty" json:"adjustedRawQty"`
	AdjustedRawCost types.Money    `db:"adjusted_raw_cost" json:"adjustedRawCost"`

	// Variance fields, computed once on the final close
	ExpectedRawQty       types.Quantity `db:"expected_raw_qty" json:"expectedRawQty"`
	ExpectedRawCost      types.Money    `db:"expected_raw_cost" json:"expectedRawCost"`
	ActualRawQty         types.Quantity `db:"actual_raw_qty" json:"actualRawQty"`
	ActualRawCost        types.Money    `db:"actual_raw_cost" json:"actualRawCost"`
	MaterialVarianceCost types.Money    `db:"material_variance_cost" json:"materialVarianceCost"`
	MaterialVariancePct  float64        `db:"material_variance_pct" json:"materialVariancePct"`

	StartAt time.Time  `db:"start_at" json:"startAt"`
	CloseAt *time.Time `db:"close_at" json:"closeAt,omitempty"`

	// Crew assignments (loaded separately)
	Crew []CrewAssignment `db:"-" json:"crew,omitempty"`
}

// CrewAssignment is one crew member's stint on a production run.
type CrewAssignment struct {
	LineID     id.ID         `db:"line_id" json:"lineId"`
	LogID      id.ID         `db:"log_id" json:"logId"`
	EmployeeID string        `db:"employee_id" json:"employeeId"`
	Role       employee.Role `db:"role" json:"role"`
	StartAt    time.Time     `db:"start_at" json:"startAt"`
	EndAt      *time.Time    `db:"end_at" json:"endAt,omitempty"`
}

// IsOpen reports whether the assignment has no end time yet.
func (c *CrewAssignment) IsOpen() bool {
	return c.EndAt == nil
}

// NewProductionLog creates an OPEN run.
func NewProductionLog(companyID string, purpose Purpose, finishedItemID, machineID string, plannedQty types.Quantity) *ProductionLog {
	doc := entity.NewDocument(companyID)
	return &ProductionLog{
		Document:       doc,
		Status:         StatusOpen,
		Purpose:        purpose,
		FinishedItemID: finishedItemID,
		MachineID:      machineID,
		PlannedQty:     plannedQty,
		StartAt:        time.Now().UTC(),
		ExpectedRawCost:      types.Zero(),
		ActualRawCost:        types.Zero(),
		IssuedRawCost:        types.Zero(),
		AdjustedRawCost:      types.Zero(),
		MaterialVarianceCost: types.Zero(),
	}
}

// GetDocumentType implements movement reference typing.
func (p *ProductionLog) GetDocumentType() string {
	return DocumentType
}

// Validate implements entity.Validatable interface.
func (p *ProductionLog) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	switch p.Purpose {
	case PurposeOrder:
		if p.SalesOrderLineID == nil {
			return apperror.NewValidation("sales order line is required for ORDER runs").
				WithDetail("field", "salesOrderLineId")
		}
	case PurposeStock:
		if p.FinishedItemID == "" {
			return apperror.NewValidation("finished item is required for STOCK runs").
				WithDetail("field", "finishedItemId")
		}
	default:
		return apperror.NewValidation("invalid purpose").
			WithDetail("value", string(p.Purpose))
	}

	if p.MachineID == "" {
		return apperror.NewValidation("machine is required").
			WithDetail("field", "machineId")
	}

	if p.PlannedQty <= 0 {
		return apperror.NewValidation("planned quantity must be positive").
			WithDetail("field", "plannedQty")
	}

	return nil
}

// CumulativeOutput returns good + reject + scrap.
func (p *ProductionLog) CumulativeOutput() types.Quantity {
	return p.GoodQty + p.RejectQty + p.ScrapQty
}

// Remaining returns the quantity still to be accounted for.
func (p *ProductionLog) Remaining() types.Quantity {
	return p.PlannedQty - p.CumulativeOutput()
}

// ApplyCloseDelta validates and applies one close's output delta.
// Returns the remaining quantity after the delta.
func (p *ProductionLog) ApplyCloseDelta(good, reject, scrap types.Quantity) (types.Quantity, error) {
	if p.Status != StatusOpen {
		return 0, apperror.NewInvalidState("production log is not open").
			WithDetail("log_id", p.ID.String()).
			WithDetail("status", string(p.Status))
	}

	if good < 0 || reject < 0 || scrap < 0 {
		return 0, apperror.NewValidation("output quantities must not be negative")
	}

	delta := good + reject + scrap
	if delta <= 0 {
		return 0, apperror.NewValidation("close must report some output")
	}

	if delta > p.Remaining() {
		return 0, apperror.NewValidation("output exceeds remaining planned quantity").
			WithDetail("delta", delta.String()).
			WithDetail("remaining", p.Remaining().String())
	}

	p.GoodQty += good
	p.RejectQty += reject
	p.ScrapQty += scrap
	p.OEEPct = p.GoodQty.Decimal().
		Div(p.PlannedQty.Decimal()).
		Mul(oneHundred).
		InexactFloat64()
	p.Touch()

	return p.Remaining(), nil
}

// MarkClosed finishes the run and force-closes open crew assignments.
func (p *ProductionLog) MarkClosed(at time.Time) {
	p.Status = StatusClosed
	p.CloseAt = &at
	for i := range p.Crew {
		if p.Crew[i].IsOpen() {
			p.Crew[i].EndAt = &at
		}
	}
	p.Touch()
}

// FindCrew returns the assignment for an employee, or nil.
func (p *ProductionLog) FindCrew(employeeID string) *CrewAssignment {
	for i := range p.Crew {
		if p.Crew[i].EmployeeID == employeeID {
			return &p.Crew[i]
		}
	}
	return nil
}
