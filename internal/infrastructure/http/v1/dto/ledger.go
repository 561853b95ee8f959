package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/types"
	"plantops/internal/domain/ledger"
)

// --- Request DTOs for the Stock Ledger ---

// RecordMovementRequest is the request body for recording a single
// movement through the recorder.
type RecordMovementRequest struct {
	CompanyID string `json:"companyId" binding:"required"`
	ItemID    string `json:"itemId" binding:"required"`
	ZoneID    string `json:"zoneId" binding:"required"`

	Direction    string `json:"direction" binding:"required"`
	MovementType string `json:"movementType" binding:"required"`

	Quantity decimal.Decimal `json:"quantity" binding:"required"`

	// CostPerUnit is optional; when set it overrides the company's
	// valuation method for this line.
	CostPerUnit *decimal.Decimal `json:"costPerUnit,omitempty"`

	ReferenceType string `json:"referenceType,omitempty"`
	ReferenceID   string `json:"referenceId,omitempty"`

	Notes  string     `json:"notes,omitempty"`
	Period *time.Time `json:"period,omitempty"`
}

// ToInput converts the request into a recorder input.
func (r *RecordMovementRequest) ToInput() (ledger.MovementInput, error) {
	var in ledger.MovementInput

	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return in, apperror.NewValidation("invalid companyId format")
	}
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return in, apperror.NewValidation("invalid itemId format")
	}
	zoneID, err := id.Parse(r.ZoneID)
	if err != nil {
		return in, apperror.NewValidation("invalid zoneId format")
	}

	in.CompanyID = companyID
	in.ItemID = itemID
	in.ZoneID = zoneID
	in.Direction = entity.Direction(r.Direction)
	in.MovementType = entity.MovementType(r.MovementType)
	in.Quantity = types.NewQuantityFromDecimal(r.Quantity)
	in.Notes = r.Notes

	if r.CostPerUnit != nil {
		cost := types.Money(*r.CostPerUnit)
		in.CostPerUnit = &cost
	}

	if r.ReferenceType != "" && r.ReferenceID != "" {
		refID, err := id.Parse(r.ReferenceID)
		if err != nil {
			return in, apperror.NewValidation("invalid referenceId format")
		}
		in.Reference = entity.NewReference(r.ReferenceType, refID, 0)
	}

	if r.Period != nil {
		in.Period = *r.Period
	}

	return in, nil
}

// TransferRequest is the request body for a zone-to-zone transfer.
type TransferRequest struct {
	CompanyID  string `json:"companyId" binding:"required"`
	ItemID     string `json:"itemId" binding:"required"`
	FromZoneID string `json:"fromZoneId" binding:"required"`
	ToZoneID   string `json:"toZoneId" binding:"required"`

	Quantity decimal.Decimal `json:"quantity" binding:"required"`

	Notes  string     `json:"notes,omitempty"`
	Period *time.Time `json:"period,omitempty"`
}

// ToInput converts the request into a transfer input.
func (r *TransferRequest) ToInput() (ledger.TransferInput, error) {
	var in ledger.TransferInput

	companyID, err := id.Parse(r.CompanyID)
	if err != nil {
		return in, apperror.NewValidation("invalid companyId format")
	}
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return in, apperror.NewValidation("invalid itemId format")
	}
	fromID, err := id.Parse(r.FromZoneID)
	if err != nil {
		return in, apperror.NewValidation("invalid fromZoneId format")
	}
	toID, err := id.Parse(r.ToZoneID)
	if err != nil {
		return in, apperror.NewValidation("invalid toZoneId format")
	}

	in.CompanyID = companyID
	in.ItemID = itemID
	in.FromZoneID = fromID
	in.ToZoneID = toID
	in.Quantity = types.NewQuantityFromDecimal(r.Quantity)
	in.Notes = r.Notes

	if r.Period != nil {
		in.Period = *r.Period
	}

	return in, nil
}

// --- Response DTOs for the Stock Ledger ---

// StockMovementResponse represents one ledger line.
type StockMovementResponse struct {
	LineID    string `json:"lineId"`
	CompanyID string `json:"companyId"`
	ItemID    string `json:"itemId"`
	ZoneID    string `json:"zoneId"`

	Direction    string `json:"direction"`
	MovementType string `json:"movementType"`

	Quantity    decimal.Decimal `json:"quantity"`
	CostPerUnit decimal.Decimal `json:"costPerUnit"`
	TotalCost   decimal.Decimal `json:"totalCost"`

	ReferenceType    string `json:"referenceType,omitempty"`
	ReferenceID      string `json:"referenceId,omitempty"`
	ReferenceVersion int    `json:"referenceVersion,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	Period    time.Time `json:"period"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromStockMovement converts entity to response DTO.
func FromStockMovement(m entity.StockMovement) StockMovementResponse {
	resp := StockMovementResponse{
		LineID:       m.LineID.String(),
		CompanyID:    m.CompanyID.String(),
		ItemID:       m.ItemID.String(),
		ZoneID:       m.ZoneID.String(),
		Direction:    string(m.Direction),
		MovementType: string(m.MovementType),
		Quantity:     m.Quantity.Decimal(),
		CostPerUnit:  decimal.Decimal(m.CostPerUnit),
		TotalCost:    decimal.Decimal(m.TotalCost),
		Notes:        m.Notes,
		Period:       m.Period,
		CreatedAt:    m.CreatedAt,
	}

	if m.Reference.Type != "" && m.Reference.ID != nil {
		resp.ReferenceType = m.Reference.Type
		resp.ReferenceID = m.Reference.ID.String()
		resp.ReferenceVersion = m.Reference.Version
	}

	return resp
}

// StockBalanceResponse represents one balance row.
type StockBalanceResponse struct {
	CompanyID string `json:"companyId"`
	ItemID    string `json:"itemId"`
	ZoneID    string `json:"zoneId"`

	QuantityOnHand decimal.Decimal `json:"quantityOnHand"`
	CostPerUnit    decimal.Decimal `json:"costPerUnit"`
	TotalCost      decimal.Decimal `json:"totalCost"`

	LastMovementAt *time.Time `json:"lastMovementAt,omitempty"`
}

// FromStockBalance converts entity to response DTO. A zero LastMovementAt
// becomes null rather than "0001-01-01".
func FromStockBalance(b entity.StockBalance) StockBalanceResponse {
	var lastMovement *time.Time
	if !b.LastMovementAt.IsZero() {
		val := b.LastMovementAt
		lastMovement = &val
	}

	return StockBalanceResponse{
		CompanyID:      b.CompanyID.String(),
		ItemID:         b.ItemID.String(),
		ZoneID:         b.ZoneID.String(),
		QuantityOnHand: b.QuantityOnHand.Decimal(),
		CostPerUnit:    decimal.Decimal(b.CostPerUnit),
		TotalCost:      decimal.Decimal(b.TotalCost),
		LastMovementAt: lastMovement,
	}
}

// StockBalanceListResponse represents a list of balances.
type StockBalanceListResponse struct {
	Items []StockBalanceResponse `json:"items"`
}

// StockMovementListResponse represents a list of ledger lines.
type StockMovementListResponse struct {
	Items      []StockMovementResponse `json:"items"`
	TotalCount int                     `json:"totalCount,omitempty"`
}

// ConsistencyResponse reports whether a balance row matches the signed
// sum of its movements.
type ConsistencyResponse struct {
	Consistent bool `json:"consistent"`
}
