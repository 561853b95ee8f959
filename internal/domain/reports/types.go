// Package reports provides read-side report generation over the stock
// ledger and production logs.
package reports

import (
	"time"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

// --- On-Hand Valuation Report ---

// OnHandFilter defines the filter for the on-hand valuation report.
type OnHandFilter struct {
	CompanyID id.ID

	// Filters
	ZoneIDs []id.ID
	ItemIDs []id.ID

	// Exclude zero balances
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// OnHandItem represents a single row in the on-hand valuation report.
type OnHandItem struct {
	ItemID   id.ID          `db:"item_id" json:"itemId"`
	ItemCode string         `db:"item_code" json:"itemCode"`
	ItemName string         `db:"item_name" json:"itemName"`
	ZoneID   id.ID          `db:"zone_id" json:"zoneId"`
	ZoneCode string         `db:"zone_code" json:"zoneCode"`
	ZoneName string         `db:"zone_name" json:"zoneName"`
	Quantity types.Quantity `db:"quantity_on_hand" json:"quantity"`
	UnitCost types.Money    `db:"cost_per_unit" json:"unitCost"`
	Value    types.Money    `db:"total_cost" json:"value"`
}

// OnHandReport represents the full on-hand valuation report.
type OnHandReport struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Items       []OnHandItem `json:"items"`
	TotalItems  int          `json:"totalItems"`

	// Summary
	TotalQuantity types.Quantity `json:"totalQuantity"`
	TotalValue    types.Money    `json:"totalValue"`
}

// --- Stock Turnover Report ---

// TurnoverFilter defines the filter for the stock turnover report.
type TurnoverFilter struct {
	CompanyID id.ID

	// Period (required)
	FromDate time.Time
	ToDate   time.Time

	// Filters
	ZoneIDs []id.ID
	ItemIDs []id.ID

	// Pagination
	Limit  int
	Offset int
}

// TurnoverItem represents a single row in the turnover report. Quantities
// are signed by direction; closing = opening + inflow - outflow.
type TurnoverItem struct {
	ItemID   id.ID          `db:"item_id" json:"itemId"`
	ItemCode string         `db:"item_code" json:"itemCode"`
	ItemName string         `db:"item_name" json:"itemName"`
	ZoneID   id.ID          `db:"zone_id" json:"zoneId"`
	ZoneName string         `db:"zone_name" json:"zoneName"`

	OpeningQty  types.Quantity `db:"opening_qty" json:"openingQty"`
	OpeningCost types.Money    `db:"opening_cost" json:"openingCost"`
	InflowQty   types.Quantity `db:"inflow_qty" json:"inflowQty"`
	InflowCost  types.Money    `db:"inflow_cost" json:"inflowCost"`
	OutflowQty  types.Quantity `db:"outflow_qty" json:"outflowQty"`
	OutflowCost types.Money    `db:"outflow_cost" json:"outflowCost"`
	ClosingQty  types.Quantity `db:"closing_qty" json:"closingQty"`
	ClosingCost types.Money    `db:"closing_cost" json:"closingCost"`
}

// TurnoverReport represents the full turnover report.
type TurnoverReport struct {
	FromDate   time.Time      `json:"fromDate"`
	ToDate     time.Time      `json:"toDate"`
	Items      []TurnoverItem `json:"items"`
	TotalItems int            `json:"totalItems"`

	// Summary totals
	TotalInflowCost  types.Money `json:"totalInflowCost"`
	TotalOutflowCost types.Money `json:"totalOutflowCost"`
}

// --- Production Variance Report ---

// ProductionVarianceFilter defines the filter for the production variance
// report. Only closed runs carry final variance figures.
type ProductionVarianceFilter struct {
	CompanyID id.ID

	// Period over close time
	FromDate *time.Time
	ToDate   *time.Time

	// Filters
	FinishedItemIDs []string
	MachineIDs      []string

	// Pagination
	Limit  int
	Offset int
}

// ProductionVarianceItem represents a closed production run with its
// material variance and OEE figures.
type ProductionVarianceItem struct {
	LogID      id.ID      `db:"id" json:"logId"`
	Number     string     `db:"number" json:"number"`
	ItemID     string     `db:"finished_item_id" json:"finishedItemId"`
	ItemName   string     `db:"item_name" json:"itemName"`
	MachineID  string     `db:"machine_id" json:"machineId"`
	StartAt    time.Time  `db:"start_at" json:"startAt"`
	CloseAt    *time.Time `db:"close_at" json:"closeAt,omitempty"`

	PlannedQty types.Quantity `db:"planned_qty" json:"plannedQty"`
	GoodQty    types.Quantity `db:"good_qty" json:"goodQty"`
	RejectQty  types.Quantity `db:"reject_qty" json:"rejectQty"`
	ScrapQty   types.Quantity `db:"scrap_qty" json:"scrapQty"`
	OEEPct     float64        `db:"oee_pct" json:"oeePct"`

	ExpectedRawCost      types.Money `db:"expected_raw_cost" json:"expectedRawCost"`
	ActualRawCost        types.Money `db:"actual_raw_cost" json:"actualRawCost"`
	MaterialVarianceCost types.Money `db:"material_variance_cost" json:"materialVarianceCost"`
	MaterialVariancePct  float64     `db:"material_variance_pct" json:"materialVariancePct"`
}

// ProductionVarianceReport represents the full production variance report.
type ProductionVarianceReport struct {
	Items      []ProductionVarianceItem `json:"items"`
	TotalItems int                      `json:"totalItems"`

	// Summary
	TotalExpectedCost types.Money `json:"totalExpectedCost"`
	TotalActualCost   types.Money `json:"totalActualCost"`
	TotalVarianceCost types.Money `json:"totalVarianceCost"`
	AverageOEEPct     float64     `json:"averageOeePct"`
}
