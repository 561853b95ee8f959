package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"plantops/internal/domain/reports"
)

// --- On-Hand Valuation Report ---

// OnHandReportRequest represents query parameters for the on-hand report.
type OnHandReportRequest struct {
	CompanyID   string   `form:"companyId" binding:"required"`
	ZoneIDs     []string `form:"zoneId"`
	ItemIDs     []string `form:"itemId"`
	ExcludeZero *bool    `form:"excludeZero"`
	Limit       int      `form:"limit"`
	Offset      int      `form:"offset"`
}

// OnHandItemResponse represents a single row in the on-hand report.
type OnHandItemResponse struct {
	ItemID   string          `json:"itemId"`
	ItemCode string          `json:"itemCode"`
	ItemName string          `json:"itemName"`
	ZoneID   string          `json:"zoneId"`
	ZoneCode string          `json:"zoneCode"`
	ZoneName string          `json:"zoneName"`
	Quantity decimal.Decimal `json:"quantity"`
	UnitCost decimal.Decimal `json:"unitCost"`
	Value    decimal.Decimal `json:"value"`
}

// OnHandReportResponse represents the on-hand valuation report.
type OnHandReportResponse struct {
	GeneratedAt   time.Time            `json:"generatedAt"`
	Items         []OnHandItemResponse `json:"items"`
	TotalItems    int                  `json:"totalItems"`
	TotalQuantity decimal.Decimal      `json:"totalQuantity"`
	TotalValue    decimal.Decimal      `json:"totalValue"`
}

// FromOnHandReport converts domain report to response DTO.
func FromOnHandReport(r *reports.OnHandReport) *OnHandReportResponse {
	resp := &OnHandReportResponse{
		GeneratedAt:   r.GeneratedAt,
		Items:         make([]OnHandItemResponse, len(r.Items)),
		TotalItems:    r.TotalItems,
		TotalQuantity: r.TotalQuantity.Decimal(),
		TotalValue:    r.TotalValue,
	}

	for i, item := range r.Items {
		resp.Items[i] = OnHandItemResponse{
			ItemID:   item.ItemID.String(),
			ItemCode: item.ItemCode,
			ItemName: item.ItemName,
			ZoneID:   item.ZoneID.String(),
			ZoneCode: item.ZoneCode,
			ZoneName: item.ZoneName,
			Quantity: item.Quantity.Decimal(),
			UnitCost: item.UnitCost,
			Value:    item.Value,
		}
	}

	return resp
}

// --- Stock Turnover Report ---

// TurnoverReportRequest represents query parameters for the turnover report.
type TurnoverReportRequest struct {
	CompanyID string   `form:"companyId" binding:"required"`
	FromDate  string   `form:"fromDate" binding:"required"`
	ToDate    string   `form:"toDate" binding:"required"`
	ZoneIDs   []string `form:"zoneId"`
	ItemIDs   []string `form:"itemId"`
	Limit     int      `form:"limit"`
	Offset    int      `form:"offset"`
}

// TurnoverItemResponse represents a single row in the turnover report.
type TurnoverItemResponse struct {
	ItemID   string `json:"itemId"`
	ItemCode string `json:"itemCode"`
	ItemName string `json:"itemName"`
	ZoneID   string `json:"zoneId"`
	ZoneName string `json:"zoneName"`

	OpeningQty  decimal.Decimal `json:"openingQty"`
	OpeningCost decimal.Decimal `json:"openingCost"`
	InflowQty   decimal.Decimal `json:"inflowQty"`
	InflowCost  decimal.Decimal `json:"inflowCost"`
	OutflowQty  decimal.Decimal `json:"outflowQty"`
	OutflowCost decimal.Decimal `json:"outflowCost"`
	ClosingQty  decimal.Decimal `json:"closingQty"`
	ClosingCost decimal.Decimal `json:"closingCost"`
}

// TurnoverReportResponse represents the stock turnover report.
type TurnoverReportResponse struct {
	FromDate         time.Time              `json:"fromDate"`
	ToDate           time.Time              `json:"toDate"`
	Items            []TurnoverItemResponse `json:"items"`
	TotalItems       int                    `json:"totalItems"`
	TotalInflowCost  decimal.Decimal        `json:"totalInflowCost"`
	TotalOutflowCost decimal.Decimal        `json:"totalOutflowCost"`
}

// FromTurnoverReport converts domain report to response DTO.
func FromTurnoverReport(r *reports.TurnoverReport) *TurnoverReportResponse {
	resp := &TurnoverReportResponse{
		FromDate:         r.FromDate,
		ToDate:           r.ToDate,
		Items:            make([]TurnoverItemResponse, len(r.Items)),
		TotalItems:       r.TotalItems,
		TotalInflowCost:  r.TotalInflowCost,
		TotalOutflowCost: r.TotalOutflowCost,
	}

	for i, item := range r.Items {
		resp.Items[i] = TurnoverItemResponse{
			ItemID:      item.ItemID.String(),
			ItemCode:    item.ItemCode,
			ItemName:    item.ItemName,
			ZoneID:      item.ZoneID.String(),
			ZoneName:    item.ZoneName,
			OpeningQty:  item.OpeningQty.Decimal(),
			OpeningCost: item.OpeningCost,
			InflowQty:   item.InflowQty.Decimal(),
			InflowCost:  item.InflowCost,
			OutflowQty:  item.OutflowQty.Decimal(),
			OutflowCost: item.OutflowCost,
			ClosingQty:  item.ClosingQty.Decimal(),
			ClosingCost: item.ClosingCost,
		}
	}

	return resp
}

// --- Production Variance Report ---

// ProductionVarianceRequest represents query parameters for the production
// variance report.
type ProductionVarianceRequest struct {
	CompanyID       string   `form:"companyId" binding:"required"`
	FromDate        *string  `form:"fromDate"`
	ToDate          *string  `form:"toDate"`
	FinishedItemIDs []string `form:"finishedItemId"`
	MachineIDs      []string `form:"machineId"`
	Limit           int      `form:"limit"`
	Offset          int      `form:"offset"`
}

// ProductionVarianceItemResponse represents a closed production run.
type ProductionVarianceItemResponse struct {
	LogID     string     `json:"logId"`
	Number    string     `json:"number"`
	ItemID    string     `json:"finishedItemId"`
	ItemName  string     `json:"itemName"`
	MachineID string     `json:"machineId"`
	StartAt   time.Time  `json:"startAt"`
	CloseAt   *time.Time `json:"closeAt,omitempty"`

	PlannedQty decimal.Decimal `json:"plannedQty"`
	GoodQty    decimal.Decimal `json:"goodQty"`
	RejectQty  decimal.Decimal `json:"rejectQty"`
	ScrapQty   decimal.Decimal `json:"scrapQty"`
	OEEPct     float64         `json:"oeePct"`

	ExpectedRawCost      decimal.Decimal `json:"expectedRawCost"`
	ActualRawCost        decimal.Decimal `json:"actualRawCost"`
	MaterialVarianceCost decimal.Decimal `json:"materialVarianceCost"`
	MaterialVariancePct  float64         `json:"materialVariancePct"`
}

// ProductionVarianceResponse represents the production variance report.
type ProductionVarianceResponse struct {
	Items             []ProductionVarianceItemResponse `json:"items"`
	TotalItems        int                              `json:"totalItems"`
	TotalExpectedCost decimal.Decimal                  `json:"totalExpectedCost"`
	TotalActualCost   decimal.Decimal                  `json:"totalActualCost"`
	TotalVarianceCost decimal.Decimal                  `json:"totalVarianceCost"`
	AverageOEEPct     float64                          `json:"averageOeePct"`
}

// FromProductionVarianceReport converts domain report to response DTO.
func FromProductionVarianceReport(r *reports.ProductionVarianceReport) *ProductionVarianceResponse {
	resp := &ProductionVarianceResponse{
		Items:             make([]ProductionVarianceItemResponse, len(r.Items)),
		TotalItems:        r.TotalItems,
		TotalExpectedCost: r.TotalExpectedCost,
		TotalActualCost:   r.TotalActualCost,
		TotalVarianceCost: r.TotalVarianceCost,
		AverageOEEPct:     r.AverageOEEPct,
	}

	for i, item := range r.Items {
		resp.Items[i] = ProductionVarianceItemResponse{
			LogID:                item.LogID.String(),
			Number:               item.Number,
			ItemID:               item.ItemID,
			ItemName:             item.ItemName,
			MachineID:            item.MachineID,
			StartAt:              item.StartAt,
			CloseAt:              item.CloseAt,
			PlannedQty:           item.PlannedQty.Decimal(),
			GoodQty:              item.GoodQty.Decimal(),
			RejectQty:            item.RejectQty.Decimal(),
			ScrapQty:             item.ScrapQty.Decimal(),
			OEEPct:               item.OEEPct,
			ExpectedRawCost:      item.ExpectedRawCost,
			ActualRawCost:        item.ActualRawCost,
			MaterialVarianceCost: item.MaterialVarianceCost,
			MaterialVariancePct:  item.MaterialVariancePct,
		}
	}

	return resp
}
