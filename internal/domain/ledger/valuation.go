// Package ledger provides the stock movement ledger and valuation engine:
// an append-only movement log plus a derived per-(company, item, zone)
// balance with pluggable costing policies.
package ledger

import (
	"plantops/internal/core/entity"
	"plantops/internal/core/types"
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/domain/catalogs/item"
)

// ResolveUnitCost determines the unit cost for an inbound movement.
//
// An explicit cost always wins: outbound book costs carried into transfers
// and computed WIP costs arrive this way. Otherwise dispatch on the
// company's configured method for the material class. Returns nil when the
// configured source field is unset, which the recorder turns into a
// MissingCostBasis error for inbound movements.
//
// Pure function of its inputs, no side effects.
func ResolveUnitCost(
	class entity.MaterialClass,
	cfg company.ValuationConfig,
	it *item.Item,
	explicit *types.Money,
) *types.Money {
	if explicit != nil {
		c := *explicit
		return &c
	}

	switch cfg.MethodFor(class) {
	case company.MethodLastPrice:
		return copyCost(it.LastPurchasePrice)
	case company.MethodStandardCost:
		return copyCost(it.StandardCost)
	case company.MethodManufacturingCost:
		return copyCost(it.ManufacturingCost)
	default:
		// AVERAGE has no source field: inbound cost must be explicit,
		// the rolling average only ever divides what already came in.
		return nil
	}
}

func copyCost(m *types.Money) *types.Money {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}
