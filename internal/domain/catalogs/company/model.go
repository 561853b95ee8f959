// Package company provides the Company catalog. A company is the legal
// entity dimension on every balance and ledger row, and owns the valuation
// configuration the resolver dispatches on.
package company

import (
	"context"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
)

// ValuationMethod selects how inbound movements are costed.
type ValuationMethod string

const (
	MethodLastPrice         ValuationMethod = "LAST_PRICE"
	MethodStandardCost      ValuationMethod = "STANDARD_COST"
	MethodManufacturingCost ValuationMethod = "MANUFACTURING_COST"
	MethodAverage           ValuationMethod = "AVERAGE"
)

// ValuationConfig is the per-company choice of valuation method for each
// material class. Read-only input to the valuation resolver.
type ValuationConfig struct {
	RawMethod      ValuationMethod `db:"valuation_raw" json:"rawMethod"`
	FinishedMethod ValuationMethod `db:"valuation_finished" json:"finishedMethod"`
	WIPMethod      ValuationMethod `db:"valuation_wip" json:"wipMethod"`
}

// DefaultValuationConfig matches the common setup: raw stock at last
// purchase price, finished goods at manufacturing cost, WIP blended.
func DefaultValuationConfig() ValuationConfig {
	return ValuationConfig{
		RawMethod:      MethodLastPrice,
		FinishedMethod: MethodManufacturingCost,
		WIPMethod:      MethodAverage,
	}
}

// MethodFor returns the configured method for a material class.
func (c ValuationConfig) MethodFor(class entity.MaterialClass) ValuationMethod {
	switch class {
	case entity.MaterialClassRaw:
		return c.RawMethod
	case entity.MaterialClassWIP:
		return c.WIPMethod
	default:
		return c.FinishedMethod
	}
}

// Company represents a legal entity or business unit.
type Company struct {
	entity.Catalog

	// FullName is the official full name of the company
	FullName *string `db:"full_name" json:"fullName,omitempty"`

	// TaxID is the tax identification number
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	// ValuationConfig holds the costing method per material class
	ValuationConfig

	// PostingRules are optional CEL guard expressions evaluated against
	// every movement before it is recorded (JSONB array of strings)
	PostingRules entity.StringSlice `db:"posting_rules" json:"postingRules,omitempty"`

	// IsDefault indicates if this is the default company for new documents
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewCompany creates a new Company with default valuation config.
func NewCompany(code, name string) *Company {
	return &Company{
		Catalog:         entity.NewCatalog(code, name),
		ValuationConfig: DefaultValuationConfig(),
	}
}

// Validate implements entity.Validatable interface.
func (c *Company) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	for field, m := range map[string]ValuationMethod{
		"rawMethod":      c.RawMethod,
		"finishedMethod": c.FinishedMethod,
		"wipMethod":      c.WIPMethod,
	} {
		if !isValidMethod(m) {
			return apperror.NewValidation("invalid valuation method").
				WithDetail("field", field).
				WithDetail("value", string(m))
		}
	}

	return nil
}

func isValidMethod(m ValuationMethod) bool {
	switch m {
	case MethodLastPrice, MethodStandardCost, MethodManufacturingCost, MethodAverage:
		return true
	}
	return false
}
