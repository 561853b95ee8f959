package production

import "plantops/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for production logs.
	// Runs are primary shop-floor documents, so numbering is strict.
	NumeratorStrategy = numerator.StrategyStrict
)
