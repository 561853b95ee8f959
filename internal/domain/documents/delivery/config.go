package delivery

import "plantops/internal/core/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Deliveries are primary accounting documents, so numbering is strict.
	NumeratorStrategy = numerator.StrategyStrict
)
