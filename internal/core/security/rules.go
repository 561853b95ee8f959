package security

import (
	"sync"
	"time"

	"github.com/google/cel-go/cel"

	"plantops/internal/core/apperror"
)

// MovementFacts is the variable set a posting rule sees for one movement.
type MovementFacts struct {
	Direction     string
	MovementType  string
	MaterialClass string
	ZoneType      string
	Quantity      float64
	CostPerUnit   float64
	Period        time.Time
}

// MovementRuleEngine evaluates company-configured CEL guard expressions
// against movement facts. A rule must evaluate to true for the movement to
// proceed; the first failing rule aborts the operation.
//
// Example rules:
//
//	"direction == 'out' || cost_per_unit > 0.0"
//	"age_days < 30"
//	"movement_type != 'ADJUSTMENT' || quantity < 1000.0"
type MovementRuleEngine struct {
	env *cel.Env

	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewMovementRuleEngine builds the CEL environment once; compiled programs
// are cached per expression.
func NewMovementRuleEngine() (*MovementRuleEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("direction", cel.StringType),
		cel.Variable("movement_type", cel.StringType),
		cel.Variable("material_class", cel.StringType),
		cel.Variable("zone_type", cel.StringType),
		cel.Variable("quantity", cel.DoubleType),
		cel.Variable("cost_per_unit", cel.DoubleType),
		cel.Variable("age_days", cel.IntType),
	)
	if err != nil {
		return nil, err
	}
	return &MovementRuleEngine{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Evaluate runs every rule against the facts.
// A rule that fails to compile or does not produce a bool is treated as a
// violation rather than being skipped: a broken guard must not silently let
// movements through.
func (e *MovementRuleEngine) Evaluate(rules []string, facts MovementFacts) error {
	if len(rules) == 0 {
		return nil
	}

	vars := map[string]any{
		"direction":      facts.Direction,
		"movement_type":  facts.MovementType,
		"material_class": facts.MaterialClass,
		"zone_type":      facts.ZoneType,
		"quantity":       facts.Quantity,
		"cost_per_unit":  facts.CostPerUnit,
		"age_days":       int64(time.Since(facts.Period).Hours() / 24),
	}

	for _, rule := range rules {
		prg, err := e.program(rule)
		if err != nil {
			return apperror.NewPostingRule(rule).
				WithDetail("reason", "rule does not compile").
				WithCause(err)
		}

		out, _, err := prg.Eval(vars)
		if err != nil {
			return apperror.NewPostingRule(rule).
				WithDetail("reason", "rule evaluation failed").
				WithCause(err)
		}

		ok, isBool := out.Value().(bool)
		if !isBool {
			return apperror.NewPostingRule(rule).
				WithDetail("reason", "rule is not a boolean expression")
		}
		if !ok {
			return apperror.NewPostingRule(rule)
		}
	}

	return nil
}

func (e *MovementRuleEngine) program(rule string) (cel.Program, error) {
	e.mu.RLock()
	prg, found := e.programs[rule]
	e.mu.RUnlock()
	if found {
		return prg, nil
	}

	ast, issues := e.env.Compile(rule)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.programs[rule] = prg
	e.mu.Unlock()
	return prg, nil
}
