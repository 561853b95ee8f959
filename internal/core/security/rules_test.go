package security

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/apperror"
)

func facts() MovementFacts {
	return MovementFacts{
		Direction:     "out",
		MovementType:  "ISSUE",
		MaterialClass: "raw",
		ZoneType:      "RAW",
		Quantity:      10,
		CostPerUnit:   2.5,
		Period:        time.Now().UTC(),
	}
}

func TestRuleEngine_EmptyRulesPass(t *testing.T) {
	eng, err := NewMovementRuleEngine()
	require.NoError(t, err)

	assert.NoError(t, eng.Evaluate(nil, facts()))
	assert.NoError(t, eng.Evaluate([]string{}, facts()))
}

func TestRuleEngine_PassingRules(t *testing.T) {
	eng, err := NewMovementRuleEngine()
	require.NoError(t, err)

	rules := []string{
		"direction == 'out' || cost_per_unit > 0.0",
		"quantity < 1000.0",
		"material_class == 'raw' && zone_type == 'RAW'",
	}
	assert.NoError(t, eng.Evaluate(rules, facts()))
}

func TestRuleEngine_FailingRuleAborts(t *testing.T) {
	eng, err := NewMovementRuleEngine()
	require.NoError(t, err)

	err = eng.Evaluate([]string{"quantity < 5.0"}, facts())
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodePostingRule, appErr.Code)
}

func TestRuleEngine_AgeDays(t *testing.T) {
	eng, err := NewMovementRuleEngine()
	require.NoError(t, err)

	f := facts()
	f.Period = time.Now().AddDate(0, 0, -40)

	assert.Error(t, eng.Evaluate([]string{"age_days < 30"}, f))
	assert.NoError(t, eng.Evaluate([]string{"age_days < 60"}, f))
}

func TestRuleEngine_BrokenRuleIsViolation(t *testing.T) {
	eng, err := NewMovementRuleEngine()
	require.NoError(t, err)

	cases := []string{
		"quantity <",   // does not compile
		"quantity + 1", // not a boolean
		"no_such_var == 'x'",
	}
	for _, rule := range cases {
		err := eng.Evaluate([]string{rule}, facts())
		require.Error(t, err, rule)

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr), rule)
		assert.Equal(t, apperror.CodePostingRule, appErr.Code, rule)
	}
}

func TestRuleEngine_CachesPrograms(t *testing.T) {
	eng, err := NewMovementRuleEngine()
	require.NoError(t, err)

	rule := "quantity < 1000.0"
	require.NoError(t, eng.Evaluate([]string{rule}, facts()))
	require.NoError(t, eng.Evaluate([]string{rule}, facts()))

	eng.mu.RLock()
	defer eng.mu.RUnlock()
	assert.Len(t, eng.programs, 1)
}
