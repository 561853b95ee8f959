package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantityConversions(t *testing.T) {
	q := NewQuantityFromFloat64(1.6)
	assert.Equal(t, int64(16000), q.Int64Scaled())
	assert.Equal(t, "1.6000", q.String())
	assert.InEpsilon(t, 1.6, q.Float64(), 1e-9)

	assert.Equal(t, NewQuantityFromInt64Scaled(16000), q)
	assert.True(t, q.Decimal().Equal(decimal.RequireFromString("1.6")))
}

func TestQuantityFromDecimalTruncates(t *testing.T) {
	d := decimal.RequireFromString("0.12349")
	assert.Equal(t, NewQuantityFromInt64Scaled(1234), NewQuantityFromDecimal(d))
}

func TestQuantityCost(t *testing.T) {
	q := NewQuantityFromFloat64(1.6)
	cost := q.Cost(MustMoney("2.40"))
	assert.True(t, cost.Equal(MustMoney("3.84")), "got %s", cost)
}

func TestQuantitySignHelpers(t *testing.T) {
	q := NewQuantityFromFloat64(2)
	assert.True(t, q.IsPositive())
	assert.True(t, q.Neg().IsNegative())
	assert.Equal(t, q, q.Neg().Abs())
	assert.True(t, Quantity(0).IsZero())
	assert.Equal(t, "-2.0000", q.Neg().String())
}

func TestQuantityJSON(t *testing.T) {
	type payload struct {
		Qty Quantity `json:"qty"`
	}

	b, err := json.Marshal(payload{Qty: NewQuantityFromFloat64(0.04)})
	require.NoError(t, err)
	assert.Equal(t, `{"qty":0.0400}`, string(b))

	cases := []struct {
		in   string
		want Quantity
	}{
		{`{"qty":4}`, NewQuantityFromInt64Scaled(40000)},
		{`{"qty":1.6}`, NewQuantityFromInt64Scaled(16000)},
		{`{"qty":"1.6"}`, NewQuantityFromInt64Scaled(16000)},
		{`{"qty":-0.5}`, NewQuantityFromInt64Scaled(-5000)},
		{`{"qty":0.12349}`, NewQuantityFromInt64Scaled(1234)},
		{`{"qty":null}`, 0},
	}
	for _, tc := range cases {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(tc.in), &p), tc.in)
		assert.Equal(t, tc.want, p.Qty, tc.in)
	}

	var p payload
	require.Error(t, json.Unmarshal([]byte(`{"qty":"abc"}`), &p))
}

func TestMoneyHelpers(t *testing.T) {
	m, err := NewMoneyFromString("2.40")
	require.NoError(t, err)
	assert.True(t, m.Equal(MustMoney("2.4")))
	assert.True(t, Zero().IsZero())

	assert.Panics(t, func() { MustMoney("not a number") })
}

func TestMinorUnits(t *testing.T) {
	m := NewMinorUnitsFromMajor(123.45, 2)
	assert.Equal(t, MinorUnits(12345), m)
	assert.InEpsilon(t, 123.45, m.ToMajor(2), 1e-9)
	assert.Equal(t, MinorUnits(12345), m.Neg().Abs())
}
