package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "plantops/internal/core/numerator"
)

type fakeRow struct {
	val int64
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.val
	return nil
}

// fakeQuerier emulates the sys_sequences UPSERT without a database.
type fakeQuerier struct {
	sequences map[string]int64
	calls     int
	set       bool // next call replaces instead of increments
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{sequences: make(map[string]int64)}
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	q.calls++
	key := args[0].(string)

	increment := int64(1)
	if len(args) > 1 {
		increment = args[1].(int64)
	}

	if q.set {
		q.sequences[key] = increment
		q.set = false
	} else {
		q.sequences[key] += increment
	}
	return fakeRow{val: q.sequences[key]}
}

func TestStrictNumbering(t *testing.T) {
	q := newFakeQuerier()
	svc := New(q)
	ctx := context.Background()

	period := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("INV")

	first, err := svc.GetNextNumber(ctx, cfg, corenumerator.DefaultOptions(), period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00001", first)

	second, err := svc.GetNextNumber(ctx, cfg, corenumerator.DefaultOptions(), period)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", second)

	// A different prefix gets its own sequence.
	other, err := svc.GetNextNumber(ctx, corenumerator.DefaultConfig("PL"), corenumerator.DefaultOptions(), period)
	require.NoError(t, err)
	assert.Equal(t, "PL-2026-00001", other)

	// Year reset starts a new sequence row.
	nextYear, err := svc.GetNextNumber(ctx, cfg, corenumerator.DefaultOptions(), period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "INV-2027-00001", nextYear)
}

func TestCachedNumbering(t *testing.T) {
	q := newFakeQuerier()
	svc := New(q)
	ctx := context.Background()

	period := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("SH")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 10}

	for i := 1; i <= 15; i++ {
		num, err := svc.GetNextNumber(ctx, cfg, opts, period)
		require.NoError(t, err)
		assert.Equal(t, int64(i), ParseNumber(num), num)
	}

	// 15 numbers from ranges of 10 means exactly two allocations.
	assert.Equal(t, 2, q.calls)
}

func TestSetNextNumberInvalidatesCache(t *testing.T) {
	q := newFakeQuerier()
	svc := New(q)
	ctx := context.Background()

	period := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	cfg := corenumerator.DefaultConfig("GR")
	opts := &corenumerator.Options{Strategy: corenumerator.StrategyCached, RangeSize: 50}

	_, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)

	q.set = true
	require.NoError(t, svc.SetNextNumber(ctx, cfg, period, 100))

	num, err := svc.GetNextNumber(ctx, cfg, opts, period)
	require.NoError(t, err)
	assert.Equal(t, "GR-2026-00101", num, "cache reloads after the sequence is reset")
}

func TestBuildKey(t *testing.T) {
	svc := New(nil)
	period := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	cfg := corenumerator.Config{Prefix: "INV", ResetPeriod: "year"}
	assert.Equal(t, "INV_2026", svc.buildKey(cfg, period))

	cfg.ResetPeriod = "month"
	assert.Equal(t, "INV_2026_08", svc.buildKey(cfg, period))

	cfg.ResetPeriod = "never"
	assert.Equal(t, "INV", svc.buildKey(cfg, period))
}

func TestFormatNumber(t *testing.T) {
	svc := New(nil)
	period := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	cfg := corenumerator.Config{Prefix: "INV", IncludeYear: true, PadWidth: 5}
	assert.Equal(t, "INV-2026-00042", svc.formatNumber(cfg, period, 42))

	cfg.IncludeYear = false
	assert.Equal(t, "INV-00042", svc.formatNumber(cfg, period, 42))

	cfg.PadWidth = 0 // defaults to 5
	assert.Equal(t, "INV-00042", svc.formatNumber(cfg, period, 42))

	cfg.PadWidth = 3
	assert.Equal(t, "INV-1042", svc.formatNumber(cfg, period, 1042), "numbers longer than the pad are not truncated")
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, int64(42), ParseNumber("INV-2026-00042"))
	assert.Equal(t, int64(7), ParseNumber("PL-00007"))
	assert.Equal(t, int64(100500), ParseNumber("GR-2027-100500"))
	assert.Equal(t, int64(-1), ParseNumber("garbage"))
	assert.Equal(t, int64(-1), ParseNumber("INV-2026-"))
	assert.Equal(t, int64(-1), ParseNumber("INV-abc"))
	assert.Equal(t, int64(-1), ParseNumber(""))
}
