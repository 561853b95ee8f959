package ledger_repo

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/id"
	"plantops/internal/core/types"
)

var balanceFields = []pgconn.FieldDescription{
	{Name: "company_id"}, {Name: "item_id"}, {Name: "zone_id"},
	{Name: "quantity_on_hand"}, {Name: "cost_per_unit"}, {Name: "total_cost"},
	{Name: "last_movement_at"}, {Name: "updated_at"},
}

// fakeRows serves a single pre-built row to pgxscan.
type fakeRows struct {
	vals []any
	done bool
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return balanceFields }
func (r *fakeRows) Values() ([]any, error)                       { return r.vals, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.done {
		return false
	}
	r.done = true
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		reflect.ValueOf(d).Elem().Set(reflect.ValueOf(r.vals[i]))
	}
	return nil
}

// recordingQuerier captures every statement and serves the balance row to
// the locking SELECT.
type recordingQuerier struct {
	stmts []string
	row   []any
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.stmts = append(q.stmts, sql)
	return pgconn.CommandTag{}, nil
}

func (q *recordingQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.stmts = append(q.stmts, sql)
	return &fakeRows{vals: q.row}, nil
}

func (q *recordingQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	panic("unexpected QueryRow")
}

func TestGetBalanceForUpdate_MaterializesRowBeforeLocking(t *testing.T) {
	companyID, itemID, zoneID := id.New(), id.New(), id.New()
	now := time.Now()

	querier := &recordingQuerier{
		row: []any{
			companyID, itemID, zoneID,
			types.Quantity(0), types.Zero(), types.Zero(),
			now, now,
		},
	}

	balance, err := getBalanceForUpdate(context.Background(), querier, companyID, itemID, zoneID)
	require.NoError(t, err)

	require.Len(t, querier.stmts, 2)
	assert.Contains(t, querier.stmts[0], "INSERT INTO stock_balances")
	assert.Contains(t, querier.stmts[0], "ON CONFLICT (company_id, item_id, zone_id) DO NOTHING")
	assert.Contains(t, querier.stmts[1], "FOR UPDATE")

	assert.Equal(t, companyID, balance.CompanyID)
	assert.Equal(t, itemID, balance.ItemID)
	assert.Equal(t, zoneID, balance.ZoneID)
	assert.True(t, balance.QuantityOnHand.IsZero())
}
