package posting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/security"
	"plantops/internal/core/types"
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/domain/catalogs/zone"
	"plantops/internal/domain/ledger"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memLedger struct {
	balances  map[[3]id.ID]entity.StockBalance
	movements []entity.StockMovement
}

func newMemLedger() *memLedger {
	return &memLedger{balances: make(map[[3]id.ID]entity.StockBalance)}
}

func (r *memLedger) AppendMovement(_ context.Context, m *entity.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *memLedger) AppendMovements(_ context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *memLedger) ListMovements(_ context.Context, _ ledger.MovementFilter) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *memLedger) GetMovementsByReference(_ context.Context, refType string, refID id.ID, version int) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.movements {
		if m.Reference.Type != refType || m.Reference.ID == nil || *m.Reference.ID != refID {
			continue
		}
		if version != 0 && m.Reference.Version != version {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memLedger) SumMovements(_ context.Context, companyID, itemID, zoneID id.ID) (types.Quantity, types.Money, error) {
	var qty types.Quantity
	total := types.Zero()
	for _, m := range r.movements {
		if m.CompanyID == companyID && m.ItemID == itemID && m.ZoneID == zoneID {
			qty += m.SignedQuantity()
			total = total.Add(m.SignedCost())
		}
	}
	return qty, total, nil
}

func (r *memLedger) GetBalance(_ context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	if b, ok := r.balances[[3]id.ID{companyID, itemID, zoneID}]; ok {
		return b, nil
	}
	return entity.EmptyBalance(companyID, itemID, zoneID), nil
}

func (r *memLedger) GetBalanceForUpdate(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	return r.GetBalance(ctx, companyID, itemID, zoneID)
}

func (r *memLedger) UpsertBalance(_ context.Context, b *entity.StockBalance) error {
	r.balances[[3]id.ID{b.CompanyID, b.ItemID, b.ZoneID}] = *b
	return nil
}

func (r *memLedger) ListBalances(_ context.Context, _ ledger.BalanceFilter) ([]entity.StockBalance, error) {
	out := make([]entity.StockBalance, 0, len(r.balances))
	for _, b := range r.balances {
		out = append(out, b)
	}
	return out, nil
}

func (r *memLedger) GetIssuedForReference(_ context.Context, _ string, _ id.ID, _ entity.MovementType) ([]ledger.IssuedLine, error) {
	return nil, nil
}

type companyDir struct{ c *company.Company }

func (d companyDir) GetByID(context.Context, id.ID) (*company.Company, error) { return d.c, nil }

type itemDir struct{ i *item.Item }

func (d itemDir) GetByID(context.Context, id.ID) (*item.Item, error) { return d.i, nil }

type zoneDir struct{ z *zone.Zone }

func (d zoneDir) GetByID(context.Context, id.ID) (*zone.Zone, error) { return d.z, nil }

// receiptDoc is a minimal postable document: one inbound line.
type receiptDoc struct {
	entity.Document

	companyID id.ID
	itemID    id.ID
	zoneID    id.ID
	quantity  types.Quantity
	cost      types.Money

	generateErr error
}

func (d *receiptDoc) GetDocumentType() string { return "TEST_RECEIPT" }

func (d *receiptDoc) GenerateMovements(_ context.Context) (*MovementSet, error) {
	if d.generateErr != nil {
		return nil, d.generateErr
	}
	set := NewMovementSet()
	set.AddStock(ledger.MovementInput{
		CompanyID:    d.companyID,
		ItemID:       d.itemID,
		ZoneID:       d.zoneID,
		Direction:    entity.DirectionIn,
		MovementType: entity.MovementTypeReceipt,
		Quantity:     d.quantity,
		CostPerUnit:  &d.cost,
		Reference:    entity.NewReference(d.GetDocumentType(), d.ID, d.PostedVersion),
		Period:       d.Date,
	})
	return set, nil
}

type fixture struct {
	eng    *Engine
	store  *memLedger
	doc    *receiptDoc
	rec    *ledger.Service
	comp   *company.Company
	itm    *item.Item
	zn     *zone.Zone
	saved  int
	policy security.PostingPolicy
}

func newFixture(t *testing.T, policy security.PostingPolicy) *fixture {
	t.Helper()

	comp := company.NewCompany("CO-1", "Test Co")
	comp.ValuationConfig = company.DefaultValuationConfig()
	comp.ValuationConfig.RawMethod = company.MethodAverage

	itm := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	zn := zone.NewZone("Z-RAW", "Raw store", zone.TypeRaw)

	store := newMemLedger()
	rec := ledger.NewService(ledger.ServiceConfig{
		Repo:      store,
		Companies: companyDir{comp},
		Items:     itemDir{itm},
		Zones:     zoneDir{zn},
		TxManager: passthroughTx{},
	})

	f := &fixture{
		eng:    NewEngine(rec, policy, passthroughTx{}),
		store:  store,
		rec:    rec,
		comp:   comp,
		itm:    itm,
		zn:     zn,
		policy: policy,
	}
	f.doc = &receiptDoc{
		Document:  entity.NewDocument(comp.ID.String()),
		companyID: comp.ID,
		itemID:    itm.ID,
		zoneID:    zn.ID,
		quantity:  types.NewQuantityFromFloat64(10),
		cost:      types.MustMoney("2.50"),
	}
	return f
}

func (f *fixture) save(ctx context.Context) error {
	f.saved++
	return nil
}

func TestEngine_PostRecordsMovements(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	err := f.eng.Post(ctx, f.doc, f.save)
	require.NoError(t, err)

	assert.True(t, f.doc.IsPosted())
	assert.Equal(t, 1, f.doc.GetPostedVersion())
	assert.Equal(t, 1, f.saved)

	require.Len(t, f.store.movements, 1)
	m := f.store.movements[0]
	assert.Equal(t, "TEST_RECEIPT", m.Reference.Type)
	assert.Equal(t, 1, m.Reference.Version, "movements carry the new posted version")

	b, err := f.rec.GetBalance(ctx, f.comp.ID, f.itm.ID, f.zn.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(10), b.QuantityOnHand)
	assert.True(t, b.TotalCost.Equal(types.MustMoney("25")))
}

func TestEngine_PostTwiceRejected(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.eng.Post(ctx, f.doc, f.save))

	err := f.eng.Post(ctx, f.doc, f.save)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeDocumentPosted, appErr.Code)
	assert.Equal(t, 1, f.saved)
}

func TestEngine_PostClosedPeriod(t *testing.T) {
	closedUntil := time.Now().UTC().AddDate(0, 1, 0)
	f := newFixture(t, security.NewStrictPolicy(closedUntil))
	ctx := context.Background()

	err := f.eng.Post(ctx, f.doc, f.save)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodePeriodClosed, appErr.Code)
	assert.False(t, f.doc.IsPosted())
	assert.Empty(t, f.store.movements)
}

func TestEngine_PostGenerateFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.doc.generateErr = errors.New("bad lines")

	err := f.eng.Post(context.Background(), f.doc, f.save)
	require.Error(t, err)
	assert.Empty(t, f.store.movements)
	assert.Equal(t, 0, f.saved)
}

func TestEngine_UnpostReversesCycle(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.eng.Post(ctx, f.doc, f.save))
	require.NoError(t, f.eng.Unpost(ctx, f.doc, f.save))

	assert.False(t, f.doc.IsPosted())
	assert.Equal(t, 2, f.saved)

	// Original plus compensating line, balance back to zero.
	require.Len(t, f.store.movements, 2)
	assert.Equal(t, entity.DirectionOut, f.store.movements[1].Direction)

	b, err := f.rec.GetBalance(ctx, f.comp.ID, f.itm.ID, f.zn.ID)
	require.NoError(t, err)
	assert.True(t, b.QuantityOnHand.IsZero())
}

func TestEngine_UnpostRequiresPosted(t *testing.T) {
	f := newFixture(t, nil)

	err := f.eng.Unpost(context.Background(), f.doc, f.save)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
}

func TestEngine_RepostGetsNewVersion(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.eng.Post(ctx, f.doc, f.save))
	require.NoError(t, f.eng.Unpost(ctx, f.doc, f.save))
	require.NoError(t, f.eng.Post(ctx, f.doc, f.save))

	assert.Equal(t, 2, f.doc.GetPostedVersion())

	// The second cycle's movements are distinguishable from the first.
	cycle2, err := f.store.GetMovementsByReference(ctx, "TEST_RECEIPT", f.doc.ID, 2)
	require.NoError(t, err)
	assert.Len(t, cycle2, 1)
}
