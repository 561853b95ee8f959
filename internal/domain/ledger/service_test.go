package ledger

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
	"plantops/internal/core/types"
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/domain/catalogs/zone"
)

// passthroughTx satisfies tx.Manager without a database.
type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type tripleKey struct {
	company, item, zone id.ID
}

// fakeRepo is an in-memory Repository.
type fakeRepo struct {
	balances  map[tripleKey]entity.StockBalance
	movements []entity.StockMovement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{balances: make(map[tripleKey]entity.StockBalance)}
}

func (r *fakeRepo) AppendMovement(_ context.Context, m *entity.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *fakeRepo) AppendMovements(_ context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *fakeRepo) ListMovements(_ context.Context, _ MovementFilter) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *fakeRepo) GetMovementsByReference(_ context.Context, refType string, refID id.ID, version int) ([]entity.StockMovement, error) {
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

func (r *fakeRepo) SumMovements(_ context.Context, companyID, itemID, zoneID id.ID) (types.Quantity, types.Money, error) {
	var qty types.Quantity
	total := types.Zero()
	for _, m := range r.movements {
		if m.CompanyID != companyID || m.ItemID != itemID || m.ZoneID != zoneID {
			continue
		}
		if m.Direction == entity.DirectionIn {
			qty += m.Quantity
			total = total.Add(m.TotalCost)
		} else {
			qty -= m.Quantity
			total = total.Sub(m.TotalCost)
		}
	}
	return qty, total, nil
}

func (r *fakeRepo) GetBalance(_ context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	if b, ok := r.balances[tripleKey{companyID, itemID, zoneID}]; ok {
		return b, nil
	}
	return entity.EmptyBalance(companyID, itemID, zoneID), nil
}

func (r *fakeRepo) GetBalanceForUpdate(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	return r.GetBalance(ctx, companyID, itemID, zoneID)
}

func (r *fakeRepo) UpsertBalance(_ context.Context, b *entity.StockBalance) error {
	r.balances[tripleKey{b.CompanyID, b.ItemID, b.ZoneID}] = *b
	return nil
}

func (r *fakeRepo) ListBalances(_ context.Context, _ BalanceFilter) ([]entity.StockBalance, error) {
	out := make([]entity.StockBalance, 0, len(r.balances))
	for _, b := range r.balances {
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeRepo) GetIssuedForReference(_ context.Context, refType string, refID id.ID, movementType entity.MovementType) ([]IssuedLine, error) {
	agg := make(map[id.ID]*IssuedLine)
	var order []id.ID
	for _, m := range r.movements {
		if m.Reference.Type != refType || m.Reference.ID == nil || *m.Reference.ID != refID {
			continue
		}
		if m.MovementType != movementType || m.Direction != entity.DirectionOut {
			continue
		}
		line, ok := agg[m.ItemID]
		if !ok {
			line = &IssuedLine{ItemID: m.ItemID, ZoneID: m.ZoneID}
			agg[m.ItemID] = line
			order = append(order, m.ItemID)
		}
		line.Quantity += m.Quantity
		line.TotalCost = line.TotalCost.Add(m.TotalCost)
	}
	out := make([]IssuedLine, 0, len(order))
	for _, itemID := range order {
		line := *agg[itemID]
		if !line.Quantity.IsZero() {
			line.CostPerUnit = line.TotalCost.Div(line.Quantity.Decimal())
		}
		out = append(out, line)
	}
	return out, nil
}

type fixedCompany struct{ c *company.Company }

func (f fixedCompany) GetByID(context.Context, id.ID) (*company.Company, error) { return f.c, nil }

type fixedItem struct{ i *item.Item }

func (f fixedItem) GetByID(context.Context, id.ID) (*item.Item, error) { return f.i, nil }

type zoneDirectory struct{ zones map[id.ID]*zone.Zone }

func (d zoneDirectory) GetByID(_ context.Context, zoneID id.ID) (*zone.Zone, error) {
	z, ok := d.zones[zoneID]
	if !ok {
		return nil, apperror.NewNotFound("zone", zoneID.String())
	}
	return z, nil
}

type captureSink struct{ events []entity.StockMovement }

func (s *captureSink) MovementRecorded(_ context.Context, m *entity.StockMovement) error {
	s.events = append(s.events, *m)
	return nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	sink      *captureSink
	companyID id.ID
	itemID    id.ID
	rawZone   id.ID
	wipZone   id.ID
}

func newFixture(t *testing.T, cfg company.ValuationConfig, it *item.Item) *fixture {
	t.Helper()

	comp := company.NewCompany("CO-1", "Test Co")
	comp.ValuationConfig = cfg

	rawZone := zone.NewZone("Z-RAW", "Raw store", zone.TypeRaw)
	wipZone := zone.NewZone("Z-WIP", "Floor", zone.TypeWIP)

	repo := newFakeRepo()
	sink := &captureSink{}
	svc := NewService(ServiceConfig{
		Repo:      repo,
		Companies: fixedCompany{comp},
		Items:     fixedItem{it},
		Zones: zoneDirectory{zones: map[id.ID]*zone.Zone{
			rawZone.ID: rawZone,
			wipZone.ID: wipZone,
		}},
		Events:    sink,
		TxManager: passthroughTx{},
	})

	return &fixture{
		svc:       svc,
		repo:      repo,
		sink:      sink,
		companyID: comp.ID,
		itemID:    it.ID,
		rawZone:   rawZone.ID,
		wipZone:   wipZone.ID,
	}
}

func qty(s string) types.Quantity {
	q, err := types.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return types.NewQuantityFromDecimal(q)
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

func (f *fixture) receive(t *testing.T, zoneID id.ID, quantity, cost string) {
	t.Helper()
	_, err := f.svc.Record(context.Background(), MovementInput{
		CompanyID:    f.companyID,
		ItemID:       f.itemID,
		ZoneID:       zoneID,
		Direction:    entity.DirectionIn,
		MovementType: entity.MovementTypeReceipt,
		Quantity:     qty(quantity),
		CostPerUnit:  money(cost),
	})
	require.NoError(t, err)
}

func TestRecord_MovingAverage(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "50", "4")
	f.receive(t, f.rawZone, "50", "8")

	b, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.Equal(t, qty("100"), b.QuantityOnHand)
	assert.True(t, b.CostPerUnit.Equal(types.MustMoney("6")), "cost per unit = %s", b.CostPerUnit)
	assert.True(t, b.TotalCost.Equal(types.MustMoney("600")), "total cost = %s", b.TotalCost)
}

func TestRecord_InsufficientStockLeavesBalanceUnchanged(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	f := newFixture(t, company.DefaultValuationConfig(), it)

	f.receive(t, f.rawZone, "5", "4")

	_, err := f.svc.Record(context.Background(), MovementInput{
		CompanyID:    f.companyID,
		ItemID:       f.itemID,
		ZoneID:       f.rawZone,
		Direction:    entity.DirectionOut,
		MovementType: entity.MovementTypeIssue,
		Quantity:     qty("10"),
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	b, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.Equal(t, qty("5"), b.QuantityOnHand)
	assert.Len(t, f.repo.movements, 1, "the failed movement must not reach the ledger")
}

func TestRecord_LastPriceResetsUnitCost(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodLastPrice
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "10", "2")
	f.receive(t, f.rawZone, "10", "3")

	b, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.Equal(t, qty("20"), b.QuantityOnHand)
	assert.True(t, b.CostPerUnit.Equal(types.MustMoney("3")))
	assert.True(t, b.TotalCost.Equal(types.MustMoney("60")), "whole balance repriced at the latest price")
}

func TestRecord_StandardCostPinsBalance(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	it.StandardCost = money("7")
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodStandardCost
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "10", "6.5")

	// The movement keeps its actual cost; the balance is pinned to standard.
	require.Len(t, f.repo.movements, 1)
	assert.True(t, f.repo.movements[0].CostPerUnit.Equal(types.MustMoney("6.5")))

	b, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.True(t, b.CostPerUnit.Equal(types.MustMoney("7")))
	assert.True(t, b.TotalCost.Equal(types.MustMoney("70")))
}

func TestRecord_MissingCostBasis(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw) // no price fields set
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodLastPrice
	f := newFixture(t, cfg, it)

	_, err := f.svc.Record(context.Background(), MovementInput{
		CompanyID:    f.companyID,
		ItemID:       f.itemID,
		ZoneID:       f.rawZone,
		Direction:    entity.DirectionIn,
		MovementType: entity.MovementTypeReceipt,
		Quantity:     qty("10"),
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeMissingCostBasis, appErr.Code)
}

func TestRecord_OutboundConsumesAtBookCost(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "10", "5")

	m, err := f.svc.Record(context.Background(), MovementInput{
		CompanyID:    f.companyID,
		ItemID:       f.itemID,
		ZoneID:       f.rawZone,
		Direction:    entity.DirectionOut,
		MovementType: entity.MovementTypeIssue,
		Quantity:     qty("4"),
	})
	require.NoError(t, err)
	assert.True(t, m.CostPerUnit.Equal(types.MustMoney("5")))
	assert.True(t, m.TotalCost.Equal(types.MustMoney("20")))

	b, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.Equal(t, qty("6"), b.QuantityOnHand)
	assert.True(t, b.TotalCost.Equal(types.MustMoney("30")))
}

func TestRecord_EmptyBalanceResetsCost(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "10", "5")

	_, err := f.svc.Record(context.Background(), MovementInput{
		CompanyID:    f.companyID,
		ItemID:       f.itemID,
		ZoneID:       f.rawZone,
		Direction:    entity.DirectionOut,
		MovementType: entity.MovementTypeIssue,
		Quantity:     qty("10"),
	})
	require.NoError(t, err)

	b, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.True(t, b.QuantityOnHand.IsZero())
	assert.True(t, b.CostPerUnit.IsZero())
	assert.True(t, b.TotalCost.IsZero())
}

func TestRecord_ValidatesInput(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	f := newFixture(t, company.DefaultValuationConfig(), it)

	cases := []struct {
		name string
		in   MovementInput
	}{
		{"zero quantity", MovementInput{
			CompanyID: f.companyID, ItemID: f.itemID, ZoneID: f.rawZone,
			Direction: entity.DirectionIn, MovementType: entity.MovementTypeReceipt,
		}},
		{"bad direction", MovementInput{
			CompanyID: f.companyID, ItemID: f.itemID, ZoneID: f.rawZone,
			Direction: "SIDEWAYS", MovementType: entity.MovementTypeReceipt,
			Quantity: qty("1"),
		}},
		{"missing movement type", MovementInput{
			CompanyID: f.companyID, ItemID: f.itemID, ZoneID: f.rawZone,
			Direction: entity.DirectionIn, Quantity: qty("1"),
		}},
		{"nil ids", MovementInput{
			Direction: entity.DirectionIn, MovementType: entity.MovementTypeReceipt,
			Quantity: qty("1"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Record(context.Background(), tc.in)
			require.Error(t, err)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, apperror.CodeValidation, appErr.Code)
		})
	}
}

func TestTransfer_PreservesBookCost(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	cfg.WIPMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "10", "5")

	err := f.svc.Transfer(context.Background(), TransferInput{
		CompanyID:  f.companyID,
		ItemID:     f.itemID,
		FromZoneID: f.rawZone,
		ToZoneID:   f.wipZone,
		Quantity:   qty("4"),
	})
	require.NoError(t, err)

	src, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.Equal(t, qty("6"), src.QuantityOnHand)

	dst, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.wipZone)
	require.NoError(t, err)
	assert.Equal(t, qty("4"), dst.QuantityOnHand)
	assert.True(t, dst.CostPerUnit.Equal(types.MustMoney("5")), "destination inherits the book cost")
	assert.True(t, dst.TotalCost.Equal(types.MustMoney("20")))

	// receipt + two transfer legs
	assert.Len(t, f.repo.movements, 3)
}

func TestTransfer_RejectsSameZone(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	f := newFixture(t, company.DefaultValuationConfig(), it)

	err := f.svc.Transfer(context.Background(), TransferInput{
		CompanyID:  f.companyID,
		ItemID:     f.itemID,
		FromZoneID: f.rawZone,
		ToZoneID:   f.rawZone,
		Quantity:   qty("1"),
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestTransfer_InsufficientSourceStock(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "2", "5")

	err := f.svc.Transfer(context.Background(), TransferInput{
		CompanyID:  f.companyID,
		ItemID:     f.itemID,
		FromZoneID: f.rawZone,
		ToZoneID:   f.wipZone,
		Quantity:   qty("5"),
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
}

func TestReverse_CompensatesPostingCycle(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	docID := id.New()
	_, err := f.svc.Record(context.Background(), MovementInput{
		CompanyID:    f.companyID,
		ItemID:       f.itemID,
		ZoneID:       f.rawZone,
		Direction:    entity.DirectionIn,
		MovementType: entity.MovementTypeReceipt,
		Quantity:     qty("10"),
		CostPerUnit:  money("5"),
		Reference:    entity.NewReference("GOODS_RECEIPT", docID, 1),
	})
	require.NoError(t, err)

	err = f.svc.Reverse(context.Background(), "GOODS_RECEIPT", docID, 1)
	require.NoError(t, err)

	b, err := f.svc.GetBalance(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.True(t, b.QuantityOnHand.IsZero())

	// History is preserved: original plus the compensating line.
	assert.Len(t, f.repo.movements, 2)
	rev := f.repo.movements[1]
	assert.Equal(t, entity.DirectionOut, rev.Direction)
	assert.True(t, rev.CostPerUnit.Equal(types.MustMoney("5")), "reversal at original cost")
}

func TestRecord_EmitsEvent(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "3", "2")

	require.Len(t, f.sink.events, 1)
	assert.Equal(t, entity.MovementTypeReceipt, f.sink.events[0].MovementType)
}

func TestCheckConsistency(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	f.receive(t, f.rawZone, "10", "5")
	f.receive(t, f.rawZone, "2", "6")

	ok, err := f.svc.CheckConsistency(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.True(t, ok)

	// Corrupt the balance and verify detection.
	b := f.repo.balances[tripleKey{f.companyID, f.itemID, f.rawZone}]
	b.QuantityOnHand += qty("1")
	f.repo.balances[tripleKey{f.companyID, f.itemID, f.rawZone}] = b

	ok, err = f.svc.CheckConsistency(context.Background(), f.companyID, f.itemID, f.rawZone)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolveUnitCost(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	it.LastPurchasePrice = money("2.40")
	it.StandardCost = money("2.50")

	cfg := company.DefaultValuationConfig()

	t.Run("explicit cost wins", func(t *testing.T) {
		got := ResolveUnitCost(entity.MaterialClassRaw, cfg, it, money("9"))
		require.NotNil(t, got)
		assert.True(t, got.Equal(types.MustMoney("9")))
	})

	t.Run("last price", func(t *testing.T) {
		got := ResolveUnitCost(entity.MaterialClassRaw, cfg, it, nil)
		require.NotNil(t, got)
		assert.True(t, got.Equal(types.MustMoney("2.40")))
	})

	t.Run("standard cost", func(t *testing.T) {
		c := cfg
		c.RawMethod = company.MethodStandardCost
		got := ResolveUnitCost(entity.MaterialClassRaw, c, it, nil)
		require.NotNil(t, got)
		assert.True(t, got.Equal(types.MustMoney("2.50")))
	})

	t.Run("average requires explicit cost", func(t *testing.T) {
		c := cfg
		c.RawMethod = company.MethodAverage
		assert.Nil(t, ResolveUnitCost(entity.MaterialClassRaw, c, it, nil))
	})

	t.Run("unset source field", func(t *testing.T) {
		bare := item.NewItem("RM-2", "No prices", item.TypeRaw)
		assert.Nil(t, ResolveUnitCost(entity.MaterialClassRaw, cfg, bare, nil))
	})
}

func TestRecord_DefaultsPeriodToNow(t *testing.T) {
	it := item.NewItem("RM-1", "Granulate", item.TypeRaw)
	cfg := company.DefaultValuationConfig()
	cfg.RawMethod = company.MethodAverage
	f := newFixture(t, cfg, it)

	before := time.Now().UTC()
	f.receive(t, f.rawZone, "1", "1")

	require.Len(t, f.repo.movements, 1)
	assert.False(t, f.repo.movements[0].Period.Before(before))
}
