package production

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
	"plantops/internal/core/numerator"
	"plantops/internal/core/types"
	"plantops/internal/domain/bom"
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/domain/catalogs/employee"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/domain/catalogs/machine"
	"plantops/internal/domain/catalogs/zone"
	"plantops/internal/domain/ledger"
	"plantops/internal/domain/orders"
)

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// stockRepo is an in-memory ledger.Repository backing the recorder.
type stockRepo struct {
	balances  map[[3]id.ID]entity.StockBalance
	movements []entity.StockMovement
}

func newStockRepo() *stockRepo {
	return &stockRepo{balances: make(map[[3]id.ID]entity.StockBalance)}
}

func (r *stockRepo) AppendMovement(_ context.Context, m *entity.StockMovement) error {
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stockRepo) AppendMovements(_ context.Context, movements []entity.StockMovement) error {
	r.movements = append(r.movements, movements...)
	return nil
}

func (r *stockRepo) ListMovements(_ context.Context, _ ledger.MovementFilter) ([]entity.StockMovement, error) {
	return r.movements, nil
}

func (r *stockRepo) GetMovementsByReference(_ context.Context, refType string, refID id.ID, version int) ([]entity.StockMovement, error) {
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

func (r *stockRepo) SumMovements(_ context.Context, companyID, itemID, zoneID id.ID) (types.Quantity, types.Money, error) {
	var qty types.Quantity
	total := types.Zero()
	for _, m := range r.movements {
		if m.CompanyID != companyID || m.ItemID != itemID || m.ZoneID != zoneID {
			continue
		}
		qty += m.SignedQuantity()
		total = total.Add(m.SignedCost())
	}
	return qty, total, nil
}

func (r *stockRepo) GetBalance(_ context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	if b, ok := r.balances[[3]id.ID{companyID, itemID, zoneID}]; ok {
		return b, nil
	}
	return entity.EmptyBalance(companyID, itemID, zoneID), nil
}

func (r *stockRepo) GetBalanceForUpdate(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	return r.GetBalance(ctx, companyID, itemID, zoneID)
}

func (r *stockRepo) UpsertBalance(_ context.Context, b *entity.StockBalance) error {
	r.balances[[3]id.ID{b.CompanyID, b.ItemID, b.ZoneID}] = *b
	return nil
}

func (r *stockRepo) ListBalances(_ context.Context, _ ledger.BalanceFilter) ([]entity.StockBalance, error) {
	out := make([]entity.StockBalance, 0, len(r.balances))
	for _, b := range r.balances {
		out = append(out, b)
	}
	return out, nil
}

func (r *stockRepo) GetIssuedForReference(_ context.Context, refType string, refID id.ID, movementType entity.MovementType) ([]ledger.IssuedLine, error) {
	agg := make(map[id.ID]*ledger.IssuedLine)
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
			line = &ledger.IssuedLine{ItemID: m.ItemID, ZoneID: m.ZoneID}
			agg[m.ItemID] = line
			order = append(order, m.ItemID)
		}
		line.Quantity += m.Quantity
		line.TotalCost = line.TotalCost.Add(m.TotalCost)
	}
	out := make([]ledger.IssuedLine, 0, len(order))
	for _, itemID := range order {
		line := *agg[itemID]
		if !line.Quantity.IsZero() {
			line.CostPerUnit = line.TotalCost.Div(line.Quantity.Decimal())
		}
		out = append(out, line)
	}
	return out, nil
}

// logRepo is an in-memory production Repository.
type logRepo struct {
	logs map[id.ID]*ProductionLog
}

func newLogRepo() *logRepo { return &logRepo{logs: make(map[id.ID]*ProductionLog)} }

func (r *logRepo) Create(_ context.Context, log *ProductionLog) error {
	r.logs[log.ID] = log
	return nil
}

func (r *logRepo) GetByID(_ context.Context, logID id.ID) (*ProductionLog, error) {
	log, ok := r.logs[logID]
	if !ok {
		return nil, apperror.NewNotFound("production log", logID.String())
	}
	return log, nil
}

func (r *logRepo) GetForUpdate(ctx context.Context, logID id.ID) (*ProductionLog, error) {
	return r.GetByID(ctx, logID)
}

func (r *logRepo) Update(_ context.Context, log *ProductionLog) error {
	r.logs[log.ID] = log
	return nil
}

func (r *logRepo) List(_ context.Context, _ Filter) ([]*ProductionLog, error) {
	out := make([]*ProductionLog, 0, len(r.logs))
	for _, log := range r.logs {
		out = append(out, log)
	}
	return out, nil
}

func (r *logRepo) CreateCrew(_ context.Context, _ []CrewAssignment) error { return nil }

func (r *logRepo) UpdateCrew(_ context.Context, _ *CrewAssignment) error { return nil }

type companyDir struct{ c *company.Company }

func (d companyDir) GetByID(context.Context, id.ID) (*company.Company, error) { return d.c, nil }

type itemDir struct{ items map[id.ID]*item.Item }

func (d itemDir) GetByID(_ context.Context, itemID id.ID) (*item.Item, error) {
	it, ok := d.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID.String())
	}
	return it, nil
}

type zoneDir struct{ zones map[id.ID]*zone.Zone }

func (d zoneDir) GetByID(_ context.Context, zoneID id.ID) (*zone.Zone, error) {
	z, ok := d.zones[zoneID]
	if !ok {
		return nil, apperror.NewNotFound("zone", zoneID.String())
	}
	return z, nil
}

type machineDir struct{ m *machine.Machine }

func (d machineDir) GetByID(context.Context, id.ID) (*machine.Machine, error) { return d.m, nil }

type employeeDir struct{ employees map[id.ID]*employee.Employee }

func (d employeeDir) GetByID(_ context.Context, employeeID id.ID) (*employee.Employee, error) {
	e, ok := d.employees[employeeID]
	if !ok {
		return nil, apperror.NewNotFound("employee", employeeID.String())
	}
	return e, nil
}

type bomDir struct{ b *bom.BOM }

func (d bomDir) ResolveActive(_ context.Context, finishedItemID string) (*bom.BOM, error) {
	if d.b == nil || d.b.FinishedItemID != finishedItemID {
		return nil, apperror.NewNotFound("bom", finishedItemID)
	}
	return d.b, nil
}

type lineStore struct {
	line      *orders.SalesOrderLine
	good      types.Quantity
	scrap     types.Quantity
	expected  types.Money
	actual    types.Money
	costCalls int
}

func (s *lineStore) GetLine(_ context.Context, lineID id.ID) (*orders.SalesOrderLine, error) {
	if s.line == nil || s.line.LineID != lineID {
		return nil, apperror.NewNotFound("sales order line", lineID.String())
	}
	return s.line, nil
}

func (s *lineStore) GetLineForUpdate(ctx context.Context, lineID id.ID) (*orders.SalesOrderLine, error) {
	return s.GetLine(ctx, lineID)
}

func (s *lineStore) IncrementProduced(_ context.Context, _ id.ID, goodDelta, scrapDelta types.Quantity) error {
	s.good += goodDelta
	s.scrap += scrapDelta
	return nil
}

func (s *lineStore) ApplyRawCost(_ context.Context, _ id.ID, expected, actual types.Money) error {
	s.expected = expected
	s.actual = actual
	s.costCalls++
	return nil
}

type releaseCall struct {
	itemID   string
	quantity types.Quantity
}

type reservationLog struct{ calls []releaseCall }

func (r *reservationLog) ReleaseRawReservation(_ context.Context, _ id.ID, itemID string, quantity types.Quantity) error {
	r.calls = append(r.calls, releaseCall{itemID, quantity})
	return nil
}

type fixture struct {
	svc      *Service
	recorder *ledger.Service
	stock    *stockRepo
	logs     *logRepo
	lines    *lineStore
	released *reservationLog

	comp     *company.Company
	finished *item.Item
	raw      *item.Item
	machine  *machine.Machine
	crew     []*employee.Employee

	rawZone      *zone.Zone
	wipZone      *zone.Zone
	finishedZone *zone.Zone
	scrapZone    *zone.Zone
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	comp := company.NewCompany("CO-1", "Northside Plastics")
	comp.ValuationConfig = company.ValuationConfig{
		RawMethod:      company.MethodAverage,
		FinishedMethod: company.MethodManufacturingCost,
		WIPMethod:      company.MethodAverage,
	}

	finished := item.NewItem("FG-CRATE", "Crate", item.TypeFinished)
	raw := item.NewItem("RM-PP", "Polypropylene", item.TypeRaw)

	rawZone := zone.NewZone("Z-RAW", "Raw store", zone.TypeRaw)
	wipZone := zone.NewZone("Z-WIP", "Floor", zone.TypeWIP)
	finishedZone := zone.NewZone("Z-FG", "Finished goods", zone.TypeFinished)
	scrapZone := zone.NewZone("Z-SCRAP", "Scrap", zone.TypeScrap)

	mach := machine.NewMachine("IM-01", "Injection press 1")
	crew := []*employee.Employee{
		employee.NewEmployee("EMP-1", "Shift lead", employee.RoleSupervisor),
		employee.NewEmployee("EMP-2", "Operator", employee.RoleOperator),
	}

	stock := newStockRepo()
	recorder := ledger.NewService(ledger.ServiceConfig{
		Repo:      stock,
		Companies: companyDir{comp},
		Items: itemDir{items: map[id.ID]*item.Item{
			finished.ID: finished,
			raw.ID:      raw,
		}},
		Zones: zoneDir{zones: map[id.ID]*zone.Zone{
			rawZone.ID:      rawZone,
			wipZone.ID:      wipZone,
			finishedZone.ID: finishedZone,
			scrapZone.ID:    scrapZone,
		}},
		TxManager: passthroughTx{},
	})

	activeBOM := bom.NewBOM("BOM-1", "Crate v1", finished.ID.String(), 1)
	activeBOM.Lines = []bom.Line{{
		LineID:     id.New(),
		BOMID:      activeBOM.ID,
		RawItemID:  raw.ID.String(),
		Quantity:   qty("2"),
		LineNumber: 1,
	}}

	logs := newLogRepo()
	lines := &lineStore{}
	released := &reservationLog{}

	employees := make(map[id.ID]*employee.Employee, len(crew))
	for _, e := range crew {
		employees[e.ID] = e
	}

	svc := NewService(ServiceConfig{
		Repo:     logs,
		Recorder: recorder,
		BOMs:     bomDir{activeBOM},
		Items: itemDir{items: map[id.ID]*item.Item{
			finished.ID: finished,
			raw.ID:      raw,
		}},
		Zones: zoneDir{zones: map[id.ID]*zone.Zone{
			rawZone.ID:      rawZone,
			wipZone.ID:      wipZone,
			finishedZone.ID: finishedZone,
			scrapZone.ID:    scrapZone,
		}},
		Machines:     machineDir{mach},
		Employees:    employeeDir{employees},
		OrderLines:   lines,
		Reservations: released,
		Numerator:    &numerator.MockGenerator{},
		TxManager:    passthroughTx{},
	})

	return &fixture{
		svc:          svc,
		recorder:     recorder,
		stock:        stock,
		logs:         logs,
		lines:        lines,
		released:     released,
		comp:         comp,
		finished:     finished,
		raw:          raw,
		machine:      mach,
		crew:         crew,
		rawZone:      rawZone,
		wipZone:      wipZone,
		finishedZone: finishedZone,
		scrapZone:    scrapZone,
	}
}

func qty(s string) types.Quantity {
	d, err := types.NewMoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return types.NewQuantityFromDecimal(d)
}

func money(s string) *types.Money {
	m := types.MustMoney(s)
	return &m
}

// seedRaw books raw stock into the raw zone at the given unit cost.
func (f *fixture) seedRaw(t *testing.T, quantity, cost string) {
	t.Helper()
	_, err := f.recorder.Record(context.Background(), ledger.MovementInput{
		CompanyID:    f.comp.ID,
		ItemID:       f.raw.ID,
		ZoneID:       f.rawZone.ID,
		Direction:    entity.DirectionIn,
		MovementType: entity.MovementTypeReceipt,
		Quantity:     qty(quantity),
		CostPerUnit:  money(cost),
	})
	require.NoError(t, err)
}

func (f *fixture) startInput(planned string) StartInput {
	return StartInput{
		CompanyID:      f.comp.ID.String(),
		Purpose:        PurposeStock,
		FinishedItemID: f.finished.ID.String(),
		MachineID:      f.machine.ID.String(),
		PlannedQty:     qty(planned),
		RawZoneID:      f.rawZone.ID.String(),
		WIPZoneID:      f.wipZone.ID.String(),
		FinishedZoneID: f.finishedZone.ID.String(),
		ScrapZoneID:    f.scrapZone.ID.String(),
	}
}

func (f *fixture) balance(t *testing.T, itemID, zoneID id.ID) entity.StockBalance {
	t.Helper()
	b, err := f.recorder.GetBalance(context.Background(), f.comp.ID, itemID, zoneID)
	require.NoError(t, err)
	return b
}

func TestStart_IssuesBOMAndOpensWIP(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "300", "1.50")

	log, err := f.svc.Start(context.Background(), f.startInput("100"))
	require.NoError(t, err)

	assert.Equal(t, StatusOpen, log.Status)
	assert.Equal(t, "MOCK-2026-00001", log.Number)
	require.NotNil(t, log.BOMID)
	assert.Equal(t, qty("200"), log.IssuedRawQty)
	assert.True(t, log.IssuedRawCost.Equal(types.MustMoney("300")), "issued cost = %s", log.IssuedRawCost)

	raw := f.balance(t, f.raw.ID, f.rawZone.ID)
	assert.Equal(t, qty("100"), raw.QuantityOnHand)
	assert.True(t, raw.CostPerUnit.Equal(types.MustMoney("1.5")))

	// Planned output is booked into WIP at blended raw cost.
	wip := f.balance(t, f.finished.ID, f.wipZone.ID)
	assert.Equal(t, qty("100"), wip.QuantityOnHand)
	assert.True(t, wip.CostPerUnit.Equal(types.MustMoney("3")), "wip unit cost = %s", wip.CostPerUnit)
}

func TestStart_WithoutBOMProducesAtZeroCost(t *testing.T) {
	f := newFixture(t)
	other := item.NewItem("FG-LID", "Lid", item.TypeFinished)
	f.svc.items = itemDir{items: map[id.ID]*item.Item{other.ID: other}}
	f.svc.boms = bomDir{nil}
	f.recorder = ledger.NewService(ledger.ServiceConfig{
		Repo:      f.stock,
		Companies: companyDir{f.comp},
		Items:     itemDir{items: map[id.ID]*item.Item{other.ID: other}},
		Zones: zoneDir{zones: map[id.ID]*zone.Zone{
			f.rawZone.ID:      f.rawZone,
			f.wipZone.ID:      f.wipZone,
			f.finishedZone.ID: f.finishedZone,
			f.scrapZone.ID:    f.scrapZone,
		}},
		TxManager: passthroughTx{},
	})
	f.svc.recorder = f.recorder

	in := f.startInput("10")
	in.FinishedItemID = other.ID.String()

	log, err := f.svc.Start(context.Background(), in)
	require.NoError(t, err)

	assert.Nil(t, log.BOMID)
	assert.True(t, log.IssuedRawQty.IsZero())

	wip := f.balance(t, other.ID, f.wipZone.ID)
	assert.Equal(t, qty("10"), wip.QuantityOnHand)
	assert.True(t, wip.CostPerUnit.IsZero())
}

func TestStart_RejectsRawFinishedItem(t *testing.T) {
	f := newFixture(t)

	in := f.startInput("10")
	in.FinishedItemID = f.raw.ID.String()

	_, err := f.svc.Start(context.Background(), in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestStart_RequiresWIPZoneType(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "100", "1.50")

	in := f.startInput("10")
	in.WIPZoneID = f.finishedZone.ID.String()

	_, err := f.svc.Start(context.Background(), in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestStart_InsufficientRawFailsWhole(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "100", "1.50") // plan 100 needs 200

	_, err := f.svc.Start(context.Background(), f.startInput("100"))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)
}

func TestClose_PartialThenFinal(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "300", "1.50")

	log, err := f.svc.Start(context.Background(), f.startInput("100"))
	require.NoError(t, err)

	// First close: 40 good, run stays open.
	log, err = f.svc.Close(context.Background(), log.ID, CloseInput{GoodQty: qty("40")})
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, log.Status)
	assert.Equal(t, qty("60"), log.Remaining())
	assert.InDelta(t, 40.0, log.OEEPct, 1e-9)
	assert.Nil(t, log.CloseAt)

	fg := f.balance(t, f.finished.ID, f.finishedZone.ID)
	assert.Equal(t, qty("40"), fg.QuantityOnHand)
	assert.True(t, fg.CostPerUnit.Equal(types.MustMoney("3")), "finished inherits WIP cost")

	// Final close exhausts the plan.
	log, err = f.svc.Close(context.Background(), log.ID, CloseInput{
		GoodQty:   qty("55"),
		RejectQty: qty("3"),
		ScrapQty:  qty("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, log.Status)
	require.NotNil(t, log.CloseAt)
	assert.Equal(t, qty("95"), log.GoodQty)
	assert.InDelta(t, 95.0, log.OEEPct, 1e-9)

	wip := f.balance(t, f.finished.ID, f.wipZone.ID)
	assert.True(t, wip.QuantityOnHand.IsZero(), "WIP is emptied by the final close")

	fg = f.balance(t, f.finished.ID, f.finishedZone.ID)
	assert.Equal(t, qty("95"), fg.QuantityOnHand)

	scrap := f.balance(t, f.finished.ID, f.scrapZone.ID)
	assert.Equal(t, qty("5"), scrap.QuantityOnHand)
	assert.True(t, scrap.TotalCost.Equal(types.MustMoney("15")))

	// Variance: 95% yield should have used 95% of issued material.
	assert.Equal(t, qty("190"), log.ExpectedRawQty)
	assert.True(t, log.ExpectedRawCost.Equal(types.MustMoney("285")))
	assert.Equal(t, qty("200"), log.ActualRawQty)
	assert.True(t, log.ActualRawCost.Equal(types.MustMoney("300")))
	assert.True(t, log.MaterialVarianceCost.Equal(types.MustMoney("15")))
	assert.InDelta(t, 5.2631, log.MaterialVariancePct, 0.001)
}

func TestClose_RejectsOverproduction(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "100", "1.50")

	log, err := f.svc.Start(context.Background(), f.startInput("10"))
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), log.ID, CloseInput{GoodQty: qty("11")})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestClose_RejectsClosedRun(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "100", "1.50")

	log, err := f.svc.Start(context.Background(), f.startInput("10"))
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), log.ID, CloseInput{GoodQty: qty("10")})
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), log.ID, CloseInput{GoodQty: qty("1")})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeInvalidState, appErr.Code)
}

func TestClose_ConsumptionAdjustment(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "30", "1.50")

	log, err := f.svc.Start(context.Background(), f.startInput("10"))
	require.NoError(t, err)
	require.Equal(t, qty("20"), log.IssuedRawQty)

	// The run actually consumed 22 against the issued 20.
	log, err = f.svc.Close(context.Background(), log.ID, CloseInput{
		GoodQty: qty("10"),
		RawConsumption: []ConsumptionInput{{
			RawItemID: f.raw.ID.String(),
			Quantity:  qty("22"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, qty("2"), log.AdjustedRawQty)
	assert.True(t, log.AdjustedRawCost.Equal(types.MustMoney("3")))
	assert.Equal(t, qty("22"), log.ActualRawQty)
	assert.True(t, log.ActualRawCost.Equal(types.MustMoney("33")))
	assert.True(t, log.MaterialVarianceCost.Equal(types.MustMoney("3")))
	assert.InDelta(t, 10.0, log.MaterialVariancePct, 1e-9)

	// The overconsumption left the raw zone: 30 - 20 - 2 = 8.
	raw := f.balance(t, f.raw.ID, f.rawZone.ID)
	assert.Equal(t, qty("8"), raw.QuantityOnHand)
}

func TestClose_ConsumptionReturn(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "30", "1.50")

	log, err := f.svc.Start(context.Background(), f.startInput("10"))
	require.NoError(t, err)

	// Only 18 of the issued 20 was used; 2 goes back to raw stock.
	log, err = f.svc.Close(context.Background(), log.ID, CloseInput{
		GoodQty: qty("10"),
		RawConsumption: []ConsumptionInput{{
			RawItemID: f.raw.ID.String(),
			Quantity:  qty("18"),
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, qty("-2"), log.AdjustedRawQty)
	assert.True(t, log.MaterialVarianceCost.Equal(types.MustMoney("-3")))

	raw := f.balance(t, f.raw.ID, f.rawZone.ID)
	assert.Equal(t, qty("12"), raw.QuantityOnHand)
}

func TestClose_UnknownConsumptionItem(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "30", "1.50")

	log, err := f.svc.Start(context.Background(), f.startInput("10"))
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), log.ID, CloseInput{
		GoodQty: qty("10"),
		RawConsumption: []ConsumptionInput{{
			RawItemID: id.New().String(),
			Quantity:  qty("1"),
		}},
	})
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestCrewLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "100", "1.50")

	in := f.startInput("10")
	in.Crew = []CrewInput{
		{EmployeeID: f.crew[0].ID.String()},
		{EmployeeID: f.crew[1].ID.String(), Role: employee.RoleHelper},
	}

	log, err := f.svc.Start(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, log.Crew, 2)
	assert.Equal(t, employee.RoleSupervisor, log.Crew[0].Role, "role defaults from the employee card")
	assert.Equal(t, employee.RoleHelper, log.Crew[1].Role)

	// One member clocks out mid-run.
	endAt := log.StartAt.Add(4 * time.Hour)
	log, err = f.svc.Close(context.Background(), log.ID, CloseInput{
		GoodQty:     qty("4"),
		CrewUpdates: []CrewUpdate{{EmployeeID: f.crew[1].ID.String(), EndAt: endAt}},
	})
	require.NoError(t, err)
	assert.False(t, log.Crew[1].IsOpen())
	assert.True(t, log.Crew[0].IsOpen())

	// The final close force-closes everyone still on the clock.
	log, err = f.svc.Close(context.Background(), log.ID, CloseInput{GoodQty: qty("6")})
	require.NoError(t, err)
	assert.False(t, log.Crew[0].IsOpen())
	require.NotNil(t, log.Crew[0].EndAt)
	assert.Equal(t, *log.CloseAt, *log.Crew[0].EndAt)
}

func TestCrew_EndBeforeStartRejected(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "100", "1.50")

	in := f.startInput("10")
	in.Crew = []CrewInput{{EmployeeID: f.crew[0].ID.String()}}

	log, err := f.svc.Start(context.Background(), in)
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), log.ID, CloseInput{
		GoodQty: qty("4"),
		CrewUpdates: []CrewUpdate{{
			EmployeeID: f.crew[0].ID.String(),
			EndAt:      log.StartAt.Add(-time.Hour),
		}},
	})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestOrderRun_UpdatesLineAndReleasesReservations(t *testing.T) {
	f := newFixture(t)
	f.seedRaw(t, "100", "1.50")

	lineID := id.New()
	f.lines.line = &orders.SalesOrderLine{
		LineID:   lineID,
		ItemID:   f.finished.ID.String(),
		Quantity: qty("10"),
	}

	in := f.startInput("10")
	in.Purpose = PurposeOrder
	in.FinishedItemID = ""
	in.SalesOrderLineID = &lineID

	log, err := f.svc.Start(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, f.finished.ID.String(), log.FinishedItemID, "item comes from the order line")

	require.Len(t, f.released.calls, 1)
	assert.Equal(t, f.raw.ID.String(), f.released.calls[0].itemID)
	assert.Equal(t, qty("20"), f.released.calls[0].quantity)

	log, err = f.svc.Close(context.Background(), log.ID, CloseInput{
		GoodQty:   qty("9"),
		RejectQty: qty("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, log.Status)

	assert.Equal(t, qty("9"), f.lines.good)
	assert.Equal(t, qty("1"), f.lines.scrap)
	require.Equal(t, 1, f.lines.costCalls)
	assert.True(t, f.lines.expected.Equal(types.MustMoney("27")), "expected = issued x good ratio")
	assert.True(t, f.lines.actual.Equal(types.MustMoney("30")))
}

func TestOrderRun_RequiresLine(t *testing.T) {
	f := newFixture(t)

	in := f.startInput("10")
	in.Purpose = PurposeOrder
	in.SalesOrderLineID = nil

	_, err := f.svc.Start(context.Background(), in)
	require.Error(t, err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestBOMLine_RequiredQuantity(t *testing.T) {
	l := bom.Line{Quantity: qty("1.6")}
	assert.Equal(t, qty("160"), l.RequiredQuantity(qty("100")))
	assert.Equal(t, qty("0.032"), l.RequiredQuantity(qty("0.02")))
}
