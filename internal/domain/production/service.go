package production

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/numerator"
	"plantops/internal/core/tenant"
	"plantops/internal/core/tx"
	"plantops/internal/core/types"
	"plantops/internal/domain/bom"
	"plantops/internal/domain/catalogs/employee"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/domain/catalogs/machine"
	"plantops/internal/domain/catalogs/zone"
	"plantops/internal/domain/ledger"
	"plantops/internal/domain/orders"
	"plantops/pkg/logger"
)

// BOMResolver resolves the active bill of materials for a finished item.
type BOMResolver interface {
	ResolveActive(ctx context.Context, finishedItemID string) (*bom.BOM, error)
}

// ItemLookup resolves items for type validation.
type ItemLookup interface {
	GetByID(ctx context.Context, itemID id.ID) (*item.Item, error)
}

// ZoneLookup resolves zones referenced by a run.
type ZoneLookup interface {
	GetByID(ctx context.Context, zoneID id.ID) (*zone.Zone, error)
}

// MachineLookup resolves machines for scheduling checks.
type MachineLookup interface {
	GetByID(ctx context.Context, machineID id.ID) (*machine.Machine, error)
}

// EmployeeLookup resolves crew members.
type EmployeeLookup interface {
	GetByID(ctx context.Context, employeeID id.ID) (*employee.Employee, error)
}

// CrewInput names one crew member at start.
type CrewInput struct {
	EmployeeID string        `json:"employeeId"`
	Role       employee.Role `json:"role"`
	StartAt    *time.Time    `json:"startAt,omitempty"`
}

// StartInput describes a new production run.
type StartInput struct {
	CompanyID string  `json:"companyId"`
	Purpose   Purpose `json:"purpose"`

	// FinishedItemID is required for STOCK runs; for ORDER runs it is
	// taken from the sales-order line
	FinishedItemID   string `json:"finishedItemId,omitempty"`
	SalesOrderLineID *id.ID `json:"salesOrderLineId,omitempty"`

	MachineID  string         `json:"machineId"`
	PlannedQty types.Quantity `json:"plannedQty"`

	RawZoneID      string `json:"rawZoneId"`
	WIPZoneID      string `json:"wipZoneId"`
	FinishedZoneID string `json:"finishedZoneId"`
	ScrapZoneID    string `json:"scrapZoneId"`

	StartAt *time.Time  `json:"startAt,omitempty"`
	Crew    []CrewInput `json:"crew,omitempty"`
	Comment string      `json:"comment,omitempty"`
}

// ConsumptionInput reports actual raw usage for one close.
type ConsumptionInput struct {
	RawItemID string         `json:"rawItemId"`
	Quantity  types.Quantity `json:"quantity"`
}

// CrewUpdate sets an end time for one crew member.
type CrewUpdate struct {
	EmployeeID string    `json:"employeeId"`
	EndAt      time.Time `json:"endAt"`
}

// CloseInput describes one (possibly partial) close.
// Quantities are deltas for this close, not cumulative totals.
type CloseInput struct {
	GoodQty   types.Quantity `json:"goodQty"`
	RejectQty types.Quantity `json:"rejectQty"`
	ScrapQty  types.Quantity `json:"scrapQty"`

	RawConsumption []ConsumptionInput `json:"rawConsumption,omitempty"`
	CrewUpdates    []CrewUpdate       `json:"crewUpdates,omitempty"`

	CloseAt *time.Time `json:"closeAt,omitempty"`
}

// Service orchestrates the production log lifecycle.
// In Database-per-Tenant architecture, TxManager is obtained from context.
type Service struct {
	repo      Repository
	recorder  *ledger.Service
	boms      BOMResolver
	items     ItemLookup
	zones     ZoneLookup
	machines  MachineLookup
	employees EmployeeLookup

	// orderLines and reservations are optional; nil disables order
	// integration (STOCK runs only)
	orderLines   orders.LineStore
	reservations orders.ReservationReleaser

	numerator numerator.Generator
	txManager tx.Manager
}

// ServiceConfig configures the production service.
type ServiceConfig struct {
	Repo      Repository
	Recorder  *ledger.Service
	BOMs      BOMResolver
	Items     ItemLookup
	Zones     ZoneLookup
	Machines  MachineLookup
	Employees EmployeeLookup

	OrderLines   orders.LineStore
	Reservations orders.ReservationReleaser

	Numerator numerator.Generator
	TxManager tx.Manager
}

// NewService creates a production service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:         cfg.Repo,
		recorder:     cfg.Recorder,
		boms:         cfg.BOMs,
		items:        cfg.Items,
		zones:        cfg.Zones,
		machines:     cfg.Machines,
		employees:    cfg.Employees,
		orderLines:   cfg.OrderLines,
		reservations: cfg.Reservations,
		numerator:    cfg.Numerator,
		txManager:    cfg.TxManager,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Start opens a production run: creates the log and crew rows, issues raw
// materials from the bill of materials, and books planned output into WIP.
// The whole operation is atomic.
func (s *Service) Start(ctx context.Context, in StartInput) (*ProductionLog, error) {
	finishedItemID, line, err := s.resolveFinishedItem(ctx, in)
	if err != nil {
		return nil, err
	}

	log := NewProductionLog(in.CompanyID, in.Purpose, finishedItemID, in.MachineID, in.PlannedQty)
	log.SalesOrderLineID = in.SalesOrderLineID
	log.RawZoneID = in.RawZoneID
	log.WIPZoneID = in.WIPZoneID
	log.FinishedZoneID = in.FinishedZoneID
	log.ScrapZoneID = in.ScrapZoneID
	log.Comment = in.Comment
	if in.StartAt != nil {
		log.StartAt = in.StartAt.UTC()
		log.Date = in.StartAt.UTC()
	}

	if err := log.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.validateMachine(ctx, in.MachineID); err != nil {
		return nil, err
	}

	if err := s.validateZones(ctx, log); err != nil {
		return nil, err
	}

	crew, err := s.buildCrew(ctx, log, in.Crew)
	if err != nil {
		return nil, err
	}
	log.Crew = crew

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if log.Number == "" {
			cfg := numerator.DefaultConfig("PL")
			number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, log.StartAt)
			if err != nil {
				return fmt.Errorf("generate number: %w", err)
			}
			log.Number = number
		}

		if err := s.repo.Create(ctx, log); err != nil {
			return err
		}
		if len(log.Crew) > 0 {
			if err := s.repo.CreateCrew(ctx, log.Crew); err != nil {
				return err
			}
		}

		if err := s.issueRawMaterials(ctx, log, line); err != nil {
			return err
		}

		return s.repo.Update(ctx, log)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production started",
		"log_id", log.ID,
		"number", log.Number,
		"item_id", log.FinishedItemID,
		"planned_qty", log.PlannedQty,
		"issued_cost", log.IssuedRawCost,
	)

	return log, nil
}

// resolveFinishedItem determines the finished item for the run and loads
// the sales-order line for ORDER runs.
func (s *Service) resolveFinishedItem(ctx context.Context, in StartInput) (string, *orders.SalesOrderLine, error) {
	var (
		finishedItemID = in.FinishedItemID
		line           *orders.SalesOrderLine
	)

	if in.Purpose == PurposeOrder {
		if in.SalesOrderLineID == nil {
			return "", nil, apperror.NewValidation("sales order line is required for ORDER runs").
				WithDetail("field", "salesOrderLineId")
		}
		if s.orderLines == nil {
			return "", nil, apperror.NewInternal(fmt.Errorf("order line store is not configured"))
		}

		l, err := s.orderLines.GetLine(ctx, *in.SalesOrderLineID)
		if err != nil {
			return "", nil, err
		}
		line = l
		finishedItemID = l.ItemID
	}

	itemID, err := id.Parse(finishedItemID)
	if err != nil {
		return "", nil, apperror.NewValidation("invalid finished item id").
			WithDetail("finishedItemId", finishedItemID)
	}

	it, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return "", nil, err
	}
	if it.Type != item.TypeFinished {
		return "", nil, apperror.NewValidation("production requires a finished item").
			WithDetail("itemId", finishedItemID).
			WithDetail("type", string(it.Type))
	}

	return finishedItemID, line, nil
}

func (s *Service) validateMachine(ctx context.Context, machineID string) error {
	mid, err := id.Parse(machineID)
	if err != nil {
		return apperror.NewValidation("invalid machine id").
			WithDetail("machineId", machineID)
	}

	m, err := s.machines.GetByID(ctx, mid)
	if err != nil {
		return err
	}
	if !m.CanSchedule() {
		return apperror.NewValidation("machine is not available for scheduling").
			WithDetail("machineId", machineID)
	}
	return nil
}

// validateZones checks the four zones a run touches. The WIP zone must be
// of WIP type so output accumulates at work-in-progress cost.
func (s *Service) validateZones(ctx context.Context, log *ProductionLog) error {
	check := func(zoneID, field string, wantWIP bool) error {
		if zoneID == "" {
			return apperror.NewValidation(field + " is required").
				WithDetail("field", field)
		}
		zid, err := id.Parse(zoneID)
		if err != nil {
			return apperror.NewValidation("invalid zone id").
				WithDetail(field, zoneID)
		}
		z, err := s.zones.GetByID(ctx, zid)
		if err != nil {
			return err
		}
		if !z.CanHoldStock() {
			return apperror.NewValidation("zone cannot hold stock").
				WithDetail(field, zoneID)
		}
		if wantWIP && z.Type != zone.TypeWIP {
			return apperror.NewValidation("zone must be of WIP type").
				WithDetail(field, zoneID).
				WithDetail("type", string(z.Type))
		}
		return nil
	}

	if err := check(log.RawZoneID, "rawZoneId", false); err != nil {
		return err
	}
	if err := check(log.WIPZoneID, "wipZoneId", true); err != nil {
		return err
	}
	if err := check(log.FinishedZoneID, "finishedZoneId", false); err != nil {
		return err
	}
	return check(log.ScrapZoneID, "scrapZoneId", false)
}

func (s *Service) buildCrew(ctx context.Context, log *ProductionLog, inputs []CrewInput) ([]CrewAssignment, error) {
	crew := make([]CrewAssignment, 0, len(inputs))
	for _, in := range inputs {
		eid, err := id.Parse(in.EmployeeID)
		if err != nil {
			return nil, apperror.NewValidation("invalid employee id").
				WithDetail("employeeId", in.EmployeeID)
		}

		emp, err := s.employees.GetByID(ctx, eid)
		if err != nil {
			return nil, err
		}
		if !emp.CanAssign() {
			return nil, apperror.NewValidation("employee is not available for crew assignment").
				WithDetail("employeeId", in.EmployeeID)
		}

		role := in.Role
		if role == "" {
			role = emp.DefaultRole
		}

		startAt := log.StartAt
		if in.StartAt != nil {
			startAt = in.StartAt.UTC()
		}

		crew = append(crew, CrewAssignment{
			LineID:     id.New(),
			LogID:      log.ID,
			EmployeeID: in.EmployeeID,
			Role:       role,
			StartAt:    startAt,
		})
	}
	return crew, nil
}

// issueRawMaterials explodes the active BOM by the planned quantity,
// releases order reservations, issues raw stock referenced to the log, and
// books the planned quantity into WIP at the blended raw cost.
func (s *Service) issueRawMaterials(ctx context.Context, log *ProductionLog, line *orders.SalesOrderLine) error {
	companyID, err := id.Parse(log.CompanyID)
	if err != nil {
		return apperror.NewValidation("invalid company id").
			WithDetail("companyId", log.CompanyID)
	}
	wipZoneID := id.MustParse(log.WIPZoneID)
	rawZoneID := id.MustParse(log.RawZoneID)
	finishedItemID := id.MustParse(log.FinishedItemID)

	ref := entity.NewReference(DocumentType, log.ID, 1)

	activeBOM, err := s.boms.ResolveActive(ctx, log.FinishedItemID)
	if err != nil {
		// A finished item without a BOM produces at zero material cost.
		if !apperror.IsNotFound(err) {
			return err
		}
		activeBOM = nil
	}

	issuedQty := types.Quantity(0)
	issuedCost := types.Zero()

	if activeBOM != nil {
		bomID := activeBOM.ID.String()
		log.BOMID = &bomID

		for _, bl := range activeBOM.Lines {
			reqQty := bl.RequiredQuantity(log.PlannedQty)
			if reqQty <= 0 {
				continue
			}

			if line != nil && s.reservations != nil {
				if err := s.reservations.ReleaseRawReservation(ctx, line.LineID, bl.RawItemID, reqQty); err != nil {
					return fmt.Errorf("release reservation for %s: %w", bl.RawItemID, err)
				}
			}

			mv, err := s.recorder.Record(ctx, ledger.MovementInput{
				CompanyID:    companyID,
				ItemID:       id.MustParse(bl.RawItemID),
				ZoneID:       rawZoneID,
				Direction:    entity.DirectionOut,
				MovementType: entity.MovementTypeIssue,
				Quantity:     reqQty,
				Reference:    ref,
				Notes:        "raw issue " + log.Number,
				Period:       log.StartAt,
			})
			if err != nil {
				return err
			}

			issuedQty += reqQty
			issuedCost = issuedCost.Add(mv.TotalCost)
		}
	}

	log.IssuedRawQty = issuedQty
	log.IssuedRawCost = issuedCost

	// WIP unit cost spreads the issued raw cost over the planned output.
	wipUnit := types.Zero()
	if issuedQty > 0 && log.PlannedQty > 0 {
		wipUnit = issuedCost.Div(log.PlannedQty.Decimal())
	}

	_, err = s.recorder.Record(ctx, ledger.MovementInput{
		CompanyID:    companyID,
		ItemID:       finishedItemID,
		ZoneID:       wipZoneID,
		Direction:    entity.DirectionIn,
		MovementType: entity.MovementTypeProduce,
		Quantity:     log.PlannedQty,
		CostPerUnit:  &wipUnit,
		Reference:    ref,
		Notes:        "wip open " + log.Number,
		Period:       log.StartAt,
	})
	return err
}

// Close applies one output delta to an open run. It may be called several
// times; the close that brings remaining to zero finalizes the run.
func (s *Service) Close(ctx context.Context, logID id.ID, in CloseInput) (*ProductionLog, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var log *ProductionLog
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		log, err = s.repo.GetForUpdate(ctx, logID)
		if err != nil {
			return err
		}

		closeAt := time.Now().UTC()
		if in.CloseAt != nil {
			closeAt = in.CloseAt.UTC()
		}

		remaining, err := log.ApplyCloseDelta(in.GoodQty, in.RejectQty, in.ScrapQty)
		if err != nil {
			return err
		}

		if err := s.moveOutput(ctx, log, in, closeAt); err != nil {
			return err
		}

		if log.SalesOrderLineID != nil && s.orderLines != nil {
			scrapDelta := in.RejectQty + in.ScrapQty
			if err := s.orderLines.IncrementProduced(ctx, *log.SalesOrderLineID, in.GoodQty, scrapDelta); err != nil {
				return err
			}
		}

		if len(in.RawConsumption) > 0 {
			if err := s.applyConsumption(ctx, log, in, closeAt); err != nil {
				return err
			}
		}

		if err := s.applyCrewUpdates(log, in.CrewUpdates); err != nil {
			return err
		}

		if remaining == 0 {
			if err := s.finalize(ctx, log, closeAt); err != nil {
				return err
			}
		}

		if err := s.repo.Update(ctx, log); err != nil {
			return err
		}
		for i := range log.Crew {
			if err := s.repo.UpdateCrew(ctx, &log.Crew[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "production closed",
		"log_id", log.ID,
		"number", log.Number,
		"status", log.Status,
		"good_qty", log.GoodQty,
		"remaining", log.Remaining(),
	)

	return log, nil
}

// moveOutput moves this close's delta out of WIP and into the finished and
// scrap zones, all at the WIP book cost captured by the OUT movement.
func (s *Service) moveOutput(ctx context.Context, log *ProductionLog, in CloseInput, closeAt time.Time) error {
	companyID := id.MustParse(log.CompanyID)
	finishedItemID := id.MustParse(log.FinishedItemID)
	ref := entity.NewReference(DocumentType, log.ID, 1)

	delta := in.GoodQty + in.RejectQty + in.ScrapQty

	out, err := s.recorder.Record(ctx, ledger.MovementInput{
		CompanyID:    companyID,
		ItemID:       finishedItemID,
		ZoneID:       id.MustParse(log.WIPZoneID),
		Direction:    entity.DirectionOut,
		MovementType: entity.MovementTypeProduce,
		Quantity:     delta,
		Reference:    ref,
		Notes:        "wip close " + log.Number,
		Period:       closeAt,
	})
	if err != nil {
		return err
	}
	wipCost := out.CostPerUnit

	if in.GoodQty > 0 {
		_, err = s.recorder.Record(ctx, ledger.MovementInput{
			CompanyID:    companyID,
			ItemID:       finishedItemID,
			ZoneID:       id.MustParse(log.FinishedZoneID),
			Direction:    entity.DirectionIn,
			MovementType: entity.MovementTypeProduce,
			Quantity:     in.GoodQty,
			CostPerUnit:  &wipCost,
			Reference:    ref,
			Notes:        "finished output " + log.Number,
			Period:       closeAt,
		})
		if err != nil {
			return err
		}
	}

	if rejected := in.RejectQty + in.ScrapQty; rejected > 0 {
		_, err = s.recorder.Record(ctx, ledger.MovementInput{
			CompanyID:    companyID,
			ItemID:       finishedItemID,
			ZoneID:       id.MustParse(log.ScrapZoneID),
			Direction:    entity.DirectionIn,
			MovementType: entity.MovementTypeProduce,
			Quantity:     rejected,
			CostPerUnit:  &wipCost,
			Reference:    ref,
			Notes:        "scrap output " + log.Number,
			Period:       closeAt,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// applyConsumption diffs reported raw usage against the share of raw
// materials issued at start for this close, booking the difference as
// ADJUSTMENT movements at the originally issued unit cost.
func (s *Service) applyConsumption(ctx context.Context, log *ProductionLog, in CloseInput, closeAt time.Time) error {
	companyID := id.MustParse(log.CompanyID)
	rawZoneID := id.MustParse(log.RawZoneID)
	ref := entity.NewReference(DocumentType, log.ID, 1)

	issued, err := s.recorder.IssuedForReference(ctx, DocumentType, log.ID, entity.MovementTypeIssue)
	if err != nil {
		return err
	}
	issuedByItem := make(map[string]ledger.IssuedLine, len(issued))
	for _, l := range issued {
		issuedByItem[l.ItemID.String()] = l
	}

	// Scale the issued quantities down to this close's share of the plan.
	delta := in.GoodQty + in.RejectQty + in.ScrapQty
	shareRatio := delta.Decimal().Div(log.PlannedQty.Decimal())

	for _, c := range in.RawConsumption {
		if c.Quantity < 0 {
			return apperror.NewValidation("consumption must not be negative").
				WithDetail("rawItemId", c.RawItemID)
		}

		il, ok := issuedByItem[c.RawItemID]
		if !ok {
			return apperror.NewNotFound("issued raw material", c.RawItemID)
		}

		scaledIssued := types.NewQuantityFromDecimal(il.Quantity.Decimal().Mul(shareRatio))
		diff := c.Quantity - scaledIssued
		if diff == 0 {
			continue
		}

		direction := entity.DirectionOut // consumed more than issued
		if diff < 0 {
			direction = entity.DirectionIn // returned to raw stock
		}
		unitCost := il.CostPerUnit

		_, err := s.recorder.Record(ctx, ledger.MovementInput{
			CompanyID:    companyID,
			ItemID:       il.ItemID,
			ZoneID:       rawZoneID,
			Direction:    direction,
			MovementType: entity.MovementTypeAdjustment,
			Quantity:     diff.Abs(),
			CostPerUnit:  &unitCost,
			Reference:    ref,
			Notes:        "consumption adjustment " + log.Number,
			Period:       closeAt,
		})
		if err != nil {
			return err
		}

		log.AdjustedRawQty += diff
		log.AdjustedRawCost = log.AdjustedRawCost.Add(diff.Cost(unitCost))
	}

	return nil
}

// applyCrewUpdates sets end times reported with this close.
func (s *Service) applyCrewUpdates(log *ProductionLog, updates []CrewUpdate) error {
	for _, u := range updates {
		ca := log.FindCrew(u.EmployeeID)
		if ca == nil {
			return apperror.NewNotFound("crew assignment", u.EmployeeID)
		}
		endAt := u.EndAt.UTC()
		if endAt.Before(ca.StartAt) {
			return apperror.NewValidation("crew end time is before start time").
				WithDetail("employeeId", u.EmployeeID).
				WithDetail("startAt", ca.StartAt).
				WithDetail("endAt", endAt)
		}
		ca.EndAt = &endAt
	}
	return nil
}

// finalize flips the run to CLOSED, computes material variance, and pushes
// raw costs into an attached sales-order line.
func (s *Service) finalize(ctx context.Context, log *ProductionLog, closeAt time.Time) error {
	goodRatio := log.GoodQty.Decimal().Div(log.PlannedQty.Decimal())

	log.ExpectedRawQty = types.NewQuantityFromDecimal(log.IssuedRawQty.Decimal().Mul(goodRatio))
	log.ExpectedRawCost = log.IssuedRawCost.Mul(goodRatio)
	log.ActualRawQty = log.IssuedRawQty + log.AdjustedRawQty
	log.ActualRawCost = log.IssuedRawCost.Add(log.AdjustedRawCost)
	log.MaterialVarianceCost = log.ActualRawCost.Sub(log.ExpectedRawCost)

	switch {
	case !log.ExpectedRawCost.IsZero():
		log.MaterialVariancePct = log.MaterialVarianceCost.
			Div(log.ExpectedRawCost).
			Mul(oneHundred).
			InexactFloat64()
	case log.ExpectedRawQty > 0:
		// Quantity-based fallback when there is no cost basis.
		varianceQty := log.ActualRawQty - log.ExpectedRawQty
		log.MaterialVariancePct = varianceQty.Decimal().
			Div(log.ExpectedRawQty.Decimal()).
			Mul(oneHundred).
			InexactFloat64()
	default:
		log.MaterialVariancePct = 0
	}

	log.MarkClosed(closeAt)

	if log.SalesOrderLineID != nil && s.orderLines != nil {
		if err := s.orderLines.ApplyRawCost(ctx, *log.SalesOrderLineID, log.ExpectedRawCost, log.ActualRawCost); err != nil {
			return err
		}
	}

	return nil
}

// Get returns a production log with crew.
func (s *Service) Get(ctx context.Context, logID id.ID) (*ProductionLog, error) {
	return s.repo.GetByID(ctx, logID)
}

// List returns production logs matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*ProductionLog, error) {
	return s.repo.List(ctx, filter)
}
