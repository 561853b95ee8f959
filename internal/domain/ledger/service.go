package ledger

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/core/apperror"
	"plantops/internal/core/entity"
	"plantops/internal/core/id"
	"plantops/internal/core/security"
	"plantops/internal/core/tenant"
	"plantops/internal/core/tx"
	"plantops/internal/core/types"
	"plantops/internal/domain/catalogs/company"
	"plantops/internal/domain/catalogs/item"
	"plantops/internal/domain/catalogs/zone"
	"plantops/pkg/logger"
)

// CompanyLookup resolves companies for valuation config.
type CompanyLookup interface {
	GetByID(ctx context.Context, companyID id.ID) (*company.Company, error)
}

// ItemLookup resolves items for costing fields.
type ItemLookup interface {
	GetByID(ctx context.Context, itemID id.ID) (*item.Item, error)
}

// ZoneLookup resolves zones for existence and type.
type ZoneLookup interface {
	GetByID(ctx context.Context, zoneID id.ID) (*zone.Zone, error)
}

// EventSink receives committed movements, e.g. an outbox store.
// Called inside the recording transaction so the event commits with the
// movement or not at all.
type EventSink interface {
	MovementRecorded(ctx context.Context, m *entity.StockMovement) error
}

// MovementInput describes a desired movement for the recorder.
type MovementInput struct {
	CompanyID id.ID
	ItemID    id.ID
	ZoneID    id.ID

	Direction    entity.Direction
	MovementType entity.MovementType

	// Quantity must be positive; Direction carries the sign
	Quantity types.Quantity

	// CostPerUnit is the optional explicit cost. It always wins over the
	// configured valuation method.
	CostPerUnit *types.Money

	Reference entity.Reference
	Notes     string

	// Period defaults to now
	Period time.Time
}

// TransferInput describes a zone-to-zone transfer.
type TransferInput struct {
	CompanyID  id.ID
	ItemID     id.ID
	FromZoneID id.ID
	ToZoneID   id.ID

	Quantity    types.Quantity
	CostPerUnit *types.Money

	Reference entity.Reference
	Notes     string
	Period    time.Time
}

// Service is the movement recorder: the only path permitted to mutate
// balances. In Database-per-Tenant architecture, TxManager is obtained from
// context when not set.
type Service struct {
	repo      Repository
	companies CompanyLookup
	items     ItemLookup
	zones     ZoneLookup
	rules     *security.MovementRuleEngine
	events    EventSink
	txManager tx.Manager
}

// ServiceConfig configures the recorder.
type ServiceConfig struct {
	Repo      Repository
	Companies CompanyLookup
	Items     ItemLookup
	Zones     ZoneLookup

	// Rules is optional; nil disables posting-rule evaluation
	Rules *security.MovementRuleEngine

	// Events is optional; nil disables event emission
	Events EventSink

	// TxManager is optional for Database-per-Tenant
	TxManager tx.Manager
}

// NewService creates the movement recorder.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		repo:      cfg.Repo,
		companies: cfg.Companies,
		items:     cfg.Items,
		zones:     cfg.Zones,
		rules:     cfg.Rules,
		events:    cfg.Events,
		txManager: cfg.TxManager,
	}
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Record validates, costs and writes one movement atomically.
// The ledger append and the balance upsert commit together or not at all.
func (s *Service) Record(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var movement *entity.StockMovement
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		movement, err = s.record(ctx, in)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock movement recorded",
		"line_id", movement.LineID,
		"item_id", movement.ItemID,
		"zone_id", movement.ZoneID,
		"direction", movement.Direction,
		"quantity", movement.Quantity,
	)
	return movement, nil
}

// RecordSet records several movements in one transaction.
// Used by document posting, which may touch many balances at once.
func (s *Service) RecordSet(ctx context.Context, inputs []MovementInput) ([]entity.StockMovement, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	movements := make([]entity.StockMovement, 0, len(inputs))
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		for i, in := range inputs {
			m, err := s.record(ctx, in)
			if err != nil {
				return fmt.Errorf("movement %d: %w", i, err)
			}
			movements = append(movements, *m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// Transfer composes an OUT of the source zone and an IN to the destination
// zone into one atomic, cost-preserving operation. The IN reuses the OUT's
// recorded cost, so transferred goods carry their exact book cost instead of
// being re-priced at the destination.
func (s *Service) Transfer(ctx context.Context, in TransferInput) error {
	if in.FromZoneID == in.ToZoneID {
		return apperror.NewValidation("transfer requires two distinct zones").
			WithDetail("zone_id", in.FromZoneID.String())
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		out, err := s.record(ctx, MovementInput{
			CompanyID:    in.CompanyID,
			ItemID:       in.ItemID,
			ZoneID:       in.FromZoneID,
			Direction:    entity.DirectionOut,
			MovementType: entity.MovementTypeTransfer,
			Quantity:     in.Quantity,
			CostPerUnit:  in.CostPerUnit,
			Reference:    in.Reference,
			Notes:        in.Notes,
			Period:       in.Period,
		})
		if err != nil {
			return err
		}

		outCost := out.CostPerUnit
		_, err = s.record(ctx, MovementInput{
			CompanyID:    in.CompanyID,
			ItemID:       in.ItemID,
			ZoneID:       in.ToZoneID,
			Direction:    entity.DirectionIn,
			MovementType: entity.MovementTypeTransfer,
			Quantity:     in.Quantity,
			CostPerUnit:  &outCost,
			Reference:    in.Reference,
			Notes:        in.Notes,
			Period:       in.Period,
		})
		return err
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "stock transferred",
		"item_id", in.ItemID,
		"from_zone", in.FromZoneID,
		"to_zone", in.ToZoneID,
		"quantity", in.Quantity,
	)
	return nil
}

// Reverse appends compensating movements for everything one posting cycle
// of a document recorded. The ledger stays append-only: unposting writes the
// opposite direction at the original cost instead of deleting history.
func (s *Service) Reverse(ctx context.Context, refType string, refID id.ID, version int) error {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		movements, err := s.repo.GetMovementsByReference(ctx, refType, refID, version)
		if err != nil {
			return fmt.Errorf("load movements: %w", err)
		}

		// Reverse in LIFO order so intermediate balances never go negative.
		for i := len(movements) - 1; i >= 0; i-- {
			m := movements[i]
			cost := m.CostPerUnit
			_, err := s.record(ctx, MovementInput{
				CompanyID:    m.CompanyID,
				ItemID:       m.ItemID,
				ZoneID:       m.ZoneID,
				Direction:    opposite(m.Direction),
				MovementType: m.MovementType,
				Quantity:     m.Quantity,
				CostPerUnit:  &cost,
				Reference:    m.Reference,
				Notes:        "reversal of " + m.LineID.String(),
				Period:       m.Period,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// record implements the recorder algorithm. Must run inside a transaction;
// the balance row lock serializes concurrent writers on the same triple.
func (s *Service) record(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	comp, err := s.companies.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	it, err := s.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	zn, err := s.zones.GetByID(ctx, in.ZoneID)
	if err != nil {
		return nil, err
	}
	if !zn.CanHoldStock() {
		return nil, apperror.NewValidation("zone cannot hold stock").
			WithDetail("zone_id", zn.ID.String())
	}

	class := zn.MaterialClass(it.IsRaw())
	method := comp.MethodFor(class)

	period := in.Period
	if period.IsZero() {
		period = time.Now().UTC()
	}

	balance, err := s.repo.GetBalanceForUpdate(ctx, in.CompanyID, in.ItemID, in.ZoneID)
	if err != nil {
		return nil, fmt.Errorf("get balance: %w", err)
	}

	// Movement cost. Inbound is resolved by policy; outbound consumes at
	// the balance's book cost unless an explicit cost is supplied.
	var unitCost types.Money
	if in.Direction == entity.DirectionIn {
		resolved := ResolveUnitCost(class, comp.ValuationConfig, it, in.CostPerUnit)
		if resolved == nil {
			return nil, apperror.NewMissingCostBasis(it.ID.String(), string(method))
		}
		unitCost = *resolved
	} else {
		if in.CostPerUnit != nil {
			unitCost = *in.CostPerUnit
		} else {
			unitCost = balance.CostPerUnit
		}
	}

	if s.rules != nil {
		err := s.rules.Evaluate(comp.PostingRules, security.MovementFacts{
			Direction:     string(in.Direction),
			MovementType:  string(in.MovementType),
			MaterialClass: string(class),
			ZoneType:      string(zn.Type),
			Quantity:      in.Quantity.Float64(),
			CostPerUnit:   unitCost.InexactFloat64(),
			Period:        period,
		})
		if err != nil {
			return nil, err
		}
	}

	// Non-negative stock invariant. Never clamp.
	newQty := balance.QuantityOnHand + signedQuantity(in.Direction, in.Quantity)
	if newQty.IsNegative() {
		return nil, apperror.NewInsufficientStock(
			in.ItemID.String(), in.ZoneID.String(),
			in.Quantity.String(), balance.QuantityOnHand.String(),
		)
	}

	movementCost := in.Quantity.Cost(unitCost)

	// New total cost, floored at zero to guard rounding drift.
	newTotal := balance.TotalCost
	if in.Direction == entity.DirectionIn {
		newTotal = newTotal.Add(movementCost)
	} else {
		newTotal = newTotal.Sub(movementCost)
	}
	if newTotal.IsNegative() {
		newTotal = types.Zero()
	}

	// New cost per unit:
	// empty zone has no intrinsic cost; LAST_PRICE resets inbound to the
	// latest price; STANDARD_COST pins to the standard when one exists;
	// everything else is the classic moving weighted average.
	var newCPU types.Money
	switch {
	case newQty.IsZero():
		newCPU = types.Zero()
		newTotal = types.Zero()
	case method == company.MethodLastPrice && in.Direction == entity.DirectionIn:
		newCPU = unitCost
		newTotal = newQty.Cost(newCPU)
	case method == company.MethodStandardCost && it.StandardCost != nil:
		newCPU = *it.StandardCost
		newTotal = newQty.Cost(newCPU)
	default:
		newCPU = newTotal.Div(newQty.Decimal())
	}

	movement := entity.NewStockMovement(
		in.CompanyID, in.ItemID, in.ZoneID,
		in.Direction, in.MovementType,
		in.Quantity, period,
	)
	movement.CostPerUnit = unitCost
	movement.TotalCost = movementCost
	movement.Reference = in.Reference
	movement.Notes = in.Notes

	if err := s.repo.AppendMovement(ctx, &movement); err != nil {
		return nil, fmt.Errorf("append movement: %w", err)
	}

	balance.QuantityOnHand = newQty
	balance.CostPerUnit = newCPU
	balance.TotalCost = newTotal
	balance.LastMovementAt = movement.CreatedAt
	balance.UpdatedAt = movement.CreatedAt
	if err := s.repo.UpsertBalance(ctx, &balance); err != nil {
		return nil, fmt.Errorf("upsert balance: %w", err)
	}

	if s.events != nil {
		if err := s.events.MovementRecorded(ctx, &movement); err != nil {
			return nil, fmt.Errorf("emit movement event: %w", err)
		}
	}

	return &movement, nil
}

// GetBalance returns the current balance for a triple (read-only).
func (s *Service) GetBalance(ctx context.Context, companyID, itemID, zoneID id.ID) (entity.StockBalance, error) {
	return s.repo.GetBalance(ctx, companyID, itemID, zoneID)
}

// ListBalances returns balances for reporting (snapshot read, no locks).
func (s *Service) ListBalances(ctx context.Context, f BalanceFilter) ([]entity.StockBalance, error) {
	return s.repo.ListBalances(ctx, f)
}

// ListMovements returns movement history.
func (s *Service) ListMovements(ctx context.Context, f MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.ListMovements(ctx, f)
}

// IssuedForReference aggregates per-item issued quantity and cost for
// movements of one type referenced to a document.
func (s *Service) IssuedForReference(ctx context.Context, refType string, refID id.ID, movementType entity.MovementType) ([]IssuedLine, error) {
	return s.repo.GetIssuedForReference(ctx, refType, refID, movementType)
}

// CheckConsistency verifies that the ledger sum reproduces the balance for
// a triple. Used by maintenance endpoints and tests.
func (s *Service) CheckConsistency(ctx context.Context, companyID, itemID, zoneID id.ID) (bool, error) {
	qty, _, err := s.repo.SumMovements(ctx, companyID, itemID, zoneID)
	if err != nil {
		return false, err
	}
	balance, err := s.repo.GetBalance(ctx, companyID, itemID, zoneID)
	if err != nil {
		return false, err
	}
	return qty == balance.QuantityOnHand, nil
}

func validateInput(in MovementInput) error {
	if !in.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("quantity", in.Quantity.String())
	}
	if in.Direction != entity.DirectionIn && in.Direction != entity.DirectionOut {
		return apperror.NewValidation("invalid direction").
			WithDetail("direction", string(in.Direction))
	}
	if in.MovementType == "" {
		return apperror.NewValidation("movement type is required")
	}
	if id.IsNil(in.CompanyID) || id.IsNil(in.ItemID) || id.IsNil(in.ZoneID) {
		return apperror.NewValidation("company, item and zone are required")
	}
	return nil
}

func signedQuantity(d entity.Direction, q types.Quantity) types.Quantity {
	if d == entity.DirectionOut {
		return q.Neg()
	}
	return q
}

func opposite(d entity.Direction) entity.Direction {
	if d == entity.DirectionIn {
		return entity.DirectionOut
	}
	return entity.DirectionIn
}
