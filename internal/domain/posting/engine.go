// Package posting coordinates document posting: a posted document records
// its stock movements through the movement recorder and flips its posted
// flag in the same transaction.
package posting

import (
	"context"
	"fmt"
	"time"

	"plantops/internal/core/apperror"
	"plantops/internal/core/id"
	"plantops/internal/core/security"
	"plantops/internal/core/tenant"
	"plantops/internal/core/tx"
	"plantops/internal/domain/ledger"
	"plantops/pkg/logger"
)

// Postable is implemented by documents that drive ledger movements.
// entity.Document provides defaults for everything except GetDocumentType
// and GenerateMovements.
type Postable interface {
	GetID() id.ID
	GetDocumentType() string
	GetDate() time.Time
	GetPostedVersion() int
	IsPosted() bool
	CanPost(ctx context.Context) error
	MarkPosted()
	MarkUnposted()

	// GenerateMovements produces the desired movements for this posting
	GenerateMovements(ctx context.Context) (*MovementSet, error)
}

// MovementSet collects the desired movements of one posting cycle.
type MovementSet struct {
	Stock []ledger.MovementInput
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{}
}

// AddStock appends a desired stock movement.
func (s *MovementSet) AddStock(in ledger.MovementInput) {
	s.Stock = append(s.Stock, in)
}

// IsEmpty reports whether the set holds no movements.
func (s *MovementSet) IsEmpty() bool {
	return len(s.Stock) == 0
}

// Engine posts and unposts documents against the movement recorder.
type Engine struct {
	recorder  *ledger.Service
	policy    security.PostingPolicy
	txManager tx.Manager
}

// NewEngine creates a posting engine.
// Policy may be nil (no period-close control); TxManager may be nil in
// Database-per-Tenant mode.
func NewEngine(recorder *ledger.Service, policy security.PostingPolicy, txManager tx.Manager) *Engine {
	return &Engine{
		recorder:  recorder,
		policy:    policy,
		txManager: txManager,
	}
}

func (e *Engine) getTxManager(ctx context.Context) (tx.Manager, error) {
	if e.txManager != nil {
		return e.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Post records the document's movements and marks it posted, atomically.
// saveDoc persists the document inside the same transaction.
func (e *Engine) Post(ctx context.Context, doc Postable, saveDoc func(ctx context.Context) error) error {
	if doc.IsPosted() {
		return apperror.NewBusinessRule(
			apperror.CodeDocumentPosted,
			"document is already posted",
		).WithDetail("document_id", doc.GetID().String())
	}

	if err := doc.CanPost(ctx); err != nil {
		return err
	}

	if e.policy != nil {
		if err := e.policy.CanPost(ctx, doc.GetDate()); err != nil {
			return err
		}
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		// MarkPosted first so GenerateMovements sees the new version.
		doc.MarkPosted()

		set, err := doc.GenerateMovements(ctx)
		if err != nil {
			return fmt.Errorf("generate movements: %w", err)
		}

		if _, err := e.recorder.RecordSet(ctx, set.Stock); err != nil {
			return err
		}

		return saveDoc(ctx)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document posted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
		"version", doc.GetPostedVersion(),
	)
	return nil
}

// Unpost reverses the movements of the current posting cycle and clears the
// posted flag, atomically.
func (e *Engine) Unpost(ctx context.Context, doc Postable, saveDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return apperror.NewInvalidState("document is not posted").
			WithDetail("document_id", doc.GetID().String())
	}

	if e.policy != nil {
		if err := e.policy.CanUnpost(ctx, doc.GetDate()); err != nil {
			return err
		}
	}

	txm, err := e.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := e.recorder.Reverse(ctx, doc.GetDocumentType(), doc.GetID(), doc.GetPostedVersion()); err != nil {
			return err
		}

		doc.MarkUnposted()
		return saveDoc(ctx)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "document unposted",
		"type", doc.GetDocumentType(),
		"id", doc.GetID(),
	)
	return nil
}
