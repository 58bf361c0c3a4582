package settlement

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/ZODIAC3K/refactor-capstone/internal/apperr"
	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/events"
	"github.com/ZODIAC3K/refactor-capstone/internal/logging"
)

// CreatorSettlement reports a creator's stored counters next to the ledger.
func (s *Service) CreatorSettlement(ctx context.Context, actor auth.Actor, creatorID primitive.ObjectID) (CreatorTally, error) {
	if err := s.requireSettlementAccess(actor); err != nil {
		return CreatorTally{}, err
	}
	return s.counters.Tally(ctx, creatorID)
}

// ReconcileSettlement rewrites stored counters from the ledger, for one
// creator when creatorID is set and for every creator otherwise.
func (s *Service) ReconcileSettlement(ctx context.Context, actor auth.Actor, creatorID *primitive.ObjectID) (tallies []CreatorTally, err error) {
	ctx, span := tracer.Start(ctx, "settlement.Reconcile")
	defer func() { finishSpan(span, err) }()

	if err := s.requireSettlementAccess(actor); err != nil {
		return nil, err
	}
	if creatorID != nil {
		tally, err := s.counters.Reconcile(ctx, *creatorID)
		if err != nil {
			return nil, err
		}
		tallies = []CreatorTally{tally}
	} else {
		tallies, err = s.counters.ReconcileAll(ctx)
		if err != nil {
			return nil, err
		}
	}

	logging.FromContext(ctx).Info("settlement reconciled", zap.Int("creators", len(tallies)))
	s.publish(ctx, events.Event{
		Type:   events.SettlementReconcile,
		UserID: actor.UserID.Hex(),
	})
	return tallies, nil
}

func (s *Service) requireSettlementAccess(actor auth.Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !Can(actor, ActionViewSettlement, Resource{}) {
		return apperr.New(apperr.Forbidden, "Only administrators can view settlement data")
	}
	return nil
}
