package study

import (
	"fmt"
	"time"

	"github.com/example/studylock/internal/ledger"
	"github.com/example/studylock/internal/report"
	"github.com/example/studylock/internal/scheduling"
	"github.com/example/studylock/pkg/models"
)

// Service is the learning-flow facade: it couples the scheduling engine
// (which earns points) with the ledger (which spends them) and folds every
// points-affecting event into the daily aggregate. Durable-state errors
// surface to the caller; the UI shows them instead of guessing.
type Service struct {
	engine *scheduling.Engine
	ledger *ledger.Ledger
	agg    *report.Aggregator
}

// New creates the service.
func New(engine *scheduling.Engine, lgr *ledger.Ledger, agg *report.Aggregator) *Service {
	return &Service{engine: engine, ledger: lgr, agg: agg}
}

// Engine exposes the scheduling engine for selection and option building.
func (s *Service) Engine() *scheduling.Engine {
	return s.engine
}

// Balance returns the current point total.
func (s *Service) Balance() (int, error) {
	return s.ledger.Balance()
}

// Answer records an answer outcome: mastery moves, earned points land on
// the balance and the day's aggregate is updated.
func (s *Service) Answer(q models.Question, mode models.Mode, correct bool, now time.Time) (*scheduling.AnswerResult, error) {
	result, err := s.engine.RecordAnswer(q.ID, mode, correct, now)
	if err != nil {
		return nil, err
	}
	if err := s.ledger.Add(string(mode), result.Points, now); err != nil {
		return nil, fmt.Errorf("answer recorded but points not credited: %w", err)
	}
	if err := s.agg.RecordAnswer(mode, q.Grade, correct, result.Points, now); err != nil {
		return nil, fmt.Errorf("answer recorded but daily aggregate not updated: %w", err)
	}
	return result, nil
}

// BuyUnlock spends points on temporary access to a package.
func (s *Service) BuyUnlock(cost int, duration time.Duration, packageID string, now time.Time) (*models.UnlockHistory, error) {
	record, err := s.ledger.Spend(cost, duration, packageID, now)
	if err != nil {
		return nil, err
	}
	if err := s.agg.RecordSpend(cost, now); err != nil {
		return nil, fmt.Errorf("unlock granted but daily aggregate not updated: %w", err)
	}
	return record, nil
}

// CancelUnlock ends an unlock early and returns the pro-rated refund.
func (s *Service) CancelUnlock(historyID int64, now time.Time) (int, error) {
	refund, err := s.ledger.CancelAndRefund(historyID, now)
	if err != nil {
		return 0, err
	}
	if refund > 0 {
		if err := s.agg.RecordRefund(refund, now); err != nil {
			return refund, fmt.Errorf("refund credited but daily aggregate not updated: %w", err)
		}
	}
	return refund, nil
}
