package scheduling

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/example/studylock/internal/database"
	"github.com/example/studylock/pkg/models"
)

// ProgressStore is the persistence the engine needs for mastery records.
// *database.ProgressRepository satisfies it; tests use an in-memory fake.
type ProgressStore interface {
	Get(itemID int64, mode models.Mode) (*models.ProgressRecord, error)
	ForMode(mode models.Mode, itemIDs []int64) (map[int64]models.ProgressRecord, error)
	Upsert(rec *models.ProgressRecord) error
}

// BasePointSource resolves the configured base point for a mode.
type BasePointSource interface {
	BasePoint(mode models.Mode) (int, error)
}

// Engine decides what to ask next, how mastery evolves and how many points
// an answer earns.
type Engine struct {
	progress ProgressStore
	points   BasePointSource
	rnd      *rand.Rand
}

// New creates an engine backed by the given stores.
func New(progress ProgressStore, points BasePointSource) *Engine {
	return &Engine{
		progress: progress,
		points:   points,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AnswerResult is what a recorded answer produced.
type AnswerResult struct {
	Level        int
	NextDueAtSec int64
	Points       int
}

// SelectNextItem picks the item to present next. Priority: overdue items
// (oldest due time first), then items never answered in this mode (uniform
// random), then the least-recently-answered item. ok is false only when
// candidates is empty; callers render a "nothing to study" state.
func (e *Engine) SelectNextItem(mode models.Mode, candidates []int64, now time.Time) (itemID int64, ok bool, err error) {
	if len(candidates) == 0 {
		return 0, false, nil
	}

	recs, err := e.progress.ForMode(mode, candidates)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load progress for selection: %v", err)
	}

	nowSec := now.Unix()

	// Overdue first, oldest due time wins. Ties break on item id so the
	// choice is stable across calls.
	var due []models.ProgressRecord
	for _, id := range candidates {
		if rec, found := recs[id]; found && rec.Due(nowSec) {
			due = append(due, rec)
		}
	}
	if len(due) > 0 {
		sort.Slice(due, func(i, j int) bool {
			if due[i].NextDueAtSec != due[j].NextDueAtSec {
				return due[i].NextDueAtSec < due[j].NextDueAtSec
			}
			return due[i].ItemID < due[j].ItemID
		})
		return due[0].ItemID, true, nil
	}

	// New items before drilling old ones further.
	var fresh []int64
	for _, id := range candidates {
		if _, found := recs[id]; !found {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) > 0 {
		return fresh[e.rnd.Intn(len(fresh))], true, nil
	}

	// Nothing due, nothing new: reinforce the stalest item so the session
	// never stalls.
	stalest := recs[candidates[0]]
	for _, id := range candidates[1:] {
		if rec := recs[id]; rec.LastAnsweredAtMS < stalest.LastAnsweredAtMS {
			stalest = rec
		}
	}
	return stalest.ItemID, true, nil
}

// RecordAnswer applies an answer outcome: moves the mastery level, schedules
// the next review and computes the points earned. The record is persisted
// before returning.
func (e *Engine) RecordAnswer(itemID int64, mode models.Mode, correct bool, now time.Time) (*AnswerResult, error) {
	rec, err := e.progress.Get(itemID, mode)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to load progress: %v", err)
	}
	if rec == nil {
		rec = &models.ProgressRecord{ItemID: itemID, Mode: mode}
	}

	levelBefore := rec.Level
	if correct {
		rec.Level = levelBefore + 1
		if rec.Level > models.MaxLevel {
			rec.Level = models.MaxLevel
		}
		rec.NextDueAtSec = dueAt(rec.Level, now)
	} else {
		rec.Level = levelBefore - 2
		if rec.Level < 0 {
			rec.Level = 0
		}
		rec.NextDueAtSec = now.Unix() + retryDelaySec
	}
	rec.LastAnsweredAtMS = now.UnixMilli()
	rec.StudyCount++

	points, err := e.reward(mode, levelBefore, correct)
	if err != nil {
		return nil, err
	}

	if err := e.progress.Upsert(rec); err != nil {
		return nil, fmt.Errorf("failed to save progress: %v", err)
	}

	return &AnswerResult{
		Level:        rec.Level,
		NextDueAtSec: rec.NextDueAtSec,
		Points:       points,
	}, nil
}
