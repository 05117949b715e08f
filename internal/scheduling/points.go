package scheduling

import (
	"fmt"

	"github.com/example/studylock/pkg/models"
)

// Conversation-listening keeps its own reward split instead of the per-mode
// base point: a bigger award while the item is still being learned, a
// smaller one once it is in review. This is deliberate per-mode tuning, not
// a fallback for a missing config row; do not fold it into the base-point
// table.
const (
	convListeningNewReward    = 10
	convListeningReviewReward = 5

	// Levels 0 and 1 count as "still learning" for the split above.
	stillLearningMaxLevel = 1
)

// reward computes the points earned by an answer. Wrong answers always earn
// zero, in every mode.
func (e *Engine) reward(mode models.Mode, levelBefore int, correct bool) (int, error) {
	if !correct {
		return 0, nil
	}
	if mode.IsConversationListening() {
		if levelBefore <= stillLearningMaxLevel {
			return convListeningNewReward, nil
		}
		return convListeningReviewReward, nil
	}
	point, err := e.points.BasePoint(mode)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve base point: %v", err)
	}
	return point, nil
}
