package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studylock/pkg/models"
)

func TestReward_ConversationListeningUsesLevelGatedSplit(t *testing.T) {
	store := newFakeProgress()
	engine := newTestEngine(store)

	tests := []struct {
		name        string
		mode        models.Mode
		levelBefore int
		want        int
	}{
		{"listen q1 new item", models.ModeListenQ1, 0, 10},
		{"listen q1 still learning", models.ModeListenQ1, 1, 10},
		{"listen q1 reviewing", models.ModeListenQ1, 2, 5},
		{"listen q2 high level", models.ModeListenQ2, 7, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.levelBefore > 0 {
				require.NoError(t, store.Upsert(&models.ProgressRecord{
					ItemID: 1, Mode: tt.mode, Level: tt.levelBefore,
				}))
			}
			res, err := engine.RecordAnswer(1, tt.mode, true, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Points)
		})
	}
}

func TestReward_StandardModesUseConfiguredBasePoint(t *testing.T) {
	engine := New(newFakeProgress(), fixedPoints{point: 12})

	res, err := engine.RecordAnswer(1, models.ModeSort, true, testNow)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Points)

	// The base point does not shrink at higher levels for standard modes.
	res, err = engine.RecordAnswer(1, models.ModeSort, true, testNow)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Points)
}
