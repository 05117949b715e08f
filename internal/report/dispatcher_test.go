package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/studylock/pkg/models"
)

type fakeClient struct {
	sent []models.DailyReport
	err  error
}

func (c *fakeClient) SendDailyReport(report models.DailyReport) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, report)
	return nil
}

type fakeNotifier struct {
	titles []string
	bodies []string
	err    error
}

func (n *fakeNotifier) Send(title, body string) error {
	if n.err != nil {
		return n.err
	}
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
	return nil
}

func TestDispatch_SendsPerModeReportsAndParentSummary(t *testing.T) {
	agg := NewAggregator(openTestStore(t))
	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, now))
	require.NoError(t, agg.RecordAnswer(models.ModeSort, 4, false, 0, now))

	client := &fakeClient{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(agg, client, notifier)

	require.NoError(t, d.Dispatch(now))

	require.Len(t, client.sent, 2)
	assert.Equal(t, "MEANING", client.sent[0].Mode)
	assert.Equal(t, "SORT", client.sent[1].Mode)

	require.Len(t, notifier.bodies, 1)
	assert.Contains(t, notifier.titles[0], "2025-06-10")
	assert.Contains(t, notifier.bodies[0], "Answered 2 (correct 1)")
}

func TestDispatch_WithoutClientIdentity(t *testing.T) {
	d := NewDispatcher(NewAggregator(openTestStore(t)), nil, nil)
	assert.ErrorIs(t, d.Dispatch(now), ErrUnauthenticated)
}

func TestDispatch_ClientFailureSurfaces(t *testing.T) {
	agg := NewAggregator(openTestStore(t))
	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, now))

	d := NewDispatcher(agg, &fakeClient{err: errors.New("server down")}, nil)
	assert.Error(t, d.Dispatch(now))
}

func TestDispatch_NotifierFailureDoesNotEscalate(t *testing.T) {
	agg := NewAggregator(openTestStore(t))
	require.NoError(t, agg.RecordAnswer(models.ModeMeaning, 3, true, 8, now))

	client := &fakeClient{}
	d := NewDispatcher(agg, client, &fakeNotifier{err: errors.New("push unavailable")})

	require.NoError(t, d.Dispatch(now))
	assert.Len(t, client.sent, 1)
}

func TestDispatch_QuietDaySendsNothing(t *testing.T) {
	client := &fakeClient{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(NewAggregator(openTestStore(t)), client, notifier)

	require.NoError(t, d.Dispatch(now.Add(24*time.Hour)))
	assert.Empty(t, client.sent)
	assert.Empty(t, notifier.bodies)
}
