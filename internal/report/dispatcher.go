package report

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/studylock/internal/scheduling"
	"github.com/example/studylock/pkg/models"
)

// ErrUnauthenticated is returned when a report is dispatched without the
// ambient caller identity the server side requires.
var ErrUnauthenticated = errors.New("report caller is not authenticated")

// Client delivers per-mode daily reports to the server-side collaborator.
// Implementations carry the ambient caller identity; SendDailyReport fails
// with ErrUnauthenticated when it is missing.
type Client interface {
	SendDailyReport(report models.DailyReport) error
}

// Notifier pushes a human-readable summary to the parent device.
type Notifier interface {
	Send(title, body string) error
}

// dispatchAt is the local wall-clock time (bucketing zone) of the daily run.
const dispatchAt = "20:30"

// Dispatcher sends the day's aggregate to the reporting collaborator and a
// summary notification to the parent once per day. Delivery failures are
// logged and retried on the next scheduled run, never escalated.
type Dispatcher struct {
	agg       *Aggregator
	client    Client
	notifier  Notifier
	scheduler *gocron.Scheduler
}

// NewDispatcher creates a dispatcher. client may be nil when the device has
// no server identity yet; dispatch then fails with ErrUnauthenticated.
func NewDispatcher(agg *Aggregator, client Client, notifier Notifier) *Dispatcher {
	return &Dispatcher{agg: agg, client: client, notifier: notifier}
}

// Start schedules the daily dispatch in the bucketing zone.
func (d *Dispatcher) Start() {
	d.scheduler = gocron.NewScheduler(scheduling.BucketZone())
	_, err := d.scheduler.Every(1).Day().At(dispatchAt).Do(func() {
		if err := d.Dispatch(time.Now()); err != nil {
			log.Printf("report: daily dispatch failed: %v", err)
		}
	})
	if err != nil {
		log.Printf("report: failed to schedule daily dispatch: %v", err)
		return
	}
	d.scheduler.StartAsync()
}

// Stop cancels the daily job.
func (d *Dispatcher) Stop() {
	if d.scheduler != nil {
		d.scheduler.Stop()
	}
}

// Dispatch sends the per-mode reports and the parent summary for now's day.
func (d *Dispatcher) Dispatch(now time.Time) error {
	if d.client == nil {
		return ErrUnauthenticated
	}

	day := scheduling.DayKey(now)
	reports, err := d.agg.ModeReports(day)
	if err != nil {
		return err
	}
	for _, r := range reports {
		if err := d.client.SendDailyReport(r); err != nil {
			return fmt.Errorf("failed to send report for mode %s: %v", r.Mode, err)
		}
	}

	if d.notifier != nil {
		if err := d.notifyParent(day); err != nil {
			log.Printf("report: parent notification failed: %v", err)
		}
	}
	return nil
}

func (d *Dispatcher) notifyParent(day string) error {
	agg, err := d.agg.Day(day)
	if err != nil {
		return err
	}
	body := fmt.Sprintf(
		"Answered %d (correct %d). Points earned %d, spent %d.",
		agg.StudyCount, agg.CorrectCount, agg.Points, agg.PointsUsed)
	return d.notifier.Send("Study report "+day, body)
}
