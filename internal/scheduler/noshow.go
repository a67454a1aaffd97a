// Package scheduler runs periodic maintenance jobs on top of gocron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/hotel-booking/internal/booking"
	"github.com/iliyamo/hotel-booking/internal/config"
	"github.com/iliyamo/hotel-booking/internal/model"
)

type dueLister interface {
	DueNoShows(ctx context.Context, today time.Time) ([]string, error)
}

type statusSetter interface {
	SetStatus(ctx context.Context, bookingID, status, actorID string, note *string) error
}

// NoShowSweeper moves bookings that were never checked in past their
// arrival day to no_show, which frees their rooms for new bookings.
type NoShowSweeper struct {
	Due     dueLister
	Setter  statusSetter
	ActorID string
	Now     func() time.Time
	Logger  *log.Logger
}

// Sweep marks every due booking and returns how many were updated.  A
// failure on one booking is logged and does not stop the others.
func (s *NoShowSweeper) Sweep(ctx context.Context) (int, error) {
	today := booking.Day(s.Now())
	ids, err := s.Due.DueNoShows(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("list due no-shows: %w", err)
	}

	note := "Not checked in by " + today.Format("2006-01-02")
	marked := 0
	for _, id := range ids {
		if err := s.Setter.SetStatus(ctx, id, model.StatusNoShow, s.ActorID, &note); err != nil {
			s.Logger.Errorf("no-show sweep: booking %s: %v", id, err)
			continue
		}
		marked++
	}
	if marked > 0 {
		s.Logger.Infof("no-show sweep: marked %d of %d bookings", marked, len(ids))
	}
	return marked, nil
}

// Start schedules the sweep every cfg.Interval, first run immediately.
// Runs never overlap.  The caller shuts the scheduler down.
func Start(cfg config.NoShowConfig, sweeper *NoShowSweeper) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, err
	}

	timeout := cfg.Interval
	_, err = s.NewJob(
		gocron.DurationJob(cfg.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			if _, err := sweeper.Sweep(ctx); err != nil {
				sweeper.Logger.Errorf("no-show sweep: %v", err)
			}
		}),
		gocron.WithName("no-show-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return s, nil
}
