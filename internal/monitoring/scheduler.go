package monitoring

import (
	"time"

	"github.com/isdelr/cronospark/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// CleanupScheduler runs the past-event cleanup on a cron cadence, on top of
// the opportunistic cleanup every listing request already performs. Missing a
// run is harmless; the next listing catches up.
type CleanupScheduler struct {
	eventSvc services.EventServiceProvider
	schedule cron.Schedule
	nextRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// NewCleanupScheduler creates a scheduler from a standard cron expression.
func NewCleanupScheduler(eventSvc services.EventServiceProvider, cronExpr string) (*CleanupScheduler, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &CleanupScheduler{
		eventSvc: eventSvc,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the scheduler's ticking loop.
func (s *CleanupScheduler) Run() {
	log.Info().Msg("Starting cleanup scheduler")
	s.ticker = time.NewTicker(30 * time.Second)
	defer s.ticker.Stop()

	s.nextRun = s.schedule.Next(time.Now())

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping cleanup scheduler")
			return
		case now := <-s.ticker.C:
			if now.Before(s.nextRun) {
				continue
			}
			if _, err := s.eventSvc.CleanupPastEvents(now); err != nil {
				log.Error().Err(err).Msg("Scheduled cleanup failed")
			}
			s.nextRun = s.schedule.Next(now)
		}
	}
}

// Stop halts the scheduler.
func (s *CleanupScheduler) Stop() {
	s.done <- true
}
