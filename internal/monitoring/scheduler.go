package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron      *cron.Cron
	eventSvc  services.EventServiceProvider
	retention time.Duration
}

// NewScheduler creates a scheduler that prunes events older than retention
// on the given cron spec (standard five-field or descriptors like @daily).
func NewScheduler(eventSvc services.EventServiceProvider, pruneSpec string, retention time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:      cron.New(),
		eventSvc:  eventSvc,
		retention: retention,
	}
	if _, err := s.cron.AddFunc(pruneSpec, s.pruneEvents); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", pruneSpec, err)
	}
	return s, nil
}

// Run starts the scheduler in its own goroutine.
func (s *Scheduler) Run() {
	log.Info().Msg("Starting background scheduler...")
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped background scheduler.")
}

func (s *Scheduler) pruneEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	n, err := s.eventSvc.PruneEvents(ctx, s.retention)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler: Failed to prune events")
		return
	}
	log.Info().Int64("deleted", n).Dur("retention", s.retention).Msg("Scheduler: Pruned old events")
	if n > 0 {
		msg := fmt.Sprintf("Pruned %d events older than %s.", n, s.retention)
		if err := s.eventSvc.CreateEvent(ctx, models.EventEventsPrune, "info", msg, nil); err != nil {
			log.Warn().Err(err).Msg("Scheduler: Failed to record prune event")
		}
	}
}
