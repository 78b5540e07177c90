/*
scheduler.go - Automated occurrence generation

PURPOSE:
  Keeps the occurrence horizon topped up: every night, refresh each event's
  lifecycle status and materialize the upcoming weeks of occurrence rows.
  Without it, events created weeks ago would run out of future occurrences
  for hosts to see and hand off.

DESIGN:
  - Runs on a cron schedule (default: daily at 04:00 server time)
  - Generation is idempotent: dates that already have a row are skipped,
    so re-running after a crash or a manual trigger is safe
  - Terminated events are skipped by the generator itself
  - A manual run is available via POST /api/events/{id}/generate

USAGE:
  sched := NewGenerationScheduler(store, service)
  if err := sched.Start(); err != nil { ... }
  // ... later
  sched.Stop()

SEE ALSO:
  - schedule/service.go: GenerateOccurrences (the actual generator)
  - handlers.go: GenerateOccurrences endpoint (manual trigger)
*/
package api

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quizworks/league-engine/schedule"
	"github.com/quizworks/league-engine/store/sqlite"
)

// GenerationScheduler regenerates occurrence rows on a cron schedule.
type GenerationScheduler struct {
	Store    *sqlite.Store
	Schedule *schedule.Service

	// Spec is the cron expression the run fires on.
	Spec string

	cron *cron.Cron
}

// NewGenerationScheduler creates a scheduler with the default nightly spec.
func NewGenerationScheduler(store *sqlite.Store, service *schedule.Service) *GenerationScheduler {
	return &GenerationScheduler{
		Store:    store,
		Schedule: service,
		Spec:     "0 4 * * *",
	}
}

// Start registers the cron entry and begins running.
func (gs *GenerationScheduler) Start() error {
	gs.cron = cron.New()
	if _, err := gs.cron.AddFunc(gs.Spec, gs.runOnce); err != nil {
		return err
	}
	gs.cron.Start()
	log.Printf("[Scheduler] Started with spec %q", gs.Spec)
	return nil
}

// Stop halts the scheduler, waiting for an in-flight run to finish.
func (gs *GenerationScheduler) Stop() {
	if gs.cron == nil {
		return
	}
	ctx := gs.cron.Stop()
	<-ctx.Done()
	log.Println("[Scheduler] Stopped")
}

// RunNow triggers a generation pass outside the cron schedule.
func (gs *GenerationScheduler) RunNow() { gs.runOnce() }

// runOnce refreshes every event's status and tops up its occurrences.
func (gs *GenerationScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	events, err := gs.Store.ListEvents(ctx)
	if err != nil {
		log.Printf("[Scheduler] Failed to list events: %v", err)
		return
	}

	var created int
	for i := range events {
		e := events[i]

		// Status drifts with the calendar (starting becomes active, ending
		// becomes terminated); persist the refreshed value.
		before := e.Status
		e.RecomputeStatus(time.Now().UTC())
		if e.Status != before {
			if err := gs.Store.SaveEvent(ctx, &e); err != nil {
				log.Printf("[Scheduler] Failed to save event %s: %v", e.ID, err)
				continue
			}
		}

		occurrences, err := gs.Schedule.GenerateOccurrences(ctx, e.ID)
		if err != nil {
			log.Printf("[Scheduler] Failed to generate for event %s: %v", e.ID, err)
			continue
		}
		created += len(occurrences)
	}

	log.Printf("[Scheduler] Generation run complete: %d events, %d occurrences created", len(events), created)
}
