package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-screening/internal/logger"
	"alfredoptarigan/cv-screening/internal/repositories"
	"alfredoptarigan/cv-screening/internal/tasks"
)

const staleBatchSize = 50

// StaleTaskRecovery re-dispatches work that was lost, for example when the
// process stopped with tasks still queued. Terminal writes are conditional,
// so a duplicate run of a task that is still in flight is harmless.
type StaleTaskRecovery struct {
	store      repositories.Store
	dispatcher tasks.Dispatcher
	staleAfter time.Duration
	log        *zap.Logger
	now        func() time.Time
}

func NewStaleTaskRecovery(store repositories.Store, dispatcher tasks.Dispatcher, staleAfter time.Duration, log *zap.Logger) *StaleTaskRecovery {
	return &StaleTaskRecovery{
		store:      store,
		dispatcher: dispatcher,
		staleAfter: staleAfter,
		log:        logger.WithFields(log, zap.String("component", "recovery")),
		now:        time.Now,
	}
}

// Recover dispatches stale documents and screenings and returns how many
// tasks were dispatched.
func (r *StaleTaskRecovery) Recover(ctx context.Context) int {
	store := r.store.Session(ctx)
	cutoff := r.now().Add(-r.staleAfter)
	dispatched := 0

	docs, err := store.Documents().FindStale(cutoff, staleBatchSize)
	if err != nil {
		r.log.Warn("failed to fetch stale documents", zap.Error(err))
	}
	for _, doc := range docs {
		if r.dispatch(ctx, tasks.ExtractDocument(doc.ID)) {
			dispatched++
		}
	}

	results, err := store.Screenings().FindStale(cutoff, staleBatchSize)
	if err != nil {
		r.log.Warn("failed to fetch stale screenings", zap.Error(err))
	}
	for _, result := range results {
		if r.dispatch(ctx, tasks.ScreenApplicant(result.ID)) {
			dispatched++
		}
	}

	if dispatched > 0 {
		r.log.Info("re-dispatched stale tasks", zap.Int("count", dispatched))
	}
	return dispatched
}

func (r *StaleTaskRecovery) dispatch(ctx context.Context, task tasks.Task) bool {
	if err := r.dispatcher.Dispatch(ctx, task); err != nil {
		r.log.Warn("failed to re-dispatch task", zap.Stringer("task", task), zap.Error(err))
		return false
	}
	return true
}
