package service

import (
	"context"
	"fmt"
	"sync"

	"blood-request-coordinator/internal/logging"
	"blood-request-coordinator/internal/metrics"
	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/store"

	"github.com/robfig/cron/v3"
)

// WorkerService refreshes the open-request gauges on a cron schedule
type WorkerService struct {
	store    store.Store
	schedule string
	cron     *cron.Cron

	mu   sync.Mutex
	last map[[2]string]struct{}
}

func NewWorkerService(st store.Store, schedule string) *WorkerService {
	return &WorkerService{
		store:    st,
		schedule: schedule,
		// Create cron with seconds precision
		cron: cron.New(cron.WithSeconds()),
		last: make(map[[2]string]struct{}),
	}
}

// Start registers the stats job, runs it once and starts the scheduler. The
// scheduler stops when ctx is done.
func (w *WorkerService) Start(ctx context.Context) error {
	if w.store == nil {
		logging.Worker.Warn("No store configured, stats worker not started")
		return nil
	}

	_, err := w.cron.AddFunc(w.schedule, func() {
		if err := w.RefreshOpenRequests(ctx); err != nil {
			logging.Worker.WithError(err).Error("Failed to refresh open request stats")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid stats schedule %q: %w", w.schedule, err)
	}

	if err := w.RefreshOpenRequests(ctx); err != nil {
		logging.Worker.WithError(err).Warn("Initial stats refresh failed")
	}

	w.cron.Start()
	logging.Worker.WithField("schedule", w.schedule).Info("Stats worker started")

	go func() {
		<-ctx.Done()
		<-w.cron.Stop().Done()
		logging.Worker.Info("Stats worker stopped")
	}()
	return nil
}

// RefreshOpenRequests recounts open requests by blood group and urgency.
// Label pairs that dropped to zero are reset rather than left stale.
func (w *WorkerService) RefreshOpenRequests(ctx context.Context) error {
	requests, err := w.store.ListBloodRequests(ctx, store.RequestFilter{Status: models.RequestOpen})
	if err != nil {
		return err
	}

	counts := make(map[[2]string]float64)
	for _, r := range requests {
		counts[[2]string{string(r.BloodGroup), string(r.Urgency)}]++
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	for key := range w.last {
		if _, ok := counts[key]; !ok {
			metrics.OpenRequests.WithLabelValues(key[0], key[1]).Set(0)
		}
	}
	w.last = make(map[[2]string]struct{}, len(counts))
	for key, n := range counts {
		metrics.OpenRequests.WithLabelValues(key[0], key[1]).Set(n)
		w.last[key] = struct{}{}
	}

	logging.Worker.WithField("open_requests", len(requests)).Debug("Refreshed open request stats")
	return nil
}
