package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/pkg/logger"
	"wrapchain.backend/pkg/metrics"
)

type pendingCounter interface {
	CountPending(ctx context.Context) (map[entities.RequestKind]int64, error)
}

// PendingRequestsJob keeps the pending request gauge in line with the store
type PendingRequestsJob struct {
	repo     pendingCounter
	interval time.Duration
	stop     chan struct{}
}

// NewPendingRequestsJob creates a job refreshing the gauge every interval
func NewPendingRequestsJob(repo pendingCounter, interval time.Duration) *PendingRequestsJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &PendingRequestsJob{
		repo:     repo,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start refreshes once, then on every tick until ctx ends or Stop is called.
func (j *PendingRequestsJob) Start(ctx context.Context) {
	logger.Info(ctx, "pending request gauge job started", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info(context.Background(), "pending request gauge job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "pending request gauge job stopped")
			return
		case <-ticker.C:
			j.refresh(ctx)
		}
	}
}

func (j *PendingRequestsJob) Stop() {
	close(j.stop)
}

func (j *PendingRequestsJob) refresh(ctx context.Context) {
	counts, err := j.repo.CountPending(ctx)
	if err != nil {
		logger.Error(ctx, "failed to count pending requests", zap.Error(err))
		return
	}

	for _, kind := range []entities.RequestKind{entities.RequestKindMint, entities.RequestKindBurn} {
		metrics.PendingRequests.WithLabelValues(string(kind)).Set(float64(counts[kind]))
	}
}
