package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"wrapchain.backend/internal/domain/entities"
	"wrapchain.backend/pkg/metrics"
)

type pendingCounterStub struct {
	mu     sync.Mutex
	counts map[entities.RequestKind]int64
	err    error
	calls  int
}

func (s *pendingCounterStub) CountPending(context.Context) (map[entities.RequestKind]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.counts, s.err
}

func (s *pendingCounterStub) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func gauge(t *testing.T, kind entities.RequestKind) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.PendingRequests.WithLabelValues(string(kind)).Write(&m))
	return m.GetGauge().GetValue()
}

func TestPendingRequestsJob_Refresh(t *testing.T) {
	repo := &pendingCounterStub{counts: map[entities.RequestKind]int64{
		entities.RequestKindMint: 4,
		entities.RequestKindBurn: 1,
	}}
	job := NewPendingRequestsJob(repo, time.Minute)

	job.refresh(context.Background())
	require.Equal(t, float64(4), gauge(t, entities.RequestKindMint))
	require.Equal(t, float64(1), gauge(t, entities.RequestKindBurn))

	// absent kinds drop to zero
	repo.counts = map[entities.RequestKind]int64{entities.RequestKindMint: 2}
	job.refresh(context.Background())
	require.Equal(t, float64(2), gauge(t, entities.RequestKindMint))
	require.Equal(t, float64(0), gauge(t, entities.RequestKindBurn))
}

func TestPendingRequestsJob_RefreshErrorKeepsGauge(t *testing.T) {
	repo := &pendingCounterStub{counts: map[entities.RequestKind]int64{entities.RequestKindMint: 7}}
	job := NewPendingRequestsJob(repo, time.Minute)
	job.refresh(context.Background())

	repo.err = errors.New("db down")
	job.refresh(context.Background())
	require.Equal(t, float64(7), gauge(t, entities.RequestKindMint))
}

func TestPendingRequestsJob_DefaultInterval(t *testing.T) {
	job := NewPendingRequestsJob(&pendingCounterStub{}, 0)
	require.Equal(t, 30*time.Second, job.interval)
}

func TestPendingRequestsJob_StartAndStop(t *testing.T) {
	repo := &pendingCounterStub{counts: map[entities.RequestKind]int64{}}
	job := NewPendingRequestsJob(repo, time.Millisecond)

	done := make(chan struct{})
	go func() {
		job.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return repo.callCount() >= 2 }, time.Second, time.Millisecond)
	job.Stop()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}

func TestPendingRequestsJob_StopsOnContextCancel(t *testing.T) {
	job := NewPendingRequestsJob(&pendingCounterStub{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not stop")
	}
}
