package service

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultRefreshInterval is how often an authenticated provider session has
// its token checked for renewal.
const DefaultRefreshInterval = 55 * time.Second

// RefreshScheduler runs a callback on a fixed interval for the lifetime of a
// provider session. Start replaces any running schedule; Stop is idempotent
// and guarantees no callback fires after it returns.
type RefreshScheduler struct {
	Logger *slog.Logger

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// Start begins ticking every interval. A non-positive interval falls back to
// DefaultRefreshInterval. Any previously running schedule is stopped first,
// so at most one ticker loop exists at a time.
func (s *RefreshScheduler) Start(interval time.Duration, onTick func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})
	s.stopCh = stopCh
	s.doneCh = doneCh

	s.logger().Debug("refresh scheduler started", "interval", interval)
	go s.run(interval, onTick, stopCh, doneCh)
}

// Stop halts the schedule and waits for the ticker loop to exit. Calling
// Stop on an idle scheduler is a no-op.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *RefreshScheduler) stopLocked() {
	if s.stopCh == nil {
		return
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh = nil
	s.doneCh = nil
	s.logger().Debug("refresh scheduler stopped")
}

func (s *RefreshScheduler) run(interval time.Duration, onTick func(), stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			// A stop racing the tick wins; the callback must not fire
			// once Stop has been requested.
			select {
			case <-stopCh:
				return
			default:
			}
			onTick()
		}
	}
}

func (s *RefreshScheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
