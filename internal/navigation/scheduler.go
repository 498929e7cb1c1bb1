package navigation

import (
	"sync"
	"time"
)

// Ticker is the part of time.Ticker the Scheduler needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type TickerFunc func(time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop() { r.t.Stop() }

func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// PeriodFromRate converts a rate in Hz into a tick period.
func PeriodFromRate(perSecond float64) time.Duration {
	if perSecond <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / perSecond)
}

// Scheduler runs task at a fixed period between Start and Stop. Both are
// idempotent.
type Scheduler struct {
	period    time.Duration
	task      func()
	newTicker TickerFunc

	mu   sync.Mutex
	stop chan struct{}
}

func NewScheduler(period time.Duration, task func(), newTicker TickerFunc) *Scheduler {
	if newTicker == nil {
		newTicker = NewRealTicker
	}
	return &Scheduler{
		period:    period,
		task:      task,
		newTicker: newTicker,
	}
}

func (s *Scheduler) Period() time.Duration {
	return s.period
}

func (s *Scheduler) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return
	}

	stop := make(chan struct{})
	s.stop = stop
	ticker := s.newTicker(s.period)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C():
				select {
				case <-stop:
					return
				default:
				}
				s.task()
			}
		}
	}()
}

// Stop does not wait for a running task so it is safe to call from one.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return
	}

	close(s.stop)
	s.stop = nil
}
