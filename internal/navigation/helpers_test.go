package navigation

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	period time.Duration
	ch     chan time.Time
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }
func (m *manualTicker) Stop() {}

// fire delivers one tick, reporting false when nothing received it.
func (m *manualTicker) fire() bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(50 * time.Millisecond):
		return false
	}
}

type tickers struct {
	mu   sync.Mutex
	list []*manualTicker
}

func (f *tickers) New(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &manualTicker{period: d, ch: make(chan time.Time)}
	f.list = append(f.list, t)
	return t
}

func (f *tickers) last(t *testing.T) *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.list, "no ticker started")
	return f.list[len(f.list)-1]
}

type fakeClock struct {
	mu     sync.Mutex
	seeks  []float64
	plays  int
	pauses int
}

func (f *fakeClock) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	return nil
}

func (f *fakeClock) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	return nil
}

func (f *fakeClock) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	return nil
}

func (f *fakeClock) Duration() float64    { return 0 }
func (f *fakeClock) CurrentTime() float64 { return 0 }

func (f *fakeClock) seekCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seeks)
}

type fakeLock struct {
	unsupported bool
	requests    int
	exits       int
}

func (f *fakeLock) Request() error {
	if f.unsupported {
		return errors.New("pointer lock is not supported")
	}
	f.requests++
	return nil
}

func (f *fakeLock) Exit() {
	f.exits++
}

type recorder struct {
	mu          sync.Mutex
	changes     []Change
	playing     []bool
	ended       int
	unavailable []Kind
	loadErrors  []string
}

func (r *recorder) CursorChanged(ch Change, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, ch)
}

func (r *recorder) PlayStateChanged(playing bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = append(r.playing, playing)
}

func (r *recorder) PlaybackEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended++
}

func (r *recorder) StrategyUnavailable(kind Kind, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = append(r.unavailable, kind)
}

func (r *recorder) LoadError(mediaID string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErrors = append(r.loadErrors, mediaID)
}

// positions returns cursor positions written by source.
func (r *recorder) positions(source Source) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []float64
	for _, ch := range r.changes {
		if ch.Source == source {
			out = append(out, ch.Position)
		}
	}
	return out
}

func (r *recorder) endedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

type harness struct {
	c       *Controller
	clock   *fakeClock
	lock    *fakeLock
	events  *recorder
	tickers *tickers
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		clock:   &fakeClock{},
		lock:    &fakeLock{},
		events:  &recorder{},
		tickers: &tickers{},
	}
	cfg.NewTicker = h.tickers.New
	h.c = NewController(cfg, Deps{
		Clock:       h.clock,
		PointerLock: h.lock,
		Listener:    h.events,
	})
	t.Cleanup(h.c.Close)

	return h
}

func videoMedia(seconds int) Media {
	return Media{ID: "clip", Kind: MediaVideo, FrameRate: 1, DurationInFrames: seconds}
}

// linePoints lays n frames on a horizontal line, step pixels apart.
func linePoints(n int, step float64) []r2.Point {
	points := make([]r2.Point, n)
	for i := range points {
		points[i] = r2.Point{X: 100 + step*float64(i), Y: 60}
	}
	return points
}

// start loads media, sizes the widget and activates kind.
func (h *harness) start(t *testing.T, media Media, points []r2.Point, w Widget, kind Kind) {
	t.Helper()

	require.NoError(t, h.c.LoadMedia(media, points, nil))
	h.c.Resize(w)
	require.NoError(t, h.c.SwitchStrategy(kind))
}
