package navigation

import (
	"fmt"
	"math"
)

type ContextMode string

const (
	ContextBasic  ContextMode = "basic"
	ContextRudder ContextMode = "rudder"
)

type ContextConfig struct {
	Mode ContextMode
	// Interval is the fixed half width of the window. Ignored when
	// MaxInterval is set.
	Interval float64
	// MinInterval and MaxInterval bound the adjustable half width.
	MinInterval float64
	MaxInterval float64
	// MaxIntervalRatio, when set, caps MaxInterval to a share of the duration.
	MaxIntervalRatio float64
	// CapturePerSecond is the rudder tick rate.
	CapturePerSecond float64
}

func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		Mode:             ContextBasic,
		MinInterval:      1,
		MaxInterval:      1800,
		MaxIntervalRatio: 1.0 / 8,
		CapturePerSecond: 15,
	}
}

func DefaultRudderConfig() ContextConfig {
	return ContextConfig{
		Mode:             ContextRudder,
		MinInterval:      0.1,
		MaxInterval:      2,
		CapturePerSecond: 15,
	}
}

// ContextStrategy pairs the full range slider with a secondary slider
// scoped to [center-interval, center+interval].
//
// In basic mode the secondary slider seeks directly. In rudder mode its
// position is an offset applied to the cursor at every scheduler tick while
// the pointer is held.
type ContextStrategy struct {
	cfg  ContextConfig
	host Host

	interval    float64
	minInterval float64
	maxInterval float64
	center      float64
	offset      float64

	mainPressed bool
	dragging    bool
	selected    bool

	scheduler *Scheduler
}

type ContextState struct {
	Mode      ContextMode `json:"mode"`
	Interval  float64     `json:"interval"`
	Center    float64     `json:"center"`
	Offset    float64     `json:"offset"`
	WindowMin float64     `json:"window_min"`
	WindowMax float64     `json:"window_max"`
	Selected  bool        `json:"selected"`
	Dragging  bool        `json:"dragging"`
}

func NewContextStrategy(cfg ContextConfig) *ContextStrategy {
	if cfg.Mode == "" {
		cfg.Mode = ContextBasic
	}
	if cfg.CapturePerSecond <= 0 {
		cfg.CapturePerSecond = 15
	}
	return &ContextStrategy{cfg: cfg}
}

func (s *ContextStrategy) Kind() Kind {
	if s.cfg.Mode == ContextRudder {
		return KindRudder
	}
	return KindContext
}

func (s *ContextStrategy) adjustable() bool {
	return s.cfg.MaxInterval > 0
}

func (s *ContextStrategy) Check(h Host) error {
	if h.Widget().Width <= 0 {
		return fmt.Errorf("%w: slider has no width", ErrMissingTarget)
	}
	if !s.adjustable() && s.cfg.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrMissingTarget)
	}
	return nil
}

func (s *ContextStrategy) Activate(h Host) {
	s.host = h
	s.offset = 0
	s.mainPressed, s.dragging, s.selected = false, false, false

	if s.adjustable() {
		s.minInterval = s.cfg.MinInterval
		s.maxInterval = s.cfg.MaxInterval
		if s.cfg.MaxIntervalRatio > 0 {
			s.maxInterval = Restrict(h.Duration()*s.cfg.MaxIntervalRatio, s.cfg.MinInterval, s.cfg.MaxInterval)
		}
		s.interval = (s.maxInterval - s.minInterval) / 2
	} else {
		s.interval = s.cfg.Interval
		s.minInterval, s.maxInterval = s.interval, s.interval
	}

	s.scheduler = h.NewScheduler(PeriodFromRate(s.cfg.CapturePerSecond), s.tick)
	s.recenter(h.Position())
}

func (s *ContextStrategy) Deactivate() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.offset = 0
	s.mainPressed, s.dragging, s.selected = false, false, false
}

// Window returns the bounds of the secondary slider.
func (s *ContextStrategy) Window() (float64, float64) {
	return s.center - s.interval, s.center + s.interval
}

func (s *ContextStrategy) Interval() float64 {
	return s.interval
}

func (s *ContextStrategy) Offset() float64 {
	return s.offset
}

func (s *ContextStrategy) Scheduler() *Scheduler {
	return s.scheduler
}

func (s *ContextStrategy) recenter(value float64) {
	duration := s.host.Duration()

	if s.cfg.Mode == ContextRudder {
		if value >= 0 && value <= duration {
			s.center = value
		}
		return
	}

	// a window wider than the content is centred on it
	if duration <= 2*s.interval {
		s.center = duration / 2
		return
	}
	s.center = Restrict(value, s.interval, duration-s.interval)
}

// SetInterval changes the half width within its configured range and
// returns the applied value.
func (s *ContextStrategy) SetInterval(n float64) float64 {
	if !s.adjustable() || s.host == nil || math.IsNaN(n) {
		return s.interval
	}
	s.interval = Restrict(n, s.minInterval, s.maxInterval)
	s.offset = Restrict(s.offset, -s.interval, s.interval)
	s.recenter(s.host.Position())
	return s.interval
}

// subValue maps x over the secondary slider to a value in the window.
func (s *ContextStrategy) subValue(x float64) float64 {
	lo, hi := s.Window()
	w := s.host.Widget().Width
	return lo + PixelToSecond(x, w, hi-lo)
}

func (s *ContextStrategy) seekMain(x float64) {
	w := s.host.Widget().Width
	s.host.Seek(PixelToSecond(Restrict(x, 0, w), w, s.host.Duration()))
}

func (s *ContextStrategy) setOffset(x float64) {
	s.offset = Restrict(s.subValue(x)-s.center, -s.interval, s.interval)
}

func (s *ContextStrategy) PointerDown(ev PointerEvent) error {
	if ev.Target == TargetMain {
		s.mainPressed = true
		s.seekMain(ev.X)
		return nil
	}

	switch s.cfg.Mode {
	case ContextRudder:
		s.selected = true
		s.setOffset(ev.X)
		s.scheduler.Start()
	default:
		s.dragging = true
		s.host.Seek(Restrict(s.subValue(ev.X), s.center-s.interval, s.center+s.interval))
	}
	return nil
}

func (s *ContextStrategy) PointerMove(ev PointerEvent) {
	switch {
	case s.mainPressed:
		s.seekMain(ev.X)
	case s.selected:
		s.setOffset(ev.X)
	case s.dragging:
		s.host.Seek(Restrict(s.subValue(ev.X), s.center-s.interval, s.center+s.interval))
	}
}

func (s *ContextStrategy) PointerUp(PointerEvent) {
	if s.selected {
		s.scheduler.Stop()
	}
	s.mainPressed, s.dragging, s.selected = false, false, false
	s.offset = 0
}

func (s *ContextStrategy) tick() {
	if !s.selected {
		return
	}
	s.host.Seek(s.center + s.offset)
}

func (s *ContextStrategy) Sync(position float64) {
	if s.host == nil || s.dragging {
		return
	}
	s.recenter(position)
}

func (s *ContextStrategy) Snapshot() any {
	lo, hi := s.Window()
	return ContextState{
		Mode:      s.cfg.Mode,
		Interval:  s.interval,
		Center:    s.center,
		Offset:    s.offset,
		WindowMin: lo,
		WindowMax: hi,
		Selected:  s.selected,
		Dragging:  s.dragging,
	}
}
