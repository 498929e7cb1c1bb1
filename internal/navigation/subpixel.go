package navigation

import (
	"fmt"
)

type SubpixelConfig struct {
	Gain GainConfig
	// OnScreenNavigation accepts presses on the video screen as well as on
	// the slider.
	OnScreenNavigation bool
}

func DefaultSubpixelConfig() SubpixelConfig {
	return SubpixelConfig{
		Gain:               DefaultGainConfig(),
		OnScreenNavigation: true,
	}
}

// SubpixelStrategy moves the cursor by pointer deltas scaled with the
// adaptive gain model. Movement is read under pointer lock.
type SubpixelStrategy struct {
	cfg  SubpixelConfig
	host Host

	model     *GainModel
	lock      lockGuard
	lastEvent float64
	pixel     float64
}

type SubpixelState struct {
	Pixel    float64 `json:"pixel"`
	Locked   bool    `json:"locked"`
	GainOpt  float64 `json:"gain_optimal"`
	Velocity float64 `json:"velocity_threshold_pixel"`
}

func NewSubpixelStrategy(cfg SubpixelConfig) *SubpixelStrategy {
	return &SubpixelStrategy{cfg: cfg}
}

func (s *SubpixelStrategy) Kind() Kind { return KindSubpixel }

// ensureModel rebuilds the gain model when the content length or the
// widget size changed.
func (s *SubpixelStrategy) ensureModel(h Host) error {
	cardinality := h.Duration() * h.FrameRate()
	width := h.Widget().Width

	if s.model != nil {
		cfg := s.model.Config()
		if cfg.WidgetSize == width {
			m, err := s.model.WithCardinality(cardinality)
			if err != nil {
				return err
			}
			s.model = m
			return nil
		}
	}

	cfg := s.cfg.Gain
	cfg.Cardinality = cardinality
	cfg.WidgetSize = width
	m, err := NewGainModel(cfg)
	if err != nil {
		return err
	}
	s.model = m
	return nil
}

func (s *SubpixelStrategy) Check(h Host) error {
	if h.Widget().Width <= 0 {
		return fmt.Errorf("%w: slider has no width", ErrMissingTarget)
	}
	if err := s.ensureModel(h); err != nil {
		return fmt.Errorf("%w: %v", ErrMissingTarget, err)
	}
	return nil
}

func (s *SubpixelStrategy) Activate(h Host) {
	s.host = h
	s.lock.release()
	s.Sync(h.Position())
}

func (s *SubpixelStrategy) Deactivate() {
	s.lock.release()
}

func (s *SubpixelStrategy) Model() *GainModel {
	return s.model
}

func (s *SubpixelStrategy) PointerDown(ev PointerEvent) error {
	if ev.Target == TargetScreen && !s.cfg.OnScreenNavigation {
		return nil
	}
	if err := s.lock.acquire(s.host.PointerLock()); err != nil {
		return err
	}
	s.lastEvent = ev.Timestamp
	return nil
}

func (s *SubpixelStrategy) PointerMove(ev PointerEvent) {
	if !s.lock.isHeld() {
		return
	}

	dt := ev.Timestamp - s.lastEvent
	s.lastEvent = ev.Timestamp

	if err := s.ensureModel(s.host); err != nil {
		return
	}

	gain, ok := s.model.ComputeGain(ev.DX, ev.DY, dt)
	if !ok {
		return
	}

	delta := PixelToSecond(ev.DX*gain, s.host.Widget().Width, s.host.Duration())
	s.host.Seek(s.host.Position() + delta)
}

func (s *SubpixelStrategy) PointerUp(PointerEvent) {
	s.lock.release()
}

func (s *SubpixelStrategy) Sync(position float64) {
	if s.host == nil {
		return
	}
	s.pixel = SecondToPixel(position, s.host.Duration(), s.host.Widget().Width)
}

func (s *SubpixelStrategy) Snapshot() any {
	st := SubpixelState{Pixel: s.pixel, Locked: s.lock.isHeld()}
	if s.model != nil {
		st.GainOpt = s.model.OptimalGainRatio()
		st.Velocity = s.model.VelocityThresholdPixel()
	}
	return st
}
