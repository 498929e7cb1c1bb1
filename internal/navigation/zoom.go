package navigation

import (
	"fmt"
	"math"
)

type Direction string

const (
	DirectionUpward   Direction = "upward"
	DirectionDownward Direction = "downward"
)

type ZoomConfig struct {
	// Direction is the side the vertical axis starts from. Moving away from
	// it increases precision.
	Direction       Direction
	MinimalMovement float64
	Layers          int
	LayeredYAxis    bool
	// CursorInBase returns the vertical axis to its base on release.
	CursorInBase                bool
	ToggleStartsInMousePosition bool
}

func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{
		Direction:       DirectionUpward,
		MinimalMovement: 0.01,
		Layers:          7,
	}
}

// ZoomStrategy uses horizontal movement to navigate and vertical movement
// to set the zoom factor scaling it.
type ZoomStrategy struct {
	cfg  ZoomConfig
	host Host
	lock lockGuard

	posX float64
	posY float64
	zoom float64
}

type ZoomState struct {
	Direction Direction `json:"direction"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Zoom      float64   `json:"zoom"`
	Precision float64   `json:"frames_per_unit"`
	Locked    bool      `json:"locked"`
}

func NewZoomStrategy(cfg ZoomConfig) *ZoomStrategy {
	if cfg.Direction == "" {
		cfg.Direction = DirectionDownward
	}
	if cfg.MinimalMovement <= 0 || cfg.MinimalMovement > 1 {
		cfg.MinimalMovement = 0.01
	}
	if cfg.Layers <= 0 {
		cfg.Layers = 7
	}
	return &ZoomStrategy{cfg: cfg, zoom: 1}
}

func (s *ZoomStrategy) Kind() Kind { return KindZoom }

func (s *ZoomStrategy) Check(h Host) error {
	w := h.Widget()
	if w.Width <= 0 || w.Height <= 0 {
		return fmt.Errorf("%w: zoom surface has no size", ErrMissingTarget)
	}
	return nil
}

func (s *ZoomStrategy) Activate(h Host) {
	s.host = h
	s.lock.release()
	s.posY = s.baseY()
	s.updateZoom()
	s.Sync(h.Position())
}

func (s *ZoomStrategy) Deactivate() {
	s.lock.release()
}

func (s *ZoomStrategy) baseY() float64 {
	if s.cfg.Direction == DirectionDownward {
		return 0
	}
	return s.host.Widget().Height
}

// virtualY is the vertical position after layer quantization.
func (s *ZoomStrategy) virtualY() float64 {
	if !s.cfg.LayeredYAxis {
		return s.posY
	}
	h := s.host.Widget().Height
	layers := float64(s.cfg.Layers)
	return (h / layers) * math.Round(s.posY*layers/h)
}

func (s *ZoomStrategy) updateZoom() {
	h := s.host.Widget().Height
	if h <= 0 {
		s.zoom = 1
		return
	}

	fraction := s.virtualY() / h
	if s.cfg.Direction == DirectionDownward {
		fraction = 1 - fraction
	}
	s.zoom = Restrict(fraction, s.cfg.MinimalMovement, 1)
}

func (s *ZoomStrategy) Zoom() float64 {
	return s.zoom
}

// Precision is the number of frames covered by one unit of horizontal movement.
func (s *ZoomStrategy) Precision() float64 {
	if s.host == nil || s.host.Widget().Width <= 0 {
		return 0
	}
	return s.zoom * s.host.Duration() * s.host.FrameRate() / s.host.Widget().Width
}

// SetDirection flips the vertical axis and resets it to its base.
func (s *ZoomStrategy) SetDirection(d Direction) {
	if d != DirectionUpward && d != DirectionDownward {
		return
	}
	s.cfg.Direction = d
	if s.host == nil {
		return
	}
	s.posY = s.baseY()
	s.updateZoom()
	s.Sync(s.host.Position())
}

func (s *ZoomStrategy) PointerDown(ev PointerEvent) error {
	if err := s.lock.acquire(s.host.PointerLock()); err != nil {
		return err
	}
	if s.cfg.ToggleStartsInMousePosition {
		s.posX = Restrict(ev.X, 0, s.host.Widget().Width)
	}
	return nil
}

func (s *ZoomStrategy) PointerMove(ev PointerEvent) {
	if !s.lock.isHeld() {
		return
	}

	w := s.host.Widget()
	if ev.DX != 0 {
		s.host.Seek(PixelToSecond(s.posX+ev.DX*s.zoom, w.Width, s.host.Duration()))
	}
	if ev.DY != 0 {
		s.posY = Restrict(s.posY+ev.DY, 0, w.Height)
		s.updateZoom()
	}
}

func (s *ZoomStrategy) PointerUp(PointerEvent) {
	s.lock.release()
	if s.cfg.CursorInBase && s.host != nil {
		s.posY = s.baseY()
		s.updateZoom()
	}
}

func (s *ZoomStrategy) Sync(position float64) {
	if s.host == nil {
		return
	}
	w := s.host.Widget()
	s.posX = SecondToPixel(position, s.host.Duration(), w.Width)
	s.posY = Restrict(s.posY, 0, w.Height)
}

func (s *ZoomStrategy) Snapshot() any {
	return ZoomState{
		Direction: s.cfg.Direction,
		X:         s.posX,
		Y:         s.posY,
		Zoom:      s.zoom,
		Precision: s.Precision(),
		Locked:    s.lock.isHeld(),
	}
}
