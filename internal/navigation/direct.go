package navigation

import "fmt"

// DirectStrategy maps the pointer linearly over the whole duration.
type DirectStrategy struct {
	host    Host
	pressed bool
	pixel   float64
}

type DirectState struct {
	Pixel   float64 `json:"pixel"`
	Pressed bool    `json:"pressed"`
}

func NewDirectStrategy() *DirectStrategy {
	return &DirectStrategy{}
}

func (s *DirectStrategy) Kind() Kind { return KindDirect }

func (s *DirectStrategy) Check(h Host) error {
	if h.Widget().Width <= 0 {
		return fmt.Errorf("%w: slider has no width", ErrMissingTarget)
	}
	return nil
}

func (s *DirectStrategy) Activate(h Host) {
	s.host = h
	s.pressed = false
	s.Sync(h.Position())
}

func (s *DirectStrategy) Deactivate() {
	s.pressed = false
}

func (s *DirectStrategy) seekTo(x float64) {
	w := s.host.Widget().Width
	s.host.Seek(PixelToSecond(Restrict(x, 0, w), w, s.host.Duration()))
}

func (s *DirectStrategy) PointerDown(ev PointerEvent) error {
	s.pressed = true
	s.seekTo(ev.X)
	return nil
}

func (s *DirectStrategy) PointerMove(ev PointerEvent) {
	if s.pressed {
		s.seekTo(ev.X)
	}
}

func (s *DirectStrategy) PointerUp(PointerEvent) {
	s.pressed = false
}

func (s *DirectStrategy) Sync(position float64) {
	if s.host == nil {
		return
	}
	s.pixel = SecondToPixel(position, s.host.Duration(), s.host.Widget().Width)
}

func (s *DirectStrategy) Snapshot() any {
	return DirectState{Pixel: s.pixel, Pressed: s.pressed}
}
