package navigation

import (
	"github.com/golang/geo/r2"
)

// DIMPStrategy drags the object of a trajectory: the cursor follows the
// frame whose position is nearest to the pointer.
type DIMPStrategy struct {
	host    Host
	pressed bool
	frame   int
}

type DIMPState struct {
	Frame   int     `json:"frame"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Pressed bool    `json:"pressed"`
}

func NewDIMPStrategy() *DIMPStrategy {
	return &DIMPStrategy{}
}

func (s *DIMPStrategy) Kind() Kind { return KindDIMP }

func (s *DIMPStrategy) Check(h Host) error {
	if h.Locator() == nil {
		return ErrTrajectoryUnavailable
	}
	return nil
}

func (s *DIMPStrategy) Activate(h Host) {
	s.host = h
	s.pressed = false
	s.Sync(h.Position())
}

func (s *DIMPStrategy) Deactivate() {
	s.pressed = false
}

func (s *DIMPStrategy) follow(ev PointerEvent) {
	loc := s.host.Locator()
	if loc == nil {
		return
	}

	frame, ok := loc.Locate(r2.Point{X: ev.X, Y: ev.Y}, s.host.Frame())
	if !ok {
		return
	}
	s.host.Seek(FrameToSecond(frame, s.host.FrameRate()))
}

func (s *DIMPStrategy) PointerDown(ev PointerEvent) error {
	if s.host.Locator() == nil {
		return ErrTrajectoryUnavailable
	}
	s.pressed = true
	s.follow(ev)
	return nil
}

func (s *DIMPStrategy) PointerMove(ev PointerEvent) {
	if s.pressed {
		s.follow(ev)
	}
}

func (s *DIMPStrategy) PointerUp(PointerEvent) {
	s.pressed = false
}

func (s *DIMPStrategy) Sync(position float64) {
	if s.host == nil {
		return
	}
	s.frame = SecondToFrame(position, s.host.FrameRate())
	if loc := s.host.Locator(); loc != nil && loc.Len() > 0 {
		s.frame = Restrict(s.frame, 0, loc.Len()-1)
	}
}

func (s *DIMPStrategy) Snapshot() any {
	st := DIMPState{Frame: s.frame, Pressed: s.pressed}
	if s.host != nil {
		if loc := s.host.Locator(); loc != nil && loc.Len() > 0 {
			p := loc.Point(s.frame)
			st.X, st.Y = p.X, p.Y
		}
	}
	return st
}
