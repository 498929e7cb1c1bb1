package navigation

import (
	"fmt"
	"time"
)

type Kind string

const (
	KindNone     Kind = "none"
	KindDirect   Kind = "direct"
	KindContext  Kind = "context"
	KindRudder   Kind = "rudder"
	KindSubpixel Kind = "subpixel"
	KindZoom     Kind = "zoom"
	KindDIMP     Kind = "dimp"
)

// Target is the surface a pointer event happened on.
type Target string

const (
	TargetMain   Target = "main"
	TargetSub    Target = "sub"
	TargetScreen Target = "screen"
)

// PointerEvent carries positions relative to the target surface, raw
// movement since the previous event and a timestamp in milliseconds.
type PointerEvent struct {
	X         float64
	Y         float64
	DX        float64
	DY        float64
	Timestamp float64
	Target    Target
}

type Widget struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MediaClock is the playing media element.
type MediaClock interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	Duration() float64
	CurrentTime() float64
}

// PointerLock captures the pointer for relative movement.
type PointerLock interface {
	Request() error
	Exit()
}

// Host is what a strategy sees of the controller. Seek only has an effect
// for the active strategy.
type Host interface {
	Position() float64
	Duration() float64
	FrameRate() float64
	Frame() int
	Widget() Widget
	Seek(value float64)
	PointerLock() PointerLock
	Locator() *Locator
	NewScheduler(period time.Duration, task func()) *Scheduler
}

// Strategy maps pointer input to cursor positions.
type Strategy interface {
	Kind() Kind
	// Check reports whether the strategy can be activated on h.
	Check(h Host) error
	Activate(h Host)
	// Deactivate releases every held resource. Calling it twice is a no-op.
	Deactivate()
	PointerDown(ev PointerEvent) error
	PointerMove(ev PointerEvent)
	PointerUp(ev PointerEvent)
	// Sync updates display state after any cursor change.
	Sync(position float64)
	Snapshot() any
}

// lockGuard makes pointer lock acquisition a scoped resource.
type lockGuard struct {
	lock PointerLock
	held bool
}

func (g *lockGuard) acquire(lock PointerLock) error {
	if g.held {
		return nil
	}
	if lock == nil {
		return ErrPointerLockUnavailable
	}
	if err := lock.Request(); err != nil {
		return fmt.Errorf("%w: %v", ErrPointerLockUnavailable, err)
	}

	g.lock = lock
	g.held = true
	return nil
}

func (g *lockGuard) release() {
	if !g.held {
		return
	}
	g.held = false
	g.lock.Exit()
}

func (g *lockGuard) isHeld() bool {
	return g.held
}
