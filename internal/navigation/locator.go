package navigation

import (
	"github.com/golang/geo/r2"
)

// DefaultActivationRadius is the distance in pixels under which a pointer
// grabs the trajectory.
const DefaultActivationRadius = 50.0

// Locator finds the trajectory frame nearest to a pointer by walking
// from a known frame towards strictly closer neighbours.
type Locator struct {
	points []r2.Point
	radius float64
}

// NewLocator expects points already validated by the trajectory loader.
func NewLocator(points []r2.Point, radius float64) *Locator {
	if radius <= 0 {
		radius = DefaultActivationRadius
	}
	return &Locator{points: points, radius: radius}
}

func (l *Locator) Len() int {
	return len(l.points)
}

func (l *Locator) Point(frame int) r2.Point {
	return l.points[Restrict(frame, 0, len(l.points)-1)]
}

func (l *Locator) distance(p r2.Point, frame int) float64 {
	return p.Sub(l.points[frame]).Norm()
}

// Locate returns the frame nearest to pointer starting the walk at origin.
// ok is false when the pointer is farther than the activation radius from
// the origin frame; no movement must be applied then.
//
// Ties: staying wins over moving, and the previous frame wins over the next
// one.
func (l *Locator) Locate(pointer r2.Point, origin int) (frame int, ok bool) {
	n := len(l.points)
	if n == 0 {
		return 0, false
	}

	current := Restrict(origin, 0, n-1)
	if n >= 3 {
		current = Restrict(origin, 1, n-2)
	}

	if l.distance(pointer, current) > l.radius {
		return current, false
	}

	from := -1
	// every step strictly reduces the distance so n steps always suffice
	for step := 0; step < n; step++ {
		d := l.distance(pointer, current)
		next := current

		if current > 0 {
			if dp := l.distance(pointer, current-1); dp < d {
				next, d = current-1, dp
			}
		}
		if current < n-1 {
			if dn := l.distance(pointer, current+1); dn < d {
				next = current + 1
			}
		}

		if next == current || next == from {
			return current, true
		}

		from, current = current, next
	}

	return current, true
}
