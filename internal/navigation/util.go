package navigation

import (
	"math"

	"golang.org/x/exp/constraints"
)

// frameEpsilon absorbs float error so that FrameToSecond followed by
// SecondToFrame returns the same frame.
const frameEpsilon = 1e-9

// Restrict returns n clamped into [lo, hi]. When lo > hi, lo wins.
func Restrict[T constraints.Ordered](n, lo, hi T) T {
	if n > hi {
		n = hi
	}
	if n < lo {
		n = lo
	}
	return n
}

func PixelToSecond(pos, width, duration float64) float64 {
	if width <= 0 {
		return 0
	}
	return pos * duration / width
}

func SecondToPixel(t, duration, width float64) float64 {
	if duration <= 0 {
		return 0
	}
	return t * width / duration
}

func SecondToFrame(sec, fps float64) int {
	return int(math.Floor(sec*fps + frameEpsilon))
}

func FrameToSecond(frame int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frame) / fps
}
