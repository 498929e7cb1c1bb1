package trajectory

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

var (
	ErrInvalidShape = errors.New("trajectory must be a list of [x, y] pairs")
	ErrTooShort     = errors.New("trajectory is shorter than the media")
	ErrNotFound     = errors.New("trajectory not found")
)

// Decode parses keyframe positions and checks they cover frames frames.
func Decode(data []byte, frames int) ([]r2.Point, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}

	if len(raw) < frames {
		return nil, fmt.Errorf("%w: %d positions for %d frames", ErrTooShort, len(raw), frames)
	}

	points := make([]r2.Point, len(raw))
	for i, elem := range raw {
		var pair []float64
		if err := json.Unmarshal(elem, &pair); err != nil {
			return nil, fmt.Errorf("%w: frame %d: %v", ErrInvalidShape, i, err)
		}
		if len(pair) != 2 {
			return nil, fmt.Errorf("%w: frame %d has %d values", ErrInvalidShape, i, len(pair))
		}
		if math.IsNaN(pair[0]) || math.IsInf(pair[0], 0) || math.IsNaN(pair[1]) || math.IsInf(pair[1], 0) {
			return nil, fmt.Errorf("%w: frame %d is not finite", ErrInvalidShape, i)
		}
		points[i] = r2.Point{X: pair[0], Y: pair[1]}
	}

	return points, nil
}
