package trajectory

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	points, err := Decode([]byte(`[[1, 2], [3.5, -4], [0, 0]]`), 3)
	require.NoError(t, err)
	assert.Equal(t, []r2.Point{{X: 1, Y: 2}, {X: 3.5, Y: -4}, {X: 0, Y: 0}}, points)
}

func TestDecodeAcceptsLongerData(t *testing.T) {
	points, err := Decode([]byte(`[[1, 2], [3, 4]]`), 1)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		frames int
		want   error
	}{
		{"not an array", `{"x": 1}`, 1, ErrInvalidShape},
		{"not json", `[[1, 2]`, 1, ErrInvalidShape},
		{"too short", `[[1, 2]]`, 2, ErrTooShort},
		{"triple", `[[1, 2, 3]]`, 1, ErrInvalidShape},
		{"single value", `[[1]]`, 1, ErrInvalidShape},
		{"string value", `[["1", 2]]`, 1, ErrInvalidShape},
		{"scalar frame", `[1, 2]`, 1, ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.frames)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
