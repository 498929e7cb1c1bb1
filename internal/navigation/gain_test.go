package navigation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeedGain(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		want  float64
	}{
		{"still", 0, gainMin},
		{"slow", 0.03, gainMin},
		{"middle", 0.05, gainMin + (gainMax-gainMin)/2},
		{"fast", 0.07, gainMax},
		{"very fast", 3, gainMax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, speedGain(tt.speed), 1e-9)
		})
	}
}

func TestGainModelDerivedConstants(t *testing.T) {
	m, err := NewGainModel(DefaultGainConfig())
	require.NoError(t, err)

	assert.InDelta(t, 800.0*400/5160/96, m.OptimalGainRatio(), 1e-12)
	assert.InDelta(t, 0.00025, m.VelocityThresholdUser(), 1e-12)
	assert.InDelta(t, 0.15625, m.PixelGainFactor(), 1e-12)
	assert.InDelta(t, 100.0/96/0.15625, m.VelocityThresholdPixel(), 1e-12)

	again, err := NewGainModel(DefaultGainConfig())
	require.NoError(t, err)
	assert.Equal(t, m.OptimalGainRatio(), again.OptimalGainRatio())
	assert.Equal(t, m.VelocityThresholdPixel(), again.VelocityThresholdPixel())
}

func TestGainModelUsefulResolution(t *testing.T) {
	cfg := DefaultGainConfig()
	cfg.InputResolution = 300
	m, err := NewGainModel(cfg)
	require.NoError(t, err)

	// capped by the device resolution
	assert.InDelta(t, cfg.WidgetSize*300/cfg.Cardinality/cfg.DisplayResolution, m.OptimalGainRatio(), 1e-12)
}

func TestComputeGainZeroMovement(t *testing.T) {
	m, err := NewGainModel(DefaultGainConfig())
	require.NoError(t, err)

	_, ok := m.ComputeGain(0, 0, 16)
	assert.False(t, ok)
	_, ok = m.ComputeGain(0, 0, 0)
	assert.False(t, ok)
}

func TestComputeGainSlowMovement(t *testing.T) {
	m, err := NewGainModel(DefaultGainConfig())
	require.NoError(t, err)

	gain, ok := m.ComputeGain(10, 0, 16)
	require.True(t, ok)

	// 0.01 inch in 16ms: 0.625 in/s, below the CD curve threshold
	q := 0.625 / m.VelocityThresholdPixel()
	want := ((1-q)*m.OptimalGainRatio() + q*gainMin) * 96 / 1000
	assert.InDelta(t, want, gain, 1e-12)
}

func TestComputeGainFastMovementSaturates(t *testing.T) {
	m, err := NewGainModel(DefaultGainConfig())
	require.NoError(t, err)

	gain, ok := m.ComputeGain(1000, 0, 1)
	require.True(t, ok)
	assert.InDelta(t, gainMax*96/1000, gain, 1e-12)

	same, ok := m.ComputeGain(0, -1000, 1)
	require.True(t, ok)
	assert.InDelta(t, gain, same, 1e-12)
}

func TestComputeGainAlwaysFiniteAndNonNegative(t *testing.T) {
	m, err := NewGainModel(DefaultGainConfig())
	require.NoError(t, err)

	for _, dt := range []float64{0.5, 1, 8, 16, 100, 5000} {
		for _, d := range [][2]float64{{1, 0}, {-3, 2}, {40, 40}, {0, -250}, {0.25, 0}} {
			gain, ok := m.ComputeGain(d[0], d[1], dt)
			require.True(t, ok)
			assert.False(t, math.IsNaN(gain) || math.IsInf(gain, 0), "dt=%v d=%v", dt, d)
			assert.GreaterOrEqual(t, gain, 0.0)
		}
	}
}

func TestWithCardinality(t *testing.T) {
	m, err := NewGainModel(DefaultGainConfig())
	require.NoError(t, err)

	same, err := m.WithCardinality(m.Config().Cardinality)
	require.NoError(t, err)
	assert.Same(t, m, same)

	longer, err := m.WithCardinality(2 * m.Config().Cardinality)
	require.NoError(t, err)
	assert.InDelta(t, m.OptimalGainRatio()/2, longer.OptimalGainRatio(), 1e-12)
	assert.Equal(t, m.VelocityThresholdPixel(), longer.VelocityThresholdPixel())
}

func TestNewGainModelRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultGainConfig()
	cfg.Cardinality = 0

	_, err := NewGainModel(cfg)
	assert.True(t, errors.Is(err, ErrInvalidGainConfig))
}
