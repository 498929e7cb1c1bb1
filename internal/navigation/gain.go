package navigation

import (
	"fmt"
	"math"
)

const (
	// CD gain curve, speeds in meters per second.
	gainMin      = 0.01
	gainMax      = 20.0
	gainSpeedLow = 0.03
	gainSpeedHi  = 0.07

	defaultHumanResolution = 400.0
	pixelGainRatio         = 0.015
	metersPerInch          = 0.0254
)

type GainConfig struct {
	// Cardinality is the number of frames of the navigated content.
	Cardinality float64
	// WidgetSize is the width in pixels of the navigated surface.
	WidgetSize float64
	// InputResolution of the pointing device in counts per inch.
	InputResolution float64
	// MinHumanResolution is the smallest resolution of human movement, in counts per inch.
	MinHumanResolution float64
	// DisplayResolution in pixels per inch.
	DisplayResolution float64
	// InputSampleRate of the pointing device in Hz.
	InputSampleRate float64
}

func DefaultGainConfig() GainConfig {
	return GainConfig{
		Cardinality:        5160,
		WidgetSize:         800,
		InputResolution:    1000,
		MinHumanResolution: 200,
		DisplayResolution:  96,
		InputSampleRate:    100,
	}
}

func (c GainConfig) validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"cardinality", c.Cardinality},
		{"widget size", c.WidgetSize},
		{"input resolution", c.InputResolution},
		{"min human resolution", c.MinHumanResolution},
		{"display resolution", c.DisplayResolution},
		{"input sample rate", c.InputSampleRate},
	}
	for _, f := range fields {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidGainConfig, f.name, f.value)
		}
	}
	return nil
}

// GainModel maps raw pointer deltas to a pixel gain. It blends an optimal
// constant gain with a speed dependent control-display gain.
type GainModel struct {
	cfg GainConfig

	usefulResolution       float64
	optimalGainRatio       float64
	velocityThresholdUser  float64
	pixelGainFactor        float64
	velocityThresholdPixel float64
}

func NewGainModel(cfg GainConfig) (*GainModel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &GainModel{cfg: cfg}
	m.computeFactors()

	return m, nil
}

func (m *GainModel) computeFactors() {
	m.usefulResolution = math.Min(math.Max(defaultHumanResolution, m.cfg.MinHumanResolution), m.cfg.InputResolution)
	m.optimalGainRatio = m.cfg.WidgetSize * m.usefulResolution / m.cfg.Cardinality / m.cfg.DisplayResolution
	m.velocityThresholdUser = m.cfg.InputSampleRate / 1000 / m.usefulResolution
	m.pixelGainFactor = pixelGainRatio * m.cfg.InputResolution / m.cfg.DisplayResolution
	m.velocityThresholdPixel = m.cfg.InputSampleRate / m.cfg.DisplayResolution / m.pixelGainFactor
}

func (m *GainModel) Config() GainConfig {
	return m.cfg
}

func (m *GainModel) OptimalGainRatio() float64 { return m.optimalGainRatio }
func (m *GainModel) VelocityThresholdUser() float64 { return m.velocityThresholdUser }
func (m *GainModel) PixelGainFactor() float64 { return m.pixelGainFactor }
func (m *GainModel) VelocityThresholdPixel() float64 { return m.velocityThresholdPixel }

// WithCardinality returns a model for content of a different length. The
// receiver is returned as is when the cardinality did not change.
func (m *GainModel) WithCardinality(cardinality float64) (*GainModel, error) {
	if cardinality == m.cfg.Cardinality {
		return m, nil
	}

	cfg := m.cfg
	cfg.Cardinality = cardinality
	return NewGainModel(cfg)
}

// speedGain is the piecewise linear CD gain for a speed in meters per second.
func speedGain(speed float64) float64 {
	switch {
	case speed <= gainSpeedLow:
		return gainMin
	case speed >= gainSpeedHi:
		return gainMax
	default:
		return gainMin + (gainMax-gainMin)/(gainSpeedHi-gainSpeedLow)*(speed-gainSpeedLow)
	}
}

// ComputeGain returns the pixel gain for a movement of (dx, dy) counts that
// took dt milliseconds. ok is false when there was no movement; callers must
// not apply any change in that case.
func (m *GainModel) ComputeGain(dx, dy, dt float64) (gain float64, ok bool) {
	counts := math.Hypot(dx, dy)
	if counts == 0 || math.IsNaN(counts) {
		return 0, false
	}

	inches := counts / m.cfg.InputResolution
	// inches per second
	speed := math.Abs(inches / (dt / 1000))
	if math.IsNaN(speed) {
		return 0, false
	}

	g := speedGain(speed * metersPerInch)

	var q float64
	if m.velocityThresholdPixel < m.velocityThresholdUser {
		q = Restrict((speed-m.velocityThresholdUser)/(m.velocityThresholdPixel-m.velocityThresholdUser), 0, 1)
	} else {
		q = Restrict(speed/m.velocityThresholdPixel, 0, 1)
	}

	blended := (1-q)*m.optimalGainRatio + q*g

	return blended * m.cfg.DisplayResolution / m.cfg.InputResolution, true
}
