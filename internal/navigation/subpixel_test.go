package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trajectoryMedia(frames int, fps float64) Media {
	return Media{ID: "ball", Kind: MediaTrajectory, FrameRate: fps, DurationInFrames: frames}
}

func TestSubpixelMovesMonotonically(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, trajectoryMedia(1800, 30), linePoints(1800, 0.25), Widget{Width: 800, Height: 450}, KindSubpixel)

	ts := 1000.0
	require.NoError(t, h.c.PointerDown(PointerEvent{Timestamp: ts}))
	assert.Equal(t, 1, h.lock.requests)

	prev := h.c.Cursor().Get()
	for i := 0; i < 600; i++ {
		ts += 16
		h.c.PointerMove(PointerEvent{DX: 10, Timestamp: ts})

		pos := h.c.Cursor().Get()
		require.GreaterOrEqual(t, pos, prev)
		require.LessOrEqual(t, pos, 60.0)
		if prev < 60 {
			require.Greater(t, pos, prev, "move %d did not advance", i)
		}
		prev = pos
	}
	assert.Equal(t, 60.0, prev)

	h.c.PointerUp(PointerEvent{})
	assert.Equal(t, 1, h.lock.exits)
}

func TestSubpixelStepMatchesGainModel(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, trajectoryMedia(1800, 30), linePoints(1800, 0.25), Widget{Width: 800, Height: 450}, KindSubpixel)

	cfg := DefaultGainConfig()
	cfg.Cardinality = 1800
	cfg.WidgetSize = 800
	model, err := NewGainModel(cfg)
	require.NoError(t, err)
	gain, ok := model.ComputeGain(10, 0, 16)
	require.True(t, ok)

	require.NoError(t, h.c.PointerDown(PointerEvent{Timestamp: 0}))
	h.c.PointerMove(PointerEvent{DX: 10, Timestamp: 16})

	assert.InDelta(t, PixelToSecond(10*gain, 800, 60), h.c.Cursor().Get(), 1e-12)

	h.c.PointerMove(PointerEvent{DX: -10, Timestamp: 32})
	assert.InDelta(t, 0.0, h.c.Cursor().Get(), 1e-12)
}

func TestSubpixelIgnoresZeroMovement(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, videoMedia(100), nil, Widget{Width: 800}, KindSubpixel)
	h.c.OnTimeUpdate(30, 0)

	require.NoError(t, h.c.PointerDown(PointerEvent{Timestamp: 0}))
	h.c.PointerMove(PointerEvent{Timestamp: 16})
	h.c.PointerMove(PointerEvent{DY: 0, Timestamp: 32})

	assert.Empty(t, h.events.positions(SourceStrategy))
	assert.Equal(t, 30.0, h.c.Cursor().Get())
}

func TestSubpixelRequiresPointerLock(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.lock.unsupported = true
	h.start(t, videoMedia(100), nil, Widget{Width: 800}, KindSubpixel)

	err := h.c.PointerDown(PointerEvent{})
	require.ErrorIs(t, err, ErrPointerLockUnavailable)

	st := h.c.State()
	assert.Equal(t, KindNone, st.Strategy)
	assert.Contains(t, st.Unavailable, KindSubpixel)
	assert.Equal(t, []Kind{KindSubpixel}, h.events.unavailable)

	assert.ErrorIs(t, h.c.SwitchStrategy(KindSubpixel), ErrStrategyUnavailable)
	require.NoError(t, h.c.SwitchStrategy(KindDirect))
	assert.Equal(t, KindDirect, h.c.ActiveKind())

	h.c.SetPointerLock(&fakeLock{})
	require.NoError(t, h.c.SwitchStrategy(KindSubpixel))
}

func TestSubpixelReleasesLockOnSwitch(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, videoMedia(100), nil, Widget{Width: 800}, KindSubpixel)

	require.NoError(t, h.c.PointerDown(PointerEvent{}))
	require.NoError(t, h.c.SwitchStrategy(KindDirect))
	assert.Equal(t, 1, h.lock.exits)

	require.NoError(t, h.c.SwitchStrategy(KindSubpixel))
	require.NoError(t, h.c.SwitchStrategy(KindDirect))
	assert.Equal(t, 1, h.lock.exits)
}

func TestSubpixelScreenPresses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Subpixel.OnScreenNavigation = false
	h := newHarness(t, cfg)
	h.start(t, videoMedia(100), nil, Widget{Width: 800}, KindSubpixel)

	require.NoError(t, h.c.PointerDown(PointerEvent{Target: TargetScreen}))
	assert.Equal(t, 0, h.lock.requests)

	h.c.PointerMove(PointerEvent{DX: 10, Timestamp: 16})
	assert.Equal(t, 0.0, h.c.Cursor().Get())
}

func TestSubpixelRebuildsModelOnResize(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, videoMedia(100), nil, Widget{Width: 800}, KindSubpixel)

	st := h.c.State().StrategyState.(SubpixelState)
	h.c.Resize(Widget{Width: 400})
	require.NoError(t, h.c.PointerDown(PointerEvent{}))
	h.c.PointerMove(PointerEvent{DX: 1, Timestamp: 16})

	resized := h.c.State().StrategyState.(SubpixelState)
	assert.InDelta(t, st.GainOpt/2, resized.GainOpt, 1e-12)
}
