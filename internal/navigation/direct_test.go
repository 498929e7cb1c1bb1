package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectStrategy(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, videoMedia(100), nil, Widget{Width: 200, Height: 20}, KindDirect)

	require.NoError(t, h.c.PointerDown(PointerEvent{X: 50, Target: TargetMain}))
	assert.Equal(t, 25.0, h.c.Cursor().Get())

	h.c.PointerMove(PointerEvent{X: 100, Target: TargetMain})
	assert.Equal(t, 50.0, h.c.Cursor().Get())

	h.c.PointerMove(PointerEvent{X: 900, Target: TargetMain})
	assert.Equal(t, 100.0, h.c.Cursor().Get())

	h.c.PointerUp(PointerEvent{})
	h.c.PointerMove(PointerEvent{X: 20, Target: TargetMain})
	assert.Equal(t, 100.0, h.c.Cursor().Get())

	st, ok := h.c.State().StrategyState.(DirectState)
	require.True(t, ok)
	assert.Equal(t, 200.0, st.Pixel)
	assert.False(t, st.Pressed)
}

func TestDirectStrategySeeksMediaClock(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, videoMedia(100), nil, Widget{Width: 200}, KindDirect)

	before := h.clock.seekCount()
	require.NoError(t, h.c.PointerDown(PointerEvent{X: 50}))
	assert.Equal(t, before+1, h.clock.seekCount())

	// positions coming from the clock are not echoed back
	h.c.OnTimeUpdate(40, 0)
	assert.Equal(t, before+1, h.clock.seekCount())
	assert.Equal(t, 40.0, h.c.Cursor().Get())
}
