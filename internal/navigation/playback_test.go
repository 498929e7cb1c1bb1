package navigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrajectoryPlaybackEnds(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, trajectoryMedia(3, 10), linePoints(3, 10), Widget{Width: 300}, KindDirect)

	require.NoError(t, h.c.TogglePlay())
	assert.True(t, h.c.State().Playing)

	ticker := h.tickers.last(t)
	assert.Equal(t, 100*time.Millisecond, ticker.period)
	for i := 0; i < 4; i++ {
		require.True(t, ticker.fire())
	}

	require.Eventually(t, func() bool { return h.events.endedCount() == 1 }, time.Second, time.Millisecond)
	assert.InDeltaSlice(t, []float64{0.1, 0.2, 0.3}, h.events.positions(SourcePlayback), 1e-12)
	assert.False(t, h.c.State().Playing)
	assert.Equal(t, 3, h.c.Cursor().FrameIndex())
}

func TestTrajectoryPlaybackFollowsSeeks(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, trajectoryMedia(10, 10), linePoints(10, 10), Widget{Width: 100}, KindDirect)

	require.NoError(t, h.c.TogglePlay())
	ticker := h.tickers.last(t)

	require.NoError(t, h.c.PointerDown(PointerEvent{X: 50}))
	h.c.PointerUp(PointerEvent{})
	require.True(t, ticker.fire())

	require.Eventually(t, func() bool {
		return len(h.events.positions(SourcePlayback)) == 1
	}, time.Second, time.Millisecond)
	assert.InDelta(t, 0.6, h.events.positions(SourcePlayback)[0], 1e-12)

	require.NoError(t, h.c.TogglePlay())
	assert.False(t, h.c.State().Playing)
}

func TestVideoPlaybackUsesClock(t *testing.T) {
	h := newHarness(t, DefaultConfig())
	h.start(t, videoMedia(100), nil, Widget{Width: 100}, KindDirect)

	action, err := h.c.KeyDown("Space")
	require.NoError(t, err)
	assert.Equal(t, KeyTogglePlay, action)
	assert.Equal(t, 1, h.clock.plays)

	h.c.OnMediaEnded()
	assert.Equal(t, 1, h.events.endedCount())
	assert.Equal(t, []bool{true, false}, h.events.playing)

	require.NoError(t, h.c.TogglePlay())
	require.NoError(t, h.c.TogglePlay())
	assert.Equal(t, 1, h.clock.pauses)
}
