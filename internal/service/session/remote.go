package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/scrublab/server/internal/metrics"
	"github.com/scrublab/server/internal/navigation"
)

var errPointerLockUnsupported = errors.New("client does not support pointer lock")

type sender func(out *Output)

// remoteClock forwards media commands to the client's media element and
// remembers what the client last reported about it.
type remoteClock struct {
	send sender

	mu          sync.Mutex
	duration    float64
	currentTime float64
}

func (c *remoteClock) Play() error {
	c.send(&Output{Type: TypePlay})
	return nil
}

func (c *remoteClock) Pause() error {
	c.send(&Output{Type: TypePause})
	return nil
}

func (c *remoteClock) Seek(seconds float64) error {
	c.send(&Output{Type: TypeSeek, Payload: Seek{Time: seconds}})
	return nil
}

func (c *remoteClock) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *remoteClock) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentTime
}

func (c *remoteClock) report(currentTime, duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentTime = currentTime
	if duration > 0 {
		c.duration = duration
	}
}

type remotePointerLock struct {
	send      sender
	supported bool
}

func (l *remotePointerLock) Request() error {
	if !l.supported {
		return errPointerLockUnsupported
	}
	l.send(&Output{Type: TypePointerLock})
	return nil
}

func (l *remotePointerLock) Exit() {
	l.send(&Output{Type: TypePointerUnlock})
}

// listener pushes controller notifications to the client.
type listener struct {
	send   sender
	logger *slog.Logger
}

func (l listener) CursorChanged(ch navigation.Change, display string) {
	metrics.CursorChangesTotal.WithLabelValues(string(ch.Source)).Inc()
	l.send(&Output{Type: TypeCursorChanged, Payload: CursorChanged{
		Position: ch.Position,
		Frame:    ch.Frame,
		Display:  display,
		Source:   ch.Source,
	}})
}

func (l listener) PlayStateChanged(playing bool) {
	l.send(&Output{Type: TypePlayState, Payload: PlayState{Playing: playing}})
}

func (l listener) PlaybackEnded() {
	l.send(&Output{Type: TypePlaybackEnded})
}

func (l listener) StrategyUnavailable(kind navigation.Kind, err error) {
	l.logger.Warn("strategy unavailable", "strategy", kind, "error", err)
	l.send(&Output{Type: TypeStrategyUnavailable, Payload: StrategyUnavailable{
		Strategy: kind,
		Error:    err.Error(),
	}})
}

func (l listener) LoadError(mediaID string, err error) {
	l.logger.Warn("media load error", "media_id", mediaID, "error", err)
	l.send(&Output{Type: TypeLoadError, Payload: LoadError{
		MediaID: mediaID,
		Error:   err.Error(),
	}})
}
