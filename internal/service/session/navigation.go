package session

import (
	"context"
	"fmt"
	"time"

	"github.com/scrublab/server/internal/metrics"
	"github.com/scrublab/server/internal/navigation"
)

type HelloParams struct {
	SessionID   string
	PointerLock bool
	Widget      navigation.Widget
}

// Hello records what the client supports and how large its widget is, then
// activates the strategy saved with the session.
func (s *service) Hello(ctx context.Context, params *HelloParams) (State, error) {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return State{}, err
	}

	l.controller.SetPointerLock(&remotePointerLock{send: l.send, supported: params.PointerLock})
	l.controller.Resize(params.Widget)

	if l.pending != "" {
		kind := l.pending
		l.pending = ""
		if err := s.switchStrategy(l, kind); err != nil {
			l.logger.WarnContext(ctx, "failed to restore strategy", "strategy", kind, "error", err)
		}
	}

	return l.state(), nil
}

type SelectMediaParams struct {
	SessionID string
	MediaID   string
}

func (s *service) SelectMedia(ctx context.Context, params *SelectMediaParams) (State, error) {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return State{}, err
	}

	entry, err := s.catalog.Get(params.MediaID)
	if err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrMediaNotFound, params.MediaID)
	}

	if err := s.loadMedia(ctx, l, entry); err != nil {
		return State{}, err
	}
	s.persistQuietly(ctx, l)

	return l.state(), nil
}

type SwitchStrategyParams struct {
	SessionID string
	Strategy  navigation.Kind
}

func (s *service) SwitchStrategy(ctx context.Context, params *SwitchStrategyParams) (State, error) {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return State{}, err
	}

	l.pending = ""
	if err := s.switchStrategy(l, params.Strategy); err != nil {
		return State{}, err
	}
	s.persistQuietly(ctx, l)

	return l.state(), nil
}

func (s *service) switchStrategy(l *liveSession, kind navigation.Kind) error {
	if err := l.controller.SwitchStrategy(kind); err != nil {
		metrics.StrategySwitchesTotal.WithLabelValues(string(kind), "error").Inc()
		return err
	}
	metrics.StrategySwitchesTotal.WithLabelValues(string(kind), "ok").Inc()
	return nil
}

type PointerPhase string

const (
	PointerDown PointerPhase = "down"
	PointerMove PointerPhase = "move"
	PointerUp   PointerPhase = "up"
)

type PointerParams struct {
	SessionID string
	Phase     PointerPhase
	Event     navigation.PointerEvent
}

func (s *service) Pointer(ctx context.Context, params *PointerParams) error {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return err
	}

	switch params.Phase {
	case PointerDown:
		return l.controller.PointerDown(params.Event)
	case PointerMove:
		l.controller.PointerMove(params.Event)
	case PointerUp:
		l.controller.PointerUp(params.Event)
		s.persistQuietly(ctx, l)
	default:
		return fmt.Errorf("unknown pointer phase %q", params.Phase)
	}

	return nil
}

type KeyDownParams struct {
	SessionID string
	Code      string
}

type KeyDownResponse struct {
	Handled bool
	State   State
}

func (s *service) KeyDown(ctx context.Context, params *KeyDownParams) (KeyDownResponse, error) {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return KeyDownResponse{}, err
	}

	action, err := l.controller.KeyDown(params.Code)
	if err != nil {
		return KeyDownResponse{}, err
	}
	if action == navigation.KeyIgnored {
		return KeyDownResponse{}, nil
	}
	s.persistQuietly(ctx, l)

	return KeyDownResponse{Handled: true, State: l.state()}, nil
}

func (s *service) TogglePlay(ctx context.Context, sessionID string) error {
	l, err := s.getLive(sessionID)
	if err != nil {
		return err
	}

	if err := l.controller.TogglePlay(); err != nil {
		return err
	}
	s.persistQuietly(ctx, l)

	return nil
}

type TimeUpdateParams struct {
	SessionID   string
	CurrentTime float64
	Duration    float64
	Ended       bool
}

// TimeUpdate mirrors the client's media element into the session.
func (s *service) TimeUpdate(_ context.Context, params *TimeUpdateParams) error {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return err
	}

	l.clock.report(params.CurrentTime, params.Duration)
	l.controller.OnTimeUpdate(params.CurrentTime, params.Duration)
	if params.Ended {
		l.controller.OnMediaEnded()
	}

	return nil
}

type ResizeParams struct {
	SessionID string
	Widget    navigation.Widget
}

func (s *service) Resize(_ context.Context, params *ResizeParams) (State, error) {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return State{}, err
	}

	l.controller.Resize(params.Widget)

	return l.state(), nil
}

type SetIntervalParams struct {
	SessionID string
	Interval  float64
}

// SetInterval returns the window half width actually applied.
func (s *service) SetInterval(_ context.Context, params *SetIntervalParams) (float64, error) {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return 0, err
	}

	return l.controller.SetInterval(params.Interval)
}

type SetZoomDirectionParams struct {
	SessionID string
	Direction navigation.Direction
}

func (s *service) SetZoomDirection(_ context.Context, params *SetZoomDirectionParams) error {
	l, err := s.getLive(params.SessionID)
	if err != nil {
		return err
	}

	return l.controller.SetZoomDirection(params.Direction)
}

func (s *service) persistQuietly(ctx context.Context, l *liveSession) {
	start := time.Now()
	if err := s.persist(ctx, l); err != nil {
		l.logger.WarnContext(ctx, "failed to persist session", "error", err)
		return
	}
	l.logger.DebugContext(ctx, "session persisted", "took", time.Since(start))
}
