package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/scrublab/server/internal/navigation"
	"github.com/scrublab/server/internal/service/session"
	"github.com/scrublab/server/pkg/wsrouter"
)

var ErrInvalidInput = errors.New("invalid input")

type EmptyInput struct{}

func (c controller) validateInput(input any) error {
	if err := c.validate.Err(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func (c controller) sendState(ctx context.Context, state session.State) error {
	return c.sessionService.Send(c.getSessionIDFromCtx(ctx), &session.Output{
		Type:    session.TypeState,
		Payload: state,
	})
}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ EmptyInput) error {
	return nil
}

type HelloInput struct {
	PointerLock bool    `json:"pointer_lock"`
	Width       float64 `json:"width" validate:"gte=0"`
	Height      float64 `json:"height" validate:"gte=0"`
}

func (c controller) handleHello(ctx context.Context, _ *websocket.Conn, input HelloInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	state, err := c.sessionService.Hello(ctx, &session.HelloParams{
		SessionID:   c.getSessionIDFromCtx(ctx),
		PointerLock: input.PointerLock,
		Widget:      navigation.Widget{Width: input.Width, Height: input.Height},
	})
	if err != nil {
		return fmt.Errorf("failed to hello: %w", err)
	}

	return c.sendState(ctx, state)
}

func (c controller) handleGetState(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	state, err := c.sessionService.GetState(ctx, c.getSessionIDFromCtx(ctx))
	if err != nil {
		return fmt.Errorf("failed to get state: %w", err)
	}

	return c.sendState(ctx, state)
}

type SelectMediaInput struct {
	MediaID string `json:"media_id" validate:"required"`
}

func (c controller) handleSelectMedia(ctx context.Context, _ *websocket.Conn, input SelectMediaInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	state, err := c.sessionService.SelectMedia(ctx, &session.SelectMediaParams{
		SessionID: c.getSessionIDFromCtx(ctx),
		MediaID:   input.MediaID,
	})
	if err != nil {
		return fmt.Errorf("failed to select media: %w", err)
	}

	return c.sendState(ctx, state)
}

func (c controller) handleTogglePlay(ctx context.Context, _ *websocket.Conn, _ EmptyInput) error {
	if err := c.sessionService.TogglePlay(ctx, c.getSessionIDFromCtx(ctx)); err != nil {
		return fmt.Errorf("failed to toggle play: %w", err)
	}

	return nil
}

type TimeUpdateInput struct {
	CurrentTime float64 `json:"current_time" validate:"gte=0"`
	Duration    float64 `json:"duration" validate:"gte=0"`
	Ended       bool    `json:"ended"`
}

func (c controller) handleTimeUpdate(ctx context.Context, _ *websocket.Conn, input TimeUpdateInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	return c.sessionService.TimeUpdate(ctx, &session.TimeUpdateParams{
		SessionID:   c.getSessionIDFromCtx(ctx),
		CurrentTime: input.CurrentTime,
		Duration:    input.Duration,
		Ended:       input.Ended,
	})
}

type SwitchStrategyInput struct {
	Strategy string `json:"strategy" validate:"required,oneof=none direct context rudder subpixel zoom dimp"`
}

func (c controller) handleSwitchStrategy(ctx context.Context, _ *websocket.Conn, input SwitchStrategyInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	state, err := c.sessionService.SwitchStrategy(ctx, &session.SwitchStrategyParams{
		SessionID: c.getSessionIDFromCtx(ctx),
		Strategy:  navigation.Kind(input.Strategy),
	})
	if err != nil {
		return fmt.Errorf("failed to switch strategy: %w", err)
	}

	return c.sendState(ctx, state)
}

type PointerInput struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	DX        float64 `json:"dx"`
	DY        float64 `json:"dy"`
	Timestamp float64 `json:"timestamp" validate:"gte=0"`
	Target    string  `json:"target" validate:"omitempty,oneof=main sub screen"`
}

func (c controller) pointerHandler(phase session.PointerPhase) wsrouter.HandlerFunc[PointerInput] {
	return func(ctx context.Context, _ *websocket.Conn, input PointerInput) error {
		if err := c.validateInput(input); err != nil {
			return err
		}

		target := navigation.Target(input.Target)
		if target == "" {
			target = navigation.TargetMain
		}

		if err := c.sessionService.Pointer(ctx, &session.PointerParams{
			SessionID: c.getSessionIDFromCtx(ctx),
			Phase:     phase,
			Event: navigation.PointerEvent{
				X:         input.X,
				Y:         input.Y,
				DX:        input.DX,
				DY:        input.DY,
				Timestamp: input.Timestamp,
				Target:    target,
			},
		}); err != nil {
			return fmt.Errorf("failed to handle pointer %s: %w", phase, err)
		}

		return nil
	}
}

type KeyDownInput struct {
	Code string `json:"code" validate:"required"`
}

func (c controller) handleKeyDown(ctx context.Context, _ *websocket.Conn, input KeyDownInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	resp, err := c.sessionService.KeyDown(ctx, &session.KeyDownParams{
		SessionID: c.getSessionIDFromCtx(ctx),
		Code:      input.Code,
	})
	if err != nil {
		return fmt.Errorf("failed to handle key: %w", err)
	}
	if !resp.Handled {
		return nil
	}

	return c.sendState(ctx, resp.State)
}

type ResizeInput struct {
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

func (c controller) handleResize(ctx context.Context, _ *websocket.Conn, input ResizeInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	state, err := c.sessionService.Resize(ctx, &session.ResizeParams{
		SessionID: c.getSessionIDFromCtx(ctx),
		Widget:    navigation.Widget{Width: input.Width, Height: input.Height},
	})
	if err != nil {
		return fmt.Errorf("failed to resize: %w", err)
	}

	return c.sendState(ctx, state)
}

type SetIntervalInput struct {
	Interval float64 `json:"interval" validate:"gt=0"`
}

func (c controller) handleSetInterval(ctx context.Context, _ *websocket.Conn, input SetIntervalInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	sessionID := c.getSessionIDFromCtx(ctx)
	if _, err := c.sessionService.SetInterval(ctx, &session.SetIntervalParams{
		SessionID: sessionID,
		Interval:  input.Interval,
	}); err != nil {
		return fmt.Errorf("failed to set interval: %w", err)
	}

	return c.handleGetState(ctx, nil, EmptyInput{})
}

type SetZoomDirectionInput struct {
	Direction string `json:"direction" validate:"required,oneof=upward downward"`
}

func (c controller) handleSetZoomDirection(ctx context.Context, _ *websocket.Conn, input SetZoomDirectionInput) error {
	if err := c.validateInput(input); err != nil {
		return err
	}

	if err := c.sessionService.SetZoomDirection(ctx, &session.SetZoomDirectionParams{
		SessionID: c.getSessionIDFromCtx(ctx),
		Direction: navigation.Direction(input.Direction),
	}); err != nil {
		return fmt.Errorf("failed to set zoom direction: %w", err)
	}

	return c.handleGetState(ctx, nil, EmptyInput{})
}
