package controller

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/scrublab/server/internal/metrics"
	"github.com/scrublab/server/internal/service/session"
	"github.com/scrublab/server/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()
	mux.Use(c.wsRequestIdWSMw(), c.loggerWSMw())
	mux.OnError(c.handleError)

	wsrouter.Handle(mux, "ALIVE", c.handleAlive)
	wsrouter.Handle(mux, "HELLO", c.handleHello)
	wsrouter.Handle(mux, "GET_STATE", c.handleGetState)

	// media
	wsrouter.Handle(mux, "SELECT_MEDIA", c.handleSelectMedia)
	wsrouter.Handle(mux, "TOGGLE_PLAY", c.handleTogglePlay)
	wsrouter.Handle(mux, "TIME_UPDATE", c.handleTimeUpdate)

	// navigation
	wsrouter.Handle(mux, "SWITCH_STRATEGY", c.handleSwitchStrategy)
	wsrouter.Handle(mux, "POINTER_DOWN", c.pointerHandler(session.PointerDown))
	wsrouter.Handle(mux, "POINTER_MOVE", c.pointerHandler(session.PointerMove))
	wsrouter.Handle(mux, "POINTER_UP", c.pointerHandler(session.PointerUp))
	wsrouter.Handle(mux, "KEY_DOWN", c.handleKeyDown)
	wsrouter.Handle(mux, "RESIZE", c.handleResize)
	wsrouter.Handle(mux, "SET_INTERVAL", c.handleSetInterval)
	wsrouter.Handle(mux, "SET_ZOOM_DIRECTION", c.handleSetZoomDirection)

	return mux
}

func (c controller) handleError(ctx context.Context, _ *websocket.Conn, err error) {
	messageType := wsrouter.GetMessageTypeFromCtx(ctx)
	metrics.MessageErrorsTotal.WithLabelValues(messageType).Inc()
	c.logger.InfoContext(ctx, "websocket message failed", "message_type", messageType, "error", err)

	if err := c.sessionService.Send(c.getSessionIDFromCtx(ctx), &session.Output{
		Type: session.TypeError,
		Payload: session.Error{
			MessageType: messageType,
			Error:       err.Error(),
		},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}
