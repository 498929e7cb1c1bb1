package controller

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scrublab/server/internal/service/session"
	"github.com/scrublab/server/pkg/ctxlogger"
)

func (c controller) listCatalog(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, r, http.StatusOK, c.sessionService.ListCatalog())
}

func (c controller) createSession(w http.ResponseWriter, r *http.Request) {
	mediaID, err := c.getQueryParam(r, "media-id")
	if err != nil {
		c.logger.DebugContext(r.Context(), "failed to get query param", "error", err)
		c.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	createSessionResponse, err := c.sessionService.CreateSession(r.Context(), &session.CreateSessionParams{
		MediaID: mediaID,
	})
	if err != nil {
		if errors.Is(err, session.ErrMediaNotFound) {
			c.writeError(w, r, http.StatusNotFound, err)
			return
		}
		c.logger.ErrorContext(r.Context(), "failed to create session", "error", err)
		c.writeError(w, r, http.StatusInternalServerError, errors.New("failed to create session"))
		return
	}

	c.writeJSON(w, r, http.StatusCreated, createSessionResponse)
}

func (c controller) connectSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session-id")
	if sessionID == "" {
		c.writeError(w, r, http.StatusBadRequest, errors.New("session id was not provided"))
		return
	}

	authToken, err := c.getQueryParam(r, "auth-token")
	if err != nil {
		c.writeError(w, r, http.StatusUnauthorized, err)
		return
	}

	if err := c.sessionService.VerifyToken(sessionID, authToken); err != nil {
		c.logger.DebugContext(r.Context(), "failed to verify token", "error", err)
		c.writeError(w, r, http.StatusUnauthorized, err)
		return
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	// the session outlives the request context during shutdown
	ctx := context.WithoutCancel(r.Context())
	ctx = ctxlogger.AppendCtx(ctx, slog.String("session_id", sessionID))

	state, err := c.sessionService.Connect(ctx, &session.ConnectParams{
		SessionID: sessionID,
		AuthToken: authToken,
		Conn:      conn,
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to connect session", "error", err)
		if err := conn.WriteJSON(&session.Output{
			Type:    session.TypeError,
			Payload: session.Error{Error: err.Error()},
		}); err != nil {
			c.logger.DebugContext(ctx, "failed to write json", "error", err)
		}
		return
	}
	defer func() {
		if err := c.sessionService.Disconnect(ctx, sessionID); err != nil {
			c.logger.WarnContext(ctx, "failed to disconnect session", "error", err)
		}
	}()

	if err := c.sessionService.Send(sessionID, &session.Output{
		Type:    session.TypeState,
		Payload: state,
	}); err != nil {
		c.logger.WarnContext(ctx, "failed to write json", "error", err)
		return
	}

	ctx = context.WithValue(ctx, sessionIDCtxKey, sessionID)
	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.InfoContext(ctx, "connection closed", "error", err)
	}
}
