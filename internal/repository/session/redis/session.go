package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/scrublab/server/internal/repository/session"
)

func (r repo) getSessionKey(sessionID string) string {
	return "session:" + sessionID
}

func (r repo) SetSession(ctx context.Context, params *session.SetSessionParams) error {
	funcName := "session.redis.SetSession"
	slog.DebugContext(ctx, funcName, "params", params)

	s := session.Session{
		MediaID:   params.MediaID,
		UpdatedAt: params.CreatedAt,
	}

	pipe := r.rc.TxPipeline()
	sessionKey := r.getSessionKey(params.SessionID)
	pipe.HSet(ctx, sessionKey, s)
	pipe.Expire(ctx, sessionKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}

	return nil
}

func (r repo) GetSession(ctx context.Context, sessionID string) (session.Session, error) {
	funcName := "session.redis.GetSession"
	slog.DebugContext(ctx, funcName, "sessionID", sessionID)

	sessionKey := r.getSessionKey(sessionID)
	cmd := r.rc.HGetAll(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return session.Session{}, fmt.Errorf("failed to get session: %w", err)
	}

	if len(cmd.Val()) == 0 {
		slog.DebugContext(ctx, funcName, "error", session.ErrSessionNotFound)
		return session.Session{}, session.ErrSessionNotFound
	}

	var s session.Session
	if err := cmd.Scan(&s); err != nil {
		return session.Session{}, fmt.Errorf("failed to scan session: %w", err)
	}

	r.rc.Expire(ctx, sessionKey, r.expireDuration)

	return s, nil
}

func (r repo) UpdateSession(ctx context.Context, params *session.UpdateSessionParams) error {
	sessionKey := r.getSessionKey(params.SessionID)
	cmd := r.rc.Exists(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		return err
	}

	if cmd.Val() == 0 {
		return session.ErrSessionNotFound
	}

	s := session.Session{
		MediaID:   params.MediaID,
		Position:  params.Position,
		Strategy:  params.Strategy,
		StepDelta: params.StepDelta,
		StepUnit:  params.StepUnit,
		UpdatedAt: params.UpdatedAt,
	}
	if err := r.rc.HSet(ctx, sessionKey, s).Err(); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	r.rc.Expire(ctx, sessionKey, r.expireDuration)

	return nil
}

func (r repo) RemoveSession(ctx context.Context, sessionID string) error {
	res, err := r.rc.Del(ctx, r.getSessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}

	if res == 0 {
		return session.ErrSessionNotFound
	}

	return nil
}
