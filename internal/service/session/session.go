package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang/geo/r2"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/scrublab/server/internal/catalog"
	"github.com/scrublab/server/internal/metrics"
	"github.com/scrublab/server/internal/navigation"
	"github.com/scrublab/server/internal/repository/session"
)

// liveSession is a connected session with its navigation controller.
type liveSession struct {
	id         string
	controller *navigation.Controller
	clock      *remoteClock
	entry      *catalog.Entry
	send       sender
	logger     *slog.Logger

	// strategy to activate once the client reported its widget size
	pending navigation.Kind
}

type CreateSessionParams struct {
	MediaID string
}

type CreateSessionResponse struct {
	SessionID string        `json:"session_id"`
	AuthToken string        `json:"auth_token"`
	Media     catalog.Entry `json:"media"`
}

func (s *service) CreateSession(ctx context.Context, params *CreateSessionParams) (CreateSessionResponse, error) {
	entry, err := s.catalog.Get(params.MediaID)
	if err != nil {
		return CreateSessionResponse{}, fmt.Errorf("%w: %s", ErrMediaNotFound, params.MediaID)
	}

	sessionID := uuid.NewString()
	if err := s.sessionRepo.SetSession(ctx, &session.SetSessionParams{
		SessionID: sessionID,
		MediaID:   entry.ID,
		CreatedAt: time.Now().Unix(),
	}); err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to set session: %w", err)
	}

	authToken, err := s.generateJWT(sessionID)
	if err != nil {
		return CreateSessionResponse{}, fmt.Errorf("failed to generate jwt: %w", err)
	}

	metrics.SessionsCreatedTotal.Inc()
	s.logger.InfoContext(ctx, "session created", "session_id", sessionID, "media_id", entry.ID)

	return CreateSessionResponse{
		SessionID: sessionID,
		AuthToken: authToken,
		Media:     entry,
	}, nil
}

type ConnectParams struct {
	SessionID string
	AuthToken string
	Conn      *websocket.Conn
}

// VerifyToken checks that authToken was issued for sessionID.
func (s *service) VerifyToken(sessionID, authToken string) error {
	claims, err := s.parseJWT(authToken)
	if err != nil {
		return err
	}
	if claims.SessionID != sessionID {
		return ErrInvalidToken
	}
	return nil
}

// Connect attaches a websocket to a stored session, builds its navigation
// controller and restores the saved snapshot.
func (s *service) Connect(ctx context.Context, params *ConnectParams) (State, error) {
	if err := s.VerifyToken(params.SessionID, params.AuthToken); err != nil {
		return State{}, err
	}

	snapshot, err := s.sessionRepo.GetSession(ctx, params.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return State{}, ErrSessionNotFound
		}
		return State{}, fmt.Errorf("failed to get session: %w", err)
	}

	entry, err := s.catalog.Get(snapshot.MediaID)
	if err != nil {
		return State{}, fmt.Errorf("%w: %s", ErrMediaNotFound, snapshot.MediaID)
	}

	s.mu.Lock()
	if _, ok := s.live[params.SessionID]; ok {
		s.mu.Unlock()
		return State{}, fmt.Errorf("session %s is already connected", params.SessionID)
	}
	if err := s.connRepo.Add(params.Conn, params.SessionID); err != nil {
		s.mu.Unlock()
		return State{}, fmt.Errorf("failed to add conn: %w", err)
	}
	l := s.newLiveSession(params.SessionID)
	s.live[params.SessionID] = l
	s.mu.Unlock()

	metrics.ActiveSessions.Inc()

	if err := s.loadMedia(ctx, l, entry); err != nil {
		l.logger.ErrorContext(ctx, "failed to load session media", "error", err)
	}
	l.controller.Restore(snapshot.Position, navigation.KeyBindings{
		Delta: snapshot.StepDelta,
		Unit:  navigation.Unit(snapshot.StepUnit),
	})
	if kind := navigation.Kind(snapshot.Strategy); kind != "" && kind != navigation.KindNone {
		l.pending = kind
	}

	l.logger.InfoContext(ctx, "session connected", "media_id", entry.ID, "position", snapshot.Position)

	return l.state(), nil
}

func (s *service) newLiveSession(sessionID string) *liveSession {
	logger := s.logger.With("session_id", sessionID)
	send := func(out *Output) {
		if err := s.connRepo.WriteJSON(sessionID, out); err != nil {
			logger.Debug("failed to push message", "type", out.Type, "error", err)
		}
	}

	clock := &remoteClock{send: send}
	l := &liveSession{
		id:     sessionID,
		clock:  clock,
		send:   send,
		logger: logger,
	}
	l.controller = navigation.NewController(s.navConfig, navigation.Deps{
		Clock:       clock,
		PointerLock: &remotePointerLock{send: send},
		Listener:    listener{send: send, logger: logger},
		Logger:      logger,
	})

	return l
}

// Disconnect saves the snapshot and releases the session's controller. The
// stored session stays until it expires.
func (s *service) Disconnect(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	l, ok := s.live[sessionID]
	delete(s.live, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrNotConnected
	}

	l.controller.Close()
	metrics.ActiveSessions.Dec()

	if err := s.connRepo.RemoveBySessionID(sessionID); err != nil {
		l.logger.WarnContext(ctx, "failed to remove conn", "error", err)
	}

	if err := s.persist(ctx, l); err != nil {
		return err
	}

	l.logger.InfoContext(ctx, "session disconnected")

	return nil
}

// Send writes a message to the session's client.
func (s *service) Send(sessionID string, out *Output) error {
	return s.connRepo.WriteJSON(sessionID, out)
}

func (s *service) GetState(_ context.Context, sessionID string) (State, error) {
	l, err := s.getLive(sessionID)
	if err != nil {
		return State{}, err
	}
	return l.state(), nil
}

func (s *service) ListCatalog() []catalog.Entry {
	return s.catalog.List()
}

func (s *service) getLive(sessionID string) (*liveSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.live[sessionID]
	if !ok {
		return nil, ErrNotConnected
	}
	return l, nil
}

func (l *liveSession) state() State {
	return State{
		State: l.controller.State(),
		Media: l.entry,
	}
}

func (s *service) persist(ctx context.Context, l *liveSession) error {
	st := l.controller.State()
	if st.MediaID == "" {
		return nil
	}

	strategy := st.Strategy
	if strategy == navigation.KindNone && l.pending != "" {
		strategy = l.pending
	}

	if err := s.sessionRepo.UpdateSession(ctx, &session.UpdateSessionParams{
		SessionID: l.id,
		MediaID:   st.MediaID,
		Position:  st.Position,
		Strategy:  string(strategy),
		StepDelta: st.Keys.Delta,
		StepUnit:  string(st.Keys.Unit),
		UpdatedAt: time.Now().Unix(),
	}); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// loadMedia loads entry into the controller. A failed trajectory load does
// not fail the call: the controller reports it and disables DIMP.
func (s *service) loadMedia(ctx context.Context, l *liveSession, entry catalog.Entry) error {
	var (
		points  []r2.Point
		loadErr error
	)
	if entry.IsTrajectory() {
		points, loadErr = s.trajectories.Load(ctx, entry.URL, entry.DurationInFrames)
		if loadErr != nil {
			metrics.TrajectoryLoadsTotal.WithLabelValues("error").Inc()
		} else {
			metrics.TrajectoryLoadsTotal.WithLabelValues("ok").Inc()
		}
	}

	if err := l.controller.LoadMedia(entry.Media(), points, loadErr); err != nil {
		return fmt.Errorf("failed to load media: %w", err)
	}
	l.entry = &entry

	return nil
}
