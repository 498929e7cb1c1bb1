package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/gorilla/websocket"

	"github.com/scrublab/server/internal/catalog"
	"github.com/scrublab/server/internal/navigation"
	"github.com/scrublab/server/internal/repository/session"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidToken    = errors.New("invalid auth token")
	ErrMediaNotFound   = errors.New("media not found")
	ErrNotConnected    = errors.New("session is not connected")
)

type iSessionRepo interface {
	SetSession(context.Context, *session.SetSessionParams) error
	GetSession(context.Context, string) (session.Session, error)
	UpdateSession(context.Context, *session.UpdateSessionParams) error
	RemoveSession(context.Context, string) error
}

type iConnRepo interface {
	Add(*websocket.Conn, string) error
	RemoveBySessionID(string) error
	WriteJSON(sessionID string, v any) error
}

type iCatalog interface {
	Get(id string) (catalog.Entry, error)
	List() []catalog.Entry
}

type iTrajectorySource interface {
	Load(ctx context.Context, url string, frames int) ([]r2.Point, error)
}

type Config struct {
	Secret     string
	Navigation navigation.Config
}

type service struct {
	sessionRepo  iSessionRepo
	connRepo     iConnRepo
	catalog      iCatalog
	trajectories iTrajectorySource
	secret       []byte
	navConfig    navigation.Config
	logger       *slog.Logger

	mu   sync.Mutex
	live map[string]*liveSession
}

func NewService(sessionRepo iSessionRepo, connRepo iConnRepo, cat iCatalog, trajectories iTrajectorySource, cfg *Config, logger *slog.Logger) *service {
	return &service{
		sessionRepo:  sessionRepo,
		connRepo:     connRepo,
		catalog:      cat,
		trajectories: trajectories,
		secret:       []byte(cfg.Secret),
		navConfig:    cfg.Navigation,
		logger:       logger,
		live:         make(map[string]*liveSession),
	}
}
