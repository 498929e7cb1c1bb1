package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/scrublab/server/internal/catalog"
	"github.com/scrublab/server/internal/service/session"
	"github.com/scrublab/server/pkg/validator"
	"github.com/scrublab/server/pkg/wsrouter"
)

type iSessionService interface {
	CreateSession(context.Context, *session.CreateSessionParams) (session.CreateSessionResponse, error)
	VerifyToken(sessionID, authToken string) error
	Connect(context.Context, *session.ConnectParams) (session.State, error)
	Disconnect(context.Context, string) error
	Send(sessionID string, out *session.Output) error
	Hello(context.Context, *session.HelloParams) (session.State, error)
	SelectMedia(context.Context, *session.SelectMediaParams) (session.State, error)
	SwitchStrategy(context.Context, *session.SwitchStrategyParams) (session.State, error)
	Pointer(context.Context, *session.PointerParams) error
	KeyDown(context.Context, *session.KeyDownParams) (session.KeyDownResponse, error)
	TogglePlay(context.Context, string) error
	TimeUpdate(context.Context, *session.TimeUpdateParams) error
	Resize(context.Context, *session.ResizeParams) (session.State, error)
	SetInterval(context.Context, *session.SetIntervalParams) (float64, error)
	SetZoomDirection(context.Context, *session.SetZoomDirectionParams) error
	GetState(context.Context, string) (session.State, error)
	ListCatalog() []catalog.Entry
}

type controller struct {
	sessionService iSessionService
	upgrader       websocket.Upgrader
	validate       *validator.Validator
	wsmux          *wsrouter.WSRouter
	logger         *slog.Logger
}

func NewController(sessionService iSessionService, logger *slog.Logger) *controller {
	c := &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		sessionService: sessionService,
		validate:       validator.NewValidator(),
		logger:         logger,
	}
	c.wsmux = c.getWSRouter()

	return c
}
