package controller

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrublab/server/internal/catalog"
	"github.com/scrublab/server/internal/navigation"
	"github.com/scrublab/server/internal/repository/connection/inmemory"
	redisrepo "github.com/scrublab/server/internal/repository/session/redis"
	"github.com/scrublab/server/internal/service/session"
	"github.com/scrublab/server/internal/trajectory"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	cat, err := catalog.New([]catalog.Entry{
		{ID: "lecture", Title: "Lecture", URL: "https://example.com/lecture.mp4", Kind: "media", FrameRate: 25, DurationInFrames: 2500},
	})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rc.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionRepo := redisrepo.NewRepo(rc, time.Hour, time.Hour)
	source := trajectory.NewSource(trajectory.NewFetcher(nil, t.TempDir()), sessionRepo, logger)
	svc := session.NewService(sessionRepo, inmemory.NewRepo(), cat, source, &session.Config{
		Secret:     "secret",
		Navigation: navigation.DefaultConfig(),
	}, logger)

	srv := httptest.NewServer(NewController(svc, logger).GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func createSession(t *testing.T, srv *httptest.Server, mediaID string) session.CreateSessionResponse {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/v1/session?media-id="+mediaID, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created session.CreateSessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	return created
}

func dialSession(t *testing.T, srv *httptest.Server, sessionID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/ws/session/" + sessionID + "?auth-token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}

	return conn, resp, err
}

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// readUntil skips messages until one of msgType arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) message {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg message
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": msgType, "payload": payload}))
}

func TestRestEndpoints(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))

	resp, err = http.Get(srv.URL + "/api/v1/catalog")
	require.NoError(t, err)
	var entries []catalog.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	resp.Body.Close()
	require.Len(t, entries, 1)
	assert.Equal(t, "lecture", entries[0].ID)

	resp, err = http.Post(srv.URL+"/api/v1/session", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/v1/session?media-id=nope", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	created := createSession(t, srv, "lecture")
	assert.NotEmpty(t, created.SessionID)
	assert.NotEmpty(t, created.AuthToken)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "scrub_sessions_created_total")
}

func TestConnectRejectsBadToken(t *testing.T) {
	srv := newServer(t)
	created := createSession(t, srv, "lecture")

	_, resp, err := dialSession(t, srv, created.SessionID, "bad")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	other := createSession(t, srv, "lecture")
	_, resp, err = dialSession(t, srv, created.SessionID, other.AuthToken)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebsocketSession(t *testing.T) {
	srv := newServer(t)
	created := createSession(t, srv, "lecture")

	conn, _, err := dialSession(t, srv, created.SessionID, created.AuthToken)
	require.NoError(t, err)

	var state session.State
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeState).Payload, &state))
	assert.Equal(t, "lecture", state.MediaID)
	assert.Equal(t, navigation.MediaVideo, state.MediaKind)
	assert.InDelta(t, 100.0, state.Duration, 1e-9)

	send(t, conn, "HELLO", map[string]any{"pointer_lock": true, "width": 500, "height": 40})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeState).Payload, &state))
	assert.Equal(t, 500.0, state.Widget.Width)

	send(t, conn, "SWITCH_STRATEGY", map[string]any{"strategy": "direct"})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeState).Payload, &state))
	assert.Equal(t, navigation.KindDirect, state.Strategy)

	send(t, conn, "POINTER_DOWN", map[string]any{"x": 250, "y": 10, "timestamp": 1})
	// the media element is told to seek before the cursor change is announced
	var seek session.Seek
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeSeek).Payload, &seek))
	assert.InDelta(t, 50.0, seek.Time, 1e-9)

	var changed session.CursorChanged
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeCursorChanged).Payload, &changed))
	assert.InDelta(t, 50.0, changed.Position, 1e-9)
	assert.Equal(t, navigation.SourceStrategy, changed.Source)
	send(t, conn, "POINTER_UP", map[string]any{"x": 250, "y": 10, "timestamp": 2})

	send(t, conn, "TIME_UPDATE", map[string]any{"current_time": 51, "duration": 100})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeCursorChanged).Payload, &changed))
	assert.Equal(t, navigation.SourceMedia, changed.Source)

	send(t, conn, "KEY_DOWN", map[string]any{"code": "ArrowRight"})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeState).Payload, &state))
	assert.InDelta(t, 56.0, state.Position, 1e-9)

	send(t, conn, "GET_STATE", nil)
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeState).Payload, &state))
	assert.Equal(t, "00:56,000", state.Display)
}

func TestWebsocketErrorsKeepConnection(t *testing.T) {
	srv := newServer(t)
	created := createSession(t, srv, "lecture")

	conn, _, err := dialSession(t, srv, created.SessionID, created.AuthToken)
	require.NoError(t, err)
	readUntil(t, conn, session.TypeState)

	send(t, conn, "WARP", nil)
	var failure session.Error
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeError).Payload, &failure))
	assert.Equal(t, "WARP", failure.MessageType)

	send(t, conn, "SWITCH_STRATEGY", map[string]any{"strategy": "warp"})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeError).Payload, &failure))
	assert.Equal(t, "SWITCH_STRATEGY", failure.MessageType)
	assert.Contains(t, failure.Error, "invalid input")

	// no widget yet, so direct cannot activate
	send(t, conn, "SWITCH_STRATEGY", map[string]any{"strategy": "direct"})
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeError).Payload, &failure))
	assert.Contains(t, failure.Error, "failed to switch strategy")

	send(t, conn, "ALIVE", nil)
	send(t, conn, "GET_STATE", nil)
	readUntil(t, conn, session.TypeState)
}

func TestReconnectResumesSession(t *testing.T) {
	srv := newServer(t)
	created := createSession(t, srv, "lecture")

	conn, _, err := dialSession(t, srv, created.SessionID, created.AuthToken)
	require.NoError(t, err)
	readUntil(t, conn, session.TypeState)

	send(t, conn, "KEY_DOWN", map[string]any{"code": "Digit2"})
	readUntil(t, conn, session.TypeState)
	send(t, conn, "KEY_DOWN", map[string]any{"code": "ArrowRight"})
	var state session.State
	require.NoError(t, json.Unmarshal(readUntil(t, conn, session.TypeState).Payload, &state))
	assert.InDelta(t, 0.2, state.Position, 1e-9)
	require.NoError(t, conn.Close())

	var again *websocket.Conn
	require.Eventually(t, func() bool {
		again, _, err = dialSession(t, srv, created.SessionID, created.AuthToken)
		if err != nil {
			return false
		}
		var msg message
		if err := again.ReadJSON(&msg); err != nil {
			return false
		}
		for msg.Type != session.TypeState && msg.Type != session.TypeError {
			if err := again.ReadJSON(&msg); err != nil {
				return false
			}
		}
		if msg.Type == session.TypeError {
			// previous connection not released yet
			return false
		}
		return json.Unmarshal(msg.Payload, &state) == nil
	}, 2*time.Second, 20*time.Millisecond)

	assert.InDelta(t, 0.2, state.Position, 1e-9)
	assert.Equal(t, navigation.UnitFrames, state.Keys.Unit)
}
