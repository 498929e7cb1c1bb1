package inmemory

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/scrublab/server/internal/repository/connection"
)

// entry pairs a connection with the lock serializing its writers.
type entry struct {
	sessionID string
	conn      *websocket.Conn
	writeMu   sync.Mutex
}

type repo struct {
	connList map[*websocket.Conn]*entry
	idList   map[string]*entry
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]*entry),
		idList:   make(map[string]*entry),
	}
}

func (r *repo) Add(conn *websocket.Conn, sessionID string) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "sessionID", sessionID)
	if r.connList[conn] != nil || r.idList[sessionID] != nil {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	e := &entry{sessionID: sessionID, conn: conn}
	r.connList[conn] = e
	r.idList[sessionID] = e

	slog.Debug(funcName, "result", "OK")
	return nil
}

// RemoveByConn forgets conn. Closing it is left to the caller.
func (r *repo) RemoveByConn(conn *websocket.Conn) error {
	funcName := "connection.inmemory.RemoveByConn"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName)
	e, ok := r.connList[conn]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.connList, conn)
	delete(r.idList, e.sessionID)

	slog.Debug(funcName, "result", e.sessionID)
	return nil
}

func (r *repo) RemoveBySessionID(sessionID string) error {
	funcName := "connection.inmemory.RemoveBySessionID"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "sessionID", sessionID)
	e, ok := r.idList[sessionID]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}

	delete(r.connList, e.conn)
	delete(r.idList, sessionID)

	slog.Debug(funcName, "result", "OK")
	return nil
}

func (r *repo) GetSessionID(conn *websocket.Conn) (string, error) {
	funcName := "connection.inmemory.GetSessionID"
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.connList[conn]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return "", connection.ErrNotFound
	}

	return e.sessionID, nil
}

func (r *repo) GetConn(sessionID string) (*websocket.Conn, error) {
	funcName := "connection.inmemory.GetConn"
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.idList[sessionID]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return nil, connection.ErrNotFound
	}

	return e.conn, nil
}

// WriteJSON sends v to the session's connection. Concurrent writers are
// serialized per connection.
func (r *repo) WriteJSON(sessionID string, v any) error {
	r.mu.RLock()
	e, ok := r.idList[sessionID]
	r.mu.RUnlock()
	if !ok {
		return connection.ErrNotFound
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	return e.conn.WriteJSON(v)
}
