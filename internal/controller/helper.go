package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

func (c controller) generateTimeBasedId() string {
	return strconv.FormatInt(time.Now().UnixNano(), 36)
}

func (c controller) getQueryParam(r *http.Request, key string) (string, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return "", fmt.Errorf("%s was not provided", key)
	}

	return value, nil
}

func (c controller) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		c.logger.WarnContext(r.Context(), "failed to write response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c controller) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	c.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}
