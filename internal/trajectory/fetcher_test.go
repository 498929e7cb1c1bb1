package trajectory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ball.json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[[1, 2]]`))
		case "/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), "")
	ctx := context.Background()

	data, err := f.Fetch(ctx, srv.URL+"/ball.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[[1, 2]]`, string(data))

	_, err = f.Fetch(ctx, srv.URL+"/missing.json")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(ctx, srv.URL+"/broken.json")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFetchFile(t *testing.T) {
	f := NewFetcher(nil, "testdata")
	ctx := context.Background()

	data, err := f.Fetch(ctx, "ball.json")
	require.NoError(t, err)
	points, err := Decode(data, 5)
	require.NoError(t, err)
	assert.Len(t, points, 5)

	_, err = f.Fetch(ctx, "file://missing.json")
	assert.ErrorIs(t, err, ErrNotFound)
}
