package trajectory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/golang/geo/r2"
	"golang.org/x/sync/errgroup"
)

var ErrCacheMiss = errors.New("trajectory not cached")

// Cache keeps validated trajectory documents by url.
type Cache interface {
	GetTrajectory(ctx context.Context, url string) ([]byte, error)
	SetTrajectory(ctx context.Context, url string, data []byte) error
}

type iFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Source loads trajectories through the cache, fetching and validating on a
// miss. A nil cache disables caching.
type Source struct {
	fetcher iFetcher
	cache   Cache
	logger  *slog.Logger
}

func NewSource(fetcher iFetcher, cache Cache, logger *slog.Logger) *Source {
	return &Source{fetcher: fetcher, cache: cache, logger: logger}
}

func (s *Source) Load(ctx context.Context, url string, frames int) ([]r2.Point, error) {
	if s.cache != nil {
		data, err := s.cache.GetTrajectory(ctx, url)
		switch {
		case err == nil:
			points, err := Decode(data, frames)
			if err == nil {
				return points, nil
			}
			s.logger.WarnContext(ctx, "discarding cached trajectory", "url", url, "error", err)
		case !errors.Is(err, ErrCacheMiss):
			s.logger.WarnContext(ctx, "failed to read trajectory cache", "url", url, "error", err)
		}
	}

	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	points, err := Decode(data, frames)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}

	if s.cache != nil {
		if err := s.cache.SetTrajectory(ctx, url, data); err != nil {
			s.logger.WarnContext(ctx, "failed to cache trajectory", "url", url, "error", err)
		}
	}

	return points, nil
}

type Request struct {
	ID     string
	URL    string
	Frames int
}

// Preload loads every request with at most limit fetches in flight. It
// never fails as a whole: per request errors are returned by id.
func (s *Source) Preload(ctx context.Context, reqs []Request, limit int) map[string]error {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed = make(map[string]error)
	)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, req := range reqs {
		req := req
		g.Go(func() error {
			if _, err := s.Load(ctx, req.URL, req.Frames); err != nil {
				s.logger.WarnContext(ctx, "failed to preload trajectory", "media_id", req.ID, "error", err)
				mu.Lock()
				failed[req.ID] = err
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return failed
}
