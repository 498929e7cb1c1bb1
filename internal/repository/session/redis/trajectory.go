package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/scrublab/server/internal/trajectory"
)

func (r repo) getTrajectoryKey(url string) string {
	return "trajectory:" + url
}

func (r repo) GetTrajectory(ctx context.Context, url string) ([]byte, error) {
	data, err := r.rc.Get(ctx, r.getTrajectoryKey(url)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, trajectory.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get trajectory: %w", err)
	}

	return data, nil
}

func (r repo) SetTrajectory(ctx context.Context, url string, data []byte) error {
	if err := r.rc.Set(ctx, r.getTrajectoryKey(url), data, r.trajectoryTTL).Err(); err != nil {
		return fmt.Errorf("failed to set trajectory: %w", err)
	}

	return nil
}
