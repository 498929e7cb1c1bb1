package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/scrublab/server/internal/catalog"
	"github.com/scrublab/server/internal/controller"
	"github.com/scrublab/server/internal/navigation"
	"github.com/scrublab/server/internal/repository/connection/inmemory"
	redisrepo "github.com/scrublab/server/internal/repository/session/redis"
	"github.com/scrublab/server/internal/service/session"
	"github.com/scrublab/server/internal/trajectory"
	"github.com/scrublab/server/pkg/ctxlogger"
	"github.com/scrublab/server/pkg/redisclient"
)

type AppConfig struct {
	Secret            string        `json:"-"`
	Host              string        `json:"host"`
	Port              int           `json:"port"`
	LogLevel          string        `json:"log_level"`
	CatalogPath       string        `json:"catalog_path"`
	SessionTTL        time.Duration `json:"session_ttl"`
	TrajectoryTTL     time.Duration `json:"trajectory_ttl"`
	PreloadLimit      int           `json:"preload_limit"`
	CapturePerSecond  float64       `json:"capture_per_second"`
	InputResolution   float64       `json:"input_resolution"`
	DisplayResolution float64       `json:"display_resolution"`
	ActivationRadius  float64       `json:"activation_radius"`
	RedisPort         int           `json:"redis_port"`
	RedisHost         string        `json:"redis_host"`
	RedisPassword     string        `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Secret == "" {
		return fmt.Errorf("secret must be set")
	}
	if cfg.CatalogPath == "" {
		return fmt.Errorf("catalog path must be set")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be greater than 0")
	}
	if cfg.TrajectoryTTL <= 0 {
		return fmt.Errorf("trajectory ttl must be greater than 0")
	}
	if cfg.PreloadLimit < 1 {
		return fmt.Errorf("preload limit must be greater than 0")
	}
	if cfg.CapturePerSecond <= 0 {
		return fmt.Errorf("capture per second must be greater than 0")
	}
	if cfg.InputResolution <= 0 {
		return fmt.Errorf("input resolution must be greater than 0")
	}
	if cfg.DisplayResolution <= 0 {
		return fmt.Errorf("display resolution must be greater than 0")
	}
	if cfg.ActivationRadius <= 0 {
		return fmt.Errorf("activation radius must be greater than 0")
	}
	return nil
}

func (cfg *AppConfig) navigationConfig() navigation.Config {
	nav := navigation.DefaultConfig()
	nav.Context.CapturePerSecond = cfg.CapturePerSecond
	nav.Rudder.CapturePerSecond = cfg.CapturePerSecond
	nav.Subpixel.Gain.InputResolution = cfg.InputResolution
	nav.Subpixel.Gain.DisplayResolution = cfg.DisplayResolution
	nav.ActivationRadius = cfg.ActivationRadius

	return nav
}

func newLogger(level string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	return slog.New(&h), nil
}

// newHandler builds everything behind the HTTP server.
func newHandler(ctx context.Context, cfg *AppConfig, rc *redis.Client, logger *slog.Logger) (http.Handler, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	sessionRepo := redisrepo.NewRepo(rc, cfg.SessionTTL, cfg.TrajectoryTTL)
	connectionRepo := inmemory.NewRepo()

	// relative trajectory paths are resolved next to the catalog file
	fetcher := trajectory.NewFetcher(&http.Client{Timeout: 30 * time.Second}, filepath.Dir(cfg.CatalogPath))
	source := trajectory.NewSource(fetcher, sessionRepo, logger)
	preloadTrajectories(ctx, cat, source, cfg.PreloadLimit, logger)

	sessionService := session.NewService(sessionRepo, connectionRepo, cat, source, &session.Config{
		Secret:     cfg.Secret,
		Navigation: cfg.navigationConfig(),
	}, logger)
	controller := controller.NewController(sessionService, logger)

	return controller.GetMux(), nil
}

func preloadTrajectories(ctx context.Context, cat *catalog.Catalog, source *trajectory.Source, limit int, logger *slog.Logger) {
	entries := cat.Trajectories()
	reqs := make([]trajectory.Request, 0, len(entries))
	for _, e := range entries {
		reqs = append(reqs, trajectory.Request{ID: e.ID, URL: e.URL, Frames: e.DurationInFrames})
	}

	start := time.Now()
	failed := source.Preload(ctx, reqs, limit)
	logger.InfoContext(ctx, "trajectories preloaded",
		"total", len(reqs),
		"failed", len(failed),
		"took", time.Since(start),
	)
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Port:     cfg.RedisPort,
		Host:     cfg.RedisHost,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	handler, err := newHandler(ctx, cfg, rc, logger)
	if err != nil {
		return err
	}
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: handler}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
