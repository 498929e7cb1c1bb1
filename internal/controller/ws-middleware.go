package controller

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/gorilla/websocket"

	"github.com/scrublab/server/internal/metrics"
	"github.com/scrublab/server/pkg/ctxlogger"
	"github.com/scrublab/server/pkg/wsrouter"
)

func (c controller) wsRequestIdWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			ctx = ctxlogger.AppendCtx(ctx, slog.String("ws_request_id", c.generateTimeBasedId()))
			return next(ctx, conn, payload)
		}
	}
}

// loggerWSMw runs at debug level since pointer moves arrive at display rate.
func (c controller) loggerWSMw() wsrouter.Middleware {
	return func(next wsrouter.HandlerFunc[any]) wsrouter.HandlerFunc[any] {
		return func(ctx context.Context, conn *websocket.Conn, payload any) error {
			messageType := wsrouter.GetMessageTypeFromCtx(ctx)
			ctx = ctxlogger.AppendCtx(ctx, slog.String("message_type", messageType))
			c.logger.DebugContext(ctx, "websocket message received", "payload", payload)

			start := time.Now()

			err := next(ctx, conn, payload)

			took := time.Since(start)
			metrics.MessagesTotal.WithLabelValues(messageType).Inc()
			metrics.MessageDuration.WithLabelValues(messageType).Observe(took.Seconds())

			if c.logger.Enabled(ctx, slog.LevelDebug) {
				var memStats runtime.MemStats
				runtime.ReadMemStats(&memStats)
				c.logger.DebugContext(ctx, "websocket message handled",
					"processing_time_us", took.Microseconds(),
					"alloc", memStats.Alloc/1024,
					"total_alloc", memStats.TotalAlloc/1024,
					"sys", memStats.Sys/1024,
					"goroutines", runtime.NumGoroutine(),
				)
			}

			return err
		}
	}
}
