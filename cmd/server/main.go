package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/scrublab/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
	usage        string
}

var (
	secret = configVar[string]{
		envKey:       "SERVER_SECRET",
		flagKey:      "secret",
		defaultValue: "",
		usage:        "Secret signing session tokens",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 80,
		usage:        "Server port",
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
		usage:        "Server host",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
		usage:        "Logging level",
	}
	catalogPath = configVar[string]{
		envKey:       "SERVER_CATALOG_PATH",
		flagKey:      "catalog-path",
		defaultValue: "/etc/scrublab/catalog.yaml",
		usage:        "Media catalog file",
	}
	sessionTTL = configVar[time.Duration]{
		envKey:       "SERVER_SESSION_TTL",
		flagKey:      "session-ttl",
		defaultValue: 24 * time.Hour,
		usage:        "How long an idle session can be resumed",
	}
	trajectoryTTL = configVar[time.Duration]{
		envKey:       "SERVER_TRAJECTORY_TTL",
		flagKey:      "trajectory-ttl",
		defaultValue: 7 * 24 * time.Hour,
		usage:        "How long fetched trajectories stay cached",
	}
	preloadLimit = configVar[int]{
		envKey:       "SERVER_PRELOAD_LIMIT",
		flagKey:      "preload-limit",
		defaultValue: 4,
		usage:        "Maximum concurrent trajectory fetches at start",
	}
	capturePerSecond = configVar[float64]{
		envKey:       "SERVER_CAPTURE_PER_SECOND",
		flagKey:      "capture-per-second",
		defaultValue: 15,
		usage:        "Rudder ticks per second",
	}
	inputResolution = configVar[float64]{
		envKey:       "SERVER_INPUT_RESOLUTION",
		flagKey:      "input-resolution",
		defaultValue: 1000,
		usage:        "Pointing device resolution in counts per inch",
	}
	displayResolution = configVar[float64]{
		envKey:       "SERVER_DISPLAY_RESOLUTION",
		flagKey:      "display-resolution",
		defaultValue: 96,
		usage:        "Display resolution in pixels per inch",
	}
	activationRadius = configVar[float64]{
		envKey:       "SERVER_ACTIVATION_RADIUS",
		flagKey:      "activation-radius",
		defaultValue: 50,
		usage:        "Maximum distance in pixels between pointer and dragged object",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
		usage:        "Redis port",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
		usage:        "Redis host",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
		usage:        "Redis password",
	}
)

func bind[T any](v configVar[T]) {
	viper.BindEnv(v.flagKey, v.envKey)
	viper.SetDefault(v.flagKey, v.defaultValue)
}

func loadAppConfig() *app.AppConfig {
	pflag.String(secret.flagKey, secret.defaultValue, secret.usage)
	pflag.Int(port.flagKey, port.defaultValue, port.usage)
	pflag.String(host.flagKey, host.defaultValue, host.usage)
	pflag.String(logLevel.flagKey, logLevel.defaultValue, logLevel.usage)
	pflag.String(catalogPath.flagKey, catalogPath.defaultValue, catalogPath.usage)
	pflag.Duration(sessionTTL.flagKey, sessionTTL.defaultValue, sessionTTL.usage)
	pflag.Duration(trajectoryTTL.flagKey, trajectoryTTL.defaultValue, trajectoryTTL.usage)
	pflag.Int(preloadLimit.flagKey, preloadLimit.defaultValue, preloadLimit.usage)
	pflag.Float64(capturePerSecond.flagKey, capturePerSecond.defaultValue, capturePerSecond.usage)
	pflag.Float64(inputResolution.flagKey, inputResolution.defaultValue, inputResolution.usage)
	pflag.Float64(displayResolution.flagKey, displayResolution.defaultValue, displayResolution.usage)
	pflag.Float64(activationRadius.flagKey, activationRadius.defaultValue, activationRadius.usage)
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, redisPort.usage)
	pflag.String(redisHost.flagKey, redisHost.defaultValue, redisHost.usage)
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, redisPassword.usage)
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	bind(secret)
	bind(port)
	bind(host)
	bind(logLevel)
	bind(catalogPath)
	bind(sessionTTL)
	bind(trajectoryTTL)
	bind(preloadLimit)
	bind(capturePerSecond)
	bind(inputResolution)
	bind(displayResolution)
	bind(activationRadius)
	bind(redisPort)
	bind(redisHost)
	bind(redisPassword)

	config := &app.AppConfig{
		Secret:            viper.GetString(secret.flagKey),
		Host:              viper.GetString(host.flagKey),
		Port:              viper.GetInt(port.flagKey),
		LogLevel:          viper.GetString(logLevel.flagKey),
		CatalogPath:       viper.GetString(catalogPath.flagKey),
		SessionTTL:        viper.GetDuration(sessionTTL.flagKey),
		TrajectoryTTL:     viper.GetDuration(trajectoryTTL.flagKey),
		PreloadLimit:      viper.GetInt(preloadLimit.flagKey),
		CapturePerSecond:  viper.GetFloat64(capturePerSecond.flagKey),
		InputResolution:   viper.GetFloat64(inputResolution.flagKey),
		DisplayResolution: viper.GetFloat64(displayResolution.flagKey),
		ActivationRadius:  viper.GetFloat64(activationRadius.flagKey),
		RedisPort:         viper.GetInt(redisPort.flagKey),
		RedisHost:         viper.GetString(redisHost.flagKey),
		RedisPassword:     viper.GetString(redisPassword.flagKey),
	}

	return config
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
