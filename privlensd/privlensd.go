// Package privlensd wires and runs the privlens services so they can be
// started from the standalone daemon binary or embedded behind a CLI.
package privlensd

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/absmach/supermq/pkg/jaeger"
	"github.com/absmach/supermq/pkg/prometheus"
	"github.com/absmach/supermq/pkg/server"
	httpserver "github.com/absmach/supermq/pkg/server/http"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/privlens/privlens/orchestrator"
	"github.com/privlens/privlens/orchestrator/api"
	"github.com/privlens/privlens/orchestrator/middleware"
	"github.com/privlens/privlens/pkg/evaluator"
	"github.com/privlens/privlens/pkg/mqtt"
)

const svcName = "orchestrator"

type Config struct {
	LogLevel           string        `env:"ORCHESTRATOR_LOG_LEVEL"           envDefault:"info"`
	InstanceID         string        `env:"ORCHESTRATOR_INSTANCE_ID"`
	EvaluatorURL       string        `env:"ORCHESTRATOR_EVALUATOR_URL"       envDefault:"http://localhost:8000"`
	EvaluatorTimeout   time.Duration `env:"ORCHESTRATOR_EVALUATOR_TIMEOUT"   envDefault:"2m"`
	ReflectionCooldown time.Duration `env:"ORCHESTRATOR_REFLECTION_COOLDOWN" envDefault:"30s"`
	MQTTAddress        string        `env:"ORCHESTRATOR_MQTT_ADDRESS"        envDefault:"tcp://localhost:1883"`
	MQTTQoS            uint8         `env:"ORCHESTRATOR_MQTT_QOS"            envDefault:"2"`
	MQTTTimeout        time.Duration `env:"ORCHESTRATOR_MQTT_TIMEOUT"        envDefault:"30s"`
	MQTTUsername       string        `env:"ORCHESTRATOR_MQTT_USERNAME"`
	MQTTPassword       string        `env:"ORCHESTRATOR_MQTT_PASSWORD"`
	EventTopic         string        `env:"ORCHESTRATOR_EVENT_TOPIC"         envDefault:"orchestrator"`
	OTELURL            url.URL       `env:"ORCHESTRATOR_OTEL_URL"`
	TraceRatio         float64       `env:"ORCHESTRATOR_TRACE_RATIO"         envDefault:"0"`
	Server             server.Config
}

// StartOrchestrator runs the orchestrator until the context is canceled or a
// stop signal arrives.
func StartOrchestrator(ctx context.Context, cancel context.CancelFunc, cfg Config) error {
	g, ctx := errgroup.WithContext(ctx)

	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("failed to parse log level: %w", err)
	}
	logHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	var tp trace.TracerProvider
	switch {
	case cfg.OTELURL == (url.URL{}):
		tp = noop.NewTracerProvider()
	default:
		sdktp, err := jaeger.NewProvider(ctx, svcName, cfg.OTELURL, "", cfg.TraceRatio)
		if err != nil {
			return fmt.Errorf("failed to initialize opentelemetry: %w", err)
		}
		defer func() {
			if err := sdktp.Shutdown(ctx); err != nil {
				logger.Error("error shutting down tracer provider", slog.Any("error", err))
			}
		}()
		tp = sdktp
	}
	tracer := tp.Tracer(svcName)

	mqttPubSub, err := mqtt.NewPubSub(cfg.MQTTAddress, cfg.MQTTQoS, svcName+"-"+cfg.InstanceID, cfg.MQTTUsername, cfg.MQTTPassword, cfg.EventTopic+"/status", cfg.MQTTTimeout, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mqtt pubsub: %w", err)
	}
	defer func() {
		if err := mqttPubSub.Disconnect(context.Background()); err != nil {
			logger.Warn("failed to disconnect mqtt client", slog.Any("error", err))
		}
	}()

	eval := evaluator.New(evaluator.Config{
		URL:     cfg.EvaluatorURL,
		Timeout: cfg.EvaluatorTimeout,
	})
	if err := eval.Health(ctx); err != nil {
		logger.Warn("evaluation service is not reachable yet",
			slog.String("url", cfg.EvaluatorURL),
			slog.Any("error", err))
	}

	svc := orchestrator.NewService(
		eval,
		orchestrator.NewReflectionGate(cfg.ReflectionCooldown),
		mqttPubSub,
		cfg.EventTopic,
		logger,
	)
	svc = middleware.Logging(logger, svc)
	svc = middleware.Tracing(tracer, svc)
	counter, latency := prometheus.MakeMetrics(svcName, "api")
	svc = middleware.Metrics(counter, latency, svc)

	hs := httpserver.NewServer(ctx, cancel, svcName, cfg.Server, api.MakeHandler(svc, logger, cfg.InstanceID), logger)

	g.Go(func() error {
		return hs.Start()
	})

	g.Go(func() error {
		return server.StopSignalHandler(ctx, cancel, logger, svcName, hs)
	})

	return g.Wait()
}
