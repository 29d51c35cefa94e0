// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package visualize assembles the chart generation service: registry,
// pipeline, result cache, HTTP router and observability wiring.
package visualize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Aatricks/qvt-back/pkg/logging"
	"github.com/Aatricks/qvt-back/services/dataset"
	"github.com/Aatricks/qvt-back/services/visualize/config"
	"github.com/Aatricks/qvt-back/services/visualize/middleware"
	"github.com/Aatricks/qvt-back/services/visualize/observability"
	"github.com/Aatricks/qvt-back/services/visualize/pipeline"
	"github.com/Aatricks/qvt-back/services/visualize/routes"
	"github.com/Aatricks/qvt-back/services/viz"
	"github.com/Aatricks/qvt-back/services/viz/strategies"
)

// Service is the visualize server lifecycle. Run blocks and should be
// called at most once per instance.
type Service interface {
	Run() error
}

type service struct {
	settings      *config.Settings
	logger        *slog.Logger
	router        *gin.Engine
	pipeline      *pipeline.Pipeline
	metrics       *observability.Metrics
	tracerCleanup func(context.Context)
}

// New builds a fully wired service from the given settings. A nil
// settings loads them from the environment.
func New(settings *config.Settings) (Service, error) {
	var err error
	if settings == nil {
		if settings, err = config.Load(); err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
	}

	s := &service{
		settings: settings,
		logger:   logging.New(logging.Config{Level: settings.LogLevel, Service: "visualize"}),
	}
	slog.SetDefault(s.logger)

	if cleanup, err := s.initTracer(); err != nil {
		slog.Warn("tracing disabled", "error", err)
	} else {
		s.tracerCleanup = cleanup
	}

	registry := viz.NewRegistry()
	strategies.RegisterAll(registry)

	s.metrics = observability.NewMetrics()
	limits := dataset.Limits{MaxRows: settings.MaxRows, MaxCols: settings.MaxColumns}
	s.pipeline = pipeline.New(registry, pipeline.NewCache(settings.CacheCapacity), limits, s.logger).
		WithObserver(s.metrics)

	s.initRouter()
	return s, nil
}

func (s *service) Run() error {
	defer s.cleanup()

	addr := fmt.Sprintf(":%d", s.settings.Port)
	slog.Info("starting visualize server",
		"port", s.settings.Port,
		"max_rows", s.settings.MaxRows,
		"max_columns", s.settings.MaxColumns,
		"request_timeout_sec", s.settings.RequestTimeoutSec)
	return s.router.Run(addr)
}

// initTracer wires the OTLP gRPC exporter. Tracing is opt-in: without
// OTEL_EXPORTER_OTLP_ENDPOINT the service runs with the no-op provider.
func (s *service) initTracer() (func(context.Context), error) {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT not set")
	}
	ctx := context.Background()

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("create gRPC connection: %w", err)
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("visualize-service")))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(traceExporter)))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

func (s *service) initRouter() {
	gin.SetMode(gin.ReleaseMode)
	s.router = gin.New()
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.RequestID())
	s.router.Use(s.corsMiddleware())
	s.router.Use(s.metrics.Middleware())
	s.router.Use(otelgin.Middleware("visualize-service"))

	routes.SetupRoutes(s.router, s.pipeline, s.metrics)
}

func (s *service) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", middleware.HeaderRequestID},
		MaxAge:       12 * time.Hour,
	}
	if s.settings.AllowAllOrigins() {
		// Wildcard origins never honor credentials.
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = s.settings.OriginList()
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func (s *service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
}
