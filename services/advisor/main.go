// Copyright (C) 2026 Atlas Counsel (engineering@atlascounsel.sg)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/AtlasCounsel/CostCounsel/pkg/logging"
	"github.com/AtlasCounsel/CostCounsel/services/advisor/handlers"
	"github.com/AtlasCounsel/CostCounsel/services/advisor/routes"
	"github.com/AtlasCounsel/CostCounsel/services/calculation"
	"github.com/AtlasCounsel/CostCounsel/services/extraction"
	"github.com/AtlasCounsel/CostCounsel/services/hybrid"
	"github.com/AtlasCounsel/CostCounsel/services/llm"
	"github.com/AtlasCounsel/CostCounsel/services/matching"
	"github.com/AtlasCounsel/CostCounsel/services/ruleset"
	"github.com/AtlasCounsel/CostCounsel/services/session"
	"github.com/AtlasCounsel/CostCounsel/services/validation"
)

func initTracer(logger *slog.Logger) (func(context.Context), error) {
	if os.Getenv("TRACE_STDOUT") == "" {
		// Tracing off: the no-op provider from the otel default.
		return func(context.Context) {}, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceNameKey.String("advisor-service")))
	if err != nil {
		return nil, err
	}
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("failed to shut down trace provider", slog.String("error", err.Error()))
		}
	}, nil
}

func buildLLMClient(logger *slog.Logger) llm.Client {
	var inner llm.Client
	switch os.Getenv("LLM_BACKEND_TYPE") {
	case "openai":
		client, err := llm.NewOpenAIClient(logger)
		if err != nil {
			log.Fatalf("Failed to initialize LLM client: %v", err)
		}
		inner = client
	case "", "none":
		logger.Warn("LLM_BACKEND_TYPE not set, running with deterministic explanations only")
		inner = llm.NewDisabledClient()
	default:
		log.Fatalf("Unknown LLM_BACKEND_TYPE %q", os.Getenv("LLM_BACKEND_TYPE"))
	}
	return llm.NewRetryingClient(inner, logger,
		llm.WithRateLimiter(rate.NewLimiter(rate.Limit(2), 4)))
}

func buildSessionStore(logger *slog.Logger) (session.Store, *session.MemoryStore) {
	if os.Getenv("SESSION_BACKEND") == "memory" {
		mem := session.NewMemoryStore(24 * time.Hour)
		return mem, mem
	}
	dir := os.Getenv("SESSION_DIR")
	if dir == "" {
		dir = "./data/sessions"
	}
	store, err := session.NewBadgerStore(dir, 24*time.Hour, logger)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	return store, nil
}

func main() {
	level, err := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("Bad LOG_LEVEL: %v", err)
	}
	logger := logging.Setup(logging.Config{
		Level:   level,
		Service: "advisor",
		JSON:    os.Getenv("LOG_FORMAT") != "text",
	})

	port := os.Getenv("ADVISOR_PORT")
	if port == "" {
		port = "8520"
	}
	rulesDir := os.Getenv("RULES_DIR")
	if rulesDir == "" {
		rulesDir = "./rules"
	}

	cleanup, err := initTracer(logger)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}
	defer cleanup(context.Background())

	registry, err := ruleset.NewRegistry(rulesDir, logger)
	if err != nil {
		log.Fatalf("FATAL: could not load the rule set: %v", err)
	}
	engine, err := matching.NewEngine(matching.DefaultConfig(), logger)
	if err != nil {
		log.Fatalf("FATAL: could not build the matching engine: %v", err)
	}
	calculator, err := calculation.NewCalculator()
	if err != nil {
		log.Fatalf("FATAL: could not load the cost tables: %v", err)
	}

	store, memStore := buildSessionStore(logger)
	defer store.Close()

	guard := validation.NewGuard(validation.DefaultConfig(), logger)
	orchestrator := hybrid.NewOrchestrator(hybrid.DefaultConfig(), buildLLMClient(logger), guard, logger)

	deps := handlers.Deps{
		Registry:       registry,
		Engine:         engine,
		Calculator:     calculator,
		Orchestrator:   orchestrator,
		Store:          store,
		Extractor:      extraction.NewExtractor(),
		MatchThreshold: 0.3,
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("advisor-service"))
	routes.SetupRoutes(router, deps)

	server := &http.Server{Addr: ":" + port, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("advisor listening", slog.String("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		err := registry.Watch(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	if memStore != nil {
		cleaner := session.NewCleaner(memStore, 5*time.Minute, logger)
		group.Go(func() error {
			err := cleaner.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("advisor exited: %v", err)
	}
	logger.Info("advisor stopped")
}
