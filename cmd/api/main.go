// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tooni-app/salesdesk/internal/config"
	"github.com/tooni-app/salesdesk/internal/handler"
	"github.com/tooni-app/salesdesk/internal/llm"
	"github.com/tooni-app/salesdesk/internal/middleware"
	"github.com/tooni-app/salesdesk/internal/model"
	natsclient "github.com/tooni-app/salesdesk/internal/nats"
	"github.com/tooni-app/salesdesk/internal/panel"
	"github.com/tooni-app/salesdesk/internal/store"
	"github.com/tooni-app/salesdesk/internal/suggest"
	"github.com/tooni-app/salesdesk/pkg/logger"
	"github.com/tooni-app/salesdesk/pkg/tracing"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "salesdesk", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing")
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// LLM client: DeepSeek by default, Anthropic when selected. A missing
	// credential leaves the client nil; the pipeline degrades to heuristics.
	var llmClient llm.Client
	switch llm.Provider(cfg.DefaultLLM) {
	case llm.ProviderAnthropic:
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	default:
		llmClient, err = llm.NewDeepSeekClient(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL, cfg.DeepSeekModel)
	}
	if err != nil {
		log.Warn("no LLM credential configured, suggestions will use heuristics")
		llmClient = nil
	}

	// Conversation state
	st := store.New(log)
	st.Seed()

	// Suggestion pipeline
	provider := suggest.NewProvider(llmClient, log)
	gateway := suggest.NewGateway(provider, log)

	// Suggestion panel controllers, driven by store changes
	panelManager := panel.NewManager(gateway, cfg.PanelDebounce, cfg.LLMTimeout, log)
	panelManager.Bind(st)
	defer panelManager.Close()

	// Optional NATS event fan-out
	var nc *natsclient.Client
	if cfg.NATSURL != "" {
		nc, err = natsclient.Connect(ctx, natsclient.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS")
			os.Exit(1)
		}
		defer nc.Close()

		publisher := natsclient.NewPublisher(nc)
		if err := publisher.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream")
			os.Exit(1)
		}
		st.Subscribe(func(ev model.ChangeEvent) {
			if err := publisher.Publish(context.Background(), ev); err != nil {
				log.Warn("failed to publish change event")
			}
		})
	}

	// Handlers
	healthHandler := handler.NewHealthHandler(nc)
	suggestionHandler := handler.NewSuggestionHandler(provider, log)
	conversationHandler := handler.NewConversationHandler(st, log)
	customerHandler := handler.NewCustomerHandler(st, log)
	panelHandler := handler.NewPanelHandler(panelManager, st, log)

	// Router
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/suggestions", suggestionHandler.Suggestions)
		r.Post("/summary", suggestionHandler.Summary)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Post("/messages", conversationHandler.Send)
				r.Post("/read", conversationHandler.MarkRead)
				r.Post("/payment-link", conversationHandler.SendPaymentLink)
				r.Post("/sold", conversationHandler.MarkSold)

				r.Get("/panel", panelHandler.Get)
				r.Post("/panel/refresh", panelHandler.Refresh)
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", customerHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", customerHandler.Get)
				r.Put("/stage", customerHandler.UpdateStage)
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
