package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"elite-gym/internal/api"
	"elite-gym/internal/catalog"
	"elite-gym/internal/config"
	"elite-gym/internal/database"
	"elite-gym/internal/funnel"
	"elite-gym/internal/leads"
	"elite-gym/internal/observability/metrics"
	"elite-gym/internal/registration"
	"elite-gym/internal/whatsapp"
	"elite-gym/internal/ws"
	"elite-gym/pkg/logging"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg := config.LoadConfig()
	logger := logging.New(cfg.LogLevel)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	plans, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Error("failed to load plan catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}

	database.InitGorm(cfg)
	recorder := leads.NewGormRecorder(database.GormDB)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	leadMetrics := metrics.NewLeadMetrics(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(cfg.CORSOrigins, logger)
	go hub.Run(ctx)

	var sink leads.Sink = leads.LinkSink{Publisher: hub}
	if cfg.DispatchChannel == config.DispatchChannelCloud {
		client := whatsapp.NewClient(cfg)
		if !client.Configured() {
			logger.Error("cloud dispatch selected but WHATSAPP_TOKEN or PHONE_NUMBER_ID is missing")
			os.Exit(1)
		}
		sink = leads.CloudSink{Client: client}
	}
	dispatcher := leads.NewDispatcher(sink, cfg.DispatchChannel, recorder, leadMetrics, logger)

	sessions := funnel.NewRegistry(cfg.SessionCapacity, cfg.SessionTTL, funnel.Options{
		Destination: cfg.Destination,
		TypingDelay: cfg.TypingDelay,
		Dispatcher:  dispatcher,
		Observer:    hub,
		Metrics:     leadMetrics,
	})
	flows := registration.NewRegistry(cfg.SessionCapacity, cfg.SessionTTL, plans, registration.Options{
		Destination: cfg.Destination,
		Dispatcher:  dispatcher,
	}, leadMetrics)

	router := api.NewRouter(api.Handlers{
		Funnel:       api.NewFunnelHandler(sessions, hub),
		Plans:        api.NewPlanHandler(plans),
		Registration: api.NewRegistrationHandler(flows),
	}, api.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		Gatherer:    reg,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "dispatch_channel", cfg.DispatchChannel, "plans", plans.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to run server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	sessions.Purge()
	flows.Purge()
	dispatcher.Close()
	logger.Info("pending hand-offs flushed")
}
