package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"HospitalMS/database"
	"HospitalMS/jobs"
	"HospitalMS/messaging"
	"HospitalMS/middlewares"
	"HospitalMS/routes"
	"HospitalMS/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

func runServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := database.Migrate(a.db); err != nil {
		return err
	}
	if err := database.SeedCatalog(a.db, a.cfg.AdminEmail, a.cfg.AdminPassword, a.log); err != nil {
		return err
	}

	var events services.VisitEventPublisher
	if a.cfg.AMQPURL != "" {
		broker, err := messaging.NewRabbitMQBroker(a.cfg.AMQPURL, a.cfg.VisitEventsQueue, a.log)
		if err != nil {
			a.log.Warn().Err(err).Msg("RabbitMQ unavailable, visit events disabled")
		} else {
			defer func() {
				if err := broker.Close(); err != nil {
					a.log.Error().Err(err).Msg("failed to close RabbitMQ connection")
				}
			}()
			events = broker
		}
	}
	svc := a.services(events)

	scheduler := jobs.NewScheduler(a.log)
	if err := scheduler.Add(jobs.Job{Name: "dashboard-refresh", Spec: a.cfg.StatsRefreshCron, Run: svc.Dashboard.RefreshGlobal}); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := routes.SetupRoutes(routes.Dependencies{
		DB:       a.db,
		Log:      a.log,
		Tokens:   a.tokens,
		Registry: registry,
		Cors:     middlewares.DefaultCorsConfig(a.cfg.CORSOrigins),
		RateLimit: middlewares.RateLimiterConfig{
			RequestsPerSecond: a.cfg.RateLimitRPS,
			Burst:             a.cfg.RateLimitBurst,
		},
		Release: !a.cfg.IsDev(),
	}, svc)

	// Configure and start the server
	srv := &http.Server{
		Addr:           a.cfg.Addr(),
		Handler:        handler,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
		IdleTimeout:    30 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	serveErr := make(chan error, 1)

	go func() {
		defer wg.Done()
		a.log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	a.log.Info().Msg("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	wg.Wait()
	a.log.Info().Msg("server exited gracefully")
	return nil
}
