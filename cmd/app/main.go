package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ordering/cmd"
	"ordering/internal/adapters/out/postgres"
	"ordering/internal/pkg/telemetry"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig()
	if err != nil {
		return err
	}

	logger := telemetry.NewLogger(os.Stdout, configs.Env, configs.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.Config{
		ServiceName:  configs.ServiceName,
		OTLPEndpoint: configs.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("setup tracer: %w", err)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	gormDB, err := gorm.Open(gormpostgres.Open(configs.Postgres.DSN()), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	if err = postgres.Migrate(ctx, gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	sqlxDB, err := sqlx.ConnectContext(ctx, "postgres", configs.Postgres.DSN())
	if err != nil {
		return fmt.Errorf("connect postgres (sqlx): %w", err)
	}
	defer sqlxDB.Close()

	app, err := cmd.NewCompositionRoot(ctx, configs, logger, gormDB, sqlxDB)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Error("failed to close producer", "error", closeErr)
		}
	}()

	consumer, err := app.CreateConsumer()
	if err != nil {
		return err
	}
	defer consumer.Close()

	jobManager, err := app.CreateJobManager()
	if err != nil {
		return err
	}
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	app.CreateHTTPServer().Register(e)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server started", "port", configs.HTTP.Port)
		if startErr := e.Start(":" + configs.HTTP.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			return startErr
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("consumer started", "transport", configs.Messaging.Transport)
		return consumer.Consume(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), configs.HTTP.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
