package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-contact-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/contact"
	"github.com/ovaphlow/pitchfork/service-contact-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-contact-go/pkg/utilities"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file (overrides CONFIG_FILE)")
	flag.Parse()

	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Logger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting contact gateway", "driver", cfg.Database.Driver, "addr", cfg.HTTP.Addr)

	sqlDB, err := database.Connect(cfg.DB())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx so repos can rebind placeholders for the driver
	sqlxDB := sqlx.NewDb(sqlDB, cfg.Database.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := contact.NewContactService(sqlxDB, nil).EnsureSchema(ctx); err != nil {
		sugar.Fatalf("ensure schema: %v", err)
	}
	if cfg.Database.Driver == database.DriverSQLite {
		sugar.Warn("sqlite backend in use; intended for local development")
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router.RegisterRoutes(sugar, sqlxDB, cfg.HTTP.Timeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Info("service is running; press Ctrl+C to stop")

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
