package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stablefund/internal/adapter/bank"
	httpadapter "stablefund/internal/adapter/http"
	"stablefund/internal/adapter/memory"
	"stablefund/internal/adapter/postgres"
	"stablefund/internal/adapter/usecase"
	"stablefund/internal/config"
	"stablefund/internal/core/port"
	"stablefund/internal/db"
)

// main is the entry point of the escrow service. It loads configuration,
// optionally runs database migrations, wires the ledger store, the custody
// strategy and the in-process bank, then starts the HTTP server. On a
// termination signal it gracefully shuts the server down.
func main() {
	exitCode := 1
	defer func() {
		if r := recover(); r != nil {
			panic(r)
		} else {
			os.Exit(exitCode)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	var logger *slog.Logger
	{
		var handler slog.Handler
		level := cfg.Log.SlogLevel()
		switch cfg.Log.SlogFormat() {
		case "json":
			handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		default:
			handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		}
		logger = slog.New(handler)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var repo port.EscrowRepository
	switch cfg.Escrow.Store {
	case "memory":
		repo = memory.NewEscrowRepository()
	default:
		if cfg.Psql.RunMigrations {
			if err = db.Migrate(cfg.Psql.Addr.String()); err != nil {
				logger.Error("migration error", slog.Any("error", err))
			} else {
				logger.Info("migrations applied successfully")
			}
		}
		pool, perr := db.NewPostgresPool(ctx, cfg.Psql)
		if perr != nil {
			logger.Error("database connection error", slog.Any("error", perr))
			os.Exit(1)
		}
		defer pool.Close()
		repo = postgres.NewEscrowRepository(pool)
	}

	// The bank stands in for the external token, lending pool and receipt
	// minter; a chain-backed deployment substitutes real port
	// implementations here.
	settlement := bank.New(cfg.Escrow.TokenAddress, cfg.Escrow.AccountAddress)

	var custody usecase.CustodyStrategy
	switch cfg.Escrow.CustodyMode {
	case "yield":
		custody = usecase.NewYieldCustody(settlement, settlement, settlement, cfg.Escrow.TokenAddress, cfg.Escrow.AccountAddress)
		logger.Info("yield custody selected",
			slog.String("token", cfg.Escrow.TokenAddress.Hex()),
			slog.String("lending_pool", cfg.Escrow.LendingPoolAddress.Hex()))
	default:
		custody = usecase.NewRawCustody(settlement, cfg.Escrow.AccountAddress)
		logger.Info("raw custody selected",
			slog.String("token", cfg.Escrow.TokenAddress.Hex()))
	}

	engine := usecase.NewEscrowUseCase(repo, custody)

	if cfg.Escrow.SeedDemo {
		if err = db.Seed(ctx, engine, settlement); err != nil {
			logger.Error("seed error", slog.Any("error", err))
		} else {
			logger.Info("demo data seeded")
		}
	}

	handler := httpadapter.NewHandler(engine, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err = srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	value := <-quit
	exitCode = 128 + int(value.(syscall.Signal))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	} else {
		logger.Info("server gracefully stopped")
	}
}
