package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/launchpad-core/internal/chain"
	"github.com/rovshanmuradov/launchpad-core/internal/config"
	"github.com/rovshanmuradov/launchpad-core/internal/events"
	"github.com/rovshanmuradov/launchpad-core/internal/launchpad"
	"github.com/rovshanmuradov/launchpad-core/internal/logger"
	"github.com/rovshanmuradov/launchpad-core/internal/precheck"
	"github.com/rovshanmuradov/launchpad-core/internal/retry"
	"github.com/rovshanmuradov/launchpad-core/internal/statereader"
	"github.com/rovshanmuradov/launchpad-core/internal/txorch"
	"github.com/rovshanmuradov/launchpad-core/internal/wallet"
)

func main() {
	configPath := "configs/config.json"
	args := os.Args[1:]
	if len(args) > 0 {
		configPath = args[0]
		args = args[1:]
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		MaxSize:     100,
		MaxBackups:  3,
		MaxAge:      7,
		Compress:    true,
		Development: cfg.DebugLogging,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Starting launchpad core")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdownCh
		log.Info("Signal received: " + sig.String())
		cancel()
	}()

	if err := run(ctx, cfg, log, args); err != nil && err != context.Canceled {
		log.Error("Launchpad exited with error", zap.Error(err))
		os.Exit(1)
	}
	log.Info("Launchpad shut down gracefully")
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string) error {
	wallets, err := wallet.LoadWallets(cfg.WalletsFile)
	if err != nil {
		return fmt.Errorf("failed to load wallets: %w", err)
	}
	log.Info(fmt.Sprintf("Loaded %d wallets", len(wallets)))

	client := chain.NewRPCClient(
		cfg.RPCList[0],
		time.Duration(cfg.ConfirmTimeoutMs)*time.Millisecond,
		log.Logger,
	)

	orch := txorch.New(client, txorch.Config{
		MaxAttempts: cfg.Retries,
		BaseDelay:   time.Duration(cfg.RetryDelayMs) * time.Millisecond,
	}, log.Logger)

	bus := events.NewBus(log.Logger, 256)
	defer func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		bus.Shutdown(shutdownCtx)
	}()

	if cfg.OperationsLog != "" {
		journal, err := events.NewJournal(cfg.OperationsLog, 5*time.Second, log.Logger)
		if err != nil {
			return fmt.Errorf("failed to open operations journal: %w", err)
		}
		journal.Attach(bus)
		defer journal.Close()
	}

	programs := launchpad.Programs{
		Pool:          cfg.PoolProgramKey(),
		TokenMetadata: cfg.TokenMetadataProgramKey(),
		FeeRecipient:  cfg.FeeRecipientKey(),
	}

	checker := precheck.NewValidator(client, log.Logger)
	service := launchpad.NewService(client, orch, checker, bus, launchpad.Config{
		Programs:                 programs,
		ComputeUnits:             cfg.ComputeUnits,
		PriorityFeeMicroLamports: cfg.PriorityFeeMicroLam,
	}, log.Logger)

	// Subcommand mode: execute one operation and exit.
	if len(args) > 0 {
		return runCommand(ctx, service, wallets, args, log)
	}

	policy := retry.NewPolicy(cfg.Retries, time.Duration(cfg.RetryDelayMs)*time.Millisecond, log.Logger)
	reader := statereader.New(client, programs, policy, log.Logger)
	poller := statereader.NewPoller(reader, bus,
		time.Duration(cfg.RefreshIntervalMs)*time.Millisecond, log.Logger)

	stats, err := reader.MarketStats(ctx)
	if err != nil {
		log.Warn("Initial market scan failed", zap.Error(err))
	} else {
		log.Info(fmt.Sprintf("Tracking %d pools", stats.PoolCount))
		for _, pool := range stats.Pools {
			poller.Track(pool.Address)
		}
	}

	return poller.Run(ctx)
}
