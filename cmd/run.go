package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casino/api"
	"casino/application"
	"casino/config"
	"casino/database"
	"casino/domain/events"
	"casino/domain/interfaces"
	"casino/infrastructure"
	"casino/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the wallet service
func Run(ctx context.Context) error {
	// Load configuration
	cfg := config.Get()
	cfg.ConfigureLogging()

	log.WithField("environment", cfg.Environment).Info("Starting casino wallet service...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL(), cfg.PoolOptions())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize metrics
	if err := observability.InitializeGlobalMetrics(ctx, cfg); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := observability.ShutdownGlobalMetrics(shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down metrics provider")
		}
	}()

	// Initialize event publishing
	eventPublisher, natsClient, err := setupEventPublisher(ctx, cfg)
	if err != nil {
		return err
	}
	if natsClient != nil {
		defer func() {
			log.Info("Closing NATS connection...")
			if err := natsClient.Close(); err != nil {
				log.WithError(err).Error("Error closing NATS connection")
			}
		}()
	}

	// Initialize unit of work factory and application
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	walletApp := application.NewWalletApp(uowFactory, observability.GetMetrics())
	log.Info("Wallet application initialized successfully")

	// Start background workers
	expiryWorker := application.NewBonusExpiryWorker(walletApp, cfg.BonusExpiryInterval)
	stopExpiryWorker := expiryWorker.Start(ctx)

	// Start HTTP API
	server := api.NewServer(walletApp, func(ctx context.Context) error {
		return db.Ping(ctx)
	})
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(cfg.HTTPAddr)
	}()

	log.WithField("addr", cfg.HTTPAddr).Infof("Wallet service is running in %s mode", cfg.Environment)

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP server stopped: %w", err)
		}
	}

	// Cleanup resources
	log.Info("Shutting down wallet service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	stopExpiryWorker()

	if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
		log.Warn("Shutdown timeout exceeded")
	} else {
		log.Info("Shutdown completed")
	}

	return runErr
}

// setupEventPublisher connects to NATS when enabled. Events are dropped otherwise.
func setupEventPublisher(ctx context.Context, cfg *config.Config) (interfaces.EventPublisher, *infrastructure.NATSClient, error) {
	if !cfg.NATSEnabled {
		log.Warn("NATS disabled, wallet events will not be published")
		return infrastructure.NewNoopEventPublisher(), nil, nil
	}

	log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := natsClient.Connect(connectCtx); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	publisher := infrastructure.NewNATSEventPublisher(natsClient, infrastructure.NewEventSubjectMapper())
	if err := publisher.EnsureWalletEventStream(natsClient); err != nil {
		_ = natsClient.Close()
		return nil, nil, fmt.Errorf("failed to ensure wallet event stream: %w", err)
	}

	// Manual corrections are also written to the service log
	publisher.RegisterLocalHandler(events.EventTypeBalanceAdjusted, auditBalanceAdjustment)

	log.Info("NATS event publishing initialized successfully")
	return publisher, natsClient, nil
}

func auditBalanceAdjustment(ctx context.Context, event events.Event) error {
	adjusted, ok := event.(events.BalanceAdjustedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for balance adjustment audit", event)
	}

	log.WithFields(log.Fields{
		"audit":         true,
		"walletID":      adjusted.WalletID,
		"userID":        adjusted.UserID,
		"transactionID": adjusted.TransactionID,
		"amount":        adjusted.Amount,
		"currency":      adjusted.Currency,
		"adminID":       adjusted.AdminID,
		"reason":        adjusted.Reason,
	}).Warn("Balance adjustment committed")
	return nil
}
