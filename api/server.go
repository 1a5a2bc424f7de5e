package api

import (
	"context"
	"time"

	"casino/domain/entities"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
)

// WalletOperations is the application surface the HTTP API drives
type WalletOperations interface {
	GetWallet(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency) (*entities.Wallet, error)
	ListWallets(ctx context.Context, actor entities.Actor, userID int64) ([]*entities.Wallet, error)
	Deposit(ctx context.Context, actor entities.Actor, userID int64, currency entities.Currency, amount int64, reference string) (*entities.Transaction, error)
	PlaceBet(ctx context.Context, actor entities.Actor, gameID string, stake int64, currency entities.Currency) (*entities.BetResult, error)
	SettleBet(ctx context.Context, actor entities.Actor, settlement entities.Settlement) (*entities.BetResult, error)
	GetBet(ctx context.Context, actor entities.Actor, betID int64) (*entities.Bet, error)
	ListBets(ctx context.Context, actor entities.Actor, userID int64, limit int) ([]*entities.Bet, error)
	RequestWithdrawal(ctx context.Context, actor entities.Actor, amount int64, currency entities.Currency, destination string) (*entities.WithdrawalResult, error)
	ProcessWithdrawal(ctx context.Context, actor entities.Actor, transactionID int64, action entities.WithdrawalAction) (*entities.WithdrawalResult, error)
	GrantBonus(ctx context.Context, actor entities.Actor, grant entities.BonusGrant) (*entities.BonusResult, error)
	ClaimBonus(ctx context.Context, actor entities.Actor, bonusID int64) (*entities.BonusResult, error)
	ListBonuses(ctx context.Context, actor entities.Actor, userID int64, status *entities.BonusStatus) ([]*entities.Bonus, error)
	AdjustBalance(ctx context.Context, actor entities.Actor, walletID int64, amount int64, reason string) (*entities.Transaction, error)
	QueryLedger(ctx context.Context, actor entities.Actor, filter entities.LedgerFilter) ([]*entities.Transaction, error)
	ReconcileWallet(ctx context.Context, actor entities.Actor, walletID int64) (*entities.Reconciliation, error)
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// Server exposes wallet operations over HTTP
type Server struct {
	app    *fiber.App
	ops    WalletOperations
	health HealthCheck
}

// NewServer creates the HTTP server and registers every route.
// health may be nil, in which case /healthz always reports ok.
func NewServer(ops WalletOperations, health HealthCheck) *Server {
	s := &Server{
		ops:    ops,
		health: health,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "casino-wallet",
		ErrorHandler:          errorHandler,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(requestid.New())
	s.app.Use(requestLogger)

	s.setupRoutes()
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	log.WithField("addr", addr).Info("HTTP API listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) setupRoutes() {
	s.app.Get("/healthz", s.healthz)

	v1 := s.app.Group("/v1", actorMiddleware)

	v1.Get("/wallets", s.listWallets)
	v1.Get("/wallets/:currency", s.getWallet)
	v1.Get("/wallets/:id/reconcile", adminOnly, s.reconcileWallet)
	v1.Post("/deposits", adminOnly, s.deposit)

	v1.Post("/bets", s.placeBet)
	v1.Get("/bets", s.listBets)
	v1.Get("/bets/:id", s.getBet)
	v1.Post("/bets/:id/settle", s.settleBet)

	v1.Post("/withdrawals", s.requestWithdrawal)
	v1.Post("/withdrawals/:id/process", adminOnly, s.processWithdrawal)

	v1.Post("/bonuses", adminOnly, s.grantBonus)
	v1.Get("/bonuses", s.listBonuses)
	v1.Post("/bonuses/:id/claim", s.claimBonus)

	v1.Post("/adjustments", adminOnly, s.adjustBalance)

	v1.Get("/ledger", s.queryLedger)
}

func (s *Server) healthz(c *fiber.Ctx) error {
	if s.health != nil {
		if err := s.health(c.UserContext()); err != nil {
			log.WithError(err).Warn("Health check failed")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

// requestLogger logs every request once it has been handled
func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		if fe, ok := err.(*fiber.Error); ok {
			status = fe.Code
		} else {
			status = statusForError(err)
		}
	}

	entry := log.WithFields(log.Fields{
		"method":    c.Method(),
		"path":      c.Path(),
		"status":    status,
		"duration":  time.Since(start),
		"requestId": c.GetRespHeader(fiber.HeaderXRequestID),
	})
	if status >= fiber.StatusInternalServerError {
		entry.Warn("HTTP request failed")
	} else {
		entry.Debug("HTTP request handled")
	}
	return err
}
