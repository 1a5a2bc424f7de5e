package api

import (
	"strconv"
	"strings"
	"time"

	"casino/domain/entities"
	"casino/domain/types"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func (s *Server) listWallets(c *fiber.Ctx) error {
	actor := actorFrom(c)
	userID, err := userIDQuery(c, actor)
	if err != nil {
		return err
	}

	wallets, err := s.ops.ListWallets(c.UserContext(), actor, userID)
	if err != nil {
		return err
	}

	out := make([]walletResponse, 0, len(wallets))
	for _, w := range wallets {
		out = append(out, toWalletResponse(w))
	}
	return c.JSON(fiber.Map{"wallets": out})
}

func (s *Server) getWallet(c *fiber.Ctx) error {
	actor := actorFrom(c)
	currency, err := parseCurrency(c.Params("currency"))
	if err != nil {
		return err
	}
	userID, err := userIDQuery(c, actor)
	if err != nil {
		return err
	}

	wallet, err := s.ops.GetWallet(c.UserContext(), actor, userID, currency)
	if err != nil {
		return err
	}
	return c.JSON(toWalletResponse(wallet))
}

func (s *Server) reconcileWallet(c *fiber.Ctx) error {
	walletID, err := idParam(c)
	if err != nil {
		return err
	}

	result, err := s.ops.ReconcileWallet(c.UserContext(), actorFrom(c), walletID)
	if err != nil {
		return err
	}
	return c.JSON(reconciliationResponse{
		WalletID:   result.WalletID,
		Balance:    result.Balance,
		LedgerSum:  result.LedgerSum,
		Difference: result.Difference(),
		Balanced:   result.Balanced(),
	})
}

func (s *Server) deposit(c *fiber.Ctx) error {
	var req depositRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return err
	}
	amount, err := parseAmount(req.Amount, currency)
	if err != nil {
		return err
	}

	entry, err := s.ops.Deposit(c.UserContext(), actorFrom(c), req.UserID, currency, amount, req.Reference)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(entry))
}

func (s *Server) placeBet(c *fiber.Ctx) error {
	var req placeBetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return err
	}
	stake, err := parseAmount(req.Stake, currency)
	if err != nil {
		return err
	}

	result, err := s.ops.PlaceBet(c.UserContext(), actorFrom(c), req.GameID, stake, currency)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toBetResultResponse(result))
}

func (s *Server) listBets(c *fiber.Ctx) error {
	actor := actorFrom(c)
	userID, err := userIDQuery(c, actor)
	if err != nil {
		return err
	}

	bets, err := s.ops.ListBets(c.UserContext(), actor, userID, c.QueryInt("limit", 50))
	if err != nil {
		return err
	}

	out := make([]betResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, toBetResponse(b))
	}
	return c.JSON(fiber.Map{"bets": out})
}

func (s *Server) getBet(c *fiber.Ctx) error {
	betID, err := idParam(c)
	if err != nil {
		return err
	}

	bet, err := s.ops.GetBet(c.UserContext(), actorFrom(c), betID)
	if err != nil {
		return err
	}
	return c.JSON(toBetResponse(bet))
}

// settleBet needs the bet's currency to read the win amount, so the bet is loaded first
func (s *Server) settleBet(c *fiber.Ctx) error {
	actor := actorFrom(c)
	betID, err := idParam(c)
	if err != nil {
		return err
	}
	var req settleBetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	bet, err := s.ops.GetBet(c.UserContext(), actor, betID)
	if err != nil {
		return err
	}

	settlement := entities.Settlement{
		BetID:   betID,
		Outcome: entities.BetOutcome(strings.ToLower(strings.TrimSpace(req.Outcome))),
	}
	if req.WinAmount != "" {
		if settlement.WinAmount, err = parseAmount(req.WinAmount, bet.Currency); err != nil {
			return err
		}
	}
	if req.Multiplier != "" {
		multiplier, err := decimal.NewFromString(req.Multiplier)
		if err != nil {
			return types.Validation("invalid multiplier %q", req.Multiplier)
		}
		settlement.Multiplier = multiplier
	}

	result, err := s.ops.SettleBet(c.UserContext(), actor, settlement)
	if err != nil {
		return err
	}
	return c.JSON(toBetResultResponse(result))
}

func (s *Server) requestWithdrawal(c *fiber.Ctx) error {
	var req withdrawalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return err
	}
	amount, err := parseAmount(req.Amount, currency)
	if err != nil {
		return err
	}

	result, err := s.ops.RequestWithdrawal(c.UserContext(), actorFrom(c), amount, currency, req.Destination)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toWithdrawalResultResponse(result))
}

func (s *Server) processWithdrawal(c *fiber.Ctx) error {
	transactionID, err := idParam(c)
	if err != nil {
		return err
	}
	var req processWithdrawalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	action := entities.WithdrawalAction(strings.ToLower(strings.TrimSpace(req.Action)))
	result, err := s.ops.ProcessWithdrawal(c.UserContext(), actorFrom(c), transactionID, action)
	if err != nil {
		return err
	}
	return c.JSON(toWithdrawalResultResponse(result))
}

func (s *Server) grantBonus(c *fiber.Ctx) error {
	var req grantBonusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return err
	}
	amount, err := parseAmount(req.Amount, currency)
	if err != nil {
		return err
	}
	var requirement int64
	if req.WageringRequirement != "" {
		if requirement, err = parseAmount(req.WageringRequirement, currency); err != nil {
			return err
		}
	}

	result, err := s.ops.GrantBonus(c.UserContext(), actorFrom(c), entities.BonusGrant{
		UserID:              req.UserID,
		Amount:              amount,
		Currency:            currency,
		WageringRequirement: requirement,
		Reason:              req.Reason,
		ExpiresAt:           req.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toBonusResultResponse(result))
}

func (s *Server) listBonuses(c *fiber.Ctx) error {
	actor := actorFrom(c)
	userID, err := userIDQuery(c, actor)
	if err != nil {
		return err
	}

	var status *entities.BonusStatus
	if raw := c.Query("status"); raw != "" {
		st := entities.BonusStatus(strings.ToLower(raw))
		switch st {
		case entities.BonusStatusPending, entities.BonusStatusClaimed, entities.BonusStatusExpired:
			status = &st
		default:
			return types.Validation("unknown bonus status %q", raw)
		}
	}

	bonuses, err := s.ops.ListBonuses(c.UserContext(), actor, userID, status)
	if err != nil {
		return err
	}

	out := make([]bonusResponse, 0, len(bonuses))
	for _, b := range bonuses {
		out = append(out, toBonusResponse(b))
	}
	return c.JSON(fiber.Map{"bonuses": out})
}

func (s *Server) claimBonus(c *fiber.Ctx) error {
	bonusID, err := idParam(c)
	if err != nil {
		return err
	}

	result, err := s.ops.ClaimBonus(c.UserContext(), actorFrom(c), bonusID)
	if err != nil {
		return err
	}
	return c.JSON(toBonusResultResponse(result))
}

func (s *Server) adjustBalance(c *fiber.Ctx) error {
	var req adjustmentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	entry, err := s.ops.AdjustBalance(c.UserContext(), actorFrom(c), req.WalletID, req.AmountMinor, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(entry))
}

func (s *Server) queryLedger(c *fiber.Ctx) error {
	filter := entities.LedgerFilter{Limit: c.QueryInt("limit", entities.DefaultLedgerLimit)}

	if raw := c.Query("wallet_id"); raw != "" {
		walletID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Validation("invalid wallet_id %q", raw)
		}
		filter.WalletID = &walletID
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return types.Validation("invalid user_id %q", raw)
		}
		filter.UserID = &userID
	}
	if raw := c.Query("kind"); raw != "" {
		kind := entities.TransactionKind(strings.ToLower(raw))
		filter.Kind = &kind
	}
	var err error
	if filter.From, err = timeQuery(c, "from"); err != nil {
		return err
	}
	if filter.To, err = timeQuery(c, "to"); err != nil {
		return err
	}

	entries, err := s.ops.QueryLedger(c.UserContext(), actorFrom(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"entries": toTransactionResponses(entries)})
}

func toWithdrawalResultResponse(r *entities.WithdrawalResult) withdrawalResultResponse {
	return withdrawalResultResponse{
		Transaction: toTransactionResponse(r.Transaction),
		Balance:     entities.FormatAmount(r.Balance, r.Transaction.Currency),
	}
}

func toBonusResultResponse(r *entities.BonusResult) bonusResultResponse {
	return bonusResultResponse{
		Bonus:   toBonusResponse(r.Bonus),
		Balance: entities.FormatAmount(r.Balance, r.Bonus.Currency),
	}
}

// Request parsing helpers. Every failure is a VALIDATION error.

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return types.Validation("invalid request body: %v", err)
	}
	return nil
}

func parseCurrency(raw string) (entities.Currency, error) {
	currency, err := entities.ParseCurrency(raw)
	if err != nil {
		return "", types.Validation("%v", err)
	}
	return currency, nil
}

func parseAmount(raw string, currency entities.Currency) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, types.Validation("amount is required")
	}
	amount, err := entities.ParseAmount(raw, currency)
	if err != nil {
		return 0, types.Validation("%v", err)
	}
	return amount, nil
}

func idParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, types.Validation("invalid id %q", c.Params("id"))
	}
	return id, nil
}

// userIDQuery returns ?user_id=, defaulting to the actor's own id
func userIDQuery(c *fiber.Ctx, actor entities.Actor) (int64, error) {
	raw := c.Query("user_id")
	if raw == "" {
		return actor.UserID, nil
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, types.Validation("invalid user_id %q", raw)
	}
	return userID, nil
}

func timeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, types.Validation("%s must be an RFC3339 timestamp", key)
	}
	return &t, nil
}
