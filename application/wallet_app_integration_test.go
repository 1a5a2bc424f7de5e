package application_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"casino/application"
	"casino/domain/entities"
	"casino/domain/events"
	"casino/domain/types"
	"casino/infrastructure"
	"casino/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usd entities.Currency = "USD"

var admin = entities.Actor{UserID: 900, Role: entities.RoleAdmin}

func player(userID int64) entities.Actor {
	return entities.Actor{UserID: userID, Role: entities.RolePlayer}
}

type walletFixture struct {
	db     *testutil.TestDatabase
	app    *application.WalletApp
	events *infrastructure.RecordingEventPublisher
}

func setupWalletApp(t *testing.T) *walletFixture {
	t.Helper()

	testDB := testutil.SetupTestDatabase(t)
	recorder := infrastructure.NewRecordingEventPublisher()
	factory := infrastructure.NewTestUnitOfWorkFactory(testDB.DB, recorder)

	return &walletFixture{
		db:     testDB,
		app:    application.NewWalletApp(factory, nil),
		events: recorder,
	}
}

func (f *walletFixture) seedWallet(t *testing.T, userID, balance int64) *entities.Wallet {
	t.Helper()
	return testutil.SeedWallet(t, f.db.DB, userID, usd, balance)
}

func (f *walletFixture) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	wallet, err := f.app.GetWallet(context.Background(), admin, userID, usd)
	require.NoError(t, err)
	return wallet.Balance
}

func (f *walletFixture) ledger(t *testing.T, walletID int64) []*entities.Transaction {
	t.Helper()
	entries, err := f.app.QueryLedger(context.Background(), admin, entities.LedgerFilter{WalletID: &walletID})
	require.NoError(t, err)
	return entries
}

// assertReconciled checks the wallet is non-negative and matches its effective ledger sum
func (f *walletFixture) assertReconciled(t *testing.T, walletID int64) {
	t.Helper()
	result, err := f.app.ReconcileWallet(context.Background(), admin, walletID)
	require.NoError(t, err)
	assert.True(t, result.Balanced(), "balance %d differs from ledger sum %d", result.Balance, result.LedgerSum)
	assert.GreaterOrEqual(t, result.Balance, int64(0))
}

func TestWalletApp_BetWinFlow(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	placed, err := f.app.PlaceBet(ctx, player(1), "slots-classic", 3000, usd)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), placed.Balance)
	assert.Equal(t, entities.BetOutcomePending, placed.Bet.Outcome)

	entries := f.ledger(t, wallet.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, entities.TransactionKindBet, entries[0].Kind)
	assert.Equal(t, int64(-3000), entries[0].Amount)
	assert.Equal(t, entities.TransactionStatusCompleted, entries[0].Status)
	require.NotNil(t, entries[0].BetID)
	assert.Equal(t, placed.Bet.ID, *entries[0].BetID)

	settled, err := f.app.SettleBet(ctx, player(1), entities.Settlement{
		BetID:     placed.Bet.ID,
		Outcome:   entities.BetOutcomeWin,
		WinAmount: 9000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(16000), settled.Balance)
	assert.Equal(t, entities.BetOutcomeWin, settled.Bet.Outcome)
	assert.True(t, decimal.NewFromInt(3).Equal(settled.Bet.Multiplier))

	entries = f.ledger(t, wallet.ID)
	require.Len(t, entries, 3)
	assert.Equal(t, entities.TransactionKindWin, entries[0].Kind)
	assert.Equal(t, int64(9000), entries[0].Amount)
	assert.Equal(t, int64(16000), entries[0].BalanceAfter)

	f.assertReconciled(t, wallet.ID)

	assert.Len(t, f.events.OfType(events.EventTypeBetPlaced), 1)
	assert.Len(t, f.events.OfType(events.EventTypeBetSettled), 1)
	assert.Len(t, f.events.OfType(events.EventTypeBalanceChange), 2)
}

func TestWalletApp_BetLossWritesNoEntry(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	placed, err := f.app.PlaceBet(ctx, player(1), "roulette", 2500, usd)
	require.NoError(t, err)

	settled, err := f.app.SettleBet(ctx, admin, entities.Settlement{
		BetID:   placed.Bet.ID,
		Outcome: entities.BetOutcomeLoss,
	})
	require.NoError(t, err)
	assert.Equal(t, entities.BetOutcomeLoss, settled.Bet.Outcome)

	assert.Equal(t, int64(7500), f.balance(t, 1))
	assert.Len(t, f.ledger(t, wallet.ID), 2)
	f.assertReconciled(t, wallet.ID)
}

func TestWalletApp_InsufficientStakeLeavesNoTrace(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 5000)
	eventsBefore := len(f.events.Events())

	_, err := f.app.PlaceBet(ctx, player(1), "slots-classic", 6000, usd)
	require.Error(t, err)
	assert.Equal(t, types.KindInsufficientFunds, types.KindOf(err))

	assert.Equal(t, int64(5000), f.balance(t, 1))
	assert.Len(t, f.ledger(t, wallet.ID), 1)
	assert.Len(t, f.events.Events(), eventsBefore, "rolled back work publishes nothing")

	bets, err := f.app.ListBets(ctx, player(1), 1, 10)
	require.NoError(t, err)
	assert.Empty(t, bets)
	f.assertReconciled(t, wallet.ID)
}

func TestWalletApp_SettleTwice(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	placed, err := f.app.PlaceBet(ctx, player(1), "blackjack", 1000, usd)
	require.NoError(t, err)

	settlement := entities.Settlement{BetID: placed.Bet.ID, Outcome: entities.BetOutcomeWin, WinAmount: 2000}
	_, err = f.app.SettleBet(ctx, player(1), settlement)
	require.NoError(t, err)

	_, err = f.app.SettleBet(ctx, player(1), settlement)
	require.Error(t, err)
	assert.Equal(t, types.KindAlreadySettled, types.KindOf(err))

	assert.Equal(t, int64(11000), f.balance(t, 1))
	f.assertReconciled(t, wallet.ID)
}

func TestWalletApp_ConcurrentSettleHasOneWinner(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	placed, err := f.app.PlaceBet(ctx, player(1), "blackjack", 1000, usd)
	require.NoError(t, err)

	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		settled   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.app.SettleBet(ctx, admin, entities.Settlement{
				BetID:     placed.Bet.ID,
				Outcome:   entities.BetOutcomeWin,
				WinAmount: 5000,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if types.IsKind(err, types.KindAlreadySettled) {
				settled++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, settled)
	assert.Equal(t, int64(14000), f.balance(t, 1))
	f.assertReconciled(t, wallet.ID)
}

func TestWalletApp_ConcurrentBetsNeverOverdraw(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	const (
		attempts = 8
		stake    = 3000
	)
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		successes    int
		insufficient int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.app.PlaceBet(ctx, player(1), "slots-classic", stake, usd)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if types.IsKind(err, types.KindInsufficientFunds) {
				insufficient++
			}
		}()
	}
	wg.Wait()

	// floor(10000 / 3000) stakes fit
	assert.Equal(t, 3, successes)
	assert.Equal(t, attempts-3, insufficient)
	assert.Equal(t, int64(1000), f.balance(t, 1))
	f.assertReconciled(t, wallet.ID)
}

func TestWalletApp_WithdrawalReject(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	requested, err := f.app.RequestWithdrawal(ctx, player(1), 4000, usd, "iban:DE89370400440532013000")
	require.NoError(t, err)
	assert.Equal(t, int64(6000), requested.Balance)
	assert.Equal(t, entities.TransactionStatusPending, requested.Transaction.Status)
	assert.Equal(t, int64(-4000), requested.Transaction.Amount)
	f.assertReconciled(t, wallet.ID)

	rejected, err := f.app.ProcessWithdrawal(ctx, admin, requested.Transaction.ID, entities.WithdrawalActionReject)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusRejected, rejected.Transaction.Status)
	require.NotNil(t, rejected.Transaction.ProcessedBy)
	assert.Equal(t, admin.UserID, *rejected.Transaction.ProcessedBy)

	assert.Equal(t, int64(10000), f.balance(t, 1))
	f.assertReconciled(t, wallet.ID)

	_, err = f.app.ProcessWithdrawal(ctx, admin, requested.Transaction.ID, entities.WithdrawalActionApprove)
	require.Error(t, err)
	assert.Equal(t, types.KindAlreadyProcessed, types.KindOf(err))
	assert.Equal(t, int64(10000), f.balance(t, 1))
}

func TestWalletApp_ConcurrentRejectRefundsOnce(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	requested, err := f.app.RequestWithdrawal(ctx, player(1), 4000, usd, "iban:DE89370400440532013000")
	require.NoError(t, err)

	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		processed int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.app.ProcessWithdrawal(ctx, admin, requested.Transaction.ID, entities.WithdrawalActionReject)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if types.IsKind(err, types.KindAlreadyProcessed) {
				processed++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, processed)
	assert.Equal(t, int64(10000), f.balance(t, 1))
	f.assertReconciled(t, wallet.ID)
	assert.Len(t, f.events.OfType(events.EventTypeWithdrawalProcessed), 1)
}

func TestWalletApp_WithdrawalApprove(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 10000)

	requested, err := f.app.RequestWithdrawal(ctx, player(1), 2500, usd, "btc:bc1qexample")
	require.NoError(t, err)

	_, err = f.app.ProcessWithdrawal(ctx, player(1), requested.Transaction.ID, entities.WithdrawalActionApprove)
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	approved, err := f.app.ProcessWithdrawal(ctx, admin, requested.Transaction.ID, entities.WithdrawalActionApprove)
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, approved.Transaction.Status)

	_, err = f.app.ProcessWithdrawal(ctx, admin, requested.Transaction.ID, entities.WithdrawalActionApprove)
	assert.Equal(t, types.KindAlreadyProcessed, types.KindOf(err))

	assert.Equal(t, int64(7500), f.balance(t, 1))
	f.assertReconciled(t, wallet.ID)
	assert.Len(t, f.events.OfType(events.EventTypeWithdrawalProcessed), 1)
}

func TestWalletApp_AdjustmentCannotGoNegative(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 2000)

	_, err := f.app.AdjustBalance(ctx, admin, wallet.ID, -3000, "correction")
	require.Error(t, err)
	assert.Equal(t, types.KindInsufficientFunds, types.KindOf(err))
	assert.Equal(t, int64(2000), f.balance(t, 1))
	assert.Len(t, f.ledger(t, wallet.ID), 1)

	entry, err := f.app.AdjustBalance(ctx, admin, wallet.ID, -500, "correction")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), entry.BalanceAfter)
	require.NotNil(t, entry.AdminID)
	assert.Equal(t, admin.UserID, *entry.AdminID)

	_, err = f.app.AdjustBalance(ctx, player(1), wallet.ID, 10000, "free money")
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	f.assertReconciled(t, wallet.ID)
	assert.Len(t, f.events.OfType(events.EventTypeBalanceAdjusted), 1)
}

func TestWalletApp_BonusGrantAndWagering(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	wallet := f.seedWallet(t, 1, 20000)

	immediate, err := f.app.GrantBonus(ctx, admin, entities.BonusGrant{
		UserID: 1, Amount: 2500, Currency: usd, Reason: "welcome offer",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.BonusStatusClaimed, immediate.Bonus.Status)
	assert.Equal(t, int64(22500), immediate.Balance)

	wagered, err := f.app.GrantBonus(ctx, admin, entities.BonusGrant{
		UserID: 1, Amount: 2500, Currency: usd, WageringRequirement: 10000, Reason: "reload offer",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.BonusStatusPending, wagered.Bonus.Status)
	assert.Equal(t, int64(22500), wagered.Balance)
	f.assertReconciled(t, wallet.ID)

	_, err = f.app.ClaimBonus(ctx, player(1), wagered.Bonus.ID)
	assert.Equal(t, types.KindValidation, types.KindOf(err))

	_, err = f.app.PlaceBet(ctx, player(1), "slots-classic", 10000, usd)
	require.NoError(t, err)

	claimed, err := f.app.ClaimBonus(ctx, player(1), wagered.Bonus.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.BonusStatusClaimed, claimed.Bonus.Status)
	assert.Equal(t, int64(15000), claimed.Balance)

	_, err = f.app.ClaimBonus(ctx, player(1), wagered.Bonus.ID)
	assert.Equal(t, types.KindAlreadyProcessed, types.KindOf(err))

	claimedStatus := entities.BonusStatusClaimed
	bonuses, err := f.app.ListBonuses(ctx, player(1), 1, &claimedStatus)
	require.NoError(t, err)
	assert.Len(t, bonuses, 2)

	f.assertReconciled(t, wallet.ID)
}

func TestWalletApp_ExpireBonuses(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	f.seedWallet(t, 1, 0)

	expiresAt := time.Now().Add(time.Hour)
	granted, err := f.app.GrantBonus(ctx, admin, entities.BonusGrant{
		UserID: 1, Amount: 1000, Currency: usd, WageringRequirement: 5000, Reason: "weekend offer", ExpiresAt: &expiresAt,
	})
	require.NoError(t, err)

	expired, err := f.app.ExpireBonuses(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, expired)

	expired, err = f.app.ExpireBonuses(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	expiredStatus := entities.BonusStatusExpired
	bonuses, err := f.app.ListBonuses(ctx, player(1), 1, &expiredStatus)
	require.NoError(t, err)
	require.Len(t, bonuses, 1)
	assert.Equal(t, granted.Bonus.ID, bonuses[0].ID)

	_, err = f.app.ClaimBonus(ctx, player(1), granted.Bonus.ID)
	assert.Equal(t, types.KindAlreadyProcessed, types.KindOf(err))
	assert.Equal(t, int64(0), f.balance(t, 1))
	assert.Len(t, f.events.OfType(events.EventTypeBonusExpired), 1)
}

func TestWalletApp_DepositCreatesWallet(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()

	_, err := f.app.Deposit(ctx, player(7), 7, usd, 5000, "psp-1")
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	_, err = f.app.GetWallet(ctx, player(7), 7, usd)
	assert.Equal(t, types.KindNotFound, types.KindOf(err))

	entry, err := f.app.Deposit(ctx, admin, 7, usd, 5000, "psp-1")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionKindDeposit, entry.Kind)
	assert.Equal(t, int64(5000), entry.BalanceAfter)
	assert.Equal(t, "psp-1", entry.Metadata[entities.MetadataReference])

	wallets, err := f.app.ListWallets(ctx, player(7), 7)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, int64(5000), wallets[0].Balance)

	_, err = f.app.ListWallets(ctx, player(8), 7)
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	assert.Len(t, f.events.OfType(events.EventTypeWalletCreated), 1)
	f.assertReconciled(t, wallets[0].ID)
}

func TestWalletApp_LedgerVisibility(t *testing.T) {
	f := setupWalletApp(t)
	ctx := context.Background()
	f.seedWallet(t, 1, 10000)
	f.seedWallet(t, 2, 10000)

	_, err := f.app.PlaceBet(ctx, player(1), "slots-classic", 1000, usd)
	require.NoError(t, err)

	other := int64(2)
	_, err = f.app.QueryLedger(ctx, player(1), entities.LedgerFilter{UserID: &other})
	assert.Equal(t, types.KindForbidden, types.KindOf(err))

	own := int64(1)
	betKind := entities.TransactionKindBet
	entries, err := f.app.QueryLedger(ctx, player(1), entities.LedgerFilter{UserID: &own, Kind: &betKind})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(-1000), entries[0].Amount)
}

func TestWalletApp_TimeoutIsStorageFailure(t *testing.T) {
	f := setupWalletApp(t)
	f.seedWallet(t, 1, 10000)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	_, err := f.app.PlaceBet(ctx, player(1), "slots-classic", 1000, usd)
	require.Error(t, err)
	assert.Equal(t, types.KindStorageFailure, types.KindOf(err))
	assert.True(t, types.IsRetryable(err))
	assert.Equal(t, int64(10000), f.balance(t, 1))
}
