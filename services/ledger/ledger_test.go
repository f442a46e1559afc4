package ledger_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"playvault/database"
	"playvault/models"
	"playvault/services/ledger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Single connection keeps the in-memory database alive and serializes writes
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.RunMigrations(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, credits int64) models.User {
	t.Helper()
	user := models.User{
		Name:     "Test Player",
		Email:    uuid.NewString() + "@test.io",
		Password: "hashed",
		Credits:  credits,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// fundUser builds a balance through the purchase workflow so the ledger-sum
// invariant holds for the user from the start.
func fundUser(t *testing.T, led *ledger.Ledger, db *gorm.DB, credits int64) models.User {
	t.Helper()
	user := createUser(t, db, 0)

	req, err := led.CreatePurchase(user.ID, credits, float64(credits)*models.CreditRateUSD)
	require.NoError(t, err)
	_, err = led.ConfirmPurchase(req.ID)
	require.NoError(t, err)

	require.NoError(t, db.First(&user, user.ID).Error)
	return user
}

func requireBalanced(t *testing.T, led *ledger.Ledger, userID uint) {
	t.Helper()
	result, err := led.AuditUser(userID)
	require.NoError(t, err)
	assert.True(t, result.Balanced(), "balance %d drifted from ledger sum %d", result.Credits, result.LedgerSum)
}

func TestPurchaseLifecycle(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	req, err := led.CreatePurchase(user.ID, 1000, 10.00)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusPending, req.Status)
	assert.Equal(t, models.StagePending, req.Stage())

	req, err = led.AttachPaymentLink(req.ID, "https://pay/x")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusLinkSent, req.Status)
	assert.Equal(t, models.StageURLSent, req.Stage())

	req, err = led.ConfirmPurchase(req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCompleted, req.Status)
	assert.Equal(t, models.StageCompleted, req.Stage())

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(1000), updated.Credits)

	var txns []models.Transaction
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&txns).Error)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(1000), txns[0].Amount)
	assert.Equal(t, models.TransactionTypePurchase, txns[0].Type)
	assert.Equal(t, models.TransactionStatusCompleted, txns[0].Status)

	requireBalanced(t, led, user.ID)
}

func TestCreatePurchaseRejectsNonPositiveAmounts(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	_, err := led.CreatePurchase(user.ID, 0, 10.00)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = led.CreatePurchase(user.ID, -5, 10.00)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = led.CreatePurchase(user.ID, 100, 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}

func TestConfirmTwiceCreditsOnce(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	req, err := led.CreatePurchase(user.ID, 500, 5.00)
	require.NoError(t, err)

	_, err = led.ConfirmPurchase(req.ID)
	require.NoError(t, err)

	_, err = led.ConfirmPurchase(req.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyConfirmed)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(500), updated.Credits)

	var count int64
	db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	requireBalanced(t, led, user.ID)
}

func TestConcurrentConfirmCreditsOnce(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	req, err := led.CreatePurchase(user.ID, 1000, 10.00)
	require.NoError(t, err)

	const goroutines = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := led.ConfirmPurchase(req.ID)
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, ledger.ErrAlreadyConfirmed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(1000), updated.Credits)

	requireBalanced(t, led, user.ID)
}

func TestRedeemOptimisticDebit(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := fundUser(t, led, db, 500)

	txn, err := led.Redeem(user.ID, 500, "cash out")
	require.NoError(t, err)
	assert.Equal(t, int64(-500), txn.Amount)
	assert.Equal(t, models.TransactionStatusPending, txn.Status)
	assert.Equal(t, 5.00, txn.USDValue)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(0), updated.Credits)

	// One more credit than the balance allows
	_, err = led.Redeem(user.ID, 1, "over")
	assert.ErrorIs(t, err, ledger.ErrInsufficientCredits)

	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(0), updated.Credits)

	requireBalanced(t, led, user.ID)
}

func TestRedeemRejectsNonPositiveAmount(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := fundUser(t, led, db, 100)

	_, err := led.Redeem(user.ID, 0, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = led.Redeem(user.ID, -10, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(100), updated.Credits)
}

func TestConcurrentRedeemCannotOverdraw(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := fundUser(t, led, db, 5)

	const goroutines = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes := 0

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := led.Redeem(user.ID, 1, "concurrent")
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, successes)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(0), updated.Credits)

	requireBalanced(t, led, user.ID)
}

func TestAttachPaymentLinkIdempotent(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	req, err := led.CreatePurchase(user.ID, 100, 1.00)
	require.NoError(t, err)

	req, err = led.AttachPaymentLink(req.ID, "https://pay/first")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusLinkSent, req.Status)

	// Re-setting overwrites the URL, status does not regress
	req, err = led.AttachPaymentLink(req.ID, "https://pay/second")
	require.NoError(t, err)
	assert.Equal(t, "https://pay/second", req.AdminURL)
	assert.Equal(t, models.PurchaseStatusLinkSent, req.Status)

	_, err = led.AttachPaymentLink(req.ID, "")
	assert.ErrorIs(t, err, ledger.ErrInvalidLink)

	_, err = led.AttachPaymentLink(99999, "https://pay/x")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestAttachPaymentLinkCannotRegressCompleted(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	req, err := led.CreatePurchase(user.ID, 100, 1.00)
	require.NoError(t, err)
	_, err = led.ConfirmPurchase(req.ID)
	require.NoError(t, err)

	// An attach racing a confirm must not pull a completed request back to
	// payment_link_sent; only the URL may change.
	got, err := led.AttachPaymentLink(req.ID, "https://pay/late")
	require.NoError(t, err)
	assert.Equal(t, models.PurchaseStatusCompleted, got.Status)
	assert.Equal(t, "https://pay/late", got.AdminURL)
	assert.Equal(t, models.StageCompleted, got.Stage())
}

func TestConcurrentAttachAndConfirmEndCompleted(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)

	for i := 0; i < 20; i++ {
		user := createUser(t, db, 0)
		req, err := led.CreatePurchase(user.ID, 100, 1.00)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := led.AttachPaymentLink(req.ID, "https://pay/x")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := led.ConfirmPurchase(req.ID)
			assert.NoError(t, err)
		}()
		wg.Wait()

		// Whatever order the two landed in, completed must win
		final, err := led.GetPurchase(req.ID)
		require.NoError(t, err)
		assert.Equal(t, models.PurchaseStatusCompleted, final.Status)
	}
}

func TestAttachPhotoKeepsStatus(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	req, err := led.CreatePurchase(user.ID, 100, 1.00)
	require.NoError(t, err)

	req, err = led.AttachPhoto(req.ID, "uploads/evidence.png")
	require.NoError(t, err)
	assert.Equal(t, "uploads/evidence.png", req.PhotoPath)
	assert.Equal(t, models.PurchaseStatusPending, req.Status)
}

func TestRedemptionAdminFlow(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := fundUser(t, led, db, 300)

	txn, err := led.Redeem(user.ID, 300, "cash out")
	require.NoError(t, err)

	txn, err = led.AttachRedemptionLink(txn.ID, "https://payout/y")
	require.NoError(t, err)
	assert.Equal(t, "https://payout/y", txn.AdminURL)
	assert.Equal(t, models.TransactionStatusPending, txn.Status)

	txn, err = led.MarkRedemptionPaid(txn.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCompleted, txn.Status)

	_, err = led.MarkRedemptionPaid(txn.ID)
	assert.ErrorIs(t, err, ledger.ErrAlreadyPaid)

	// Marking paid must not touch the balance again
	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(0), updated.Credits)

	requireBalanced(t, led, user.ID)
}

func TestAttachRedemptionLinkRejectsNonRedemption(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := fundUser(t, led, db, 100)

	// The funding purchase transaction is not a redemption
	var purchaseTxn models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", user.ID, models.TransactionTypePurchase).First(&purchaseTxn).Error)

	_, err := led.AttachRedemptionLink(purchaseTxn.ID, "https://payout/z")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestGamePlayDebit(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := fundUser(t, led, db, 1000)

	game := models.Game{
		Name:            "Dragon Spin",
		Slug:            "dragon-spin",
		LoginURL:        "https://dragonspin.example/login",
		AccountUsername: "vault_user",
		AccountPassword: "vault_pass",
		EntryCredits:    300,
		IsActive:        true,
	}
	require.NoError(t, db.Create(&game).Error)

	txn, err := led.RecordGamePlay(user.ID, &game)
	require.NoError(t, err)
	assert.Equal(t, int64(-300), txn.Amount)
	assert.Equal(t, models.TransactionTypeGamePlay, txn.Type)
	assert.Equal(t, game.ID, txn.GameID)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(700), updated.Credits)

	requireBalanced(t, led, user.ID)

	// Drain the balance, then entry must be refused
	_, err = led.Redeem(user.ID, 700, "drain")
	require.NoError(t, err)
	_, err = led.RecordGamePlay(user.ID, &game)
	assert.ErrorIs(t, err, ledger.ErrInsufficientCredits)

	requireBalanced(t, led, user.ID)
}

func TestLedgerInvariantAcrossMixedOperations(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)
	user := createUser(t, db, 0)

	for i := 0; i < 3; i++ {
		req, err := led.CreatePurchase(user.ID, 200, 2.00)
		require.NoError(t, err)
		_, err = led.ConfirmPurchase(req.ID)
		require.NoError(t, err)
	}
	_, err := led.Redeem(user.ID, 150, "partial")
	require.NoError(t, err)
	_, err = led.Redeem(user.ID, 50, "partial")
	require.NoError(t, err)

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, int64(400), updated.Credits)

	requireBalanced(t, led, user.ID)
}

func TestAuditDetectsDrift(t *testing.T) {
	db := setupDB(t)
	led := ledger.New(db)

	// Balance set out-of-band with no backing transactions
	drifted := createUser(t, db, 250)
	balanced := fundUser(t, led, db, 100)

	result, err := led.AuditUser(drifted.ID)
	require.NoError(t, err)
	assert.False(t, result.Balanced())
	assert.Equal(t, int64(250), result.Credits)
	assert.Equal(t, int64(0), result.LedgerSum)

	all, err := led.AuditAll()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, drifted.ID, all[0].UserID)
	assert.NotEqual(t, balanced.ID, all[0].UserID)
}
