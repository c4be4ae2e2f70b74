package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLedgerServiceTest(t *testing.T, cfg *config.LedgerConfig) (*LedgerService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Creator{},
		&models.Link{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.UnlockTransaction{},
		&models.PlatformAccount{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewLedgerService(
		repository.NewLedgerRepository(db),
		repository.NewLinkRepository(db),
		repository.NewCreatorRepository(db),
		repository.NewWalletRepository(db),
		cfg,
	)
	return svc, db
}

func createLedgerTestCreator(t *testing.T, db *gorm.DB, id uint64, referralCode, referredBy string) models.Creator {
	t.Helper()

	row := models.Creator{
		ID:           id,
		Handle:       fmt.Sprintf("creator_%d", id),
		ReferralCode: referralCode,
		ReferredBy:   referredBy,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create creator failed: %v", err)
	}
	return row
}

func createLedgerTestLink(t *testing.T, db *gorm.DB, creatorID uint64, code string, price int64) models.Link {
	t.Helper()

	row := models.Link{
		CreatorID: creatorID,
		Code:      code,
		URL:       "https://example.com/" + code,
		Price:     models.NewMoneyFromDecimal(decimal.NewFromInt(price)),
		Status:    constants.LinkStatusActive,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create link failed: %v", err)
	}
	return row
}

func walletBalance(t *testing.T, db *gorm.DB, creatorID uint64) decimal.Decimal {
	t.Helper()

	var account models.WalletAccount
	if err := db.Where("creator_id = ?", creatorID).First(&account).Error; err != nil {
		t.Fatalf("load wallet for creator %d failed: %v", creatorID, err)
	}
	return account.Balance.Decimal
}

func TestSettlePaymentSplitsWithReferrer(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, &config.LedgerConfig{CommissionPct: 10, ReferralPct: 5})

	createLedgerTestCreator(t, db, 1001, "REFAAA", "")
	createLedgerTestCreator(t, db, 1002, "REFBBB", "REFAAA")
	link := createLedgerTestLink(t, db, 1002, "linkcode01", 100)

	result, err := svc.SettlePayment(SettlementInput{
		EventID:  "evt-split-1",
		BuyerID:  9001,
		LinkCode: link.Code,
		Gross:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if result.Duplicate {
		t.Fatalf("fresh event must not be marked duplicate")
	}

	txn := result.Transaction
	if !txn.CreatorShare.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("creator share want 90 got %s", txn.CreatorShare.Decimal)
	}
	if !txn.PlatformShare.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("platform share want 5 got %s", txn.PlatformShare.Decimal)
	}
	if !txn.ReferralShare.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("referral share want 5 got %s", txn.ReferralShare.Decimal)
	}
	if txn.ReferrerID == nil || *txn.ReferrerID != 1001 {
		t.Fatalf("referrer id want 1001 got %v", txn.ReferrerID)
	}

	if got := walletBalance(t, db, 1002); !got.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("owner balance want 90 got %s", got)
	}
	if got := walletBalance(t, db, 1001); !got.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("referrer balance want 5 got %s", got)
	}

	var platform models.PlatformAccount
	if err := db.First(&platform).Error; err != nil {
		t.Fatalf("load platform account failed: %v", err)
	}
	if !platform.TotalEarnings.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("platform earnings want 5 got %s", platform.TotalEarnings.Decimal)
	}
	if !platform.TotalReferralPaid.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("platform referral paid want 5 got %s", platform.TotalReferralPaid.Decimal)
	}

	var reloadedLink models.Link
	if err := db.First(&reloadedLink, link.ID).Error; err != nil {
		t.Fatalf("reload link failed: %v", err)
	}
	if reloadedLink.UnlockCount != 1 {
		t.Fatalf("unlock count want 1 got %d", reloadedLink.UnlockCount)
	}
	if !reloadedLink.Earnings.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("link earnings want 100 got %s", reloadedLink.Earnings.Decimal)
	}
}

func TestSettlePaymentWithoutReferrer(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, &config.LedgerConfig{CommissionPct: 10, ReferralPct: 5})

	createLedgerTestCreator(t, db, 2001, "REFCCC", "")
	link := createLedgerTestLink(t, db, 2001, "linkcode02", 100)

	result, err := svc.SettlePayment(SettlementInput{
		EventID:  "evt-noref-1",
		BuyerID:  9002,
		LinkCode: link.Code,
		Gross:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	txn := result.Transaction
	if !txn.CreatorShare.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("creator share want 90 got %s", txn.CreatorShare.Decimal)
	}
	if !txn.PlatformShare.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("platform share want 10 got %s", txn.PlatformShare.Decimal)
	}
	if !txn.ReferralShare.Decimal.IsZero() {
		t.Fatalf("referral share want 0 got %s", txn.ReferralShare.Decimal)
	}
	if txn.ReferrerID != nil {
		t.Fatalf("referrer id should be nil, got %v", *txn.ReferrerID)
	}
}

func TestSettlePaymentDuplicateEvent(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, &config.LedgerConfig{CommissionPct: 10, ReferralPct: 5})

	createLedgerTestCreator(t, db, 3001, "REFDDD", "")
	link := createLedgerTestLink(t, db, 3001, "linkcode03", 50)

	input := SettlementInput{
		EventID:  "evt-dup-1",
		BuyerID:  9003,
		LinkCode: link.Code,
		Gross:    decimal.NewFromInt(50),
	}
	first, err := svc.SettlePayment(input)
	if err != nil {
		t.Fatalf("first settle failed: %v", err)
	}
	second, err := svc.SettlePayment(input)
	if err != nil {
		t.Fatalf("replayed settle failed: %v", err)
	}
	if !second.Duplicate {
		t.Fatalf("replayed event must be marked duplicate")
	}
	if second.Transaction.ID != first.Transaction.ID {
		t.Fatalf("replayed event must return the prior settlement")
	}

	if got := walletBalance(t, db, 3001); !got.Equal(decimal.NewFromInt(45)) {
		t.Fatalf("balance after replay want 45 got %s", got)
	}
}

func TestSettlePaymentSelfReferralSkipped(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, &config.LedgerConfig{CommissionPct: 10, ReferralPct: 5})

	// referred_by pointing at the creator's own code must not pay out
	createLedgerTestCreator(t, db, 4001, "REFEEE", "REFEEE")
	link := createLedgerTestLink(t, db, 4001, "linkcode04", 100)

	result, err := svc.SettlePayment(SettlementInput{
		EventID:  "evt-self-1",
		BuyerID:  9004,
		LinkCode: link.Code,
		Gross:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if !result.Transaction.ReferralShare.Decimal.IsZero() {
		t.Fatalf("self referral share want 0 got %s", result.Transaction.ReferralShare.Decimal)
	}
	if !result.Transaction.PlatformShare.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("platform share want 10 got %s", result.Transaction.PlatformShare.Decimal)
	}
}

func TestSettlePaymentUnknownReferralCodeSkipped(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, &config.LedgerConfig{CommissionPct: 10, ReferralPct: 5})

	createLedgerTestCreator(t, db, 5001, "REFFFF", "NOSUCHCODE")
	link := createLedgerTestLink(t, db, 5001, "linkcode05", 100)

	result, err := svc.SettlePayment(SettlementInput{
		EventID:  "evt-unknownref-1",
		BuyerID:  9005,
		LinkCode: link.Code,
		Gross:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	if !result.Transaction.ReferralShare.Decimal.IsZero() {
		t.Fatalf("unknown referral share want 0 got %s", result.Transaction.ReferralShare.Decimal)
	}
}

func TestSettlePaymentReferralCappedByCommission(t *testing.T) {
	// referral percentage above the commission must be capped by it
	svc, db := setupLedgerServiceTest(t, &config.LedgerConfig{CommissionPct: 5, ReferralPct: 10})

	createLedgerTestCreator(t, db, 6001, "REFGGG", "")
	createLedgerTestCreator(t, db, 6002, "REFHHH", "REFGGG")
	link := createLedgerTestLink(t, db, 6002, "linkcode06", 100)

	result, err := svc.SettlePayment(SettlementInput{
		EventID:  "evt-cap-1",
		BuyerID:  9006,
		LinkCode: link.Code,
		Gross:    decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("settle failed: %v", err)
	}
	txn := result.Transaction
	if !txn.ReferralShare.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("capped referral share want 5 got %s", txn.ReferralShare.Decimal)
	}
	if !txn.PlatformShare.Decimal.IsZero() {
		t.Fatalf("platform share after cap want 0 got %s", txn.PlatformShare.Decimal)
	}
}

func TestSettlePaymentValidation(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, nil)

	createLedgerTestCreator(t, db, 7001, "REFIII", "")
	link := createLedgerTestLink(t, db, 7001, "linkcode07", 100)

	if _, err := svc.SettlePayment(SettlementInput{EventID: " ", LinkCode: link.Code, Gross: decimal.NewFromInt(10)}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("blank event id want ErrInvalidEvent got %v", err)
	}
	if _, err := svc.SettlePayment(SettlementInput{EventID: "evt-v1", LinkCode: link.Code, Gross: decimal.Zero}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero gross want ErrInvalidAmount got %v", err)
	}
	if _, err := svc.SettlePayment(SettlementInput{EventID: "evt-v2", LinkCode: "nosuchlink", Gross: decimal.NewFromInt(10)}); !errors.Is(err, ErrUnknownLink) {
		t.Fatalf("unknown link want ErrUnknownLink got %v", err)
	}

	orphan := createLedgerTestLink(t, db, 999999, "linkcode08", 100)
	if _, err := svc.SettlePayment(SettlementInput{EventID: "evt-v3", LinkCode: orphan.Code, Gross: decimal.NewFromInt(10)}); !errors.Is(err, ErrOrphanedLink) {
		t.Fatalf("orphaned link want ErrOrphanedLink got %v", err)
	}
}

func TestGetPlatformStats(t *testing.T) {
	svc, db := setupLedgerServiceTest(t, &config.LedgerConfig{CommissionPct: 10, ReferralPct: 5})

	createLedgerTestCreator(t, db, 8001, "REFJJJ", "")
	createLedgerTestCreator(t, db, 8002, "REFKKK", "")
	link := createLedgerTestLink(t, db, 8001, "linkcode09", 200)

	if _, err := svc.SettlePayment(SettlementInput{
		EventID:  "evt-stats-1",
		BuyerID:  9008,
		LinkCode: link.Code,
		Gross:    decimal.NewFromInt(200),
	}); err != nil {
		t.Fatalf("settle failed: %v", err)
	}

	stats, err := svc.GetPlatformStats()
	if err != nil {
		t.Fatalf("platform stats failed: %v", err)
	}
	if !stats.TotalEarnings.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("total earnings want 20 got %s", stats.TotalEarnings.Decimal)
	}
	if stats.CreatorCount != 2 {
		t.Fatalf("creator count want 2 got %d", stats.CreatorCount)
	}
}
