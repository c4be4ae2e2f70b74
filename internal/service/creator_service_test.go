package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupCreatorServiceTest(t *testing.T) (*CreatorService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:creator_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Creator{}, &models.WalletAccount{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewCreatorService(repository.NewCreatorRepository(db), repository.NewWalletRepository(db)), db
}

func TestRegisterOrUpdateIdempotent(t *testing.T) {
	svc, db := setupCreatorServiceTest(t)

	first, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 500, Handle: "alice"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if first.ReferralCode == "" {
		t.Fatalf("registration must assign a referral code")
	}

	var wallet models.WalletAccount
	if err := db.Where("creator_id = ?", 500).First(&wallet).Error; err != nil {
		t.Fatalf("registration must create a wallet: %v", err)
	}

	second, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 500, Handle: "alice"})
	if err != nil {
		t.Fatalf("replayed register failed: %v", err)
	}
	if second.ReferralCode != first.ReferralCode {
		t.Fatalf("replayed register must keep the referral code")
	}

	var count int64
	if err := db.Model(&models.Creator{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("creator count want 1 got %d", count)
	}
}

func TestRegisterOrUpdateReferredByFirstWriteWins(t *testing.T) {
	svc, _ := setupCreatorServiceTest(t)

	referrer, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 501, Handle: "ref"})
	if err != nil {
		t.Fatalf("register referrer failed: %v", err)
	}

	created, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 502, Handle: "bob", ReferredBy: referrer.ReferralCode})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.ReferredBy != referrer.ReferralCode {
		t.Fatalf("referred_by want %s got %s", referrer.ReferralCode, created.ReferredBy)
	}

	// a later registration with a different code must not overwrite it
	updated, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 502, Handle: "bob", ReferredBy: "OTHERCODE"})
	if err != nil {
		t.Fatalf("re-register failed: %v", err)
	}
	if updated.ReferredBy != referrer.ReferralCode {
		t.Fatalf("referred_by must be first write wins, got %s", updated.ReferredBy)
	}
}

func TestRegisterOrUpdateRefreshesHandle(t *testing.T) {
	svc, _ := setupCreatorServiceTest(t)

	if _, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 503, Handle: "oldname"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	updated, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 503, Handle: "newname"})
	if err != nil {
		t.Fatalf("re-register failed: %v", err)
	}
	if updated.Handle != "newname" {
		t.Fatalf("handle want newname got %s", updated.Handle)
	}
}

func TestGetByIDHealsMissingReferralCode(t *testing.T) {
	svc, db := setupCreatorServiceTest(t)

	// legacy row without a code
	if err := db.Create(&models.Creator{ID: 504, Handle: "legacy"}).Error; err != nil {
		t.Fatalf("create legacy row failed: %v", err)
	}

	creator, err := svc.GetByID(504)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if creator.ReferralCode == "" {
		t.Fatalf("missing referral code must be healed on read")
	}
}

func TestSetPayoutMethod(t *testing.T) {
	svc, _ := setupCreatorServiceTest(t)

	if _, err := svc.RegisterOrUpdate(CreatorRegisterInput{ID: 505, Handle: "payee"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	updated, err := svc.SetPayoutMethod(505, CreatorPayoutInput{UPI: "payee@upi"})
	if err != nil {
		t.Fatalf("set upi failed: %v", err)
	}
	if updated.PayoutUPI != "payee@upi" {
		t.Fatalf("upi want payee@upi got %s", updated.PayoutUPI)
	}

	// bank details travel as a pair
	if _, err := svc.SetPayoutMethod(505, CreatorPayoutInput{BankAccount: "12345678"}); !errors.Is(err, ErrInvalidPayoutMethod) {
		t.Fatalf("account without ifsc want ErrInvalidPayoutMethod got %v", err)
	}

	updated, err = svc.SetPayoutMethod(505, CreatorPayoutInput{BankAccount: "12345678", BankIFSC: "HDFC0001234"})
	if err != nil {
		t.Fatalf("set bank failed: %v", err)
	}
	if updated.PayoutBankAccount != "12345678" || updated.PayoutBankIFSC != "HDFC0001234" {
		t.Fatalf("bank pair not stored: %+v", updated)
	}
	// earlier UPI stays untouched, last write wins per field
	if updated.PayoutUPI != "payee@upi" {
		t.Fatalf("upi must survive a bank update, got %s", updated.PayoutUPI)
	}

	if _, err := svc.SetPayoutMethod(505, CreatorPayoutInput{}); !errors.Is(err, ErrInvalidPayoutMethod) {
		t.Fatalf("empty input want ErrInvalidPayoutMethod got %v", err)
	}
	if _, err := svc.SetPayoutMethod(999999, CreatorPayoutInput{UPI: "x@upi"}); !errors.Is(err, ErrCreatorNotFound) {
		t.Fatalf("unknown creator want ErrCreatorNotFound got %v", err)
	}
}
