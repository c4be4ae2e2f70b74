package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/payout"
	"github.com/telelink-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubPayoutProvider struct {
	result *payout.TransferResult
	err    error
	calls  int
}

func (p *stubPayoutProvider) Send(ctx context.Context, input payout.TransferInput) (*payout.TransferResult, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.result, nil
}

func setupWithdrawalServiceTest(t *testing.T, provider payout.Provider) (*WithdrawalService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:withdrawal_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Creator{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.Withdrawal{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	svc := NewWithdrawalService(
		repository.NewWithdrawalRepository(db),
		repository.NewWalletRepository(db),
		repository.NewCreatorRepository(db),
		provider,
		nil,
		nil,
		&config.LedgerConfig{MinWithdrawal: 100},
		nil,
	)
	return svc, db
}

func createWithdrawalTestCreator(t *testing.T, db *gorm.DB, id uint64, balance int64) models.Creator {
	t.Helper()

	row := models.Creator{
		ID:           id,
		Handle:       fmt.Sprintf("creator_%d", id),
		ReferralCode: fmt.Sprintf("WD%08d", id),
		PayoutUPI:    fmt.Sprintf("creator%d@upi", id),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create creator failed: %v", err)
	}
	account := models.WalletAccount{
		CreatorID: id,
		Balance:   models.NewMoneyFromDecimal(decimal.NewFromInt(balance)),
	}
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("create wallet failed: %v", err)
	}
	return row
}

func TestWithdrawalRequestHappyPath(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createWithdrawalTestCreator(t, db, 100, 500)

	withdrawal, err := svc.Request(WithdrawRequestInput{
		CreatorID: 100,
		Amount:    decimal.NewFromInt(200),
		Method:    constants.PayoutMethodUPI,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if withdrawal.Status != constants.WithdrawStatusPending {
		t.Fatalf("status want pending got %s", withdrawal.Status)
	}
	if withdrawal.Destination != "creator100@upi" {
		t.Fatalf("destination want stored UPI got %s", withdrawal.Destination)
	}

	if got := walletBalance(t, db, 100); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance after debit want 300 got %s", got)
	}

	var txn models.WalletTransaction
	if err := db.Where("creator_id = ? AND type = ?", 100, constants.WalletTxnTypeWithdrawDebit).First(&txn).Error; err != nil {
		t.Fatalf("debit history row missing: %v", err)
	}
	if txn.Direction != constants.WalletTxnDirectionOut {
		t.Fatalf("debit direction want out got %s", txn.Direction)
	}
	if !txn.BalanceAfter.Decimal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance_after want 300 got %s", txn.BalanceAfter.Decimal)
	}
}

func TestWithdrawalRequestInsufficientBeforeMinimum(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createWithdrawalTestCreator(t, db, 101, 50)

	// the balance check wins even though 80 is also below the minimum
	_, err := svc.Request(WithdrawRequestInput{
		CreatorID: 101,
		Amount:    decimal.NewFromInt(80),
		Method:    constants.PayoutMethodUPI,
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance got %v", err)
	}

	createWithdrawalTestCreator(t, db, 102, 500)
	_, err = svc.Request(WithdrawRequestInput{
		CreatorID: 102,
		Amount:    decimal.NewFromInt(50),
		Method:    constants.PayoutMethodUPI,
	})
	if !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("want ErrBelowMinimum got %v", err)
	}
	if got := walletBalance(t, db, 102); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("rejected request must not debit, balance got %s", got)
	}
}

func TestWithdrawalRequestValidation(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	creator := createWithdrawalTestCreator(t, db, 103, 500)

	if _, err := svc.Request(WithdrawRequestInput{CreatorID: 103, Amount: decimal.NewFromInt(200), Method: "cheque"}); !errors.Is(err, ErrInvalidPayoutMethod) {
		t.Fatalf("bad method want ErrInvalidPayoutMethod got %v", err)
	}
	if _, err := svc.Request(WithdrawRequestInput{CreatorID: 103, Amount: decimal.Zero, Method: constants.PayoutMethodUPI}); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("zero amount want ErrInvalidAmount got %v", err)
	}
	if _, err := svc.Request(WithdrawRequestInput{CreatorID: 999999, Amount: decimal.NewFromInt(200), Method: constants.PayoutMethodUPI}); !errors.Is(err, ErrCreatorNotFound) {
		t.Fatalf("unknown creator want ErrCreatorNotFound got %v", err)
	}

	// bank method without stored bank details and without an override
	if _, err := svc.Request(WithdrawRequestInput{CreatorID: creator.ID, Amount: decimal.NewFromInt(200), Method: constants.PayoutMethodBank}); !errors.Is(err, ErrPayoutMethodNotSet) {
		t.Fatalf("missing bank details want ErrPayoutMethodNotSet got %v", err)
	}
}

// createPendingWithdrawal seeds a pending row whose debit is already
// reflected in the creator's seeded balance.
func createPendingWithdrawal(t *testing.T, db *gorm.DB, creatorID uint64, amount int64) *models.Withdrawal {
	t.Helper()

	withdrawal := models.Withdrawal{
		CreatorID:   creatorID,
		Amount:      models.NewMoneyFromDecimal(decimal.NewFromInt(amount)),
		Method:      constants.PayoutMethodUPI,
		Destination: fmt.Sprintf("creator%d@upi", creatorID),
		Status:      constants.WithdrawStatusPending,
	}
	if err := db.Create(&withdrawal).Error; err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	return &withdrawal
}

func TestWithdrawalRequestInlinePayoutWithoutQueue(t *testing.T) {
	provider := &stubPayoutProvider{result: &payout.TransferResult{ReferenceID: "cf-ref-9", Acknowledged: true}}
	svc, db := setupWithdrawalServiceTest(t, provider)
	createWithdrawalTestCreator(t, db, 109, 500)

	// without a queue the provider must still be invoked right away
	withdrawal, err := svc.Request(WithdrawRequestInput{
		CreatorID: 109,
		Amount:    decimal.NewFromInt(200),
		Method:    constants.PayoutMethodUPI,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls want 1 got %d", provider.calls)
	}
	if withdrawal.Status != constants.WithdrawStatusPaid {
		t.Fatalf("status want paid got %s", withdrawal.Status)
	}
	if withdrawal.ExternalRef != "cf-ref-9" {
		t.Fatalf("external ref want cf-ref-9 got %s", withdrawal.ExternalRef)
	}
	if got := walletBalance(t, db, 109); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("paid withdrawal must keep the debit, balance got %s", got)
	}
}

func TestAttemptPayoutSuccess(t *testing.T) {
	provider := &stubPayoutProvider{result: &payout.TransferResult{ReferenceID: "cf-ref-1", Acknowledged: true}}
	svc, db := setupWithdrawalServiceTest(t, provider)
	createWithdrawalTestCreator(t, db, 104, 300)
	withdrawal := createPendingWithdrawal(t, db, 104, 200)

	if err := svc.AttemptPayout(context.Background(), withdrawal.ID); err != nil {
		t.Fatalf("attempt payout failed: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls want 1 got %d", provider.calls)
	}

	reloaded, err := svc.GetByID(withdrawal.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawStatusPaid {
		t.Fatalf("status want paid got %s", reloaded.Status)
	}
	if reloaded.ExternalRef != "cf-ref-1" {
		t.Fatalf("external ref want cf-ref-1 got %s", reloaded.ExternalRef)
	}
	if got := walletBalance(t, db, 104); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("paid withdrawal must keep the debit, balance got %s", got)
	}
}

func TestAttemptPayoutFailureRefunds(t *testing.T) {
	provider := &stubPayoutProvider{err: errors.New("beneficiary invalid")}
	svc, db := setupWithdrawalServiceTest(t, provider)
	createWithdrawalTestCreator(t, db, 105, 300)
	withdrawal := createPendingWithdrawal(t, db, 105, 200)

	if err := svc.AttemptPayout(context.Background(), withdrawal.ID); err != nil {
		t.Fatalf("attempt payout should swallow provider failure: %v", err)
	}

	reloaded, err := svc.GetByID(withdrawal.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Status != constants.WithdrawStatusFailed {
		t.Fatalf("status want failed got %s", reloaded.Status)
	}
	if reloaded.FailureReason != "beneficiary invalid" {
		t.Fatalf("failure reason want provider error got %s", reloaded.FailureReason)
	}
	if got := walletBalance(t, db, 105); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("failed payout must refund, balance got %s", got)
	}

	var refund models.WalletTransaction
	if err := db.Where("creator_id = ? AND type = ?", 105, constants.WalletTxnTypeWithdrawRefund).First(&refund).Error; err != nil {
		t.Fatalf("refund history row missing: %v", err)
	}
}

func TestReconcileTerminalIsNoOp(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createWithdrawalTestCreator(t, db, 106, 500)

	withdrawal, err := svc.Request(WithdrawRequestInput{
		CreatorID: 106,
		Amount:    decimal.NewFromInt(200),
		Method:    constants.PayoutMethodUPI,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	applied, err := svc.Reconcile(withdrawal.ID, true, "cf-ref-2", "")
	if err != nil || !applied {
		t.Fatalf("first reconcile want applied, got applied=%v err=%v", applied, err)
	}

	// replays and late failure callbacks must not move a terminal row
	applied, err = svc.Reconcile(withdrawal.ID, false, "", "late failure")
	if err != nil {
		t.Fatalf("terminal reconcile errored: %v", err)
	}
	if applied {
		t.Fatalf("terminal reconcile must be a no-op")
	}

	applied, err = svc.Reconcile(999999, true, "x", "")
	if err != nil || applied {
		t.Fatalf("unknown id want no-op, got applied=%v err=%v", applied, err)
	}

	if got := walletBalance(t, db, 106); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance after paid reconcile want 300 got %s", got)
	}
}

func TestReconcileRefundReplaySkipsSecondCredit(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createWithdrawalTestCreator(t, db, 110, 300)
	withdrawal := createPendingWithdrawal(t, db, 110, 200)

	applied, err := svc.Reconcile(withdrawal.ID, false, "", "gateway timeout")
	if err != nil || !applied {
		t.Fatalf("first failure want applied, got applied=%v err=%v", applied, err)
	}
	if got := walletBalance(t, db, 110); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("failed payout must refund, balance got %s", got)
	}

	// simulate a replay where the status write was lost after the refund
	if err := db.Model(&models.Withdrawal{}).Where("id = ?", withdrawal.ID).
		Update("status", constants.WithdrawStatusPending).Error; err != nil {
		t.Fatalf("reset status failed: %v", err)
	}
	applied, err = svc.Reconcile(withdrawal.ID, false, "", "gateway timeout")
	if err != nil || !applied {
		t.Fatalf("replayed failure want applied, got applied=%v err=%v", applied, err)
	}
	if got := walletBalance(t, db, 110); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("replayed refund must not credit twice, balance got %s", got)
	}

	var refunds int64
	if err := db.Model(&models.WalletTransaction{}).
		Where("creator_id = ? AND type = ?", 110, constants.WalletTxnTypeWithdrawRefund).
		Count(&refunds).Error; err != nil {
		t.Fatalf("count refunds failed: %v", err)
	}
	if refunds != 1 {
		t.Fatalf("refund history rows want 1 got %d", refunds)
	}
}

func TestAdminOverrideReject(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createWithdrawalTestCreator(t, db, 107, 500)

	withdrawal, err := svc.Request(WithdrawRequestInput{
		CreatorID: 107,
		Amount:    decimal.NewFromInt(200),
		Method:    constants.PayoutMethodUPI,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	reviewed, err := svc.AdminOverride(withdrawal.ID, constants.ReviewActionReject, 7, "kyc mismatch")
	if err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if reviewed.Status != constants.WithdrawStatusRejected {
		t.Fatalf("status want rejected got %s", reviewed.Status)
	}
	if reviewed.ProcessedBy == nil || *reviewed.ProcessedBy != 7 {
		t.Fatalf("processed_by want 7 got %v", reviewed.ProcessedBy)
	}
	if reviewed.FailureReason != "kyc mismatch" {
		t.Fatalf("failure reason want kyc mismatch got %s", reviewed.FailureReason)
	}
	if got := walletBalance(t, db, 107); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("reject must refund, balance got %s", got)
	}
}

func TestAdminOverrideErrors(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t, nil)
	createWithdrawalTestCreator(t, db, 108, 500)

	withdrawal, err := svc.Request(WithdrawRequestInput{
		CreatorID: 108,
		Amount:    decimal.NewFromInt(200),
		Method:    constants.PayoutMethodUPI,
	})
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if _, err := svc.AdminOverride(withdrawal.ID, "escalate", 7, ""); !errors.Is(err, ErrInvalidReviewAction) {
		t.Fatalf("bad action want ErrInvalidReviewAction got %v", err)
	}
	if _, err := svc.AdminOverride(999999, constants.ReviewActionApprove, 7, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id want ErrNotFound got %v", err)
	}

	if _, err := svc.AdminOverride(withdrawal.ID, constants.ReviewActionApprove, 7, ""); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.AdminOverride(withdrawal.ID, constants.ReviewActionReject, 7, ""); !errors.Is(err, ErrWithdrawalNotPending) {
		t.Fatalf("double review want ErrWithdrawalNotPending got %v", err)
	}
}
