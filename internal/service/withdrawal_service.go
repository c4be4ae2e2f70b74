package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/payout"
	"github.com/telelink-next/internal/queue"
	"github.com/telelink-next/internal/repository"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService withdrawal request and payout state machine
type WithdrawalService struct {
	repo          repository.WithdrawalRepository
	walletRepo    repository.WalletRepository
	creatorRepo   repository.CreatorRepository
	provider      payout.Provider
	queueClient   *queue.Client
	notifier      *NotificationService
	minWithdrawal decimal.Decimal
	payoutTimeout time.Duration
}

// NewWithdrawalService creates a withdrawal service
func NewWithdrawalService(
	repo repository.WithdrawalRepository,
	walletRepo repository.WalletRepository,
	creatorRepo repository.CreatorRepository,
	provider payout.Provider,
	queueClient *queue.Client,
	notifier *NotificationService,
	ledgerCfg *config.LedgerConfig,
	payoutCfg *config.PayoutConfig,
) *WithdrawalService {
	minWithdrawal := decimal.NewFromInt(100)
	if ledgerCfg != nil && ledgerCfg.MinWithdrawal > 0 {
		minWithdrawal = decimal.NewFromFloat(ledgerCfg.MinWithdrawal)
	}
	payoutTimeout := 15 * time.Second
	if payoutCfg != nil && payoutCfg.TimeoutSeconds > 0 {
		payoutTimeout = time.Duration(payoutCfg.TimeoutSeconds) * time.Second
	}
	return &WithdrawalService{
		repo:          repo,
		walletRepo:    walletRepo,
		creatorRepo:   creatorRepo,
		provider:      provider,
		queueClient:   queueClient,
		notifier:      notifier,
		minWithdrawal: minWithdrawal,
		payoutTimeout: payoutTimeout,
	}
}

// WithdrawRequestInput withdrawal request input
type WithdrawRequestInput struct {
	CreatorID   uint64
	Amount      decimal.Decimal
	Method      string
	Destination string // optional, falls back to the creator's stored payout method
}

// Request debits the wallet optimistically and records a pending
// withdrawal. The insufficiency check runs before the minimum check so
// a broke creator always learns about the balance first.
func (s *WithdrawalService) Request(input WithdrawRequestInput) (*models.Withdrawal, error) {
	method := strings.ToLower(strings.TrimSpace(input.Method))
	if method != constants.PayoutMethodUPI && method != constants.PayoutMethodBank {
		return nil, ErrInvalidPayoutMethod
	}
	amount := input.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	creator, err := s.creatorRepo.GetByID(input.CreatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}
	destination, err := resolveDestination(creator, method, input.Destination)
	if err != nil {
		return nil, err
	}

	var withdrawal *models.Withdrawal
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		walletTx := s.walletRepo.WithTx(tx)

		account, err := walletTx.GetAccountByCreatorIDForUpdate(input.CreatorID)
		if err != nil {
			return err
		}
		if account == nil || account.Balance.Decimal.LessThan(amount) {
			return ErrInsufficientBalance
		}
		if amount.LessThan(s.minWithdrawal) {
			return ErrBelowMinimum
		}

		debited, err := walletTx.DebitBalanceIfSufficient(input.CreatorID, models.NewMoneyFromDecimal(amount))
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientBalance
		}

		withdrawal = &models.Withdrawal{
			CreatorID:   input.CreatorID,
			Amount:      models.NewMoneyFromDecimal(amount),
			Method:      method,
			Destination: destination,
			Status:      constants.WithdrawStatusPending,
		}
		if err := repoTx.Create(withdrawal); err != nil {
			return err
		}

		balanceAfter := account.Balance.Decimal.Sub(amount)
		return walletTx.CreateTransaction(&models.WalletTransaction{
			CreatorID:    input.CreatorID,
			Type:         constants.WalletTxnTypeWithdrawDebit,
			Direction:    constants.WalletTxnDirectionOut,
			Amount:       models.NewMoneyFromDecimal(amount),
			BalanceAfter: models.NewMoneyFromDecimal(balanceAfter),
			Reference:    buildWalletReference(constants.WalletTxnTypeWithdrawDebit, input.CreatorID, withdrawal.ID),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_requested",
		"withdrawal_id", withdrawal.ID,
		"creator_id", input.CreatorID,
		"amount", amount.StringFixed(2),
		"method", method,
	)
	s.notifyStatus(withdrawal.ID, constants.WithdrawStatusPending)

	if s.queueClient.Enabled() {
		if err := s.queueClient.EnqueueWithdrawalPayout(queue.WithdrawalPayoutPayload{WithdrawalID: withdrawal.ID}, asynq.MaxRetry(3)); err != nil {
			logger.Warnw("withdrawal_payout_enqueue_failed", "withdrawal_id", withdrawal.ID, "error", err)
		}
		return withdrawal, nil
	}
	// no queue to carry the attempt, run the provider inline
	if s.provider != nil {
		if err := s.AttemptPayout(context.Background(), withdrawal.ID); err != nil {
			logger.Warnw("withdrawal_payout_inline_failed", "withdrawal_id", withdrawal.ID, "error", err)
		}
		if updated, err := s.repo.GetByID(withdrawal.ID); err == nil && updated != nil {
			withdrawal = updated
		}
	}
	return withdrawal, nil
}

// AttemptPayout pushes a pending withdrawal through the payout provider.
// Provider failure or timeout resolves to failed, which refunds the debit.
func (s *WithdrawalService) AttemptPayout(ctx context.Context, withdrawalID uint) error {
	withdrawal, err := s.repo.GetByID(withdrawalID)
	if err != nil {
		return err
	}
	if withdrawal == nil || withdrawal.Status != constants.WithdrawStatusPending {
		logger.Debugw("withdrawal_payout_skip", "withdrawal_id", withdrawalID)
		return nil
	}
	if s.provider == nil {
		// no provider configured, leave the row pending for manual review
		logger.Warnw("withdrawal_payout_no_provider", "withdrawal_id", withdrawalID)
		return nil
	}

	name := ""
	creator, err := s.creatorRepo.GetByID(withdrawal.CreatorID)
	if err != nil {
		return err
	}
	if creator != nil {
		name = creator.Handle
	}

	callCtx, cancel := context.WithTimeout(ctx, s.payoutTimeout)
	defer cancel()
	result, sendErr := s.provider.Send(callCtx, payout.TransferInput{
		TransferID:  fmt.Sprintf("%s%d", constants.PayoutTransferPrefix, withdrawal.ID),
		Method:      withdrawal.Method,
		Destination: withdrawal.Destination,
		Amount:      withdrawal.Amount.Decimal,
		Name:        name,
	})
	if sendErr != nil {
		logger.Warnw("withdrawal_payout_failed",
			"withdrawal_id", withdrawal.ID,
			"creator_id", withdrawal.CreatorID,
			"error", sendErr,
		)
		_, err := s.Reconcile(withdrawal.ID, false, "", sendErr.Error())
		return err
	}

	_, err = s.Reconcile(withdrawal.ID, true, result.ReferenceID, "")
	return err
}

// Reconcile moves a pending withdrawal to paid or failed. A failed
// outcome refunds the optimistic debit. Unknown ids and rows already in
// a terminal state are an idempotent no-op.
func (s *WithdrawalService) Reconcile(withdrawalID uint, success bool, externalRef, failureReason string) (bool, error) {
	applied := false
	var status string
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		withdrawal, err := repoTx.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if withdrawal == nil || withdrawal.Status != constants.WithdrawStatusPending {
			return nil
		}

		now := time.Now()
		withdrawal.ProcessedAt = &now
		if success {
			withdrawal.Status = constants.WithdrawStatusPaid
			withdrawal.ExternalRef = strings.TrimSpace(externalRef)
		} else {
			withdrawal.Status = constants.WithdrawStatusFailed
			withdrawal.FailureReason = strings.TrimSpace(failureReason)
			if err := s.refundInTx(tx, withdrawal); err != nil {
				return err
			}
		}
		if err := repoTx.Update(withdrawal); err != nil {
			return err
		}
		applied = true
		status = withdrawal.Status
		return nil
	})
	if err != nil {
		return false, err
	}
	if applied {
		logger.Infow("withdrawal_reconciled",
			"withdrawal_id", withdrawalID,
			"status", status,
			"external_ref", externalRef,
		)
		s.notifyStatus(withdrawalID, status)
	}
	return applied, nil
}

// AdminOverride resolves a pending withdrawal by hand. A reject refunds
// the debit; both outcomes record the acting admin.
func (s *WithdrawalService) AdminOverride(withdrawalID uint, action string, adminID uint, reason string) (*models.Withdrawal, error) {
	act := strings.ToLower(strings.TrimSpace(action))
	if act != constants.ReviewActionApprove && act != constants.ReviewActionReject {
		return nil, ErrInvalidReviewAction
	}

	var status string
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		withdrawal, err := repoTx.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if withdrawal == nil {
			return ErrNotFound
		}
		if withdrawal.Status != constants.WithdrawStatusPending {
			return ErrWithdrawalNotPending
		}

		now := time.Now()
		withdrawal.ProcessedBy = &adminID
		withdrawal.ProcessedAt = &now
		if act == constants.ReviewActionApprove {
			withdrawal.Status = constants.WithdrawStatusPaid
			withdrawal.ExternalRef = strings.TrimSpace(reason)
		} else {
			withdrawal.Status = constants.WithdrawStatusRejected
			withdrawal.FailureReason = strings.TrimSpace(reason)
			if err := s.refundInTx(tx, withdrawal); err != nil {
				return err
			}
		}
		status = withdrawal.Status
		return repoTx.Update(withdrawal)
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("withdrawal_reviewed",
		"withdrawal_id", withdrawalID,
		"action", act,
		"admin_id", adminID,
	)
	s.notifyStatus(withdrawalID, status)
	return s.repo.GetByID(withdrawalID)
}

// GetByID fetches one withdrawal
func (s *WithdrawalService) GetByID(id uint) (*models.Withdrawal, error) {
	return s.repo.GetByID(id)
}

// List pages through withdrawals
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.Withdrawal, int64, error) {
	return s.repo.List(filter)
}

// refundInTx credits the debited amount back and appends the history row
func (s *WithdrawalService) refundInTx(tx *gorm.DB, withdrawal *models.Withdrawal) error {
	walletTx := s.walletRepo.WithTx(tx)
	reference := buildWalletReference(constants.WalletTxnTypeWithdrawRefund, withdrawal.CreatorID, withdrawal.ID)
	// a replayed failure must not refund twice
	prior, err := walletTx.GetTransactionByReference(reference)
	if err != nil {
		return err
	}
	if prior != nil {
		return nil
	}
	account, err := walletTx.GetAccountByCreatorIDForUpdate(withdrawal.CreatorID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}
	if err := walletTx.IncrementAccount(
		withdrawal.CreatorID,
		withdrawal.Amount,
		models.NewMoneyFromDecimal(decimal.Zero),
		models.NewMoneyFromDecimal(decimal.Zero),
	); err != nil {
		return err
	}
	balanceAfter := account.Balance.Decimal.Add(withdrawal.Amount.Decimal)
	return walletTx.CreateTransaction(&models.WalletTransaction{
		CreatorID:    withdrawal.CreatorID,
		Type:         constants.WalletTxnTypeWithdrawRefund,
		Direction:    constants.WalletTxnDirectionIn,
		Amount:       withdrawal.Amount,
		BalanceAfter: models.NewMoneyFromDecimal(balanceAfter),
		Reference:    reference,
	})
}

func (s *WithdrawalService) notifyStatus(withdrawalID uint, status string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Enqueue(withdrawalID, status); err != nil {
		logger.Warnw("withdrawal_notify_enqueue_failed", "withdrawal_id", withdrawalID, "error", err)
	}
}

// resolveDestination snapshots the payout destination for one request
func resolveDestination(creator *models.Creator, method, override string) (string, error) {
	destination := strings.TrimSpace(override)
	if destination != "" {
		return destination, nil
	}
	switch method {
	case constants.PayoutMethodUPI:
		if creator.PayoutUPI == "" {
			return "", ErrPayoutMethodNotSet
		}
		return creator.PayoutUPI, nil
	case constants.PayoutMethodBank:
		if creator.PayoutBankAccount == "" || creator.PayoutBankIFSC == "" {
			return "", ErrPayoutMethodNotSet
		}
		return creator.PayoutBankIFSC + "|" + creator.PayoutBankAccount, nil
	default:
		return "", ErrInvalidPayoutMethod
	}
}
