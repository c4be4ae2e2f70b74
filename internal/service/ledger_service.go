package service

import (
	"strings"

	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService revenue split settlement engine
type LedgerService struct {
	repo          repository.LedgerRepository
	linkRepo      repository.LinkRepository
	creatorRepo   repository.CreatorRepository
	walletRepo    repository.WalletRepository
	commissionPct decimal.Decimal
	referralPct   decimal.Decimal
}

// NewLedgerService creates a ledger service
func NewLedgerService(
	repo repository.LedgerRepository,
	linkRepo repository.LinkRepository,
	creatorRepo repository.CreatorRepository,
	walletRepo repository.WalletRepository,
	cfg *config.LedgerConfig,
) *LedgerService {
	commissionPct := decimal.NewFromInt(10)
	referralPct := decimal.NewFromInt(5)
	if cfg != nil {
		if cfg.CommissionPct >= 0 {
			commissionPct = decimal.NewFromFloat(cfg.CommissionPct)
		}
		if cfg.ReferralPct >= 0 {
			referralPct = decimal.NewFromFloat(cfg.ReferralPct)
		}
	}
	return &LedgerService{
		repo:          repo,
		linkRepo:      linkRepo,
		creatorRepo:   creatorRepo,
		walletRepo:    walletRepo,
		commissionPct: commissionPct,
		referralPct:   referralPct,
	}
}

// SettlementInput one confirmed gateway payment
type SettlementInput struct {
	EventID  string
	BuyerID  uint64
	LinkCode string
	Gross    decimal.Decimal
}

// SettlementResult settlement outcome; Duplicate marks a replayed event
type SettlementResult struct {
	Transaction *models.UnlockTransaction
	Duplicate   bool
}

// SettlePayment splits one gross payment among creator, platform and
// referrer and applies every resulting balance change in one transaction.
// Replayed event ids return the prior settlement without error.
func (s *LedgerService) SettlePayment(input SettlementInput) (*SettlementResult, error) {
	eventID := strings.TrimSpace(input.EventID)
	if eventID == "" {
		return nil, ErrInvalidEvent
	}
	gross := input.Gross.Round(2)
	if gross.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	// validation reads happen outside the write transaction
	link, err := s.linkRepo.GetByCode(input.LinkCode)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrUnknownLink
	}
	owner, err := s.creatorRepo.GetByID(link.CreatorID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrOrphanedLink
	}

	prior, err := s.repo.GetByEventID(eventID)
	if err != nil {
		return nil, err
	}
	if prior != nil {
		return &SettlementResult{Transaction: prior, Duplicate: true}, nil
	}

	// platform takes its commission first, creator keeps the remainder
	hundred := decimal.NewFromInt(100)
	platformGross := gross.Mul(s.commissionPct).Div(hundred).RoundDown(2)
	creatorShare := gross.Sub(platformGross)

	// referral share is carved out of the platform commission, never the
	// creator share, and is capped by the commission itself
	referrerShare := decimal.Zero
	var referrer *models.Creator
	if owner.ReferredBy != "" {
		referrer, err = s.creatorRepo.GetByReferralCode(owner.ReferredBy)
		if err != nil {
			return nil, err
		}
		if referrer != nil && referrer.ID == owner.ID {
			referrer = nil
		}
		if referrer != nil {
			referrerShare = gross.Mul(s.referralPct).Div(hundred).RoundDown(2)
			if referrerShare.GreaterThan(platformGross) {
				referrerShare = platformGross
			}
		}
	}
	platformNet := platformGross.Sub(referrerShare)

	record := &models.UnlockTransaction{
		EventID:       eventID,
		LinkID:        link.ID,
		LinkCode:      link.Code,
		BuyerID:       input.BuyerID,
		CreatorID:     owner.ID,
		Gross:         models.NewMoneyFromDecimal(gross),
		CreatorShare:  models.NewMoneyFromDecimal(creatorShare),
		PlatformShare: models.NewMoneyFromDecimal(platformNet),
		ReferralShare: models.NewMoneyFromDecimal(referrerShare),
	}
	if referrer != nil {
		referrerID := referrer.ID
		record.ReferrerID = &referrerID
	}

	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		walletTx := s.walletRepo.WithTx(tx)
		linkTx := s.linkRepo.WithTx(tx)

		// the unique event_id index is the dedupe backstop for races
		if err := repoTx.CreateUnlockTransaction(record); err != nil {
			return err
		}

		if err := s.creditInTx(walletTx, owner.ID, creatorShare, decimal.Zero, record.ID); err != nil {
			return err
		}
		if referrer != nil && referrerShare.GreaterThan(decimal.Zero) {
			if err := s.creditInTx(walletTx, referrer.ID, decimal.Zero, referrerShare, record.ID); err != nil {
				return err
			}
		}

		if _, err := repoTx.EnsurePlatformAccount(); err != nil {
			return err
		}
		if _, err := repoTx.GetPlatformAccountForUpdate(); err != nil {
			return err
		}
		if err := repoTx.IncrementPlatformAccount(
			models.NewMoneyFromDecimal(platformNet),
			models.NewMoneyFromDecimal(referrerShare),
		); err != nil {
			return err
		}

		// relock the link row so concurrent settlements on the same code
		// serialize before the counter bump
		locked, err := linkTx.GetByCodeForUpdate(link.Code)
		if err != nil {
			return err
		}
		if locked == nil {
			return ErrUnknownLink
		}
		return linkTx.IncrementCounters(tx, locked.ID, models.NewMoneyFromDecimal(gross))
	})
	if err != nil {
		if isUniqueViolation(err) {
			prior, lookupErr := s.repo.GetByEventID(eventID)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if prior != nil {
				return &SettlementResult{Transaction: prior, Duplicate: true}, nil
			}
		}
		return nil, err
	}

	logger.Infow("payment_settled",
		"event_id", eventID,
		"link_code", link.Code,
		"creator_id", owner.ID,
		"gross", gross.StringFixed(2),
		"creator_share", creatorShare.StringFixed(2),
		"platform_share", platformNet.StringFixed(2),
		"referral_share", referrerShare.StringFixed(2),
	)
	return &SettlementResult{Transaction: record}, nil
}

// creditInTx credits a wallet and appends the matching history rows.
// The account is created on first touch.
func (s *LedgerService) creditInTx(walletTx *repository.GormWalletRepository, creatorID uint64, saleAmount, referralAmount decimal.Decimal, settlementID uint) error {
	account, err := walletTx.GetAccountByCreatorIDForUpdate(creatorID)
	if err != nil {
		return err
	}
	if account == nil {
		zero := models.NewMoneyFromDecimal(decimal.Zero)
		account = &models.WalletAccount{
			CreatorID:      creatorID,
			Balance:        zero,
			TotalEarned:    zero,
			ReferralEarned: zero,
		}
		if err := walletTx.CreateAccount(account); err != nil {
			return err
		}
	}

	total := saleAmount.Add(referralAmount)
	if total.LessThanOrEqual(decimal.Zero) {
		return nil
	}
	if err := walletTx.IncrementAccount(
		creatorID,
		models.NewMoneyFromDecimal(total),
		models.NewMoneyFromDecimal(saleAmount),
		models.NewMoneyFromDecimal(referralAmount),
	); err != nil {
		return err
	}
	account, err = walletTx.GetAccountByCreatorID(creatorID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrNotFound
	}

	txnType := constants.WalletTxnTypeSale
	if referralAmount.GreaterThan(decimal.Zero) {
		txnType = constants.WalletTxnTypeReferral
	}
	return walletTx.CreateTransaction(&models.WalletTransaction{
		CreatorID:    creatorID,
		Type:         txnType,
		Direction:    constants.WalletTxnDirectionIn,
		Amount:       models.NewMoneyFromDecimal(total),
		BalanceAfter: account.Balance,
		Reference:    buildWalletReference(txnType, creatorID, settlementID),
	})
}

// PlatformStats platform wide aggregates for the admin dashboard
type PlatformStats struct {
	TotalEarnings     models.Money `json:"total_earnings"`
	TotalReferralPaid models.Money `json:"total_referral_paid"`
	CreatorCount      int64        `json:"creator_count"`
}

// GetPlatformStats reports the platform aggregate and creator count
func (s *LedgerService) GetPlatformStats() (*PlatformStats, error) {
	account, err := s.repo.GetPlatformAccount()
	if err != nil {
		return nil, err
	}
	stats := &PlatformStats{
		TotalEarnings:     models.NewMoneyFromDecimal(decimal.Zero),
		TotalReferralPaid: models.NewMoneyFromDecimal(decimal.Zero),
	}
	if account != nil {
		stats.TotalEarnings = account.TotalEarnings
		stats.TotalReferralPaid = account.TotalReferralPaid
	}
	count, err := s.creatorRepo.Count()
	if err != nil {
		return nil, err
	}
	stats.CreatorCount = count
	return stats, nil
}
