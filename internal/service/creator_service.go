package service

import (
	"strings"

	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CreatorService creator directory operations
type CreatorService struct {
	repo       repository.CreatorRepository
	walletRepo repository.WalletRepository
}

// NewCreatorService creates a creator service
func NewCreatorService(repo repository.CreatorRepository, walletRepo repository.WalletRepository) *CreatorService {
	return &CreatorService{
		repo:       repo,
		walletRepo: walletRepo,
	}
}

// CreatorRegisterInput registration input
type CreatorRegisterInput struct {
	ID         uint64
	Handle     string
	ReferredBy string
}

// RegisterOrUpdate registers a creator or refreshes an existing row.
// Registration is idempotent; referred_by is recorded verbatim and only
// on the first write that carries it.
func (s *CreatorService) RegisterOrUpdate(input CreatorRegisterInput) (*models.Creator, error) {
	if input.ID == 0 {
		return nil, ErrCreatorNotFound
	}
	handle := strings.TrimSpace(input.Handle)
	referredBy := strings.TrimSpace(input.ReferredBy)

	existing, err := s.repo.GetByID(input.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		fields := map[string]interface{}{}
		if handle != "" && handle != existing.Handle {
			fields["handle"] = handle
		}
		if existing.ReferredBy == "" && referredBy != "" && referredBy != existing.ReferralCode {
			fields["referred_by"] = referredBy
		}
		if len(fields) > 0 {
			if err := s.repo.UpdateFields(input.ID, fields); err != nil {
				return nil, err
			}
		}
		if existing.ReferralCode == "" {
			return s.healReferralCode(input.ID)
		}
		if len(fields) > 0 {
			return s.repo.GetByID(input.ID)
		}
		return existing, nil
	}

	var created *models.Creator
	for i := 0; i < constants.CodeMaxRetries; i++ {
		code, genErr := generateShortCode()
		if genErr != nil {
			return nil, genErr
		}
		creator := &models.Creator{
			ID:           input.ID,
			Handle:       handle,
			ReferralCode: code,
			ReferredBy:   referredBy,
		}
		if err := s.repo.Create(creator); err != nil {
			if isUniqueViolation(err) {
				// either a referral code collision or a concurrent registration
				other, lookupErr := s.repo.GetByID(input.ID)
				if lookupErr != nil {
					return nil, lookupErr
				}
				if other != nil {
					return other, nil
				}
				continue
			}
			return nil, err
		}
		created = creator
		break
	}
	if created == nil {
		return nil, ErrCodeExhausted
	}

	if err := s.ensureWalletAccount(created.ID); err != nil {
		return nil, err
	}
	logger.Infow("creator_registered", "creator_id", created.ID, "referred_by", created.ReferredBy)
	return created, nil
}

// GetByID fetches a creator, healing a missing referral code on the way out
func (s *CreatorService) GetByID(id uint64) (*models.Creator, error) {
	creator, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, nil
	}
	if creator.ReferralCode == "" {
		return s.healReferralCode(id)
	}
	return creator, nil
}

// GetByReferralCode resolves a referral code; a miss returns nil, not an error
func (s *CreatorService) GetByReferralCode(code string) (*models.Creator, error) {
	return s.repo.GetByReferralCode(code)
}

// CreatorPayoutInput payout destination input, empty fields keep prior values
type CreatorPayoutInput struct {
	UPI         string
	BankAccount string
	BankIFSC    string
}

// SetPayoutMethod updates payout destinations, last write wins per field
func (s *CreatorService) SetPayoutMethod(id uint64, input CreatorPayoutInput) (*models.Creator, error) {
	creator, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}

	upi := strings.TrimSpace(input.UPI)
	bankAccount := strings.TrimSpace(input.BankAccount)
	bankIFSC := strings.TrimSpace(input.BankIFSC)
	if upi == "" && bankAccount == "" && bankIFSC == "" {
		return nil, ErrInvalidPayoutMethod
	}
	// bank details always travel as a pair
	if (bankAccount == "") != (bankIFSC == "") {
		return nil, ErrInvalidPayoutMethod
	}

	fields := map[string]interface{}{}
	if upi != "" {
		fields["payout_upi"] = upi
	}
	if bankAccount != "" {
		fields["payout_bank_account"] = bankAccount
		fields["payout_bank_ifsc"] = bankIFSC
	}
	if err := s.repo.UpdateFields(id, fields); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

// healReferralCode assigns a fresh unique code to a row that lost one
func (s *CreatorService) healReferralCode(id uint64) (*models.Creator, error) {
	for i := 0; i < constants.CodeMaxRetries; i++ {
		code, err := generateShortCode()
		if err != nil {
			return nil, err
		}
		if err := s.repo.UpdateFields(id, map[string]interface{}{"referral_code": code}); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		logger.Infow("creator_referral_code_healed", "creator_id", id)
		return s.repo.GetByID(id)
	}
	return nil, ErrCodeExhausted
}

func (s *CreatorService) ensureWalletAccount(creatorID uint64) error {
	account, err := s.walletRepo.GetAccountByCreatorID(creatorID)
	if err != nil {
		return err
	}
	if account != nil {
		return nil
	}
	zero := models.NewMoneyFromDecimal(decimal.Zero)
	err = s.walletRepo.CreateAccount(&models.WalletAccount{
		CreatorID:      creatorID,
		Balance:        zero,
		TotalEarned:    zero,
		ReferralEarned: zero,
	})
	if err != nil && isUniqueViolation(err) {
		return nil
	}
	return err
}
