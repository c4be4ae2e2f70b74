package service

import (
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/repository"

	"github.com/shopspring/decimal"
)

// WalletService read side of the creator wallet
type WalletService struct {
	walletRepo     repository.WalletRepository
	ledgerRepo     repository.LedgerRepository
	withdrawalRepo repository.WithdrawalRepository
	creatorRepo    repository.CreatorRepository
}

// NewWalletService creates a wallet service
func NewWalletService(
	walletRepo repository.WalletRepository,
	ledgerRepo repository.LedgerRepository,
	withdrawalRepo repository.WithdrawalRepository,
	creatorRepo repository.CreatorRepository,
) *WalletService {
	return &WalletService{
		walletRepo:     walletRepo,
		ledgerRepo:     ledgerRepo,
		withdrawalRepo: withdrawalRepo,
		creatorRepo:    creatorRepo,
	}
}

// GetWallet returns the wallet account, creating it on first touch
func (s *WalletService) GetWallet(creatorID uint64) (*models.WalletAccount, error) {
	creator, err := s.creatorRepo.GetByID(creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}
	account, err := s.walletRepo.GetAccountByCreatorID(creatorID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	zero := models.NewMoneyFromDecimal(decimal.Zero)
	account = &models.WalletAccount{
		CreatorID:      creatorID,
		Balance:        zero,
		TotalEarned:    zero,
		ReferralEarned: zero,
	}
	if err := s.walletRepo.CreateAccount(account); err != nil {
		if isUniqueViolation(err) {
			return s.walletRepo.GetAccountByCreatorID(creatorID)
		}
		return nil, err
	}
	return account, nil
}

// CreatorStats aggregated sales numbers for one creator
type CreatorStats struct {
	TotalSales        int64        `json:"total_sales"`
	TotalRevenue      models.Money `json:"total_revenue"`
	CreatorShareTotal models.Money `json:"creator_share_total"`
}

// GetCreatorStats aggregates settled sales for one creator
func (s *WalletService) GetCreatorStats(creatorID uint64) (*CreatorStats, error) {
	creator, err := s.creatorRepo.GetByID(creatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}
	raw, err := s.ledgerRepo.CreatorStats(creatorID)
	if err != nil {
		return nil, err
	}
	return &CreatorStats{
		TotalSales:        raw.TotalSales,
		TotalRevenue:      models.NewMoneyFromDecimal(raw.TotalRevenue),
		CreatorShareTotal: models.NewMoneyFromDecimal(raw.CreatorShareTotal),
	}, nil
}

// ListTransactions pages through a creator's wallet history
func (s *WalletService) ListTransactions(creatorID uint64, page, pageSize int) ([]models.WalletTransaction, int64, error) {
	if creatorID == 0 {
		return []models.WalletTransaction{}, 0, nil
	}
	return s.walletRepo.ListTransactions(repository.WalletTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		CreatorID: creatorID,
	})
}

// ListWithdrawals pages through a creator's withdrawals
func (s *WalletService) ListWithdrawals(creatorID uint64, page, pageSize int) ([]models.Withdrawal, int64, error) {
	if creatorID == 0 {
		return []models.Withdrawal{}, 0, nil
	}
	return s.withdrawalRepo.List(repository.WithdrawalListFilter{
		Page:      page,
		PageSize:  pageSize,
		CreatorID: creatorID,
	})
}
