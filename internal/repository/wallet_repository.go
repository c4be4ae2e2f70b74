package repository

import (
	"errors"
	"strings"

	"github.com/telelink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository wallet data access interface
type WalletRepository interface {
	GetAccountByCreatorID(creatorID uint64) (*models.WalletAccount, error)
	GetAccountByCreatorIDForUpdate(creatorID uint64) (*models.WalletAccount, error)
	CreateAccount(account *models.WalletAccount) error
	IncrementAccount(creatorID uint64, balanceDelta, totalEarnedDelta, referralEarnedDelta models.Money) error
	DebitBalanceIfSufficient(creatorID uint64, amount models.Money) (bool, error)
	CreateTransaction(txn *models.WalletTransaction) error
	GetTransactionByReference(reference string) (*models.WalletTransaction, error)
	ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error)
	WithTx(tx *gorm.DB) *GormWalletRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormWalletRepository GORM implementation
type GormWalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a wallet repository
func NewWalletRepository(db *gorm.DB) *GormWalletRepository {
	return &GormWalletRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormWalletRepository) WithTx(tx *gorm.DB) *GormWalletRepository {
	if tx == nil {
		return r
	}
	return &GormWalletRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormWalletRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetAccountByCreatorID fetches a wallet account by creator id
func (r *GormWalletRepository) GetAccountByCreatorID(creatorID uint64) (*models.WalletAccount, error) {
	if creatorID == 0 {
		return nil, nil
	}
	var account models.WalletAccount
	if err := r.db.Where("creator_id = ?", creatorID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByCreatorIDForUpdate fetches a wallet account with a row lock
func (r *GormWalletRepository) GetAccountByCreatorIDForUpdate(creatorID uint64) (*models.WalletAccount, error) {
	if creatorID == 0 {
		return nil, nil
	}
	var account models.WalletAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("creator_id = ?", creatorID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// CreateAccount inserts a wallet account
func (r *GormWalletRepository) CreateAccount(account *models.WalletAccount) error {
	return r.db.Create(account).Error
}

// IncrementAccount applies balance deltas in a single atomic update
func (r *GormWalletRepository) IncrementAccount(creatorID uint64, balanceDelta, totalEarnedDelta, referralEarnedDelta models.Money) error {
	if creatorID == 0 {
		return nil
	}
	updates := map[string]interface{}{}
	if !balanceDelta.IsZero() {
		updates["balance"] = gorm.Expr("balance + ?", balanceDelta)
	}
	if !totalEarnedDelta.IsZero() {
		updates["total_earned"] = gorm.Expr("total_earned + ?", totalEarnedDelta)
	}
	if !referralEarnedDelta.IsZero() {
		updates["referral_earned"] = gorm.Expr("referral_earned + ?", referralEarnedDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.WalletAccount{}).
		Where("creator_id = ?", creatorID).
		Updates(updates).Error
}

// DebitBalanceIfSufficient debits the balance only when it covers the amount
func (r *GormWalletRepository) DebitBalanceIfSufficient(creatorID uint64, amount models.Money) (bool, error) {
	if creatorID == 0 {
		return false, nil
	}
	result := r.db.Model(&models.WalletAccount{}).
		Where("creator_id = ? AND balance >= ?", creatorID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// CreateTransaction inserts a wallet history row
func (r *GormWalletRepository) CreateTransaction(txn *models.WalletTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference fetches a wallet history row by reference
func (r *GormWalletRepository) GetTransactionByReference(reference string) (*models.WalletTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.WalletTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions queries wallet history with pagination
func (r *GormWalletRepository) ListTransactions(filter WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	query := r.db.Model(&models.WalletTransaction{})
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.WalletTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
