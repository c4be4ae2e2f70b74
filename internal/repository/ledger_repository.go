package repository

import (
	"errors"
	"strings"

	"github.com/telelink-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatorLedgerStats aggregate sales numbers for one creator
type CreatorLedgerStats struct {
	TotalSales        int64           `json:"total_sales"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	CreatorShareTotal decimal.Decimal `json:"creator_share_total"`
}

// LedgerRepository settlement data access interface
type LedgerRepository interface {
	CreateUnlockTransaction(txn *models.UnlockTransaction) error
	GetByEventID(eventID string) (*models.UnlockTransaction, error)
	ListUnlockTransactions(filter UnlockTransactionListFilter) ([]models.UnlockTransaction, int64, error)
	CreatorStats(creatorID uint64) (*CreatorLedgerStats, error)
	GetPlatformAccount() (*models.PlatformAccount, error)
	GetPlatformAccountForUpdate() (*models.PlatformAccount, error)
	EnsurePlatformAccount() (*models.PlatformAccount, error)
	IncrementPlatformAccount(earningsDelta, referralPaidDelta models.Money) error
	WithTx(tx *gorm.DB) *GormLedgerRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormLedgerRepository GORM implementation
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a ledger repository
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) *GormLedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormLedgerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// CreateUnlockTransaction inserts a settlement record
func (r *GormLedgerRepository) CreateUnlockTransaction(txn *models.UnlockTransaction) error {
	return r.db.Create(txn).Error
}

// GetByEventID fetches a settlement record by gateway event id
func (r *GormLedgerRepository) GetByEventID(eventID string) (*models.UnlockTransaction, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil
	}
	var txn models.UnlockTransaction
	if err := r.db.Where("event_id = ?", eventID).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListUnlockTransactions queries settlement records with pagination
func (r *GormLedgerRepository) ListUnlockTransactions(filter UnlockTransactionListFilter) ([]models.UnlockTransaction, int64, error) {
	query := r.db.Model(&models.UnlockTransaction{})
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.LinkID != 0 {
		query = query.Where("link_id = ?", filter.LinkID)
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

	var txns []models.UnlockTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// CreatorStats aggregates settled sales for one creator
func (r *GormLedgerRepository) CreatorStats(creatorID uint64) (*CreatorLedgerStats, error) {
	var stats CreatorLedgerStats
	err := r.db.Model(&models.UnlockTransaction{}).
		Select("COUNT(*) AS total_sales, COALESCE(SUM(gross), 0) AS total_revenue, COALESCE(SUM(creator_share), 0) AS creator_share_total").
		Where("creator_id = ?", creatorID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetPlatformAccount fetches the platform aggregate row
func (r *GormLedgerRepository) GetPlatformAccount() (*models.PlatformAccount, error) {
	var account models.PlatformAccount
	if err := r.db.First(&account, models.PlatformAccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetPlatformAccountForUpdate fetches the platform aggregate row with a row lock
func (r *GormLedgerRepository) GetPlatformAccountForUpdate() (*models.PlatformAccount, error) {
	var account models.PlatformAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, models.PlatformAccountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// EnsurePlatformAccount creates the platform aggregate row when missing
func (r *GormLedgerRepository) EnsurePlatformAccount() (*models.PlatformAccount, error) {
	account, err := r.GetPlatformAccount()
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.PlatformAccount{ID: models.PlatformAccountID}
	if err := r.db.Create(account).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// IncrementPlatformAccount applies platform aggregate deltas atomically
func (r *GormLedgerRepository) IncrementPlatformAccount(earningsDelta, referralPaidDelta models.Money) error {
	updates := map[string]interface{}{}
	if !earningsDelta.IsZero() {
		updates["total_earnings"] = gorm.Expr("total_earnings + ?", earningsDelta)
	}
	if !referralPaidDelta.IsZero() {
		updates["total_referral_paid"] = gorm.Expr("total_referral_paid + ?", referralPaidDelta)
	}
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.PlatformAccount{}).
		Where("id = ?", models.PlatformAccountID).
		Updates(updates).Error
}
