package repository

import (
	"errors"

	"github.com/telelink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository withdrawal data access interface
type WithdrawalRepository interface {
	GetByID(id uint) (*models.Withdrawal, error)
	GetByIDForUpdate(id uint) (*models.Withdrawal, error)
	Create(withdrawal *models.Withdrawal) error
	Update(withdrawal *models.Withdrawal) error
	List(filter WithdrawalListFilter) ([]models.Withdrawal, int64, error)
	WithTx(tx *gorm.DB) *GormWithdrawalRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormWithdrawalRepository GORM implementation
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a withdrawal repository
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) *GormWithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormWithdrawalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID fetches a withdrawal by id
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	if id == 0 {
		return nil, nil
	}
	var withdrawal models.Withdrawal
	if err := r.db.First(&withdrawal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// GetByIDForUpdate fetches a withdrawal by id with a row lock
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.Withdrawal, error) {
	if id == 0 {
		return nil, nil
	}
	var withdrawal models.Withdrawal
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&withdrawal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// Create inserts a withdrawal
func (r *GormWithdrawalRepository) Create(withdrawal *models.Withdrawal) error {
	return r.db.Create(withdrawal).Error
}

// Update saves a withdrawal
func (r *GormWithdrawalRepository) Update(withdrawal *models.Withdrawal) error {
	return r.db.Save(withdrawal).Error
}

// List queries withdrawals with pagination
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.Withdrawal, int64, error) {
	query := r.db.Model(&models.Withdrawal{})
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Method != "" {
		query = query.Where("method = ?", filter.Method)
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

	var withdrawals []models.Withdrawal
	if err := query.Order("id desc").Find(&withdrawals).Error; err != nil {
		return nil, 0, err
	}
	return withdrawals, total, nil
}
