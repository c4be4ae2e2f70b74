package repository

import (
	"errors"
	"strings"

	"github.com/telelink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatorRepository creator data access interface
type CreatorRepository interface {
	GetByID(id uint64) (*models.Creator, error)
	GetByIDForUpdate(id uint64) (*models.Creator, error)
	GetByReferralCode(code string) (*models.Creator, error)
	Create(creator *models.Creator) error
	Update(creator *models.Creator) error
	UpdateFields(id uint64, fields map[string]interface{}) error
	Count() (int64, error)
	List(filter CreatorListFilter) ([]models.Creator, int64, error)
	WithTx(tx *gorm.DB) *GormCreatorRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormCreatorRepository GORM implementation
type GormCreatorRepository struct {
	db *gorm.DB
}

// NewCreatorRepository creates a creator repository
func NewCreatorRepository(db *gorm.DB) *GormCreatorRepository {
	return &GormCreatorRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormCreatorRepository) WithTx(tx *gorm.DB) *GormCreatorRepository {
	if tx == nil {
		return r
	}
	return &GormCreatorRepository{db: tx}
}

// Transaction runs fn inside a database transaction
func (r *GormCreatorRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID fetches a creator by id
func (r *GormCreatorRepository) GetByID(id uint64) (*models.Creator, error) {
	if id == 0 {
		return nil, nil
	}
	var creator models.Creator
	if err := r.db.First(&creator, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &creator, nil
}

// GetByIDForUpdate fetches a creator by id with a row lock
func (r *GormCreatorRepository) GetByIDForUpdate(id uint64) (*models.Creator, error) {
	if id == 0 {
		return nil, nil
	}
	var creator models.Creator
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&creator, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &creator, nil
}

// GetByReferralCode fetches a creator by referral code
func (r *GormCreatorRepository) GetByReferralCode(code string) (*models.Creator, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var creator models.Creator
	if err := r.db.Where("referral_code = ?", code).First(&creator).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &creator, nil
}

// Create inserts a creator
func (r *GormCreatorRepository) Create(creator *models.Creator) error {
	return r.db.Create(creator).Error
}

// Update saves a creator
func (r *GormCreatorRepository) Update(creator *models.Creator) error {
	return r.db.Save(creator).Error
}

// UpdateFields updates selected creator columns
func (r *GormCreatorRepository) UpdateFields(id uint64, fields map[string]interface{}) error {
	if id == 0 || len(fields) == 0 {
		return nil
	}
	return r.db.Model(&models.Creator{}).Where("id = ?", id).Updates(fields).Error
}

// Count counts creators
func (r *GormCreatorRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Creator{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// List pages through creators, optionally matching handle or referral code
func (r *GormCreatorRepository) List(filter CreatorListFilter) ([]models.Creator, int64, error) {
	query := r.db.Model(&models.Creator{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("handle LIKE ? OR referral_code LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var creators []models.Creator
	if err := applyPagination(query, filter.Page, filter.PageSize).
		Order("created_at DESC").Find(&creators).Error; err != nil {
		return nil, 0, err
	}
	return creators, total, nil
}
