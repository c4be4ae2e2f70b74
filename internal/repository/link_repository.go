package repository

import (
	"errors"
	"strings"

	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkRepository link data access interface
type LinkRepository interface {
	GetByID(id uint) (*models.Link, error)
	GetByCode(code string) (*models.Link, error)
	GetActiveByCode(code string) (*models.Link, error)
	GetByCodeForUpdate(code string) (*models.Link, error)
	Create(link *models.Link) error
	Update(link *models.Link) error
	IncrementCounters(tx *gorm.DB, linkID uint, gross models.Money) error
	List(filter LinkListFilter) ([]models.Link, int64, error)
	WithTx(tx *gorm.DB) *GormLinkRepository
}

// GormLinkRepository GORM implementation
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a link repository
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// WithTx binds the repository to a transaction
func (r *GormLinkRepository) WithTx(tx *gorm.DB) *GormLinkRepository {
	if tx == nil {
		return r
	}
	return &GormLinkRepository{db: tx}
}

// GetByID fetches a link by id
func (r *GormLinkRepository) GetByID(id uint) (*models.Link, error) {
	if id == 0 {
		return nil, nil
	}
	var link models.Link
	if err := r.db.First(&link, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByCode fetches a link by unlock code regardless of status
func (r *GormLinkRepository) GetByCode(code string) (*models.Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var link models.Link
	if err := r.db.Where("code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetActiveByCode fetches an active link by unlock code
func (r *GormLinkRepository) GetActiveByCode(code string) (*models.Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var link models.Link
	if err := r.db.Where("code = ? AND status = ?", code, constants.LinkStatusActive).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GetByCodeForUpdate fetches a link by unlock code with a row lock
func (r *GormLinkRepository) GetByCodeForUpdate(code string) (*models.Link, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var link models.Link
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// Create inserts a link
func (r *GormLinkRepository) Create(link *models.Link) error {
	return r.db.Create(link).Error
}

// Update saves a link
func (r *GormLinkRepository) Update(link *models.Link) error {
	return r.db.Save(link).Error
}

// IncrementCounters bumps unlock count and earnings atomically
func (r *GormLinkRepository) IncrementCounters(tx *gorm.DB, linkID uint, gross models.Money) error {
	db := r.db
	if tx != nil {
		db = tx
	}
	return db.Model(&models.Link{}).
		Where("id = ?", linkID).
		Updates(map[string]interface{}{
			"unlock_count": gorm.Expr("unlock_count + 1"),
			"earnings":     gorm.Expr("earnings + ?", gross),
		}).Error
}

// List queries links with pagination
func (r *GormLinkRepository) List(filter LinkListFilter) ([]models.Link, int64, error) {
	query := r.db.Model(&models.Link{})
	if filter.CreatorID != 0 {
		query = query.Where("creator_id = ?", filter.CreatorID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OnlyActive {
		query = query.Where("status = ?", constants.LinkStatusActive)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var links []models.Link
	if err := query.Order("id desc").Find(&links).Error; err != nil {
		return nil, 0, err
	}
	return links, total, nil
}
