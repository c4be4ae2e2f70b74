package service

import (
	"strings"

	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/repository"

	"github.com/shopspring/decimal"
)

// LinkService paid link registry operations
type LinkService struct {
	repo        repository.LinkRepository
	creatorRepo repository.CreatorRepository
}

// NewLinkService creates a link service
func NewLinkService(repo repository.LinkRepository, creatorRepo repository.CreatorRepository) *LinkService {
	return &LinkService{
		repo:        repo,
		creatorRepo: creatorRepo,
	}
}

// LinkCreateInput link creation input
type LinkCreateInput struct {
	CreatorID uint64
	URL       string
	Price     decimal.Decimal
}

// CreateLink validates and stores a new paid link with a unique unlock code
func (s *LinkService) CreateLink(input LinkCreateInput) (*models.Link, error) {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return nil, ErrInvalidURL
	}
	price := input.Price.Round(2)
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}
	creator, err := s.creatorRepo.GetByID(input.CreatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil {
		return nil, ErrCreatorNotFound
	}

	zero := models.NewMoneyFromDecimal(decimal.Zero)
	for i := 0; i < constants.CodeMaxRetries; i++ {
		code, genErr := generateShortCode()
		if genErr != nil {
			return nil, genErr
		}
		link := &models.Link{
			CreatorID: input.CreatorID,
			Code:      code,
			URL:       url,
			Price:     models.NewMoneyFromDecimal(price),
			Status:    constants.LinkStatusActive,
			Earnings:  zero,
		}
		if err := s.repo.Create(link); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, err
		}
		logger.Infow("link_created", "link_id", link.ID, "creator_id", link.CreatorID, "code", link.Code)
		return link, nil
	}
	return nil, ErrCodeExhausted
}

// GetByCode resolves an active link; unknown or deactivated codes return nil
func (s *LinkService) GetByCode(code string) (*models.Link, error) {
	return s.repo.GetActiveByCode(code)
}

// Deactivate turns a link off; only the owner may do so
func (s *LinkService) Deactivate(creatorID uint64, code string) (*models.Link, error) {
	link, err := s.repo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, ErrUnknownLink
	}
	if link.CreatorID != creatorID {
		return nil, ErrLinkNotOwned
	}
	if link.Status == constants.LinkStatusInactive {
		return link, nil
	}
	link.Status = constants.LinkStatusInactive
	if err := s.repo.Update(link); err != nil {
		return nil, err
	}
	logger.Infow("link_deactivated", "link_id", link.ID, "creator_id", creatorID)
	return link, nil
}

// ListByCreator pages through a creator's links
func (s *LinkService) ListByCreator(creatorID uint64, page, pageSize int) ([]models.Link, int64, error) {
	if creatorID == 0 {
		return []models.Link{}, 0, nil
	}
	return s.repo.List(repository.LinkListFilter{
		Page:      page,
		PageSize:  pageSize,
		CreatorID: creatorID,
	})
}
