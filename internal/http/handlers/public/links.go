package public

import (
	"errors"
	"strings"

	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateLinkRequest paid link creation request
type CreateLinkRequest struct {
	CreatorID uint64 `json:"creator_id" binding:"required"`
	URL       string `json:"url" binding:"required"`
	Price     string `json:"price" binding:"required"`
}

// CreateLink registers a paid link under a fresh unlock code
func (h *Handler) CreateLink(c *gin.Context) {
	var req CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid price", nil)
		return
	}

	link, err := h.LinkService.CreateLink(service.LinkCreateInput{
		CreatorID: req.CreatorID,
		URL:       req.URL,
		Price:     price,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			respondError(c, response.CodeBadRequest, "url must not be empty", nil)
		case errors.Is(err, service.ErrInvalidPrice):
			respondError(c, response.CodeBadRequest, "price must be positive", nil)
		case errors.Is(err, service.ErrCreatorNotFound):
			respondError(c, response.CodeNotFound, "creator not found", nil)
		case errors.Is(err, service.ErrCodeExhausted):
			respondError(c, response.CodeInternal, "code generation failed", err)
		default:
			respondError(c, response.CodeInternal, "link save failed", err)
		}
		return
	}
	response.Success(c, link)
}

// GetLink resolves an active link by unlock code.
// Unknown and deactivated codes are indistinguishable on purpose.
func (h *Handler) GetLink(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "invalid code", nil)
		return
	}
	link, err := h.LinkService.GetByCode(code)
	if err != nil {
		respondError(c, response.CodeInternal, "link fetch failed", err)
		return
	}
	if link == nil {
		respondError(c, response.CodeNotFound, "link not found", nil)
		return
	}
	response.Success(c, link)
}

// DeactivateLinkRequest link deactivation request
type DeactivateLinkRequest struct {
	CreatorID uint64 `json:"creator_id" binding:"required"`
}

// DeactivateLink retires a link; repeat calls are no-ops
func (h *Handler) DeactivateLink(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "invalid code", nil)
		return
	}
	var req DeactivateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	link, err := h.LinkService.Deactivate(req.CreatorID, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownLink):
			respondError(c, response.CodeNotFound, "link not found", nil)
		case errors.Is(err, service.ErrLinkNotOwned):
			respondError(c, response.CodeForbidden, "link belongs to another creator", nil)
		default:
			respondError(c, response.CodeInternal, "link save failed", err)
		}
		return
	}
	response.Success(c, link)
}
