package admin

import (
	"strconv"
	"strings"

	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListLinks pages through links across all creators
func (h *Handler) ListLinks(c *gin.Context) {
	page, pageSize := pageParams(c)
	creatorID, _ := strconv.ParseUint(c.Query("creator_id"), 10, 64)

	rows, total, err := h.LinkRepo.List(repository.LinkListFilter{
		Page:      page,
		PageSize:  pageSize,
		CreatorID: creatorID,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "link fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetLink fetches one link by id
func (h *Handler) GetLink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid link id", nil)
		return
	}
	link, err := h.LinkRepo.GetByID(uint(id))
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

// DeactivateLink retires a link regardless of owner.
// Used for moderation, the creator keeps already settled earnings.
func (h *Handler) DeactivateLink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid link id", nil)
		return
	}
	link, err := h.LinkRepo.GetByID(uint(id))
	if err != nil {
		respondError(c, response.CodeInternal, "link fetch failed", err)
		return
	}
	if link == nil {
		respondError(c, response.CodeNotFound, "link not found", nil)
		return
	}
	if link.Status != constants.LinkStatusInactive {
		link.Status = constants.LinkStatusInactive
		if err := h.LinkRepo.Update(link); err != nil {
			respondError(c, response.CodeInternal, "link save failed", err)
			return
		}
	}
	response.Success(c, link)
}
