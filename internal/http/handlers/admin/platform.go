package admin

import (
	"strconv"
	"strings"

	"github.com/telelink-next/internal/http/response"
	"github.com/telelink-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetPlatformStats returns the commission aggregate and creator count
func (h *Handler) GetPlatformStats(c *gin.Context) {
	stats, err := h.LedgerService.GetPlatformStats()
	if err != nil {
		respondError(c, response.CodeInternal, "stats fetch failed", err)
		return
	}
	response.Success(c, stats)
}

// ListCreators pages through the creator directory
func (h *Handler) ListCreators(c *gin.Context) {
	page, pageSize := pageParams(c)

	rows, total, err := h.CreatorRepo.List(repository.CreatorListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "creator fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetCreator fetches one creator
func (h *Handler) GetCreator(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid creator id", nil)
		return
	}
	creator, err := h.CreatorService.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "creator fetch failed", err)
		return
	}
	if creator == nil {
		respondError(c, response.CodeNotFound, "creator not found", nil)
		return
	}
	response.Success(c, creator)
}

// ListUnlocks pages through settled unlock transactions
func (h *Handler) ListUnlocks(c *gin.Context) {
	page, pageSize := pageParams(c)
	creatorID, _ := strconv.ParseUint(c.Query("creator_id"), 10, 64)
	linkID, _ := strconv.ParseUint(c.Query("link_id"), 10, 64)

	rows, total, err := h.LedgerRepo.ListUnlockTransactions(repository.UnlockTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		CreatorID: creatorID,
		LinkID:    uint(linkID),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "unlock fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
