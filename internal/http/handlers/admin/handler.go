package admin

import (
	"strconv"

	handlershared "github.com/telelink-next/internal/http/handlers/shared"
	"github.com/telelink-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler admin API handler entry
type Handler struct {
	*provider.Container
}

// New creates the admin handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return normalizePagination(page, pageSize)
}
