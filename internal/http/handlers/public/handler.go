package public

import (
	"strconv"

	handlershared "github.com/telelink-next/internal/http/handlers/shared"
	"github.com/telelink-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler gateway facing handler entry.
// Every route in this package sits behind the bot gateway key.
type Handler struct {
	*provider.Container
}

// New creates the gateway handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return normalizePagination(page, pageSize)
}

func creatorIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
