// README: Activity feed handler.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"lantern/internal/activity"
	"lantern/internal/http/middleware"
)

type ActivityHandler struct {
	feed *activity.Service
}

func NewActivityHandler(svc *activity.Service) *ActivityHandler {
	return &ActivityHandler{feed: svc}
}

// Me handles GET /api/users/me/activity?limit=N. The caller only ever
// sees their own feed; the identity comes from the verified token.
func (h *ActivityHandler) Me(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	actor := middleware.CallerActor(c)
	entries, err := h.feed.Feed(c.Request.Context(), actor.ID, limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(c, http.StatusOK, gin.H{"activity": entries})
}
