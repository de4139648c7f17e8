package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/interview"
)

// HRListInterviews pages over sessions, optionally filtered by status
// and vacancy.
func (h *Handler) HRListInterviews(c *gin.Context) {
	status := interview.Status(c.Query("status"))
	vacancyID := c.Query("vacancy_id")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	out, err := h.Repo.ListInterviews(c.Request.Context(), status, vacancyID, limit, offset)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50010, "failed to list interviews")
		return
	}
	common.OK(c, out)
}

func (h *Handler) HRDashboard(c *gin.Context) {
	stats, err := h.Repo.Stats(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50011, "failed to load stats")
		return
	}
	common.OK(c, stats)
}
