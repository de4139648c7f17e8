package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/httpapi/middleware"
	"github.com/hireloop/ai-interviewer/internal/interview"
	"github.com/hireloop/ai-interviewer/internal/models"
)

type createInterviewReq struct {
	VacancyID   string `json:"vacancy_id" binding:"required"`
	CandidateID string `json:"candidate_id"`
}

// CreateInterview starts a pending session. Candidates may only start
// interviews for themselves; employers name the candidate explicitly.
func (h *Handler) CreateInterview(c *gin.Context) {
	var req createInterviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	candidateID := req.CandidateID
	if c.GetString(middleware.RoleKey) == string(models.RoleCandidate) {
		cand, ok := h.myCandidate(c)
		if !ok {
			return
		}
		candidateID = cand.ID
	}
	if candidateID == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "candidate_id is required")
		return
	}

	iv, err := h.Orch.Create(c.Request.Context(), candidateID, req.VacancyID)
	if err != nil {
		if errors.Is(err, interview.ErrInvalidReference) {
			common.Fail(c, http.StatusNotFound, 40404, "candidate or vacancy not found")
			return
		}
		h.Log.Error("create interview failed", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to create interview")
		return
	}
	common.OK(c, iv)
}

func (h *Handler) GetInterview(c *gin.Context) {
	iv, err := h.Orch.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40405, "interview not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to load interview")
		return
	}
	common.OK(c, iv)
}

func (h *Handler) GetInterviewMessages(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Orch.Get(c.Request.Context(), id); err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40405, "interview not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50004, "failed to load interview")
		return
	}

	msgs, err := h.Repo.ListMessages(c.Request.Context(), id)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50005, "failed to load messages")
		return
	}
	common.OK(c, msgs)
}

// GetInterviewEvaluation returns the full persisted view: descriptor,
// per-category scores, summary if one exists, and the transcript.
func (h *Handler) GetInterviewEvaluation(c *gin.Context) {
	data, err := h.Orch.Evaluation(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, interview.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40405, "interview not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50006, "failed to load evaluation")
		return
	}
	common.OK(c, data)
}
