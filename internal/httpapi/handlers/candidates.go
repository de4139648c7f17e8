package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/httpapi/middleware"
	"github.com/hireloop/ai-interviewer/internal/models"
)

type candidateProfileReq struct {
	FullName        string  `json:"full_name"`
	City            string  `json:"city"`
	EmploymentType  string  `json:"employment_type"`
	ExpectedSalary  int     `json:"expected_salary"`
	Skills          string  `json:"skills"` // comma-separated
	ExperienceYears float64 `json:"experience_years"`
}

func (h *Handler) myCandidate(c *gin.Context) (*models.Candidate, bool) {
	uid := c.GetString(middleware.UserIDKey)
	var cand models.Candidate
	if err := h.DB.First(&cand, "user_id = ?", uid).Error; err != nil {
		common.Fail(c, http.StatusNotFound, 40402, "candidate profile not found")
		return nil, false
	}
	return &cand, true
}

func (h *Handler) GetMyCandidate(c *gin.Context) {
	cand, ok := h.myCandidate(c)
	if !ok {
		return
	}
	common.OK(c, cand)
}

func (h *Handler) UpdateMyCandidate(c *gin.Context) {
	cand, ok := h.myCandidate(c)
	if !ok {
		return
	}

	var req candidateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	cand.FullName = req.FullName
	cand.City = req.City
	cand.EmploymentType = req.EmploymentType
	cand.ExpectedSalary = req.ExpectedSalary
	cand.Skills = req.Skills
	cand.ExperienceYears = req.ExperienceYears

	if err := h.DB.Save(cand).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to update profile")
		return
	}
	common.OK(c, cand)
}

func (h *Handler) GetCandidate(c *gin.Context) {
	var cand models.Candidate
	if err := h.DB.First(&cand, "id = ?", c.Param("id")).Error; err != nil {
		common.Fail(c, http.StatusNotFound, 40402, "candidate not found")
		return
	}
	common.OK(c, cand)
}
