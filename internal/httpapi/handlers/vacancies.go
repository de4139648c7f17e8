package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/httpapi/middleware"
	"github.com/hireloop/ai-interviewer/internal/models"
)

type vacancyReq struct {
	Title          string `json:"title" binding:"required"`
	Description    string `json:"description"`
	City           string `json:"city"`
	EmploymentType string `json:"employment_type"`
	ExperienceMin  int    `json:"experience_min"`
	SalaryMin      int    `json:"salary_min"`
	SalaryMax      int    `json:"salary_max"`
	RequiredSkills string `json:"required_skills"` // comma-separated
}

func (h *Handler) CreateVacancy(c *gin.Context) {
	var req vacancyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	v := models.Vacancy{
		ID:             uuid.NewString(),
		EmployerID:     c.GetString(middleware.UserIDKey),
		Title:          req.Title,
		Description:    req.Description,
		City:           req.City,
		EmploymentType: req.EmploymentType,
		ExperienceMin:  req.ExperienceMin,
		SalaryMin:      req.SalaryMin,
		SalaryMax:      req.SalaryMax,
		RequiredSkills: req.RequiredSkills,
		IsActive:       true,
	}
	if err := h.DB.Create(&v).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "failed to create vacancy")
		return
	}
	common.OK(c, v)
}

func (h *Handler) ListVacancies(c *gin.Context) {
	var out []models.Vacancy
	if err := h.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&out).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list vacancies")
		return
	}
	common.OK(c, out)
}

func (h *Handler) GetVacancy(c *gin.Context) {
	var v models.Vacancy
	if err := h.DB.First(&v, "id = ?", c.Param("id")).Error; err != nil {
		common.Fail(c, http.StatusNotFound, 40403, "vacancy not found")
		return
	}
	common.OK(c, v)
}
