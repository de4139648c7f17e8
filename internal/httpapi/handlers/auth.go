package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hireloop/ai-interviewer/internal/auth"
	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/httpapi/middleware"
	"github.com/hireloop/ai-interviewer/internal/models"
)

type registerReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

func (h *Handler) RegisterEmployer(c *gin.Context) {
	h.register(c, models.RoleEmployer)
}

func (h *Handler) RegisterCandidate(c *gin.Context) {
	h.register(c, models.RoleCandidate)
}

func (h *Handler) register(c *gin.Context, role models.UserRole) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		FullName:     req.FullName,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "failed to create user (maybe email already exists)")
		return
	}

	// Candidates get a profile row right away so interviews can
	// reference them.
	if role == models.RoleCandidate {
		cand := models.Candidate{
			ID:       uuid.NewString(),
			UserID:   user.ID,
			FullName: req.FullName,
		}
		if err := h.DB.Create(&cand).Error; err != nil {
			common.Fail(c, http.StatusInternalServerError, 20007, "failed to create candidate profile")
			return
		}
	}

	token, err := auth.SignJWT(user.ID, string(user.Role), h.Cfg.JWT.Secret, h.Cfg.JWT.ExpireAfter)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token, "user": user})
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", req.Email).Error; err != nil {
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid credentials")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40103, "invalid credentials")
		return
	}

	token, err := auth.SignJWT(user.ID, string(user.Role), h.Cfg.JWT.Secret, h.Cfg.JWT.ExpireAfter)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token, "user": user})
}

func (h *Handler) Me(c *gin.Context) {
	uid := c.GetString(middleware.UserIDKey)

	var user models.User
	if err := h.DB.First(&user, "id = ?", uid).Error; err != nil {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}
	common.OK(c, user)
}
