package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hireloop/ai-interviewer/internal/config"
	"github.com/hireloop/ai-interviewer/internal/interview"
	"github.com/hireloop/ai-interviewer/internal/resume"
)

type Handler struct {
	DB        *gorm.DB
	Cfg       config.Config
	Log       *zap.Logger
	Orch      *interview.Orchestrator
	Repo      *interview.Repo
	ResumeSvc *resume.Service
}

func NewHandler(db *gorm.DB, cfg config.Config, log *zap.Logger, orch *interview.Orchestrator, repo *interview.Repo, resumeSvc *resume.Service) *Handler {
	return &Handler{
		DB:        db,
		Cfg:       cfg,
		Log:       log,
		Orch:      orch,
		Repo:      repo,
		ResumeSvc: resumeSvc,
	}
}
