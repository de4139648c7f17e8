package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/config"
	"github.com/hireloop/ai-interviewer/internal/httpapi/handlers"
	"github.com/hireloop/ai-interviewer/internal/httpapi/middleware"
	"github.com/hireloop/ai-interviewer/internal/models"
)

func NewRouter(h *handlers.Handler, gw *Gateway, cfg config.Config, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", func(c *gin.Context) {
		common.OK(c, gin.H{"status": "ok"})
	})

	// auth
	r.POST("/auth/register/employer", h.RegisterEmployer)
	r.POST("/auth/register/candidate", h.RegisterCandidate)
	r.POST("/auth/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWT.Secret))

	authGroup.GET("/me", h.Me)

	// candidate profile
	authGroup.GET("/candidates/me", h.GetMyCandidate)
	authGroup.PUT("/candidates/me", h.UpdateMyCandidate)
	authGroup.GET("/candidates/:id", h.GetCandidate)

	// vacancies
	authGroup.GET("/vacancies", h.ListVacancies)
	authGroup.GET("/vacancies/:id", h.GetVacancy)
	authGroup.POST("/vacancies",
		middleware.RequireRole(string(models.RoleEmployer)), h.CreateVacancy)

	// resumes
	authGroup.POST("/resumes", h.UploadResume)
	authGroup.GET("/resumes", h.ListMyResumes)
	authGroup.GET("/resumes/:id", h.GetResume)

	// interviews
	authGroup.POST("/interviews", h.CreateInterview)
	authGroup.GET("/interviews/:id", h.GetInterview)
	authGroup.GET("/interviews/:id/messages", h.GetInterviewMessages)
	authGroup.GET("/interviews/:id/evaluation", h.GetInterviewEvaluation)
	authGroup.GET("/interviews/ws/:id", gw.Handle)

	// HR reporting (employers only)
	hrGroup := authGroup.Group("/hr")
	hrGroup.Use(middleware.RequireRole(string(models.RoleEmployer)))
	hrGroup.GET("/interviews", h.HRListInterviews)
	hrGroup.GET("/dashboard", h.HRDashboard)

	return r
}
