package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hireloop/ai-interviewer/internal/common"
	"github.com/hireloop/ai-interviewer/internal/resume"
)

// maxResumeBytes caps the upload body well above anything a text resume
// needs.
const maxResumeBytes = 10 << 20

func (h *Handler) UploadResume(c *gin.Context) {
	cand, ok := h.myCandidate(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "missing file field")
		return
	}
	if file.Size > maxResumeBytes {
		common.Fail(c, http.StatusBadRequest, 10005, "file too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50007, "failed to read upload")
		return
	}
	defer f.Close()

	rec, err := h.ResumeSvc.Upload(c.Request.Context(), cand.ID, file.Filename, file.Header.Get("Content-Type"), f, file.Size)
	if err != nil {
		if errors.Is(err, resume.ErrUnsupportedFormat) {
			common.Fail(c, http.StatusBadRequest, 10006, "unsupported resume format")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 50008, "failed to store resume")
		return
	}
	common.OK(c, rec)
}

func (h *Handler) ListMyResumes(c *gin.Context) {
	cand, ok := h.myCandidate(c)
	if !ok {
		return
	}

	out, err := h.ResumeSvc.ListByCandidate(c.Request.Context(), cand.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50009, "failed to list resumes")
		return
	}
	common.OK(c, out)
}

func (h *Handler) GetResume(c *gin.Context) {
	rec, err := h.ResumeSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		common.Fail(c, http.StatusNotFound, 40406, "resume not found")
		return
	}
	common.OK(c, rec)
}
