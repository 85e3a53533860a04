package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/classcast/classcast-backend/internal/middleware"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/response"
	"github.com/classcast/classcast-backend/internal/service"
	"github.com/classcast/classcast-backend/internal/validator"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Open godoc
// POST /api/v1/teacher/sessions
func (h *SessionHandler) Open(c *gin.Context) {
	var req model.OpenSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	session, err := h.sessionService.Open(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Get godoc
// GET /api/v1/teacher/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	session, err := h.sessionService.GetOwned(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Pause godoc
// POST /api/v1/teacher/sessions/:id/pause
func (h *SessionHandler) Pause(c *gin.Context) {
	h.transition(c, h.sessionService.Pause)
}

// Resume godoc
// POST /api/v1/teacher/sessions/:id/resume
func (h *SessionHandler) Resume(c *gin.Context) {
	h.transition(c, h.sessionService.Resume)
}

// End godoc
// POST /api/v1/teacher/sessions/:id/end
func (h *SessionHandler) End(c *gin.Context) {
	h.transition(c, h.sessionService.End)
}

func (h *SessionHandler) transition(c *gin.Context, op func(context.Context, uuid.UUID, uuid.UUID) (*model.Session, error)) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	session, err := op(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// UpdateTranscript godoc
// PUT /api/v1/teacher/sessions/:id/transcript
func (h *SessionHandler) UpdateTranscript(c *gin.Context) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateTranscriptRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	session, err := h.sessionService.AppendTranscript(c.Request.Context(), claims.UserID, sessionID, req)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// ListBySubject godoc
// GET /api/v1/teacher/subjects/:id/sessions
func (h *SessionHandler) ListBySubject(c *gin.Context) {
	subjectID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	sessions, err := h.sessionService.ListBySubject(c.Request.Context(), claims.UserID, subjectID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}

	if sessions == nil {
		sessions = []model.Session{}
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// ListCheckpoints godoc
// GET /api/v1/teacher/sessions/:id/checkpoints
func (h *SessionHandler) ListCheckpoints(c *gin.Context) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	checkpoints, err := h.sessionService.ListCheckpoints(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}

	if checkpoints == nil {
		checkpoints = []model.Checkpoint{}
	}
	response.Success(c, http.StatusOK, gin.H{"checkpoints": checkpoints})
}
