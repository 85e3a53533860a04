package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/middleware"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/response"
	"github.com/classcast/classcast-backend/internal/service"
	"github.com/classcast/classcast-backend/internal/validator"
)

type ActivityHandler struct {
	activityService *service.ActivityService
	rankingService  *service.RankingService
}

func NewActivityHandler(activityService *service.ActivityService, rankingService *service.RankingService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		rankingService:  rankingService,
	}
}

// Create godoc
// POST /api/v1/teacher/sessions/:id/activities
func (h *ActivityHandler) Create(c *gin.Context) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req model.CreateActivityRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.activityService.Create(c.Request.Context(), claims.UserID, sessionID, req)
	if err != nil {
		h.failCreate(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"activity": activity})
}

// GenerateQuiz godoc
// POST /api/v1/teacher/sessions/:id/activities/generate-quiz
func (h *ActivityHandler) GenerateQuiz(c *gin.Context) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req model.GenerateQuizRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.activityService.GenerateQuiz(c.Request.Context(), claims.UserID, sessionID, req)
	if err != nil {
		h.failCreate(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"activity": activity})
}

// GenerateSummary godoc
// POST /api/v1/teacher/sessions/:id/activities/generate-summary
func (h *ActivityHandler) GenerateSummary(c *gin.Context) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.activityService.GenerateSummary(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		h.failCreate(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"activity": activity})
}

// Broadcast godoc
// POST /api/v1/teacher/activities/:id/broadcast
func (h *ActivityHandler) Broadcast(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.activityService.Broadcast(c.Request.Context(), claims.UserID, activityID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}

// Share godoc
// POST /api/v1/teacher/activities/:id/share
func (h *ActivityHandler) Share(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.activityService.ShareSummary(c.Request.Context(), claims.UserID, activityID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			response.Fail(c, http.StatusBadRequest, response.ErrSummaryOnly)
			return
		}
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}

// End godoc
// POST /api/v1/teacher/activities/:id/end
func (h *ActivityHandler) End(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.activityService.EndManually(c.Request.Context(), claims.UserID, activityID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}

// Get godoc
// GET /api/v1/teacher/activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.activityService.Get(c.Request.Context(), claims.UserID, activityID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}

// ListBySession godoc
// GET /api/v1/teacher/sessions/:id/activities
func (h *ActivityHandler) ListBySession(c *gin.Context) {
	sessionID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	activities, err := h.activityService.ListBySession(c.Request.Context(), claims.UserID, sessionID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}

	if activities == nil {
		activities = []model.Activity{}
	}
	response.Success(c, http.StatusOK, gin.H{"activities": activities})
}

// Ranking godoc
// GET /api/v1/teacher/activities/:id/ranking
func (h *ActivityHandler) Ranking(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	entries, err := h.rankingService.Rank(c.Request.Context(), claims.UserID, activityID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}

	if entries == nil {
		entries = []model.RankingEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"ranking": entries})
}

// Stats godoc
// GET /api/v1/teacher/activities/:id/stats
func (h *ActivityHandler) Stats(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	stats, err := h.rankingService.Summarize(c.Request.Context(), claims.UserID, activityID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

// failCreate maps creation errors that deserve specific codes before
// falling back to the domain mapping.
func (h *ActivityHandler) failCreate(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusBadRequest, response.ErrNoQuestions)
	case errors.Is(err, service.ErrTranscriptTooShort):
		response.Fail(c, http.StatusBadRequest, response.ErrGenerationFailed)
	default:
		response.FailDomain(c, err)
	}
}
