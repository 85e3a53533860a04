package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classcast/classcast-backend/internal/middleware"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/response"
	"github.com/classcast/classcast-backend/internal/service"
	"github.com/classcast/classcast-backend/internal/validator"
)

type StudentHandler struct {
	syncService     *service.SyncService
	responseService *service.ResponseService
}

func NewStudentHandler(syncService *service.SyncService, responseService *service.ResponseService) *StudentHandler {
	return &StudentHandler{
		syncService:     syncService,
		responseService: responseService,
	}
}

// Active godoc
// GET /api/v1/student/subjects/:id/active
//
// The student poll: whatever the teacher has on the air right now, or
// the latest shared summary. Designed to be hit every few seconds.
func (h *StudentHandler) Active(c *gin.Context) {
	subjectID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	state, err := h.syncService.Active(c.Request.Context(), claims.UserID, subjectID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Submit godoc
// POST /api/v1/student/activities/:id/responses
func (h *StudentHandler) Submit(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req model.SubmitResponseRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	result, err := h.responseService.Submit(c.Request.Context(), claims.UserID, activityID, req)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"response": result})
}

// MyResponse godoc
// GET /api/v1/student/activities/:id/responses/me
func (h *StudentHandler) MyResponse(c *gin.Context) {
	activityID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	result, err := h.responseService.GetMine(c.Request.Context(), claims.UserID, activityID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"response": result})
}
