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

type SubjectHandler struct {
	subjectService *service.SubjectService
}

func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// Create godoc
// POST /api/v1/teacher/subjects
func (h *SubjectHandler) Create(c *gin.Context) {
	var req model.CreateSubjectRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	subject, err := h.subjectService.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"subject": subject})
}

// List godoc
// GET /api/v1/teacher/subjects
func (h *SubjectHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	subjects, err := h.subjectService.ListByTeacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}

	if subjects == nil {
		subjects = []model.Subject{}
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// ListEnrolled godoc
// GET /api/v1/student/subjects
func (h *SubjectHandler) ListEnrolled(c *gin.Context) {
	claims := middleware.GetClaims(c)
	subjects, err := h.subjectService.ListByStudent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}

	if subjects == nil {
		subjects = []model.Subject{}
	}
	response.Success(c, http.StatusOK, gin.H{"subjects": subjects})
}

// Enroll godoc
// POST /api/v1/teacher/subjects/:id/enrollments
func (h *SubjectHandler) Enroll(c *gin.Context) {
	subjectID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	var req model.EnrollStudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	entry, err := h.subjectService.EnrollStudent(c.Request.Context(), claims.UserID, subjectID, req.Email)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"student": entry})
}

// Roster godoc
// GET /api/v1/teacher/subjects/:id/enrollments
func (h *SubjectHandler) Roster(c *gin.Context) {
	subjectID, ok := parseUUID(c, "id")
	if !ok {
		return
	}

	claims := middleware.GetClaims(c)
	roster, err := h.subjectService.Roster(c.Request.Context(), claims.UserID, subjectID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}

	if roster == nil {
		roster = []model.RosterEntry{}
	}
	response.Success(c, http.StatusOK, gin.H{"roster": roster})
}
