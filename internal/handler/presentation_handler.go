package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/classcast/classcast-backend/internal/domain"
	"github.com/classcast/classcast-backend/internal/middleware"
	"github.com/classcast/classcast-backend/internal/model"
	"github.com/classcast/classcast-backend/internal/response"
	"github.com/classcast/classcast-backend/internal/service"
	"github.com/classcast/classcast-backend/internal/validator"
)

type PresentationHandler struct {
	presentationService *service.PresentationService
}

func NewPresentationHandler(presentationService *service.PresentationService) *PresentationHandler {
	return &PresentationHandler{presentationService: presentationService}
}

type startPresentationRequest struct {
	Title string `json:"title" binding:"omitempty,max=200"`
}

// Start godoc
// POST /api/v1/teacher/presentations
func (h *PresentationHandler) Start(c *gin.Context) {
	var req startPresentationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	session, err := h.presentationService.Start(c.Request.Context(), claims.UserID, req.Title)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Send godoc
// POST /api/v1/teacher/presentations/send
func (h *PresentationHandler) Send(c *gin.Context) {
	var req model.SendContentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	claims := middleware.GetClaims(c)
	activity, err := h.presentationService.Send(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity": activity})
}

// Clear godoc
// POST /api/v1/teacher/presentations/clear
func (h *PresentationHandler) Clear(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.presentationService.Clear(c.Request.Context(), claims.UserID); err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}

// End godoc
// POST /api/v1/teacher/presentations/end
func (h *PresentationHandler) End(c *gin.Context) {
	claims := middleware.GetClaims(c)
	session, err := h.presentationService.End(c.Request.Context(), claims.UserID)
	if err != nil {
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// ViewerState godoc
// GET /api/v1/present/:code
//
// Public: anonymous viewers resolve the address code to the current
// screen content.
func (h *PresentationHandler) ViewerState(c *gin.Context) {
	code := normalizeCode(c.Param("code"))
	if code == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAddress)
		return
	}

	state, err := h.presentationService.ViewerState(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrInvalidAddress)
			return
		}
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Marker godoc
// GET /api/v1/present/:code/status
//
// Public: the cheap half of the viewer poll.
func (h *PresentationHandler) Marker(c *gin.Context) {
	code := normalizeCode(c.Param("code"))
	if code == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidAddress)
		return
	}

	marker, err := h.presentationService.Marker(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrInvalidAddress)
			return
		}
		response.FailDomain(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status_marker": marker})
}

// normalizeCode uppercases an address code so codes are
// case-insensitive for viewers typing them in.
func normalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
