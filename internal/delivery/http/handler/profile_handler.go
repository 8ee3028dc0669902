package handler

import (
	"encoding/json"
	"net/http"

	"go-shift-coverage/internal/converter"
	"go-shift-coverage/internal/delivery/dto"
	"go-shift-coverage/internal/delivery/http/middleware"
	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/internal/usecase"
	"go-shift-coverage/pkg/response"
	"go-shift-coverage/pkg/validator"
)

type ProfileHandler struct {
	sessionManager usecase.SessionManager
	validator      *validator.CustomValidator
}

func NewProfileHandler(sessionManager usecase.SessionManager, validator *validator.CustomValidator) *ProfileHandler {
	return &ProfileHandler{
		sessionManager: sessionManager,
		validator:      validator,
	}
}

// GetProfile returns the signed-in profile
// @Summary Get current profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /profile [get]
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.GetProfileFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Sign in required")
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", converter.ProfileToResponse(profile))
}

// UpdateProfile merges the given fields into the signed-in profile
// @Summary Update current profile
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body dto.UpdateProfileRequest true "Update Profile Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /profile [put]
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.sessionManager.UpdateProfile(r.Context(), &req)
	if err != nil {
		writeSessionError(w, err, "Failed to update profile")
		return
	}
	if profile == nil {
		response.Unauthorized(w, "Sign in required")
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", converter.ProfileToResponse(profile))
}

func (h *ProfileHandler) Specialties(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Specialties retrieved successfully", entity.Specialties)
}
