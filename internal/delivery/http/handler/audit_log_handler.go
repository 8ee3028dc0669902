package handler

import (
	"net/http"

	"go-shift-coverage/internal/delivery/http/middleware"
	"go-shift-coverage/internal/usecase"
	"go-shift-coverage/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

// GetActivity lists sign-ins, sign-outs and profile edits of the signed-in profile.
func (h *AuditLogHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.GetProfileFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Sign in required")
		return
	}

	activity, err := h.auditLogUsecase.GetActivity(r.Context(), profile.ID)
	if err != nil {
		response.InternalServerError(w, "Failed to get activity")
		return
	}

	response.Success(w, http.StatusOK, "Activity retrieved successfully", activity)
}
