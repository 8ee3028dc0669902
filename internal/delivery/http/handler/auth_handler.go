package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go-shift-coverage/internal/converter"
	"go-shift-coverage/internal/delivery/dto"
	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/internal/domain/provider"
	"go-shift-coverage/internal/usecase"
	"go-shift-coverage/pkg/response"
	"go-shift-coverage/pkg/validator"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	sessionManager usecase.SessionManager
	validator      *validator.CustomValidator
	log            *logrus.Logger
}

func NewAuthHandler(sessionManager usecase.SessionManager, validator *validator.CustomValidator, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		sessionManager: sessionManager,
		validator:      validator,
		log:            log,
	}
}

// SignUp handles account registration
// @Summary Register a new account
// @Description Create an account and its profile, then sign it in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.SignUpRequest true "Sign Up Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.sessionManager.SignUp(r.Context(), &req)
	if err != nil {
		writeSessionError(w, err, "Failed to sign up")
		return
	}

	response.Success(w, http.StatusCreated, "Account created successfully", converter.ProfileToResponse(profile))
}

// SignIn handles credential sign-in
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.SignInRequest true "Sign In Request"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req dto.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	profile, err := h.sessionManager.SignIn(r.Context(), &req)
	if err != nil {
		writeSessionError(w, err, "Failed to sign in")
		return
	}

	response.Success(w, http.StatusOK, "Signed in successfully", converter.ProfileToResponse(profile))
}

// SignOut always reports success; the local session is cleared either way.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionManager.SignOut(r.Context()); err != nil {
		h.log.Warnf("Sign out completed locally with provider error: %+v", err)
	}

	response.Success(w, http.StatusOK, "Signed out successfully", nil)
}

func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Session retrieved successfully", converter.SessionToResponse(h.sessionManager.State()))
}

// SessionEvents streams a snapshot of the session as a server-sent event on connect and
// after every change. A slow client only ever sees the latest snapshot.
func (h *AuthHandler) SessionEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming unsupported")
		return
	}

	updates := make(chan entity.Session, 1)
	cancel := h.sessionManager.Watch(func(session entity.Session) {
		select {
		case <-updates:
		default:
		}
		updates <- session
	})
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeSessionEvent(w, h.sessionManager.State()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case session := <-updates:
			if err := writeSessionEvent(w, session); err != nil {
				h.log.Debugf("Session event stream closed: %v", err)
				return
			}
			flusher.Flush()
		}
	}
}

func writeSessionEvent(w http.ResponseWriter, session entity.Session) error {
	data, err := json.Marshal(converter.SessionToResponse(session))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: session\ndata: %s\n\n", data)
	return err
}

// writeSessionError maps session manager failures onto HTTP responses.
func writeSessionError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, provider.ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, provider.ErrEmailInUse):
		response.Error(w, http.StatusConflict, "Email already in use", nil)
	case errors.Is(err, provider.ErrWeakPassword):
		response.Error(w, http.StatusBadRequest, "Password is too weak", nil)
	case errors.Is(err, provider.ErrNetwork):
		response.ServiceUnavailable(w, "Identity provider unreachable")
	case errors.Is(err, usecase.ErrStoreWriteFailure):
		response.BadGateway(w, "Failed to save profile")
	case errors.Is(err, usecase.ErrSuperseded):
		response.Error(w, http.StatusConflict, "Session changed by a later request", nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
