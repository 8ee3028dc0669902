package middleware

import (
	"context"
	"net/http"

	"go-shift-coverage/internal/domain/entity"
	"go-shift-coverage/internal/usecase"
	"go-shift-coverage/pkg/response"
)

type contextKey string

const ProfileKey contextKey = "profile"

type SessionMiddleware struct {
	sessionManager usecase.SessionManager
}

func NewSessionMiddleware(sessionManager usecase.SessionManager) *SessionMiddleware {
	return &SessionMiddleware{
		sessionManager: sessionManager,
	}
}

// RequireSession lets a request through only once the session has settled on a profile.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := m.sessionManager.State()
		if state.Resolving {
			response.ServiceUnavailable(w, "Session is still resolving")
			return
		}
		if state.Profile == nil {
			response.Unauthorized(w, "Sign in required")
			return
		}

		ctx := context.WithValue(r.Context(), ProfileKey, state.Profile)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetProfileFromContext extracts the session profile from context
func GetProfileFromContext(ctx context.Context) (*entity.Profile, bool) {
	profile, ok := ctx.Value(ProfileKey).(*entity.Profile)
	return profile, ok && profile != nil
}
