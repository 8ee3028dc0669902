package http

import (
	"net/http"

	"go-shift-coverage/internal/delivery/http/handler"
	"go-shift-coverage/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router            *mux.Router
	authHandler       *handler.AuthHandler
	profileHandler    *handler.ProfileHandler
	auditLogHandler   *handler.AuditLogHandler
	sessionMiddleware *middleware.SessionMiddleware
	corsMiddleware    *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	auditLogHandler *handler.AuditLogHandler,
	sessionMiddleware *middleware.SessionMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:            mux.NewRouter(),
		authHandler:       authHandler,
		profileHandler:    profileHandler,
		auditLogHandler:   auditLogHandler,
		sessionMiddleware: sessionMiddleware,
		corsMiddleware:    corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Session state
	api.HandleFunc("/session", r.authHandler.Session).Methods(http.MethodGet)
	api.HandleFunc("/session/events", r.authHandler.SessionEvents).Methods(http.MethodGet)

	// Auth routes
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/signup", r.authHandler.SignUp).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.SignIn).Methods(http.MethodPost)
	auth.HandleFunc("/logout", r.authHandler.SignOut).Methods(http.MethodPost)

	// Profile routes (signed in)
	profile := api.PathPrefix("/profile").Subrouter()
	profile.Use(r.sessionMiddleware.RequireSession)
	profile.HandleFunc("", r.profileHandler.GetProfile).Methods(http.MethodGet)
	profile.HandleFunc("", r.profileHandler.UpdateProfile).Methods(http.MethodPut)
	profile.HandleFunc("/activity", r.auditLogHandler.GetActivity).Methods(http.MethodGet)

	api.HandleFunc("/specialties", r.profileHandler.Specialties).Methods(http.MethodGet)

	// Preflight requests must match a route for the CORS middleware to run
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, req *http.Request) {})

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
