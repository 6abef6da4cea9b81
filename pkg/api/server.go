package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/groupify/backend/pkg/auth"
	"github.com/groupify/backend/pkg/chat"
	"github.com/groupify/backend/pkg/httputil"
	"github.com/groupify/backend/pkg/identity"
	"github.com/groupify/backend/pkg/middleware"
	"github.com/groupify/backend/pkg/observability"
	"github.com/groupify/backend/pkg/profile"
)

// Server wires the HTTP surface for the backend.
type Server struct {
	router        *mux.Router
	authenticator *auth.Authenticator
	provider      identity.Provider
	profiles      *profile.Service
	chats         *chat.Service
	log           *logrus.Entry
	metrics       *observability.Metrics

	resetRedirectURL string
	oauthRedirectURL string
	defaultModel     string
}

// Options configures a Server.
type Options struct {
	Authenticator *auth.Authenticator
	Provider      identity.Provider
	Profiles      *profile.Service
	Chats         *chat.Service
	Log           *logrus.Entry
	Metrics       *observability.Metrics

	// CORSOrigins allowed on the public surface.
	CORSOrigins []string

	// ResetRedirectURL is embedded in password recovery emails.
	ResetRedirectURL string
	// OAuthRedirectURL is the post-OAuth landing page.
	OAuthRedirectURL string
	// DefaultModel is the AI model used when requests omit one.
	DefaultModel string
}

// NewServer creates the API server and registers all routes.
func NewServer(opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logrus.NewEntry(logrus.StandardLogger())
	}

	s := &Server{
		router:           mux.NewRouter(),
		authenticator:    opts.Authenticator,
		provider:         opts.Provider,
		profiles:         opts.Profiles,
		chats:            opts.Chats,
		log:              opts.Log,
		metrics:          opts.Metrics,
		resetRedirectURL: opts.ResetRedirectURL,
		oauthRedirectURL: opts.OAuthRedirectURL,
		defaultModel:     opts.DefaultModel,
	}

	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.RecoveryMiddleware(opts.Log))
	s.router.Use(httputil.LoggingMiddleware(opts.Log))
	if len(opts.CORSOrigins) > 0 {
		s.router.Use(httputil.CORSMiddleware(opts.CORSOrigins))
	}
	if opts.Metrics != nil {
		s.router.Use(opts.Metrics.HTTPMiddleware)
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.root).Methods("GET")
	s.router.HandleFunc("/health", s.health).Methods("GET")

	v1 := s.router.PathPrefix("/api/v1").Subrouter()

	// Public auth routes
	v1.HandleFunc("/auth/signup", s.signUp).Methods("POST")
	v1.HandleFunc("/auth/login", s.login).Methods("POST")
	v1.HandleFunc("/auth/refresh", s.refresh).Methods("POST")
	v1.HandleFunc("/auth/logout", s.logout).Methods("POST")
	v1.HandleFunc("/auth/reset-password", s.resetPassword).Methods("POST")
	v1.HandleFunc("/auth/oauth/{provider}", s.oauthAuthorize).Methods("GET")

	// Public profile read; visibility is decided by the provider's row
	// security, not this service.
	v1.HandleFunc("/users/{user_id}", s.getProfile).Methods("GET")

	// Bearer-protected routes
	protected := v1.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware(s.authenticator))
	protected.HandleFunc("/auth/me", s.me).Methods("GET")
	protected.HandleFunc("/auth/change-password", s.changePassword).Methods("POST")
	protected.HandleFunc("/auth/reset-password/confirm", s.resetPasswordConfirm).Methods("POST")
	protected.HandleFunc("/users/me", s.updateOwnProfile).Methods("PUT")
	protected.HandleFunc("/chat/message", s.sendMessage).Methods("POST")
	protected.HandleFunc("/chat/room/{room_id}/messages", s.roomMessages).Methods("GET")
	protected.HandleFunc("/chat/ai", s.generateAI).Methods("POST")
}

// Router exposes the configured router for serving and tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, MessageResponse{Message: "Groupify API"})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, map[string]string{"status": "healthy"})
}
