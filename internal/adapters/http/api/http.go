// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AuthDependencies
	CatalogDependencies
	PerformanceDependencies
	FeedDependencies
}

// AuthDependencies covers registration and the session lifecycle.
type AuthDependencies interface {
	Register(ctx context.Context, in model.RegisterInput) (model.User, error)
	SignIn(ctx context.Context, in model.SignInInput) (session.Session, error)
	SignOut(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (session.Session, error)
}

// CatalogDependencies covers bands, setlists and venues.
type CatalogDependencies interface {
	CreateBand(ctx context.Context, sess session.Session, in model.BandInput) (model.Band, error)
	ListBands(ctx context.Context, sess session.Session) ([]model.Band, error)
	GetBand(ctx context.Context, sess session.Session, bandID string) (model.Band, error)

	CreateSetlist(ctx context.Context, sess session.Session, in model.SetlistInput) (model.Setlist, error)
	ListSetlists(ctx context.Context, sess session.Session) ([]model.Setlist, error)
	GetSetlist(ctx context.Context, sess session.Session, setListID string) (model.Setlist, error)

	CreateVenue(ctx context.Context, in model.VenueInput) (model.Venue, error)
	ListVenues(ctx context.Context) ([]model.Venue, error)
	GetVenue(ctx context.Context, venueID string) (model.Venue, error)
}

// PerformanceDependencies covers the performance listing and mutations.
type PerformanceDependencies interface {
	CreatePerformance(ctx context.Context, sess session.Session, in model.PerformanceInput) (model.Performance, error)
	ListPerformances(ctx context.Context, sess session.Session, status model.Status) ([]model.PerformanceView, error)
	SoftDeletePerformance(ctx context.Context, sess session.Session, performanceID string) (model.MutationResult, error)
}

// FeedDependencies covers posts and comments.
type FeedDependencies interface {
	CreatePost(ctx context.Context, sess session.Session, in model.PostInput) (model.Post, error)
	ListFeed(ctx context.Context) ([]model.PostView, error)
	AddComment(ctx context.Context, sess session.Session, postID string, in model.CommentInput) (model.Comment, error)
	ListComments(ctx context.Context, postID string) ([]model.CommentView, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	log logger.Logger

	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	authHandler        *AuthHandler
	catalogHandler     *CatalogHandler
	performanceHandler *PerformanceHandler
	feedHandler        *FeedHandler
	dashboardHandler   *dashboardHandler
	auth               *authenticator
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		log:                log,
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		authHandler:        NewAuthHandler(deps, log),
		catalogHandler:     NewCatalogHandler(deps, log),
		performanceHandler: NewPerformanceHandler(deps, log),
		feedHandler:        NewFeedHandler(deps, log),
		dashboardHandler:   newDashboardHandler(),
		auth:               &authenticator{deps: deps, log: log},
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	a := s.auth.require

	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /register", MetricsMiddleware(s.authHandler.HandleRegister, "register"))
	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.authHandler.HandleSignIn, "sessions"))
	mux.HandleFunc("DELETE /sessions", MetricsMiddleware(s.authHandler.HandleSignOut, "sessions"))

	mux.HandleFunc("GET /bands", MetricsMiddleware(a(s.catalogHandler.HandleListBands), "bands"))
	mux.HandleFunc("POST /bands", MetricsMiddleware(a(s.catalogHandler.HandleCreateBand), "bands"))
	mux.HandleFunc("GET /bands/{bandID}", MetricsMiddleware(a(s.catalogHandler.HandleGetBand), "band"))
	mux.HandleFunc("GET /setlists", MetricsMiddleware(a(s.catalogHandler.HandleListSetlists), "setlists"))
	mux.HandleFunc("POST /setlists", MetricsMiddleware(a(s.catalogHandler.HandleCreateSetlist), "setlists"))
	mux.HandleFunc("GET /setlists/{setListID}", MetricsMiddleware(a(s.catalogHandler.HandleGetSetlist), "setlist"))
	mux.HandleFunc("GET /venues", MetricsMiddleware(a(s.catalogHandler.HandleListVenues), "venues"))
	mux.HandleFunc("POST /venues", MetricsMiddleware(a(s.catalogHandler.HandleCreateVenue), "venues"))
	mux.HandleFunc("GET /venues/{venueId}", MetricsMiddleware(a(s.catalogHandler.HandleGetVenue), "venue"))

	mux.HandleFunc("GET /performances", MetricsMiddleware(a(s.performanceHandler.HandleList), "performances"))
	mux.HandleFunc("POST /performances", MetricsMiddleware(a(s.performanceHandler.HandleCreate), "performances"))
	mux.HandleFunc("DELETE /performances/{performanceID}", MetricsMiddleware(a(s.performanceHandler.HandleDelete), "performance"))

	mux.HandleFunc("GET /posts", MetricsMiddleware(a(s.feedHandler.HandleListFeed), "posts"))
	mux.HandleFunc("POST /posts", MetricsMiddleware(a(s.feedHandler.HandleCreatePost), "posts"))
	mux.HandleFunc("GET /posts/{postID}/comments", MetricsMiddleware(a(s.feedHandler.HandleListComments), "comments"))
	mux.HandleFunc("POST /posts/{postID}/comments", MetricsMiddleware(a(s.feedHandler.HandleAddComment), "comments"))
}
