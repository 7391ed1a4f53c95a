package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/storedeck/storedeck/internal/analytics"
	"github.com/storedeck/storedeck/internal/comms"
	"github.com/storedeck/storedeck/internal/jobs"
	"github.com/storedeck/storedeck/internal/settings"
	"github.com/storedeck/storedeck/internal/store"
)

type Server struct {
	store     *store.SQLiteStore
	settings  *settings.Manager
	analytics *analytics.Service
	comms     *comms.Service
	hub       *jobs.Hub
	logger    *zap.Logger
	port      int
	token     string
	router    chi.Router
	startTime time.Time
}

func New(s *store.SQLiteStore, commsSvc *comms.Service, logger *zap.Logger, port int, token string) (*Server, error) {
	if token == "" {
		var err error
		token, err = generateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate admin token: %w", err)
		}
	}

	srv := &Server{
		store:     s,
		settings:  settings.NewManager(s),
		analytics: analytics.New(s, logger),
		comms:     commsSvc,
		hub:       jobs.NewHub(),
		logger:    logger,
		port:      port,
		token:     token,
		startTime: time.Now(),
	}

	srv.setupRoutes()
	return srv, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	// Public endpoints
	r.Get("/health", s.handleHealth)
	r.With(s.tenantMiddleware).Post("/b", s.handleBeacon)

	// Storefront: tenant-scoped, unauthenticated
	r.Route("/api/storefront", func(r chi.Router) {
		r.Use(s.tenantMiddleware)
		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Get("/products/{id}/reviews", s.handleListReviews)
		r.Post("/products/{id}/reviews", s.handleCreateReview)
	})

	// Admin API: bearer token plus tenant scope
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(BearerAuth(s.token))
		r.Use(s.tenantMiddleware)

		r.Post("/tests", s.handleCreateTest)
		r.Get("/tests", s.handleListTests)
		r.Get("/tests/{id}", s.handleGetTest)
		r.Post("/tests/{id}/pause", s.handlePauseTest)
		r.Post("/tests/{id}/resume", s.handleResumeTest)
		r.Post("/tests/{id}/winner", s.handleDeclareWinner)
		r.Delete("/tests/{id}", s.handleDeleteTest)

		r.Get("/analytics", s.handleAnalytics)

		r.Get("/settings/{kind}", s.handleGetSettings)
		r.Patch("/settings/{kind}", s.handlePatchSettings)
		r.Delete("/settings/{kind}", s.handleResetSettings)

		r.Post("/contractors", s.handleCreateContractor)
		r.Get("/contractors", s.handleListContractors)
		r.Get("/contractors/{id}", s.handleGetContractor)
		r.Patch("/contractors/{id}", s.handleUpdateContractor)
		r.Delete("/contractors/{id}", s.handleDeleteContractor)

		r.Post("/creators", s.handleCreateCreator)
		r.Get("/creators", s.handleListCreators)
		r.Post("/communications/bulk-send", s.handleBulkSend)
		r.Get("/communications/messages", s.handleListMessages)

		r.Post("/orders", s.handleRecordOrder)
		r.Post("/expenses", s.handleRecordExpense)
		r.Post("/funnel-events", s.handleRecordFunnelEvent)

		r.Post("/video-jobs", s.handleCreateVideoJob)
		r.Get("/video-jobs", s.handleListVideoJobs)
		r.Get("/video-jobs/{id}", s.handleGetVideoJob)
		r.Patch("/video-jobs/{id}", s.handleUpdateVideoJob)
		r.Get("/video-jobs/{id}/events", s.handleVideoJobEvents)
	})

	s.router = r
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("storedeck listening",
		zap.String("addr", addr),
		zap.String("token", s.token))
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) Token() string {
	return s.token
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func generateToken() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
