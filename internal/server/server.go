// Package server provides the HTTP REST API for the placement cell.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/placement-cell/internal/config"
	"github.com/jonathan/placement-cell/internal/db"
	"github.com/jonathan/placement-cell/internal/eligibility"
	"github.com/jonathan/placement-cell/internal/schemas"
	"github.com/jonathan/placement-cell/internal/server/middleware"
	"github.com/jonathan/placement-cell/internal/server/ratelimit"
	"github.com/jonathan/placement-cell/internal/transition"
	"github.com/jonathan/placement-cell/internal/types"
	rootschemas "github.com/jonathan/placement-cell/schemas"
)

const maxBodyBytes = 1 << 20

// Store is everything the API reads and writes. *db.DB implements it.
type Store interface {
	UserStore
	eligibility.Finder
	transition.Store

	FindStudentByUserID(ctx context.Context, userID uuid.UUID) (*types.Student, error)
	GetStudentDetail(ctx context.Context, id uuid.UUID) (*types.StudentDetail, error)
	CreateStudent(ctx context.Context, s types.Student) (*types.Student, error)
	UpdateStudent(ctx context.Context, id uuid.UUID, s types.Student, keepPlacement bool) (*types.Student, error)
	DeleteStudent(ctx context.Context, id uuid.UUID) error

	GetCompany(ctx context.Context, id uuid.UUID) (*types.Company, error)
	ListCompanies(ctx context.Context, filters types.CompanyFilters) ([]types.CompanySummary, error)
	GetCompanyDetail(ctx context.Context, id uuid.UUID) (*types.CompanyDetail, error)
	CreateCompany(ctx context.Context, w *types.CompanyWrite) (*types.CompanyDetail, error)
	UpdateCompany(ctx context.Context, id uuid.UUID, w *types.CompanyWrite) (*types.CompanyDetail, error)
	DeleteCompany(ctx context.Context, id uuid.UUID) error
	AddRemark(ctx context.Context, companyID, userID uuid.UUID, text string) (*types.Remark, error)
	AddPlacementRecord(ctx context.Context, p types.PlacementRecord) (*types.PlacementRecord, error)
	ListStatusHistory(ctx context.Context, companyID uuid.UUID) ([]types.StatusChange, error)

	GetApplication(ctx context.Context, id uuid.UUID) (*types.Application, error)
	ListApplications(ctx context.Context, filters types.ApplicationFilters) ([]types.ApplicationView, error)
	DeleteApplication(ctx context.Context, id uuid.UUID) error

	GetDashboardStats(ctx context.Context) (*db.DashboardStats, error)
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	closeStore  func()
	cfg         config.Config
	rateLimiter *ratelimit.Limiter
	metrics     *Metrics
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	eligibility *eligibility.Service
	transitions *transition.Manager
	schemas     *schemas.Registry
	validator   *validator.Validate
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Store     Store
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	RateLimit *ratelimit.Config
}

// New connects to the database, applies pending migrations when enabled and
// builds the server.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		applied, err := database.Migrate(ctx)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		for _, v := range applied {
			log.Printf("[migrate] applied %s", v)
		}
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s, err := NewWithDeps(cfg, Deps{
		Store:     database,
		JWT:       jwtConfig,
		Passwords: passwordConfig,
		RateLimit: ratelimit.LoadConfig(),
	})
	if err != nil {
		database.Close()
		return nil, err
	}
	s.closeStore = database.Close
	return s, nil
}

// NewWithDeps builds a server over explicit collaborators.
func NewWithDeps(cfg *config.Config, deps Deps) (*Server, error) {
	registry, err := schemas.NewRegistry(rootschemas.Files)
	if err != nil {
		return nil, fmt.Errorf("failed to load request schemas: %w", err)
	}

	s := &Server{
		store:       deps.Store,
		cfg:         *cfg,
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		metrics:     NewMetrics(),
		schemas:     registry,
		validator:   validator.New(),
	}

	s.eligibility = eligibility.NewService(deps.Store, s.metrics)
	s.transitions = transition.NewManager(deps.Store, transition.WithObserver(s.metrics))

	s.userService = NewUserService(deps.Store, deps.Passwords)
	s.jwtService = NewJWTService(deps.JWT)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService)

	s.handler = s.withRateLimit(s.withLogging(s.withCORS(s.metrics.withMetrics(s.routes()))))
	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() *http.ServeMux {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	officer := middleware.RequireRole(types.RoleAdmin, types.RoleTNPOfficer)
	authed := func(h http.HandlerFunc) http.Handler { return auth(h) }
	managed := func(h http.HandlerFunc) http.Handler { return auth(officer(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.cfg.MetricsEnabled {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	// Auth
	mux.HandleFunc("POST /api/auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", s.authHandler.Login)
	mux.Handle("GET /api/auth/me", authed(s.authHandler.Me))

	// Companies
	mux.Handle("GET /api/companies", authed(s.handleListCompanies))
	mux.Handle("POST /api/companies", managed(s.handleCreateCompany))
	mux.Handle("GET /api/companies/{id}", authed(s.handleGetCompany))
	mux.Handle("PUT /api/companies/{id}", managed(s.handleUpdateCompany))
	mux.Handle("DELETE /api/companies/{id}", managed(s.handleDeleteCompany))
	mux.Handle("PATCH /api/companies/{id}/status", managed(s.handleUpdateCompanyStatus))
	mux.Handle("GET /api/companies/{id}/status-history", authed(s.handleCompanyStatusHistory))
	mux.Handle("POST /api/companies/{id}/remarks", managed(s.handleAddRemark))
	mux.Handle("POST /api/companies/{id}/placement-history", managed(s.handleAddPlacementRecord))
	mux.Handle("GET /api/companies/{id}/eligible-students", managed(s.handleEligibleStudents))

	// Students
	mux.Handle("GET /api/students", authed(s.handleListStudents))
	mux.Handle("POST /api/students", managed(s.handleCreateStudent))
	mux.Handle("POST /api/students/check-eligibility", authed(s.handleCheckEligibility))
	mux.Handle("GET /api/students/{id}", authed(s.handleGetStudent))
	mux.Handle("PUT /api/students/{id}", authed(s.handleUpdateStudent))
	mux.Handle("DELETE /api/students/{id}", managed(s.handleDeleteStudent))
	mux.Handle("GET /api/students/{id}/eligible-companies", authed(s.handleEligibleCompanies))

	// Applications
	mux.Handle("GET /api/applications", authed(s.handleListApplications))
	mux.Handle("POST /api/applications", authed(s.handleCreateApplication))
	mux.Handle("PUT /api/applications/{id}", managed(s.handleUpdateApplication))
	mux.Handle("DELETE /api/applications/{id}", managed(s.handleDeleteApplication))

	// Dashboard
	mux.Handle("GET /api/dashboard/stats", authed(s.handleDashboardStats))

	return mux
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			s.release()
			return fmt.Errorf("server error: %w", err)
		}
	case <-stop:
	}
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.release()
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.release()
	log.Println("Server stopped")
	return nil
}

func (s *Server) release() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.closeStore != nil {
		s.closeStore()
	}
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth reports server and database health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		log.Printf("[health] database ping failed: %v", err)
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": "unreachable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// failure maps err to its status code and writes it. Server errors are logged
// and never echoed.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[%s] %s failed: %v", r.Method, r.URL.Path, err)
	}
	s.errorResponse(w, status, errorMessage(err))
}

// decodeBody validates the raw body against the named schema, decodes it into
// dst and runs the struct validator. It writes the 400 response itself.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.schemas.Validate(schema, body); err != nil {
		s.failure(w, r, err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// pathID parses the {id} path value, writing a 400 when it is not a UUID.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s ID", entity))
		return uuid.Nil, false
	}
	return id, true
}

// principal returns the authenticated caller. Routes are wrapped in
// AuthMiddleware, so a missing principal is a wiring bug reported as 401.
func (s *Server) principal(w http.ResponseWriter, r *http.Request) (types.Principal, bool) {
	p, err := middleware.GetPrincipal(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "No token provided")
		return types.Principal{}, false
	}
	return p, true
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
