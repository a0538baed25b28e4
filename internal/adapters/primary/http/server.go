package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// ErrNoDiff is returned when a diff is requested before one was published
var ErrNoDiff = errors.New("no diff loaded")

const (
	// Upper bound for POST /api/diff request bodies
	maxCompareBodyBytes = 5 << 20

	requestsPerMinute = 300
)

// Server serves the current diff as an HTML report, a JSON API and a
// WebSocket stream of updates
type Server struct {
	server     *http.Server
	listener   net.Listener
	connMgr    *ConnectionManager
	comparer   ports.ComparisonService
	reports    ports.ReportService
	config     *entities.ServerConfig
	reportOpts ports.ReportOptions
	limiter    *rateLimiter
	proxies    trustedProxies
	logger     *slog.Logger
	version    string

	mu      sync.RWMutex
	diff    *entities.PresentationDiff
	running bool
	cancel  context.CancelFunc
}

// NewServer creates a new HTTP server
// config must not be nil - use config.GetDefaultConfig().Server if needed
func NewServer(comparer ports.ComparisonService, reports ports.ReportService, config *entities.ServerConfig, logger *slog.Logger) *Server {
	if config == nil {
		panic("server config cannot be nil - provide a valid ServerConfig")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		comparer: comparer,
		reports:  reports,
		config:   config,
		connMgr:  NewConnectionManager(),
		limiter:  newRateLimiter(requestsPerMinute, time.Minute),
		proxies:  newTrustedProxies(config.TrustedProxies),
		logger:   logger.With("component", "http"),
		version:  "dev",
	}
}

// SetVersion sets the version reported to clients
func (s *Server) SetVersion(version string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = version
}

// SetReportOptions sets the options used for the HTML and JSON reports
func (s *Server) SetReportOptions(opts ports.ReportOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportOpts = opts
}

// SetDiff replaces the diff being served
func (s *Server) SetDiff(diff *entities.PresentationDiff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diff = diff
}

// GetDiff returns the diff being served
func (s *Server) GetDiff() *entities.PresentationDiff {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diff
}

// PublishDiff stores diff and tells connected clients about it
func (s *Server) PublishDiff(ctx context.Context, diff *entities.PresentationDiff) error {
	s.SetDiff(diff)

	if !s.IsRunning() {
		return nil
	}

	return s.NotifyClients(ports.UpdateEvent{
		Type:      ports.EventTypeDiffUpdated,
		Timestamp: time.Now(),
		Data:      newSummaryResponse(diff),
	})
}

// Start starts the HTTP server. Port 0 picks a free port, see Addr.
func (s *Server) Start(ctx context.Context, port int, host string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.connMgr = NewConnectionManager()
	go s.connMgr.Run(runCtx)

	s.listener = listener
	s.cancel = cancel
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.config.GetReadTimeout(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.GetWriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	s.running = true

	server := s.server
	go func() {
		s.logger.Info("HTTP server starting", slog.String("addr", listener.Addr().String()))
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Addr returns the address the server listens on
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return errors.New("server not running")
	}

	// Close all WebSocket connections
	s.connMgr.CloseAll()
	s.cancel()

	server := s.server
	s.running = false
	s.listener = nil
	s.mu.Unlock()

	// Handlers take the read lock, so shut down without holding it
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// NotifyClients sends an update event to all connected clients
func (s *Server) NotifyClients(event ports.UpdateEvent) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return errors.New("server not running")
	}

	s.connMgr.Broadcast(event)
	return nil
}

// IsRunning returns whether the server is currently running
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Handler returns the routed handler with middleware and CORS applied
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/diff", s.handleDiff).Methods(http.MethodGet)
	api.HandleFunc("/diff", s.handleCompare).Methods(http.MethodPost)
	api.HandleFunc("/diff/summary", s.handleDiffSummary).Methods(http.MethodGet)
	api.HandleFunc("/config", s.handleConfig).Methods(http.MethodGet)

	router.HandleFunc("/", s.handleReport).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("no route for %s", r.URL.Path), http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.handleError(w, fmt.Errorf("%s not allowed on %s", r.Method, r.URL.Path), http.StatusMethodNotAllowed)
	})

	// Apply middleware in order: security -> rate limiting -> logging -> recovery
	var handler http.Handler = router
	handler = securityHeadersMiddleware(handler)
	handler = rateLimitMiddleware(handler, s.limiter, s.proxies)
	handler = createLoggingMiddleware(handler, s.logger)
	handler = createRecoveryMiddleware(handler, s.logger)

	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetCORSOrigins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	})

	return c.Handler(handler)
}

var (
	_ ports.HTTPServer    = (*Server)(nil)
	_ ports.DiffPublisher = (*Server)(nil)
)
