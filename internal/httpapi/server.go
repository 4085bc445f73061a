package httpapi

import (
	"context"
	"net"
	"net/http"
	"time"

	"codeberg.org/mutker/producflow/internal/errors"
	"codeberg.org/mutker/producflow/internal/logger"
	"codeberg.org/mutker/producflow/internal/metrics"
	"codeberg.org/mutker/producflow/internal/monitoring"
	"codeberg.org/mutker/producflow/internal/telemetry"
	"github.com/gorilla/mux"
)

// Server exposes the record store and reports over HTTP.
type Server struct {
	cfg         Config
	store       Store
	reporter    metrics.Reporter
	collector   telemetry.Collector
	metrics     *monitoring.Metrics
	invalidator Invalidator
	logger      logger.Logger
	now         func() time.Time

	handler    http.Handler
	httpServer *http.Server
}

type Option func(*Server)

// WithMetrics instruments every route and serves /metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithInvalidator is called after every write that changes report inputs.
func WithInvalidator(inv Invalidator) Option {
	return func(s *Server) {
		s.invalidator = inv
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func New(cfg Config, store Store, reporter metrics.Reporter, collector telemetry.Collector, log logger.Logger, opts ...Option) (*Server, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	s := &Server{
		cfg:       cfg,
		store:     store,
		reporter:  reporter,
		collector: collector,
		logger:    log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not Found"})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method Not Allowed"})
	})
	router.Use(s.requestID, s.observe)
	s.routes(router)

	s.handler = s.wrap(router)
	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

func (s *Server) routes(r *mux.Router) {
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	r.HandleFunc("/equipment", s.listEquipment).Methods(http.MethodGet)
	r.HandleFunc("/equipment", s.createEquipment).Methods(http.MethodPost)
	r.HandleFunc("/equipment/{id:[0-9]+}", s.getEquipment).Methods(http.MethodGet)
	r.HandleFunc("/equipment/{id:[0-9]+}/sensors", s.listSensorReadings).Methods(http.MethodGet)
	r.HandleFunc("/equipment/{id:[0-9]+}/sensors", s.createSensorReading).Methods(http.MethodPost)

	r.HandleFunc("/maintenance", s.listAlerts).Methods(http.MethodGet)
	r.HandleFunc("/maintenance", s.createAlert).Methods(http.MethodPost)
	r.HandleFunc("/maintenance/logs", s.listMaintenanceLogs).Methods(http.MethodGet)
	r.HandleFunc("/maintenance/logs", s.createMaintenanceLog).Methods(http.MethodPost)
	r.HandleFunc("/maintenance/logs/{id:[0-9]+}", s.getMaintenanceLog).Methods(http.MethodGet)
	r.HandleFunc("/maintenance/logs/{id:[0-9]+}/status", s.updateMaintenanceLogStatus).Methods(http.MethodPatch)

	r.HandleFunc("/production/metrics", s.productionMetrics).Methods(http.MethodGet)
	r.HandleFunc("/production/records", s.listProductionRecords).Methods(http.MethodGet)
	r.HandleFunc("/production/records", s.createProductionRecord).Methods(http.MethodPost)
	r.HandleFunc("/production/records/{id:[0-9]+}", s.getProductionRecord).Methods(http.MethodGet)
	r.HandleFunc("/production/records/{id:[0-9]+}", s.updateProductionRecord).Methods(http.MethodPut)
	r.HandleFunc("/production/shifts/summary", s.shiftSummaries).Methods(http.MethodGet)
	r.HandleFunc("/production/export", s.exportProduction).Methods(http.MethodGet)

	r.HandleFunc("/dashboard/summary", s.dashboardSummary).Methods(http.MethodGet)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errFactory := errors.New()

	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errFactory.Wrap(ErrServe, err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errFactory.Wrap(ErrServe, err)
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return errFactory.Wrap(ErrShutdown, err)
	}
	<-errCh

	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("Health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "unhealthy",
			"timestamp": s.now().UTC(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC(),
	})
}

// invalidate drops cached reports; a failure only costs freshness until the TTL.
func (s *Server) invalidate(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to invalidate report cache")
	}
}
