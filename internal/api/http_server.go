package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"dodscars/internal/config"
	"dodscars/internal/database"
	"dodscars/internal/metrics"
	"dodscars/internal/models"
	"dodscars/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HTTPServer exposes the rental API over HTTP. Authentication of end users
// happens upstream; requests carry the acting identity in headers.
type HTTPServer struct {
	cfg          config.APIConfig
	fleet        *service.FleetService
	bookings     *service.BookingService
	availability *service.AvailabilityService
	maintenance  *service.MaintenanceService
	logger       *zerolog.Logger
	server       *http.Server
	auth         *HTTPAuth
}

func NewHTTPServer(
	cfg config.APIConfig,
	fleet *service.FleetService,
	bookings *service.BookingService,
	availability *service.AvailabilityService,
	maintenance *service.MaintenanceService,
	logger *zerolog.Logger,
) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{
		cfg:          cfg,
		fleet:        fleet,
		bookings:     bookings,
		availability: availability,
		maintenance:  maintenance,
		logger:       logger,
	}
	srv.auth = NewHTTPAuth(cfg)

	mux.HandleFunc("/api/v1/cars/search", srv.handleSearch)
	mux.HandleFunc("/api/v1/cars/", srv.handleCarByID)
	mux.HandleFunc("/api/v1/cars", srv.handleCars)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/maintenance/", srv.handleMaintenanceByID)
	mux.HandleFunc("/api/v1/maintenance", srv.handleMaintenance)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the fully wrapped handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("x-request-id"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("x-request-id", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		metrics.IncHTTP(endpointLabel(r.URL.Path))
		s.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

// endpointLabel collapses ids out of paths so metric cardinality stays flat.
func endpointLabel(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = "{id}"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// actorFromRequest reads the acting identity from headers. The upstream
// gateway authenticates users and stamps these on every request.
func actorFromRequest(r *http.Request) (models.Actor, error) {
	rawID := strings.TrimSpace(r.Header.Get("x-acting-user"))
	role := strings.TrimSpace(r.Header.Get("x-acting-role"))
	if rawID == "" || role == "" {
		return models.Actor{}, fmt.Errorf("x-acting-user and x-acting-role headers are required")
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return models.Actor{}, fmt.Errorf("invalid x-acting-user header")
	}
	return models.Actor{UserID: id, Role: role}, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, database.ErrInvalidRange),
		errors.Is(err, database.ErrVehicleUnavailable):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, database.ErrConflict),
		errors.Is(err, database.ErrInvalidState),
		errors.Is(err, database.ErrVehicleInUse):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
