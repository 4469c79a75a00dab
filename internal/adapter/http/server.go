package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/willojs/FARS/internal/domain"
	"github.com/willojs/FARS/internal/pipeline"
)

var validate = validator.New()

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Service is the part of pipeline.Service the HTTP API exposes.
type Service interface {
	ReadinessChecker
	SummarizeYears(ctx context.Context, years []domain.Year) (*domain.Summary, error)
	MapState(ctx context.Context, state int, year domain.Year, r pipeline.Renderer) error
}

// PublishService loads years and hands them to a publisher.
type PublishService interface {
	PublishYears(ctx context.Context, years []domain.Year, p pipeline.Publisher) (int, error)
}

// RendererFactory builds a renderer that writes an image of the given format
// to w, along with the image's content type.
type RendererFactory func(w io.Writer, format string) (pipeline.Renderer, string, error)

// Server exposes the FARS query API alongside health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	svc        Service
	renderers  RendererFactory
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /summary, and /map routes.
func NewServer(addr string, svc Service, renderers RendererFactory, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		mux:       mux,
		svc:       svc,
		renderers: renderers,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(svc))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /map", s.handleMap)

	return s
}

// EnablePublish adds POST /publish?years=2013,2014, which loads the years
// through svc and sends their records to p. Call it before Start.
func (s *Server) EnablePublish(svc PublishService, p pipeline.Publisher) {
	s.mux.HandleFunc("POST /publish", func(w http.ResponseWriter, r *http.Request) {
		raw := splitList(r.URL.Query().Get("years"))
		if len(raw) == 0 {
			writeError(w, http.StatusBadRequest, errors.New("years is required"))
			return
		}
		n, err := svc.PublishYears(r.Context(), domain.ParseYears(raw), p)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]int{"published": n})
	})
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type summaryResponse struct {
	Years []int               `json:"years"`
	Rows  []domain.SummaryRow `json:"rows"`
}

// handleSummary serves GET /summary?years=2013,2014[&format=csv].
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	raw := splitList(r.URL.Query().Get("years"))
	if len(raw) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("years is required"))
		return
	}

	summary, err := s.svc.SummarizeYears(r.Context(), domain.ParseYears(raw))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		w.Header().Set("Content-Type", "text/csv")
		if err := summary.WriteCSV(w); err != nil {
			s.logger.Error("write summary csv", "error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Years: summary.Years(), Rows: summary.Rows()})
}

type mapQuery struct {
	State  int    `validate:"gt=0"`
	Year   int    `validate:"gt=0"`
	Format string `validate:"required,alphanum"`
}

func (q *mapQuery) bind(r *http.Request) error {
	values := r.URL.Query()

	state, err := strconv.Atoi(values.Get("state"))
	if err != nil {
		return errors.New("state must be an integer")
	}
	year, ok := domain.ParseYear(values.Get("year")).Int()
	if !ok {
		return errors.New("year must be an integer")
	}

	q.State, q.Year = state, year
	q.Format = strings.ToLower(values.Get("format"))
	if q.Format == "" {
		q.Format = "png"
	}
	return validate.Struct(q)
}

// handleMap serves GET /map?state=1&year=2013[&format=png]. A state with no
// located accidents answers 204.
func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	var q mapQuery
	if err := q.bind(r); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	renderer, contentType, err := s.renderers(&buf, q.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.svc.MapState(r.Context(), q.State, domain.NewYear(q.Year), renderer); err != nil {
		s.writeServiceError(w, err)
		return
	}
	if buf.Len() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Error("write map", "error", err)
	}
}

func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrFileNotFound),
		errors.Is(err, domain.ErrNoData),
		errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusNotFound, err)
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
