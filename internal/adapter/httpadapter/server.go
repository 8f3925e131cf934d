package httpadapter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Advisor produces assessments for the dashboard routes.
type Advisor interface {
	Synthetic(ctx context.Context, userID string) (domain.Report, error)
	Recharge(ctx context.Context, token domain.Token) (domain.Report, error)
}

// TrendRenderer draws a series as an image.
type TrendRenderer interface {
	RenderTrend(w io.Writer, title string, series []domain.RecoveryReading) error
}

// Server exposes the dashboard API alongside health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	advisor    Advisor
	charts     TrendRenderer
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and the
// /api/v1 assessment routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, adv Advisor, charts TrendRenderer, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		advisor: adv,
		charts:  charts,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/synthetic", s.handleSynthetic)
	mux.HandleFunc("GET /api/v1/synthetic/chart.png", s.handleSyntheticChart)
	mux.HandleFunc("GET /api/v1/recharge", s.handleRecharge)

	return s
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

func (s *Server) handleSynthetic(w http.ResponseWriter, r *http.Request) {
	report, err := s.advisor.Synthetic(r.Context(), r.URL.Query().Get("user_id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

func (s *Server) handleSyntheticChart(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	report, err := s.advisor.Synthetic(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := s.charts.RenderTrend(&buf, "ANS trend: "+userID, report.Series); err != nil {
		s.logger.Error("chart render failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "chart render failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleRecharge(w http.ResponseWriter, r *http.Request) {
	token, err := domain.ParseBearer(r.Header.Get("Authorization"))
	if err != nil {
		w.Header().Set("WWW-Authenticate", "Bearer")
		sharedobs.WriteJSON(w, http.StatusUnauthorized, errorBody{Error: "missing bearer token"})
		return
	}

	report, err := s.advisor.Recharge(r.Context(), token)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, report)
}

type errorBody struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

type warningBody struct {
	Warning string             `json:"warning"`
	Banner  domain.BannerLevel `json:"banner"`
}

// writeError maps assessment errors to responses. Absent data is a warning,
// not a failure.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var apiErr *domain.APIError
	var urlErr *url.Error
	switch {
	case errors.Is(err, domain.ErrInputMissing):
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: "user_id is required"})
	case errors.Is(err, domain.ErrNoData):
		sharedobs.WriteJSON(w, http.StatusOK, warningBody{
			Warning: "no nightly recharge data available",
			Banner:  domain.BannerWarning,
		})
	case errors.As(err, &apiErr):
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody{Error: apiErr.Error(), UpstreamStatus: apiErr.StatusCode})
	case errors.Is(err, domain.ErrMalformedResponse):
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody{Error: "malformed recharge response"})
	case isTimeout(err):
		sharedobs.WriteJSON(w, http.StatusGatewayTimeout, errorBody{Error: "recharge request timed out"})
	case errors.As(err, &urlErr):
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorBody{Error: "recharge API unreachable"})
	default:
		s.logger.Error("request failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
