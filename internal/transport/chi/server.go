package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/export"
	"github.com/kailas-cloud/gaiachat/internal/logger"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/gaiachat/internal/usecase/health"
	"github.com/kailas-cloud/gaiachat/internal/usecase/plot"
	"github.com/kailas-cloud/gaiachat/internal/version"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the catalog, session and chat API.
type Server struct {
	catalog       CatalogService
	sessions      SessionService
	chat          ChatService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. chat can be nil when no LLM is configured.
func NewServer(
	catalog CatalogService,
	sessions SessionService,
	chat ChatService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		catalog:  catalog,
		sessions: sessions,
		chat:     chat,
		health:   health,
		logger:   logger,
	}
	// Order matters: unknown populations are also invalid input.
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnknownPopulation, http.StatusBadRequest, ErrorCodeUnknownPopulation),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, ErrorCodeSessionNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrUnsupportedPlot, http.StatusUnprocessableEntity, ErrorCodeUnsupportedPlot),
		sentinelHandler(domain.ErrArchiveQuery, http.StatusBadGateway, ErrorCodeArchiveError),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, ErrorCodeLLMProviderError),
	}
	return s
}

// SearchCone handles GET /search/cone.
func (s *Server) SearchCone(w http.ResponseWriter, r *http.Request, params SearchConeParams) {
	res, err := s.catalog.SearchCone(r.Context(), catalog.ConeParams{
		RA:        params.RA,
		Dec:       params.Dec,
		RadiusDeg: derefFloat(params.Radius, catalog.DefaultConeRadiusDeg),
		Limit:     derefInt(params.Limit),
	})
	s.respondResult(w, r, res, err, params.SessionID)
}

// SearchSolarNeighborhood handles GET /search/solar-neighborhood.
func (s *Server) SearchSolarNeighborhood(w http.ResponseWriter, r *http.Request, params SearchSolarParams) {
	res, err := s.catalog.SearchSolarNeighborhood(r.Context(), catalog.SolarParams{
		DistancePc: derefFloat(params.DistancePc, catalog.DefaultSolarDistancePc),
		Limit:      derefInt(params.Limit),
	})
	s.respondResult(w, r, res, err, params.SessionID)
}

// SearchHypervelocity handles GET /search/hypervelocity.
func (s *Server) SearchHypervelocity(w http.ResponseWriter, r *http.Request, params SearchHypervelocityParams) {
	res, err := s.catalog.SearchHypervelocity(r.Context(), catalog.HypervelocityParams{
		DistanceKpc:    derefFloat(params.DistanceKpc, catalog.DefaultHVSDistanceKpc),
		MinVelocityKms: derefFloat(params.MinVelocityKms, catalog.DefaultHVSMinVelocity),
		Limit:          derefInt(params.Limit),
	})
	s.respondResult(w, r, res, err, params.SessionID)
}

// SearchStream handles GET /search/streams/{name}.
func (s *Server) SearchStream(w http.ResponseWriter, r *http.Request, name string, params SearchStreamParams) {
	res, err := s.catalog.SearchStream(r.Context(), catalog.StreamParams{
		Name:  name,
		Limit: derefInt(params.Limit),
	})
	s.respondResult(w, r, res, err, params.SessionID)
}

// SearchAccretedHalo handles GET /search/accreted-halo.
func (s *Server) SearchAccretedHalo(w http.ResponseWriter, r *http.Request, params SearchHaloParams) {
	res, err := s.catalog.SearchAccretedHalo(r.Context(), catalog.HaloParams{
		RetrogradeOnly: derefBool(params.RetrogradeOnly),
		Limit:          derefInt(params.Limit),
	})
	s.respondResult(w, r, res, err, params.SessionID)
}

// ExecuteQuery handles POST /query.
func (s *Server) ExecuteQuery(w http.ResponseWriter, r *http.Request) {
	var req RawQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	res, err := s.catalog.ExecuteRaw(r.Context(), req.Query)
	s.respondResult(w, r, res, err, req.SessionID)
}

// BuildQuery handles POST /query/build.
func (s *Server) BuildQuery(w http.ResponseWriter, r *http.Request) {
	var req BuildQueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	orderBy := ""
	if req.OrderBy != nil {
		orderBy = *req.OrderBy
	}
	q, err := s.catalog.BuildQuery(catalog.BuildParams{
		Columns:    req.Columns,
		Conditions: req.Conditions,
		Limit:      derefInt(req.Limit),
		OrderBy:    orderBy,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, BuildQueryResponse{Query: q})
}

// ListPopulations handles GET /populations.
func (s *Server) ListPopulations(w http.ResponseWriter, _ *http.Request) {
	all := s.catalog.Populations()
	items := make([]Population, len(all))
	for i, c := range all {
		items[i] = populationToResponse(c)
	}
	writeJSON(w, http.StatusOK, PopulationListResponse{Items: items})
}

// CreateSession handles POST /sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionToResponse(sess))
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, id string) {
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionToResponse(sess))
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.sessions.Reset(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Chat handles POST /sessions/{id}/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request, id string) {
	if s.chat == nil {
		writeError(w, http.StatusNotImplemented, ErrorCodeNotImplemented, "chat is disabled: no LLM configured")
		return
	}
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.chat.Chat(r.Context(), id, req.Message)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	out := ChatResponse{Message: resp.Message, PlotType: resp.PlotType, Query: resp.Query}
	if resp.Result != nil {
		sum := resp.Result.Summary()
		out.Result = &sum
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSessionResult handles GET /sessions/{id}/result.
func (s *Server) GetSessionResult(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.sessions.LastResult(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultToResponse(snap.Result(), snap.PlotType))
}

// ExportSessionResult handles GET /sessions/{id}/result.csv.
func (s *Server) ExportSessionResult(w http.ResponseWriter, r *http.Request, id string) {
	snap, err := s.sessions.LastResult(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="gaia_results.csv"`)
	w.WriteHeader(http.StatusOK)
	if err := export.CSV(w, snap.Result().Table()); err != nil {
		logger.FromContext(r.Context()).Warn("CSV export interrupted", zap.Error(err))
	}
}

// GetSessionPlot handles GET /sessions/{id}/plots/{type}.
func (s *Server) GetSessionPlot(w http.ResponseWriter, r *http.Request, id, plotType string) {
	snap, err := s.sessions.LastResult(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	fig, err := plot.Build(snap.Result().Table(), plotType)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fig)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// respondResult writes a search outcome and, when sessionID is set, records
// the result as that session's last result.
func (s *Server) respondResult(
	w http.ResponseWriter, r *http.Request, res result.Result, err error, sessionID *string,
) {
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if sessionID != nil && *sessionID != "" {
		if err := s.sessions.RecordResult(r.Context(), *sessionID, res, ""); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resultToResponse(res, ""))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefFloat(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// clientSentinels are the errors whose messages are safe to show callers.
var clientSentinels = []error{
	domain.ErrUnknownPopulation,
	domain.ErrInvalidInput,
	domain.ErrSessionNotFound,
	domain.ErrNotFound,
	domain.ErrUnsupportedPlot,
	domain.ErrArchiveQuery,
	domain.ErrLLMProviderError,
}

// safeDomainMessage returns the error text for classified errors and a generic
// message for everything else.
func safeDomainMessage(err error) string {
	for _, s := range clientSentinels {
		if errors.Is(err, s) {
			return err.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
