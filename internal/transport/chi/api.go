package chi

import (
	"time"

	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
)

// ErrorCode is the machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnknownPopulation ErrorCode = "unknown_population"
	ErrorCodeSessionNotFound   ErrorCode = "session_not_found"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeUnsupportedPlot   ErrorCode = "unsupported_plot"
	ErrorCodeArchiveError      ErrorCode = "archive_error"
	ErrorCodeLLMProviderError  ErrorCode = "llm_provider_error"
	ErrorCodeNotImplemented    ErrorCode = "not_implemented"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ResultResponse is a query result with all rows.
type ResultResponse struct {
	Description string           `json:"description"`
	Query       string           `json:"query"`
	RowCount    int              `json:"row_count"`
	Columns     []string         `json:"columns"`
	Rows        []map[string]any `json:"rows"`
	PlotType    string           `json:"plot_type,omitempty"`
}

func resultToResponse(r result.Result, plotType string) ResultResponse {
	t := r.Table()
	return ResultResponse{
		Description: r.Description(),
		Query:       r.Query(),
		RowCount:    r.RowCount(),
		Columns:     t.Columns(),
		Rows:        t.Records(),
		PlotType:    plotType,
	}
}

// RawQueryRequest is the body of POST /query.
type RawQueryRequest struct {
	Query     string  `json:"query"`
	SessionID *string `json:"session_id,omitempty"`
}

// BuildQueryRequest is the body of POST /query/build.
type BuildQueryRequest struct {
	Columns    []string `json:"columns"`
	Conditions []string `json:"conditions"`
	Limit      *int     `json:"limit,omitempty"`
	OrderBy    *string  `json:"order_by,omitempty"`
}

// BuildQueryResponse carries the assembled ADQL.
type BuildQueryResponse struct {
	Query string `json:"query"`
}

// Population describes one registered selection criterion.
type Population struct {
	Key         string   `json:"key"`
	Name        string   `json:"name"`
	Kind        string   `json:"kind"`
	Aliases     []string `json:"aliases,omitempty"`
	PreFilter   []string `json:"pre_filter,omitempty"`
	Description string   `json:"description"`
}

func populationToResponse(c population.Criterion) Population {
	return Population{
		Key:         c.Key,
		Name:        c.Name,
		Kind:        string(c.Kind),
		Aliases:     c.Aliases,
		PreFilter:   c.PreFilter,
		Description: c.Description,
	}
}

// PopulationListResponse is the body of GET /populations.
type PopulationListResponse struct {
	Items []Population `json:"items"`
}

// SessionResponse describes a chat session.
type SessionResponse struct {
	ID        string    `json:"id"`
	Messages  int       `json:"messages"`
	HasResult bool      `json:"has_result"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func sessionToResponse(s domsession.Session) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		Messages:  len(s.History),
		HasResult: s.Last != nil,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// ChatRequest is the body of POST /sessions/{id}/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the assistant's reply with a compact view of any new result.
type ChatResponse struct {
	Message  string          `json:"message"`
	PlotType string          `json:"plot_type,omitempty"`
	Query    string          `json:"query,omitempty"`
	Result   *result.Summary `json:"result,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}
