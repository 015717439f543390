package chi

import (
	"fmt"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// InvalidParamError reports a query or path parameter that failed to bind.
type InvalidParamError struct {
	Param string
	Err   error
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %v", e.Param, e.Err)
}

func (e *InvalidParamError) Unwrap() error { return e.Err }

// ServerOptions configures HandlerWithOptions.
type ServerOptions struct {
	BaseRouter       gochi.Router
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// SearchConeParams are the query parameters of GET /search/cone.
type SearchConeParams struct {
	RA        float64
	Dec       float64
	Radius    *float64
	Limit     *int
	SessionID *string
}

// SearchSolarParams are the query parameters of GET /search/solar-neighborhood.
type SearchSolarParams struct {
	DistancePc *float64
	Limit      *int
	SessionID  *string
}

// SearchHypervelocityParams are the query parameters of GET /search/hypervelocity.
type SearchHypervelocityParams struct {
	DistanceKpc    *float64
	MinVelocityKms *float64
	Limit          *int
	SessionID      *string
}

// SearchStreamParams are the query parameters of GET /search/streams/{name}.
type SearchStreamParams struct {
	Limit     *int
	SessionID *string
}

// SearchHaloParams are the query parameters of GET /search/accreted-halo.
type SearchHaloParams struct {
	RetrogradeOnly *bool
	Limit          *int
	SessionID      *string
}

// Handler returns the API router with default options.
func Handler(s *Server) http.Handler {
	return HandlerWithOptions(s, ServerOptions{})
}

// HandlerWithOptions mounts every API route on opts.BaseRouter.
func HandlerWithOptions(s *Server, opts ServerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = gochi.NewRouter()
	}
	errorHandler := opts.ErrorHandlerFunc
	if errorHandler == nil {
		errorHandler = func(w http.ResponseWriter, _ *http.Request, err error) {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		}
	}
	b := binder{onError: errorHandler}

	r.Get("/search/cone", func(w http.ResponseWriter, req *http.Request) {
		var p SearchConeParams
		if !b.query(w, req, "ra", true, &p.RA) ||
			!b.query(w, req, "dec", true, &p.Dec) ||
			!b.query(w, req, "radius", false, &p.Radius) ||
			!b.query(w, req, "limit", false, &p.Limit) ||
			!b.query(w, req, "session_id", false, &p.SessionID) {
			return
		}
		s.SearchCone(w, req, p)
	})
	r.Get("/search/solar-neighborhood", func(w http.ResponseWriter, req *http.Request) {
		var p SearchSolarParams
		if !b.query(w, req, "distance_pc", false, &p.DistancePc) ||
			!b.query(w, req, "limit", false, &p.Limit) ||
			!b.query(w, req, "session_id", false, &p.SessionID) {
			return
		}
		s.SearchSolarNeighborhood(w, req, p)
	})
	r.Get("/search/hypervelocity", func(w http.ResponseWriter, req *http.Request) {
		var p SearchHypervelocityParams
		if !b.query(w, req, "distance_kpc", false, &p.DistanceKpc) ||
			!b.query(w, req, "min_velocity_kms", false, &p.MinVelocityKms) ||
			!b.query(w, req, "limit", false, &p.Limit) ||
			!b.query(w, req, "session_id", false, &p.SessionID) {
			return
		}
		s.SearchHypervelocity(w, req, p)
	})
	r.Get("/search/streams/{name}", func(w http.ResponseWriter, req *http.Request) {
		var name string
		var p SearchStreamParams
		if !b.path(w, req, "name", &name) ||
			!b.query(w, req, "limit", false, &p.Limit) ||
			!b.query(w, req, "session_id", false, &p.SessionID) {
			return
		}
		s.SearchStream(w, req, name, p)
	})
	r.Get("/search/accreted-halo", func(w http.ResponseWriter, req *http.Request) {
		var p SearchHaloParams
		if !b.query(w, req, "retrograde_only", false, &p.RetrogradeOnly) ||
			!b.query(w, req, "limit", false, &p.Limit) ||
			!b.query(w, req, "session_id", false, &p.SessionID) {
			return
		}
		s.SearchAccretedHalo(w, req, p)
	})

	r.Post("/query", s.ExecuteQuery)
	r.Post("/query/build", s.BuildQuery)
	r.Get("/populations", s.ListPopulations)

	r.Post("/sessions", s.CreateSession)
	r.Get("/sessions/{id}", b.withID(s.GetSession))
	r.Delete("/sessions/{id}", b.withID(s.DeleteSession))
	r.Post("/sessions/{id}/chat", b.withID(s.Chat))
	r.Get("/sessions/{id}/result", b.withID(s.GetSessionResult))
	r.Get("/sessions/{id}/result.csv", b.withID(s.ExportSessionResult))
	r.Get("/sessions/{id}/plots/{type}", func(w http.ResponseWriter, req *http.Request) {
		var id, plotType string
		if !b.path(w, req, "id", &id) || !b.path(w, req, "type", &plotType) {
			return
		}
		s.GetSessionPlot(w, req, id, plotType)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	return r
}

type binder struct {
	onError func(w http.ResponseWriter, r *http.Request, err error)
}

func (b binder) query(w http.ResponseWriter, r *http.Request, name string, required bool, dest any) bool {
	if err := runtime.BindQueryParameter("form", true, required, name, r.URL.Query(), dest); err != nil {
		b.onError(w, r, &InvalidParamError{Param: name, Err: err})
		return false
	}
	return true
}

func (b binder) path(w http.ResponseWriter, r *http.Request, name string, dest any) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, gochi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		b.onError(w, r, &InvalidParamError{Param: name, Err: err})
		return false
	}
	return true
}

func (b binder) withID(h func(w http.ResponseWriter, r *http.Request, id string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		if !b.path(w, r, "id", &id) {
			return
		}
		h(w, r, id)
	}
}
