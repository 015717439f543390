package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
	"github.com/kailas-cloud/gaiachat/internal/usecase/plot"
)

// Tool names exposed to the chat model.
const (
	ToolSolarNeighborhood = "search_solar_neighborhood"
	ToolCone              = "search_cone"
	ToolHypervelocity     = "search_hypervelocity_stars"
	ToolStream            = "search_stellar_stream"
	ToolAccretedHalo      = "search_accreted_halo"
	ToolCustomADQL        = "execute_custom_adql"
	ToolVisualization     = "suggest_visualization"
)

// turn carries what tools produced during one chat exchange.
type turn struct {
	prior    *domsession.Snapshot
	last     *result.Result
	plotType string
}

func (t *turn) hasData() bool {
	if t.last != nil {
		return t.last.RowCount() > 0
	}
	return t.prior != nil && len(t.prior.Stars) > 0
}

type handler func(ctx context.Context, args json.RawMessage, t *turn) (map[string]any, error)

// Tool binds a ToolSpec to its handler.
type Tool struct {
	Spec   ToolSpec
	handle handler
}

// Registry dispatches tool calls by name.
type Registry struct {
	byName map[string]Tool
	specs  []ToolSpec
}

// NewRegistry validates tool names and indexes the tools.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if t.Spec.Name == "" || t.handle == nil {
			return nil, fmt.Errorf("tool %q is incomplete", t.Spec.Name)
		}
		if _, dup := r.byName[t.Spec.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", t.Spec.Name)
		}
		r.byName[t.Spec.Name] = t
		r.specs = append(r.specs, t.Spec)
	}
	return r, nil
}

// Specs returns the tool specs in registration order.
func (r *Registry) Specs() []ToolSpec {
	return append([]ToolSpec(nil), r.specs...)
}

// execute runs a call and always returns a payload. Failures become
// {"success": false, "error": ...} so the model can explain them.
func (r *Registry) execute(ctx context.Context, call domsession.ToolCall, t *turn) (map[string]any, error) {
	tool, ok := r.byName[call.Name]
	if !ok {
		err := fmt.Errorf("unknown tool: %s", call.Name)
		return failure(err), err
	}
	args := json.RawMessage(strings.TrimSpace(call.Arguments))
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	payload, err := tool.handle(ctx, args, t)
	if err != nil {
		return failure(err), err
	}
	payload["success"] = true
	return payload, nil
}

func failure(err error) map[string]any {
	return map[string]any{"success": false, "error": err.Error()}
}

func decode(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return domain.Invalidf("invalid tool arguments: %v", err)
	}
	return nil
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func summary(r result.Result, extra map[string]any) map[string]any {
	out := map[string]any{
		"row_count":   r.RowCount(),
		"description": r.Description(),
		"query":       r.Query(),
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func limitParam() map[string]any {
	return map[string]any{"type": "integer", "description": "Maximum number of results"}
}

// DefaultTools returns the catalog tools backed by c.
func DefaultTools(c Catalog) []Tool {
	return []Tool{
		{
			Spec: ToolSpec{
				Name:        ToolSolarNeighborhood,
				Description: "Search for stars near the Sun within a specified distance",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"distance_pc": map[string]any{"type": "number", "description": "Maximum distance in parsecs (default 100)"},
						"limit":       limitParam(),
					},
				},
			},
			handle: func(ctx context.Context, args json.RawMessage, t *turn) (map[string]any, error) {
				var a struct {
					DistancePc *float64 `json:"distance_pc"`
					Limit      float64  `json:"limit"`
				}
				if err := decode(args, &a); err != nil {
					return nil, err
				}
				r, err := c.SearchSolarNeighborhood(ctx, catalog.SolarParams{
					DistancePc: orDefault(a.DistancePc, catalog.DefaultSolarDistancePc),
					Limit:      int(a.Limit),
				})
				if err != nil {
					return nil, err
				}
				t.last = &r
				s := r.Summary()
				return summary(r, map[string]any{"columns": s.Columns, "sample": s.Sample}), nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolCone,
				Description: "Search for stars within a cone around a sky position",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"ra":     map[string]any{"type": "number", "description": "Right Ascension in degrees"},
						"dec":    map[string]any{"type": "number", "description": "Declination in degrees"},
						"radius": map[string]any{"type": "number", "description": "Search radius in degrees (default 1.0)"},
						"limit":  limitParam(),
					},
					"required": []string{"ra", "dec"},
				},
			},
			handle: func(ctx context.Context, args json.RawMessage, t *turn) (map[string]any, error) {
				var a struct {
					RA     *float64 `json:"ra"`
					Dec    *float64 `json:"dec"`
					Radius *float64 `json:"radius"`
					Limit  float64  `json:"limit"`
				}
				if err := decode(args, &a); err != nil {
					return nil, err
				}
				if a.RA == nil || a.Dec == nil {
					return nil, domain.Invalidf("ra and dec are required")
				}
				r, err := c.SearchCone(ctx, catalog.ConeParams{
					RA:        *a.RA,
					Dec:       *a.Dec,
					RadiusDeg: orDefault(a.Radius, catalog.DefaultConeRadiusDeg),
					Limit:     int(a.Limit),
				})
				if err != nil {
					return nil, err
				}
				t.last = &r
				return summary(r, nil), nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolHypervelocity,
				Description: "Search for hypervelocity star candidates with high total velocities",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"distance_kpc":     map[string]any{"type": "number", "description": "Maximum distance in kiloparsecs (default 5)"},
						"min_velocity_kms": map[string]any{"type": "number", "description": "Minimum total velocity in km/s (default 300)"},
						"limit":            limitParam(),
					},
				},
			},
			handle: func(ctx context.Context, args json.RawMessage, t *turn) (map[string]any, error) {
				var a struct {
					DistanceKpc    *float64 `json:"distance_kpc"`
					MinVelocityKms *float64 `json:"min_velocity_kms"`
					Limit          float64  `json:"limit"`
				}
				if err := decode(args, &a); err != nil {
					return nil, err
				}
				r, err := c.SearchHypervelocity(ctx, catalog.HypervelocityParams{
					DistanceKpc:    orDefault(a.DistanceKpc, catalog.DefaultHVSDistanceKpc),
					MinVelocityKms: orDefault(a.MinVelocityKms, catalog.DefaultHVSMinVelocity),
					Limit:          int(a.Limit),
				})
				if err != nil {
					return nil, err
				}
				t.last = &r
				return summary(r, map[string]any{
					"columns":        r.Table().Columns(),
					"has_velocities": r.Table().HasKinematics(),
				}), nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolStream,
				Description: "Search for stars belonging to known stellar streams like Nyx, GSE, Helmi, or Sequoia",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stream_name": map[string]any{
							"type":        "string",
							"description": "Name of the stream",
							"enum":        []string{"Nyx", "GSE", "Gaia-Sausage-Enceladus", "Helmi", "Sequoia"},
						},
						"limit": limitParam(),
					},
					"required": []string{"stream_name"},
				},
			},
			handle: func(ctx context.Context, args json.RawMessage, t *turn) (map[string]any, error) {
				var a struct {
					StreamName string  `json:"stream_name"`
					Limit      float64 `json:"limit"`
				}
				if err := decode(args, &a); err != nil {
					return nil, err
				}
				r, err := c.SearchStream(ctx, catalog.StreamParams{Name: a.StreamName, Limit: int(a.Limit)})
				if err != nil {
					return nil, err
				}
				t.last = &r
				return summary(r, map[string]any{"stream": a.StreamName}), nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolAccretedHalo,
				Description: "Search for accreted halo stars from past dwarf galaxy mergers",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"retrograde_only": map[string]any{"type": "boolean", "description": "If true, only return stars on retrograde orbits"},
						"limit":           limitParam(),
					},
				},
			},
			handle: func(ctx context.Context, args json.RawMessage, t *turn) (map[string]any, error) {
				var a struct {
					RetrogradeOnly bool    `json:"retrograde_only"`
					Limit          float64 `json:"limit"`
				}
				if err := decode(args, &a); err != nil {
					return nil, err
				}
				r, err := c.SearchAccretedHalo(ctx, catalog.HaloParams{RetrogradeOnly: a.RetrogradeOnly, Limit: int(a.Limit)})
				if err != nil {
					return nil, err
				}
				t.last = &r
				return summary(r, nil), nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolCustomADQL,
				Description: "Execute a custom ADQL query against Gaia DR3",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{"type": "string", "description": "The ADQL query to execute"},
					},
					"required": []string{"query"},
				},
			},
			handle: func(ctx context.Context, args json.RawMessage, t *turn) (map[string]any, error) {
				var a struct {
					Query string `json:"query"`
				}
				if err := decode(args, &a); err != nil {
					return nil, err
				}
				r, err := c.ExecuteRaw(ctx, a.Query)
				if err != nil {
					return nil, err
				}
				t.last = &r
				return map[string]any{"row_count": r.RowCount(), "query": r.Query()}, nil
			},
		},
		{
			Spec: ToolSpec{
				Name:        ToolVisualization,
				Description: "Suggest an appropriate visualization for the current data",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"plot_type": map[string]any{
							"type":        "string",
							"description": "Type of plot to generate",
							"enum":        plot.Types(),
						},
					},
					"required": []string{"plot_type"},
				},
			},
			handle: func(_ context.Context, args json.RawMessage, t *turn) (map[string]any, error) {
				var a struct {
					PlotType string `json:"plot_type"`
				}
				if err := decode(args, &a); err != nil {
					return nil, err
				}
				if !plot.Supported(a.PlotType) {
					return nil, fmt.Errorf("%w: %q, available: %s",
						domain.ErrUnsupportedPlot, a.PlotType, strings.Join(plot.Types(), ", "))
				}
				t.plotType = a.PlotType
				return map[string]any{"plot_type": a.PlotType, "has_data": t.hasData()}, nil
			},
		},
	}
}
