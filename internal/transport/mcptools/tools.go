package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
)

// ConeTool handles search_cone.
type ConeTool struct{ catalog Catalog }

// NewConeTool creates a ConeTool.
func NewConeTool(c Catalog) *ConeTool { return &ConeTool{catalog: c} }

// Definition returns the MCP tool definition for search_cone.
func (t *ConeTool) Definition() mcp.Tool {
	return mcp.NewTool("search_cone",
		mcp.WithDescription("Search Gaia DR3 for stars with positive parallax within a circle on the sky."),
		mcp.WithNumber("ra", mcp.Required(), mcp.Description("Right Ascension of the centre in degrees")),
		mcp.WithNumber("dec", mcp.Required(), mcp.Description("Declination of the centre in degrees")),
		mcp.WithNumber("radius", mcp.Description("Search radius in degrees (default 1.0)")),
		limitOption(),
	)
}

// Handle processes the search_cone tool call.
func (t *ConeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	if _, ok := args["ra"].(float64); !ok {
		return mcp.NewToolResultError("'ra' is required"), nil
	}
	if _, ok := args["dec"].(float64); !ok {
		return mcp.NewToolResultError("'dec' is required"), nil
	}
	return resultContent(t.catalog.SearchCone(ctx, catalog.ConeParams{
		RA:        floatArg(req, "ra", 0),
		Dec:       floatArg(req, "dec", 0),
		RadiusDeg: floatArg(req, "radius", catalog.DefaultConeRadiusDeg),
		Limit:     intArg(req, "limit", 0),
	}))
}

// SolarTool handles search_solar_neighborhood.
type SolarTool struct{ catalog Catalog }

// NewSolarTool creates a SolarTool.
func NewSolarTool(c Catalog) *SolarTool { return &SolarTool{catalog: c} }

// Definition returns the MCP tool definition for search_solar_neighborhood.
func (t *SolarTool) Definition() mcp.Tool {
	return mcp.NewTool("search_solar_neighborhood",
		mcp.WithDescription("Search for well-measured stars within a distance of the Sun."),
		mcp.WithNumber("distance_pc", mcp.Description("Maximum distance in parsecs (default 100)")),
		limitOption(),
	)
}

// Handle processes the search_solar_neighborhood tool call.
func (t *SolarTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultContent(t.catalog.SearchSolarNeighborhood(ctx, catalog.SolarParams{
		DistancePc: floatArg(req, "distance_pc", catalog.DefaultSolarDistancePc),
		Limit:      intArg(req, "limit", 0),
	}))
}

// HypervelocityTool handles search_hypervelocity_stars.
type HypervelocityTool struct{ catalog Catalog }

// NewHypervelocityTool creates a HypervelocityTool.
func NewHypervelocityTool(c Catalog) *HypervelocityTool { return &HypervelocityTool{catalog: c} }

// Definition returns the MCP tool definition for search_hypervelocity_stars.
func (t *HypervelocityTool) Definition() mcp.Tool {
	return mcp.NewTool("search_hypervelocity_stars",
		mcp.WithDescription("Search for stars whose Galactocentric speed exceeds a threshold."),
		mcp.WithNumber("distance_kpc", mcp.Description("Maximum distance in kiloparsecs (default 5)")),
		mcp.WithNumber("min_velocity_kms", mcp.Description("Minimum total velocity in km/s (default 300)")),
		limitOption(),
	)
}

// Handle processes the search_hypervelocity_stars tool call.
func (t *HypervelocityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultContent(t.catalog.SearchHypervelocity(ctx, catalog.HypervelocityParams{
		DistanceKpc:    floatArg(req, "distance_kpc", catalog.DefaultHVSDistanceKpc),
		MinVelocityKms: floatArg(req, "min_velocity_kms", catalog.DefaultHVSMinVelocity),
		Limit:          intArg(req, "limit", 0),
	}))
}

// StreamTool handles search_stellar_stream.
type StreamTool struct{ catalog Catalog }

// NewStreamTool creates a StreamTool.
func NewStreamTool(c Catalog) *StreamTool { return &StreamTool{catalog: c} }

// Definition returns the MCP tool definition for search_stellar_stream.
func (t *StreamTool) Definition() mcp.Tool {
	return mcp.NewTool("search_stellar_stream",
		mcp.WithDescription("Search for kinematic candidates of a known stellar stream."),
		mcp.WithString("stream_name",
			mcp.Required(),
			mcp.Description("Stream name"),
			mcp.Enum("Nyx", "GSE", "Gaia-Sausage-Enceladus", "Helmi", "Sequoia"),
		),
		limitOption(),
	)
}

// Handle processes the search_stellar_stream tool call.
func (t *StreamTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("stream_name", "")
	if name == "" {
		return mcp.NewToolResultError("'stream_name' is required"), nil
	}
	return resultContent(t.catalog.SearchStream(ctx, catalog.StreamParams{
		Name:  name,
		Limit: intArg(req, "limit", 0),
	}))
}

// HaloTool handles search_accreted_halo.
type HaloTool struct{ catalog Catalog }

// NewHaloTool creates a HaloTool.
func NewHaloTool(c Catalog) *HaloTool { return &HaloTool{catalog: c} }

// Definition returns the MCP tool definition for search_accreted_halo.
func (t *HaloTool) Definition() mcp.Tool {
	return mcp.NewTool("search_accreted_halo",
		mcp.WithDescription("Search for accreted halo stars from past dwarf galaxy mergers."),
		mcp.WithBoolean("retrograde_only", mcp.Description("Only return stars on retrograde orbits")),
		limitOption(),
	)
}

// Handle processes the search_accreted_halo tool call.
func (t *HaloTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return resultContent(t.catalog.SearchAccretedHalo(ctx, catalog.HaloParams{
		RetrogradeOnly: boolArg(req, "retrograde_only", false),
		Limit:          intArg(req, "limit", 0),
	}))
}

// QueryTool handles execute_adql.
type QueryTool struct{ catalog Catalog }

// NewQueryTool creates a QueryTool.
func NewQueryTool(c Catalog) *QueryTool { return &QueryTool{catalog: c} }

// Definition returns the MCP tool definition for execute_adql.
func (t *QueryTool) Definition() mcp.Tool {
	return mcp.NewTool("execute_adql",
		mcp.WithDescription("Execute an ADQL query against the Gaia archive as written."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The ADQL query")),
	)
}

// Handle processes the execute_adql tool call.
func (t *QueryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := req.GetString("query", "")
	if strings.TrimSpace(q) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	return resultContent(t.catalog.ExecuteRaw(ctx, q))
}

// BuildTool handles build_adql.
type BuildTool struct{ catalog Catalog }

// NewBuildTool creates a BuildTool.
func NewBuildTool(c Catalog) *BuildTool { return &BuildTool{catalog: c} }

// Definition returns the MCP tool definition for build_adql.
func (t *BuildTool) Definition() mcp.Tool {
	return mcp.NewTool("build_adql",
		mcp.WithDescription("Assemble an ADQL query against gaiadr3.gaia_source without running it."),
		mcp.WithArray("columns",
			mcp.Description("Columns to select (default all)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithArray("conditions",
			mcp.Description("WHERE conditions joined with AND"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("order_by", mcp.Description("Column with optional ASC/DESC (default parallax DESC)")),
		limitOption(),
	)
}

// Handle processes the build_adql tool call.
func (t *BuildTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q, err := t.catalog.BuildQuery(catalog.BuildParams{
		Columns:    stringsArg(req, "columns"),
		Conditions: stringsArg(req, "conditions"),
		OrderBy:    req.GetString("order_by", ""),
		Limit:      intArg(req, "limit", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(q), nil
}

// PopulationsTool handles list_populations.
type PopulationsTool struct{ catalog Catalog }

// NewPopulationsTool creates a PopulationsTool.
func NewPopulationsTool(c Catalog) *PopulationsTool { return &PopulationsTool{catalog: c} }

// Definition returns the MCP tool definition for list_populations.
func (t *PopulationsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_populations",
		mcp.WithDescription("List the stellar streams and halo selections with their kinematic criteria."),
	)
}

// Handle processes the list_populations tool call.
func (t *PopulationsTool) Handle(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	for _, c := range t.catalog.Populations() {
		fmt.Fprintf(&b, "%s (%s): %s\n", c.Key, c.Kind, c.Description)
		if len(c.Aliases) > 0 {
			fmt.Fprintf(&b, "    aliases: %s\n", strings.Join(c.Aliases, ", "))
		}
		if len(c.PreFilter) > 0 {
			fmt.Fprintf(&b, "    ADQL pre-filter: %s\n", strings.Join(c.PreFilter, " AND "))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}
