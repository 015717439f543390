// Package mcptools exposes the catalog searches as MCP tools.
//
// Each tool is a struct holding the catalog, with Definition() returning the
// mcp.Tool schema and Handle() running the search.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
)

// Catalog is the catalog service surface the tools call.
type Catalog interface {
	SearchCone(ctx context.Context, p catalog.ConeParams) (result.Result, error)
	SearchSolarNeighborhood(ctx context.Context, p catalog.SolarParams) (result.Result, error)
	SearchHypervelocity(ctx context.Context, p catalog.HypervelocityParams) (result.Result, error)
	SearchStream(ctx context.Context, p catalog.StreamParams) (result.Result, error)
	SearchAccretedHalo(ctx context.Context, p catalog.HaloParams) (result.Result, error)
	ExecuteRaw(ctx context.Context, query string) (result.Result, error)
	BuildQuery(p catalog.BuildParams) (string, error)
	Populations() []population.Criterion
}

// floatArg extracts a number argument, returning defaultVal when missing
// (JSON numbers are float64).
func floatArg(req mcp.CallToolRequest, key string, defaultVal float64) float64 {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return v
}

// intArg extracts an integer argument, returning defaultVal when missing.
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stringsArg extracts an array of strings; non-string items are skipped.
func stringsArg(req mcp.CallToolRequest, key string) []string {
	raw, ok := req.GetArguments()[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func limitOption() mcp.ToolOption {
	return mcp.WithNumber("limit", mcp.Description("Maximum number of rows (default 1000, capped at the server maximum)"))
}

// resultContent renders a text summary followed by the JSON summary with a row sample.
func resultContent(r result.Result, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\nRows: %d\n", r.Description(), r.RowCount())
	if r.RowCount() == 0 {
		b.WriteString("No stars matched. Try a larger distance, radius or limit.\n")
	}
	fmt.Fprintf(&b, "\nADQL:\n%s\n", r.Query())

	sample, jerr := json.MarshalIndent(r.Summary(), "", "  ")
	if jerr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", jerr)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(b.String()),
			mcp.NewTextContent(string(sample)),
		},
	}, nil
}
