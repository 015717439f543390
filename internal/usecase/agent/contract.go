package agent

import (
	"context"

	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
)

// ToolSpec describes a callable tool with a JSON-schema parameter object.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is one chat completion call. Tools may be empty.
type Request struct {
	Messages []domsession.Message
	Tools    []ToolSpec
}

// Completion is the model's reply: text, tool calls, or both.
type Completion struct {
	Content   string
	ToolCalls []domsession.ToolCall
}

// ChatModel produces completions.
type ChatModel interface {
	Complete(ctx context.Context, req Request) (Completion, error)
}

// Catalog is the subset of the catalog service the tools call.
type Catalog interface {
	SearchCone(ctx context.Context, p catalog.ConeParams) (result.Result, error)
	SearchSolarNeighborhood(ctx context.Context, p catalog.SolarParams) (result.Result, error)
	SearchHypervelocity(ctx context.Context, p catalog.HypervelocityParams) (result.Result, error)
	SearchStream(ctx context.Context, p catalog.StreamParams) (result.Result, error)
	SearchAccretedHalo(ctx context.Context, p catalog.HaloParams) (result.Result, error)
	ExecuteRaw(ctx context.Context, query string) (result.Result, error)
}

// Sessions loads and stores conversations.
type Sessions interface {
	Get(ctx context.Context, id string) (domsession.Session, error)
	Save(ctx context.Context, s domsession.Session) error
}
