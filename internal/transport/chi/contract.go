package chi

import (
	"context"

	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
	"github.com/kailas-cloud/gaiachat/internal/usecase/agent"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/gaiachat/internal/usecase/health"
)

// CatalogService runs archive searches.
type CatalogService interface {
	SearchCone(ctx context.Context, p catalog.ConeParams) (result.Result, error)
	SearchSolarNeighborhood(ctx context.Context, p catalog.SolarParams) (result.Result, error)
	SearchHypervelocity(ctx context.Context, p catalog.HypervelocityParams) (result.Result, error)
	SearchStream(ctx context.Context, p catalog.StreamParams) (result.Result, error)
	SearchAccretedHalo(ctx context.Context, p catalog.HaloParams) (result.Result, error)
	ExecuteRaw(ctx context.Context, query string) (result.Result, error)
	BuildQuery(p catalog.BuildParams) (string, error)
	Populations() []population.Criterion
}

// SessionService manages chat sessions and their last result.
type SessionService interface {
	Create(ctx context.Context) (domsession.Session, error)
	Get(ctx context.Context, id string) (domsession.Session, error)
	Reset(ctx context.Context, id string) error
	RecordResult(ctx context.Context, id string, r result.Result, plotType string) error
	LastResult(ctx context.Context, id string) (*domsession.Snapshot, error)
}

// ChatService runs one conversational turn.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (agent.Response, error)
}

// HealthService aggregates dependency checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}
