package gaiachat

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/gaiachat/internal/domain/adql"
	"github.com/kailas-cloud/gaiachat/internal/domain/kinematics"
	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/transport/tap"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/gaiachat/internal/usecase/health"
)

// Internal interface for substitution in tests.
type catalogUseCase interface {
	SearchCone(ctx context.Context, p catalog.ConeParams) (result.Result, error)
	SearchSolarNeighborhood(ctx context.Context, p catalog.SolarParams) (result.Result, error)
	SearchHypervelocity(ctx context.Context, p catalog.HypervelocityParams) (result.Result, error)
	SearchStream(ctx context.Context, p catalog.StreamParams) (result.Result, error)
	SearchAccretedHalo(ctx context.Context, p catalog.HaloParams) (result.Result, error)
	ExecuteRaw(ctx context.Context, query string) (result.Result, error)
	BuildQuery(p catalog.BuildParams) (string, error)
	Populations() []population.Criterion
}

// Client is the embedded catalog entry point. It is safe for concurrent use.
type Client struct {
	catalog   catalogUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client. No network call is made until the first search.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	limits := adql.DefaultLimits()
	if cfg.defaultLimit > 0 {
		limits.Default = cfg.defaultLimit
	}
	if cfg.maxLimit > 0 {
		limits.Max = cfg.maxLimit
	}
	if limits.Default > limits.Max {
		return nil, fmt.Errorf("gaiachat: default limit %d exceeds max %d", limits.Default, limits.Max)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	archive := tap.New(&tap.Config{
		BaseURL:    cfg.tapURL,
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
	})
	return wireClient(archive, cfg.table, limits, obs), nil
}

func wireClient(archive *tap.Client, table string, limits adql.Limits, obs *observer) *Client {
	transformer := kinematics.NewTransformer(kinematics.DefaultFrame(), nil, nil)
	svc := catalog.New(archive, transformer, population.DefaultRegistry(), catalog.Config{
		Table:  table,
		Limits: limits,
	}, nil)
	return &Client{
		catalog:   svc,
		healthSvc: healthuc.New(nil, archive, nil),
		obs:       obs,
	}
}

// Cone returns stars with positive parallax inside a circle, nearest first.
func (c *Client) Cone(ctx context.Context, q ConeQuery) (Result, error) {
	p := catalog.ConeParams{
		RA:        q.RA,
		Dec:       q.Dec,
		RadiusDeg: orDefault(q.RadiusDeg, catalog.DefaultConeRadiusDeg),
		Limit:     q.Limit,
	}
	return c.search(ctx, "cone", func(ctx context.Context) (result.Result, error) {
		return c.catalog.SearchCone(ctx, p)
	})
}

// SolarNeighborhood returns well-measured stars within q.DistancePc of the Sun.
func (c *Client) SolarNeighborhood(ctx context.Context, q SolarQuery) (Result, error) {
	p := catalog.SolarParams{
		DistancePc: orDefault(q.DistancePc, catalog.DefaultSolarDistancePc),
		Limit:      q.Limit,
	}
	return c.search(ctx, "solar_neighborhood", func(ctx context.Context) (result.Result, error) {
		return c.catalog.SearchSolarNeighborhood(ctx, p)
	})
}

// Hypervelocity returns stars faster than q.MinVelocityKms in the Galactocentric frame.
func (c *Client) Hypervelocity(ctx context.Context, q HypervelocityQuery) (Result, error) {
	p := catalog.HypervelocityParams{
		DistanceKpc:    orDefault(q.DistanceKpc, catalog.DefaultHVSDistanceKpc),
		MinVelocityKms: orDefault(q.MinVelocityKms, catalog.DefaultHVSMinVelocity),
		Limit:          q.Limit,
	}
	return c.search(ctx, "hypervelocity", func(ctx context.Context) (result.Result, error) {
		return c.catalog.SearchHypervelocity(ctx, p)
	})
}

// Stream returns kinematic candidates of a named stream (Nyx, GSE, Helmi, Sequoia).
// Unknown names fail with ErrUnknownPopulation before any archive call.
func (c *Client) Stream(ctx context.Context, name string, limit int) (Result, error) {
	return c.search(ctx, "stream", func(ctx context.Context) (result.Result, error) {
		return c.catalog.SearchStream(ctx, catalog.StreamParams{Name: name, Limit: limit})
	})
}

// AccretedHalo returns accreted halo candidates, optionally retrograde only.
func (c *Client) AccretedHalo(ctx context.Context, retrogradeOnly bool, limit int) (Result, error) {
	return c.search(ctx, "accreted_halo", func(ctx context.Context) (result.Result, error) {
		return c.catalog.SearchAccretedHalo(ctx, catalog.HaloParams{RetrogradeOnly: retrogradeOnly, Limit: limit})
	})
}

// Query runs ADQL as written. No velocities are derived.
func (c *Client) Query(ctx context.Context, query string) (Result, error) {
	return c.search(ctx, "query", func(ctx context.Context) (result.Result, error) {
		return c.catalog.ExecuteRaw(ctx, query)
	})
}

// Build assembles ADQL from parts without running it.
func (c *Client) Build(q BuildQuery) (string, error) {
	return c.catalog.BuildQuery(catalog.BuildParams{
		Columns:    q.Columns,
		Conditions: q.Conditions,
		OrderBy:    q.OrderBy,
		Limit:      q.Limit,
	})
}

// Populations lists the known streams and halo selections.
func (c *Client) Populations() []Population {
	all := c.catalog.Populations()
	out := make([]Population, 0, len(all))
	for _, p := range all {
		out = append(out, populationFromDomain(p))
	}
	return out
}

func (c *Client) search(
	ctx context.Context, op string, run func(ctx context.Context) (result.Result, error),
) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe(op, start, res.Len(), err) }()

	r, err := run(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", op, err)
	}
	return Result{r: r}, nil
}
