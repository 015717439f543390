package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/adql"
	"github.com/kailas-cloud/gaiachat/internal/domain/kinematics"
	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
	"github.com/kailas-cloud/gaiachat/internal/logger"
)

// Config holds the archive table and row caps.
type Config struct {
	Table  string
	Limits adql.Limits
}

// Service runs the canned and custom catalog searches.
// It keeps no state between calls; each operation returns its own Result.
type Service struct {
	archive     Archive
	transformer Transformer
	populations *population.Registry
	table       string
	limits      adql.Limits
	kept        *prometheus.CounterVec
}

// New creates a catalog service. kept counts rows retained by population
// predicates, labelled by population key; it may be nil.
func New(
	archive Archive, transformer Transformer, populations *population.Registry,
	cfg Config, kept *prometheus.CounterVec,
) *Service {
	if cfg.Table == "" {
		cfg.Table = adql.DefaultTable
	}
	if cfg.Limits.Default <= 0 || cfg.Limits.Max <= 0 {
		cfg.Limits = adql.DefaultLimits()
	}
	return &Service{
		archive:     archive,
		transformer: transformer,
		populations: populations,
		table:       cfg.Table,
		limits:      cfg.Limits,
		kept:        kept,
	}
}

// Limits returns the configured row caps.
func (s *Service) Limits() adql.Limits { return s.limits }

// Populations lists the registered population criteria.
func (s *Service) Populations() []population.Criterion { return s.populations.All() }

// SearchCone returns stars with positive parallax inside a circle on the sky,
// nearest first.
func (s *Service) SearchCone(ctx context.Context, p ConeParams) (result.Result, error) {
	contains, err := adql.ConeContains(p.RA, p.Dec, p.RadiusDeg)
	if err != nil {
		return result.Result{}, err
	}
	q, err := adql.Select(baseColumns...).
		From(s.table).
		Where(contains, "parallax IS NOT NULL", "parallax > 0").
		Top(p.Limit).
		Build(s.limits)
	if err != nil {
		return result.Result{}, err
	}

	t, err := s.run(ctx, q)
	if err != nil {
		return result.Result{}, err
	}
	t = t.Filter(func(st *star.Star) bool {
		ra, okRA := st.RA.Get()
		dec, okDec := st.Dec.Get()
		return okRA && okDec && kinematics.AngularSeparation(p.RA, p.Dec, ra, dec) <= p.RadiusDeg
	})

	desc := fmt.Sprintf("Cone search: %s° around (RA=%s°, Dec=%s°)",
		num(p.RadiusDeg), num(p.RA), num(p.Dec))
	return result.New(t, q, desc), nil
}

// SearchSolarNeighborhood returns well-measured stars within distance_pc of the Sun.
func (s *Service) SearchSolarNeighborhood(ctx context.Context, p SolarParams) (result.Result, error) {
	floor, err := adql.ParallaxFloorFromPc(p.DistancePc)
	if err != nil {
		return result.Result{}, err
	}
	q, err := adql.Select(solarColumns...).
		From(s.table).
		WhereErr(adql.Greater(star.ColParallax, floor)).
		Where("parallax_over_error > 10", "ruwe < 1.4").
		Top(p.Limit).
		Build(s.limits)
	if err != nil {
		return result.Result{}, err
	}

	t, err := s.run(ctx, q)
	if err != nil {
		return result.Result{}, err
	}
	return result.New(t, q, fmt.Sprintf("Solar neighborhood within %s pc", num(p.DistancePc))), nil
}

// SearchHypervelocity returns stars faster than min_velocity_kms in the
// Galactocentric frame within distance_kpc.
func (s *Service) SearchHypervelocity(ctx context.Context, p HypervelocityParams) (result.Result, error) {
	criterion, err := population.NewHypervelocity(p.DistanceKpc, p.MinVelocityKms)
	if err != nil {
		return result.Result{}, err
	}
	floor, err := adql.ParallaxFloorFromKpc(p.DistanceKpc)
	if err != nil {
		return result.Result{}, err
	}
	limit := p.Limit
	if limit == 0 {
		limit = min(hypervelocityLimitCap, s.limits.Default)
	}

	q, err := adql.Select(hypervelocityColumns...).
		From(s.table).
		WhereErr(adql.Greater(star.ColParallax, floor)).
		Where(
			"parallax_over_error > 5",
			"radial_velocity IS NOT NULL",
			adql.ProperMotionNorm+" > "+strconv.Itoa(hypervelocityMinPMMasYr),
		).
		OrderByExpr(adql.ProperMotionNorm + " DESC").
		Top(limit).
		Build(s.limits)
	if err != nil {
		return result.Result{}, err
	}

	t, err := s.run(ctx, q)
	if err != nil {
		return result.Result{}, err
	}
	return result.New(s.selectPopulation(t, criterion), q, criterion.Description), nil
}

// SearchStream returns kinematically selected candidates for a named stream.
// Unknown names fail before any archive call.
func (s *Service) SearchStream(ctx context.Context, p StreamParams) (result.Result, error) {
	criterion, err := s.populations.LookupStream(p.Name)
	if err != nil {
		return result.Result{}, err
	}
	q, err := adql.Select(baseColumns...).
		From(s.table).
		Where(streamBase...).
		Where(criterion.PreFilter...).
		Top(p.Limit).
		Build(s.limits)
	if err != nil {
		return result.Result{}, err
	}

	t, err := s.run(ctx, q)
	if err != nil {
		return result.Result{}, err
	}
	return result.New(s.selectPopulation(t, criterion), q, criterion.Description), nil
}

// SearchAccretedHalo fetches a candidate pool of twice the limit of high-latitude
// stars ordered by proper motion and returns every candidate matching the halo
// predicate. The pool, not the match count, is capped so that the retrograde
// selection is always contained in the full one.
func (s *Service) SearchAccretedHalo(ctx context.Context, p HaloParams) (result.Result, error) {
	key := population.KeyAccretedHalo
	if p.RetrogradeOnly {
		key = population.KeyAccretedHaloRetrograde
	}
	criterion, err := s.populations.Lookup(key)
	if err != nil {
		return result.Result{}, err
	}
	limit, err := s.limits.Resolve(p.Limit)
	if err != nil {
		return result.Result{}, err
	}

	q, err := adql.Select(baseColumns...).
		From(s.table).
		Where(criterion.PreFilter...).
		OrderByExpr(adql.ProperMotionNorm + " DESC").
		Top(2 * limit).
		Build(s.limits)
	if err != nil {
		return result.Result{}, err
	}

	t, err := s.run(ctx, q)
	if err != nil {
		return result.Result{}, err
	}
	return result.New(s.selectPopulation(t, criterion), q, criterion.Description), nil
}

// ExecuteRaw runs caller-supplied ADQL verbatim. No velocities are derived.
func (s *Service) ExecuteRaw(ctx context.Context, query string) (result.Result, error) {
	if strings.TrimSpace(query) == "" {
		return result.Result{}, domain.Invalidf("query must not be empty")
	}
	t, err := s.run(ctx, query)
	if err != nil {
		return result.Result{}, err
	}
	return result.New(t, query, fmt.Sprintf("Query returned %d rows", t.Len())), nil
}

// BuildQuery assembles ADQL from parts without executing it.
func (s *Service) BuildQuery(p BuildParams) (string, error) {
	q, err := adql.Select(p.Columns...).
		From(s.table).
		Where(p.Conditions...).
		OrderBy(p.OrderBy).
		Top(p.Limit).
		Build(s.limits)
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}
	return q, nil
}

func (s *Service) run(ctx context.Context, q string) (star.Table, error) {
	t, err := s.archive.Run(ctx, q)
	if err != nil {
		logger.FromContext(ctx).Warn("Archive query failed", zap.String("query", q), zap.Error(err))
		var ae *domain.ArchiveError
		if errors.As(err, &ae) {
			return star.Table{}, err
		}
		return star.Table{}, domain.NewArchiveError(q, err)
	}
	return t, nil
}

// selectPopulation derives velocities and applies the criterion. An empty
// fetch is returned as is.
func (s *Service) selectPopulation(t star.Table, c population.Criterion) star.Table {
	if t.Len() == 0 {
		return t
	}
	out := c.Apply(s.transformer.AddVelocities(t))
	if s.kept != nil {
		s.kept.WithLabelValues(c.Key).Add(float64(out.Len()))
	}
	return out
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
