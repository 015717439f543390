package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/adql"
	"github.com/kailas-cloud/gaiachat/internal/domain/population"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// --- mocks ---

type mockArchive struct {
	table   star.Table
	err     error
	queries []string
}

func (m *mockArchive) Run(_ context.Context, q string) (star.Table, error) {
	m.queries = append(m.queries, q)
	if m.err != nil {
		return star.Table{}, m.err
	}
	return m.table, nil
}

// mockTransformer assigns fixed velocities by source_id.
type mockTransformer struct {
	velocities map[int64]star.Velocity
	calls      int
}

func (m *mockTransformer) AddVelocities(t star.Table) star.Table {
	m.calls++
	stars := t.Stars()
	for i := range stars {
		if v, ok := m.velocities[stars[i].SourceID]; ok {
			stars[i].Kinematics = star.DerivedKinematics(v)
		} else {
			stars[i].Kinematics = star.UnconvertibleKinematics("missing radial velocity")
		}
	}
	return t.WithColumns(star.DerivedColumns...).WithStars(stars)
}

func positions(coords ...[2]float64) star.Table {
	stars := make([]star.Star, len(coords))
	for i, c := range coords {
		stars[i] = star.Star{
			SourceID: int64(i + 1),
			RA:       star.Some(c[0]),
			Dec:      star.Some(c[1]),
			Parallax: star.Some(float64(10 - i)),
		}
	}
	return star.NewTable([]string{star.ColSourceID, star.ColRA, star.ColDec, star.ColParallax}, stars)
}

func ids(n int) star.Table {
	stars := make([]star.Star, n)
	for i := range stars {
		stars[i] = star.Star{SourceID: int64(i + 1)}
	}
	return star.NewTable([]string{star.ColSourceID}, stars)
}

func newService(a Archive, tr Transformer) *Service {
	return New(a, tr, population.DefaultRegistry(), Config{}, nil)
}

// --- tests ---

func TestSearchCone_PostFiltersBySeparation(t *testing.T) {
	arch := &mockArchive{table: positions(
		[2]float64{180, 45},
		[2]float64{180.5, 45.5},
		[2]float64{181, 44},
		[2]float64{180, 47.5}, // 2.5 deg away
		[2]float64{179, 46},
	)}
	svc := newService(arch, &mockTransformer{})

	res, err := svc.SearchCone(context.Background(), ConeParams{RA: 180, Dec: 45, RadiusDeg: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RowCount() != 4 {
		t.Fatalf("row count = %d, want 4 (%v)", res.RowCount(), res.Table().SourceIDs())
	}
	for _, id := range res.Table().SourceIDs() {
		if id == 4 {
			t.Error("row outside the radius was kept")
		}
	}
	if res.Description() != "Cone search: 2° around (RA=180°, Dec=45°)" {
		t.Errorf("description = %q", res.Description())
	}
	q := arch.queries[0]
	for _, frag := range []string{
		"SELECT TOP 1000 ",
		"CIRCLE('ICRS', 180, 45, 2)",
		"parallax IS NOT NULL",
		"parallax > 0",
		"ORDER BY parallax DESC",
	} {
		if !strings.Contains(q, frag) {
			t.Errorf("query missing %q:\n%s", frag, q)
		}
	}
	if res.Query() != q {
		t.Error("result must carry the executed query")
	}
	if res.Table().HasKinematics() {
		t.Error("cone search must not derive velocities")
	}
}

func TestSearchCone_InvalidPositionRunsNoQuery(t *testing.T) {
	arch := &mockArchive{}
	svc := newService(arch, &mockTransformer{})
	_, err := svc.SearchCone(context.Background(), ConeParams{RA: 400, Dec: 0, RadiusDeg: 1})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(arch.queries) != 0 {
		t.Error("archive must not be called")
	}
}

func TestSearchSolarNeighborhood(t *testing.T) {
	arch := &mockArchive{table: ids(3)}
	svc := newService(arch, &mockTransformer{})

	res, err := svc.SearchSolarNeighborhood(context.Background(), SolarParams{DistancePc: 100, Limit: 50})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Description() != "Solar neighborhood within 100 pc" {
		t.Errorf("description = %q", res.Description())
	}
	q := arch.queries[0]
	for _, frag := range []string{"SELECT TOP 50 ", "ruwe", "parallax > 10", "parallax_over_error > 10", "ruwe < 1.4"} {
		if !strings.Contains(q, frag) {
			t.Errorf("query missing %q:\n%s", frag, q)
		}
	}
}

func TestSearchSolarNeighborhood_ZeroDistance(t *testing.T) {
	arch := &mockArchive{}
	svc := newService(arch, &mockTransformer{})
	_, err := svc.SearchSolarNeighborhood(context.Background(), SolarParams{DistancePc: 0})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(arch.queries) != 0 {
		t.Error("archive must not be called")
	}
}

func TestSearchHypervelocity_FiltersByTotalVelocity(t *testing.T) {
	arch := &mockArchive{table: ids(2)}
	tr := &mockTransformer{velocities: map[int64]star.Velocity{
		1: {Total: 350},
		2: {Total: 250},
	}}
	kept := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_kept_rows_total"}, []string{"population"})
	svc := New(arch, tr, population.DefaultRegistry(), Config{}, kept)

	res, err := svc.SearchHypervelocity(context.Background(), HypervelocityParams{
		DistanceKpc: DefaultHVSDistanceKpc, MinVelocityKms: DefaultHVSMinVelocity,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Table().SourceIDs(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("rows = %v, want [1]", got)
	}
	if res.RowCount() != 1 {
		t.Errorf("row count = %d", res.RowCount())
	}
	if res.Description() != "Hypervelocity candidates within 5 kpc, v > 300 km/s" {
		t.Errorf("description = %q", res.Description())
	}
	q := arch.queries[0]
	for _, frag := range []string{
		"SELECT TOP 500 ",
		"parallax > 0.2",
		"parallax_over_error > 5",
		"radial_velocity IS NOT NULL",
		"SQRT(pmra*pmra + pmdec*pmdec) > 20",
		"ORDER BY SQRT(pmra*pmra + pmdec*pmdec) DESC",
		"radial_velocity_error",
	} {
		if !strings.Contains(q, frag) {
			t.Errorf("query missing %q:\n%s", frag, q)
		}
	}
	if got := testutil.ToFloat64(kept.WithLabelValues("hypervelocity")); got != 1 {
		t.Errorf("kept counter = %f, want 1", got)
	}
}

func TestSearchHypervelocity_LimitCappedByDefault(t *testing.T) {
	arch := &mockArchive{table: ids(0)}
	svc := New(arch, &mockTransformer{}, population.DefaultRegistry(),
		Config{Limits: adql.Limits{Default: 200, Max: 10000}}, nil)

	if _, err := svc.SearchHypervelocity(context.Background(), HypervelocityParams{
		DistanceKpc: 5, MinVelocityKms: 300,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(arch.queries[0], "SELECT TOP 200 ") {
		t.Errorf("query = %q", arch.queries[0])
	}
}

func TestSearchStream_UnknownNameRunsNoQuery(t *testing.T) {
	arch := &mockArchive{}
	svc := newService(arch, &mockTransformer{})

	_, err := svc.SearchStream(context.Background(), StreamParams{Name: "Andromeda"})
	if !errors.Is(err, domain.ErrUnknownPopulation) {
		t.Fatalf("expected ErrUnknownPopulation, got %v", err)
	}
	if !strings.Contains(err.Error(), "Nyx, GSE, Gaia-Sausage-Enceladus, Helmi, Sequoia") {
		t.Errorf("message should list supported streams: %v", err)
	}
	if len(arch.queries) != 0 {
		t.Error("archive must not be called")
	}
}

func TestSearchStream_Nyx(t *testing.T) {
	arch := &mockArchive{table: ids(3)}
	tr := &mockTransformer{velocities: map[int64]star.Velocity{
		1: {VPhi: 150, VR: 150},
		2: {VPhi: 150, VR: 250},
	}}
	svc := newService(arch, tr)

	res, err := svc.SearchStream(context.Background(), StreamParams{Name: "Nyx"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Table().SourceIDs(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("rows = %v, want [1]", got)
	}
	if !strings.HasPrefix(res.Description(), "Nyx stream candidates") {
		t.Errorf("description = %q", res.Description())
	}
	q := arch.queries[0]
	for _, frag := range []string{"parallax > 0.2", "parallax_over_error > 5", "b > -30", "b < 30", "ORDER BY parallax DESC"} {
		if !strings.Contains(q, frag) {
			t.Errorf("query missing %q:\n%s", frag, q)
		}
	}
}

func TestSearchStream_EmptyFetchSkipsTransform(t *testing.T) {
	arch := &mockArchive{table: ids(0)}
	tr := &mockTransformer{}
	svc := newService(arch, tr)

	res, err := svc.SearchStream(context.Background(), StreamParams{Name: "helmi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RowCount() != 0 || tr.calls != 0 {
		t.Errorf("rows = %d, transform calls = %d", res.RowCount(), tr.calls)
	}
}

func TestSearchAccretedHalo(t *testing.T) {
	arch := &mockArchive{table: ids(6)}
	tr := &mockTransformer{velocities: map[int64]star.Velocity{
		1: {VPhi: -200},
		2: {VPhi: 30},
		3: {VPhi: 220},
		4: {VPhi: -80},
		5: {VPhi: -10},
		6: {VPhi: -300},
	}}
	svc := newService(arch, tr)

	all, err := svc.SearchAccretedHalo(context.Background(), HaloParams{Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := all.Table().SourceIDs(); !slices.Equal(got, []int64{1, 2, 4, 5, 6}) {
		t.Errorf("all halo rows = %v, want [1 2 4 5 6]", got)
	}
	if all.Description() != "Accreted halo stars" {
		t.Errorf("description = %q", all.Description())
	}
	if !strings.HasPrefix(arch.queries[0], "SELECT TOP 6 ") {
		t.Errorf("halo must fetch twice the limit: %q", arch.queries[0])
	}
	for _, frag := range []string{"parallax > 0.5", "ABS(b) > 30", "ORDER BY SQRT(pmra*pmra + pmdec*pmdec) DESC"} {
		if !strings.Contains(arch.queries[0], frag) {
			t.Errorf("query missing %q", frag)
		}
	}

	retro, err := svc.SearchAccretedHalo(context.Background(), HaloParams{RetrogradeOnly: true, Limit: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := retro.Table().SourceIDs(); !slices.Equal(got, []int64{1, 4, 6}) {
		t.Errorf("retrograde rows = %v, want [1 4 6]", got)
	}
	if retro.Description() != "Accreted halo stars (retrograde orbits only)" {
		t.Errorf("description = %q", retro.Description())
	}
}

func TestSearchAccretedHalo_RetrogradeIsSubsetOfAll(t *testing.T) {
	// More retrograde matches than the limit, and prograde halo rows first.
	tr := &mockTransformer{velocities: map[int64]star.Velocity{
		1: {VPhi: 10},
		2: {VPhi: 20},
		3: {VPhi: -300},
		4: {VPhi: -250},
	}}
	for _, limit := range []int{1, 2, 3} {
		svc := newService(&mockArchive{table: ids(4)}, tr)

		all, err := svc.SearchAccretedHalo(context.Background(), HaloParams{Limit: limit})
		if err != nil {
			t.Fatalf("limit %d: unexpected error: %v", limit, err)
		}
		retro, err := svc.SearchAccretedHalo(context.Background(), HaloParams{RetrogradeOnly: true, Limit: limit})
		if err != nil {
			t.Fatalf("limit %d: unexpected error: %v", limit, err)
		}

		allIDs := all.Table().SourceIDs()
		for _, id := range retro.Table().SourceIDs() {
			if !slices.Contains(allIDs, id) {
				t.Errorf("limit %d: retrograde id %d not in all=%v", limit, id, allIDs)
			}
		}
	}
}

func TestExecuteRaw(t *testing.T) {
	arch := &mockArchive{table: ids(7)}
	tr := &mockTransformer{}
	svc := newService(arch, tr)

	res, err := svc.ExecuteRaw(context.Background(), "SELECT TOP 7 source_id FROM gaiadr3.gaia_source")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Description() != "Query returned 7 rows" {
		t.Errorf("description = %q", res.Description())
	}
	if tr.calls != 0 {
		t.Error("raw queries must not derive velocities")
	}

	if _, err := svc.ExecuteRaw(context.Background(), "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty query error = %v", err)
	}
}

func TestArchiveFailureIsWrapped(t *testing.T) {
	arch := &mockArchive{err: errors.New("Syntax error at line 1")}
	svc := newService(arch, &mockTransformer{})

	_, err := svc.ExecuteRaw(context.Background(), "SELEC nonsense")
	if !errors.Is(err, domain.ErrArchiveQuery) {
		t.Fatalf("expected ErrArchiveQuery, got %v", err)
	}
	var ae *domain.ArchiveError
	if !errors.As(err, &ae) || ae.Query != "SELEC nonsense" {
		t.Fatalf("archive error = %#v", err)
	}
	if err.Error() != "ADQL query failed: Syntax error at line 1" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestArchiveErrorPassesThrough(t *testing.T) {
	inner := domain.NewArchiveError("q", errors.New("HTTP 500"))
	svc := newService(&mockArchive{err: inner}, &mockTransformer{})

	_, err := svc.ExecuteRaw(context.Background(), "q")
	if err != inner {
		t.Errorf("archive error should not be wrapped twice: %v", err)
	}
}

func TestBuildQuery(t *testing.T) {
	svc := newService(&mockArchive{}, &mockTransformer{})

	q, err := svc.BuildQuery(BuildParams{
		Columns:    []string{"source_id", "parallax"},
		Conditions: []string{"parallax > 5"},
		Limit:      20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT TOP 20 source_id, parallax\nFROM gaiadr3.gaia_source\nWHERE parallax > 5\nORDER BY parallax DESC"
	if q != want {
		t.Errorf("got\n%s\nwant\n%s", q, want)
	}

	if _, err := svc.BuildQuery(BuildParams{Limit: -5}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("negative limit error = %v", err)
	}
}
