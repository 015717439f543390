package adql

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/gaiachat/internal/domain"
)

func TestLimitsResolve(t *testing.T) {
	l := DefaultLimits()
	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, 1000, false},
		{50, 50, false},
		{10000, 10000, false},
		{20000, 10000, false},
		{-1, 0, true},
	}
	for _, tc := range tests {
		got, err := l.Resolve(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("Resolve(%d) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("Resolve(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFloat(t *testing.T) {
	if s, err := Float(0.5); err != nil || s != "0.5" {
		t.Errorf("Float(0.5) = %q, %v", s, err)
	}
	if s, _ := Float(10); s != "10" {
		t.Errorf("Float(10) = %q", s)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := Float(v); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Float(%v) error = %v, want ErrInvalidInput", v, err)
		}
	}
}

func TestParallaxFloors(t *testing.T) {
	if p, err := ParallaxFloorFromPc(100); err != nil || p != 10 {
		t.Errorf("ParallaxFloorFromPc(100) = %v, %v", p, err)
	}
	if p, err := ParallaxFloorFromKpc(5); err != nil || p != 0.2 {
		t.Errorf("ParallaxFloorFromKpc(5) = %v, %v", p, err)
	}
	for _, d := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		if _, err := ParallaxFloorFromPc(d); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ParallaxFloorFromPc(%v) error = %v", d, err)
		}
		if _, err := ParallaxFloorFromKpc(d); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ParallaxFloorFromKpc(%v) error = %v", d, err)
		}
	}
}

func TestConeContains(t *testing.T) {
	got, err := ConeContains(180, 45, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "1=CONTAINS(POINT('ICRS', ra, dec), CIRCLE('ICRS', 180, 45, 2))"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	bad := []struct{ ra, dec, r float64 }{
		{360, 0, 1}, {-0.1, 0, 1}, {math.NaN(), 0, 1}, {0, 91, 1}, {0, -90.5, 1}, {0, 0, 0}, {0, 0, 181},
	}
	for _, tc := range bad {
		if _, err := ConeContains(tc.ra, tc.dec, tc.r); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("ConeContains(%v, %v, %v) error = %v", tc.ra, tc.dec, tc.r, err)
		}
	}
}

func TestBuilder_Full(t *testing.T) {
	q, err := Select("source_id", "ra", "dec").
		Where("parallax > 10", "ruwe < 1.4").
		Top(25).
		Build(DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT TOP 25 source_id, ra, dec\n" +
		"FROM gaiadr3.gaia_source\n" +
		"WHERE parallax > 10\n  AND ruwe < 1.4\n" +
		"ORDER BY parallax DESC"
	if q != want {
		t.Errorf("got\n%s\nwant\n%s", q, want)
	}
}

func TestBuilder_Defaults(t *testing.T) {
	q, err := Select().Build(DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(q, "SELECT TOP 1000 *\nFROM gaiadr3.gaia_source") {
		t.Errorf("unexpected query %q", q)
	}
	if strings.Contains(q, "WHERE") {
		t.Errorf("no conditions must render no WHERE: %q", q)
	}
	if !strings.HasSuffix(q, "ORDER BY parallax DESC") {
		t.Errorf("default ordering missing: %q", q)
	}
}

func TestBuilder_ClampsTop(t *testing.T) {
	q, err := Select("source_id").Top(50000).Build(DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(q, "SELECT TOP 10000 ") {
		t.Errorf("row cap not clamped: %q", q)
	}
}

func TestBuilder_Rejects(t *testing.T) {
	tests := []struct {
		name string
		b    *Builder
	}{
		{"negative top", Select().Top(-1)},
		{"bad column", Select("ra; DROP")},
		{"bad table", Select().From("gaia source")},
		{"bad order", Select().OrderBy("parallax; --")},
		{"stacked statement", Select().Where("1=1; DELETE")},
		{"helper error", Select().WhereErr(Greater("parallax", math.NaN()))},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.b.Build(DefaultLimits()); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestBuilder_OrderByOverride(t *testing.T) {
	q, err := Select().OrderBy("phot_g_mean_mag asc").Build(DefaultLimits())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(q, "ORDER BY phot_g_mean_mag asc") {
		t.Errorf("got %q", q)
	}
	q, _ = Select().OrderByExpr(ProperMotionNorm + " DESC").Build(DefaultLimits())
	if !strings.HasSuffix(q, "ORDER BY SQRT(pmra*pmra + pmdec*pmdec) DESC") {
		t.Errorf("got %q", q)
	}
}

func TestGreater(t *testing.T) {
	if s, err := Greater("parallax", 0.2); err != nil || s != "parallax > 0.2" {
		t.Errorf("Greater = %q, %v", s, err)
	}
	if _, err := Greater("parallax", math.NaN()); err == nil {
		t.Error("expected error for NaN bound")
	}
	if _, err := Greater("bad col", 1); err == nil {
		t.Error("expected invalid column error")
	}
}
