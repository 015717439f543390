package result

import (
	"testing"

	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

func TestResult_RowCountFollowsTable(t *testing.T) {
	stars := make([]star.Star, 8)
	for i := range stars {
		stars[i] = star.Star{SourceID: int64(i + 1), Parallax: star.Some(float64(i + 1))}
	}
	r := New(star.NewTable([]string{star.ColSourceID, star.ColParallax}, stars), "SELECT 1", "desc")

	if r.RowCount() != 8 {
		t.Fatalf("RowCount = %d, want 8", r.RowCount())
	}
	s := r.Summary()
	if s.RowCount != 8 || len(s.Sample) != SampleSize {
		t.Errorf("summary rows = %d, sample = %d", s.RowCount, len(s.Sample))
	}
	if s.Sample[0][star.ColSourceID] != int64(1) {
		t.Errorf("first sample = %v", s.Sample[0])
	}
	if s.Query != "SELECT 1" || s.Description != "desc" {
		t.Errorf("summary = %+v", s)
	}
}

func TestResult_Empty(t *testing.T) {
	r := New(star.NewTable([]string{star.ColSourceID}, nil), "q", "d")
	if r.RowCount() != 0 {
		t.Fatalf("RowCount = %d", r.RowCount())
	}
	if len(r.Summary().Sample) != 0 {
		t.Error("empty result must have an empty sample")
	}
}
