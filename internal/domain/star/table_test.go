package star

import (
	"encoding/json"
	"math"
	"testing"
)

func TestFromRows_DecodesKnownAndExtraColumns(t *testing.T) {
	cols := []string{"SOURCE_ID", "ra", "parallax", "radial_velocity", "phot_variable_flag"}
	rows := [][]any{
		{json.Number("4295806720"), json.Number("44.99"), json.Number("1.5"), nil, "VARIABLE"},
	}

	tbl, err := FromRows(cols, rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", tbl.Len())
	}
	s := tbl.At(0)
	if s.SourceID != 4295806720 {
		t.Errorf("source_id = %d", s.SourceID)
	}
	if v, ok := s.RA.Get(); !ok || v != 44.99 {
		t.Errorf("ra = %v (%v)", v, ok)
	}
	if s.RadialVelocity.Valid() {
		t.Error("null radial_velocity should be missing")
	}
	if s.Extra["phot_variable_flag"] != "VARIABLE" {
		t.Errorf("extra column lost: %v", s.Extra)
	}
	if !tbl.HasColumn(ColSourceID) {
		t.Error("source_id column should be normalised to lower case")
	}
}

func TestFromRows_KeepsLargeSourceIDExact(t *testing.T) {
	tbl, err := FromRows([]string{"source_id"}, [][]any{{json.Number("6917528997577384320")}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tbl.At(0).SourceID; got != 6917528997577384320 {
		t.Fatalf("source_id lost precision: %d", got)
	}
}

func TestFromRows_RequiresSourceID(t *testing.T) {
	if _, err := FromRows([]string{"ra", "dec"}, nil); err == nil {
		t.Fatal("expected error for missing source_id")
	}
}

func TestFromRows_RowWidthMismatch(t *testing.T) {
	_, err := FromRows([]string{"source_id", "ra"}, [][]any{{json.Number("1")}})
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

func testTable() Table {
	stars := []Star{
		{SourceID: 1, Parallax: Some(2)},
		{SourceID: 2, Parallax: Some(-1)},
		{SourceID: 3},
	}
	return NewTable([]string{ColSourceID, ColParallax}, stars)
}

func TestFilter_DoesNotMutateReceiver(t *testing.T) {
	tbl := testTable()
	out := tbl.Filter(func(s *Star) bool {
		p, ok := s.Parallax.Get()
		return ok && p > 0
	})

	if out.Len() != 1 || out.At(0).SourceID != 1 {
		t.Fatalf("unexpected filter result: %v", out.SourceIDs())
	}
	if tbl.Len() != 3 {
		t.Fatalf("receiver changed: %d rows", tbl.Len())
	}
}

func TestHead(t *testing.T) {
	tbl := testTable()
	if got := tbl.Head(2).Len(); got != 2 {
		t.Errorf("Head(2) = %d rows", got)
	}
	if got := tbl.Head(10).Len(); got != 3 {
		t.Errorf("Head(10) = %d rows", got)
	}
	if got := tbl.Head(-1).Len(); got != 0 {
		t.Errorf("Head(-1) = %d rows", got)
	}
}

func TestRecords_DerivedColumnsMissingAreNil(t *testing.T) {
	tbl := testTable().WithColumns(DerivedColumns...)
	stars := tbl.Stars()
	stars[0].Kinematics = DerivedKinematics(Velocity{VR: 1, VPhi: 2, VZ: 3, Total: math.Sqrt(14), DistanceKpc: 0.5})
	stars[1].Kinematics = UnconvertibleKinematics("parallax <= 0")
	tbl = tbl.WithStars(stars)

	recs := tbl.Records()
	if recs[0][ColVPhi] != 2.0 {
		t.Errorf("V_phi = %v", recs[0][ColVPhi])
	}
	if recs[1][ColVPhi] != nil {
		t.Errorf("unconvertible row should render nil, got %v", recs[1][ColVPhi])
	}
	if recs[2][ColParallax] != nil {
		t.Errorf("missing parallax should render nil, got %v", recs[2][ColParallax])
	}
}

func TestMeasure_JSON(t *testing.T) {
	type row struct {
		A Measure `json:"a"`
		B Measure `json:"b"`
	}
	data, err := json.Marshal(row{A: Some(1.25), B: Missing()})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"a":1.25,"b":null}` {
		t.Fatalf("unexpected json: %s", data)
	}

	var back row
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := back.A.Get(); !ok || v != 1.25 {
		t.Errorf("a = %v (%v)", v, ok)
	}
	if back.B.Valid() {
		t.Error("b should be missing")
	}
}

func TestSome_RejectsNonFinite(t *testing.T) {
	if Some(math.NaN()).Valid() || Some(math.Inf(1)).Valid() {
		t.Fatal("non-finite values must be missing")
	}
}

func TestAt_RowAccessorsWorkOnReturnedValue(t *testing.T) {
	tbl := testTable().WithColumns(DerivedColumns...)
	stars := tbl.Stars()
	stars[0].Kinematics = DerivedKinematics(Velocity{VPhi: -250, DistanceKpc: 0.5})
	tbl = tbl.WithStars(stars)

	if v, ok := tbl.At(0).Velocity(); !ok || v.VPhi != -250 {
		t.Errorf("Velocity() = %v, %v", v, ok)
	}
	if _, ok := tbl.At(2).Velocity(); ok {
		t.Error("row without kinematics must not report a velocity")
	}
	if got := tbl.At(0).Value(ColParallax); got != 2.0 {
		t.Errorf("Value(parallax) = %v", got)
	}
	if m, ok := tbl.At(1).Measure(ColParallax); !ok || !m.Valid() {
		t.Errorf("Measure(parallax) = %v, %v", m, ok)
	}
	if got := tbl.At(0).Value(ColDistanceKpc); got != 0.5 {
		t.Errorf("Value(distance_kpc) = %v", got)
	}
}
