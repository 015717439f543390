package kinematics

import (
	"math"
	"testing"
)

func TestTransform_RotationIsOrthonormal(t *testing.T) {
	tr, err := DefaultFrame().transform()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var dot float64
			for k := 0; k < 3; k++ {
				dot += tr.rot[i][k] * tr.rot[j][k]
			}
			want := 0.0
			if i == j {
				want = 1
			}
			if !almost(dot, want, 1e-12) {
				t.Errorf("row %d . row %d = %g, want %g", i, j, dot, want)
			}
		}
	}
}

func TestTransform_GalacticCenterDirectionMapsOntoX(t *testing.T) {
	f := DefaultFrame()
	tr, err := f.transform()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	zd := f.ZSunPc / f.GalCenDistancePc
	got := tr.rot.apply(UnitVector(f.GalCenRADeg, f.GalCenDecDeg))

	if !almost(got[0], math.Sqrt(1-zd*zd), 1e-12) || !almost(got[1], 0, 1e-12) || !almost(got[2], -zd, 1e-12) {
		t.Fatalf("center direction mapped to %v", got)
	}
}

func TestTransform_SunSitsAboveMidplane(t *testing.T) {
	f := DefaultFrame()
	tr, err := f.transform()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almost(tr.offset[2], f.ZSunPc, 1e-9) {
		t.Errorf("z_sun = %f, want %f", tr.offset[2], f.ZSunPc)
	}
	r := math.Hypot(tr.offset[0], tr.offset[2])
	if !almost(r, f.GalCenDistancePc, 1e-9) {
		t.Errorf("|sun| = %f, want %f", r, f.GalCenDistancePc)
	}
}

func TestTransform_NorthGalacticPoleMapsNearZ(t *testing.T) {
	tr, err := DefaultFrame().transform()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := tr.rot.apply(UnitVector(192.85948, 27.12825))
	if got[2] < 0.9999 {
		t.Fatalf("NGP mapped to %v, expected close to +z", got)
	}
}

func TestTransform_HeliocentricSpeedPreserved(t *testing.T) {
	f := DefaultFrame()
	tr, err := f.transform()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := tr.apply(Observation{
		RADeg: 45, DecDeg: 30, DistancePc: 1000,
		PMRACosDec: 3, PMDec: 4, RadialVelocity: 20,
	})
	var rel [3]float64
	for i := range rel {
		rel[i] = p.Velocity[i] - f.VSunKms[i]
	}
	got := math.Sqrt(rel[0]*rel[0] + rel[1]*rel[1] + rel[2]*rel[2])
	want := math.Hypot(20, kmsPerMasYrKpc*5)
	if !almost(got, want, 1e-9) {
		t.Fatalf("heliocentric speed = %f, want %f", got, want)
	}
}

// Positions from the astropy Galactocentric documentation example, v4.0 defaults.
// Both stars are at rest relative to the Sun, so their Galactocentric velocity is
// galcen_v_sun and the cylindrical components follow from the published position.
var astropyReference = []struct {
	name                     string
	ra, dec, distancePc      float64
	x, y, z                  float64 // pc
	wantVR, wantVPhi, wantVZ float64
}{
	{
		name: "southern", ra: 158.3122, dec: -17.3, distancePc: 11500,
		x: -9434.89286, y: -9400.62188, z: 6513.45359,
		wantVR: -182.487416, wantVPhi: 164.876054, wantVZ: 7.78,
	},
	{
		name: "northern", ra: 24.5, dec: 81.52, distancePc: 24120,
		x: -21110.44918, y: 18763.34013, z: 7831.75149,
		wantVR: 153.518534, wantVPhi: 192.140131, wantVZ: 7.78,
	},
}

func TestTransform_MatchesAstropyReference(t *testing.T) {
	tr, err := DefaultFrame().transform()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tc := range astropyReference {
		t.Run(tc.name, func(t *testing.T) {
			p := tr.apply(Observation{RADeg: tc.ra, DecDeg: tc.dec, DistancePc: tc.distancePc})
			want := [3]float64{tc.x, tc.y, tc.z}
			for i := range want {
				if !almost(p.Position[i], want[i], 1e-2) {
					t.Errorf("position[%d] = %.5f pc, want %.5f", i, p.Position[i], want[i])
				}
			}
			vr, vphi, vz, ok := Cylindrical(p)
			if !ok {
				t.Fatal("expected cylindrical components")
			}
			if !almost(vr, tc.wantVR, 1e-4) || !almost(vphi, tc.wantVPhi, 1e-4) || !almost(vz, tc.wantVZ, 1e-9) {
				t.Errorf("(V_R, V_phi, V_z) = (%.6f, %.6f, %.6f), want (%.6f, %.6f, %.6f)",
					vr, vphi, vz, tc.wantVR, tc.wantVPhi, tc.wantVZ)
			}
		})
	}
}

func TestFrameValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *Frame)
		ok     bool
	}{
		{"default", func(_ *Frame) {}, true},
		{"zero distance", func(f *Frame) { f.GalCenDistancePc = 0 }, false},
		{"height beyond distance", func(f *Frame) { f.ZSunPc = 9000 }, false},
		{"nan velocity", func(f *Frame) { f.VSunKms[1] = math.NaN() }, false},
		{"infinite roll", func(f *Frame) { f.RollDeg = math.Inf(1) }, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := DefaultFrame()
			tc.mutate(&f)
			err := f.Validate()
			if (err == nil) != tc.ok {
				t.Fatalf("Validate() error = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestAngularSeparation(t *testing.T) {
	tests := []struct {
		ra1, dec1, ra2, dec2 float64
		want                 float64
	}{
		{180, 45, 180, 45, 0},
		{180, 45, 180, 47, 2},
		{0, 0, 180, 0, 180},
		{359.5, 0, 0.5, 0, 1},
		{10, 90, 200, 90, 0},
	}
	for _, tc := range tests {
		got := AngularSeparation(tc.ra1, tc.dec1, tc.ra2, tc.dec2)
		if !almost(got, tc.want, 1e-9) {
			t.Errorf("AngularSeparation(%v,%v,%v,%v) = %v, want %v", tc.ra1, tc.dec1, tc.ra2, tc.dec2, got, tc.want)
		}
	}
}

func TestValidSkyPosition(t *testing.T) {
	tests := []struct {
		ra, dec float64
		valid   bool
	}{
		{0, 0, true},
		{359.99, 90, true},
		{180, -90, true},
		{360, 0, false},
		{-1, 0, false},
		{10, 90.5, false},
	}
	for _, tc := range tests {
		if got := ValidSkyPosition(tc.ra, tc.dec); got != tc.valid {
			t.Errorf("ValidSkyPosition(%v, %v) = %v, want %v", tc.ra, tc.dec, got, tc.valid)
		}
	}
}

func TestAbsoluteMagnitude(t *testing.T) {
	m, ok := AbsoluteMagnitude(10, 100)
	if !ok || !almost(m, 10, 1e-12) {
		t.Errorf("AbsoluteMagnitude(10, 100) = %v, %v", m, ok)
	}
	if _, ok := AbsoluteMagnitude(10, 0); ok {
		t.Error("zero parallax must not yield a magnitude")
	}
}
