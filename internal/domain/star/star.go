// Package star models Gaia catalog rows and the kinematics derived from them.
package star

// Catalog column names as returned by the Gaia archive.
const (
	ColSourceID            = "source_id"
	ColRA                  = "ra"
	ColDec                 = "dec"
	ColParallax            = "parallax"
	ColParallaxError       = "parallax_error"
	ColPMRA                = "pmra"
	ColPMDec               = "pmdec"
	ColPMRAError           = "pmra_error"
	ColPMDecError          = "pmdec_error"
	ColRadialVelocity      = "radial_velocity"
	ColRadialVelocityError = "radial_velocity_error"
	ColGMag                = "phot_g_mean_mag"
	ColBPRP                = "bp_rp"
	ColL                   = "l"
	ColB                   = "b"
	ColRUWE                = "ruwe"
	ColParallaxOverError   = "parallax_over_error"
)

// Derived column names attached by the kinematics transform.
const (
	ColVR          = "V_R"
	ColVPhi        = "V_phi"
	ColVZ          = "V_z"
	ColVTotal      = "v_total"
	ColDistanceKpc = "distance_kpc"
)

// DerivedColumns lists the kinematic columns in output order.
var DerivedColumns = []string{ColVR, ColVPhi, ColVZ, ColVTotal, ColDistanceKpc}

// Status describes whether a row carries derived kinematics.
type Status int

const (
	// NotComputed means the transform has not run on this row.
	NotComputed Status = iota
	// Derived means velocities were computed.
	Derived
	// Unconvertible means the row lacks the inputs needed for a phase-space state.
	Unconvertible
	// Unavailable means the frame transform could not run for the whole batch.
	Unavailable
)

func (s Status) String() string {
	switch s {
	case Derived:
		return "derived"
	case Unconvertible:
		return "unconvertible"
	case Unavailable:
		return "unavailable"
	default:
		return "not_computed"
	}
}

// Velocity holds Galactocentric cylindrical velocities in km/s and the parallax distance in kpc.
type Velocity struct {
	VR          float64
	VPhi        float64
	VZ          float64
	Total       float64
	DistanceKpc float64
}

// Kinematics is the per-row derivation outcome. Velocity is meaningful only when Status is Derived.
type Kinematics struct {
	Status   Status
	Reason   string
	Velocity Velocity
}

// DerivedKinematics wraps a computed velocity.
func DerivedKinematics(v Velocity) Kinematics {
	return Kinematics{Status: Derived, Velocity: v}
}

// UnconvertibleKinematics marks a row whose inputs cannot be converted.
func UnconvertibleKinematics(reason string) Kinematics {
	return Kinematics{Status: Unconvertible, Reason: reason}
}

// UnavailableKinematics marks a row whose batch transform failed.
func UnavailableKinematics(reason string) Kinematics {
	return Kinematics{Status: Unavailable, Reason: reason}
}

// Star is one catalog row.
type Star struct {
	SourceID            int64
	RA                  Measure
	Dec                 Measure
	Parallax            Measure
	ParallaxError       Measure
	PMRA                Measure
	PMDec               Measure
	PMRAError           Measure
	PMDecError          Measure
	RadialVelocity      Measure
	RadialVelocityError Measure
	GMag                Measure
	BPRP                Measure
	L                   Measure
	B                   Measure
	RUWE                Measure
	ParallaxOverError   Measure

	// Extra holds columns the archive returned that are not modelled above.
	Extra map[string]any

	Kinematics Kinematics
}

// Velocity returns the derived velocity and true only for rows with derived kinematics.
func (s Star) Velocity() (Velocity, bool) {
	if s.Kinematics.Status != Derived {
		return Velocity{}, false
	}
	return s.Kinematics.Velocity, true
}

var measureFields = map[string]func(s *Star) *Measure{
	ColRA:                  func(s *Star) *Measure { return &s.RA },
	ColDec:                 func(s *Star) *Measure { return &s.Dec },
	ColParallax:            func(s *Star) *Measure { return &s.Parallax },
	ColParallaxError:       func(s *Star) *Measure { return &s.ParallaxError },
	ColPMRA:                func(s *Star) *Measure { return &s.PMRA },
	ColPMDec:               func(s *Star) *Measure { return &s.PMDec },
	ColPMRAError:           func(s *Star) *Measure { return &s.PMRAError },
	ColPMDecError:          func(s *Star) *Measure { return &s.PMDecError },
	ColRadialVelocity:      func(s *Star) *Measure { return &s.RadialVelocity },
	ColRadialVelocityError: func(s *Star) *Measure { return &s.RadialVelocityError },
	ColGMag:                func(s *Star) *Measure { return &s.GMag },
	ColBPRP:                func(s *Star) *Measure { return &s.BPRP },
	ColL:                   func(s *Star) *Measure { return &s.L },
	ColB:                   func(s *Star) *Measure { return &s.B },
	ColRUWE:                func(s *Star) *Measure { return &s.RUWE },
	ColParallaxOverError:   func(s *Star) *Measure { return &s.ParallaxOverError },
}

// IsMeasureColumn reports whether col maps onto a typed Star field.
func IsMeasureColumn(col string) bool {
	_, ok := measureFields[col]
	return ok
}

// Measure returns the typed column value. ok is false for columns that are not typed fields.
func (s Star) Measure(col string) (Measure, bool) {
	f, ok := measureFields[col]
	if !ok {
		return Measure{}, false
	}
	return *f(&s), true
}

// SetMeasure assigns a typed column value and reports whether col is a typed field.
func (s *Star) SetMeasure(col string, m Measure) bool {
	f, ok := measureFields[col]
	if !ok {
		return false
	}
	*f(s) = m
	return true
}

// Value returns the column value as a JSON-friendly scalar; missing values are nil.
func (s Star) Value(col string) any {
	if col == ColSourceID {
		return s.SourceID
	}
	if m, ok := s.Measure(col); ok {
		if v, valid := m.Get(); valid {
			return v
		}
		return nil
	}
	if v, ok := s.derived(col); ok {
		return v
	}
	if s.Extra != nil {
		return s.Extra[col]
	}
	return nil
}

func (s Star) derived(col string) (any, bool) {
	var pick func(v Velocity) float64
	switch col {
	case ColVR:
		pick = func(v Velocity) float64 { return v.VR }
	case ColVPhi:
		pick = func(v Velocity) float64 { return v.VPhi }
	case ColVZ:
		pick = func(v Velocity) float64 { return v.VZ }
	case ColVTotal:
		pick = func(v Velocity) float64 { return v.Total }
	case ColDistanceKpc:
		pick = func(v Velocity) float64 { return v.DistanceKpc }
	default:
		return nil, false
	}
	v, ok := s.Velocity()
	if !ok {
		return nil, true
	}
	return pick(v), true
}
