package catalog

import "github.com/kailas-cloud/gaiachat/internal/domain/star"

// Parameter defaults used by transports when a caller omits a value.
const (
	DefaultConeRadiusDeg    = 1.0
	DefaultSolarDistancePc  = 100.0
	DefaultHVSDistanceKpc   = 5.0
	DefaultHVSMinVelocity   = 300.0
	hypervelocityLimitCap   = 500
	hypervelocityMinPMMasYr = 20
)

// Base column sets fetched by the canned searches.
var (
	baseColumns = []string{
		star.ColSourceID, star.ColRA, star.ColDec, star.ColParallax, star.ColParallaxError,
		star.ColPMRA, star.ColPMDec, star.ColRadialVelocity,
		star.ColGMag, star.ColBPRP,
		star.ColL, star.ColB,
	}

	solarColumns = append(append([]string(nil), baseColumns...), star.ColRUWE)

	hypervelocityColumns = []string{
		star.ColSourceID, star.ColRA, star.ColDec, star.ColParallax, star.ColParallaxError,
		star.ColPMRA, star.ColPMDec, star.ColPMRAError, star.ColPMDecError,
		star.ColRadialVelocity, star.ColRadialVelocityError,
		star.ColGMag, star.ColBPRP,
		star.ColL, star.ColB,
	}

	// streamBase is shared by every stream search before the stream's own fragments.
	streamBase = []string{
		"parallax > 0.2",
		"parallax_over_error > 5",
		"radial_velocity IS NOT NULL",
	}
)

// ConeParams selects stars within a circle on the sky.
type ConeParams struct {
	RA        float64
	Dec       float64
	RadiusDeg float64
	Limit     int
}

// SolarParams selects well-measured nearby stars.
type SolarParams struct {
	DistancePc float64
	Limit      int
}

// HypervelocityParams selects fast-moving stars.
type HypervelocityParams struct {
	DistanceKpc    float64
	MinVelocityKms float64
	Limit          int
}

// StreamParams selects candidates for a named stellar stream.
type StreamParams struct {
	Name  string
	Limit int
}

// HaloParams selects accreted-halo candidates.
type HaloParams struct {
	RetrogradeOnly bool
	Limit          int
}

// BuildParams describes a user-assembled query.
type BuildParams struct {
	Columns    []string
	Conditions []string
	Limit      int
	OrderBy    string
}
