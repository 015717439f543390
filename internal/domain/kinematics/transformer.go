package kinematics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// Transformer attaches Galactocentric velocities to catalog tables.
type Transformer struct {
	frame    Frame
	outcomes *prometheus.CounterVec
	logger   *zap.Logger
}

// NewTransformer creates a Transformer for the given frame.
// outcomes is a counter vec with label "status" (see star.Status), may be nil.
func NewTransformer(frame Frame, outcomes *prometheus.CounterVec, logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transformer{frame: frame, outcomes: outcomes, logger: logger}
}

// AddVelocities returns a copy of t with V_R, V_phi, V_z, v_total and distance_kpc attached.
// Rows that cannot be converted are marked Unconvertible. If the frame transform itself
// cannot be computed every row is marked Unavailable and the cause is logged.
func (tr *Transformer) AddVelocities(t star.Table) star.Table {
	out := t.WithColumns(star.DerivedColumns...)
	if t.Len() == 0 {
		return out
	}

	stars := out.Stars()
	xf, err := tr.frame.transform()
	if err != nil {
		tr.logger.Warn("Could not compute velocities, marking batch unavailable",
			zap.Int("rows", len(stars)), zap.Error(err))
		for i := range stars {
			stars[i].Kinematics = star.UnavailableKinematics(err.Error())
		}
		tr.count(star.Unavailable, len(stars))
		return out.WithStars(stars)
	}

	counts := make(map[star.Status]int, 2)
	for i := range stars {
		stars[i].Kinematics = derive(xf, &stars[i])
		counts[stars[i].Kinematics.Status]++
	}
	for status, n := range counts {
		tr.count(status, n)
	}
	if n := counts[star.Unconvertible]; n > 0 {
		tr.logger.Debug("Rows without kinematics", zap.Int("unconvertible", n), zap.Int("rows", len(stars)))
	}
	return out.WithStars(stars)
}

func (tr *Transformer) count(status star.Status, n int) {
	if tr.outcomes != nil {
		tr.outcomes.WithLabelValues(status.String()).Add(float64(n))
	}
}

func derive(xf transform, s *star.Star) star.Kinematics {
	parallax, ok := s.Parallax.Get()
	if !ok {
		return star.UnconvertibleKinematics("missing parallax")
	}
	if parallax <= 0 {
		return star.UnconvertibleKinematics("non-positive parallax")
	}
	ra, okRA := s.RA.Get()
	dec, okDec := s.Dec.Get()
	if !okRA || !okDec {
		return star.UnconvertibleKinematics("missing sky position")
	}
	pmra, okPMRA := s.PMRA.Get()
	pmdec, okPMDec := s.PMDec.Get()
	if !okPMRA || !okPMDec {
		return star.UnconvertibleKinematics("missing proper motion")
	}
	rv, ok := s.RadialVelocity.Get()
	if !ok {
		return star.UnconvertibleKinematics("missing radial velocity")
	}

	phase := xf.apply(Observation{
		RADeg:          ra,
		DecDeg:         dec,
		DistancePc:     1000 / parallax,
		PMRACosDec:     pmra,
		PMDec:          pmdec,
		RadialVelocity: rv,
	})
	vr, vphi, vz, ok := Cylindrical(phase)
	if !ok {
		return star.UnconvertibleKinematics("position on the Galactic rotation axis")
	}
	total := math.Sqrt(vr*vr + vphi*vphi + vz*vz)
	if !finite(vr) || !finite(vphi) || !finite(vz) || !finite(total) {
		return star.UnconvertibleKinematics("non-finite velocity")
	}

	return star.DerivedKinematics(star.Velocity{
		VR:    vr,
		VPhi:  vphi,
		VZ:    vz,
		Total: total,
		// 1/parallax[mas] is kpc by unit choice; kept independent of the pc distance above.
		DistanceKpc: 1.0 / parallax,
	})
}
