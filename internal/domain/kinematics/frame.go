// Package kinematics converts Gaia astrometry into Galactocentric cylindrical velocities.
package kinematics

import (
	"fmt"
	"math"
)

// roll0Deg is the roll that aligns the Galactocentric x-z plane with the
// Galactic plane for the Sgr A* position of the default frame.
const roll0Deg = 58.5986320306

// kmsPerMasYrKpc converts proper motion (mas/yr) times distance (kpc) to km/s.
const kmsPerMasYrKpc = 4.740470463533348

// Frame holds the Galactocentric frame parameters. DefaultFrame reproduces the
// astropy v4.0 Galactocentric defaults so results match published stream work.
type Frame struct {
	GalCenRADeg      float64
	GalCenDecDeg     float64
	GalCenDistancePc float64
	ZSunPc           float64
	VSunKms          [3]float64
	RollDeg          float64
}

// DefaultFrame returns the astropy v4.0 Galactocentric parameters.
func DefaultFrame() Frame {
	return Frame{
		GalCenRADeg:      266.4051,
		GalCenDecDeg:     -28.936175,
		GalCenDistancePc: 8122,
		ZSunPc:           20.8,
		VSunKms:          [3]float64{12.9, 245.6, 7.78},
		RollDeg:          0,
	}
}

// Validate checks that the frame describes a computable transform.
func (f Frame) Validate() error {
	if !finite(f.GalCenDistancePc) || f.GalCenDistancePc <= 0 {
		return fmt.Errorf("galactic center distance must be positive, got %v", f.GalCenDistancePc)
	}
	if !finite(f.ZSunPc) || math.Abs(f.ZSunPc) >= f.GalCenDistancePc {
		return fmt.Errorf("solar height %v pc must be smaller than the center distance", f.ZSunPc)
	}
	if !finite(f.GalCenRADeg) || !finite(f.GalCenDecDeg) || !finite(f.RollDeg) {
		return fmt.Errorf("galactic center position and roll must be finite")
	}
	for _, v := range f.VSunKms {
		if !finite(v) {
			return fmt.Errorf("solar velocity must be finite")
		}
	}
	return nil
}

type vec3 [3]float64

type mat3 [3][3]float64

func (m mat3) apply(v vec3) vec3 {
	var out vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return out
}

func (m mat3) mul(o mat3) mat3 {
	var out mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return out
}

// rotation returns the passive rotation matrix about axis (0=x, 1=y, 2=z).
func rotation(angleRad float64, axis int) mat3 {
	s, c := math.Sincos(angleRad)
	var r mat3
	r[axis][axis] = 1
	a1 := (axis + 1) % 3
	a2 := (axis + 2) % 3
	r[a1][a1] = c
	r[a1][a2] = s
	r[a2][a1] = -s
	r[a2][a2] = c
	return r
}

// transform is the precomputed ICRS->Galactocentric rigid transform.
type transform struct {
	rot    mat3
	offset vec3
	vsun   vec3
}

func (f Frame) transform() (transform, error) {
	if err := f.Validate(); err != nil {
		return transform{}, err
	}

	// Align ICRS x with the direction to the Galactic center, then roll into the plane.
	toCenter := rotation(-f.GalCenDecDeg*degToRad, 1).mul(rotation(f.GalCenRADeg*degToRad, 2))
	roll := rotation((roll0Deg-f.RollDeg)*degToRad, 0)
	r := roll.mul(toCenter)

	// Tilt about y for the Sun's height above the midplane.
	tilt := rotation(-math.Asin(f.ZSunPc/f.GalCenDistancePc), 1)
	a := tilt.mul(r)

	shift := tilt.apply(vec3{f.GalCenDistancePc, 0, 0})
	return transform{
		rot:    a,
		offset: vec3{-shift[0], -shift[1], -shift[2]},
		vsun:   vec3(f.VSunKms),
	}, nil
}

// Observation is a heliocentric ICRS phase-space measurement.
type Observation struct {
	RADeg          float64
	DecDeg         float64
	DistancePc     float64
	PMRACosDec     float64 // mas/yr
	PMDec          float64 // mas/yr
	RadialVelocity float64 // km/s
}

// Phase is a Galactocentric Cartesian position (pc) and velocity (km/s).
type Phase struct {
	Position [3]float64
	Velocity [3]float64
}

func (tr transform) apply(o Observation) Phase {
	sinRA, cosRA := math.Sincos(o.RADeg * degToRad)
	sinDec, cosDec := math.Sincos(o.DecDeg * degToRad)

	dir := vec3(UnitVector(o.RADeg, o.DecDeg))
	eRA := vec3{-sinRA, cosRA, 0}
	eDec := vec3{-sinDec * cosRA, -sinDec * sinRA, cosDec}

	tangential := kmsPerMasYrKpc * o.DistancePc / 1000
	var pos, vel vec3
	for i := 0; i < 3; i++ {
		pos[i] = o.DistancePc * dir[i]
		vel[i] = o.RadialVelocity*dir[i] + tangential*(o.PMRACosDec*eRA[i]+o.PMDec*eDec[i])
	}

	gp := tr.rot.apply(pos)
	gv := tr.rot.apply(vel)
	var out Phase
	for i := 0; i < 3; i++ {
		out.Position[i] = gp[i] + tr.offset[i]
		out.Velocity[i] = gv[i] + tr.vsun[i]
	}
	return out
}

// Cylindrical decomposes a Galactocentric phase into V_R (outward positive),
// V_phi (positive along disk rotation) and V_z (toward the north Galactic pole).
// ok is false on the rotation axis where the azimuth is undefined.
func Cylindrical(p Phase) (vr, vphi, vz float64, ok bool) {
	x, y := p.Position[0], p.Position[1]
	vx, vy := p.Velocity[0], p.Velocity[1]
	rho := math.Hypot(x, y)
	if rho == 0 {
		return 0, 0, 0, false
	}
	vr = (x*vx + y*vy) / rho
	// The disk rotates clockwise seen from the NGP in this frame, so the
	// right-handed azimuthal component is negated.
	vphi = (y*vx - x*vy) / rho
	return vr, vphi, p.Velocity[2], true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
