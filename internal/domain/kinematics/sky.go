package kinematics

import "math"

const degToRad = math.Pi / 180

// UnitVector converts an equatorial direction (degrees) to a Cartesian unit vector.
func UnitVector(raDeg, decDeg float64) [3]float64 {
	ra := raDeg * degToRad
	dec := decDeg * degToRad
	return [3]float64{
		math.Cos(dec) * math.Cos(ra),
		math.Cos(dec) * math.Sin(ra),
		math.Sin(dec),
	}
}

// AngularSeparation returns the great-circle separation in degrees between two
// sky positions given in degrees. Uses the haversine form, stable for small angles.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	dec1r := dec1 * degToRad
	dec2r := dec2 * degToRad
	dDec := (dec2 - dec1) * degToRad
	dRA := (ra2 - ra1) * degToRad

	a := math.Sin(dDec/2)*math.Sin(dDec/2) +
		math.Cos(dec1r)*math.Cos(dec2r)*math.Sin(dRA/2)*math.Sin(dRA/2)
	if a > 1 {
		a = 1
	}
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return c / degToRad
}

// ValidSkyPosition reports whether ra is in [0,360) and dec in [-90,90].
func ValidSkyPosition(ra, dec float64) bool {
	return ra >= 0 && ra < 360 && dec >= -90 && dec <= 90
}

// AbsoluteMagnitude converts an apparent G magnitude to absolute magnitude using
// the parallax in mas: M = m + 5*log10(parallax) - 10. ok is false for parallax <= 0.
func AbsoluteMagnitude(apparent, parallaxMas float64) (float64, bool) {
	if parallaxMas <= 0 || math.IsNaN(parallaxMas) {
		return 0, false
	}
	return apparent + 5*math.Log10(parallaxMas) - 10, true
}
