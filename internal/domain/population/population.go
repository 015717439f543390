// Package population holds the kinematic selection criteria for stellar streams,
// the accreted halo and hypervelocity candidates.
package population

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// Kind groups criteria by the search that uses them.
type Kind string

const (
	// Stream marks named stellar streams.
	Stream Kind = "stream"
	// Halo marks accreted-halo selections.
	Halo Kind = "halo"
	// Hypervelocity marks escape-velocity candidates.
	Hypervelocity Kind = "hypervelocity"
)

// Predicate decides membership from derived velocities.
type Predicate func(v star.Velocity) bool

// Criterion is a named population selection: an ADQL pre-filter applied by the
// archive plus a velocity predicate applied after kinematics are derived.
type Criterion struct {
	Key         string
	Name        string
	Kind        Kind
	Aliases     []string
	PreFilter   []string
	Description string
	predicate   Predicate
}

// NewCriterion validates and creates a Criterion.
func NewCriterion(key, name string, kind Kind, preFilter []string, description string, p Predicate) (Criterion, error) {
	if key == "" {
		return Criterion{}, fmt.Errorf("criterion key is required")
	}
	if p == nil {
		return Criterion{}, fmt.Errorf("criterion %q has no velocity predicate", key)
	}
	return Criterion{
		Key:         strings.ToLower(key),
		Name:        name,
		Kind:        kind,
		PreFilter:   append([]string(nil), preFilter...),
		Description: description,
		predicate:   p,
	}, nil
}

// WithAliases returns a copy of c reachable under the extra display names.
func (c Criterion) WithAliases(aliases ...string) Criterion {
	c.Aliases = append(append([]string(nil), c.Aliases...), aliases...)
	return c
}

// Matches reports whether a row satisfies the velocity predicate. Rows without
// derived kinematics never match.
func (c Criterion) Matches(s *star.Star) bool {
	v, ok := s.Velocity()
	if !ok {
		return false
	}
	return c.predicate(v)
}

// Apply returns a new table with the matching rows. An empty table is returned unchanged.
func (c Criterion) Apply(t star.Table) star.Table {
	if t.Len() == 0 {
		return t
	}
	return t.Filter(c.Matches)
}

// NewHypervelocity builds the hypervelocity criterion for a distance bound and velocity floor.
func NewHypervelocity(maxDistanceKpc, minVelocityKms float64) (Criterion, error) {
	if math.IsNaN(minVelocityKms) || math.IsInf(minVelocityKms, 0) || minVelocityKms < 0 {
		return Criterion{}, domain.Invalidf("min_velocity_kms must be a non-negative number, got %v", minVelocityKms)
	}
	if math.IsNaN(maxDistanceKpc) || math.IsInf(maxDistanceKpc, 0) || maxDistanceKpc <= 0 {
		return Criterion{}, domain.Invalidf("distance_kpc must be positive, got %v", maxDistanceKpc)
	}
	return NewCriterion(
		"hypervelocity", "Hypervelocity", Hypervelocity,
		nil,
		fmt.Sprintf("Hypervelocity candidates within %s kpc, v > %s km/s",
			trimFloat(maxDistanceKpc), trimFloat(minVelocityKms)),
		func(v star.Velocity) bool { return v.Total > minVelocityKms },
	)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
