package population

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// Registry keys.
const (
	KeyNyx                    = "nyx"
	KeyGSE                    = "gse"
	KeyHelmi                  = "helmi"
	KeySequoia                = "sequoia"
	KeyAccretedHalo           = "accreted-halo"
	KeyAccretedHaloRetrograde = "accreted-halo-retrograde"
)

// haloPreFilter is shared by both accreted-halo selections.
var haloPreFilter = []string{
	"parallax > 0.5",
	"parallax_over_error > 5",
	"radial_velocity IS NOT NULL",
	"ABS(b) > 30",
}

// streamNames is the user-facing list reported for unknown stream names.
var streamNames = []string{"Nyx", "GSE", "Gaia-Sausage-Enceladus", "Helmi", "Sequoia"}

// Registry is a read-only set of criteria keyed by lowercase key and alias.
type Registry struct {
	byKey map[string]Criterion
	keys  []string
}

// NewRegistry validates the criteria and indexes them by key and alias.
func NewRegistry(criteria ...Criterion) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Criterion, len(criteria))}
	for _, c := range criteria {
		if c.predicate == nil {
			return nil, fmt.Errorf("criterion %q has no velocity predicate", c.Key)
		}
		names := append([]string{c.Key}, c.Aliases...)
		for _, n := range names {
			n = strings.ToLower(n)
			if _, dup := r.byKey[n]; dup {
				return nil, fmt.Errorf("duplicate population key %q", n)
			}
			r.byKey[n] = c
		}
		r.keys = append(r.keys, c.Key)
	}
	sort.Strings(r.keys)
	return r, nil
}

// DefaultRegistry returns the fixed stream and halo criteria.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultCriteria()...)
	if err != nil {
		panic(err)
	}
	return r
}

func defaultCriteria() []Criterion {
	must := func(c Criterion, err error) Criterion {
		if err != nil {
			panic(err)
		}
		return c
	}
	return []Criterion{
		must(NewCriterion(KeyNyx, "Nyx", Stream,
			[]string{"b > -30", "b < 30"},
			"Nyx stream candidates - prograde structure near the disk, discovered by Necib et al. 2020",
			func(v star.Velocity) bool { return v.VPhi > 100 && v.VR > 100 && v.VR < 200 },
		)),
		must(NewCriterion(KeyGSE, "GSE", Stream,
			nil,
			"Gaia-Sausage-Enceladus candidates - major merger remnant with highly radial orbits",
			func(v star.Velocity) bool { return math.Abs(v.VPhi) < 50 && math.Abs(v.VR) > 150 },
		)).WithAliases("gaia-sausage-enceladus"),
		must(NewCriterion(KeyHelmi, "Helmi", Stream,
			nil,
			"Helmi stream candidates - tidally disrupted dwarf galaxy",
			func(v star.Velocity) bool { return v.VZ > 150 || v.VZ < -150 },
		)),
		must(NewCriterion(KeySequoia, "Sequoia", Stream,
			nil,
			"Sequoia candidates - retrograde merger remnant",
			func(v star.Velocity) bool { return v.VPhi < -150 },
		)),
		must(NewCriterion(KeyAccretedHaloRetrograde, "Accreted halo (retrograde)", Halo,
			haloPreFilter,
			"Accreted halo stars (retrograde orbits only)",
			func(v star.Velocity) bool { return v.VPhi < -50 },
		)),
		must(NewCriterion(KeyAccretedHalo, "Accreted halo", Halo,
			haloPreFilter,
			"Accreted halo stars",
			func(v star.Velocity) bool { return math.Abs(v.VPhi) < 100 || v.VPhi < -50 },
		)),
	}
}

// Lookup finds a criterion by key or alias, ignoring case.
func (r *Registry) Lookup(key string) (Criterion, error) {
	c, ok := r.byKey[normalize(key)]
	if !ok {
		return Criterion{}, &domain.UnknownPopulationError{Key: key, Supported: r.Keys()}
	}
	return c, nil
}

// LookupStream is Lookup restricted to stellar streams.
func (r *Registry) LookupStream(name string) (Criterion, error) {
	c, ok := r.byKey[normalize(name)]
	if !ok || c.Kind != Stream {
		return Criterion{}, &domain.UnknownPopulationError{
			Key:       name,
			Kind:      string(Stream),
			Supported: append([]string(nil), streamNames...),
		}
	}
	return c, nil
}

// Keys returns the primary keys in sorted order.
func (r *Registry) Keys() []string {
	return append([]string(nil), r.keys...)
}

// All returns every criterion once, sorted by key.
func (r *Registry) All() []Criterion {
	out := make([]Criterion, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.byKey[k])
	}
	return out
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
