package potential

import (
	"fmt"
	"sort"

	"github.com/ArnoutMaet/walker-masses/internal/forcefield"
)

var builders = map[string]func(params map[string]float64) forcefield.Calculator{
	"harmonic": func(params map[string]float64) forcefield.Calculator {
		k := params["k"]
		if k <= 0 {
			k = 1.0
		}
		return NewHarmonic(nil, k)
	},
	"lennard_jones": func(params map[string]float64) forcefield.Calculator {
		return NewLennardJones(params["epsilon"], params["sigma"], params["cutoff"])
	},
}

// New builds a named calculator. Missing parameters fall back to the
// potential's defaults.
func New(name string, params map[string]float64) (forcefield.Calculator, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("potential: unknown potential %q", name)
	}
	return build(params), nil
}

// Names lists the registered potentials, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
