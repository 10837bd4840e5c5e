// Package registry builds optimizers by algorithm name, giving the server
// and CLI one construction path over the individual algorithm packages.
package registry

import (
	"sort"
	"strings"

	"github.com/copyleftdev/TAIGA/internal/optimization"
	"github.com/copyleftdev/TAIGA/internal/optimization/annealing"
	"github.com/copyleftdev/TAIGA/internal/optimization/colony"
	"github.com/copyleftdev/TAIGA/internal/optimization/diffevo"
	"github.com/copyleftdev/TAIGA/internal/optimization/genetic"
	"github.com/copyleftdev/TAIGA/internal/optimization/simplex"
	"github.com/copyleftdev/TAIGA/internal/optimization/swarm"
)

// Config selects an algorithm and optionally tunes it. A nil section means
// the algorithm's defaults. Seed applies to whichever section is selected
// unless that section carries its own non-zero seed.
type Config struct {
	Algorithm string `json:"algorithm"`
	Seed      int64  `json:"seed,omitempty"`

	Genetic   *genetic.Config   `json:"genetic,omitempty"`
	Swarm     *swarm.Config     `json:"swarm,omitempty"`
	Annealing *annealing.Config `json:"annealing,omitempty"`
	DiffEvo   *diffevo.Config   `json:"diffevo,omitempty"`
	Simplex   *simplex.Config   `json:"simplex,omitempty"`
	Colony    *colony.Config    `json:"colony,omitempty"`
}

// canonical maps accepted names, including the usual abbreviations, to the
// canonical algorithm key.
var canonical = map[string]string{
	"genetic":     "genetic",
	"ga":          "genetic",
	"swarm":       "swarm",
	"pso":         "swarm",
	"annealing":   "annealing",
	"sa":          "annealing",
	"diffevo":     "diffevo",
	"de":          "diffevo",
	"simplex":     "simplex",
	"nelder-mead": "simplex",
	"colony":      "colony",
	"aco":         "colony",
}

// Algorithms lists the canonical algorithm names in stable order.
func Algorithms() []string {
	seen := map[string]bool{}
	for _, name := range canonical {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New constructs the optimizer named by cfg.Algorithm over the problem.
func New(problem *optimization.Problem, cfg Config) (optimization.Optimizer, error) {
	name, ok := canonical[strings.ToLower(strings.TrimSpace(cfg.Algorithm))]
	if !ok {
		return nil, optimization.NewErrorf("unknown algorithm %q", cfg.Algorithm).
			WithComponent("registry")
	}

	switch name {
	case "genetic":
		c := genetic.DefaultConfig()
		if cfg.Genetic != nil {
			c = *cfg.Genetic
		}
		if c.Seed == 0 {
			c.Seed = cfg.Seed
		}
		return genetic.New(problem, c)
	case "swarm":
		c := swarm.DefaultConfig()
		if cfg.Swarm != nil {
			c = *cfg.Swarm
		}
		if c.Seed == 0 {
			c.Seed = cfg.Seed
		}
		return swarm.New(problem, c)
	case "annealing":
		c := annealing.DefaultConfig()
		if cfg.Annealing != nil {
			c = *cfg.Annealing
		}
		if c.Seed == 0 {
			c.Seed = cfg.Seed
		}
		return annealing.New(problem, c)
	case "diffevo":
		c := diffevo.DefaultConfig()
		if cfg.DiffEvo != nil {
			c = *cfg.DiffEvo
		}
		if c.Seed == 0 {
			c.Seed = cfg.Seed
		}
		return diffevo.New(problem, c)
	case "simplex":
		c := simplex.DefaultConfig()
		if cfg.Simplex != nil {
			c = *cfg.Simplex
		}
		if c.Seed == 0 {
			c.Seed = cfg.Seed
		}
		return simplex.New(problem, c)
	default:
		c := colony.DefaultConfig()
		if cfg.Colony != nil {
			c = *cfg.Colony
		}
		if c.Seed == 0 {
			c.Seed = cfg.Seed
		}
		return colony.New(problem, c)
	}
}
