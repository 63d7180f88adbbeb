// Package genome defines the fixed trait record carried by every agent,
// its bounds, and the mutation operator.
package genome

import (
	"fmt"
	"math"
	"math/rand"
)

// StickyAdhesion is the adhesion level at or above which an agent bonds
// into colonies.
const StickyAdhesion = 0.5

// Range is an inclusive [Min, Max] interval for one trait.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Clamp forces v into the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Bounds holds the allowed range of every trait.
type Bounds struct {
	Metabolism     Range `yaml:"metabolism"`
	ReproThreshold Range `yaml:"repro_threshold"`
	SenseRange     Range `yaml:"sense_range"`
	Size           Range `yaml:"size"`
	Photosynthesis Range `yaml:"photosynthesis_efficiency"`
	Adhesion       Range `yaml:"adhesion"`
}

// DefaultBounds returns the standard trait bounds.
func DefaultBounds() Bounds {
	return Bounds{
		Metabolism:     Range{Min: 0.1, Max: 2.0},
		ReproThreshold: Range{Min: 10.0, Max: 60.0},
		SenseRange:     Range{Min: 1, Max: 5},
		Size:           Range{Min: 1.0, Max: 3.0},
		Photosynthesis: Range{Min: 0.0, Max: 1.0},
		Adhesion:       Range{Min: 0.0, Max: 1.0},
	}
}

// Validate checks that every range is well-formed.
func (b Bounds) Validate() error {
	ranges := []struct {
		name string
		r    Range
	}{
		{"metabolism", b.Metabolism},
		{"repro_threshold", b.ReproThreshold},
		{"sense_range", b.SenseRange},
		{"size", b.Size},
		{"photosynthesis_efficiency", b.Photosynthesis},
		{"adhesion", b.Adhesion},
	}
	for _, rr := range ranges {
		if rr.r.Min > rr.r.Max {
			return fmt.Errorf("gene %s: inverted bounds [%g, %g]", rr.name, rr.r.Min, rr.r.Max)
		}
	}
	if b.SenseRange.Min < 1 {
		return fmt.Errorf("gene sense_range: minimum must be at least 1, got %g", b.SenseRange.Min)
	}
	return nil
}

// Genome is the fixed-layout trait record. SenseRange is the only integer
// trait; all values stay within their bounds at all times.
type Genome struct {
	Metabolism     float64 // energy cost per tick
	ReproThreshold float64 // energy needed to split
	SenseRange     int     // radius scanned for food
	Size           float64 // predation eligibility, render scale
	Photosynthesis float64 // solar energy conversion efficiency
	Adhesion       float64 // colony-bonding tendency
}

// Random draws a genome uniformly within bounds.
func Random(rng *rand.Rand, b Bounds) Genome {
	return Genome{
		Metabolism:     uniform(rng, b.Metabolism),
		ReproThreshold: uniform(rng, b.ReproThreshold),
		SenseRange:     int(b.SenseRange.Min) + rng.Intn(int(b.SenseRange.Max)-int(b.SenseRange.Min)+1),
		Size:           uniform(rng, b.Size),
		Photosynthesis: uniform(rng, b.Photosynthesis),
		Adhesion:       uniform(rng, b.Adhesion),
	}
}

func uniform(rng *rand.Rand, r Range) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Sticky reports whether the agent bonds into colonies.
func (g Genome) Sticky() bool {
	return g.Adhesion >= StickyAdhesion
}

// Mutate returns a mutated copy. Each trait independently mutates with
// probability rate; a mutation perturbs the value by a uniform relative
// amount in [-strength, +strength] and clamps back into bounds. The
// receiver is never modified.
func (g Genome) Mutate(rng *rand.Rand, b Bounds, rate, strength float64) Genome {
	out := g

	if rng.Float64() < rate {
		out.Metabolism = b.Metabolism.Clamp(perturb(rng, out.Metabolism, strength))
	}
	if rng.Float64() < rate {
		out.ReproThreshold = b.ReproThreshold.Clamp(perturb(rng, out.ReproThreshold, strength))
	}
	if rng.Float64() < rate {
		v := math.Round(perturb(rng, float64(out.SenseRange), strength))
		out.SenseRange = int(b.SenseRange.Clamp(v))
	}
	if rng.Float64() < rate {
		out.Size = b.Size.Clamp(perturb(rng, out.Size, strength))
	}
	if rng.Float64() < rate {
		out.Photosynthesis = b.Photosynthesis.Clamp(perturb(rng, out.Photosynthesis, strength))
	}
	if rng.Float64() < rate {
		out.Adhesion = b.Adhesion.Clamp(perturb(rng, out.Adhesion, strength))
	}

	return out
}

func perturb(rng *rand.Rand, v, strength float64) float64 {
	return v + v*(rng.Float64()*2-1)*strength
}

// InBounds reports whether every trait lies within its bounds.
func (g Genome) InBounds(b Bounds) bool {
	return b.Metabolism.Contains(g.Metabolism) &&
		b.ReproThreshold.Contains(g.ReproThreshold) &&
		b.SenseRange.Contains(float64(g.SenseRange)) &&
		b.Size.Contains(g.Size) &&
		b.Photosynthesis.Contains(g.Photosynthesis) &&
		b.Adhesion.Contains(g.Adhesion)
}
