// Package components defines ECS components for the simulation.
package components

import "github.com/petrilab/petri/genome"

// Position is an agent's grid cell. Coordinates always stay within
// [0, W) x [0, H); movement candidates are bounds-checked before they are
// ever written here.
type Position struct {
	X, Y int
}

// Vitals tracks an agent's energy and lifecycle state. An agent whose
// energy reaches zero or below is marked dead and removed at the end of
// the tick.
type Vitals struct {
	Energy float64
	Age    int
	Alive  bool
}

// Lineage tracks descent bookkeeping.
type Lineage struct {
	ID         uint32
	Generation int
	Offspring  int
}

// Phenotype holds the genome and state derived from it. Predator is a
// one-way transition; Color is recomputed whenever it flips.
type Phenotype struct {
	Genome   genome.Genome
	Predator bool
	Attached bool // bonded to a colony this tick
	Color    genome.RGB
}
