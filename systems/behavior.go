package systems

import (
	"math"
	"math/rand"

	"github.com/petrilab/petri/components"
	"github.com/petrilab/petri/genome"
)

// Photosynthesize converts sunlight into energy and returns the gain.
// The caller passes zero intensity at night.
func Photosynthesize(v *components.Vitals, g genome.Genome, sunIntensity, rate float64) float64 {
	gain := sunIntensity * g.Photosynthesis * rate
	v.Energy += gain
	return gain
}

// ColonyNeighbor is one adjacent agent considered for colony bonding.
type ColonyNeighbor struct {
	Vitals *components.Vitals
	Sticky bool
}

// HandleColony runs colony bonding for a sticky agent against its
// 8-connected neighbors and reports whether it attached. Each sticky
// neighbor pulls the pair's energies together: half the gap times the
// sharing rate moves from the richer to the poorer party. Transfers apply
// sequentially against the agent's current energy, so neighbor order
// matters when there is more than one.
func HandleColony(v *components.Vitals, sticky bool, neighbors []ColonyNeighbor, sharingRate float64) bool {
	if !sticky {
		return false
	}

	attached := false
	for _, n := range neighbors {
		if !n.Sticky {
			continue
		}
		diff := v.Energy - n.Vitals.Energy
		if math.Abs(diff) > 1.0 {
			transfer := diff * sharingRate * 0.5
			v.Energy -= transfer
			n.Vitals.Energy += transfer
		}
		attached = true
	}
	return attached
}

// MoveParams carries the behavior constants SenseAndMove needs.
type MoveParams struct {
	PredatorMetabolismPenalty float64
	PredatorDayActivity       bool
	NightMetabolismFactor     float64
	NightMoveChance           float64
}

// SenseAndMove deducts the agent's metabolic cost for the tick and
// returns the cell it wants to occupy. The returned coordinates are
// always within field bounds. It never touches the occupancy index; the
// orchestrator resolves collisions.
func SenseAndMove(pos components.Position, v *components.Vitals, ph *components.Phenotype,
	field *NutrientField, night, attached bool, par MoveParams, rng *rand.Rand) (int, int) {

	cost := ph.Genome.Metabolism

	if ph.Predator {
		cost *= par.PredatorMetabolismPenalty
		// Dormant in daylight: a fraction of the upkeep, no movement.
		if !night && !par.PredatorDayActivity {
			v.Energy -= cost * 0.1
			return pos.X, pos.Y
		}
	} else if night {
		cost *= par.NightMetabolismFactor
		// Sluggish: most ticks prey skips movement entirely.
		if rng.Float64() > par.NightMoveChance {
			v.Energy -= cost
			return pos.X, pos.Y
		}
	}

	v.Energy -= cost

	// Anchored to a colony: upkeep paid, no movement.
	if attached {
		return pos.X, pos.Y
	}

	// Scan the sense window for the richest cell; first maximum in scan
	// order wins ties.
	r := ph.Genome.SenseRange
	xMin, xMax := pos.X-r, pos.X+r+1
	if xMin < 0 {
		xMin = 0
	}
	if xMax > field.W {
		xMax = field.W
	}
	yMin, yMax := pos.Y-r, pos.Y+r+1
	if yMin < 0 {
		yMin = 0
	}
	if yMax > field.H {
		yMax = field.H
	}

	bestX, bestY := pos.X, pos.Y
	bestVal := -1.0
	for xx := xMin; xx < xMax; xx++ {
		for yy := yMin; yy < yMax; yy++ {
			if val := field.At(xx, yy); val > bestVal {
				bestVal = val
				bestX, bestY = xx, yy
			}
		}
	}

	if bestX != pos.X || bestY != pos.Y {
		// One step toward the target along each axis, plus kinetic cost.
		v.Energy -= ph.Genome.Metabolism * 0.5
		return pos.X + sign(bestX-pos.X), pos.Y + sign(bestY-pos.Y)
	}

	// Satiated or nothing sensed: occasional random drift.
	if rng.Float64() < 0.2 {
		nx := clampInt(pos.X+rng.Intn(3)-1, 0, field.W-1)
		ny := clampInt(pos.Y+rng.Intn(3)-1, 0, field.H-1)
		v.Energy -= ph.Genome.Metabolism * 0.2
		return nx, ny
	}

	return pos.X, pos.Y
}

// CheckEvolution performs the one-way transition to predator when the
// agent clears all three thresholds. Returns true on the tick the flag
// flips; it never reverts.
func CheckEvolution(v *components.Vitals, l *components.Lineage, ph *components.Phenotype,
	b genome.Bounds, thresholdEnergy, thresholdSize float64, thresholdOffspring int) bool {

	if ph.Predator {
		return false
	}
	if v.Energy > thresholdEnergy && ph.Genome.Size > thresholdSize && l.Offspring >= thresholdOffspring {
		ph.Predator = true
		ph.Color = ph.Genome.Color(b, true)
		return true
	}
	return false
}

func sign(d int) int {
	switch {
	case d > 0:
		return 1
	case d < 0:
		return -1
	}
	return 0
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
