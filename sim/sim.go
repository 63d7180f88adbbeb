// Package sim drives the fixed-order tick pipeline over the agent
// population, the nutrient field, and the occupancy index.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/petrilab/petri/components"
	"github.com/petrilab/petri/config"
	"github.com/petrilab/petri/genome"
	"github.com/petrilab/petri/systems"
	"github.com/petrilab/petri/telemetry"
)

// Sim owns the complete simulation state: the ECS world holding the
// agents, the environment fields, the occupancy index, the clock, and
// the seeded random source. All mutation happens from within Step on a
// single goroutine; there are no concurrent writers by construction.
type Sim struct {
	cfg    *config.Config
	bounds genome.Bounds

	world  *ecs.World
	mapper *ecs.Map4[
		components.Position,
		components.Vitals,
		components.Lineage,
		components.Phenotype,
	]
	posMap  *ecs.Map1[components.Position]
	vitMap  *ecs.Map1[components.Vitals]
	linMap  *ecs.Map1[components.Lineage]
	phenMap *ecs.Map1[components.Phenotype]

	field *systems.NutrientField
	sun   *systems.SunlightField
	index *systems.Occupancy

	rng  *rand.Rand
	seed int64

	// agents is the population in stable iteration order (creation
	// order). Per-agent processing each tick walks a prefix snapshot of
	// this slice, so newborns never act on their birth tick.
	agents []ecs.Entity
	nextID uint32

	tick  int64
	night bool

	events []Event

	collector *telemetry.Collector

	// Scratch buffers reused across ticks.
	neighborBuf []systems.ColonyNeighbor
	eaten       map[ecs.Entity]bool
}

// New constructs a simulation from a validated configuration and a seed.
// The same configuration and seed always produce the same run.
func New(cfg *config.Config, seed int64) (*Sim, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	s := &Sim{
		cfg:       cfg,
		bounds:    cfg.Genes,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindowTicks),
		eaten:     make(map[ecs.Entity]bool),
	}
	s.init(seed)
	return s, nil
}

// init builds fresh world state. Used by New and Reset.
func (s *Sim) init(seed int64) {
	cfg := s.cfg

	s.seed = seed
	s.rng = rand.New(rand.NewSource(seed))

	world := ecs.NewWorld()
	s.world = world
	s.mapper = ecs.NewMap4[
		components.Position,
		components.Vitals,
		components.Lineage,
		components.Phenotype,
	](world)
	s.posMap = ecs.NewMap1[components.Position](world)
	s.vitMap = ecs.NewMap1[components.Vitals](world)
	s.linMap = ecs.NewMap1[components.Lineage](world)
	s.phenMap = ecs.NewMap1[components.Phenotype](world)

	s.field = systems.NewNutrientField(cfg.World.Width, cfg.World.Height, cfg.Nutrient.Max)
	s.field.Seed(seed, cfg.Nutrient.SeedScale, cfg.Nutrient.SeedThreshold)
	s.sun = systems.NewSunlightField(cfg.World.Width, cfg.World.Height,
		cfg.Sunlight.MaxIntensity, cfg.Sunlight.PenetrationDepth)
	s.index = systems.NewOccupancy(cfg.World.Width, cfg.World.Height)

	s.agents = s.agents[:0]
	s.nextID = 0
	s.tick = 0
	s.night = false
	s.events = s.events[:0]
	clear(s.eaten)

	for i := 0; i < cfg.Population.Initial; i++ {
		x := s.rng.Intn(cfg.World.Width)
		y := s.rng.Intn(cfg.World.Height)
		g := genome.Random(s.rng, s.bounds)
		s.spawnAgent(x, y, g, cfg.Population.InitialEnergy, 1)
	}
}

// spawnAgent creates an agent entity and appends it to the population.
func (s *Sim) spawnAgent(x, y int, g genome.Genome, energy float64, generation int) ecs.Entity {
	id := s.nextID
	s.nextID++

	pos := components.Position{X: x, Y: y}
	vit := components.Vitals{Energy: energy, Alive: true}
	lin := components.Lineage{ID: id, Generation: generation}
	ph := components.Phenotype{
		Genome: g,
		Color:  g.Color(s.bounds, false),
	}

	e := s.mapper.NewEntity(&pos, &vit, &lin, &ph)
	s.agents = append(s.agents, e)
	return e
}

// Step runs one complete tick: advance the clock, update the nutrient
// field, process every agent in fixed order against the rebuilt
// occupancy index, compact the population, and recycle corpses. A tick
// either completes fully or the process dies; there is no suspension
// point inside.
func (s *Sim) Step() {
	cfg := s.cfg

	// 1. Advance the clock.
	s.tick++
	cyclePos := s.tick % int64(cfg.Time.CycleLength)
	s.night = float64(cyclePos) > float64(cfg.Time.CycleLength)*cfg.Time.DayRatio

	// 2. Nutrient field update: regenerate, diffuse, decay, clamp.
	s.field.Step(s.rng, cfg.Nutrient.SpawnRate, cfg.Nutrient.RegenAmount,
		cfg.Nutrient.Diffusion, cfg.Nutrient.Decay)

	// 3. Rebuild the occupancy index from current positions.
	s.index.Clear()
	for _, e := range s.agents {
		pos := s.posMap.Get(e)
		s.index.Set(pos.X, pos.Y, e)
	}

	s.events = s.events[:0]
	clear(s.eaten)

	moveParams := systems.MoveParams{
		PredatorMetabolismPenalty: cfg.Predator.MetabolismPenalty,
		PredatorDayActivity:       cfg.Predator.DayActivity,
		NightMetabolismFactor:     cfg.Time.NightMetabolismFactor,
		NightMoveChance:           cfg.Time.NightMoveChance,
	}

	// 4. Per-agent pipeline over a snapshot of the population taken at
	// tick start. Agents consumed earlier in the tick are skipped.
	count := len(s.agents)
	for i := 0; i < count; i++ {
		e := s.agents[i]
		pos := s.posMap.Get(e)
		vit := s.vitMap.Get(e)
		lin := s.linMap.Get(e)
		ph := s.phenMap.Get(e)

		if !vit.Alive {
			continue
		}

		// a. Photosynthesis. No sunlight at night.
		sun := 0.0
		if !s.night {
			sun = s.sun.At(pos.Y)
		}
		systems.Photosynthesize(vit, ph.Genome, sun, cfg.Sunlight.PhotosynthesisRate)

		// b. Colony bonding for sticky agents.
		attached := false
		if ph.Genome.Sticky() {
			neighbors := s.gatherColonyNeighbors(pos, e)
			attached = systems.HandleColony(vit, true, neighbors, cfg.Colony.SharingRate)
		}
		ph.Attached = attached

		// c. Movement, collision, predation.
		tx, ty := systems.SenseAndMove(*pos, vit, ph, s.field, s.night, attached, moveParams, s.rng)
		s.resolveMove(e, pos, vit, ph, tx, ty)

		// d. Grazing. Predators never eat the nutrient field.
		if !ph.Predator {
			vit.Energy += s.field.Consume(pos.X, pos.Y, cfg.Nutrient.MaxEatRate)
		}

		// e. Reproduction.
		if vit.Energy > ph.Genome.ReproThreshold {
			s.reproduce(pos, vit, lin, ph)
		}

		// f. Evolution, aging, death.
		if systems.CheckEvolution(vit, lin, ph, s.bounds,
			cfg.Predator.ThresholdEnergy, cfg.Predator.ThresholdSize, cfg.Predator.ThresholdOffspring) {
			s.collector.RecordEvolution()
		}
		vit.Age++
		if vit.Energy <= 0 {
			vit.Alive = false
		}
	}

	// 5+6. Compact the population and recycle corpses.
	s.compact()
}

// gatherColonyNeighbors collects the 8-connected neighbors from the
// occupancy index in fixed scan order.
func (s *Sim) gatherColonyNeighbors(pos *components.Position, self ecs.Entity) []systems.ColonyNeighbor {
	s.neighborBuf = s.neighborBuf[:0]
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := pos.X+dx, pos.Y+dy
			if !s.index.InBounds(nx, ny) {
				continue
			}
			other, ok := s.index.Get(nx, ny)
			if !ok || other == self {
				continue
			}
			s.neighborBuf = append(s.neighborBuf, systems.ColonyNeighbor{
				Vitals: s.vitMap.Get(other),
				Sticky: s.phenMap.Get(other).Genome.Sticky(),
			})
		}
	}
	return s.neighborBuf
}

// resolveMove applies a desired move against the occupancy index. An
// empty target cell accepts the mover. An occupied target triggers
// predation only when the mover is a larger predator and the occupant is
// live non-predator prey; otherwise the move is rejected silently with
// no cost refund.
func (s *Sim) resolveMove(e ecs.Entity, pos *components.Position, vit *components.Vitals,
	ph *components.Phenotype, tx, ty int) {

	if tx == pos.X && ty == pos.Y {
		return
	}

	occupant, occupied := s.index.Get(tx, ty)
	if !occupied {
		s.index.Vacate(pos.X, pos.Y, e)
		pos.X, pos.Y = tx, ty
		s.index.Set(tx, ty, e)
		return
	}

	oVit := s.vitMap.Get(occupant)
	oPh := s.phenMap.Get(occupant)
	if !ph.Predator || oPh.Predator || !oVit.Alive || ph.Genome.Size <= oPh.Genome.Size {
		return
	}

	// Predation: consume the occupant and take its cell.
	vit.Energy += oVit.Energy*s.cfg.Predator.EatEfficiency + s.cfg.Nutrient.DeadBody
	oVit.Alive = false
	s.eaten[occupant] = true
	s.events = append(s.events, NewPredationEvent(pos.X, pos.Y))
	s.collector.RecordPredation()

	s.index.Vacate(pos.X, pos.Y, e)
	pos.X, pos.Y = tx, ty
	s.index.Set(tx, ty, e)
}

// reproduce scans the four axis neighbors in randomized order for the
// first vacant cell and splits the parent's energy exactly in half with
// a mutated child. At most one offspring per parent per tick; with no
// vacancy the energy is retained.
func (s *Sim) reproduce(pos *components.Position, vit *components.Vitals,
	lin *components.Lineage, ph *components.Phenotype) {

	dirs := [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	s.rng.Shuffle(len(dirs), func(i, j int) {
		dirs[i], dirs[j] = dirs[j], dirs[i]
	})

	for _, d := range dirs {
		nx, ny := pos.X+d[0], pos.Y+d[1]
		if !s.index.InBounds(nx, ny) {
			continue
		}
		if _, occupied := s.index.Get(nx, ny); occupied {
			continue
		}

		split := vit.Energy / 2
		vit.Energy = split

		childGenome := ph.Genome.Mutate(s.rng, s.bounds, s.cfg.Mutation.Rate, s.cfg.Mutation.Strength)
		child := s.spawnAgent(nx, ny, childGenome, split, lin.Generation+1)
		s.index.Set(nx, ny, child)
		lin.Offspring++

		s.events = append(s.events, NewReproductionEvent(pos.X, pos.Y, nx, ny))
		s.collector.RecordBirth()
		return
	}
}

// compact drops dead agents from the population and recycles starvation
// corpses into the nutrient field. Consumed agents deposit nothing:
// their biomass already went to the predator.
func (s *Sim) compact() {
	alive := s.agents[:0]
	for _, e := range s.agents {
		vit := s.vitMap.Get(e)
		if vit.Alive {
			alive = append(alive, e)
			continue
		}

		pos := s.posMap.Get(e)
		if s.eaten[e] {
			s.collector.RecordConsumed()
		} else {
			s.field.Deposit(pos.X, pos.Y, s.cfg.Nutrient.DeadBody)
			s.collector.RecordDeath()
		}
		s.mapper.Remove(e)
	}
	s.agents = alive
}

// Reset discards the world and reconstructs initial state with a fresh
// random population. The new seed derives from the current random
// stream, so a full run including resets replays deterministically.
func (s *Sim) Reset() {
	s.init(s.rng.Int63())
}

// InjectNutrient adds nutrient at a cell on behalf of an external
// controller. Out-of-bounds cells are ignored.
func (s *Sim) InjectNutrient(x, y int, amount float64) {
	if !s.field.InBounds(x, y) {
		return
	}
	s.field.Deposit(x, y, amount)
}

// DrainEvents returns the events emitted by the most recent tick and
// clears them. Events are consumed once and not replayed.
func (s *Sim) DrainEvents() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	s.events = s.events[:0]
	return out
}

// Tick returns the current tick counter.
func (s *Sim) Tick() int64 {
	return s.tick
}

// IsNight reports whether the current tick falls in the night phase.
func (s *Sim) IsNight() bool {
	return s.night
}

// Seed returns the seed of the current world.
func (s *Sim) Seed() int64 {
	return s.seed
}

// Population returns the number of live agents.
func (s *Sim) Population() int {
	return len(s.agents)
}

// Predators returns the number of live predators.
func (s *Sim) Predators() int {
	n := 0
	for _, e := range s.agents {
		if s.phenMap.Get(e).Predator {
			n++
		}
	}
	return n
}

// Nutrients exposes the nutrient field for read access and external
// injection by renderers/controllers.
func (s *Sim) Nutrients() *systems.NutrientField {
	return s.field
}

// Collector returns the telemetry collector fed by this simulation.
func (s *Sim) Collector() *telemetry.Collector {
	return s.collector
}
