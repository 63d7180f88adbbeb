package sim

import (
	"math"
	"testing"

	"github.com/petrilab/petri/config"
	"github.com/petrilab/petri/genome"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	cfg.World.Width = 20
	cfg.World.Height = 20
	cfg.Population.Initial = 30
	return cfg
}

// emptyConfig has no initial population so tests can place agents by hand.
func emptyConfig(t *testing.T) *config.Config {
	cfg := testConfig(t)
	cfg.Population.Initial = 0
	return cfg
}

func preyGenome() genome.Genome {
	return genome.Genome{
		Metabolism:     0.5,
		ReproThreshold: 30.0,
		SenseRange:     2,
		Size:           1.0,
		Photosynthesis: 0.5,
		Adhesion:       0.0,
	}
}

func TestNewSpawnsInitialPopulation(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, 42)
	if err != nil {
		t.Fatal(err)
	}

	if s.Population() != cfg.Population.Initial {
		t.Errorf("population = %d, want %d", s.Population(), cfg.Population.Initial)
	}
	for _, av := range s.Agents() {
		if av.X < 0 || av.X >= cfg.World.Width || av.Y < 0 || av.Y >= cfg.World.Height {
			t.Errorf("agent %d at (%d,%d) out of bounds", av.ID, av.X, av.Y)
		}
		if av.Energy != cfg.Population.InitialEnergy {
			t.Errorf("agent %d energy = %g, want %g", av.ID, av.Energy, cfg.Population.InitialEnergy)
		}
		if av.Predator {
			t.Errorf("agent %d spawned as predator", av.ID)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.World.Width = 0
	if _, err := New(cfg, 1); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestNightBoundary(t *testing.T) {
	cfg := emptyConfig(t)
	cfg.Time.CycleLength = 10
	cfg.Time.DayRatio = 0.5

	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Ticks 1..5 are day; the boundary tick itself is still day.
	for i := 0; i < 5; i++ {
		s.Step()
		if s.IsNight() {
			t.Fatalf("tick %d: night during day phase", s.Tick())
		}
	}
	// Ticks 6..10 wrap through night back to day at cycle start.
	for i := 0; i < 4; i++ {
		s.Step()
		if !s.IsNight() {
			t.Fatalf("tick %d: day during night phase", s.Tick())
		}
	}
	s.Step() // tick 10: cycle position 0
	if s.IsNight() {
		t.Errorf("tick %d: cycle start should be day", s.Tick())
	}
}

func TestPredationTransfersEnergy(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	pg := preyGenome()
	pg.Size = 2.6
	pred := s.spawnAgent(2, 2, pg, 30.0, 1)
	s.phenMap.Get(pred).Predator = true
	prey := s.spawnAgent(3, 2, preyGenome(), 10.0, 1)

	s.index.Set(2, 2, pred)
	s.index.Set(3, 2, prey)

	pos := s.posMap.Get(pred)
	vit := s.vitMap.Get(pred)
	ph := s.phenMap.Get(pred)
	s.resolveMove(pred, pos, vit, ph, 3, 2)

	// Predator gains prey energy times efficiency plus the dead body bonus.
	want := 30.0 + 10.0*cfg.Predator.EatEfficiency + cfg.Nutrient.DeadBody
	if math.Abs(vit.Energy-want) > 1e-9 {
		t.Errorf("predator energy = %g, want %g", vit.Energy, want)
	}
	if s.vitMap.Get(prey).Alive {
		t.Error("prey still alive after predation")
	}
	if pos.X != 3 || pos.Y != 2 {
		t.Errorf("predator at (%d,%d), want (3,2)", pos.X, pos.Y)
	}
	if occ, ok := s.index.Get(3, 2); !ok || occ != pred {
		t.Error("predator does not own the prey's cell")
	}

	events := s.DrainEvents()
	if len(events) != 1 || events[0].Kind != EventPredation {
		t.Fatalf("events = %+v, want one predation", events)
	}
	// The event reports the predator's cell before the strike.
	if events[0].X != 2 || events[0].Y != 2 {
		t.Errorf("event at (%d,%d), want pre-move cell (2,2)", events[0].X, events[0].Y)
	}
}

func TestPredationRequiresLargerPredator(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	pg := preyGenome()
	pg.Size = 1.0
	pred := s.spawnAgent(2, 2, pg, 30.0, 1)
	s.phenMap.Get(pred).Predator = true
	bigPreyGenome := preyGenome()
	bigPreyGenome.Size = 2.0
	prey := s.spawnAgent(3, 2, bigPreyGenome, 10.0, 1)

	s.index.Set(2, 2, pred)
	s.index.Set(3, 2, prey)

	pos := s.posMap.Get(pred)
	s.resolveMove(pred, pos, s.vitMap.Get(pred), s.phenMap.Get(pred), 3, 2)

	// Move rejected: equal or larger prey cannot be taken.
	if pos.X != 2 || pos.Y != 2 {
		t.Errorf("predator moved to (%d,%d)", pos.X, pos.Y)
	}
	if !s.vitMap.Get(prey).Alive {
		t.Error("oversized prey was eaten")
	}
	if len(s.DrainEvents()) != 0 {
		t.Error("unexpected events from a rejected move")
	}
}

func TestPredatorsDoNotEatPredators(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	pg := preyGenome()
	pg.Size = 2.6
	a := s.spawnAgent(2, 2, pg, 30.0, 1)
	s.phenMap.Get(a).Predator = true
	smaller := preyGenome()
	smaller.Size = 1.5
	b := s.spawnAgent(3, 2, smaller, 10.0, 1)
	s.phenMap.Get(b).Predator = true

	s.index.Set(2, 2, a)
	s.index.Set(3, 2, b)

	pos := s.posMap.Get(a)
	s.resolveMove(a, pos, s.vitMap.Get(a), s.phenMap.Get(a), 3, 2)

	if pos.X != 2 || !s.vitMap.Get(b).Alive {
		t.Error("predator attacked another predator")
	}
}

func TestConsumedAgentsLeaveNoCorpse(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	pg := preyGenome()
	pg.Size = 2.6
	pred := s.spawnAgent(2, 2, pg, 30.0, 1)
	s.phenMap.Get(pred).Predator = true
	prey := s.spawnAgent(3, 2, preyGenome(), 10.0, 1)

	s.index.Set(2, 2, pred)
	s.index.Set(3, 2, prey)

	nutrientBefore := s.field.At(3, 2)
	s.resolveMove(pred, s.posMap.Get(pred), s.vitMap.Get(pred), s.phenMap.Get(pred), 3, 2)
	s.compact()

	if s.Population() != 1 {
		t.Fatalf("population = %d, want 1", s.Population())
	}
	// The prey's biomass went to the predator, not the field.
	if got := s.field.At(3, 2); got != nutrientBefore {
		t.Errorf("field at prey cell changed: %g -> %g", nutrientBefore, got)
	}

	_, _, consumed, _, _ := s.collector.Drain(0)
	if consumed != 1 {
		t.Errorf("consumed = %d, want 1", consumed)
	}
}

func TestStarvationDepositsCorpse(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	e := s.spawnAgent(4, 4, preyGenome(), 1.0, 1)
	vit := s.vitMap.Get(e)
	vit.Energy = -0.5
	vit.Alive = false

	before := s.field.At(4, 4)
	s.compact()

	if s.Population() != 0 {
		t.Fatalf("population = %d, want 0", s.Population())
	}
	if got := s.field.At(4, 4); math.Abs(got-(before+cfg.Nutrient.DeadBody)) > 1e-9 {
		t.Errorf("field at corpse = %g, want %g", got, before+cfg.Nutrient.DeadBody)
	}

	_, deaths, _, _, _ := s.collector.Drain(0)
	if deaths != 1 {
		t.Errorf("deaths = %d, want 1", deaths)
	}
}

func TestReproduceSplitsEnergyInHalf(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	parent := s.spawnAgent(5, 5, preyGenome(), 50.0, 1)
	s.index.Set(5, 5, parent)

	pos := s.posMap.Get(parent)
	vit := s.vitMap.Get(parent)
	lin := s.linMap.Get(parent)
	ph := s.phenMap.Get(parent)
	s.reproduce(pos, vit, lin, ph)

	if s.Population() != 2 {
		t.Fatalf("population = %d, want 2", s.Population())
	}
	if vit.Energy != 25.0 {
		t.Errorf("parent energy = %g, want 25.0", vit.Energy)
	}
	if lin.Offspring != 1 {
		t.Errorf("parent offspring = %d, want 1", lin.Offspring)
	}

	child := s.agents[len(s.agents)-1]
	cv := s.vitMap.Get(child)
	cl := s.linMap.Get(child)
	cp := s.posMap.Get(child)
	if cv.Energy != 25.0 {
		t.Errorf("child energy = %g, want 25.0", cv.Energy)
	}
	if cl.Generation != 2 {
		t.Errorf("child generation = %d, want 2", cl.Generation)
	}
	if !s.phenMap.Get(child).Genome.InBounds(s.bounds) {
		t.Error("child genome out of bounds")
	}

	// Child occupies an axis neighbor and the index knows about it.
	dx, dy := cp.X-5, cp.Y-5
	if dx*dx+dy*dy != 1 {
		t.Errorf("child at (%d,%d) is not an axis neighbor of (5,5)", cp.X, cp.Y)
	}
	if occ, ok := s.index.Get(cp.X, cp.Y); !ok || occ != child {
		t.Error("child missing from the occupancy index")
	}

	events := s.DrainEvents()
	if len(events) != 1 || events[0].Kind != EventReproduction {
		t.Fatalf("events = %+v, want one reproduction", events)
	}
	if events[0].ChildX != cp.X || events[0].ChildY != cp.Y {
		t.Errorf("event child cell (%d,%d), want (%d,%d)",
			events[0].ChildX, events[0].ChildY, cp.X, cp.Y)
	}
}

func TestReproduceBlockedKeepsEnergy(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	parent := s.spawnAgent(5, 5, preyGenome(), 50.0, 1)
	s.index.Set(5, 5, parent)
	for _, d := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		blocker := s.spawnAgent(5+d[0], 5+d[1], preyGenome(), 10.0, 1)
		s.index.Set(5+d[0], 5+d[1], blocker)
	}

	vit := s.vitMap.Get(parent)
	s.reproduce(s.posMap.Get(parent), vit, s.linMap.Get(parent), s.phenMap.Get(parent))

	if s.Population() != 5 {
		t.Errorf("population = %d, want 5 (no newborn)", s.Population())
	}
	if vit.Energy != 50.0 {
		t.Errorf("parent energy = %g, want unchanged 50.0", vit.Energy)
	}
}

func TestDeterminismSameSeed(t *testing.T) {
	cfg1 := testConfig(t)
	cfg2 := testConfig(t)

	a, err := New(cfg1, 777)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(cfg2, 777)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 100; i++ {
		a.Step()
		b.Step()
	}

	if a.Population() != b.Population() {
		t.Fatalf("populations diverged: %d vs %d", a.Population(), b.Population())
	}
	if a.field.Total() != b.field.Total() {
		t.Errorf("nutrient totals diverged: %g vs %g", a.field.Total(), b.field.Total())
	}

	av, bv := a.Agents(), b.Agents()
	for i := range av {
		if av[i] != bv[i] {
			t.Fatalf("agent %d diverged: %+v vs %+v", i, av[i], bv[i])
		}
	}
}

func TestLongRunStaysSane(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, 4)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 200; i++ {
		s.Step()
		for _, av := range s.Agents() {
			if av.X < 0 || av.X >= cfg.World.Width || av.Y < 0 || av.Y >= cfg.World.Height {
				t.Fatalf("tick %d: agent %d at (%d,%d) out of bounds", s.Tick(), av.ID, av.X, av.Y)
			}
			if math.IsNaN(av.Energy) || math.IsInf(av.Energy, 0) {
				t.Fatalf("tick %d: agent %d energy %g", s.Tick(), av.ID, av.Energy)
			}
		}
		for _, v := range s.field.Data() {
			if v < 0 || v > cfg.Nutrient.Max {
				t.Fatalf("tick %d: field value %g outside [0, %g]", s.Tick(), v, cfg.Nutrient.Max)
			}
		}
	}
}

func TestDrainEventsClears(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	parent := s.spawnAgent(5, 5, preyGenome(), 50.0, 1)
	s.index.Set(5, 5, parent)
	s.reproduce(s.posMap.Get(parent), s.vitMap.Get(parent), s.linMap.Get(parent), s.phenMap.Get(parent))

	if got := len(s.DrainEvents()); got != 1 {
		t.Fatalf("first drain = %d events, want 1", got)
	}
	if got := len(s.DrainEvents()); got != 0 {
		t.Errorf("second drain = %d events, want 0", got)
	}
}

func TestInjectNutrient(t *testing.T) {
	cfg := emptyConfig(t)
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	before := s.field.At(3, 3)
	s.InjectNutrient(3, 3, 4.0)
	if got := s.field.At(3, 3); math.Abs(got-(before+4.0)) > 1e-9 {
		t.Errorf("cell = %g, want %g", got, before+4.0)
	}

	// Out of bounds is silently ignored.
	s.InjectNutrient(-1, 3, 4.0)
	s.InjectNutrient(3, cfg.World.Height, 4.0)
}

func TestReset(t *testing.T) {
	cfg := testConfig(t)
	s, err := New(cfg, 9)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 50; i++ {
		s.Step()
	}
	s.Reset()

	if s.Tick() != 0 {
		t.Errorf("tick after reset = %d, want 0", s.Tick())
	}
	if s.Population() != cfg.Population.Initial {
		t.Errorf("population after reset = %d, want %d", s.Population(), cfg.Population.Initial)
	}
	if s.Predators() != 0 {
		t.Errorf("predators after reset = %d, want 0", s.Predators())
	}

	// The reset world still steps.
	s.Step()
	if s.Tick() != 1 {
		t.Errorf("tick = %d, want 1", s.Tick())
	}
}

func TestEatenAgentSkippedSameTick(t *testing.T) {
	cfg := emptyConfig(t)
	cfg.Nutrient.SpawnRate = 0
	cfg.Predator.DayActivity = true
	s, err := New(cfg, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Predator processed first takes the prey before the prey's turn.
	pg := preyGenome()
	pg.Size = 2.6
	pg.SenseRange = 1
	pg.ReproThreshold = 60.0
	pg.Photosynthesis = 0.5
	pred := s.spawnAgent(2, 2, pg, 20.0, 1)
	s.phenMap.Get(pred).Predator = true
	s.spawnAgent(3, 2, preyGenome(), 10.0, 1)

	// Flatten the seeded field, then bait the prey's cell so it is the
	// richest cell the predator senses.
	data := s.field.Data()
	for i := range data {
		data[i] = 0
	}
	s.field.Deposit(3, 2, cfg.Nutrient.Max)

	s.Step()

	if s.Population() != 1 {
		t.Fatalf("population = %d, want 1 after mid-tick predation", s.Population())
	}

	// The prey never acted after being consumed, so the predator's gain
	// reflects the prey's untouched pre-tick energy.
	upkeep := pg.Metabolism * cfg.Predator.MetabolismPenalty
	moveCost := pg.Metabolism * 0.5
	solar := s.sun.At(2) * pg.Photosynthesis * cfg.Sunlight.PhotosynthesisRate
	gain := 10.0*cfg.Predator.EatEfficiency + cfg.Nutrient.DeadBody
	want := 20.0 + solar - upkeep - moveCost + gain

	got := s.vitMap.Get(pred).Energy
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("predator energy = %g, want %g", got, want)
	}

	_, _, consumed, predations, _ := s.collector.Drain(0)
	if consumed != 1 || predations != 1 {
		t.Errorf("consumed/predations = %d/%d, want 1/1", consumed, predations)
	}
}
