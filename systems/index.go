package systems

import "github.com/mlange-42/ark/ecs"

// Occupancy is a dense cell -> agent-slot index, rebuilt at the start of
// every tick and mutated in place as agents move. Agents are referenced
// by their ecs.Entity handle, which stays valid while the entity lives,
// so a dead agent never leaves a dangling reference behind.
type Occupancy struct {
	w, h  int
	slots []ecs.Entity
	used  []bool
}

// NewOccupancy creates an empty index for a w x h grid.
func NewOccupancy(w, h int) *Occupancy {
	return &Occupancy{
		w: w, h: h,
		slots: make([]ecs.Entity, w*h),
		used:  make([]bool, w*h),
	}
}

// Clear empties the index.
func (o *Occupancy) Clear() {
	for i := range o.used {
		o.used[i] = false
	}
}

// InBounds reports whether (x, y) is a valid cell.
func (o *Occupancy) InBounds(x, y int) bool {
	return x >= 0 && x < o.w && y >= 0 && y < o.h
}

// Set records e as the occupant of (x, y), overwriting any previous
// occupant.
func (o *Occupancy) Set(x, y int, e ecs.Entity) {
	i := y*o.w + x
	o.slots[i] = e
	o.used[i] = true
}

// Get returns the occupant of (x, y), if any.
func (o *Occupancy) Get(x, y int) (ecs.Entity, bool) {
	i := y*o.w + x
	if !o.used[i] {
		return ecs.Entity{}, false
	}
	return o.slots[i], true
}

// Vacate clears (x, y) only if e still owns the slot. A mover whose old
// cell was already overwritten (e.g. by a newborn) must not evict the new
// occupant.
func (o *Occupancy) Vacate(x, y int, e ecs.Entity) {
	i := y*o.w + x
	if o.used[i] && o.slots[i] == e {
		o.used[i] = false
	}
}
