package sim

// EventKind identifies a discrete simulation event.
type EventKind uint8

const (
	// EventPredation is emitted when a predator consumes another agent.
	EventPredation EventKind = iota
	// EventReproduction is emitted when a parent spawns a child.
	EventReproduction
)

// Event is one discrete occurrence within a tick, emitted for external
// renderers. Events are observational only; consuming or dropping them
// has no effect on simulation state.
type Event struct {
	Kind EventKind `json:"kind"`

	// X, Y is the predator's cell at the moment of the strike, or the
	// parent's cell for a reproduction.
	X int `json:"x"`
	Y int `json:"y"`

	// ChildX, ChildY is the newborn's cell. Reproduction only.
	ChildX int `json:"child_x,omitempty"`
	ChildY int `json:"child_y,omitempty"`
}

// NewPredationEvent creates a predation event.
func NewPredationEvent(x, y int) Event {
	return Event{Kind: EventPredation, X: x, Y: y}
}

// NewReproductionEvent creates a reproduction event.
func NewReproductionEvent(parentX, parentY, childX, childY int) Event {
	return Event{
		Kind:   EventReproduction,
		X:      parentX,
		Y:      parentY,
		ChildX: childX,
		ChildY: childY,
	}
}
