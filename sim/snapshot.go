package sim

import "github.com/petrilab/petri/genome"

// AgentView is a read-only snapshot of one live agent, shaped for
// renderers and network consumers.
type AgentView struct {
	ID       uint32     `json:"id"`
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Color    genome.RGB `json:"color"`
	Size     float64    `json:"size"`
	Energy   float64    `json:"energy"`
	Predator bool       `json:"predator"`
	Attached bool       `json:"attached"`
	Adhesion float64    `json:"adhesion"`
}

// Agents returns snapshots of all live agents in stable population
// order. The returned slice is freshly allocated on every call.
func (s *Sim) Agents() []AgentView {
	views := make([]AgentView, 0, len(s.agents))
	for _, e := range s.agents {
		pos := s.posMap.Get(e)
		vit := s.vitMap.Get(e)
		lin := s.linMap.Get(e)
		ph := s.phenMap.Get(e)

		views = append(views, AgentView{
			ID:       lin.ID,
			X:        pos.X,
			Y:        pos.Y,
			Color:    ph.Color,
			Size:     ph.Genome.Size,
			Energy:   vit.Energy,
			Predator: ph.Predator,
			Attached: ph.Attached,
			Adhesion: ph.Genome.Adhesion,
		})
	}
	return views
}
