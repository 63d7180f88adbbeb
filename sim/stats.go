package sim

import "github.com/petrilab/petri/telemetry"

// WindowStats drains the collector's current window and combines it
// with population-wide distributions sampled at this instant.
func (s *Sim) WindowStats() telemetry.WindowStats {
	energies := make([]float64, 0, len(s.agents))
	metabolisms := make([]float64, 0, len(s.agents))
	adhesions := make([]float64, 0, len(s.agents))
	sizes := make([]float64, 0, len(s.agents))

	predators := 0
	for _, e := range s.agents {
		vit := s.vitMap.Get(e)
		ph := s.phenMap.Get(e)

		energies = append(energies, vit.Energy)
		metabolisms = append(metabolisms, ph.Genome.Metabolism)
		adhesions = append(adhesions, ph.Genome.Adhesion)
		sizes = append(sizes, ph.Genome.Size)
		if ph.Predator {
			predators++
		}
	}

	births, deaths, consumed, predations, evolutions := s.collector.Drain(s.tick)

	energy := telemetry.Summarize(energies)
	metab := telemetry.Summarize(metabolisms)
	adhesion := telemetry.Summarize(adhesions)
	size := telemetry.Summarize(sizes)

	return telemetry.WindowStats{
		WindowEnd:      s.tick,
		Night:          s.night,
		Population:     len(s.agents),
		Predators:      predators,
		Births:         births,
		Deaths:         deaths,
		Consumed:       consumed,
		Predations:     predations,
		Evolutions:     evolutions,
		EnergyMean:     energy.Mean,
		EnergyP10:      energy.P10,
		EnergyP50:      energy.P50,
		EnergyP90:      energy.P90,
		MetabolismMean: metab.Mean,
		MetabolismStd:  metab.Std,
		AdhesionMean:   adhesion.Mean,
		SizeMean:       size.Mean,
		TotalNutrient:  s.field.Total(),
	}
}
