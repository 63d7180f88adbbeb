package genome

// RGB is a display color derived from the genome.
type RGB struct {
	R, G, B uint8
}

// Predator display color.
var predatorColor = RGB{128, 0, 128}

// Color maps the genome to a display color. Non-predators are tinted by
// their dominant trait (breeder red, scout green, survivor blue, producer
// yellow) and darkened with size; predators are always purple.
func (g Genome) Color(b Bounds, predator bool) RGB {
	if predator {
		return predatorColor
	}

	// Normalize the competing traits to a comparable 0-1 scale.
	// Metabolism is inverted: lower cost reads as higher fitness.
	candidates := []struct {
		score float64
		tint  RGB
	}{
		{g.ReproThreshold / b.ReproThreshold.Max, RGB{255, 50, 50}},
		{float64(g.SenseRange) / b.SenseRange.Max, RGB{50, 255, 50}},
		{1.0 - g.Metabolism/b.Metabolism.Max, RGB{50, 50, 255}},
		{g.Photosynthesis, RGB{255, 255, 0}},
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}

	// Bigger agents render darker.
	sizeSpan := b.Size.Max - b.Size.Min
	sizeFactor := 1.0
	if sizeSpan > 0 {
		sizeFactor = 1.0 - (g.Size-b.Size.Min)/sizeSpan*0.4
	}

	return RGB{
		R: uint8(float64(best.tint.R) * sizeFactor),
		G: uint8(float64(best.tint.G) * sizeFactor),
		B: uint8(float64(best.tint.B) * sizeFactor),
	}
}
