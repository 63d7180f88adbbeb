package systems

// SunlightField is a per-row intensity table, computed once at
// construction and read-only afterwards. Intensity falls off linearly
// with depth down to penetration * max at the bottom row. Night is the
// caller's concern: agents receive sunlight only while it is day.
type SunlightField struct {
	W, H int
	rows []float64
}

// NewSunlightField precomputes the row intensities.
func NewSunlightField(w, h int, maxIntensity, penetration float64) *SunlightField {
	rows := make([]float64, h)
	for y := 0; y < h; y++ {
		rows[y] = maxIntensity * (1.0 - float64(y)/float64(h)*(1.0-penetration))
	}
	return &SunlightField{W: w, H: h, rows: rows}
}

// At returns the intensity at row y. The value is the same for every x.
func (s *SunlightField) At(y int) float64 {
	return s.rows[y]
}
