// Package systems provides the environment fields, the occupancy index,
// and the per-agent behavior procedures.
package systems

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// NutrientField is a W x H grid of nutrient values in [0, Max]. It is
// shared mutable state arbitrated solely by the single-threaded tick
// order: regeneration, diffusion, decay and clamping run once per tick,
// agents and external commands mutate individual cells in between.
type NutrientField struct {
	W, H int
	Max  float64

	cells []float64
	tmp   []float64 // scratch buffer so diffusion reads pre-step values
}

// NewNutrientField creates an empty field.
func NewNutrientField(w, h int, max float64) *NutrientField {
	return &NutrientField{
		W: w, H: h,
		Max:   max,
		cells: make([]float64, w*h),
		tmp:   make([]float64, w*h),
	}
}

// Seed lays down the initial nutrient clusters from smooth noise: cells
// where the noise rises above threshold receive a value proportional to
// the excess, so clusters have soft edges instead of uniform splats.
func (f *NutrientField) Seed(seed int64, scale, threshold float64) {
	noise := opensimplex.NewNormalized(seed)
	span := 1.0 - threshold
	if span <= 0 {
		return
	}
	for y := 0; y < f.H; y++ {
		for x := 0; x < f.W; x++ {
			v := noise.Eval2(float64(x)*scale, float64(y)*scale)
			if v > threshold {
				f.cells[y*f.W+x] = (v - threshold) / span * f.Max
			}
		}
	}
}

// InBounds reports whether (x, y) is a valid cell.
func (f *NutrientField) InBounds(x, y int) bool {
	return x >= 0 && x < f.W && y >= 0 && y < f.H
}

// At returns the nutrient value at (x, y).
func (f *NutrientField) At(x, y int) float64 {
	return f.cells[y*f.W+x]
}

// Deposit adds amount at (x, y). Values may transiently exceed Max; the
// next Step clamps them.
func (f *NutrientField) Deposit(x, y int, amount float64) {
	f.cells[y*f.W+x] += amount
}

// Consume removes up to cap nutrient from (x, y) and returns the amount
// actually removed.
func (f *NutrientField) Consume(x, y int, cap float64) float64 {
	i := y*f.W + x
	take := f.cells[i]
	if take > cap {
		take = cap
	}
	f.cells[i] -= take
	return take
}

// Total returns the sum over all cells.
func (f *NutrientField) Total() float64 {
	var sum float64
	for _, v := range f.cells {
		sum += v
	}
	return sum
}

// Data exposes the raw grid, row-major, for renderers. Callers must not
// mutate it.
func (f *NutrientField) Data() []float64 {
	return f.cells
}

// Step advances the field one tick: regeneration, toroidal diffusion,
// decay, clamp. The order is fixed; each stage operates on the output of
// the previous one within the same tick.
func (f *NutrientField) Step(rng *rand.Rand, spawnRate, regenAmount, diffusion, decay float64) {
	// 1. Spontaneous regeneration.
	if spawnRate > 0 {
		for i := range f.cells {
			if rng.Float64() < spawnRate {
				f.cells[i] += regenAmount
			}
		}
	}

	// 2. Diffusion: new = old*(1-4k) + wrapped neighbor sum * k.
	if diffusion > 0 {
		f.diffuse(diffusion)
	}

	// 3. Decay.
	for i := range f.cells {
		f.cells[i] *= decay
	}

	// 4. Clamp into [0, Max].
	for i := range f.cells {
		if f.cells[i] < 0 {
			f.cells[i] = 0
		} else if f.cells[i] > f.Max {
			f.cells[i] = f.Max
		}
	}
}

// diffuse applies a 4-neighbor toroidal stencil into the scratch buffer
// so every neighbor sum reads pre-diffusion values.
func (f *NutrientField) diffuse(k float64) {
	w, h := f.W, f.H
	src := f.cells
	dst := f.tmp

	for y := 0; y < h; y++ {
		yN := wrapInt(y-1, h)
		yS := wrapInt(y+1, h)
		for x := 0; x < w; x++ {
			xW := wrapInt(x-1, w)
			xE := wrapInt(x+1, w)

			i := y*w + x
			sum := src[yN*w+x] + src[yS*w+x] + src[y*w+xE] + src[y*w+xW]
			dst[i] = src[i]*(1-4*k) + sum*k
		}
	}

	f.cells, f.tmp = dst, src
}

// wrapInt returns a modulo m in [0, m).
func wrapInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
