package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one tick window.
type WindowStats struct {
	WindowEnd int64 `csv:"window_end"`
	Night     bool  `csv:"night"`

	// Population at window end
	Population int `csv:"population"`
	Predators  int `csv:"predators"`

	// Events during the window
	Births     int `csv:"births"`
	Deaths     int `csv:"deaths"`
	Consumed   int `csv:"consumed"`
	Predations int `csv:"predations"`
	Evolutions int `csv:"evolutions"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`

	// Trait distribution (sampled at window end)
	MetabolismMean float64 `csv:"metabolism_mean"`
	MetabolismStd  float64 `csv:"metabolism_std"`
	AdhesionMean   float64 `csv:"adhesion_mean"`
	SizeMean       float64 `csv:"size_mean"`

	// Environment
	TotalNutrient float64 `csv:"total_nutrient"`
}

// Summary holds mean, standard deviation, and percentiles of a sample.
type Summary struct {
	Mean, Std, P10, P50, P90 float64
}

// Summarize computes a Summary over values. An empty sample yields zeros.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return Summary{
		Mean: stat.Mean(sorted, nil),
		Std:  stat.StdDev(sorted, nil),
		P10:  stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_end", s.WindowEnd),
		slog.Bool("night", s.Night),
		slog.Int("population", s.Population),
		slog.Int("predators", s.Predators),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("consumed", s.Consumed),
		slog.Int("predations", s.Predations),
		slog.Int("evolutions", s.Evolutions),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
		slog.Float64("metabolism_mean", s.MetabolismMean),
		slog.Float64("metabolism_std", s.MetabolismStd),
		slog.Float64("adhesion_mean", s.AdhesionMean),
		slog.Float64("size_mean", s.SizeMean),
		slog.Float64("total_nutrient", s.TotalNutrient),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
