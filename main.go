package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/petrilab/petri/config"
	"github.com/petrilab/petri/notify"
	"github.com/petrilab/petri/sim"
	"github.com/petrilab/petri/telemetry"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to a YAML config overriding the defaults")
		seed        = flag.Int64("seed", 0, "simulation seed, 0 picks one from the clock")
		maxTicks    = flag.Int64("max-ticks", 0, "stop after this many ticks, 0 runs forever")
		outputDir   = flag.String("output-dir", "", "directory for telemetry CSV and config snapshot")
		logStats    = flag.Bool("log-stats", true, "log window statistics as structured JSON")
		statsWindow = flag.Int("stats-window", 0, "override the stats window length in ticks")
		serveAddr   = flag.String("serve", "", "address for the websocket frame feed, e.g. :8080")
	)
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindowTicks = *statsWindow
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	s, err := sim.New(cfg, *seed)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	var notifier *notify.WebSocketNotifier
	if *serveAddr != "" {
		notifier = notify.NewWebSocketNotifier()
		defer notifier.Close()

		mux := http.NewServeMux()
		mux.Handle("/ws", notifier.Handler())
		go func() {
			slog.Info("serving frame feed", "addr", *serveAddr)
			if err := http.ListenAndServe(*serveAddr, mux); err != nil {
				slog.Error("frame feed server stopped", "error", err)
			}
		}()
	}

	slog.Info("starting simulation",
		"seed", *seed,
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"population", cfg.Population.Initial,
	)

	for *maxTicks == 0 || s.Tick() < *maxTicks {
		s.Step()

		if notifier != nil {
			notifier.Broadcast(notify.Frame{
				Tick:       s.Tick(),
				Night:      s.IsNight(),
				Population: s.Population(),
				Predators:  s.Predators(),
				Events:     s.DrainEvents(),
			})
		}

		if s.Collector().ShouldFlush(s.Tick()) {
			stats := s.WindowStats()
			if *logStats {
				stats.LogStats()
			}
			if err := output.WriteTelemetry(stats); err != nil {
				slog.Error("failed to write telemetry", "error", err)
			}
		}

		if s.Population() == 0 {
			slog.Info("population extinct", "tick", s.Tick())
			break
		}
	}

	slog.Info("simulation finished",
		"tick", s.Tick(),
		"population", s.Population(),
		"predators", s.Predators(),
	)
}
