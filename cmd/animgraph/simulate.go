package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/telemetry"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// scriptStep assigns parameters before the given frame is evaluated.
type scriptStep struct {
	Frame uint64         `yaml:"frame"`
	Set   map[string]any `yaml:"set"`
}

type simulateEvent struct {
	Frame   uint64 `json:"frame" yaml:"frame"`
	Event   string `json:"event" yaml:"event"`
	Machine string `json:"machine" yaml:"machine"`
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
}

type simulateSample struct {
	Frame    uint64     `json:"frame" yaml:"frame"`
	Time     float32    `json:"time" yaml:"time"`
	Position [3]float32 `json:"position" yaml:"position"`
}

type simulateResult struct {
	Frames  uint64           `json:"frames" yaml:"frames"`
	Events  []simulateEvent  `json:"events" yaml:"events"`
	Samples []simulateSample `json:"samples" yaml:"samples"`
}

type simulateConfig struct {
	graphPath   string
	modelPath   string
	frames      int
	fps         float64
	sets        []string
	scriptPath  string
	every       int
	metricsAddr string
	realtime    bool
}

func newSimulateCmd(opts *options) *cobra.Command {
	cfg := &simulateConfig{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a graph headless and report transitions and root motion",
		Long: `Simulate evaluates one character for a fixed number of frames at a fixed time step.
Parameters can be set up front with --set and changed on given frames with --script,
a YAML list of {frame, set} entries.`,
		Example: `  animgraph simulate --graph character.yaml --model hero.gltf --frames 240 --set speed=0.5
  animgraph simulate --graph character.yaml --model hero.yaml --script walk_then_run.yaml --every 30
  animgraph simulate --graph character.yaml --model hero.yaml --realtime --metrics-addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runSimulation(cmd.Context(), cfg, opts.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output != textFormat {
				return writeStructured(out, opts.output, res)
			}
			for _, e := range res.Events {
				fmt.Fprintf(out, "frame %5d  %-9s %s: %s -> %s\n", e.Frame, e.Event, e.Machine, e.From, e.To)
			}
			for _, s := range res.Samples {
				fmt.Fprintf(out, "frame %5d  t=%7.3fs  position=(%.3f, %.3f, %.3f)\n", s.Frame, s.Time, s.Position[0], s.Position[1], s.Position[2])
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.graphPath, "graph", "", "Graph document to evaluate")
	f.StringVar(&cfg.modelPath, "model", "", "Skeletal asset (.yaml, .gltf, .glb)")
	f.IntVar(&cfg.frames, "frames", 120, "Number of frames to simulate")
	f.Float64Var(&cfg.fps, "fps", 60, "Simulation rate in frames per second")
	f.StringArrayVar(&cfg.sets, "set", nil, "Initial parameter assignment name=value (repeatable)")
	f.StringVar(&cfg.scriptPath, "script", "", "YAML parameter script")
	f.IntVar(&cfg.every, "every", 0, "Sample the position every N frames (0 samples only the last frame)")
	f.StringVar(&cfg.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while simulating")
	f.BoolVar(&cfg.realtime, "realtime", false, "Pace frames at wall-clock rate")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runSimulation(ctx context.Context, cfg *simulateConfig, logger *slog.Logger) (*simulateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.frames < 1 {
		return nil, fmt.Errorf("frames must be positive, got %d", cfg.frames)
	}
	if cfg.fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", cfg.fps)
	}

	ch, err := loadCharacter(cfg.graphPath, cfg.modelPath, logger)
	if err != nil {
		return nil, err
	}
	g, params, err := ch.instantiate()
	if err != nil {
		return nil, err
	}
	for _, s := range cfg.sets {
		name, v, err := parseAssignment(params, s)
		if err != nil {
			return nil, err
		}
		params.Set(name, v)
	}
	script, err := readScript(cfg.scriptPath)
	if err != nil {
		return nil, err
	}

	metrics := telemetry.NewMetrics()
	if cfg.metricsAddr != "" {
		stop, err := serveMetrics(cfg.metricsAddr, metrics, logger)
		if err != nil {
			return nil, err
		}
		defer stop()
	}

	res := &simulateResult{}
	var (
		mu    sync.Mutex
		frame uint64
	)
	collect := graph.ObserverFunc(func(e graph.TransitionEvent) {
		mu.Lock()
		defer mu.Unlock()
		res.Events = append(res.Events, simulateEvent{Frame: frame, Event: e.Kind.String(), Machine: e.Machine, From: e.From, To: e.To})
	})

	obj := game_object.NewGameObject(
		game_object.WithName(ch.model.Name()),
		game_object.WithModel(ch.model),
		game_object.WithGraph(g),
		game_object.WithParameters(params),
		game_object.WithObserver(graph.MultiObserver(collect, metrics)),
		game_object.WithLogger(logger),
	)
	sc := scene.NewScene("simulate", scene.WithMetrics(metrics), scene.WithUpdateWorkers(1), scene.WithLogger(logger), scene.WithObjects(obj))
	eng := engine.NewEngine(engine.WithScene(0, sc), engine.WithLogger(logger))

	dt := float32(1 / cfg.fps)
	var ticker *time.Ticker
	if cfg.realtime {
		ticker = time.NewTicker(time.Duration(float64(time.Second) / cfg.fps))
		defer ticker.Stop()
	}

	next := 0
	for f := 0; f < cfg.frames; f++ {
		if ticker != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-ticker.C:
			}
		}

		mu.Lock()
		frame = uint64(f)
		mu.Unlock()

		for next < len(script) && script[next].Frame <= uint64(f) {
			if err := applyStep(params, script[next]); err != nil {
				return nil, err
			}
			next++
		}

		eng.Step(dt)

		last := f == cfg.frames-1
		if (cfg.every > 0 && (f+1)%cfg.every == 0) || last {
			p := obj.Position()
			s := simulateSample{Frame: uint64(f), Time: float32(f+1) * dt, Position: [3]float32{p[0], p[1], p[2]}}
			if n := len(res.Samples); n == 0 || res.Samples[n-1].Frame != s.Frame {
				res.Samples = append(res.Samples, s)
			}
		}
	}
	res.Frames = eng.Frame()
	return res, nil
}

func applyStep(params *graph.Parameters, step scriptStep) error {
	for _, name := range common.SortedKeys(step.Set) {
		v, err := coerceParameter(params, name, step.Set[name])
		if err != nil {
			return fmt.Errorf("script frame %d: %w", step.Frame, err)
		}
		params.Set(name, v)
	}
	return nil
}

func readScript(path string) ([]scriptStep, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var steps []scriptStep
	if err := yaml.UnmarshalWithOptions(data, &steps, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Frame < steps[j].Frame })
	return steps, nil
}

// serveMetrics exposes the registry on addr until the returned stop function is called.
func serveMetrics(addr string, metrics *telemetry.Metrics, logger *slog.Logger) (func(), error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Surface immediate bind failures.
	select {
	case err := <-errCh:
		return nil, fmt.Errorf("serve metrics on %s: %w", addr, err)
	case <-time.After(50 * time.Millisecond):
	}
	logger.Info("serving metrics", slog.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}
