package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/Carmen-Shannon/oxy-anim/engine/telemetry"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

var profileModes = map[string]func(*profile.Profile){
	"cpu":    profile.CPUProfile,
	"mem":    profile.MemProfile,
	"allocs": profile.MemProfileAllocs,
	"block":  profile.BlockProfile,
	"mutex":  profile.MutexProfile,
	"trace":  profile.TraceProfile,
}

type benchConfig struct {
	graphPath  string
	modelPath  string
	entities   int
	frames     int
	workers    int
	fps        float64
	sets       []string
	profile    string
	profileDir string
}

type benchResult struct {
	Entities         int     `json:"entities" yaml:"entities"`
	Frames           int     `json:"frames" yaml:"frames"`
	Workers          int     `json:"workers,omitempty" yaml:"workers,omitempty"`
	ElapsedSeconds   float64 `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	FramesPerSecond  float64 `json:"frames_per_second" yaml:"frames_per_second"`
	UpdatesPerSecond float64 `json:"updates_per_second" yaml:"updates_per_second"`
	MeanFrameMillis  float64 `json:"mean_frame_ms" yaml:"mean_frame_ms"`
}

func newBenchCmd(opts *options) *cobra.Command {
	cfg := &benchConfig{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure graph evaluation throughput over many entities",
		Example: `  animgraph bench --graph character.yaml --model hero.gltf --entities 5000 --frames 600
  animgraph bench --graph character.yaml --model hero.gltf --profile cpu --profile-dir ./pprof
  go tool pprof -http=":8000" ./pprof/cpu.pprof`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runBench(cfg, opts.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output != textFormat {
				return writeStructured(out, opts.output, res)
			}
			fmt.Fprintf(out, "entities:    %d\n", res.Entities)
			fmt.Fprintf(out, "frames:      %d\n", res.Frames)
			fmt.Fprintf(out, "elapsed:     %.3fs\n", res.ElapsedSeconds)
			fmt.Fprintf(out, "frames/s:    %.1f\n", res.FramesPerSecond)
			fmt.Fprintf(out, "updates/s:   %.0f\n", res.UpdatesPerSecond)
			fmt.Fprintf(out, "mean frame:  %.3fms\n", res.MeanFrameMillis)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.graphPath, "graph", "", "Graph document to evaluate")
	f.StringVar(&cfg.modelPath, "model", "", "Skeletal asset (.yaml, .gltf, .glb)")
	f.IntVar(&cfg.entities, "entities", 1000, "Number of game objects")
	f.IntVar(&cfg.frames, "frames", 600, "Number of frames to run")
	f.IntVar(&cfg.workers, "workers", 0, "Update workers (0 uses NumCPU-1)")
	f.Float64Var(&cfg.fps, "fps", 60, "Simulated frame rate")
	f.StringArrayVar(&cfg.sets, "set", nil, "Parameter assignment name=value applied to every entity (repeatable)")
	f.StringVar(&cfg.profile, "profile", "", "Profile mode (cpu, mem, allocs, block, mutex, trace)")
	f.StringVar(&cfg.profileDir, "profile-dir", ".", "Directory profiles are written to")
	_ = cmd.MarkFlagRequired("graph")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runBench(cfg *benchConfig, logger *slog.Logger) (*benchResult, error) {
	if cfg.entities < 1 || cfg.frames < 1 {
		return nil, fmt.Errorf("entities and frames must be positive, got %d and %d", cfg.entities, cfg.frames)
	}
	if cfg.fps <= 0 {
		return nil, fmt.Errorf("fps must be positive, got %v", cfg.fps)
	}
	var mode func(*profile.Profile)
	if cfg.profile != "" {
		var ok bool
		if mode, ok = profileModes[cfg.profile]; !ok {
			return nil, fmt.Errorf("unknown profile mode %q", cfg.profile)
		}
	}

	ch, err := loadCharacter(cfg.graphPath, cfg.modelPath, logger)
	if err != nil {
		return nil, err
	}

	sceneOpts := []scene.SceneBuilderOption{scene.WithMetrics(telemetry.NewMetrics()), scene.WithLogger(logger)}
	if cfg.workers > 0 {
		sceneOpts = append(sceneOpts, scene.WithUpdateWorkers(cfg.workers))
	}
	sc := scene.NewScene("bench", sceneOpts...)

	for i := 0; i < cfg.entities; i++ {
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
		sc.Add(game_object.NewGameObject(
			game_object.WithModel(ch.model),
			game_object.WithGraph(g),
			game_object.WithParameters(params),
			game_object.WithLogger(logger),
		))
	}

	eng := engine.NewEngine(engine.WithScene(0, sc), engine.WithLogger(logger))
	dt := float32(1 / cfg.fps)

	if mode != nil {
		p := profile.Start(mode, profile.ProfilePath(cfg.profileDir), profile.NoShutdownHook, profile.Quiet)
		defer p.Stop()
	}

	start := time.Now()
	for f := 0; f < cfg.frames; f++ {
		eng.Step(dt)
	}
	elapsed := time.Since(start)

	secs := elapsed.Seconds()
	return &benchResult{
		Entities:         cfg.entities,
		Frames:           cfg.frames,
		Workers:          cfg.workers,
		ElapsedSeconds:   secs,
		FramesPerSecond:  float64(cfg.frames) / secs,
		UpdatesPerSecond: float64(cfg.frames*cfg.entities) / secs,
		MeanFrameMillis:  secs * 1000 / float64(cfg.frames),
	}, nil
}
