package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/Carmen-Shannon/oxy-anim/engine/nodes"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
)

// idler builds a game object that loops a one-bone "idle" clip.
func idler(t *testing.T) game_object.GameObject {
	t.Helper()
	sk, err := model.NewSkeleton("idler", []model.Bone{{Name: "root", ParentID: -1}}, mgl32.Ident4())
	if err != nil {
		t.Fatalf("NewSkeleton: %v", err)
	}
	idle, err := model.NewAnimation("idle", 1, 1, []model.Channel{{
		BoneName:     "root",
		PositionKeys: []model.VectorKey{{Time: 0}, {Time: 1, Value: mgl32.Vec3{0, 1, 0}}},
	}})
	if err != nil {
		t.Fatalf("NewAnimation: %v", err)
	}
	m := model.NewModel(model.WithName("idler"), model.WithSkeleton(sk), model.WithAnimations(idle))

	g := graph.NewGraph()
	aID := g.AddNode(nodes.NewAnimationNode("idle"))
	outID := g.AddNode(nodes.NewOutputPoseNode())
	if err := g.Connect(aID, nodes.AnimationOutputPose, outID, 0); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := g.SetOutputNode(outID); err != nil {
		t.Fatalf("SetOutputNode: %v", err)
	}
	return game_object.NewGameObject(game_object.WithModel(m), game_object.WithGraph(g))
}

func TestStepUpdatesActiveScenesInOrder(t *testing.T) {
	a := scene.NewScene("a", scene.WithObjects(idler(t), idler(t)))
	b := scene.NewScene("b", scene.WithObjects(idler(t)))
	off := scene.NewScene("off", scene.WithActive(false), scene.WithObjects(idler(t)))

	var ticks []float32
	e := NewEngine(
		WithScene(2, b),
		WithScene(1, a),
		WithScene(0, off),
		WithTickCallback(func(dt float32) { ticks = append(ticks, dt) }),
	)

	if n := e.Step(0.5); n != 3 {
		t.Errorf("Step() = %d, want 3", n)
	}
	e.Step(0.25)

	if e.Frame() != 2 {
		t.Errorf("Frame() = %d, want 2", e.Frame())
	}
	if a.Frame() != 2 || b.Frame() != 2 || off.Frame() != 0 {
		t.Errorf("scene frames = %d, %d, %d, want 2, 2, 0", a.Frame(), b.Frame(), off.Frame())
	}
	if len(ticks) != 2 || ticks[0] != 0.5 || ticks[1] != 0.25 {
		t.Errorf("tick callback deltas = %v, want [0.5 0.25]", ticks)
	}
}

func TestSceneRegistry(t *testing.T) {
	e := NewEngine()
	s := scene.NewScene("main")
	e.AddScene(5, s)
	if e.Scene(5) != s {
		t.Error("Scene(5) did not return the added scene")
	}

	cp := e.Scenes()
	delete(cp, 5)
	if e.Scene(5) == nil {
		t.Error("mutating Scenes() copy removed the scene")
	}

	e.RemoveScene(5)
	if e.Scene(5) != nil {
		t.Error("Scene(5) != nil after RemoveScene")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	e := NewEngine(WithTickRate(500), WithScene(0, scene.NewScene("main", scene.WithObjects(idler(t)))))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := e.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want %v", err, context.DeadlineExceeded)
	}
	if e.Frame() == 0 {
		t.Error("Run ticked no frames")
	}
}

func TestRunStopsOnQuit(t *testing.T) {
	e := NewEngine(WithTickRate(1000))
	e.SetTickCallback(func(float32) {
		if e.Frame() >= 3 {
			e.Quit()
		}
	})

	done := make(chan error, 1)
	go func() { done <- e.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	e.Quit()
}

func TestRunClampsDelta(t *testing.T) {
	var maxDT float32
	e := NewEngine(WithTickRate(20), WithMaxDelta(0.01), WithTickCallback(func(dt float32) {
		maxDT = max(maxDT, dt)
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = e.Run(ctx)

	if maxDT > 0.01 {
		t.Errorf("largest delta = %v, want <= 0.01", maxDT)
	}
}

func TestSetTickRate(t *testing.T) {
	e := NewEngine()
	e.SetTickRate(120)
	if got, want := e.TickRate(), time.Second/120; got != want {
		t.Errorf("TickRate() = %v, want %v", got, want)
	}
	e.SetTickRate(0)
	if got, want := e.TickRate(), time.Second/60; got != want {
		t.Errorf("TickRate() = %v, want %v", got, want)
	}
}
