package scene

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
	"github.com/Carmen-Shannon/oxy-anim/engine/graph"
	"github.com/Carmen-Shannon/oxy-anim/engine/telemetry"
)

// Scene defines the interface for a collection of animated game objects updated together.
// Update evaluates every enabled object's graph in parallel on a persistent worker pool and
// returns once all of them have finished, so callers may read poses afterwards without
// further synchronization.
type Scene interface {
	// Name returns the scene name.
	//
	// Returns:
	//   - string: the name
	Name() string

	// SetName sets the scene name.
	//
	// Parameters:
	//   - name: the new name
	SetName(name string)

	// Active reports whether the engine updates this scene.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive sets whether the engine updates this scene.
	//
	// Parameters:
	//   - active: true to activate
	SetActive(active bool)

	// Count returns the number of registered (non-ephemeral) objects.
	//
	// Returns:
	//   - int: the registry size
	Count() int

	// CountEphemeral returns the number of ephemeral objects.
	//
	// Returns:
	//   - int: the ephemeral object count
	CountEphemeral() int

	// Add inserts an object, assigning it an ID if it has none.
	// Objects without an observer receive the scene's observer.
	//
	// Parameters:
	//   - obj: the object to add
	//
	// Returns:
	//   - uint64: the object ID
	Add(obj game_object.GameObject) uint64

	// Get looks up a registered object by ID.
	//
	// Parameters:
	//   - id: the object ID
	//
	// Returns:
	//   - game_object.GameObject: the object, or nil
	Get(id uint64) game_object.GameObject

	// Remove deletes an object by ID. Unknown IDs are ignored.
	//
	// Parameters:
	//   - id: the object ID
	Remove(id uint64)

	// Objects returns every object, registered ones in ID order followed by ephemeral ones.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// Clear removes every object.
	Clear()

	// Update advances every enabled object by dt seconds.
	//
	// Parameters:
	//   - dt: the frame time in seconds
	//
	// Returns:
	//   - int: the number of objects updated
	Update(dt float32) int

	// Frame returns the number of completed Update calls.
	//
	// Returns:
	//   - uint64: the frame count
	Frame() uint64
}

type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	registry  map[uint64]game_object.GameObject // non-ephemeral objects by ID
	ephemeral []game_object.GameObject
	nextID    uint64
	frame     atomic.Uint64

	observer graph.Observer
	metrics  *telemetry.Metrics
	logger   *slog.Logger

	// updatePool is reused across frames so Update does not spawn goroutines.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int

	// batch is reused each frame to collect the enabled objects.
	batch []game_object.GameObject
}

var _ Scene = &scene{}

// NewScene creates an empty, active Scene.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		active:        true,
		registry:      make(map[uint64]game_object.GameObject),
		nextID:        1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
		logger:        slog.Default(),
	}

	for _, option := range options {
		option(s)
	}
	s.logger = telemetry.WithScene(s.logger, s.name)

	// Queue size of 256 covers one task per worker with headroom.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) CountEphemeral() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ephemeral)
}

func (s *scene) Add(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(obj)
}

// add inserts obj. Caller must hold s.mu write lock.
func (s *scene) add(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
		s.nextID++
	} else if obj.ID() >= s.nextID {
		s.nextID = obj.ID() + 1
	}

	if obj.Observer() == nil {
		if o := s.sceneObserver(); o != nil {
			obj.SetObserver(o)
		}
	}

	if obj.Ephemeral() {
		s.ephemeral = append(s.ephemeral, obj)
	} else {
		s.registry[obj.ID()] = obj
	}
	return obj.ID()
}

func (s *scene) sceneObserver() graph.Observer {
	switch {
	case s.observer != nil && s.metrics != nil:
		return graph.MultiObserver(s.observer, s.metrics)
	case s.metrics != nil:
		return s.metrics
	default:
		return s.observer
	}
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.registry[id]; ok {
		delete(s.registry, id)
		return
	}
	for i, obj := range s.ephemeral {
		if obj.ID() == id {
			s.ephemeral = append(s.ephemeral[:i], s.ephemeral[i+1:]...)
			return
		}
	}
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(nil, false)
}

// collect appends registered objects in ID order, then ephemeral ones, to dst.
// Caller must hold s.mu.
func (s *scene) collect(dst []game_object.GameObject, enabledOnly bool) []game_object.GameObject {
	for _, id := range common.SortedKeys(s.registry) {
		if obj := s.registry[id]; !enabledOnly || obj.Enabled() {
			dst = append(dst, obj)
		}
	}
	for _, obj := range s.ephemeral {
		if !enabledOnly || obj.Enabled() {
			dst = append(dst, obj)
		}
	}
	return dst
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry = make(map[uint64]game_object.GameObject)
	s.ephemeral = nil
}

func (s *scene) Update(dt float32) int {
	// The write lock keeps the object set fixed and serializes Updates, which share s.batch.
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	s.batch = s.collect(s.batch[:0], true)
	objs := s.batch
	if len(objs) == 0 {
		s.frame.Add(1)
		s.metrics.ObserveUpdate(time.Since(start), 0)
		return 0
	}

	// Fan out contiguous chunks, one task per worker. A WaitGroup provides the per-frame
	// barrier since the pool's own Wait blocks until workers idle-exit.
	chunk := (len(objs) + s.updateWorkers - 1) / s.updateWorkers
	var wg sync.WaitGroup
	taskID := 0
	for lo := 0; lo < len(objs); lo += chunk {
		part := objs[lo:min(lo+chunk, len(objs))]
		wg.Add(1)
		s.updatePool.SubmitTask(worker.Task{
			ID: taskID,
			Do: func() (any, error) {
				defer wg.Done()
				for _, obj := range part {
					obj.Update(dt)
				}
				return nil, nil
			},
		})
		taskID++
	}
	wg.Wait()

	frame := s.frame.Add(1)
	elapsed := time.Since(start)
	s.metrics.ObserveUpdate(elapsed, len(objs))
	if frame%600 == 0 {
		s.logger.Debug("scene update",
			slog.Uint64("frame", frame),
			slog.Int("objects", len(objs)),
			slog.Duration("elapsed", elapsed),
		)
	}
	return len(objs)
}

func (s *scene) Frame() uint64 {
	return s.frame.Load()
}
