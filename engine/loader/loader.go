package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeYAML selects the YAML skeleton and clip description backend.
	BackendTypeYAML LoaderBackendType = iota

	// BackendTypeGLTF selects the glTF/GLB backend, which reads the first skin and its animations.
	BackendTypeGLTF
)

var (
	ErrUnsupportedFormat = errors.New("unsupported asset format")
	ErrDuplicateKey      = errors.New("asset key already registered")
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	backends map[LoaderBackendType]loaderBackend

	group singleflight.Group

	concurrency int

	logger *slog.Logger
}

// Loader defines the public-facing interface for loading and caching animation assets.
// A Loader is an explicit library object; nothing is registered globally.
// Every method is safe for concurrent use.
type Loader interface {
	// Load imports an asset file and caches the result under its path.
	// If the path is already cached, the cached model is returned. Concurrent loads of the
	// same path share a single decode. The backend is selected by file extension
	// (.yaml/.yml → YAML backend, .gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the asset
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if reading or decoding fails
	Load(path string) (model.Model, error)

	// LoadReader imports an asset from a reader stream and caches it by the given key.
	//
	// Parameters:
	//   - key: the cache key for the loaded model
	//   - r: the reader providing the asset data
	//   - backendType: the format of the data
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if decoding fails
	LoadReader(key string, r io.Reader, backendType LoaderBackendType) (model.Model, error)

	// LoadAll loads several asset files in parallel and returns them in argument order.
	// The first failure cancels the remaining loads.
	//
	// Parameters:
	//   - ctx: cancels outstanding loads
	//   - paths: the asset file paths
	//
	// Returns:
	//   - []model.Model: the models, index-aligned with paths
	//   - error: the first load error
	LoadAll(ctx context.Context, paths ...string) ([]model.Model, error)

	// Register adds an already-built model to the cache.
	//
	// Parameters:
	//   - key: the cache key
	//   - m: the model
	//
	// Returns:
	//   - error: ErrDuplicateKey if the key is taken by a different model
	Register(key string, m model.Model) error

	// Get retrieves a cached model by key. Returns nil if not found.
	//
	// Parameters:
	//   - key: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(key string) model.Model

	// Keys returns every cache key in sorted order.
	//
	// Returns:
	//   - []string: the cache keys
	Keys() []string

	// Models returns a copy of the model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by cache key
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with every backend available and the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		modelCache: make(map[string]model.Model),
		backends: map[LoaderBackendType]loaderBackend{
			BackendTypeYAML: newYAMLLoaderBackend(),
			BackendTypeGLTF: newGLTFLoaderBackend(),
		},
		concurrency: 4,
		logger:      slog.Default(),
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backendType, err := resolveBackend(path)
	if err != nil {
		return nil, err
	}

	v, err, shared := l.group.Do(path, func() (any, error) {
		if cached := l.Get(path); cached != nil {
			return cached, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		m, err := l.backends[backendType].Decode(data, filepath.Dir(path), fallbackName(path))
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}

		l.mu.Lock()
		l.modelCache[path] = m
		l.mu.Unlock()

		l.logger.Debug("asset loaded",
			slog.String("path", path),
			slog.String("model", m.Name()),
			slog.Int("animations", m.AnimationCount()),
		)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug("asset load shared", slog.String("path", path))
	}
	return v.(model.Model), nil
}

func (l *loader) LoadReader(key string, r io.Reader, backendType LoaderBackendType) (model.Model, error) {
	if cached := l.Get(key); cached != nil {
		return cached, nil
	}

	backend, ok := l.backends[backendType]
	if !ok {
		return nil, fmt.Errorf("%w: backend %d", ErrUnsupportedFormat, backendType)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", key, err)
	}

	m, err := backend.Decode(buf.Bytes(), "", key)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", key, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if cached, ok := l.modelCache[key]; ok {
		return cached, nil
	}
	l.modelCache[key] = m
	return m, nil
}

func (l *loader) LoadAll(ctx context.Context, paths ...string) ([]model.Model, error) {
	out := make([]model.Model, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := l.Load(path)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *loader) Register(key string, m model.Model) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if existing, ok := l.modelCache[key]; ok && existing != m {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, key)
	}
	l.modelCache[key] = m
	return nil
}

func (l *loader) Get(key string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[key]
}

func (l *loader) Keys() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return common.SortedKeys(l.modelCache)
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects a loader backend based on the file extension.
func resolveBackend(path string) (LoaderBackendType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return BackendTypeYAML, nil
	case ".gltf", ".glb":
		return BackendTypeGLTF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// fallbackName derives a model name from a file path when the asset does not declare one.
func fallbackName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
