package loader

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

// loaderBackend defines the format-specific half of asset loading.
// Concrete implementations (yamlLoaderBackend, gltfLoaderBackend) turn raw bytes into a Model.
type loaderBackend interface {
	// Decode builds a model from a complete asset document.
	//
	// Parameters:
	//   - data: the raw asset bytes
	//   - baseDir: the directory used to resolve relative references, or "" when there is none
	//   - fallbackName: the model name to use when the asset does not declare one
	//
	// Returns:
	//   - model.Model: the decoded model
	//   - error: error if decoding or validation fails
	Decode(data []byte, baseDir, fallbackName string) (model.Model, error)
}
