package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

const heroYAML = `
name: hero
skeleton:
  name: hero_rig
  bones:
    - name: root
    - name: hips
      parent: root
      translation: [0.0, 1.0, 0.0]
    - name: spine
      parent: hips
      rotation: [0.0, 0.0, 0.0, 1.0]
animations:
  - name: idle
    duration: 10.0
    ticks_per_second: 10.0
    channels:
      - bone: hips
        position:
          - {time: 0.0, value: [0.0, 1.0, 0.0]}
          - {time: 10.0, value: [0.0, 1.5, 0.0]}
  - name: walk
    duration: 20.0
    ticks_per_second: 10.0
    channels:
      - bone: root
        position:
          - {time: 0.0, value: [0.0, 0.0, 0.0]}
          - {time: 20.0, value: [2.0, 0.0, 0.0]}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hero.yaml", heroYAML)
	l := NewLoader()

	m, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name() != "hero" {
		t.Errorf("Name() = %q, want hero", m.Name())
	}

	s := m.Skeleton()
	if s == nil {
		t.Fatal("Skeleton() = nil")
	}
	if s.Name != "hero_rig" {
		t.Errorf("skeleton name = %q, want hero_rig", s.Name)
	}
	if s.BoneCount() != 3 {
		t.Fatalf("BoneCount() = %d, want 3", s.BoneCount())
	}
	if id, _ := s.BoneIndex("spine"); s.Bones[id].ParentID != 1 {
		t.Errorf("spine parent = %d, want 1", s.Bones[id].ParentID)
	}
	if got := s.Bones[1].LocalTransform.Translation; !common.Vec3Near(got, mgl32.Vec3{0, 1, 0}, 1e-6) {
		t.Errorf("hips translation = %v, want [0 1 0]", got)
	}

	if m.AnimationCount() != 2 {
		t.Fatalf("AnimationCount() = %d, want 2", m.AnimationCount())
	}
	walk := m.Animation("walk")
	if walk == nil {
		t.Fatal("Animation(walk) = nil")
	}
	if got := walk.DurationSeconds(); math.Abs(float64(got-2)) > 1e-6 {
		t.Errorf("walk DurationSeconds() = %v, want 2", got)
	}

	again, err := l.Load(path)
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if again != m {
		t.Error("second Load returned a different model, want the cached one")
	}
	if l.Get(path) != m {
		t.Error("Get(path) did not return the cached model")
	}
}

func TestLoadYAMLNameFallback(t *testing.T) {
	body := "animations:\n  - name: a\n    duration: 1.0\n"
	path := writeFile(t, t.TempDir(), "crate.yml", body)

	m, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name() != "crate" {
		t.Errorf("Name() = %q, want crate", m.Name())
	}
	if m.Skinned() {
		t.Error("Skinned() = true, want false without a skeleton")
	}
}

func TestLoadYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{
			name: "unknown parent",
			body: "skeleton:\n  bones:\n    - name: root\n    - name: arm\n      parent: torso\n",
			want: model.ErrInvalidParent,
		},
		{
			name: "child before parent",
			body: "skeleton:\n  bones:\n    - name: arm\n      parent: root\n    - name: root\n",
			want: model.ErrBoneOrder,
		},
		{
			name: "two roots",
			body: "skeleton:\n  bones:\n    - name: a\n    - name: b\n",
			want: model.ErrMultipleRoots,
		},
		{
			name: "duplicate clip",
			body: "animations:\n  - name: a\n    duration: 1.0\n  - name: a\n    duration: 2.0\n",
			want: model.ErrDuplicateClip,
		},
		{
			name: "unsorted keys",
			body: "animations:\n  - name: a\n    duration: 1.0\n    channels:\n      - bone: root\n        position:\n          - {time: 1.0, value: [0.0, 0.0, 0.0]}\n          - {time: 0.0, value: [0.0, 0.0, 0.0]}\n",
			want: model.ErrUnsortedKeys,
		},
		{
			name: "zero duration",
			body: "animations:\n  - name: a\n",
			want: model.ErrInvalidDuration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.yaml", tt.body)
			_, err := NewLoader().Load(path)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadYAMLMalformed(t *testing.T) {
	tests := map[string]string{
		"rotation length": "skeleton:\n  bones:\n    - name: root\n      rotation: [0.0, 0.0, 1.0]\n",
		"unknown field":   "name: x\ncolour: red\n",
		"not yaml":        "name: [unterminated\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.yaml", body)
			if _, err := NewLoader().Load(path); err == nil {
				t.Error("Load() error = nil, want an error")
			}
		})
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hero.fbx", "")
	_, err := NewLoader().Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadAllSharesSamePath(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hero.yaml", heroYAML)
	l := NewLoader(WithConcurrency(8))

	paths := make([]string, 16)
	for i := range paths {
		paths[i] = path
	}
	models, err := l.LoadAll(context.Background(), paths...)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	for i, m := range models {
		if m != models[0] {
			t.Fatalf("models[%d] differs from models[0]", i)
		}
	}
	if keys := l.Keys(); len(keys) != 1 || keys[0] != path {
		t.Errorf("Keys() = %v, want [%s]", keys, path)
	}
}

func TestLoadAllConcurrentCallers(t *testing.T) {
	path := writeFile(t, t.TempDir(), "hero.yaml", heroYAML)
	l := NewLoader()

	var wg sync.WaitGroup
	results := make([]model.Model, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := l.Load(path)
			if err != nil {
				t.Errorf("Load: %v", err)
				return
			}
			results[i] = m
		}()
	}
	wg.Wait()

	for i, m := range results {
		if m == nil || m != results[0] {
			t.Fatalf("results[%d] = %v, want the shared model", i, m)
		}
	}
}

func TestLoadAllError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "hero.yaml", heroYAML)
	missing := filepath.Join(dir, "missing.yaml")

	if _, err := NewLoader().LoadAll(context.Background(), good, missing); err == nil {
		t.Error("LoadAll() error = nil, want an error for the missing file")
	}
}

func TestRegister(t *testing.T) {
	a := model.NewModel(model.WithName("a"))
	b := model.NewModel(model.WithName("b"))
	l := NewLoader(WithModel("a", a))

	if err := l.Register("a", a); err != nil {
		t.Errorf("re-registering the same model: %v", err)
	}
	if err := l.Register("a", b); !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Register() error = %v, want ErrDuplicateKey", err)
	}
	if err := l.Register("b", b); err != nil {
		t.Fatalf("Register(b): %v", err)
	}
	if got := l.Models(); len(got) != 2 || got["b"] != b {
		t.Errorf("Models() = %v, want a and b", got)
	}
}

func TestLoadReader(t *testing.T) {
	l := NewLoader()
	m, err := l.LoadReader("hero", strings.NewReader(heroYAML), BackendTypeYAML)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	if l.Get("hero") != m {
		t.Error("LoadReader did not cache under its key")
	}
	if _, err := l.LoadReader("x", strings.NewReader(""), LoaderBackendType(99)); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("LoadReader() error = %v, want ErrUnsupportedFormat", err)
	}
}

// gltfFixture returns a glTF document with three nodes (an armature holding a root joint
// holding a hip joint), a skin listing the joints child-first, and one translation clip on
// the hip. bufferURI is spliced into the single buffer entry.
func gltfFixture(bufferURI string) (string, []byte) {
	var bin bytes.Buffer
	for _, f := range []float32{0, 2, 0, 1, 0, 0, 2, 0} {
		_ = binary.Write(&bin, binary.LittleEndian, f)
	}

	uri := ""
	if bufferURI != "" {
		uri = fmt.Sprintf(`"uri": %q,`, bufferURI)
	}
	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"name": "hero", "nodes": [0]}],
  "nodes": [
    {"name": "Armature", "children": [1], "translation": [0, 0, 5]},
    {"name": "root", "children": [2]},
    {"name": "hip", "translation": [0, 1, 0]}
  ],
  "skins": [{"joints": [2, 1]}],
  "buffers": [{%s "byteLength": %d}],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": 8},
    {"buffer": 0, "byteOffset": 8, "byteLength": 24}
  ],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 2, "type": "SCALAR"},
    {"bufferView": 1, "componentType": 5126, "count": 2, "type": "VEC3"}
  ],
  "animations": [{
    "name": "wave",
    "channels": [{"sampler": 0, "target": {"node": 2, "path": "translation"}}],
    "samplers": [{"input": 0, "output": 1}]
  }]
}`, uri, bin.Len())
	return doc, bin.Bytes()
}

func checkGLTFModel(t *testing.T, m model.Model) {
	t.Helper()
	if m.Name() != "hero" {
		t.Errorf("Name() = %q, want hero", m.Name())
	}
	s := m.Skeleton()
	if s == nil || s.BoneCount() != 2 {
		t.Fatalf("Skeleton() = %v, want 2 bones", s)
	}
	if s.Bones[0].Name != "root" || s.Bones[1].Name != "hip" {
		t.Errorf("bone order = [%s %s], want [root hip]", s.Bones[0].Name, s.Bones[1].Name)
	}
	if s.Bones[1].ParentID != 0 {
		t.Errorf("hip ParentID = %d, want 0", s.Bones[1].ParentID)
	}
	if got := s.ArmatureTransform.Col(3); !common.Vec4Near(got, mgl32.Vec4{0, 0, 5, 1}, 1e-6) {
		t.Errorf("armature translation = %v, want [0 0 5 1]", got)
	}

	wave := m.Animation("wave")
	if wave == nil {
		t.Fatal("Animation(wave) = nil")
	}
	if wave.DurationSeconds() != 2 {
		t.Errorf("wave DurationSeconds() = %v, want 2", wave.DurationSeconds())
	}
	ch := wave.Channel("hip")
	if ch == nil || len(ch.PositionKeys) != 2 {
		t.Fatalf("hip channel = %v, want 2 position keys", ch)
	}
	if got := ch.PositionKeys[1].Value; !common.Vec3Near(got, mgl32.Vec3{0, 2, 0}, 1e-6) {
		t.Errorf("second key = %v, want [0 2 0]", got)
	}
}

func TestLoadGLTFDataURI(t *testing.T) {
	_, bin := gltfFixture("")
	doc, _ := gltfFixture("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin))
	path := writeFile(t, t.TempDir(), "hero.gltf", doc)

	m, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkGLTFModel(t, m)
}

func TestLoadGLTFExternalBuffer(t *testing.T) {
	dir := t.TempDir()
	doc, bin := gltfFixture("hero.bin")
	writeFile(t, dir, "hero.bin", string(bin))
	path := writeFile(t, dir, "hero.gltf", doc)

	m, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	checkGLTFModel(t, m)
}

func TestLoadGLB(t *testing.T) {
	doc, bin := gltfFixture("")
	jsonChunk := []byte(doc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}

	var glb bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(bin)
	_ = binary.Write(&glb, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)})
	_ = binary.Write(&glb, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON})
	glb.Write(jsonChunk)
	_ = binary.Write(&glb, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(bin)), ChunkType: gltfGLBChunkBIN})
	glb.Write(bin)

	m, err := NewLoader().LoadReader("hero.glb", &glb, BackendTypeGLTF)
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	checkGLTFModel(t, m)
}

func TestLoadGLTFErrors(t *testing.T) {
	tests := map[string]string{
		"version":   `{"asset": {"version": "1.0"}}`,
		"json":      `{"asset": `,
		"no buffer": `{"asset": {"version": "2.0"}, "buffers": [{"byteLength": 4}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLoader().LoadReader(name, strings.NewReader(body), BackendTypeGLTF)
			if err == nil {
				t.Error("LoadReader() error = nil, want an error")
			}
		})
	}
}
