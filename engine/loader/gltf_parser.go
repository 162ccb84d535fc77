package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLBHeader   = errors.New("invalid GLB header")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
	errUnsupportedAccess  = errors.New("unsupported accessor")
)

// gltfParser decodes a glTF or GLB document and resolves its buffers.
type gltfParser struct {
	baseDir string
	doc     *gltfDocument
	binary  []byte
}

// newGLTFParser creates a parser that resolves relative buffer URIs against baseDir.
// An empty baseDir only allows data: URIs and the GLB binary chunk.
func newGLTFParser(baseDir string) *gltfParser {
	return &gltfParser{baseDir: baseDir}
}

// Parse decodes data as GLB when it starts with the GLB magic, otherwise as glTF JSON.
func (p *gltfParser) Parse(data []byte) (*gltfDocument, error) {
	jsonData := data
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic {
		var err error
		if jsonData, p.binary, err = splitGLB(data); err != nil {
			return nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errInvalidGLTFVersion
	}
	p.doc = &doc

	for i := range doc.Buffers {
		if err := p.loadBuffer(i); err != nil {
			return nil, fmt.Errorf("buffer %d: %w", i, err)
		}
	}
	return p.doc, nil
}

func splitGLB(data []byte) ([]byte, []byte, error) {
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errInvalidGLBHeader, err)
	}
	if header.Magic != gltfGLBMagic || header.Version != gltfGLBVersion {
		return nil, nil, errInvalidGLBHeader
	}

	var jsonData, binData []byte
	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk data: %w", err)
		}
		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = body
		case gltfGLBChunkBIN:
			binData = body
		}
	}
	if jsonData == nil {
		return nil, nil, errMissingJSONChunk
	}
	return jsonData, binData, nil
}

func (p *gltfParser) loadBuffer(i int) error {
	buf := &p.doc.Buffers[i]

	switch {
	case buf.URI == "" && i == 0 && p.binary != nil:
		buf.data = p.binary
	case buf.URI == "":
		return errors.New("no URI and no GLB binary chunk")
	case strings.HasPrefix(buf.URI, "data:"):
		comma := strings.Index(buf.URI, ",")
		if comma < 0 || !strings.Contains(buf.URI[:comma], "base64") {
			return errInvalidBufferURI
		}
		data, err := base64.StdEncoding.DecodeString(buf.URI[comma+1:])
		if err != nil {
			return fmt.Errorf("failed to decode base64: %w", err)
		}
		buf.data = data
	default:
		if p.baseDir == "" {
			return fmt.Errorf("%w: external buffer %q needs a file path", errInvalidBufferURI, buf.URI)
		}
		data, err := os.ReadFile(filepath.Join(p.baseDir, buf.URI))
		if err != nil {
			return fmt.Errorf("failed to load buffer file %q: %w", buf.URI, err)
		}
		buf.data = data
	}

	if len(buf.data) < buf.ByteLength {
		return errBufferSizeMismatch
	}
	return nil
}

// ReadFloats reads a float accessor of the given element type as a flat slice.
func (p *gltfParser) ReadFloats(index int, elementType string) ([]float32, error) {
	if index < 0 || index >= len(p.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &p.doc.Accessors[index]
	switch {
	case acc.Sparse != nil:
		return nil, fmt.Errorf("%w %d: sparse storage", errUnsupportedAccess, index)
	case acc.BufferView == nil:
		return nil, fmt.Errorf("%w %d: no buffer view", errUnsupportedAccess, index)
	case acc.ComponentType != gltfComponentTypeFloat:
		return nil, fmt.Errorf("%w %d: component type %d", errUnsupportedAccess, index, acc.ComponentType)
	case acc.Type != elementType:
		return nil, fmt.Errorf("%w %d: type %s, want %s", errUnsupportedAccess, index, acc.Type, elementType)
	}

	width := gltfElementWidth(acc.Type)
	if *acc.BufferView < 0 || *acc.BufferView >= len(p.doc.BufferViews) {
		return nil, fmt.Errorf("accessor %d: buffer view %d out of range", index, *acc.BufferView)
	}
	bv := &p.doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.doc.Buffers) {
		return nil, fmt.Errorf("buffer view %d: buffer %d out of range", *acc.BufferView, bv.Buffer)
	}
	data := p.doc.Buffers[bv.Buffer].data

	stride := width * 4
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}
	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+width*4 > len(data) {
		return nil, fmt.Errorf("accessor %d: %w", index, errBufferSizeMismatch)
	}

	out := make([]float32, 0, acc.Count*width)
	for i := 0; i < acc.Count; i++ {
		off := start + i*stride
		for c := 0; c < width; c++ {
			bits := binary.LittleEndian.Uint32(data[off+c*4:])
			out = append(out, math.Float32frombits(bits))
		}
	}
	return out, nil
}

func gltfElementWidth(elementType string) int {
	switch elementType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
