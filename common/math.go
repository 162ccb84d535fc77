package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// Lerp linearly interpolates between two scalars.
//
// Parameters:
//   - a: the value at t = 0
//   - b: the value at t = 1
//   - t: the interpolation factor (not clamped)
//
// Returns:
//   - float32: a + (b-a)*t
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// LerpVec3 linearly interpolates between two vectors component-wise.
//
// Parameters:
//   - a: the vector at t = 0
//   - b: the vector at t = 1
//   - t: the interpolation factor (not clamped)
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return mgl32.Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// Clamp01 clamps a scalar into the [0, 1] range.
func Clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}

// NearlyEqual reports whether two scalars differ by at most eps.
// Unlike mgl32.FloatEqualThreshold the tolerance is absolute even when one side is zero.
func NearlyEqual(a, b, eps float32) bool {
	return mgl32.Abs(a-b) <= eps
}

// VecNear reports whether every component of two equally sized vectors differs by at most eps.
//
// Parameters:
//   - a: the first component slice
//   - b: the second component slice
//   - eps: the absolute per-component tolerance
//
// Returns:
//   - bool: true if the lengths match and every pair of components is within eps
func VecNear(a, b []float32, eps float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !NearlyEqual(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

// Vec3Near is VecNear for mgl32.Vec3.
func Vec3Near(a, b mgl32.Vec3, eps float32) bool {
	return VecNear(a[:], b[:], eps)
}

// Vec4Near is VecNear for mgl32.Vec4.
func Vec4Near(a, b mgl32.Vec4, eps float32) bool {
	return VecNear(a[:], b[:], eps)
}

// Mat4Near is VecNear over the sixteen entries of two matrices.
func Mat4Near(a, b mgl32.Mat4, eps float32) bool {
	return VecNear(a[:], b[:], eps)
}

// ComposeTRS builds a 4x4 matrix from translation, rotation, and scale in T * R * S order.
// All matrices are column-major, matching mgl32.
//
// Parameters:
//   - t: the translation
//   - r: the rotation quaternion (normalized before use)
//   - s: the per-axis scale
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func ComposeTRS(t mgl32.Vec3, r mgl32.Quat, s mgl32.Vec3) mgl32.Mat4 {
	m := r.Normalize().Mat4()
	// Scale the rotation columns in place instead of multiplying by Scale3D.
	for i := 0; i < 3; i++ {
		m[i] *= s[0]
		m[4+i] *= s[1]
		m[8+i] *= s[2]
	}
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

// DecomposeMat4 decomposes a column-major matrix into translation, rotation, and scale.
// This is an approximation that assumes no shear.
//
// Parameters:
//   - m: the matrix to decompose
//
// Returns:
//   - mgl32.Vec3: the translation
//   - mgl32.Quat: the normalized rotation
//   - mgl32.Vec3: the scale
func DecomposeMat4(m mgl32.Mat4) (mgl32.Vec3, mgl32.Quat, mgl32.Vec3) {
	t := mgl32.Vec3{m[12], m[13], m[14]}

	s := mgl32.Vec3{
		mgl32.Vec3{m[0], m[1], m[2]}.Len(),
		mgl32.Vec3{m[4], m[5], m[6]}.Len(),
		mgl32.Vec3{m[8], m[9], m[10]}.Len(),
	}

	// Avoid division by zero
	div := s
	for i := range div {
		if div[i] < 0.0001 {
			div[i] = 1
		}
	}

	r := mgl32.Ident4()
	for i := 0; i < 3; i++ {
		r[i] = m[i] / div[0]
		r[4+i] = m[4+i] / div[1]
		r[8+i] = m[8+i] / div[2]
	}

	return t, mgl32.Mat4ToQuat(r).Normalize(), s
}

// QuatFromXYZW converts an (x, y, z, w) array into an mgl32 quaternion.
//
// Parameters:
//   - v: the quaternion components in x, y, z, w order
//
// Returns:
//   - mgl32.Quat: the quaternion
func QuatFromXYZW(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

// QuatToXYZW converts an mgl32 quaternion into an (x, y, z, w) array.
//
// Parameters:
//   - q: the quaternion
//
// Returns:
//   - [4]float32: the components in x, y, z, w order
func QuatToXYZW(q mgl32.Quat) [4]float32 {
	return [4]float32{q.V[0], q.V[1], q.V[2], q.W}
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	totalBytes := int(size) * len(data)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), totalBytes)
}
