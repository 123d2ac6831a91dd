package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Mat4ToGPU narrows a full precision 4x4 matrix to shader precision. Column-major order is preserved.
//
// Parameters:
//   - m: the matrix to convert
//
// Returns:
//   - mgl32.Mat4: the float32 matrix
func Mat4ToGPU(m mgl64.Mat4) mgl32.Mat4 {
	var out mgl32.Mat4
	for i := range m {
		out[i] = float32(m[i])
	}
	return out
}

// Mat3ToGPU narrows a 3x3 matrix to the padded column layout WGSL uses for mat3x3<f32>:
// three columns of vec3 each padded to 16 bytes.
//
// Parameters:
//   - m: the matrix to convert
//
// Returns:
//   - [12]float32: columns with a zero in every fourth slot
func Mat3ToGPU(m mgl64.Mat3) [12]float32 {
	var out [12]float32
	for col := range 3 {
		for row := range 3 {
			out[col*4+row] = float32(m[col*3+row])
		}
	}
	return out
}

// Vec3ToGPU narrows a full precision vector to shader precision.
//
// Parameters:
//   - v: the vector to convert
//
// Returns:
//   - mgl32.Vec3: the float32 vector
func Vec3ToGPU(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// TransformPoint applies m to p as a point (w = 1) without a perspective divide.
//
// Parameters:
//   - m: the affine transform
//   - p: the point
//
// Returns:
//   - mgl64.Vec3: the transformed point
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// NormalizeOrZero returns v scaled to unit length, or the zero vector when v has no length.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - mgl64.Vec3: the unit vector or zero
func NormalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Perspective creates a perspective projection matrix for the WebGPU clip volume (depth in [0, 1]).
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl64.Mat4: the projection matrix
func Perspective(fovY, aspect, near, far float64) mgl64.Mat4 {
	f := 1.0 / math.Tan(fovY/2.0)
	var out mgl64.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// InfinitePerspective creates a perspective projection matrix with the far plane at infinity,
// the limit of Perspective as far grows without bound.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//
// Returns:
//   - mgl64.Mat4: the projection matrix
func InfinitePerspective(fovY, aspect, near float64) mgl64.Mat4 {
	f := 1.0 / math.Tan(fovY/2.0)
	var out mgl64.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = -1.0
	out[11] = -1.0
	out[14] = -near
	return out
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
// Degenerate inputs (eye == center, up parallel to the view direction) fall back to unit lengths
// rather than producing NaNs.
//
// Parameters:
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
//
// Returns:
//   - mgl64.Mat4: the view matrix
func LookAt(eye, center, up mgl64.Vec3) mgl64.Mat4 {
	z := eye.Sub(center)
	if z.Len() == 0 {
		z = mgl64.Vec3{0, 0, 1}
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Len() == 0 {
		x = mgl64.Vec3{1, 0, 0}
	}
	x = x.Normalize()

	y := z.Cross(x)

	return mgl64.Mat4{
		x[0], y[0], z[0], 0,
		x[1], y[1], z[1], 0,
		x[2], y[2], z[2], 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// OrthographicOffCenter creates an orthographic projection mapping [left, right]x[bottom, top]x[near, far]
// onto the OpenGL style clip cube, matching the conventions shaders expect for viewport-space quads.
// Depth lands in NDC [-1, 1], unlike Perspective and ExtractFrustumFromMatrix which use the WebGPU
// [0, 1] range. The viewport orthographic uniform is only used for 2D overlays, so its depth is never
// clipped against the perspective range.
//
// Returns:
//   - mgl64.Mat4: the orthographic projection
func OrthographicOffCenter(left, right, bottom, top, near, far float64) mgl64.Mat4 {
	return mgl64.Ortho(left, right, bottom, top, near, far)
}

// ViewportTransformation creates the matrix that maps normalized device coordinates onto the given
// viewport rectangle and depth range. It expects NDC depth in [-1, 1], the range OrthographicOffCenter
// produces; a WebGPU [0, 1] depth from Perspective lands in the upper half of [nearDepth, farDepth].
//
// Parameters:
//   - v: the viewport rectangle in pixels
//   - nearDepth: window depth for NDC z = -1
//   - farDepth: window depth for NDC z = 1
//
// Returns:
//   - mgl64.Mat4: the viewport transformation
func ViewportTransformation(v Viewport, nearDepth, farDepth float64) mgl64.Mat4 {
	halfWidth := v.Width * 0.5
	halfHeight := v.Height * 0.5
	halfDepth := (farDepth - nearDepth) * 0.5

	return mgl64.Mat4{
		halfWidth, 0, 0, 0,
		0, halfHeight, 0, 0,
		0, 0, halfDepth, 0,
		v.X + halfWidth, v.Y + halfHeight, nearDepth + halfDepth, 1,
	}
}

// ZeroTranslation returns m with its translation column (elements 12, 13, 14) cleared.
//
// Parameters:
//   - m: the source matrix
//
// Returns:
//   - mgl64.Mat4: m without translation
func ZeroTranslation(m mgl64.Mat4) mgl64.Mat4 {
	m[12], m[13], m[14] = 0, 0, 0
	return m
}
