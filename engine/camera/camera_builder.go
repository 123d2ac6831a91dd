package camera

import "github.com/go-gl/mathgl/mgl64"

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - position: the eye position
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's position
func WithPosition(position mgl64.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = position
	}
}

// WithTarget sets the camera's look-at point.
//
// Parameters:
//   - target: the world-space target
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's target
func WithTarget(target mgl64.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithUp sets the camera's up vector.
//
// Parameters:
//   - up: the up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up mgl64.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFrustum attaches a perspective frustum to the camera.
//
// Parameters:
//   - frustum: the frustum to project through
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's frustum
func WithFrustum(frustum PerspectiveFrustum) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.frustum = frustum
	}
}

type FrustumBuilderOption func(*perspectiveFrustumImpl)

// WithFov sets the vertical field of view in radians.
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - FrustumBuilderOption: a function that sets the field of view
func WithFov(fov float64) FrustumBuilderOption {
	return func(f *perspectiveFrustumImpl) {
		f.fov = fov
	}
}

// WithAspect sets the aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - FrustumBuilderOption: a function that sets the aspect ratio
func WithAspect(aspect float64) FrustumBuilderOption {
	return func(f *perspectiveFrustumImpl) {
		f.aspect = aspect
	}
}

// WithNear sets the near clipping plane distance.
//
// Parameters:
//   - near: near plane distance
//
// Returns:
//   - FrustumBuilderOption: a function that sets the near plane
func WithNear(near float64) FrustumBuilderOption {
	return func(f *perspectiveFrustumImpl) {
		f.near = near
	}
}

// WithFar sets the far clipping plane distance.
//
// Parameters:
//   - far: far plane distance
//
// Returns:
//   - FrustumBuilderOption: functional option to set the far plane
func WithFar(far float64) FrustumBuilderOption {
	return func(f *perspectiveFrustumImpl) {
		f.far = far
	}
}
