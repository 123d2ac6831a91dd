package uniform

import (
	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/go-gl/mathgl/mgl64"
)

// UniformStateBuilderOption is a functional option used to configure a UniformState during construction.
type UniformStateBuilderOption func(*uniformState)

// WithView sets the initial view matrix.
//
// Parameters:
//   - m: the view matrix
//
// Returns:
//   - UniformStateBuilderOption: a function that sets the view matrix
func WithView(m mgl64.Mat4) UniformStateBuilderOption {
	return func(s *uniformState) {
		s.view = m
	}
}

// WithModel sets the initial model matrix.
//
// Parameters:
//   - m: the model matrix
//
// Returns:
//   - UniformStateBuilderOption: a function that sets the model matrix
func WithModel(m mgl64.Mat4) UniformStateBuilderOption {
	return func(s *uniformState) {
		s.model = m
	}
}

// WithProjection sets the initial projection matrix.
//
// Parameters:
//   - m: the projection matrix
//
// Returns:
//   - UniformStateBuilderOption: a function that sets the projection matrix
func WithProjection(m mgl64.Mat4) UniformStateBuilderOption {
	return func(s *uniformState) {
		s.projection = m
	}
}

// WithSunPosition overrides DefaultSunPosition.
//
// Parameters:
//   - position: the sun position in world coordinates
//
// Returns:
//   - UniformStateBuilderOption: a function that sets the sun position
func WithSunPosition(position mgl64.Vec3) UniformStateBuilderOption {
	return func(s *uniformState) {
		s.sunPosition = position
	}
}

// WithViewport sets the initial viewport rectangle.
//
// Parameters:
//   - v: the viewport
//
// Returns:
//   - UniformStateBuilderOption: a function that sets the viewport
func WithViewport(v common.Viewport) UniformStateBuilderOption {
	return func(s *uniformState) {
		s.viewport = v
	}
}

// WithFrameNumber sets the initial frame number (1 by default).
//
// Parameters:
//   - frame: the frame number
//
// Returns:
//   - UniformStateBuilderOption: a function that sets the frame number
func WithFrameNumber(frame uint64) UniformStateBuilderOption {
	return func(s *uniformState) {
		s.frameNumber = frame
	}
}
