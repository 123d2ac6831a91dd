package scene

import "github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithDrawables adds initial drawables to the scene.
// Drawables without IDs will be assigned new IDs.
//
// Parameters:
//   - drawables: the drawables to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithDrawables(drawables ...Drawable) SceneBuilderOption {
	return func(s *scene) {
		for _, d := range drawables {
			s.add(d)
		}
	}
}

// WithUniformState uses an existing uniform state as the scene's shared state instead of a new one.
//
// Parameters:
//   - state: the shared uniform state
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUniformState(state uniform.UniformState) SceneBuilderOption {
	return func(s *scene) {
		s.state = state
	}
}

// WithComputeWorkers sets the number of worker goroutines used during the parallel
// resolve phase of PrepareFrame. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithCullingDisabled disables frustum culling for the scene. When set to true, every drawable
// gets a snapshot each frame. By default culling is enabled (disabled = false).
//
// Parameters:
//   - disabled: true to disable frustum culling, false to enable it (default)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCullingDisabled(disabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.cullingDisabled = disabled
	}
}
