package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-uniforms/engine/scene"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// The tick callback will be called at this rate for camera, drawable and sun updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets the window whose framebuffer size drives every scene's viewport.
// Without a window the engine runs headless and frames are driven through RenderFrame.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given z-index key during engine construction.
// Scenes are prepared in ascending key order each frame.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}

// WithUniformBinding sets the binding index stamped on every staged frame uniform write.
//
// Parameters:
//   - binding: the @binding index of the FrameUniforms buffer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUniformBinding(binding int) EngineBuilderOption {
	return func(e *engine) {
		e.uniformBinding = binding
	}
}

// WithUniformAlignment sets the per-drawable offset alignment of staged writes.
// Use the device's minUniformBufferOffsetAlignment; 0 packs blocks back to back.
//
// Parameters:
//   - alignment: the alignment in bytes (default 256)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUniformAlignment(alignment uint64) EngineBuilderOption {
	return func(e *engine) {
		e.uniformAlignment = alignment
	}
}

// WithUploadCallback registers the function that receives each scene's staged writes per frame.
//
// Parameters:
//   - callback: the upload function
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithUploadCallback(callback UploadCallback) EngineBuilderOption {
	return func(e *engine) {
		e.uploadCallback = callback
	}
}
