package engine

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/profiler"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/scene"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/window"
)

// UploadCallback receives the staged frame uniform writes of one scene for one frame.
type UploadCallback func(key int, s scene.Scene, writes []uniform.BufferWrite)

// engine implements the Engine interface.
// Coordinates the tick loop, the frame loop and the window thread.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	uploadCallback UploadCallback

	mu          sync.Mutex
	scenes      map[int]scene.Scene
	frameNumber uint64

	uniformBinding   int
	uniformAlignment uint64

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It orchestrates the tick loop, the frame loop and window management.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the engine's profiler.
	//
	// Returns:
	//   - *profiler.Profiler: the profiler instance
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this to move the camera, drawables or the sun.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called once per frame after every scene is prepared.
	//
	// Parameters:
	//   - callback: function to call each frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetUploadCallback registers the function that receives each scene's staged frame uniform writes.
	// Called once per scene per frame, in ascending key order.
	//
	// Parameters:
	//   - callback: the upload function
	SetUploadCallback(callback UploadCallback)

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// FrameNumber returns the number of the last prepared frame (0 before the first frame).
	//
	// Returns:
	//   - uint64: the frame number
	FrameNumber() uint64

	// RenderFrame prepares a single frame for every scene. Run calls this continuously;
	// it is exported for hosts that drive their own loop.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	RenderFrame(deltaTime float32)

	// Resize applies a new framebuffer size to every scene's viewport.
	// The window resize callback routes here.
	//
	// Parameters:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	Resize(width, height int)

	// AddScene registers a scene at the given z-index key.
	// Scenes are prepared in ascending key order. With a window, the scene takes the
	// current framebuffer as its viewport.
	//
	// Parameters:
	//   - key: the z-index determining order (lower first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Run starts the engine loops and blocks until the window closes.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Verifies the frame uniform block against its WGSL declaration and panics on a mismatch.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, window, scenes, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	if err := uniform.CheckLayout(); err != nil {
		panic(fmt.Sprintf("frame uniform layout: %v", err))
	}

	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		profiler:         profiler.NewProfiler(),
		engineTickRate:   time.Second / 60,
		uniformAlignment: uniform.DefaultUniformAlignment,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(e.Resize)
		e.Resize(e.window.Width(), e.window.Height())
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() {
	if e.window == nil {
		log.Printf("[Engine] no window configured, nothing to run")
		return
	}
	e.running = true
	e.handle()
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the tick and frame goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(2)
	go e.handleEngine()
	go e.handleRender()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) frame loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] render goroutine recovered from panic: %v", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.RenderFrame(dt)

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// sortedScenes returns the registered scenes with their keys in ascending key order.
func (e *engine) sortedScenes() ([]int, []scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	scenes := make([]scene.Scene, len(keys))
	for i, k := range keys {
		scenes[i] = e.scenes[k]
	}
	return keys, scenes
}

func (e *engine) RenderFrame(deltaTime float32) {
	e.mu.Lock()
	e.frameNumber++
	frame := e.frameNumber
	e.mu.Unlock()

	keys, scenes := e.sortedScenes()
	for i, s := range scenes {
		s.PrepareFrame(frame)

		if e.uploadCallback != nil {
			e.uploadCallback(keys[i], s, s.StageWrites(e.uniformBinding, e.uniformAlignment))
		}

		if e.profilingEnabled {
			e.profiler.Record(s.Stats())
		}
	}

	if e.renderCallback != nil {
		e.renderCallback(deltaTime)
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
}

func (e *engine) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		// minimised; keep the last viewport
		return
	}
	v := common.Viewport{Width: float64(width), Height: float64(height)}
	_, scenes := e.sortedScenes()
	for _, s := range scenes {
		s.SetViewport(v)
	}
	log.Printf("[Engine] viewport resized to %dx%d", width, height)
}

func (e *engine) FrameNumber() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameNumber
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetUploadCallback(callback UploadCallback) {
	e.uploadCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	e.scenes[key] = s
	e.mu.Unlock()

	if e.window == nil {
		return
	}
	if v := e.window.Viewport(); v.Width > 0 && v.Height > 0 {
		s.SetViewport(v)
	}
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
