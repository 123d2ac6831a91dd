package scene

import (
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/camera"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
)

// Drawable is one object rendered with its own model transform.
// BoundingRadius is the radius of a sphere around the model-space origin enclosing the geometry;
// zero or less means the drawable is never culled.
type Drawable struct {
	ID             uint64
	Model          mgl64.Mat4
	BoundingRadius float64
}

// Scene owns a camera, a uniform state and a registry of drawables. Each frame, PrepareFrame
// synchronizes the camera into the shared state once and then resolves one uniform snapshot per
// visible drawable on a pool of workers, each working on its own clone of the shared state.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// UniformState returns the shared, per-frame uniform state. Its model is left at whatever the
	// caller last set; per-drawable models are applied to clones only.
	UniformState() uniform.UniformState

	// Add registers a drawable. A zero ID is replaced by the next free ID.
	//
	// Parameters:
	//   - d: the drawable to add
	//
	// Returns:
	//   - uint64: the assigned ID
	Add(d Drawable) uint64

	// Get retrieves a drawable by its ID.
	//
	// Parameters:
	//   - id: the drawable's ID
	//
	// Returns:
	//   - Drawable: the drawable, or the zero value
	//   - bool: true if found
	Get(id uint64) (Drawable, bool)

	// SetModel replaces the model transform of a registered drawable.
	//
	// Parameters:
	//   - id: the drawable's ID
	//   - model: the new model matrix
	//
	// Returns:
	//   - bool: false if no drawable has that ID
	SetModel(id uint64, model mgl64.Mat4) bool

	// Remove removes a drawable by ID.
	//
	// Parameters:
	//   - id: the drawable's ID
	Remove(id uint64)

	// Count returns the number of registered drawables.
	Count() int

	// Clear removes all drawables and the last frame's snapshots.
	Clear()

	// SetSunPosition sets the sun position of the shared state.
	//
	// Parameters:
	//   - position: the world-space sun position; nil is rejected
	//
	// Returns:
	//   - error: wraps uniform.ErrInvalidArgument when position is nil
	SetSunPosition(position *mgl64.Vec3) error

	// SetViewport sets the viewport of the shared state and matches the camera's aspect ratio to it.
	//
	// Parameters:
	//   - v: the viewport rectangle
	SetViewport(v common.Viewport)

	// CullingDisabled returns whether frustum culling is disabled.
	CullingDisabled() bool

	// SetCullingDisabled enables or disables frustum culling of drawables.
	//
	// Parameters:
	//   - disabled: true to resolve every drawable regardless of visibility
	SetCullingDisabled(disabled bool)

	// PrepareFrame runs the write phase for a frame (frame number, camera synchronization) and then
	// resolves a snapshot for every visible drawable in parallel. It returns once all snapshots
	// are ready.
	//
	// Parameters:
	//   - frame: the frame number
	PrepareFrame(frame uint64)

	// FrameSnapshot returns the shared state as resolved by the last PrepareFrame.
	//
	// Returns:
	//   - uniform.Snapshot: the shared snapshot
	FrameSnapshot() uniform.Snapshot

	// Snapshots returns the snapshots of the last frame's visible drawables, ordered by drawable ID.
	//
	// Returns:
	//   - []uniform.Snapshot: one snapshot per visible drawable
	Snapshots() []uniform.Snapshot

	// VisibleIDs returns the IDs of the last frame's visible drawables, in the order of Snapshots.
	//
	// Returns:
	//   - []uint64: the visible drawable IDs
	VisibleIDs() []uint64

	// StageWrites marshals the last frame's snapshots into aligned uniform buffer writes.
	//
	// Parameters:
	//   - binding: the binding index of the uniform buffer
	//   - alignment: the device's uniform buffer offset alignment
	//
	// Returns:
	//   - []uniform.BufferWrite: one write per visible drawable
	StageWrites(binding int, alignment uint64) []uniform.BufferWrite

	// Stats returns the uniform cache activity of the last frame, summed over the shared state and
	// every worker clone.
	//
	// Returns:
	//   - uniform.Stats: the last frame's counters
	Stats() uniform.Stats
}

type scene struct {
	mu *sync.RWMutex

	name            string
	cam             camera.Camera
	state           uniform.UniformState
	drawables       map[uint64]Drawable
	nextID          uint64
	cullingDisabled bool

	frame      uniform.Snapshot
	snapshots  []uniform.Snapshot
	visibleIDs []uint64
	stats      uniform.Stats

	// computePool manages a bounded set of reusable goroutines for the parallel
	// resolve phase of PrepareFrame. Workers persist across frames.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene around the given camera. Panics if cam is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}

	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		cam:            cam,
		drawables:      make(map[uint64]Drawable),
		nextID:         1,
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}
	if s.state == nil {
		s.state = uniform.NewUniformState()
	}

	// Initialize the compute pool after options so WithComputeWorkers can override the default.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)
	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) UniformState() uniform.UniformState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *scene) Add(d Drawable) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(d)
}

// add registers d, assigning an ID if it has none. Caller must hold the write lock.
func (s *scene) add(d Drawable) uint64 {
	if d.ID == 0 {
		for s.drawables[s.nextID].ID != 0 {
			s.nextID++
		}
		d.ID = s.nextID
		s.nextID++
	}
	s.drawables[d.ID] = d
	return d.ID
}

func (s *scene) Get(id uint64) (Drawable, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drawables[id]
	return d, ok
}

func (s *scene) SetModel(id uint64, model mgl64.Mat4) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drawables[id]
	if !ok {
		return false
	}
	d.Model = model
	s.drawables[id] = d
	return true
}

func (s *scene) Remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drawables, id)
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drawables)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.drawables)
	s.snapshots = nil
	s.visibleIDs = nil
}

func (s *scene) SetSunPosition(position *mgl64.Vec3) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.state.SetSunPosition(position); err != nil {
		return fmt.Errorf("scene %s: %w", s.name, err)
	}
	return nil
}

func (s *scene) SetViewport(v common.Viewport) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.state.SetViewport(v)
	if s.cam != nil && v.Height > 0 {
		s.cam.Perspective().SetAspect(v.Aspect())
	}
}

func (s *scene) CullingDisabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cullingDisabled
}

func (s *scene) SetCullingDisabled(disabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cullingDisabled = disabled
}

func (s *scene) PrepareFrame(frame uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Write phase: everything shared by all drawables is set once, before any worker reads.
	s.state.ResetStats()
	s.state.SetFrameNumber(frame)
	if s.cam != nil {
		s.state.Update(s.cam)
	}
	// Resolving here leaves the shared entries clean so every clone inherits them.
	s.frame = s.state.Resolve()

	visible := s.visibleDrawables(s.frame.FrustumPlanes)
	results := make([]uniform.Snapshot, len(visible))

	chunkSize := max((len(visible)+s.computeWorkers-1)/s.computeWorkers, 1)
	chunkStats := make([]uniform.Stats, (len(visible)+chunkSize-1)/chunkSize)

	// A WaitGroup provides per-frame barrier sync; the pool's own idle
	// timeout is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for c := range chunkStats {
		start := c * chunkSize
		end := min(start+chunkSize, len(visible))

		wg.Add(1)
		s.computePool.SubmitTask(worker.Task{
			ID: c,
			Do: func() (any, error) {
				defer wg.Done()
				local := s.state.Clone()
				for i := start; i < end; i++ {
					local.SetModel(visible[i].Model)
					results[i] = local.Resolve()
				}
				chunkStats[c] = local.Stats()
				return nil, nil
			},
		})
	}
	wg.Wait()

	s.snapshots = results
	s.visibleIDs = s.visibleIDs[:0]
	for _, d := range visible {
		s.visibleIDs = append(s.visibleIDs, d.ID)
	}
	s.stats = s.state.Stats()
	for _, cs := range chunkStats {
		s.stats = s.stats.Add(cs)
	}
}

// visibleDrawables returns the drawables that intersect the frustum, ordered by ID.
// Caller must hold the lock.
func (s *scene) visibleDrawables(frustum common.Frustum) []Drawable {
	ids := slices.Sorted(maps.Keys(s.drawables))
	visible := make([]Drawable, 0, len(ids))
	for _, id := range ids {
		d := s.drawables[id]
		if !s.cullingDisabled && d.BoundingRadius > 0 {
			center := common.TransformPoint(d.Model, mgl64.Vec3{})
			if !frustum.ContainsSphere(center, d.BoundingRadius*maxScale(d.Model)) {
				continue
			}
		}
		visible = append(visible, d)
	}
	return visible
}

// maxScale returns the largest axis scale of an affine transform.
func maxScale(m mgl64.Mat4) float64 {
	return max(m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len())
}

func (s *scene) FrameSnapshot() uniform.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *scene) Snapshots() []uniform.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.snapshots)
}

func (s *scene) VisibleIDs() []uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.visibleIDs)
}

func (s *scene) StageWrites(binding int, alignment uint64) []uniform.BufferWrite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uniform.StageWrites(binding, alignment, s.snapshots)
}

func (s *scene) Stats() uniform.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
