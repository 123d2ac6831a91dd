package uniform

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/precision"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidArgument is returned by setters when a required argument is absent.
// It marks a caller bug; retrying the same call cannot succeed.
var ErrInvalidArgument = errors.New("invalid argument")

// wgs84EquatorialRadius is the WGS84 semi-major axis in meters.
const wgs84EquatorialRadius = 6378137.0

// DefaultSunPosition is the sun position a new state starts with until the caller sets one.
var DefaultSunPosition = mgl64.Vec3{2.0 * wgs84EquatorialRadius, 0, 0}

type uniformState struct {
	mu *sync.Mutex

	view               mgl64.Mat4
	inverseView        mgl64.Mat4
	model              mgl64.Mat4
	projection         mgl64.Mat4
	infiniteProjection mgl64.Mat4
	viewport           common.Viewport
	sunPosition        mgl64.Vec3
	cameraPosition     mgl64.Vec3
	frameNumber        uint64

	cache cache
	stats Stats
}

// UniformState is the per-context store of primary render transforms and the values derived from them.
//
// Setters store a primary value and synchronously mark every dependent entry dirty. Derived getters
// recompute only when their entry is dirty, so reading a value any number of times between setter
// calls costs a single computation. Returned matrices and vectors are copies.
//
// A state is owned by one rendering context. Calls are serialized by an internal mutex; callers
// that share a state across goroutines must still finish all writes for a draw before reading its
// uniforms. For concurrent readers, use Resolve to take an immutable Snapshot or Clone to get an
// independent state.
type UniformState interface {
	// SetView sets the world-to-eye matrix.
	//
	// Parameters:
	//   - m: the view matrix
	SetView(m mgl64.Mat4)

	// SetInverseView sets the eye-to-world matrix.
	//
	// Parameters:
	//   - m: the inverse view matrix
	SetInverseView(m mgl64.Mat4)

	// SetModel sets the model-to-world matrix of the object about to be drawn.
	//
	// Parameters:
	//   - m: the model matrix
	SetModel(m mgl64.Mat4)

	// SetProjection sets the eye-to-clip matrix.
	//
	// Parameters:
	//   - m: the projection matrix
	SetProjection(m mgl64.Mat4)

	// SetInfiniteProjection sets the projection matrix with its far plane at infinity.
	//
	// Parameters:
	//   - m: the infinite projection matrix
	SetInfiniteProjection(m mgl64.Mat4)

	// SetCameraPosition sets the camera position in world coordinates.
	//
	// Parameters:
	//   - position: the camera position
	SetCameraPosition(position mgl64.Vec3)

	// SetSunPosition sets the sun position in world coordinates.
	//
	// Parameters:
	//   - position: the sun position; nil is rejected
	//
	// Returns:
	//   - error: wraps ErrInvalidArgument when position is nil, in which case nothing changes
	SetSunPosition(position *mgl64.Vec3) error

	// SetViewport sets the render target rectangle. Setting a rectangle equal to the current one
	// leaves the viewport-derived entries untouched.
	//
	// Parameters:
	//   - v: the viewport rectangle
	SetViewport(v common.Viewport)

	// SetFrameNumber sets the current frame number.
	//
	// Parameters:
	//   - frame: the frame number
	SetFrameNumber(frame uint64)

	// Update synchronizes the camera's view, inverse view, position and frustum into the state.
	// Called once per frame before any uniforms are read.
	//
	// Parameters:
	//   - camera: the camera to synchronize with
	Update(camera Camera)

	// UpdateFrustum synchronizes the frustum's projection (and infinite projection, if it has one).
	//
	// Parameters:
	//   - frustum: the frustum to synchronize with
	UpdateFrustum(frustum Frustum)

	// View returns the world to eye matrix last set by SetView or Update.
	//
	// Returns:
	//   - mgl64.Mat4: the view matrix
	View() mgl64.Mat4

	// InverseView returns the eye to world matrix last set by SetInverseView or Update.
	//
	// Returns:
	//   - mgl64.Mat4: the inverse view matrix
	InverseView() mgl64.Mat4

	// Model returns the model to world matrix.
	//
	// Returns:
	//   - mgl64.Mat4: the model matrix
	Model() mgl64.Mat4

	// Projection returns the finite projection matrix.
	//
	// Returns:
	//   - mgl64.Mat4: the projection matrix
	Projection() mgl64.Mat4

	// InfiniteProjection returns the projection with its far plane at infinity.
	//
	// Returns:
	//   - mgl64.Mat4: the infinite projection, or identity until a frustum provides one
	InfiniteProjection() mgl64.Mat4

	// CameraPosition returns the camera's world-space position.
	//
	// Returns:
	//   - mgl64.Vec3: the camera position
	CameraPosition() mgl64.Vec3

	// SunPosition returns the sun's world-space position.
	//
	// Returns:
	//   - mgl64.Vec3: the sun position
	SunPosition() mgl64.Vec3

	// Viewport returns the viewport rectangle in pixels.
	//
	// Returns:
	//   - common.Viewport: the viewport
	Viewport() common.Viewport

	// FrameNumber returns the frame counter.
	//
	// Returns:
	//   - uint64: the frame number
	FrameNumber() uint64

	// InverseModel returns inverse(model).
	InverseModel() mgl64.Mat4
	// ModelView returns view * model.
	ModelView() mgl64.Mat4
	// ModelViewRelativeToEye returns ModelView with its translation removed, for positions already
	// expressed relative to the eye.
	ModelViewRelativeToEye() mgl64.Mat4
	// InverseModelView returns inverse(view * model).
	InverseModelView() mgl64.Mat4
	// InverseProjection returns inverse(projection).
	InverseProjection() mgl64.Mat4
	// ViewProjection returns projection * view.
	ViewProjection() mgl64.Mat4
	// InverseViewProjection returns inverse(projection * view).
	InverseViewProjection() mgl64.Mat4
	// ModelViewProjection returns projection * view * model.
	ModelViewProjection() mgl64.Mat4
	// InverseModelViewProjection returns inverse(projection * view * model).
	InverseModelViewProjection() mgl64.Mat4
	// ModelViewProjectionRelativeToEye returns projection * ModelViewRelativeToEye.
	ModelViewProjectionRelativeToEye() mgl64.Mat4
	// ModelViewInfiniteProjection returns infiniteProjection * view * model.
	ModelViewInfiniteProjection() mgl64.Mat4
	// Normal returns the upper 3x3 of transpose(inverse(view * model)).
	Normal() mgl64.Mat3
	// InverseNormal returns the upper 3x3 of inverse(view * model).
	InverseNormal() mgl64.Mat3
	// ViewRotation returns the upper 3x3 of the view matrix.
	ViewRotation() mgl64.Mat3
	// InverseViewRotation returns the upper 3x3 of the inverse view matrix.
	InverseViewRotation() mgl64.Mat3
	// SunDirectionEC returns the unit direction to the sun in eye coordinates.
	SunDirectionEC() mgl64.Vec3
	// SunDirectionWC returns the unit direction to the sun in world coordinates.
	SunDirectionWC() mgl64.Vec3
	// EncodedCameraPositionMCHigh returns the high half of the camera position in model coordinates.
	EncodedCameraPositionMCHigh() mgl64.Vec3
	// EncodedCameraPositionMCLow returns the low half of the camera position in model coordinates.
	EncodedCameraPositionMCLow() mgl64.Vec3
	// ViewportOrthographic returns the orthographic projection of the viewport rectangle, depth [0, 1].
	ViewportOrthographic() mgl64.Mat4
	// ViewportTransformation returns the NDC-to-window transform of the viewport, depth [0, 1].
	ViewportTransformation() mgl64.Mat4
	// FrustumPlanes returns the culling planes of the current view-projection.
	FrustumPlanes() common.Frustum
	// HighResolutionSnapScale returns the scale applied to snapped screen-space values. Always 1.
	HighResolutionSnapScale() float64

	// Value resolves a uniform by its shader-facing name.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - any: the value returned by the name's getter
	//   - bool: false if the name is not part of the binding table
	Value(name Name) (any, bool)

	// Resolve brings every entry up to date and returns an immutable copy of the whole state.
	//
	// Returns:
	//   - Snapshot: all primary and derived values
	Resolve() Snapshot

	// Clone returns an independent state with the same primary values, cached entries and dirty flags.
	// Recomputation counters start at zero.
	//
	// Returns:
	//   - UniformState: the copy
	Clone() UniformState

	// Stats returns the recomputation and invalidation counters accumulated so far.
	//
	// Returns:
	//   - Stats: the counters
	Stats() Stats

	// ResetStats zeroes the counters.
	ResetStats()
}

var _ UniformState = &uniformState{}

// NewUniformState creates a state with identity matrices, the default sun position, frame number 1
// and every derived entry dirty.
//
// Parameters:
//   - options: functional options to configure the initial primary values
//
// Returns:
//   - UniformState: the newly created state
func NewUniformState(options ...UniformStateBuilderOption) UniformState {
	s := &uniformState{
		mu:                 &sync.Mutex{},
		view:               mgl64.Ident4(),
		inverseView:        mgl64.Ident4(),
		model:              mgl64.Ident4(),
		projection:         mgl64.Ident4(),
		infiniteProjection: mgl64.Ident4(),
		sunPosition:        DefaultSunPosition,
		frameNumber:        1,
		cache:              newCache(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// set stores nothing itself; it records the change of f and marks its dependents dirty.
// Caller must hold the mutex.
func (s *uniformState) set(f Field) {
	s.cache.invalidate(f)
	s.stats.Invalidations[f]++
}

func (s *uniformState) SetView(m mgl64.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = m
	s.set(FieldView)
}

func (s *uniformState) SetInverseView(m mgl64.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inverseView = m
	s.set(FieldInverseView)
}

func (s *uniformState) SetModel(m mgl64.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	s.set(FieldModel)
}

func (s *uniformState) SetProjection(m mgl64.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projection = m
	s.set(FieldProjection)
}

func (s *uniformState) SetInfiniteProjection(m mgl64.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.infiniteProjection = m
	s.set(FieldInfiniteProjection)
}

func (s *uniformState) SetCameraPosition(position mgl64.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameraPosition = position
	s.set(FieldCameraPosition)
}

func (s *uniformState) SetSunPosition(position *mgl64.Vec3) error {
	if position == nil {
		return fmt.Errorf("sun position is required: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sunPosition = *position
	s.set(FieldSunPosition)
	return nil
}

func (s *uniformState) SetViewport(v common.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.Equal(s.viewport) {
		return
	}
	s.viewport = v
	s.set(FieldViewport)
}

func (s *uniformState) SetFrameNumber(frame uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameNumber = frame
	s.set(FieldFrameNumber)
}

func (s *uniformState) View() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *uniformState) InverseView() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseView
}

func (s *uniformState) Model() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *uniformState) Projection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projection
}

func (s *uniformState) InfiniteProjection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infiniteProjection
}

func (s *uniformState) CameraPosition() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cameraPosition
}

func (s *uniformState) SunPosition() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sunPosition
}

func (s *uniformState) Viewport() common.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

func (s *uniformState) FrameNumber() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameNumber
}

func (s *uniformState) InverseModel() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseModel()
}

func (s *uniformState) ModelView() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelView()
}

func (s *uniformState) ModelViewRelativeToEye() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelViewRelativeToEye()
}

func (s *uniformState) InverseModelView() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseModelView()
}

func (s *uniformState) InverseProjection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseProjection()
}

func (s *uniformState) ViewProjection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewProjection()
}

func (s *uniformState) InverseViewProjection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseViewProjection()
}

func (s *uniformState) ModelViewProjection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelViewProjection()
}

func (s *uniformState) InverseModelViewProjection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseModelViewProjection()
}

func (s *uniformState) ModelViewProjectionRelativeToEye() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelViewProjectionRelativeToEye()
}

func (s *uniformState) ModelViewInfiniteProjection() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelViewInfiniteProjection()
}

func (s *uniformState) Normal() mgl64.Mat3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.normal()
}

func (s *uniformState) InverseNormal() mgl64.Mat3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseNormal()
}

func (s *uniformState) ViewRotation() mgl64.Mat3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewRotation()
}

func (s *uniformState) InverseViewRotation() mgl64.Mat3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverseViewRotation()
}

func (s *uniformState) SunDirectionEC() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sunDirectionEC()
}

func (s *uniformState) SunDirectionWC() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sunDirectionWC()
}

func (s *uniformState) EncodedCameraPositionMCHigh() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encodedCameraPosition().High
}

func (s *uniformState) EncodedCameraPositionMCLow() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.encodedCameraPosition().Low
}

func (s *uniformState) ViewportOrthographic() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewportOrthographic()
}

func (s *uniformState) ViewportTransformation() mgl64.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewportTransformation()
}

func (s *uniformState) FrustumPlanes() common.Frustum {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frustumPlanes()
}

func (s *uniformState) HighResolutionSnapScale() float64 {
	return 1.0
}

func (s *uniformState) Clone() UniformState {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s
	c.mu = &sync.Mutex{}
	c.stats = Stats{}
	return &c
}

func (s *uniformState) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *uniformState) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = Stats{}
}

// The functions below are the ensure-fresh accessors behind the exported getters.
// Each reads its derived inputs through the matching accessor, never through the cache directly.
// Caller must hold the mutex.

func (s *uniformState) inverseModel() mgl64.Mat4 {
	return s.cache.inverseModel.resolve(s.stats.counter(EntryInverseModel), func() mgl64.Mat4 {
		return s.model.Inv()
	})
}

func (s *uniformState) modelView() mgl64.Mat4 {
	return s.cache.modelView.resolve(s.stats.counter(EntryModelView), func() mgl64.Mat4 {
		return s.view.Mul4(s.model)
	})
}

func (s *uniformState) modelViewRelativeToEye() mgl64.Mat4 {
	return s.cache.modelViewRelativeToEye.resolve(s.stats.counter(EntryModelViewRelativeToEye), func() mgl64.Mat4 {
		return common.ZeroTranslation(s.modelView())
	})
}

func (s *uniformState) inverseModelView() mgl64.Mat4 {
	return s.cache.inverseModelView.resolve(s.stats.counter(EntryInverseModelView), func() mgl64.Mat4 {
		return s.modelView().Inv()
	})
}

func (s *uniformState) inverseProjection() mgl64.Mat4 {
	return s.cache.inverseProjection.resolve(s.stats.counter(EntryInverseProjection), func() mgl64.Mat4 {
		return s.projection.Inv()
	})
}

func (s *uniformState) viewProjection() mgl64.Mat4 {
	return s.cache.viewProjection.resolve(s.stats.counter(EntryViewProjection), func() mgl64.Mat4 {
		return s.projection.Mul4(s.view)
	})
}

func (s *uniformState) inverseViewProjection() mgl64.Mat4 {
	return s.cache.inverseViewProjection.resolve(s.stats.counter(EntryInverseViewProjection), func() mgl64.Mat4 {
		return s.viewProjection().Inv()
	})
}

func (s *uniformState) modelViewProjection() mgl64.Mat4 {
	return s.cache.modelViewProjection.resolve(s.stats.counter(EntryModelViewProjection), func() mgl64.Mat4 {
		return s.projection.Mul4(s.modelView())
	})
}

func (s *uniformState) inverseModelViewProjection() mgl64.Mat4 {
	return s.cache.inverseModelViewProjection.resolve(s.stats.counter(EntryInverseModelViewProjection), func() mgl64.Mat4 {
		return s.modelViewProjection().Inv()
	})
}

func (s *uniformState) modelViewProjectionRelativeToEye() mgl64.Mat4 {
	return s.cache.modelViewProjectionRelativeToEye.resolve(s.stats.counter(EntryModelViewProjectionRelativeToEye), func() mgl64.Mat4 {
		return s.projection.Mul4(s.modelViewRelativeToEye())
	})
}

func (s *uniformState) modelViewInfiniteProjection() mgl64.Mat4 {
	return s.cache.modelViewInfiniteProjection.resolve(s.stats.counter(EntryModelViewInfiniteProjection), func() mgl64.Mat4 {
		return s.infiniteProjection.Mul4(s.modelView())
	})
}

func (s *uniformState) normal() mgl64.Mat3 {
	return s.cache.normal.resolve(s.stats.counter(EntryNormal), func() mgl64.Mat3 {
		return s.inverseModelView().Transpose().Mat3()
	})
}

func (s *uniformState) inverseNormal() mgl64.Mat3 {
	return s.cache.inverseNormal.resolve(s.stats.counter(EntryInverseNormal), func() mgl64.Mat3 {
		return s.inverseModelView().Mat3()
	})
}

func (s *uniformState) viewRotation() mgl64.Mat3 {
	return s.cache.viewRotation.resolve(s.stats.counter(EntryViewRotation), func() mgl64.Mat3 {
		return s.view.Mat3()
	})
}

func (s *uniformState) inverseViewRotation() mgl64.Mat3 {
	return s.cache.inverseViewRotation.resolve(s.stats.counter(EntryInverseViewRotation), func() mgl64.Mat3 {
		return s.inverseView.Mat3()
	})
}

func (s *uniformState) sunDirectionEC() mgl64.Vec3 {
	return s.cache.sunDirectionEC.resolve(s.stats.counter(EntrySunDirectionEC), func() mgl64.Vec3 {
		return common.NormalizeOrZero(s.viewRotation().Mul3x1(s.sunPosition))
	})
}

func (s *uniformState) sunDirectionWC() mgl64.Vec3 {
	return s.cache.sunDirectionWC.resolve(s.stats.counter(EntrySunDirectionWC), func() mgl64.Vec3 {
		return common.NormalizeOrZero(s.sunPosition)
	})
}

func (s *uniformState) encodedCameraPosition() precision.EncodedVec3 {
	return s.cache.encodedCameraPosition.resolve(s.stats.counter(EntryEncodedCameraPosition), func() precision.EncodedVec3 {
		return precision.Encode(common.TransformPoint(s.inverseModel(), s.cameraPosition))
	})
}

func (s *uniformState) viewportOrthographic() mgl64.Mat4 {
	return s.cache.viewportOrthographic.resolve(s.stats.counter(EntryViewportOrthographic), func() mgl64.Mat4 {
		v := s.viewport
		return common.OrthographicOffCenter(v.X, v.X+v.Width, v.Y, v.Y+v.Height, 0, 1)
	})
}

func (s *uniformState) viewportTransformation() mgl64.Mat4 {
	return s.cache.viewportTransformation.resolve(s.stats.counter(EntryViewportTransformation), func() mgl64.Mat4 {
		return common.ViewportTransformation(s.viewport, 0, 1)
	})
}

func (s *uniformState) frustumPlanes() common.Frustum {
	return s.cache.frustumPlanes.resolve(s.stats.counter(EntryFrustumPlanes), func() common.Frustum {
		return common.ExtractFrustumFromMatrix(s.viewProjection())
	})
}
