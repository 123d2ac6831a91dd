package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
)

type perspectiveFrustumImpl struct {
	mu *sync.Mutex

	fov    float64
	aspect float64
	near   float64
	far    float64

	projection         mgl64.Mat4
	infiniteProjection mgl64.Mat4
}

// PerspectiveFrustum is a symmetric perspective view volume. It supplies both a finite projection
// and one with the far plane at infinity, in the WebGPU clip convention (depth in [0, 1]).
type PerspectiveFrustum interface {
	uniform.InfiniteFrustum

	// Fov returns the vertical field of view in radians.
	Fov() float64

	// Aspect returns the aspect ratio (width / height).
	Aspect() float64

	// Near returns the near clipping plane distance.
	Near() float64

	// Far returns the far clipping plane distance.
	Far() float64

	// SetFov sets the vertical field of view in radians and recomputes the projections.
	//
	// Parameters:
	//   - fov: field of view in radians
	SetFov(fov float64)

	// SetAspect sets the aspect ratio and recomputes the projections.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float64)

	// SetNear sets the near clipping plane distance and recomputes the projections.
	//
	// Parameters:
	//   - near: near plane distance
	SetNear(near float64)

	// SetFar sets the far clipping plane distance and recomputes the finite projection.
	//
	// Parameters:
	//   - far: far plane distance
	SetFar(far float64)
}

var _ PerspectiveFrustum = &perspectiveFrustumImpl{}

// NewPerspectiveFrustum creates a perspective frustum with a 45 degree field of view, aspect 1,
// near 0.1 and far 100 unless overridden by options.
//
// Parameters:
//   - options: functional options to configure the frustum
//
// Returns:
//   - PerspectiveFrustum: the newly created frustum
func NewPerspectiveFrustum(options ...FrustumBuilderOption) PerspectiveFrustum {
	f := &perspectiveFrustumImpl{
		mu:     &sync.Mutex{},
		fov:    45.0 * (math.Pi / 180.0),
		aspect: 1.0,
		near:   0.1,
		far:    100.0,
	}
	for _, option := range options {
		option(f)
	}
	f.updateMatrices()
	return f
}

func (f *perspectiveFrustumImpl) Fov() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fov
}

func (f *perspectiveFrustumImpl) Aspect() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.aspect
}

func (f *perspectiveFrustumImpl) Near() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.near
}

func (f *perspectiveFrustumImpl) Far() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.far
}

func (f *perspectiveFrustumImpl) ProjectionMatrix() mgl64.Mat4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projection
}

func (f *perspectiveFrustumImpl) InfiniteProjectionMatrix() mgl64.Mat4 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infiniteProjection
}

func (f *perspectiveFrustumImpl) SetFov(fov float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fov = fov
	f.updateMatrices()
}

func (f *perspectiveFrustumImpl) SetAspect(aspect float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aspect = aspect
	f.updateMatrices()
}

func (f *perspectiveFrustumImpl) SetNear(near float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.near = near
	f.updateMatrices()
}

func (f *perspectiveFrustumImpl) SetFar(far float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.far = far
	f.updateMatrices()
}

// updateMatrices recomputes both projections. Caller must hold the mutex.
func (f *perspectiveFrustumImpl) updateMatrices() {
	f.projection = common.Perspective(f.fov, f.aspect, f.near, f.far)
	f.infiniteProjection = common.InfinitePerspective(f.fov, f.aspect, f.near)
}
