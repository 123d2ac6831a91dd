package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
)

type cameraImpl struct {
	mu *sync.Mutex

	position mgl64.Vec3
	target   mgl64.Vec3
	up       mgl64.Vec3

	viewMatrix        mgl64.Mat4
	inverseViewMatrix mgl64.Mat4

	frustum PerspectiveFrustum
}

// Camera is a look-at camera. It holds a world-space position, target and up vector, keeps its
// view and inverse view matrices current, and owns the perspective frustum it projects through.
// It satisfies uniform.Camera so a uniform state can synchronize from it once per frame.
type Camera interface {
	uniform.Camera

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl64.Vec3: the eye position
	Position() mgl64.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl64.Vec3: the world-space target
	Target() mgl64.Vec3

	// Up returns the camera's up vector.
	//
	// Returns:
	//   - mgl64.Vec3: the up vector
	Up() mgl64.Vec3

	// Perspective returns the camera's frustum with its perspective settings exposed.
	//
	// Returns:
	//   - PerspectiveFrustum: the frustum
	Perspective() PerspectiveFrustum

	// SetPosition moves the eye and recomputes the view matrices.
	//
	// Parameters:
	//   - position: the world-space eye position
	SetPosition(position mgl64.Vec3)

	// SetTarget sets the look-at point and recomputes the view matrices.
	//
	// Parameters:
	//   - target: the world-space target
	SetTarget(target mgl64.Vec3)

	// SetUp sets the up vector and recomputes the view matrices.
	//
	// Parameters:
	//   - up: the up vector
	SetUp(up mgl64.Vec3)
}

var _ Camera = &cameraImpl{}
var _ uniform.PoseCamera = &cameraImpl{}

// NewCamera creates a camera at (0, 0, 1) looking at the origin with +Y up and a default
// perspective frustum, unless overridden by options.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		position: mgl64.Vec3{0, 0, 1},
		up:       mgl64.Vec3{0, 1, 0},
	}
	for _, option := range options {
		option(c)
	}
	if c.frustum == nil {
		c.frustum = NewPerspectiveFrustum()
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Position() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

func (c *cameraImpl) PositionWorld() mgl64.Vec3 {
	return c.Position()
}

func (c *cameraImpl) Target() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Up() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) ViewMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) InverseViewMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inverseViewMatrix
}

// Pose returns the view, inverse view and position under one lock.
func (c *cameraImpl) Pose() uniform.CameraPose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uniform.CameraPose{
		View:        c.viewMatrix,
		InverseView: c.inverseViewMatrix,
		Position:    c.position,
	}
}

func (c *cameraImpl) Frustum() uniform.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

func (c *cameraImpl) Perspective() PerspectiveFrustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frustum
}

func (c *cameraImpl) SetPosition(position mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = position
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetUp(up mgl64.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.up = up
	c.updateMatrices()
}

// updateMatrices recalculates the view and inverse view matrices from position, target and up.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = common.LookAt(c.position, c.target, c.up)
	c.inverseViewMatrix = c.viewMatrix.Inv()
}
