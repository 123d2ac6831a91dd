package camera

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraDefaults(t *testing.T) {
	c := NewCamera()
	assert.Equal(t, mgl64.Vec3{0, 0, 1}, c.Position())
	assert.Equal(t, mgl64.Vec3{}, c.Target())
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, c.Up())
	require.NotNil(t, c.Perspective())
	assert.InDelta(t, math.Pi/4, c.Perspective().Fov(), 1e-12)
}

func TestViewMatrixMapsEyeToOrigin(t *testing.T) {
	eye := mgl64.Vec3{3, 4, 12}
	c := NewCamera(WithPosition(eye), WithTarget(mgl64.Vec3{0, 1, 0}))

	origin := common.TransformPoint(c.ViewMatrix(), eye)
	assert.InDeltaSlice(t, []float64{0, 0, 0}, origin[:], 1e-9)

	// the target lies straight ahead on -Z
	ahead := common.TransformPoint(c.ViewMatrix(), mgl64.Vec3{0, 1, 0})
	assert.InDelta(t, 0, ahead.X(), 1e-9)
	assert.InDelta(t, 0, ahead.Y(), 1e-9)
	assert.Less(t, ahead.Z(), 0.0)

	assert.True(t, c.ViewMatrix().Mul4(c.InverseViewMatrix()).ApproxEqualThreshold(mgl64.Ident4(), 1e-9))
	assert.Equal(t, eye, c.PositionWorld())
}

func TestSettersRecomputeView(t *testing.T) {
	c := NewCamera()
	before := c.ViewMatrix()

	c.SetPosition(mgl64.Vec3{0, 0, 10})
	assert.NotEqual(t, before, c.ViewMatrix())
	p := common.TransformPoint(c.ViewMatrix(), mgl64.Vec3{})
	assert.InDelta(t, -10, p.Z(), 1e-9)

	c.SetTarget(mgl64.Vec3{0, 0, 20})
	p = common.TransformPoint(c.ViewMatrix(), mgl64.Vec3{0, 0, 20})
	assert.InDelta(t, -10, p.Z(), 1e-9)

	c.SetUp(mgl64.Vec3{1, 0, 0})
	assert.Equal(t, mgl64.Vec3{1, 0, 0}, c.Up())
}

func TestPerspectiveFrustum(t *testing.T) {
	f := NewPerspectiveFrustum(WithFov(math.Pi/3), WithAspect(2), WithNear(0.5), WithFar(50))

	assert.Equal(t, common.Perspective(math.Pi/3, 2, 0.5, 50), f.ProjectionMatrix())
	assert.Equal(t, common.InfinitePerspective(math.Pi/3, 2, 0.5), f.InfiniteProjectionMatrix())
	assert.Equal(t, 2.0, f.Aspect())
	assert.Equal(t, 0.5, f.Near())
	assert.Equal(t, 50.0, f.Far())

	f.SetAspect(1.5)
	assert.Equal(t, common.Perspective(math.Pi/3, 1.5, 0.5, 50), f.ProjectionMatrix())
	f.SetFar(500)
	assert.Equal(t, common.Perspective(math.Pi/3, 1.5, 0.5, 500), f.ProjectionMatrix())
	f.SetNear(1)
	f.SetFov(1)
	assert.Equal(t, common.InfinitePerspective(1, 1.5, 1), f.InfiniteProjectionMatrix())
}

func TestCameraSynchronizesUniformState(t *testing.T) {
	f := NewPerspectiveFrustum(WithAspect(16.0 / 9.0))
	c := NewCamera(WithPosition(mgl64.Vec3{0, 2, 8}), WithFrustum(f))
	s := uniform.NewUniformState()

	s.Update(c)

	assert.Equal(t, c.ViewMatrix(), s.View())
	assert.Equal(t, c.InverseViewMatrix(), s.InverseView())
	assert.Equal(t, c.Position(), s.CameraPosition())
	assert.Equal(t, f.ProjectionMatrix(), s.Projection())
	assert.Equal(t, f.InfiniteProjectionMatrix(), s.InfiniteProjection())
	assert.Same(t, f, c.Perspective())
}

func TestPoseIsConsistentWhileMoving(t *testing.T) {
	c := NewCamera()
	positions := [2]mgl64.Vec3{{0, 0, 10}, {25, 5, -3}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 2000 {
			c.SetPosition(positions[i%2])
		}
	}()

	s := uniform.NewUniformState()
	for range 500 {
		s.Update(c)
		pos := s.CameraPosition()
		assert.Equal(t, common.LookAt(pos, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}), s.View(), "view from another pose than %v", pos)
	}
	<-done

	pose := c.Pose()
	assert.Equal(t, c.ViewMatrix(), pose.View)
	assert.Equal(t, c.InverseViewMatrix(), pose.InverseView)
	assert.Equal(t, c.Position(), pose.Position)
}
