package scene

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/camera"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/uniform"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	cam := camera.NewCamera(
		camera.WithPosition(mgl64.Vec3{0, 0, 10}),
		camera.WithFrustum(camera.NewPerspectiveFrustum(camera.WithFov(math.Pi/2), camera.WithNear(0.1), camera.WithFar(1000))),
	)
	return NewScene("test", cam, options...)
}

func TestAddAssignsIDs(t *testing.T) {
	s := newTestScene(t, WithDrawables(Drawable{Model: mgl64.Ident4()}, Drawable{ID: 2, Model: mgl64.Ident4()}))
	assert.Equal(t, 2, s.Count())

	// ID 1 was assigned by the option, 2 was explicit, so the next free ID is 3.
	id := s.Add(Drawable{Model: mgl64.Translate3D(1, 0, 0)})
	assert.Equal(t, uint64(3), id)

	d, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, mgl64.Translate3D(1, 0, 0), d.Model)

	assert.True(t, s.SetModel(id, mgl64.Ident4()))
	assert.False(t, s.SetModel(99, mgl64.Ident4()))

	s.Remove(id)
	_, ok = s.Get(id)
	assert.False(t, ok)

	s.Clear()
	assert.Zero(t, s.Count())
}

func TestPrepareFrameResolvesPerDrawableSnapshots(t *testing.T) {
	s := newTestScene(t, WithComputeWorkers(3), WithCullingDisabled(true))
	for i := range 10 {
		s.Add(Drawable{Model: mgl64.Translate3D(float64(i), 0, 0)})
	}

	s.PrepareFrame(7)

	snaps := s.Snapshots()
	require.Len(t, snaps, 10)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, s.VisibleIDs())

	view := s.Camera().ViewMatrix()
	for i, snap := range snaps {
		model := mgl64.Translate3D(float64(i), 0, 0)
		assert.Equal(t, model, snap.Model)
		assert.Equal(t, uint64(7), snap.FrameNumber)
		assert.True(t, snap.ModelView.ApproxEqualThreshold(view.Mul4(model), 1e-12))
		assert.Equal(t, s.FrameSnapshot().ViewProjection, snap.ViewProjection)
	}
	assert.Equal(t, uint64(7), s.UniformState().FrameNumber())
}

func TestPrepareFrameSharesViewProjectionWork(t *testing.T) {
	s := newTestScene(t, WithComputeWorkers(2), WithCullingDisabled(true))
	for i := range 8 {
		s.Add(Drawable{Model: mgl64.Translate3D(0, float64(i), 0)})
	}

	s.PrepareFrame(1)
	stats := s.Stats()

	// the shared state resolves viewProjection once; clones inherit it clean
	assert.Equal(t, uint64(1), stats.RecomputeCount(uniform.EntryViewProjection))
	// every drawable recomputes its own modelView; the shared resolve adds one more
	assert.Equal(t, uint64(9), stats.RecomputeCount(uniform.EntryModelView))
}

func TestFrustumCulling(t *testing.T) {
	s := newTestScene(t)
	inFront := s.Add(Drawable{Model: mgl64.Translate3D(0, 0, -20), BoundingRadius: 1})
	behind := s.Add(Drawable{Model: mgl64.Translate3D(0, 0, 50), BoundingRadius: 1})
	always := s.Add(Drawable{Model: mgl64.Translate3D(0, 0, 50)})

	s.PrepareFrame(1)
	ids := s.VisibleIDs()
	assert.Contains(t, ids, inFront)
	assert.NotContains(t, ids, behind)
	assert.Contains(t, ids, always, "drawables without bounds are never culled")
	assert.Len(t, s.Snapshots(), 2)

	s.SetCullingDisabled(true)
	assert.True(t, s.CullingDisabled())
	s.PrepareFrame(2)
	assert.Len(t, s.Snapshots(), 3)
}

func TestScaledBoundsIntersectFrustum(t *testing.T) {
	s := newTestScene(t)
	// centre just behind the camera, but scaled enough to reach in front of the near plane
	id := s.Add(Drawable{Model: mgl64.Translate3D(0, 0, 12).Mul4(mgl64.Scale3D(5, 5, 5)), BoundingRadius: 1})

	s.PrepareFrame(1)
	assert.Contains(t, s.VisibleIDs(), id)
}

func TestSetViewportUpdatesAspect(t *testing.T) {
	s := newTestScene(t)
	v := common.Viewport{Width: 1600, Height: 900}

	s.SetViewport(v)

	assert.Equal(t, v, s.UniformState().Viewport())
	assert.InDelta(t, 16.0/9.0, s.Camera().Perspective().Aspect(), 1e-12)

	s.SetViewport(common.Viewport{Width: 100})
	assert.InDelta(t, 16.0/9.0, s.Camera().Perspective().Aspect(), 1e-12, "zero height keeps the aspect")
}

func TestSetSunPosition(t *testing.T) {
	s := newTestScene(t)
	assert.ErrorIs(t, s.SetSunPosition(nil), uniform.ErrInvalidArgument)

	sun := mgl64.Vec3{0, 1e8, 0}
	require.NoError(t, s.SetSunPosition(&sun))
	assert.Equal(t, sun, s.UniformState().SunPosition())
}

func TestSunPositionIsUniformWithinFrame(t *testing.T) {
	s := newTestScene(t, WithComputeWorkers(4), WithCullingDisabled(true))
	for i := range 32 {
		s.Add(Drawable{Model: mgl64.Translate3D(float64(i), 0, 0)})
	}
	suns := [2]mgl64.Vec3{{1e8, 0, 0}, {0, 0, 1e8}}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 200 {
			assert.NoError(t, s.SetSunPosition(&suns[i%2]))
		}
	}()

	for frame := range uint64(50) {
		s.PrepareFrame(frame + 1)
		want := s.FrameSnapshot().SunDirectionWC
		for _, snap := range s.Snapshots() {
			assert.Equal(t, want, snap.SunDirectionWC)
		}
	}
	<-done
}

func TestStageWritesFollowSnapshots(t *testing.T) {
	s := newTestScene(t, WithCullingDisabled(true))
	s.Add(Drawable{Model: mgl64.Ident4()})
	s.Add(Drawable{Model: mgl64.Ident4()})
	s.PrepareFrame(3)

	writes := s.StageWrites(0, 256)
	require.Len(t, writes, 2)
	assert.Equal(t, uint64(768), writes[1].Offset)
}

func TestPrepareFrameWithoutDrawables(t *testing.T) {
	s := newTestScene(t)
	s.PrepareFrame(1)
	assert.Empty(t, s.Snapshots())
	assert.Equal(t, uint64(1), s.FrameSnapshot().FrameNumber)
}

func TestWithUniformState(t *testing.T) {
	state := uniform.NewUniformState()
	s := newTestScene(t, WithUniformState(state))
	assert.Same(t, state, s.UniformState())
}
