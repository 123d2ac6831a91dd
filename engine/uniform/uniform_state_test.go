package uniform

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/precision"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

type testFrustum struct {
	projection mgl64.Mat4
}

func (f testFrustum) ProjectionMatrix() mgl64.Mat4 { return f.projection }

type testInfiniteFrustum struct {
	testFrustum
	infinite mgl64.Mat4
}

func (f testInfiniteFrustum) InfiniteProjectionMatrix() mgl64.Mat4 { return f.infinite }

type testCamera struct {
	view     mgl64.Mat4
	position mgl64.Vec3
	frustum  Frustum
}

func (c testCamera) ViewMatrix() mgl64.Mat4        { return c.view }
func (c testCamera) InverseViewMatrix() mgl64.Mat4 { return c.view.Inv() }
func (c testCamera) PositionWorld() mgl64.Vec3     { return c.position }
func (c testCamera) Frustum() Frustum              { return c.frustum }

func randomAffine(r *rand.Rand) mgl64.Mat4 {
	axis := mgl64.Vec3{r.Float64() - 0.5, r.Float64() - 0.5, r.Float64() - 0.5}
	if axis.Len() < 1e-3 {
		axis = mgl64.Vec3{0, 1, 0}
	}
	return mgl64.Translate3D(r.Float64()*200-100, r.Float64()*200-100, r.Float64()*200-100).
		Mul4(mgl64.HomogRotate3D(r.Float64()*2*math.Pi, axis.Normalize())).
		Mul4(mgl64.Scale3D(0.5+r.Float64(), 0.5+r.Float64(), 0.5+r.Float64()))
}

func randomVec3(r *rand.Rand, scale float64) mgl64.Vec3 {
	return mgl64.Vec3{(r.Float64() - 0.5) * scale, (r.Float64() - 0.5) * scale, (r.Float64() - 0.5) * scale}
}

// primaries mirrors the primary inputs so expected values can be computed in closed form.
type primaries struct {
	view, inverseView, model, projection, infiniteProjection mgl64.Mat4
	camera, sun                                              mgl64.Vec3
	viewport                                                 common.Viewport
}

func assertMatchesFormulas(t *testing.T, s UniformState, p primaries) {
	t.Helper()
	mv := p.view.Mul4(p.model)
	mvRte := mv
	mvRte[12], mvRte[13], mvRte[14] = 0, 0, 0
	vp := p.projection.Mul4(p.view)
	mvp := p.projection.Mul4(mv)

	mat4s := []struct {
		name string
		got  mgl64.Mat4
		want mgl64.Mat4
	}{
		{"inverseModel", s.InverseModel(), p.model.Inv()},
		{"modelView", s.ModelView(), mv},
		{"modelViewRelativeToEye", s.ModelViewRelativeToEye(), mvRte},
		{"inverseModelView", s.InverseModelView(), mv.Inv()},
		{"inverseProjection", s.InverseProjection(), p.projection.Inv()},
		{"viewProjection", s.ViewProjection(), vp},
		{"inverseViewProjection", s.InverseViewProjection(), vp.Inv()},
		{"modelViewProjection", s.ModelViewProjection(), mvp},
		{"inverseModelViewProjection", s.InverseModelViewProjection(), mvp.Inv()},
		{"modelViewProjectionRelativeToEye", s.ModelViewProjectionRelativeToEye(), p.projection.Mul4(mvRte)},
		{"modelViewInfiniteProjection", s.ModelViewInfiniteProjection(), p.infiniteProjection.Mul4(mv)},
		{"viewportOrthographic", s.ViewportOrthographic(), mgl64.Ortho(p.viewport.X, p.viewport.X+p.viewport.Width, p.viewport.Y, p.viewport.Y+p.viewport.Height, 0, 1)},
		{"viewportTransformation", s.ViewportTransformation(), common.ViewportTransformation(p.viewport, 0, 1)},
	}
	for _, m := range mat4s {
		assert.True(t, m.got.ApproxEqualThreshold(m.want, tol), "%s\n got: %v\nwant: %v", m.name, m.got, m.want)
	}

	assert.True(t, s.Normal().ApproxEqualThreshold(mv.Inv().Transpose().Mat3(), tol), "normal")
	assert.True(t, s.InverseNormal().ApproxEqualThreshold(mv.Inv().Mat3(), tol), "inverseNormal")
	assert.True(t, s.ViewRotation().ApproxEqualThreshold(p.view.Mat3(), tol), "viewRotation")
	assert.True(t, s.InverseViewRotation().ApproxEqualThreshold(p.inverseView.Mat3(), tol), "inverseViewRotation")
	assert.True(t, s.SunDirectionEC().ApproxEqualThreshold(p.view.Mat3().Mul3x1(p.sun).Normalize(), tol), "sunDirectionEC")
	assert.True(t, s.SunDirectionWC().ApproxEqualThreshold(p.sun.Normalize(), tol), "sunDirectionWC")

	cameraMC := p.model.Inv().Mul4x1(p.camera.Vec4(1)).Vec3()
	encoded := precision.EncodedVec3{High: s.EncodedCameraPositionMCHigh(), Low: s.EncodedCameraPositionMCLow()}
	assert.True(t, encoded.Decode().ApproxEqualThreshold(cameraMC, tol), "encodedCameraPosition")
}

func TestDefaults(t *testing.T) {
	s := NewUniformState()

	assert.Equal(t, mgl64.Ident4(), s.View())
	assert.Equal(t, mgl64.Ident4(), s.InverseView())
	assert.Equal(t, mgl64.Ident4(), s.Model())
	assert.Equal(t, mgl64.Ident4(), s.Projection())
	assert.Equal(t, mgl64.Ident4(), s.InfiniteProjection())
	assert.Equal(t, uint64(1), s.FrameNumber())
	assert.Equal(t, DefaultSunPosition, s.SunPosition())
	assert.Equal(t, common.Viewport{}, s.Viewport())
	assert.Equal(t, 1.0, s.HighResolutionSnapScale())

	assert.Equal(t, mgl64.Ident4(), s.ModelViewProjection())
	assert.InDeltaSlice(t, []float64{1, 0, 0}, s.SunDirectionWC()[:], tol)
	assert.InDeltaSlice(t, []float64{1, 0, 0}, s.SunDirectionEC()[:], tol)
}

func TestOptions(t *testing.T) {
	sun := mgl64.Vec3{0, 10, 0}
	vp := common.Viewport{Width: 100, Height: 50}
	s := NewUniformState(
		WithView(mgl64.Translate3D(0, 0, -5)),
		WithModel(mgl64.Scale3D(2, 2, 2)),
		WithProjection(common.Perspective(1, 2, 0.1, 10)),
		WithSunPosition(sun),
		WithViewport(vp),
		WithFrameNumber(42),
	)
	assert.Equal(t, uint64(42), s.FrameNumber())
	assert.Equal(t, vp, s.Viewport())
	assert.InDeltaSlice(t, []float64{0, 1, 0}, s.SunDirectionWC()[:], tol)
	assert.Equal(t, mgl64.Translate3D(0, 0, -5).Mul4(mgl64.Scale3D(2, 2, 2)), s.ModelView())
}

func TestConsistencyOverRandomSetterSequences(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	s := NewUniformState()
	p := primaries{
		view: mgl64.Ident4(), inverseView: mgl64.Ident4(), model: mgl64.Ident4(),
		projection: mgl64.Ident4(), infiniteProjection: mgl64.Ident4(),
		sun: DefaultSunPosition,
	}
	// A non-degenerate viewport keeps the orthographic formula finite.
	p.viewport = common.Viewport{Width: 640, Height: 480}
	s.SetViewport(p.viewport)

	for step := range 300 {
		switch r.IntN(8) {
		case 0:
			p.view = randomAffine(r)
			s.SetView(p.view)
		case 1:
			p.inverseView = randomAffine(r)
			s.SetInverseView(p.inverseView)
		case 2:
			p.model = randomAffine(r)
			s.SetModel(p.model)
		case 3:
			p.projection = common.Perspective(0.3+r.Float64(), 0.5+r.Float64(), 0.1+r.Float64(), 100+r.Float64()*1000)
			s.SetProjection(p.projection)
		case 4:
			p.infiniteProjection = common.InfinitePerspective(0.3+r.Float64(), 0.5+r.Float64(), 0.1+r.Float64())
			s.SetInfiniteProjection(p.infiniteProjection)
		case 5:
			p.camera = randomVec3(r, 1e3)
			s.SetCameraPosition(p.camera)
		case 6:
			p.sun = randomVec3(r, 1e8)
			require.NoError(t, s.SetSunPosition(&p.sun))
		case 7:
			p.viewport = common.Viewport{X: float64(r.IntN(100)), Y: float64(r.IntN(100)), Width: float64(1 + r.IntN(1920)), Height: float64(1 + r.IntN(1080))}
			s.SetViewport(p.viewport)
		}
		// Read only every few steps so that several setter calls pile up between reads.
		if step%3 == 0 {
			assertMatchesFormulas(t, s, p)
		}
	}
	assertMatchesFormulas(t, s, p)
}

func TestGetterIsIdempotent(t *testing.T) {
	s := NewUniformState()
	s.SetView(mgl64.LookAtV(mgl64.Vec3{3, 4, 5}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}))
	s.SetModel(mgl64.Translate3D(1, 2, 3))
	s.SetProjection(common.Perspective(1, 1, 0.1, 100))

	first := s.InverseModelViewProjection()
	counts := s.Stats()
	second := s.InverseModelViewProjection()

	assert.Equal(t, first, second)
	assert.Equal(t, counts, s.Stats(), "second read must not recompute")
	assert.Equal(t, uint64(1), counts.RecomputeCount(EntryInverseModelViewProjection))
	assert.Equal(t, uint64(1), counts.RecomputeCount(EntryModelView))
}

func TestSetModelRecomputesOnlyModelDependents(t *testing.T) {
	s := NewUniformState()
	s.SetView(mgl64.Translate3D(0, 0, -10))
	s.SetProjection(common.Perspective(1, 1, 0.1, 100))
	s.Resolve()
	s.ResetStats()

	s.SetModel(mgl64.Translate3D(5, 0, 0))

	s.ViewProjection()
	assert.Zero(t, s.Stats().RecomputeCount(EntryViewProjection))

	s.ModelView()
	assert.Equal(t, uint64(1), s.Stats().RecomputeCount(EntryModelView))
	assert.Equal(t, uint64(1), s.Stats().TotalRecomputes())
}

func TestModelViewOrder(t *testing.T) {
	s := NewUniformState()
	s.SetModel(mgl64.Translate3D(10, 0, 0))
	assert.Equal(t, mgl64.Translate3D(10, 0, 0), s.ModelView())

	// With a rotated view the product order becomes observable.
	rot := mgl64.HomogRotate3DY(math.Pi / 2)
	s.SetView(rot)
	assert.True(t, s.ModelView().ApproxEqualThreshold(rot.Mul4(mgl64.Translate3D(10, 0, 0)), tol))
	assert.False(t, s.ModelView().ApproxEqualThreshold(mgl64.Translate3D(10, 0, 0).Mul4(rot), tol))
}

func TestProjectionInvalidatesCachedInverseViewProjection(t *testing.T) {
	s := NewUniformState()
	require.Equal(t, mgl64.Ident4(), s.InverseViewProjection())

	p := common.Perspective(math.Pi/3, 16.0/9.0, 1, 1000)
	s.SetProjection(p)

	assert.Equal(t, p.Mul4(mgl64.Ident4()).Inv(), s.InverseViewProjection())
	assert.True(t, s.InverseViewProjection().ApproxEqualThreshold(p.Inv(), tol))
}

func TestSetSunPositionRequiresArgument(t *testing.T) {
	s := NewUniformState()
	ec := s.SunDirectionEC()
	wc := s.SunDirectionWC()
	before := s.Stats()

	err := s.SetSunPosition(nil)

	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, DefaultSunPosition, s.SunPosition())
	assert.Equal(t, ec, s.SunDirectionEC())
	assert.Equal(t, wc, s.SunDirectionWC())
	assert.Equal(t, before, s.Stats(), "a rejected call must not invalidate anything")
}

func TestSetSunPositionInvalidatesDirections(t *testing.T) {
	s := NewUniformState()
	s.SetView(mgl64.HomogRotate3DY(math.Pi / 2))
	s.SunDirectionEC()

	sun := mgl64.Vec3{0, 0, 5}
	require.NoError(t, s.SetSunPosition(&sun))

	assert.True(t, s.SunDirectionWC().ApproxEqualThreshold(mgl64.Vec3{0, 0, 1}, tol))
	assert.True(t, s.SunDirectionEC().ApproxEqualThreshold(mgl64.HomogRotate3DY(math.Pi/2).Mat3().Mul3x1(mgl64.Vec3{0, 0, 1}), tol))
}

func TestSameViewportDoesNotInvalidate(t *testing.T) {
	s := NewUniformState()
	v := common.Viewport{X: 0, Y: 0, Width: 1280, Height: 720}

	s.SetViewport(v)
	s.ViewportOrthographic()
	s.ViewportTransformation()

	s.SetViewport(v)
	s.ViewportOrthographic()
	s.ViewportTransformation()

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.RecomputeCount(EntryViewportOrthographic))
	assert.Equal(t, uint64(1), stats.RecomputeCount(EntryViewportTransformation))
	assert.Equal(t, uint64(1), stats.Invalidations[FieldViewport])

	s.SetViewport(common.Viewport{Width: 800, Height: 600})
	s.ViewportOrthographic()
	assert.Equal(t, uint64(2), s.Stats().RecomputeCount(EntryViewportOrthographic))
}

func TestEncodedCameraPositionFarFromOrigin(t *testing.T) {
	s := NewUniformState()
	camera := mgl64.Vec3{6378137.123456, -2345678.987654, 1234567.5}
	s.SetCameraPosition(camera)
	s.SetModel(mgl64.Translate3D(6378000, -2345600, 1234500))

	high := s.EncodedCameraPositionMCHigh()
	low := s.EncodedCameraPositionMCLow()
	local := camera.Sub(mgl64.Vec3{6378000, -2345600, 1234500})

	assert.True(t, high.Add(low).ApproxEqualThreshold(local, 1e-7))
	for i := range 3 {
		assert.Equal(t, high[i], float64(float32(high[i])))
	}
}

func TestFrameNumberHasNoDependents(t *testing.T) {
	s := NewUniformState()
	s.Resolve()
	s.ResetStats()
	s.SetFrameNumber(99)
	s.Resolve()
	assert.Equal(t, uint64(99), s.FrameNumber())
	assert.Zero(t, s.Stats().TotalRecomputes())
}

func TestUpdateSynchronizesCamera(t *testing.T) {
	view := mgl64.LookAtV(mgl64.Vec3{0, 5, 20}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	proj := common.Perspective(1, 1.5, 0.5, 500)
	inf := common.InfinitePerspective(1, 1.5, 0.5)
	cam := testCamera{
		view:     view,
		position: mgl64.Vec3{0, 5, 20},
		frustum:  testInfiniteFrustum{testFrustum: testFrustum{projection: proj}, infinite: inf},
	}

	s := NewUniformState()
	s.Update(cam)

	assert.Equal(t, view, s.View())
	assert.Equal(t, view.Inv(), s.InverseView())
	assert.Equal(t, cam.position, s.CameraPosition())
	assert.Equal(t, proj, s.Projection())
	assert.Equal(t, inf, s.InfiniteProjection())
	assert.True(t, s.ViewProjection().ApproxEqualThreshold(proj.Mul4(view), tol))
}

// poseCamera answers the individual getters with a stale pose and Pose with the current one.
type poseCamera struct {
	testCamera
	pose CameraPose
}

func (c poseCamera) Pose() CameraPose { return c.pose }

func TestUpdatePrefersAtomicPose(t *testing.T) {
	stale := mgl64.Translate3D(1, 2, 3)
	current := mgl64.LookAtV(mgl64.Vec3{0, 0, 50}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	cam := poseCamera{
		testCamera: testCamera{view: stale, position: mgl64.Vec3{9, 9, 9}, frustum: testFrustum{projection: mgl64.Ident4()}},
		pose:       CameraPose{View: current, InverseView: current.Inv(), Position: mgl64.Vec3{0, 0, 50}},
	}

	s := NewUniformState()
	s.Update(cam)

	assert.Equal(t, current, s.View())
	assert.Equal(t, current.Inv(), s.InverseView())
	assert.Equal(t, mgl64.Vec3{0, 0, 50}, s.CameraPosition())
}

func TestUpdateFrustumWithoutInfiniteProjection(t *testing.T) {
	s := NewUniformState()
	inf := common.InfinitePerspective(1, 1, 1)
	s.SetInfiniteProjection(inf)

	proj := common.Perspective(1, 1, 1, 10)
	s.UpdateFrustum(testFrustum{projection: proj})

	assert.Equal(t, proj, s.Projection())
	assert.Equal(t, inf, s.InfiniteProjection(), "a finite-only frustum leaves the infinite projection alone")
}

func TestFrustumPlanesFollowViewProjection(t *testing.T) {
	s := NewUniformState()
	s.SetProjection(common.Perspective(math.Pi/2, 1, 1, 100))
	assert.True(t, s.FrustumPlanes().ContainsSphere(mgl64.Vec3{0, 0, -10}, 1))

	// Turning around puts the same world point behind the camera.
	s.SetView(mgl64.HomogRotate3DY(math.Pi))
	assert.False(t, s.FrustumPlanes().ContainsSphere(mgl64.Vec3{0, 0, -10}, 1))
}

func TestCloneIsIndependent(t *testing.T) {
	s := NewUniformState()
	s.SetModel(mgl64.Translate3D(1, 0, 0))
	s.ModelView()

	c := s.Clone()
	assert.Zero(t, c.Stats().TotalRecomputes())
	assert.Equal(t, s.ModelView(), c.ModelView())
	assert.Zero(t, c.Stats().TotalRecomputes(), "clone carries the cached entries")

	c.SetModel(mgl64.Translate3D(2, 0, 0))
	assert.Equal(t, mgl64.Translate3D(2, 0, 0), c.ModelView())
	assert.Equal(t, mgl64.Translate3D(1, 0, 0), s.ModelView())
}

func TestResolveMatchesGetters(t *testing.T) {
	s := NewUniformState()
	s.SetView(mgl64.LookAtV(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}))
	s.SetModel(mgl64.Translate3D(4, 5, 6))
	s.SetProjection(common.Perspective(1, 1, 0.1, 10))
	s.SetCameraPosition(mgl64.Vec3{1, 2, 3})
	s.SetViewport(common.Viewport{Width: 320, Height: 240})
	s.SetFrameNumber(7)

	snap := s.Resolve()

	assert.Equal(t, s.ModelViewProjection(), snap.ModelViewProjection)
	assert.Equal(t, s.Normal(), snap.Normal)
	assert.Equal(t, s.SunDirectionEC(), snap.SunDirectionEC)
	assert.Equal(t, s.EncodedCameraPositionMCHigh(), snap.EncodedCameraPositionMCHigh)
	assert.Equal(t, s.EncodedCameraPositionMCLow(), snap.EncodedCameraPositionMCLow)
	assert.Equal(t, s.ViewportTransformation(), snap.ViewportTransformation)
	assert.Equal(t, s.FrustumPlanes(), snap.FrustumPlanes)
	assert.Equal(t, uint64(7), snap.FrameNumber)

	// A snapshot does not follow later writes.
	s.SetModel(mgl64.Ident4())
	assert.Equal(t, mgl64.Translate3D(4, 5, 6), snap.Model)
}

func TestValueResolvesEveryName(t *testing.T) {
	s := NewUniformState()
	s.SetModel(mgl64.Translate3D(3, 2, 1))

	names := Names()
	assert.Len(t, names, len(bindings))
	for _, n := range names {
		v, ok := s.Value(n)
		assert.True(t, ok, string(n))
		assert.NotNil(t, v, string(n))
	}

	v, ok := s.Value(NameModelView)
	require.True(t, ok)
	assert.Equal(t, s.ModelView(), v)

	v, ok = s.Value(NameFrameNumber)
	require.True(t, ok)
	assert.Equal(t, uint64(1), v)

	_, ok = s.Value("czm_unknown")
	assert.False(t, ok)
}
