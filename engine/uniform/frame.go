package uniform

import "github.com/go-gl/mathgl/mgl64"

// Frustum supplies the projection matrix of a camera's view volume.
type Frustum interface {
	ProjectionMatrix() mgl64.Mat4
}

// InfiniteFrustum is a Frustum that can also project with its far plane at infinity.
// UpdateFrustum checks for it with a type assertion.
type InfiniteFrustum interface {
	Frustum
	InfiniteProjectionMatrix() mgl64.Mat4
}

// Camera supplies the per-frame view transforms and position the state synchronizes with.
type Camera interface {
	ViewMatrix() mgl64.Mat4
	InverseViewMatrix() mgl64.Mat4
	PositionWorld() mgl64.Vec3
	Frustum() Frustum
}

// CameraPose is a camera's view transforms and world position captured together.
type CameraPose struct {
	View        mgl64.Mat4
	InverseView mgl64.Mat4
	Position    mgl64.Vec3
}

// PoseCamera is a Camera that can report its whole pose atomically. Update uses Pose when
// available so a camera moved from another goroutine never contributes two poses to one frame.
type PoseCamera interface {
	Camera
	Pose() CameraPose
}

func (s *uniformState) UpdateFrustum(frustum Frustum) {
	s.SetProjection(frustum.ProjectionMatrix())
	if inf, ok := frustum.(InfiniteFrustum); ok {
		s.SetInfiniteProjection(inf.InfiniteProjectionMatrix())
	}
}

func (s *uniformState) Update(camera Camera) {
	var pose CameraPose
	if pc, ok := camera.(PoseCamera); ok {
		pose = pc.Pose()
	} else {
		pose = CameraPose{
			View:        camera.ViewMatrix(),
			InverseView: camera.InverseViewMatrix(),
			Position:    camera.PositionWorld(),
		}
	}
	s.SetView(pose.View)
	s.SetInverseView(pose.InverseView)
	s.SetCameraPosition(pose.Position)
	s.UpdateFrustum(camera.Frustum())
}
