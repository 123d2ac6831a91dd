package uniform

import (
	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Snapshot is a fully resolved, immutable copy of a UniformState. It holds only arrays and structs
// of arrays, so it can be handed to any number of concurrent readers.
type Snapshot struct {
	View               mgl64.Mat4
	InverseView        mgl64.Mat4
	Model              mgl64.Mat4
	Projection         mgl64.Mat4
	InfiniteProjection mgl64.Mat4
	CameraPosition     mgl64.Vec3
	SunPosition        mgl64.Vec3
	Viewport           common.Viewport
	FrameNumber        uint64

	InverseModel                     mgl64.Mat4
	ModelView                        mgl64.Mat4
	ModelViewRelativeToEye           mgl64.Mat4
	InverseModelView                 mgl64.Mat4
	InverseProjection                mgl64.Mat4
	ViewProjection                   mgl64.Mat4
	InverseViewProjection            mgl64.Mat4
	ModelViewProjection              mgl64.Mat4
	InverseModelViewProjection       mgl64.Mat4
	ModelViewProjectionRelativeToEye mgl64.Mat4
	ModelViewInfiniteProjection      mgl64.Mat4
	Normal                           mgl64.Mat3
	InverseNormal                    mgl64.Mat3
	ViewRotation                     mgl64.Mat3
	InverseViewRotation              mgl64.Mat3
	SunDirectionEC                   mgl64.Vec3
	SunDirectionWC                   mgl64.Vec3
	EncodedCameraPositionMCHigh      mgl64.Vec3
	EncodedCameraPositionMCLow       mgl64.Vec3
	ViewportOrthographic             mgl64.Mat4
	ViewportTransformation           mgl64.Mat4
	FrustumPlanes                    common.Frustum
}

func (s *uniformState) Resolve() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	encoded := s.encodedCameraPosition()
	return Snapshot{
		View:               s.view,
		InverseView:        s.inverseView,
		Model:              s.model,
		Projection:         s.projection,
		InfiniteProjection: s.infiniteProjection,
		CameraPosition:     s.cameraPosition,
		SunPosition:        s.sunPosition,
		Viewport:           s.viewport,
		FrameNumber:        s.frameNumber,

		InverseModel:                     s.inverseModel(),
		ModelView:                        s.modelView(),
		ModelViewRelativeToEye:           s.modelViewRelativeToEye(),
		InverseModelView:                 s.inverseModelView(),
		InverseProjection:                s.inverseProjection(),
		ViewProjection:                   s.viewProjection(),
		InverseViewProjection:            s.inverseViewProjection(),
		ModelViewProjection:              s.modelViewProjection(),
		InverseModelViewProjection:       s.inverseModelViewProjection(),
		ModelViewProjectionRelativeToEye: s.modelViewProjectionRelativeToEye(),
		ModelViewInfiniteProjection:      s.modelViewInfiniteProjection(),
		Normal:                           s.normal(),
		InverseNormal:                    s.inverseNormal(),
		ViewRotation:                     s.viewRotation(),
		InverseViewRotation:              s.inverseViewRotation(),
		SunDirectionEC:                   s.sunDirectionEC(),
		SunDirectionWC:                   s.sunDirectionWC(),
		EncodedCameraPositionMCHigh:      encoded.High,
		EncodedCameraPositionMCLow:       encoded.Low,
		ViewportOrthographic:             s.viewportOrthographic(),
		ViewportTransformation:           s.viewportTransformation(),
		FrustumPlanes:                    s.frustumPlanes(),
	}
}
