package uniform

import (
	"github.com/Carmen-Shannon/oxy-uniforms/common"
	"github.com/Carmen-Shannon/oxy-uniforms/engine/precision"
	"github.com/go-gl/mathgl/mgl64"
)

// derived holds one cached value and whether it may be out of date with its inputs.
// All value types used here are arrays or structs of arrays, so a returned value is always a copy.
type derived[T any] struct {
	value T
	dirty bool
}

// resolve returns the cached value, recomputing it first if the entry is dirty.
// counter is incremented once per recomputation.
func (d *derived[T]) resolve(counter *uint64, compute func() T) T {
	if d.dirty {
		d.value = compute()
		d.dirty = false
		*counter++
	}
	return d.value
}

// cache holds every derived entry of a uniform state.
type cache struct {
	inverseModel                     derived[mgl64.Mat4]
	modelView                        derived[mgl64.Mat4]
	modelViewRelativeToEye           derived[mgl64.Mat4]
	inverseModelView                 derived[mgl64.Mat4]
	inverseProjection                derived[mgl64.Mat4]
	viewProjection                   derived[mgl64.Mat4]
	inverseViewProjection            derived[mgl64.Mat4]
	modelViewProjection              derived[mgl64.Mat4]
	inverseModelViewProjection       derived[mgl64.Mat4]
	modelViewProjectionRelativeToEye derived[mgl64.Mat4]
	modelViewInfiniteProjection      derived[mgl64.Mat4]
	normal                           derived[mgl64.Mat3]
	inverseNormal                    derived[mgl64.Mat3]
	viewRotation                     derived[mgl64.Mat3]
	inverseViewRotation              derived[mgl64.Mat3]
	sunDirectionEC                   derived[mgl64.Vec3]
	sunDirectionWC                   derived[mgl64.Vec3]
	encodedCameraPosition            derived[precision.EncodedVec3]
	viewportOrthographic             derived[mgl64.Mat4]
	viewportTransformation           derived[mgl64.Mat4]
	frustumPlanes                    derived[common.Frustum]
}

// newCache returns a cache with every entry dirty so the first read of each computes it.
func newCache() cache {
	var c cache
	for e := range EntryCount {
		*c.flag(e) = true
	}
	return c
}

// flag returns the dirty flag of entry e.
func (c *cache) flag(e Entry) *bool {
	switch e {
	case EntryInverseModel:
		return &c.inverseModel.dirty
	case EntryModelView:
		return &c.modelView.dirty
	case EntryModelViewRelativeToEye:
		return &c.modelViewRelativeToEye.dirty
	case EntryInverseModelView:
		return &c.inverseModelView.dirty
	case EntryInverseProjection:
		return &c.inverseProjection.dirty
	case EntryViewProjection:
		return &c.viewProjection.dirty
	case EntryInverseViewProjection:
		return &c.inverseViewProjection.dirty
	case EntryModelViewProjection:
		return &c.modelViewProjection.dirty
	case EntryInverseModelViewProjection:
		return &c.inverseModelViewProjection.dirty
	case EntryModelViewProjectionRelativeToEye:
		return &c.modelViewProjectionRelativeToEye.dirty
	case EntryModelViewInfiniteProjection:
		return &c.modelViewInfiniteProjection.dirty
	case EntryNormal:
		return &c.normal.dirty
	case EntryInverseNormal:
		return &c.inverseNormal.dirty
	case EntryViewRotation:
		return &c.viewRotation.dirty
	case EntryInverseViewRotation:
		return &c.inverseViewRotation.dirty
	case EntrySunDirectionEC:
		return &c.sunDirectionEC.dirty
	case EntrySunDirectionWC:
		return &c.sunDirectionWC.dirty
	case EntryEncodedCameraPosition:
		return &c.encodedCameraPosition.dirty
	case EntryViewportOrthographic:
		return &c.viewportOrthographic.dirty
	case EntryViewportTransformation:
		return &c.viewportTransformation.dirty
	case EntryFrustumPlanes:
		return &c.frustumPlanes.dirty
	}
	panic("uniform: unknown entry " + e.String())
}

// invalidate marks every dependent of f dirty.
func (c *cache) invalidate(f Field) {
	for _, e := range dependents[f] {
		*c.flag(e) = true
	}
}
