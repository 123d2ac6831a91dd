// Package precision splits full-precision world coordinates into a high part that is exactly
// representable in shader (float32) precision and a low residual. Shaders subtract the high parts
// first and the low parts second, which keeps positions far from the origin stable on the GPU.
package precision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// EncodedVec3 is a position split into a float32-representable high part and a small residual.
// High + Low reconstructs the original position.
type EncodedVec3 struct {
	// High holds each component rounded to the nearest float32 value.
	High mgl64.Vec3
	// Low holds the residual value - High for each component.
	Low mgl64.Vec3
}

// EncodeValue splits a single value into its float32-rounded high part and the residual.
//
// Parameters:
//   - value: the full precision value
//
// Values beyond ±math.MaxFloat32 keep a finite high part clamped to ±math.MaxFloat32 so high+low
// still reconstructs them; only the low half overflows once narrowed to float32.
//
// Returns:
//   - high: value rounded to the nearest float32 (round-to-nearest-even)
//   - low: value - high
func EncodeValue(value float64) (high, low float64) {
	switch {
	case value > math.MaxFloat32:
		high = math.MaxFloat32
	case value < -math.MaxFloat32:
		high = -math.MaxFloat32
	default:
		high = float64(float32(value))
	}
	low = value - high
	return high, low
}

// Encode splits every component of a position with EncodeValue.
//
// Parameters:
//   - position: the full precision position
//
// Returns:
//   - EncodedVec3: the high/low pair for the position
func Encode(position mgl64.Vec3) EncodedVec3 {
	var e EncodedVec3
	for i := range 3 {
		e.High[i], e.Low[i] = EncodeValue(position[i])
	}
	return e
}

// Decode reconstructs the full precision position.
//
// Returns:
//   - mgl64.Vec3: High + Low
func (e EncodedVec3) Decode() mgl64.Vec3 {
	return e.High.Add(e.Low)
}

// GPU converts both halves to shader precision. The high half converts exactly.
//
// Returns:
//   - high: the high half as float32
//   - low: the low half rounded to float32
func (e EncodedVec3) GPU() (high, low mgl32.Vec3) {
	for i := range 3 {
		high[i] = float32(e.High[i])
		low[i] = float32(e.Low[i])
	}
	return high, low
}
