// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// Viewport is a pixel rectangle on the render target.
type Viewport struct {
	// X and Y are the lower-left corner of the rectangle.
	X, Y float64
	// Width and Height are the extent of the rectangle.
	Width, Height float64
}

// Equal reports whether both rectangles have identical components.
//
// Parameters:
//   - other: the rectangle to compare against
//
// Returns:
//   - bool: true if all four components match
func (v Viewport) Equal(other Viewport) bool {
	return v.X == other.X && v.Y == other.Y && v.Width == other.Width && v.Height == other.Height
}

// Aspect returns Width / Height, or 1 for a viewport without height.
func (v Viewport) Aspect() float64 {
	if v.Height == 0 {
		return 1
	}
	return v.Width / v.Height
}

func (v Viewport) String() string {
	return fmt.Sprintf("(%g, %g, %gx%g)", v.X, v.Y, v.Width, v.Height)
}
