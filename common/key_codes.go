package common

// Key codes delivered by window key callbacks.
// These values match GLFW key codes, which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyC     = 67 // C key (ASCII)
	KeySpace = 32 // Spacebar (ASCII)
)
