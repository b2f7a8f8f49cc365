package common

// Key codes carried by KeyPressed and KeyReleased events.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32 // Spacebar (ASCII)
	KeyA     = 65 // A key (ASCII)
	KeyD     = 68 // D key (ASCII)
	KeyS     = 83 // S key (ASCII)
	KeyW     = 87 // W key (ASCII)
	KeyX     = 88 // X key (ASCII)
	KeyZ     = 90 // Z key (ASCII)

	KeyEsc       = 256 // Escape key (GLFW)
	KeyEnter     = 257 // Enter key (GLFW)
	KeyBackspace = 259 // Backspace key (GLFW)
	KeyRight     = 262 // Right arrow (GLFW)
	KeyLeft      = 263 // Left arrow (GLFW)
	KeyDown      = 264 // Down arrow (GLFW)
	KeyUp        = 265 // Up arrow (GLFW)
)

// Additional non-printable keys
const (
	KeyLeftShift  = 340 // Left Shift (GLFW)
	KeyRightShift = 344 // Right Shift (GLFW)
)

var keyNames = map[uint32]string{
	KeySpace: "Space", KeyA: "A", KeyD: "D", KeyS: "S", KeyW: "W", KeyX: "X", KeyZ: "Z",
	KeyEsc: "Escape", KeyEnter: "Enter", KeyBackspace: "Backspace",
	KeyRight: "Right", KeyLeft: "Left", KeyDown: "Down", KeyUp: "Up",
	KeyLeftShift: "LeftShift", KeyRightShift: "RightShift",
}

// KeyName returns the display name of a key code, or "" if it is not one of the
// codes above.
func KeyName(code uint32) string { return keyNames[code] }

// KeyByName is the inverse of KeyName.
func KeyByName(name string) (uint32, bool) {
	for code, n := range keyNames {
		if n == name {
			return code, true
		}
	}
	return 0, false
}
