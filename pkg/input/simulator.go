// Package input provides pointer and keyboard simulation for plan steps.
// The dispatcher consumes only the Simulator interface; the default
// implementation drives platform automation tools through the shell so no
// cgo-based input library is required.
package input

import "context"

// ScrollDirection identifies the scroll direction.
type ScrollDirection string

const (
	ScrollUp   ScrollDirection = "up"
	ScrollDown ScrollDirection = "down"
)

// Simulator defines the pointer and keyboard operations plan steps rely on.
type Simulator interface {
	// Click performs a left click at screen coordinates.
	Click(ctx context.Context, x, y int) error

	// MoveTo moves the pointer to screen coordinates.
	MoveTo(ctx context.Context, x, y int) error

	// Scroll scrolls the given number of clicks in the given direction.
	Scroll(ctx context.Context, clicks int, direction ScrollDirection) error

	// TypeText types the text at the current focus.
	TypeText(ctx context.Context, text string) error

	// PressKey presses a single named key (e.g. "enter", "escape").
	PressKey(ctx context.Context, key string) error

	// Hotkey presses the given keys together as a chord (e.g. ctrl+c).
	Hotkey(ctx context.Context, keys ...string) error
}
