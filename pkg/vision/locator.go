// Package vision provides the element-resolution contracts used to turn a
// named click target into screen coordinates. Two tiers exist: the
// accessibility tree (cheap, exact) and screenshot analysis (expensive,
// approximate). The accessibility tier is authoritative when available;
// the vision tier is strictly a fallback.
package vision

import "context"

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ElementLocator resolves named UI elements through the accessibility tree.
type ElementLocator interface {
	// FindByName returns the center point of the named element, or ok=false
	// when no element matches.
	FindByName(ctx context.Context, name string) (Point, bool, error)
}

// ScreenLocator resolves element descriptions by analyzing a screenshot.
type ScreenLocator interface {
	// FindInScreenshot returns the location matching the description, or
	// ok=false when nothing matches.
	FindInScreenshot(ctx context.Context, description string) (Point, bool, error)
}

// Chain resolves a target through the accessibility tier first and falls back
// to the vision tier only when the accessibility tier yields nothing. Either
// tier may be nil.
type Chain struct {
	element ElementLocator
	screen  ScreenLocator
}

// NewChain creates a locator chain.
func NewChain(element ElementLocator, screen ScreenLocator) *Chain {
	return &Chain{
		element: element,
		screen:  screen,
	}
}

// Resolve finds the named target. Errors from a tier are treated as "not
// found" for that tier so a broken accessibility bridge does not disable the
// vision fallback.
func (c *Chain) Resolve(ctx context.Context, name string) (Point, bool) {
	if c.element != nil {
		if pt, ok, err := c.element.FindByName(ctx, name); err == nil && ok {
			return pt, true
		}
	}

	if c.screen != nil {
		if pt, ok, err := c.screen.FindInScreenshot(ctx, name); err == nil && ok {
			return pt, true
		}
	}

	return Point{}, false
}
