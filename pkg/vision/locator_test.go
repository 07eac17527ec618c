package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeElementLocator struct {
	pt    Point
	found bool
	err   error
	calls int
}

func (f *fakeElementLocator) FindByName(_ context.Context, _ string) (Point, bool, error) {
	f.calls++
	return f.pt, f.found, f.err
}

type fakeScreenLocator struct {
	pt    Point
	found bool
	err   error
	calls int
}

func (f *fakeScreenLocator) FindInScreenshot(_ context.Context, _ string) (Point, bool, error) {
	f.calls++
	return f.pt, f.found, f.err
}

func TestChain_AccessibilityTakesPrecedence(t *testing.T) {
	element := &fakeElementLocator{pt: Point{X: 10, Y: 20}, found: true}
	screen := &fakeScreenLocator{pt: Point{X: 99, Y: 99}, found: true}

	chain := NewChain(element, screen)
	pt, ok := chain.Resolve(context.Background(), "OK Button")

	assert.True(t, ok)
	assert.Equal(t, Point{X: 10, Y: 20}, pt)
	assert.Equal(t, 1, element.calls)
	assert.Equal(t, 0, screen.calls, "vision tier must not be consulted when accessibility resolves")
}

func TestChain_VisionFallback(t *testing.T) {
	element := &fakeElementLocator{found: false}
	screen := &fakeScreenLocator{pt: Point{X: 42, Y: 7}, found: true}

	chain := NewChain(element, screen)
	pt, ok := chain.Resolve(context.Background(), "Save icon")

	assert.True(t, ok)
	assert.Equal(t, Point{X: 42, Y: 7}, pt)
	assert.Equal(t, 1, element.calls)
	assert.Equal(t, 1, screen.calls)
}

func TestChain_BothMiss(t *testing.T) {
	chain := NewChain(&fakeElementLocator{}, &fakeScreenLocator{})

	_, ok := chain.Resolve(context.Background(), "nothing")
	assert.False(t, ok)
}

func TestChain_AccessibilityErrorFallsThrough(t *testing.T) {
	element := &fakeElementLocator{err: errors.New("bridge down")}
	screen := &fakeScreenLocator{pt: Point{X: 1, Y: 2}, found: true}

	chain := NewChain(element, screen)
	pt, ok := chain.Resolve(context.Background(), "target")

	assert.True(t, ok)
	assert.Equal(t, Point{X: 1, Y: 2}, pt)
}

func TestChain_NilTiers(t *testing.T) {
	chain := NewChain(nil, nil)

	_, ok := chain.Resolve(context.Background(), "target")
	assert.False(t, ok)
}
