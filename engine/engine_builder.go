package engine

import (
	"github.com/vantage-chart/vantage-engine/engine/renderer"
	"github.com/vantage-chart/vantage-engine/engine/window"
	"github.com/vantage-chart/vantage-engine/resourcepool"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer attaches the shared renderer.Renderer the engine resizes on
// window resize and exposes via Renderer().
//
// Parameters:
//   - r: the renderer to attach
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.r = r
	}
}

// WithResourcePool attaches a pre-built resourcepool.Pool instead of letting
// NewEngine derive one from the attached renderer's device/queue. Tests and
// callers sharing one pool across multiple engines use this; production
// wiring normally omits it and lets NewEngine build the pool automatically.
//
// Parameters:
//   - p: the pool to attach
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithResourcePool(p *resourcepool.Pool) EngineBuilderOption {
	return func(e *engine) {
		e.pool = p
	}
}

// WithViewport attaches the shared OrthoProjector exposed via Viewport().
//
// Parameters:
//   - v: the projector to attach
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithViewport(v renderer.OrthoProjector) EngineBuilderOption {
	return func(e *engine) {
		e.viewport = v
	}
}
