package engine

import (
	"sync"
	"time"

	"github.com/vantage-chart/vantage-engine/engine/profiler"
	"github.com/vantage-chart/vantage-engine/engine/renderer"
	"github.com/vantage-chart/vantage-engine/engine/window"
	"github.com/vantage-chart/vantage-engine/resourcepool"
	"github.com/vantage-chart/vantage-engine/scheduler"
)

// engine implements the Engine interface.
// Coordinates the window and the RenderGraph/FrameScheduler.
type engine struct {
	wg sync.WaitGroup

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	r         renderer.Renderer
	pool      *resourcepool.Pool
	viewport  renderer.OrthoProjector
	scheduler scheduler.Scheduler

	updateFunc scheduler.UpdateFunc
	renderFunc scheduler.RenderFunc

	commandChannel  chan Command
	commandHandler  func(Command)
	commandQuit     chan struct{}
	commandQuitOnce sync.Once
}

// Engine is the top-level window+scheduler host. It owns the window and the
// single RenderGraph/FrameScheduler; it does not know about DataStore,
// DataManager, ComputeEngine, or render nodes directly — those are wired
// together by the caller's UpdateFunc/RenderFunc (see SetUpdateFunc,
// SetRenderFunc) so this package stays a thin, reusable host shell, the way
// the teacher's engine.engine stayed ignorant of any particular scene's
// model/material/animator content.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the shared renderer.Renderer, or nil if none is attached.
	//
	// Returns:
	//   - renderer.Renderer: the attached renderer
	Renderer() renderer.Renderer

	// Pool returns the resourcepool.Pool built over the attached renderer's
	// device/queue, or nil if no renderer is attached. DataManager, the
	// compute Engine, and render node construction all draw their GPU
	// buffers, pipelines, and bind-group layouts from this single pool rather
	// than talking to the renderer's device directly.
	//
	// Returns:
	//   - *resourcepool.Pool: the attached pool
	Pool() *resourcepool.Pool

	// Viewport returns the shared orthographic projector driving the chart-to-clip
	// matrix every render node consumes.
	//
	// Returns:
	//   - renderer.OrthoProjector: the attached projector
	Viewport() renderer.OrthoProjector

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTargetFrameTime sets the scheduler's frame-pacing target.
	//
	// Parameters:
	//   - d: target frame duration (e.g. 16ms for 60Hz)
	SetTargetFrameTime(d time.Duration)

	// SetUpdateFunc registers the function invoked on every Updating(kind) transition.
	//
	// Parameters:
	//   - fn: the update side-effect function
	SetUpdateFunc(fn scheduler.UpdateFunc)

	// SetRenderFunc registers the function invoked on every Rendering transition.
	//
	// Parameters:
	//   - fn: the frame recording/submission function
	SetRenderFunc(fn scheduler.RenderFunc)

	// Trigger enqueues an external change event on the scheduler.
	//
	// Parameters:
	//   - kind: the UpdateKind of the trigger
	Trigger(kind scheduler.UpdateKind)

	// State returns the scheduler's current render state.
	//
	// Returns:
	//   - scheduler.State: the current state
	State() scheduler.State

	// Run starts the window message loop and the scheduler loop (blocks until the
	// window closes).
	Run()

	// Quit signals the scheduler to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Commands returns the channel the host control surface (spec.md §6.2)
	// posts set_symbol/set_time_range/set_preset/toggle_metric/
	// set_quality_preset commands to. pointer_event and resize are instead
	// posted through window.Window's own callbacks.
	//
	// Returns:
	//   - chan<- Command: the command input channel
	Commands() chan<- Command

	// SetCommandHandler registers the function invoked for each Command
	// drained from the channel, before the corresponding
	// scheduler.UpdateKind is triggered.
	//
	// Parameters:
	//   - fn: the command side-effect function
	SetCommandHandler(fn func(Command))
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (window, renderer, viewport)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		commandChannel:   make(chan Command, commandQueueSize),
		commandQuit:      make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.r != nil {
				e.r.Resize(width, height)
			}
		})
	}

	if e.r != nil && e.pool == nil {
		e.pool = resourcepool.New(e.r.Device(), e.r.Queue())
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.r
}

func (e *engine) Pool() *resourcepool.Pool {
	return e.pool
}

func (e *engine) Viewport() renderer.OrthoProjector {
	return e.viewport
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetTargetFrameTime(d time.Duration) {
	if e.scheduler != nil {
		e.scheduler.SetTargetFrameTime(d)
	}
}

func (e *engine) SetUpdateFunc(fn scheduler.UpdateFunc) {
	e.updateFunc = fn
}

func (e *engine) SetRenderFunc(fn scheduler.RenderFunc) {
	e.renderFunc = fn
}

func (e *engine) Trigger(kind scheduler.UpdateKind) {
	if e.scheduler != nil {
		e.scheduler.Trigger(kind)
	}
}

func (e *engine) State() scheduler.State {
	if e.scheduler == nil {
		return scheduler.Idle
	}
	return e.scheduler.State()
}

// Run wraps the update/render funcs with profiler ticks, starts the
// scheduler loop, and blocks on the window's message pump — the same
// responsibility split the teacher's Run had (handle() launches goroutines,
// ProcessMessages blocks on the OS event loop), collapsed to a single
// scheduler goroutine instead of the teacher's three.
func (e *engine) Run() {
	update := e.updateFunc
	if update == nil {
		update = func(scheduler.UpdateKind) (bool, error) { return false, nil }
	}
	render := e.renderFunc
	if render == nil {
		render = func() error { return nil }
	}

	e.scheduler = scheduler.NewScheduler(update, func() error {
		err := render()
		if e.profilingEnabled && e.profiler != nil {
			e.profiler.Tick()
		}
		return err
	})

	e.wg.Add(1)
	go e.runCommandLoop()

	e.scheduler.Run()
	e.window.ProcessMessages()
}

// Quit signals the scheduler to stop and the command loop goroutine to exit.
// Safe to call multiple times.
func (e *engine) Quit() {
	if e.scheduler != nil {
		e.scheduler.Quit()
	}
	e.commandQuitOnce.Do(func() {
		close(e.commandQuit)
	})
	e.wg.Wait()
}
