package engine

import "github.com/vantage-chart/vantage-engine/scheduler"

// CommandKind classifies one host control surface command (spec.md §6.2).
// pointer_event and resize are handled by window.Window's own callbacks
// (onScroll/onMouseMove/onResize already cover that shape); CommandKind
// instead carries the five command-channel-only inputs that have no
// existing GLFW callback: set_symbol, set_time_range, set_preset,
// toggle_metric, and set_quality_preset.
type CommandKind int

const (
	// SetSymbol requests DataManager switch to a new (exchange, symbol) pair.
	SetSymbol CommandKind = iota
	// SetTimeRange requests DataStore's viewport jump to an explicit [x_lo, x_hi].
	SetTimeRange
	// SetPreset requests a new Preset be loaded, which may trigger a Data fetch.
	SetPreset
	// ToggleMetric flips one Metric's visibility.
	ToggleMetric
	// SetQualityPreset requests a new QualityPreset be applied.
	SetQualityPreset
)

func (k CommandKind) String() string {
	switch k {
	case SetSymbol:
		return "SetSymbol"
	case SetTimeRange:
		return "SetTimeRange"
	case SetPreset:
		return "SetPreset"
	case ToggleMetric:
		return "ToggleMetric"
	case SetQualityPreset:
		return "SetQualityPreset"
	default:
		return "Unknown"
	}
}

// updateKind maps a CommandKind onto the scheduler.UpdateKind it triggers,
// following the Config > Data > View priority spec.md §9/I6 fixes: a preset
// or quality change rebuilds dependent pipelines/bind groups (Config), a
// symbol switch always needs fresh data for the new instrument (Data), and
// a time-range pan or metric toggle only changes what's visible of the
// already-loaded data (View) — per spec.md S2, panning within cached data
// must bump only the View generation, not Data; the View-update handler
// itself escalates to a Data fetch when it finds the new range isn't
// covered by what's cached.
func (k CommandKind) updateKind() scheduler.UpdateKind {
	switch k {
	case SetPreset, SetQualityPreset:
		return scheduler.Config
	case SetSymbol:
		return scheduler.Data
	default:
		return scheduler.View
	}
}

// Command is the tagged union the host control surface posts through
// Engine.Commands(). Only the fields relevant to Kind are populated; the
// rest are zero.
type Command struct {
	Kind CommandKind

	// SetSymbol
	Exchange string
	Symbol   string

	// SetTimeRange
	XLo, XHi float64

	// SetPreset
	PresetName string

	// ToggleMetric
	MetricName string

	// SetQualityPreset
	QualityPresetName string
}

// commandQueueSize bounds the host control surface's command channel; a host
// UI posting faster than the engine drains is a host bug, not something the
// engine silently buffers without limit.
const commandQueueSize = 64

// Commands returns the channel the host UI posts Command values to. Sends
// block once commandQueueSize commands are queued.
//
// Returns:
//   - chan<- Command: the command input channel
func (e *engine) Commands() chan<- Command {
	return e.commandChannel
}

// SetCommandHandler registers the function invoked for each Command drained
// from the channel, before the corresponding scheduler.UpdateKind is
// triggered. Typically wired to the orchestration layer that owns DataStore,
// DataManager, and the active Preset.
//
// Parameters:
//   - fn: the command side-effect function
func (e *engine) SetCommandHandler(fn func(Command)) {
	e.commandHandler = fn
}

// runCommandLoop drains e.commandChannel until commandQuit is closed,
// invoking the registered handler and triggering the scheduler for each
// command. Started by Run, alongside the window message pump and scheduler
// loop.
func (e *engine) runCommandLoop() {
	defer e.wg.Done()
	for {
		select {
		case cmd := <-e.commandChannel:
			if e.commandHandler != nil {
				e.commandHandler(cmd)
			}
			if e.scheduler != nil {
				e.scheduler.Trigger(cmd.Kind.updateKind())
			}
		case <-e.commandQuit:
			return
		}
	}
}
