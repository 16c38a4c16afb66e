// Package scheduler implements the RenderGraph/FrameScheduler: the 3-state
// controller (Idle -> Updating(kind) -> Rendering -> Idle) that ingests
// external change events, resolves what must run, and drives a single GPU
// command-encoder submission per frame.
//
// Its goroutine shape is adapted from the teacher's engine.engine, which
// split a fixed-rate tick loop and an uncapped render loop across two
// goroutines over a z-ordered scene map. vantage-engine has only one state
// machine: a single loop goroutine blocks on a trigger channel and a frame
// pacing ticker, collapsing the teacher's handleEngine/handleRender into one
// select. The quit channel, sync.Once, sync.WaitGroup, and panic recovery in
// the loop goroutine are all kept from that shape.
package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vantage-chart/vantage-engine/vantageerr"
	"github.com/vantage-chart/vantage-engine/vantagelog"
)

// State is the scheduler's coarse render state.
type State int

const (
	// Idle means no work is pending.
	Idle State = iota
	// Updating means the scheduler is executing the side effects of one UpdateKind.
	Updating
	// Rendering means the RenderFunc is recording and submitting the frame's
	// command encoder; the scheduler returns to Idle when that call returns.
	Rendering
	// Failed means a fatal error (DeviceLost, Programmer) occurred; no further
	// frames are produced until the host reinitializes the scheduler.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Updating:
		return "Updating"
	case Rendering:
		return "Rendering"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// UpdateKind classifies the trigger that moved the scheduler out of Idle.
// Priority order when coalescing is Config > Data > View (I6).
type UpdateKind int

const (
	// View is the lowest-priority kind: a pan/zoom or other derived-range recompute.
	View UpdateKind = iota
	// Data is a DataManager fetch completing or being awaited.
	Data
	// Config is the highest-priority kind: a preset or quality change that
	// reconstructs dependent pipelines/bind groups.
	Config
)

func (k UpdateKind) String() string {
	switch k {
	case View:
		return "View"
	case Data:
		return "Data"
	case Config:
		return "Config"
	default:
		return "Unknown"
	}
}

// higherPriority reports whether a outranks b under Config > Data > View.
func higherPriority(a, b UpdateKind) bool {
	return a > b
}

// UpdateFunc performs the side effects for one UpdateKind. It returns true if
// the update produced a visible effect (the scheduler should proceed to
// Rendering) and false if it should return directly to Idle.
type UpdateFunc func(kind UpdateKind) (visible bool, err error)

// RenderFunc records and submits the frame's command encoder. The returned
// error is treated as GpuError/DeviceLost per vantageerr.KindOf.
type RenderFunc func() error

// Scheduler is the 3-state RenderGraph/FrameScheduler controller.
type Scheduler interface {
	// Trigger enqueues an UpdateKind. If the scheduler is Idle it starts a new
	// Updating(kind) transition; otherwise the kind is coalesced into the
	// pending mask (I6) and consumed on the next Idle transition.
	//
	// Parameters:
	//   - kind: the UpdateKind of the external trigger
	Trigger(kind UpdateKind)

	// State returns the current render state.
	//
	// Returns:
	//   - State: the current state
	State() State

	// SetTargetFrameTime sets the frame-pacing target (e.g. ~16ms for 60Hz).
	//
	// Parameters:
	//   - d: the target frame duration
	SetTargetFrameTime(d time.Duration)

	// Run starts the scheduler's loop goroutine and returns immediately; the
	// loop runs until Quit is called.
	Run()

	// Quit signals the loop goroutine to stop and waits for it to exit.
	// Safe to call multiple times.
	Quit()
}

type schedulerImpl struct {
	mu sync.Mutex

	state       State
	pendingMask map[UpdateKind]bool

	update UpdateFunc
	render RenderFunc

	triggerChannel chan struct{}
	quitChannel    chan struct{}
	quitOnce       sync.Once
	wg             sync.WaitGroup

	targetFrameTime time.Duration
	minFrameTime    time.Duration
	overBudgetRun   int
	underBudgetRun  int

	log zerolog.Logger
}

var _ Scheduler = &schedulerImpl{}

// NewScheduler creates a Scheduler in the Idle state with default 60Hz
// pacing (target 16ms, adaptive floor 33ms per spec's example values).
//
// Parameters:
//   - update: side-effect function invoked on every Updating(kind) transition
//   - render: command-encoder recording/submission function invoked on every Rendering transition
//
// Returns:
//   - Scheduler: the newly created scheduler
func NewScheduler(update UpdateFunc, render RenderFunc) Scheduler {
	return &schedulerImpl{
		state:           Idle,
		pendingMask:     make(map[UpdateKind]bool),
		update:          update,
		render:          render,
		triggerChannel:  make(chan struct{}, 1),
		quitChannel:     make(chan struct{}),
		targetFrameTime: 16 * time.Millisecond,
		minFrameTime:    33 * time.Millisecond,
		log:             vantagelog.For("scheduler"),
	}
}

func (s *schedulerImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *schedulerImpl) SetTargetFrameTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.targetFrameTime = d
}

// Trigger enqueues kind and wakes the loop goroutine. Never drops a trigger:
// if the channel already has a pending wakeup, the mask entry alone is
// sufficient since the loop goroutine drains the whole mask each pass.
func (s *schedulerImpl) Trigger(kind UpdateKind) {
	s.mu.Lock()
	s.pendingMask[kind] = true
	s.mu.Unlock()

	select {
	case s.triggerChannel <- struct{}{}:
	default:
	}
}

// highestPending returns the highest-priority kind in the pending mask and
// clears it from the mask. Returns ok=false if the mask is empty.
func (s *schedulerImpl) highestPending() (kind UpdateKind, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pendingMask) == 0 {
		return 0, false
	}

	best := View
	first := true
	for k := range s.pendingMask {
		if first || higherPriority(k, best) {
			best = k
			first = false
		}
	}
	delete(s.pendingMask, best)
	return best, true
}

func (s *schedulerImpl) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *schedulerImpl) Run() {
	s.wg.Add(1)
	go s.loop()
}

func (s *schedulerImpl) Quit() {
	s.quitOnce.Do(func() {
		close(s.quitChannel)
	})
	s.wg.Wait()
}

// loop is the scheduler's single event-driven state machine goroutine. It
// replaces the teacher's two-goroutine tick/render split: one select handles
// the trigger channel, the frame-pacing ticker, and the quit channel.
func (s *schedulerImpl) loop() {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("scheduler loop recovered from panic")
			s.setState(Failed)
		}
	}()

	ticker := time.NewTicker(s.currentTarget())
	defer ticker.Stop()

	for {
		select {
		case <-s.quitChannel:
			return
		case <-s.triggerChannel:
			s.runFrameIfIdle()
		case <-ticker.C:
			s.runFrameIfIdle()
			ticker.Reset(s.currentTarget())
		}
	}
}

func (s *schedulerImpl) currentTarget() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.targetFrameTime
}

// runFrameIfIdle drains the pending mask in priority order (I6), running one
// Updating(kind)->Rendering->Idle cycle per pending kind, and adapts the
// frame-pacing target based on whether the cycle ran over or under budget.
func (s *schedulerImpl) runFrameIfIdle() {
	if s.State() != Idle {
		return
	}

	start := time.Now()

	for {
		kind, ok := s.highestPending()
		if !ok {
			break
		}

		s.setState(Updating)
		visible, err := s.update(kind)
		if err != nil {
			s.handleError(err)
			if s.State() == Failed {
				return
			}
			s.setState(Idle)
			continue
		}
		if !visible {
			s.setState(Idle)
			continue
		}

		s.setState(Rendering)
		if err := s.render(); err != nil {
			s.handleError(err)
			if s.State() == Failed {
				return
			}
		}
		s.setState(Idle)
	}

	s.adaptPacing(time.Since(start))
}

// handleError classifies err and either transitions to Failed (DeviceLost,
// Programmer) or logs and continues (everything else), per spec's
// propagation policy.
func (s *schedulerImpl) handleError(err error) {
	kind := vantageerr.KindOf(err)
	if !vantageerr.Recoverable(err) {
		s.log.Error().Err(err).Str("kind", kind.String()).Msg("fatal scheduler error, entering Failed")
		s.setState(Failed)
		return
	}
	s.log.Warn().Err(err).Str("kind", kind.String()).Msg("recoverable scheduler error")
}

// adaptPacing sets the target frame time to minFrameTime (33ms, the adaptive
// floor) after two consecutive over-budget cycles, and resets it to 16ms after
// three consecutive in-budget cycles; a different target set through
// SetTargetFrameTime is not restored.
func (s *schedulerImpl) adaptPacing(elapsed time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elapsed > s.targetFrameTime {
		s.overBudgetRun++
		s.underBudgetRun = 0
		if s.overBudgetRun >= 2 && s.targetFrameTime < s.minFrameTime {
			s.targetFrameTime = s.minFrameTime
		}
		return
	}

	s.underBudgetRun++
	s.overBudgetRun = 0
	if s.underBudgetRun >= 3 && s.targetFrameTime > 16*time.Millisecond {
		s.targetFrameTime = 16 * time.Millisecond
	}
}
