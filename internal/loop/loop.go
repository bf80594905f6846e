// Package loop implements the fixed-timestep game loop scheduler: an app
// clock that advances every frame, a game clock gated by pause/slow-motion,
// frame-skip for rendering, and a single callback interface the rest of the
// engine hooks into.
package loop

import (
	"time"

	"github.com/kazikikaziki/misc-sub002/internal/debug"
)

// Callback is the single hook surface the loop drives everything through.
// Every method has a meaningful no-op default via the embedded
// NopCallback, so implementations only need to override what they use.
type Callback interface {
	// OnLoopTop is polled once per iteration; returning false ends Run.
	OnLoopTop() bool
	// OnLoopCanUpdate gates whether this iteration counts toward app_clock
	// at all (not just game_clock); most callbacks always return true.
	OnLoopCanUpdate() bool
	OnFrameStart()
	OnUpdate()
	OnRender()
	OnFrameEnd()
	OnExit()
	// NowMillis returns a monotonic millisecond clock; tests can fake it.
	NowMillis() uint32
}

// NopCallback gives zero-value, always-continue behaviour for every method
// so embedders only implement what they need.
type NopCallback struct{}

func (NopCallback) OnLoopTop() bool       { return true }
func (NopCallback) OnLoopCanUpdate() bool { return true }
func (NopCallback) OnFrameStart()         {}
func (NopCallback) OnUpdate()             {}
func (NopCallback) OnRender()             {}
func (NopCallback) OnFrameEnd()           {}
func (NopCallback) OnExit()               {}
func (NopCallback) NowMillis() uint32     { return 0 }

// Sleeper abstracts the frame-end wait so hosts can use the OS scheduler
// (time.Sleep, the default) or an SDL event-pump-friendly delay.
type Sleeper interface {
	SleepMillis(ms uint32)
}

// StdSleeper sleeps via time.Sleep.
type StdSleeper struct{}

func (StdSleeper) SleepMillis(ms uint32) { time.Sleep(time.Duration(ms) * time.Millisecond) }

// Loop is a fixed-timestep scheduler: app_clock advances every iteration
// that passes OnLoopCanUpdate; game_clock advances only while not paused,
// gated further by the slow-motion interval.
type Loop struct {
	cb      Callback
	sleeper Sleeper
	logger  *debug.Logger

	fpsRequired int
	fpsUpdate   int
	fpsRender   int
	numUpdate   int
	numRender   int
	numSkips    int
	lastClockMs uint32

	appClock  int
	gameClock int

	maxSkipFrames int
	maxSkipMsec   int

	slowMotionTimer    int
	slowMotionInterval int

	paused      bool
	stepOnce    bool
	exitRequest bool
	noWait      bool

	fpsTimeNext    uint32
	fpsTimeTimeout uint32
}

// New creates a loop targeting fps frames per second, driven by cb. sleeper
// may be nil, defaulting to StdSleeper.
func New(cb Callback, fps int, sleeper Sleeper, logger *debug.Logger) *Loop {
	if sleeper == nil {
		sleeper = StdSleeper{}
	}
	return &Loop{
		cb:                 cb,
		sleeper:            sleeper,
		logger:             logger,
		fpsRequired:        fps,
		appClock:           -1,
		gameClock:          -1,
		slowMotionInterval: 2,
		fpsTimeTimeout:     500,
	}
}

func (l *Loop) SetFps(fps int) { l.fpsRequired = fps; l.fpsTimeNext = 0 }

// Fps returns the target fps plus the last-measured update/render rates.
func (l *Loop) Fps() (target, update, render int) { return l.fpsRequired, l.fpsUpdate, l.fpsRender }

func (l *Loop) AppFrames() int  { return l.appClock }
func (l *Loop) GameFrames() int { return l.gameClock }

func (l *Loop) SetFrameSkips(maxFrames, maxMsec int) {
	l.maxSkipFrames = maxFrames
	l.maxSkipMsec = maxMsec
}

// SetSlowMotion starts slow motion, updating only every interval-th
// eligible frame. The timer is set to duration times the interval in effect
// before this call, counted in loop frames; the new interval applies after
// that. interval < 2 leaves the current interval unchanged, matching the
// source's guard.
func (l *Loop) SetSlowMotion(interval, duration int) {
	if duration > 0 {
		l.slowMotionTimer = duration * l.slowMotionInterval
	}
	if interval >= 2 {
		l.slowMotionInterval = interval
	}
}

func (l *Loop) Quit()            { l.exitRequest = true }
func (l *Loop) IsPaused() bool   { return l.paused }
func (l *Loop) Pause()           { l.stepOnce = false; l.paused = true }
func (l *Loop) Play()            { l.stepOnce = false; l.paused = false }
func (l *Loop) SetNoWait(v bool) { l.noWait = v }

// PlayStep either pauses (if running) or, if already paused, executes
// exactly one more game-update frame before re-pausing.
func (l *Loop) PlayStep() {
	if l.paused {
		l.paused = false
		l.stepOnce = true
	} else {
		l.Pause()
	}
}

// Run drives the loop until OnLoopTop returns false or Quit is called.
func (l *Loop) Run() {
	for l.cb.OnLoopTop() {
		l.StepFrame()
		l.endFrame()
		if l.exitRequest {
			break
		}
	}
	l.cb.OnExit()
}

// waitMsec mirrors KLoop::getWaitMsec's clock-skew recovery: if the next
// deadline is more than the timeout window ahead, or more than one frame
// period behind, the schedule resets to "now + one frame period" instead of
// blocking or busy-looping.
func (l *Loop) waitMsec() uint32 {
	delta := uint32(1000 / l.fpsRequired)
	t := l.cb.NowMillis()

	if t+l.fpsTimeTimeout < l.fpsTimeNext {
		l.fpsTimeNext = t + delta
		return 0
	}
	if l.fpsTimeNext+delta < t {
		l.fpsTimeNext = t + delta
		return 0
	}
	if l.fpsTimeNext <= t {
		l.fpsTimeNext += delta
		return 0
	}
	return l.fpsTimeNext - t
}

func (l *Loop) endFrame() {
	t := l.cb.NowMillis()
	if t >= l.lastClockMs+1000 {
		l.lastClockMs = t
		l.fpsUpdate = l.numUpdate
		l.fpsRender = l.numRender
		l.numUpdate = 0
		l.numRender = 0
	}
	if l.exitRequest {
		return
	}
	if !l.noWait {
		for l.waitMsec() > 0 {
			l.sleeper.SleepMillis(1)
		}
	}
}

// shouldRender applies the frame-skip policy: render when caught up, when
// badly behind (so the display doesn't freeze), or once the consecutive
// skip budget is exhausted.
func (l *Loop) shouldRender() bool {
	msecFormal := 1000 * l.numUpdate / l.fpsRequired
	msecActual := int(l.cb.NowMillis()) - int(l.lastClockMs)
	maxSkipMsec := msecFormal * 10

	switch {
	case msecActual <= msecFormal:
		l.numSkips = 0
	case maxSkipMsec <= msecActual:
		l.numSkips = 0
	case l.maxSkipFrames <= l.numSkips:
		l.numSkips = 0
	default:
		l.numSkips++
	}
	if l.numSkips > 0 {
		return false
	}
	l.numRender++
	return true
}

// StepFrame runs exactly one scheduler tick: frame-start, conditional
// update (subject to pause/slow-motion), conditional render, frame-end.
func (l *Loop) StepFrame() {
	if !l.cb.OnLoopCanUpdate() {
		return
	}
	l.appClock++
	l.cb.OnFrameStart()

	stepNext := !l.IsPaused()
	if stepNext && l.slowMotionTimer > 0 {
		stepNext = l.slowMotionTimer%l.slowMotionInterval == 0
		l.slowMotionTimer--
	}
	if stepNext {
		l.gameClock++
		if l.stepOnce {
			l.stepOnce = false
			l.paused = true
		}
		l.cb.OnUpdate()
		l.numUpdate++
	}
	if l.shouldRender() {
		l.cb.OnRender()
	}
	l.cb.OnFrameEnd()
}
