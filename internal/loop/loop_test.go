package loop

import "testing"

type fakeSleeper struct{ slept []uint32 }

func (f *fakeSleeper) SleepMillis(ms uint32) { f.slept = append(f.slept, ms) }

type fakeCallback struct {
	NopCallback
	nowMs     uint32
	updates   int
	renders   int
	iteration int
	maxIter   int
}

func (f *fakeCallback) OnLoopTop() bool {
	f.iteration++
	return f.iteration <= f.maxIter
}
func (f *fakeCallback) OnUpdate()         { f.updates++ }
func (f *fakeCallback) OnRender()         { f.renders++ }
func (f *fakeCallback) NowMillis() uint32 { f.nowMs += 16; return f.nowMs }

func TestAppClockAdvancesEveryIteration(t *testing.T) {
	cb := &fakeCallback{maxIter: 5}
	l := New(cb, 60, &fakeSleeper{}, nil)
	l.SetNoWait(true)
	l.Run()

	if l.AppFrames() != 4 {
		t.Fatalf("AppFrames() = %d, want 4 (0-indexed over 5 iterations)", l.AppFrames())
	}
}

func TestPauseStopsGameClockNotAppClock(t *testing.T) {
	cb := &fakeCallback{maxIter: 4}
	l := New(cb, 60, &fakeSleeper{}, nil)
	l.SetNoWait(true)
	l.Pause()
	l.Run()

	if l.AppFrames() != 3 {
		t.Fatalf("AppFrames() = %d, want 3", l.AppFrames())
	}
	if l.GameFrames() != -1 {
		t.Fatalf("GameFrames() = %d, want -1 (never advanced while paused)", l.GameFrames())
	}
	if cb.updates != 0 {
		t.Fatalf("expected 0 updates while paused, got %d", cb.updates)
	}
}

func TestSlowMotionAdvancesGameClockEveryIntervalFrames(t *testing.T) {
	cb := &fakeCallback{maxIter: 9}
	l := New(cb, 60, &fakeSleeper{}, nil)
	l.SetNoWait(true)
	l.SetSlowMotion(3, 9)

	for i := 0; i < 9; i++ {
		cb.iteration++
		l.StepFrame()
	}

	// app_clock advances every iteration; game_clock only every 3rd while
	// the slow-motion timer is active, matching the scenario 6 invariant.
	if cb.updates != 3 {
		t.Fatalf("updates = %d, want 3 (9 frames / interval 3)", cb.updates)
	}
	if l.AppFrames() != 8 {
		t.Fatalf("AppFrames() = %d, want 8", l.AppFrames())
	}
}

func TestPlayStepExecutesExactlyOneUpdateThenRePauses(t *testing.T) {
	cb := &fakeCallback{maxIter: 1}
	l := New(cb, 60, &fakeSleeper{}, nil)
	l.SetNoWait(true)
	l.Pause()
	l.PlayStep()

	cb.iteration++
	l.StepFrame()

	if cb.updates != 1 {
		t.Fatalf("updates = %d, want 1", cb.updates)
	}
	if !l.IsPaused() {
		t.Fatalf("expected the loop to re-pause after the single step")
	}
}
