package bounded

import "testing"

func TestLoopCapsAttempts(t *testing.T) {
	l := New(3, 0)

	count := 0
	for l.Next() {
		count++
	}
	if count != 3 {
		t.Errorf("loop ran %d times, want 3", count)
	}
	if !l.Exhausted() {
		t.Error("expected loop to be exhausted")
	}
	if l.Attempt() != 3 {
		t.Errorf("Attempt() = %d, want 3", l.Attempt())
	}
}

func TestLoopMinimumOneAttempt(t *testing.T) {
	l := New(0, 0)
	if !l.Next() {
		t.Error("expected at least one attempt")
	}
	if l.Next() {
		t.Error("expected exactly one attempt")
	}
}

func TestStuckDetection(t *testing.T) {
	l := New(10, 3)

	l.Observe("error A")
	l.Observe("error A")
	if l.Stuck() {
		t.Error("two repeats should not be stuck with stuckAfter=3")
	}
	l.Observe("error A")
	if !l.Stuck() {
		t.Error("three identical signals should be stuck")
	}

	// A different signal resets the window.
	l.Observe("error B")
	if l.Stuck() {
		t.Error("changed signal should reset stuck state")
	}
}

func TestStuckDisabled(t *testing.T) {
	l := New(10, 0)
	for i := 0; i < 5; i++ {
		l.Observe("same")
	}
	if l.Stuck() {
		t.Error("stuck detection disabled, should never report stuck")
	}
}

func TestResetStuck(t *testing.T) {
	l := New(10, 2)
	l.Observe("x")
	l.Observe("x")
	if !l.Stuck() {
		t.Fatal("expected stuck")
	}
	l.ResetStuck()
	if l.Stuck() {
		t.Error("expected stuck cleared after reset")
	}
	l.Observe("x")
	if l.Stuck() {
		t.Error("single observation after reset should not be stuck")
	}
}
