package circuitbreaker

import (
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	cb := New(Config{})

	if cb.threshold != 5 {
		t.Errorf("Expected default threshold 5, got %d", cb.threshold)
	}
	if cb.cooldown != 5*time.Minute {
		t.Errorf("Expected default cooldown 5m, got %v", cb.cooldown)
	}
	if cb.halfOpenTimeout != 30*time.Second {
		t.Errorf("Expected default halfOpenTimeout 30s, got %v", cb.halfOpenTimeout)
	}
	if cb.name != "default" {
		t.Errorf("Expected default name 'default', got %q", cb.name)
	}
	if cb.state != StateClosed {
		t.Errorf("Expected initial state CLOSED, got %s", cb.state)
	}
}

func TestOpensAfterThreshold(t *testing.T) {
	cb := New(Config{Name: "netease", Threshold: 3, Cooldown: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != StateClosed {
		t.Error("Expected CLOSED below threshold")
	}
	if !cb.Allow() {
		t.Error("Expected Allow() true in CLOSED state")
	}

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after 3 failures, got %s", cb.State())
	}
	if cb.Allow() {
		t.Error("Expected Allow() false in OPEN state")
	}
}

func TestSuccessResetsFailures(t *testing.T) {
	cb := New(Config{Threshold: 3, Cooldown: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.Failures() != 2 {
		t.Errorf("Expected 2 failures, got %d", cb.Failures())
	}

	cb.RecordSuccess()
	if cb.Failures() != 0 {
		t.Errorf("Expected 0 failures after success, got %d", cb.Failures())
	}
}

func TestHalfOpenProbe(t *testing.T) {
	cb := New(Config{Threshold: 2, Cooldown: 50 * time.Millisecond})

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("Expected OPEN state, got %s", cb.State())
	}

	time.Sleep(60 * time.Millisecond)

	// First call after cooldown becomes the probe
	if !cb.Allow() {
		t.Error("Expected Allow() true after cooldown")
	}
	if !cb.IsHalfOpen() {
		t.Errorf("Expected HALF-OPEN state, got %s", cb.State())
	}

	// Only one probe at a time
	if cb.Allow() {
		t.Error("Expected second Allow() in HALF-OPEN to be blocked")
	}

	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after probe success, got %s", cb.State())
	}
}

func TestHalfOpenProbeFailureReopens(t *testing.T) {
	cb := New(Config{Threshold: 2, Cooldown: 50 * time.Millisecond})

	cb.RecordFailure()
	cb.RecordFailure()
	time.Sleep(60 * time.Millisecond)
	cb.Allow()

	if cb.State() != StateHalfOpen {
		t.Fatalf("Expected HALF-OPEN state, got %s", cb.State())
	}

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after probe failure, got %s", cb.State())
	}
}

func TestHalfOpenTimeoutReopens(t *testing.T) {
	cb := New(Config{
		Threshold:       2,
		Cooldown:        50 * time.Millisecond,
		HalfOpenTimeout: 100 * time.Millisecond,
	})

	cb.RecordFailure()
	cb.RecordFailure()
	time.Sleep(60 * time.Millisecond)
	cb.Allow()

	if cb.State() != StateHalfOpen {
		t.Fatalf("Expected HALF-OPEN state, got %s", cb.State())
	}

	time.Sleep(110 * time.Millisecond)

	if cb.Allow() {
		t.Error("Expected Allow() false after half-open timeout")
	}
	if cb.State() != StateOpen {
		t.Errorf("Expected OPEN after half-open timeout, got %s", cb.State())
	}
}

func TestReset(t *testing.T) {
	cb := New(Config{Threshold: 2, Cooldown: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()
	if !cb.IsOpen() {
		t.Fatal("Expected circuit to be open")
	}

	cb.Reset()

	if cb.State() != StateClosed {
		t.Errorf("Expected CLOSED after reset, got %s", cb.State())
	}
	if cb.Failures() != 0 {
		t.Errorf("Expected 0 failures after reset, got %d", cb.Failures())
	}
	if !cb.Allow() {
		t.Error("Expected Allow() true after reset")
	}
}

func TestTimeUntilRetry(t *testing.T) {
	cb := New(Config{Threshold: 2, Cooldown: 100 * time.Millisecond})

	if cb.TimeUntilRetry() != 0 {
		t.Errorf("Expected 0 in CLOSED state, got %v", cb.TimeUntilRetry())
	}

	cb.RecordFailure()
	cb.RecordFailure()

	remaining := cb.TimeUntilRetry()
	if remaining <= 0 || remaining > 100*time.Millisecond {
		t.Errorf("Expected remaining cooldown, got %v", remaining)
	}

	time.Sleep(110 * time.Millisecond)
	if cb.TimeUntilRetry() != 0 {
		t.Errorf("Expected 0 after cooldown, got %v", cb.TimeUntilRetry())
	}
}

func TestStats(t *testing.T) {
	cb := New(Config{Threshold: 3, Cooldown: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()

	state, failures, lastFailure := cb.Stats()
	if state != StateClosed {
		t.Errorf("Expected CLOSED state, got %s", state)
	}
	if failures != 2 {
		t.Errorf("Expected 2 failures, got %d", failures)
	}
	if lastFailure.IsZero() {
		t.Error("Expected non-zero lastFailure time")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF-OPEN"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	cb := New(Config{Threshold: 100, Cooldown: time.Minute})

	done := make(chan bool)
	for i := 0; i < 50; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				cb.Allow()
				cb.RecordFailure()
				cb.RecordSuccess()
				cb.Failures()
				cb.State()
			}
			done <- true
		}()
	}
	for i := 0; i < 50; i++ {
		<-done
	}

	state := cb.State()
	if state != StateClosed && state != StateOpen && state != StateHalfOpen {
		t.Errorf("Invalid state after concurrent access: %v", state)
	}
}
