package middleware

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDebouncer_CanProcessRequest(t *testing.T) {
	debouncer := NewDebouncer(50*time.Millisecond, zap.NewNop())

	if !debouncer.CanProcessRequest("100:play") {
		t.Fatal("first request should pass")
	}
	if debouncer.CanProcessRequest("100:play") {
		t.Error("immediate repeat should be debounced")
	}
	if !debouncer.CanProcessRequest("100:skip") {
		t.Error("different key should pass")
	}

	time.Sleep(60 * time.Millisecond)
	if !debouncer.CanProcessRequest("100:play") {
		t.Error("request after timeout should pass")
	}
}

func TestDebouncer_CustomTimeout(t *testing.T) {
	debouncer := NewDebouncer(time.Hour, zap.NewNop())

	if !debouncer.CanProcessRequestWithTimeout("100:lyrics", 30*time.Millisecond) {
		t.Fatal("first request should pass")
	}
	if debouncer.CanProcessRequestWithTimeout("100:lyrics", 30*time.Millisecond) {
		t.Error("immediate repeat should be debounced")
	}

	time.Sleep(40 * time.Millisecond)
	if !debouncer.CanProcessRequestWithTimeout("100:lyrics", 30*time.Millisecond) {
		t.Error("request after custom timeout should pass")
	}
}

func TestDebouncer_Cleanup(t *testing.T) {
	debouncer := NewDebouncer(10*time.Millisecond, zap.NewNop())

	debouncer.CanProcessRequest("100:play")
	time.Sleep(20 * time.Millisecond)
	debouncer.Cleanup()

	debouncer.mu.RLock()
	defer debouncer.mu.RUnlock()
	if len(debouncer.requests) != 0 {
		t.Errorf("expected empty request map after cleanup, got %d entries", len(debouncer.requests))
	}
}
