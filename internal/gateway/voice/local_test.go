package voice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"groovebot/internal/playback"

	"go.uber.org/zap"
)

func testMediaFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0644); err != nil {
		t.Fatalf("failed to write media file: %v", err)
	}
	return path
}

func TestLocalBackend_JoinLeave(t *testing.T) {
	backend := NewLocalBackend(zap.NewNop())
	defer backend.Stop()
	ctx := context.Background()

	if err := backend.Join(ctx, 100); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := backend.Join(ctx, 100); !errors.Is(err, playback.ErrAlreadyInCall) {
		t.Errorf("expected ErrAlreadyInCall, got %v", err)
	}
	if err := backend.Leave(ctx, 100); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}
	if err := backend.Leave(ctx, 100); !errors.Is(err, playback.ErrNotInCall) {
		t.Errorf("expected ErrNotInCall, got %v", err)
	}
}

func TestLocalBackend_ChangeStreamRequiresJoin(t *testing.T) {
	backend := NewLocalBackend(zap.NewNop())
	defer backend.Stop()

	path := testMediaFile(t)
	if err := backend.ChangeStream(context.Background(), 100, path); !errors.Is(err, playback.ErrNotInCall) {
		t.Errorf("expected ErrNotInCall, got %v", err)
	}
}

func TestLocalBackend_ChangeStreamMissingFile(t *testing.T) {
	backend := NewLocalBackend(zap.NewNop())
	defer backend.Stop()
	ctx := context.Background()

	if err := backend.Join(ctx, 100); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := backend.ChangeStream(ctx, 100, "/nonexistent/track.mp3"); err == nil {
		t.Error("expected error for missing media file")
	}
}

func TestLocalBackend_PauseResume(t *testing.T) {
	backend := NewLocalBackend(zap.NewNop())
	defer backend.Stop()
	ctx := context.Background()

	if err := backend.Join(ctx, 100); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if err := backend.ChangeStream(ctx, 100, testMediaFile(t)); err != nil {
		t.Fatalf("ChangeStream failed: %v", err)
	}

	if err := backend.Pause(ctx, 100); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	// Пауза снимает таймер окончания стрима
	if backend.timers.Pending(100, playback.TimerStream) {
		t.Error("expected stream timer to be canceled while paused")
	}

	if err := backend.Resume(ctx, 100); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if !backend.timers.Pending(100, playback.TimerStream) {
		t.Error("expected stream timer to be rescheduled after resume")
	}
}

func TestLocalBackend_NotInCallOperations(t *testing.T) {
	backend := NewLocalBackend(zap.NewNop())
	defer backend.Stop()
	ctx := context.Background()

	if err := backend.Pause(ctx, 100); !errors.Is(err, playback.ErrNotInCall) {
		t.Errorf("Pause: expected ErrNotInCall, got %v", err)
	}
	if err := backend.Resume(ctx, 100); !errors.Is(err, playback.ErrNotInCall) {
		t.Errorf("Resume: expected ErrNotInCall, got %v", err)
	}
	if err := backend.SetVolume(ctx, 100, 50); !errors.Is(err, playback.ErrNotInCall) {
		t.Errorf("SetVolume: expected ErrNotInCall, got %v", err)
	}
}
