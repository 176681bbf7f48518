package playback

import (
	"sync"
	"testing"

	"go.uber.org/zap"
)

func TestRegistry_CreateRejectsDuplicate(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if err := registry.Create(NewSession(1, 100, 100)); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// В чате может существовать только одна сессия
	if err := registry.Create(NewSession(1, 200, 100)); err == nil {
		t.Error("duplicate Create must be rejected")
	}

	if registry.Count() != 1 {
		t.Errorf("Count = %d, want 1", registry.Count())
	}
}

func TestRegistry_GetRemove(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	if _, ok := registry.Get(1); ok {
		t.Error("Get on empty registry must return false")
	}

	session := NewSession(1, 100, 100)
	if err := registry.Create(session); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, ok := registry.Get(1)
	if !ok || got != session {
		t.Errorf("Get = %v, want created session", got)
	}

	registry.Remove(1)
	if _, ok := registry.Get(1); ok {
		t.Error("Get after Remove must return false")
	}

	// Повторное удаление безопасно
	registry.Remove(1)
}

func TestRegistry_SessionLockSerializes(t *testing.T) {
	registry := NewRegistry(zap.NewNop())
	chatID := int64(1)

	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			registry.LockSession(chatID)
			counter++
			registry.UnlockSession(chatID)
		}()
	}

	wg.Wait()
	if counter != 50 {
		t.Errorf("counter = %d, want 50", counter)
	}
}

func TestRegistry_LockDoesNotLeak(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	registry.LockSession(1)
	registry.UnlockSession(1)

	// Запись лока удаляется вместе с последним владельцем
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	if len(registry.locks) != 0 {
		t.Errorf("locks map has %d entries, want 0", len(registry.locks))
	}
}

func TestRegistry_DifferentChatsDoNotBlock(t *testing.T) {
	registry := NewRegistry(zap.NewNop())

	registry.LockSession(1)

	done := make(chan struct{})
	go func() {
		registry.LockSession(2)
		registry.UnlockSession(2)
		close(done)
	}()

	<-done
	registry.UnlockSession(1)
}
