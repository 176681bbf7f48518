package playback

import (
	"errors"
	"fmt"
	"testing"

	"groovebot/internal/model"

	"go.uber.org/zap"
)

func testTrack(id string) *model.Track {
	return &model.Track{
		ID:      id,
		Title:   "Track " + id,
		Artists: "Artist " + id,
	}
}

func TestQueueStore_FIFO(t *testing.T) {
	store := NewQueueStore(100, 50, zap.NewNop())
	chatID := int64(1)

	for i := 0; i < 10; i++ {
		if _, err := store.Add(chatID, testTrack(fmt.Sprintf("t%d", i))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	// Треки снимаются строго в порядке добавления
	for i := 0; i < 10; i++ {
		track := store.PopNext(chatID)
		if track == nil {
			t.Fatalf("PopNext returned nil at %d", i)
		}
		if want := fmt.Sprintf("t%d", i); track.ID != want {
			t.Errorf("PopNext order broken: got %s, want %s", track.ID, want)
		}
	}

	if track := store.PopNext(chatID); track != nil {
		t.Errorf("PopNext on empty queue = %v, want nil", track)
	}
}

func TestQueueStore_Capacity(t *testing.T) {
	store := NewQueueStore(3, 50, zap.NewNop())
	chatID := int64(1)

	for i := 0; i < 3; i++ {
		pos, err := store.Add(chatID, testTrack(fmt.Sprintf("t%d", i)))
		if err != nil {
			t.Fatalf("Add %d failed: %v", i, err)
		}
		if pos != i+1 {
			t.Errorf("Add position = %d, want %d", pos, i+1)
		}
	}

	// Переполнение отклоняется и ничего не меняет
	if _, err := store.Add(chatID, testTrack("overflow")); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Add over capacity error = %v, want ErrQueueFull", err)
	}
	if got := store.Len(chatID); got != 3 {
		t.Errorf("Len after rejected add = %d, want 3", got)
	}
}

func TestQueueStore_PopMovesToHistory(t *testing.T) {
	store := NewQueueStore(100, 50, zap.NewNop())
	chatID := int64(1)

	a, b, c := testTrack("A"), testTrack("B"), testTrack("C")
	for _, track := range []*model.Track{a, b, c} {
		if _, err := store.Add(chatID, track); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	list := store.List(chatID)
	if len(list) != 3 || list[0].ID != "A" || list[1].ID != "B" || list[2].ID != "C" {
		t.Fatalf("List = %v, want [A B C]", trackIDs(list))
	}

	popped := store.PopNext(chatID)
	if popped == nil || popped.ID != "A" {
		t.Fatalf("PopNext = %v, want A", popped)
	}

	list = store.List(chatID)
	if len(list) != 2 || list[0].ID != "B" || list[1].ID != "C" {
		t.Errorf("List after pop = %v, want [B C]", trackIDs(list))
	}

	history := store.ListHistory(chatID)
	if len(history) != 1 || history[0].ID != "A" {
		t.Errorf("ListHistory = %v, want [A]", trackIDs(history))
	}
}

func TestQueueStore_HistoryEviction(t *testing.T) {
	store := NewQueueStore(100, 2, zap.NewNop())
	chatID := int64(1)

	for i := 0; i < 4; i++ {
		if _, err := store.Add(chatID, testTrack(fmt.Sprintf("t%d", i))); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
		store.PopNext(chatID)
	}

	// Старейшие записи вытесняются, остаются две последние
	history := store.ListHistory(chatID)
	if len(history) != 2 || history[0].ID != "t2" || history[1].ID != "t3" {
		t.Errorf("ListHistory = %v, want [t2 t3]", trackIDs(history))
	}
}

func TestQueueStore_RemoveAt(t *testing.T) {
	store := NewQueueStore(100, 50, zap.NewNop())
	chatID := int64(1)

	for _, id := range []string{"A", "B", "C"} {
		if _, err := store.Add(chatID, testTrack(id)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	removed, err := store.RemoveAt(chatID, 1)
	if err != nil {
		t.Fatalf("RemoveAt failed: %v", err)
	}
	if removed.ID != "B" {
		t.Errorf("RemoveAt = %s, want B", removed.ID)
	}

	if _, err := store.RemoveAt(chatID, 5); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("RemoveAt out of range error = %v, want ErrInvalidIndex", err)
	}
	if _, err := store.RemoveAt(chatID, -1); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("RemoveAt negative error = %v, want ErrInvalidIndex", err)
	}

	list := store.List(chatID)
	if len(list) != 2 || list[0].ID != "A" || list[1].ID != "C" {
		t.Errorf("List after remove = %v, want [A C]", trackIDs(list))
	}
}

func TestQueueStore_Move(t *testing.T) {
	store := NewQueueStore(100, 50, zap.NewNop())
	chatID := int64(1)

	for _, id := range []string{"A", "B", "C"} {
		if _, err := store.Add(chatID, testTrack(id)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if err := store.Move(chatID, 2, 0); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	list := store.List(chatID)
	if len(list) != 3 || list[0].ID != "C" || list[1].ID != "A" || list[2].ID != "B" {
		t.Errorf("List after move = %v, want [C A B]", trackIDs(list))
	}

	if err := store.Move(chatID, 0, 7); !errors.Is(err, ErrInvalidIndex) {
		t.Errorf("Move out of range error = %v, want ErrInvalidIndex", err)
	}
}

func TestQueueStore_ClearKeepsHistory(t *testing.T) {
	store := NewQueueStore(100, 50, zap.NewNop())
	chatID := int64(1)

	if _, err := store.Add(chatID, testTrack("A")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	store.PopNext(chatID)
	if _, err := store.Add(chatID, testTrack("B")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	store.Clear(chatID)

	if store.HasTracks(chatID) {
		t.Error("HasTracks after clear = true, want false")
	}
	if history := store.ListHistory(chatID); len(history) != 1 {
		t.Errorf("history after clear = %v, want [A]", trackIDs(history))
	}
}

func TestQueueStore_IsolatedChats(t *testing.T) {
	store := NewQueueStore(100, 50, zap.NewNop())

	if _, err := store.Add(1, testTrack("A")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(2, testTrack("B")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if got := store.Len(1); got != 1 {
		t.Errorf("Len(1) = %d, want 1", got)
	}
	if track := store.Peek(2); track == nil || track.ID != "B" {
		t.Errorf("Peek(2) = %v, want B", track)
	}

	store.Clear(1)
	if !store.HasTracks(2) {
		t.Error("clearing chat 1 must not touch chat 2")
	}
}

func trackIDs(tracks []*model.Track) []string {
	ids := make([]string, len(tracks))
	for i, track := range tracks {
		ids[i] = track.ID
	}
	return ids
}
