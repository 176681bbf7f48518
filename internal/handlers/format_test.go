package handlers

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"groovebot/internal/model"
	"groovebot/internal/playback"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{30 * time.Second, "0:30"},
		{90 * time.Second, "1:30"},
		{10 * time.Minute, "10:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatTrack(t *testing.T) {
	track := &model.Track{
		ID:          "t1",
		Title:       "Bohemian Rhapsody",
		Artists:     "Queen",
		Duration:    5*time.Minute + 55*time.Second,
		ExternalURL: "https://open.spotify.com/track/t1",
	}

	got := formatTrack(track)
	if !strings.Contains(got, "Queen — Bohemian Rhapsody") {
		t.Errorf("expected artist and title in %q", got)
	}
	if !strings.Contains(got, "5:55") {
		t.Errorf("expected duration in %q", got)
	}
	if !strings.Contains(got, "https://open.spotify.com/track/t1") {
		t.Errorf("expected external URL in %q", got)
	}
}

func TestFormatQueue(t *testing.T) {
	if got := formatQueue(nil); got != "Очередь пуста." {
		t.Errorf("empty queue: got %q", got)
	}

	tracks := []*model.Track{
		{ID: "a", Title: "A", Artists: "X"},
		{ID: "b", Title: "B", Artists: "Y"},
	}
	got := formatQueue(tracks)
	if !strings.Contains(got, "1. ") || !strings.Contains(got, "2. ") {
		t.Errorf("expected numbered entries in %q", got)
	}
}

func TestFormatNowPlaying(t *testing.T) {
	snapshot := playback.Snapshot{
		Current: &model.Track{ID: "a", Title: "A", Artists: "X"},
		Volume:  150,
	}
	got := formatNowPlaying(snapshot)
	if !strings.Contains(got, "Сейчас играет") {
		t.Errorf("expected playing status in %q", got)
	}
	if !strings.Contains(got, "150") {
		t.Errorf("expected volume in %q", got)
	}

	snapshot.Paused = true
	if got := formatNowPlaying(snapshot); !strings.Contains(got, "На паузе") {
		t.Errorf("expected paused status in %q", got)
	}

	snapshot.Current = nil
	if got := formatNowPlaying(snapshot); got != "Сейчас ничего не играет." {
		t.Errorf("empty current: got %q", got)
	}
}

func TestControlsKeyboard(t *testing.T) {
	keyboard := controlsKeyboard()
	if len(keyboard.InlineKeyboard) != 1 {
		t.Fatalf("expected 1 row, got %d", len(keyboard.InlineKeyboard))
	}
	row := keyboard.InlineKeyboard[0]
	if len(row) != 4 {
		t.Fatalf("expected 4 buttons, got %d", len(row))
	}
	if row[0].Text != "Pause" {
		t.Errorf("expected title-cased label, got %q", row[0].Text)
	}
	if *row[0].CallbackData != "ctl_pause" {
		t.Errorf("expected ctl_pause callback, got %q", *row[0].CallbackData)
	}
}

func TestSearchKeyboardTruncatesRunes(t *testing.T) {
	track := &model.Track{
		ID:      "1",
		Title:   strings.Repeat("ы", 50),
		Artists: strings.Repeat("ж", 30),
	}

	keyboard := searchKeyboard([]*model.Track{track})
	label := keyboard.InlineKeyboard[0][0].Text

	if !utf8.ValidString(label) {
		t.Errorf("label is not valid UTF-8: %q", label)
	}
	if runes := utf8.RuneCountInString(label); runes != 60 {
		t.Errorf("label length = %d runes, want 60", runes)
	}
	if !strings.HasSuffix(label, "...") {
		t.Errorf("label %q must end with ellipsis", label)
	}
}

func TestLyricsKeyboard(t *testing.T) {
	first := lyricsKeyboard(0, 3)
	if len(first.InlineKeyboard[0]) != 2 {
		t.Errorf("first page: expected counter and next button, got %d buttons", len(first.InlineKeyboard[0]))
	}

	middle := lyricsKeyboard(1, 3)
	if len(middle.InlineKeyboard[0]) != 3 {
		t.Errorf("middle page: expected prev, counter and next, got %d buttons", len(middle.InlineKeyboard[0]))
	}

	last := lyricsKeyboard(2, 3)
	if len(last.InlineKeyboard[0]) != 2 {
		t.Errorf("last page: expected prev and counter, got %d buttons", len(last.InlineKeyboard[0]))
	}
}

func TestErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{playback.ErrInvalidVolume, "0 до 200"},
		{playback.ErrQueueFull, "Очередь заполнена"},
		{playback.ErrNotInCall, "не в голосовом чате"},
		{errors.New("boom"), "Произошла ошибка"},
	}
	for _, tt := range tests {
		if got := errorText(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("errorText(%v) = %q, want substring %q", tt.err, got, tt.want)
		}
	}
}
