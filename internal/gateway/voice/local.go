// Package voice содержит бекенды голосовых чатов.
package voice

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"groovebot/internal/playback"

	"go.uber.org/zap"
)

// Стандартная длительность превью Spotify
const previewDuration = 30 * time.Second

// stream описывает проигрываемый в чате стрим
type stream struct {
	path      string
	startedAt time.Time
	remaining time.Duration
	paused    bool
}

// LocalBackend проигрывает скачанные превью без настоящего голосового
// транспорта: окончание стрима эмулируется таймером на длительность
// превью. Используется для разработки и как образец адаптера.
type LocalBackend struct {
	mu      sync.Mutex
	streams map[int64]*stream
	joined  map[int64]struct{}

	timers *playback.TimerSupervisor
	onEnd  func(chatID int64)
	logger *zap.Logger
}

var _ playback.VoiceBackend = (*LocalBackend)(nil)

// NewLocalBackend создает новый локальный бекенд
func NewLocalBackend(logger *zap.Logger) *LocalBackend {
	return &LocalBackend{
		streams: make(map[int64]*stream),
		joined:  make(map[int64]struct{}),
		timers:  playback.NewTimerSupervisor(logger),
		logger:  logger,
	}
}

// SetStreamEndHandler задает колбэк окончания стрима.
// Вызывается один раз при сборке приложения до первого Join.
func (b *LocalBackend) SetStreamEndHandler(fn func(chatID int64)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onEnd = fn
}

// Join подключает бекенд к голосовому чату
func (b *LocalBackend) Join(ctx context.Context, chatID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.joined[chatID]; ok {
		return playback.ErrAlreadyInCall
	}
	b.joined[chatID] = struct{}{}
	b.logger.Info("Joined voice chat", zap.Int64("chat_id", chatID))
	return nil
}

// Leave отключает бекенд от голосового чата
func (b *LocalBackend) Leave(ctx context.Context, chatID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.joined[chatID]; !ok {
		return playback.ErrNotInCall
	}
	delete(b.joined, chatID)
	delete(b.streams, chatID)
	b.timers.Cancel(chatID, playback.TimerStream)
	b.logger.Info("Left voice chat", zap.Int64("chat_id", chatID))
	return nil
}

// ChangeStream начинает проигрывать новый файл, замещая текущий стрим
func (b *LocalBackend) ChangeStream(ctx context.Context, chatID int64, mediaPath string) error {
	if _, err := os.Stat(mediaPath); err != nil {
		return fmt.Errorf("media file not available: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.joined[chatID]; !ok {
		return playback.ErrNotInCall
	}

	b.streams[chatID] = &stream{
		path:      mediaPath,
		startedAt: time.Now(),
		remaining: previewDuration,
	}
	b.scheduleEndLocked(chatID, previewDuration)
	return nil
}

// Pause приостанавливает текущий стрим
func (b *LocalBackend) Pause(ctx context.Context, chatID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.joined[chatID]; !ok {
		return playback.ErrNotInCall
	}

	s, ok := b.streams[chatID]
	if !ok || s.paused {
		return nil
	}

	elapsed := time.Since(s.startedAt)
	s.remaining -= elapsed
	if s.remaining < 0 {
		s.remaining = 0
	}
	s.paused = true
	b.timers.Cancel(chatID, playback.TimerStream)
	return nil
}

// Resume возобновляет приостановленный стрим
func (b *LocalBackend) Resume(ctx context.Context, chatID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.joined[chatID]; !ok {
		return playback.ErrNotInCall
	}

	s, ok := b.streams[chatID]
	if !ok || !s.paused {
		return nil
	}

	s.paused = false
	s.startedAt = time.Now()
	b.scheduleEndLocked(chatID, s.remaining)
	return nil
}

// SetVolume задает громкость. Локальный бекенд только запоминает факт.
func (b *LocalBackend) SetVolume(ctx context.Context, chatID int64, volume int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.joined[chatID]; !ok {
		return playback.ErrNotInCall
	}
	b.logger.Debug("Volume changed", zap.Int64("chat_id", chatID), zap.Int("volume", volume))
	return nil
}

// Stop останавливает все таймеры бекенда
func (b *LocalBackend) Stop() {
	b.timers.Stop()
}

// scheduleEndLocked взводит таймер окончания стрима. Вызывается под локом.
func (b *LocalBackend) scheduleEndLocked(chatID int64, after time.Duration) {
	b.timers.Schedule(chatID, playback.TimerStream, after, func() {
		b.mu.Lock()
		s, ok := b.streams[chatID]
		if ok && !s.paused {
			delete(b.streams, chatID)
		}
		onEnd := b.onEnd
		b.mu.Unlock()

		if ok && onEnd != nil {
			onEnd(chatID)
		}
	})
}
