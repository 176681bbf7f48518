// Package playback реализует очереди треков и управление сессиями
// воспроизведения в голосовых чатах.
package playback

import (
	"fmt"
	"sync"

	"groovebot/internal/model"

	"go.uber.org/zap"
)

// QueueStore хранит очереди треков и историю воспроизведения по чатам
type QueueStore struct {
	mu             sync.RWMutex
	queues         map[int64]*chatQueue
	maxQueueSize   int
	maxHistorySize int
	logger         *zap.Logger
}

// chatQueue содержит очередь и историю одного чата
type chatQueue struct {
	mu      sync.Mutex
	pending []*model.Track
	history []*model.Track
}

// NewQueueStore создает новое хранилище очередей
func NewQueueStore(maxQueueSize, maxHistorySize int, logger *zap.Logger) *QueueStore {
	return &QueueStore{
		queues:         make(map[int64]*chatQueue),
		maxQueueSize:   maxQueueSize,
		maxHistorySize: maxHistorySize,
		logger:         logger,
	}
}

// get возвращает очередь чата, создавая ее при первом обращении
func (s *QueueStore) get(chatID int64) *chatQueue {
	s.mu.RLock()
	q, ok := s.queues[chatID]
	s.mu.RUnlock()
	if ok {
		return q
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok = s.queues[chatID]; ok {
		return q
	}
	q = &chatQueue{}
	s.queues[chatID] = q
	return q
}

// Add добавляет трек в конец очереди и возвращает его позицию (с единицы).
// При заполненной очереди возвращает ErrQueueFull без каких-либо изменений.
func (s *QueueStore) Add(chatID int64, track *model.Track) (int, error) {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= s.maxQueueSize {
		return 0, fmt.Errorf("%w (%d)", ErrQueueFull, s.maxQueueSize)
	}

	q.pending = append(q.pending, track)
	position := len(q.pending)

	s.logger.Info("Added track to queue",
		zap.Int64("chat_id", chatID),
		zap.String("track", track.Title),
		zap.Int("position", position))
	return position, nil
}

// PopNext снимает трек с головы очереди и переносит его в историю.
// Возвращает nil когда очередь пуста: это не ошибка.
func (s *QueueStore) PopNext(chatID int64) *model.Track {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}

	track := q.pending[0]
	q.pending = q.pending[1:]

	q.history = append(q.history, track)
	if len(q.history) > s.maxHistorySize {
		q.history = q.history[1:]
	}

	s.logger.Info("Popped next track from queue",
		zap.Int64("chat_id", chatID),
		zap.String("track", track.Title))
	return track
}

// Peek возвращает трек в голове очереди, не снимая его
func (s *QueueStore) Peek(chatID int64) *model.Track {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return nil
	}
	return q.pending[0]
}

// List возвращает копию очереди чата в порядке воспроизведения
func (s *QueueStore) List(chatID int64) []*model.Track {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*model.Track, len(q.pending))
	copy(out, q.pending)
	return out
}

// ListHistory возвращает копию истории воспроизведения чата
func (s *QueueStore) ListHistory(chatID int64) []*model.Track {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]*model.Track, len(q.history))
	copy(out, q.history)
	return out
}

// RemoveAt удаляет трек из очереди по индексу (с нуля)
func (s *QueueStore) RemoveAt(chatID int64, index int) (*model.Track, error) {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.pending) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	track := q.pending[index]
	q.pending = append(q.pending[:index], q.pending[index+1:]...)

	s.logger.Info("Removed track from queue",
		zap.Int64("chat_id", chatID),
		zap.String("track", track.Title),
		zap.Int("index", index))
	return track, nil
}

// Move переставляет трек с одной позиции очереди на другую
func (s *QueueStore) Move(chatID int64, from, to int) error {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	if from < 0 || from >= len(q.pending) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, from)
	}
	if to < 0 || to >= len(q.pending) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, to)
	}

	track := q.pending[from]
	q.pending = append(q.pending[:from], q.pending[from+1:]...)
	q.pending = append(q.pending[:to], append([]*model.Track{track}, q.pending[to:]...)...)

	s.logger.Info("Moved track in queue",
		zap.Int64("chat_id", chatID),
		zap.Int("from", from),
		zap.Int("to", to))
	return nil
}

// Clear очищает очередь чата. История остается нетронутой.
func (s *QueueStore) Clear(chatID int64) {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending = nil
	s.logger.Info("Cleared queue", zap.Int64("chat_id", chatID))
}

// HasTracks сообщает, есть ли в очереди чата хотя бы один трек
func (s *QueueStore) HasTracks(chatID int64) bool {
	return s.Len(chatID) > 0
}

// Len возвращает длину очереди чата
func (s *QueueStore) Len(chatID int64) int {
	q := s.get(chatID)
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
