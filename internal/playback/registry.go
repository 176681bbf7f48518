package playback

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry владеет отображением chat_id -> Session и локами сессий.
// Никто кроме контроллера не изменяет сессии напрямую.
type Registry struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	locks    map[int64]*sessionLock
	logger   *zap.Logger
}

// sessionLock — лок сессии со счетчиком ссылок. Запись удаляется из
// карты когда последний владелец отпускает лок, поэтому локи не
// переживают сессию и не утекают между чатами.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// NewRegistry создает новый реестр сессий
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*sessionLock),
		logger:   logger,
	}
}

// LockSession захватывает лок сессии чата. Все операции контроллера
// для одного чата упорядочены этим локом; разные чаты не блокируют
// друг друга.
func (r *Registry) LockSession(chatID int64) {
	r.mu.Lock()
	l, ok := r.locks[chatID]
	if !ok {
		l = &sessionLock{}
		r.locks[chatID] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
}

// UnlockSession отпускает лок сессии чата
func (r *Registry) UnlockSession(chatID int64) {
	r.mu.Lock()
	l, ok := r.locks[chatID]
	if !ok {
		r.mu.Unlock()
		panic(fmt.Sprintf("playback: unlock of unknown session %d", chatID))
	}
	l.refs--
	if l.refs == 0 {
		delete(r.locks, chatID)
	}
	r.mu.Unlock()

	l.mu.Unlock()
}

// Create регистрирует сессию чата. Повторная регистрация отклоняется:
// в чате может существовать только одна сессия.
func (r *Registry) Create(session *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[session.ChatID]; exists {
		return fmt.Errorf("%w: session already exists", ErrAlreadyInCall)
	}
	r.sessions[session.ChatID] = session

	r.logger.Info("Session created", zap.Int64("chat_id", session.ChatID))
	return nil
}

// Get возвращает сессию чата
func (r *Registry) Get(chatID int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[chatID]
	return s, ok
}

// Remove удаляет сессию чата из реестра
func (r *Registry) Remove(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[chatID]; ok {
		delete(r.sessions, chatID)
		r.logger.Info("Session removed", zap.Int64("chat_id", chatID))
	}
}

// Count возвращает число активных сессий
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// ChatIDs возвращает идентификаторы чатов с активными сессиями
func (r *Registry) ChatIDs() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}
