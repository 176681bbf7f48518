// Package voting реализует голосования в чатах, например за пропуск трека.
package voting

import (
	"fmt"
	"math"
	"sync"
	"time"

	"groovebot/internal/playback"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Виды голосований
const (
	KindSkip = "skip"
	KindStop = "stop"
)

// Session представляет одно голосование
type Session struct {
	ID        string
	ChatID    int64
	Kind      string
	TargetID  string
	CreatedBy int64
	CreatedAt time.Time

	votes  map[int64]struct{}
	active bool
}

// VoteCount возвращает число поданных голосов
func (s *Session) VoteCount() int {
	return len(s.votes)
}

// Handler вызывается когда голосование набрало нужное число голосов
type Handler func(chatID int64, targetID string)

// Manager управляет голосованиями по чатам.
//
// В чате может идти не более одного голосования. Истечение реализовано
// тем же супервизором таймеров, что и таймеры воспроизведения:
// сработавший таймер перепроверяет состояние под локом менеджера.
type Manager struct {
	mu          sync.Mutex
	sessions    map[int64]*Session
	activeUsers map[int64]map[int64]struct{}
	handlers    map[string]Handler

	threshold float64
	expiry    time.Duration
	timers    *playback.TimerSupervisor
	logger    *zap.Logger
}

// NewManager создает новый менеджер голосований
func NewManager(threshold float64, expiry time.Duration, timers *playback.TimerSupervisor, logger *zap.Logger) *Manager {
	return &Manager{
		sessions:    make(map[int64]*Session),
		activeUsers: make(map[int64]map[int64]struct{}),
		handlers:    make(map[string]Handler),
		threshold:   threshold,
		expiry:      expiry,
		timers:      timers,
		logger:      logger,
	}
}

// RegisterHandler задает обработчик для прошедших голосований данного вида
func (m *Manager) RegisterHandler(kind string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[kind] = handler
}

// RegisterActiveUser отмечает пользователя как активного в чате.
// Порог голосования считается от числа активных пользователей.
func (m *Manager) RegisterActiveUser(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	users, ok := m.activeUsers[chatID]
	if !ok {
		users = make(map[int64]struct{})
		m.activeUsers[chatID] = users
	}
	users[userID] = struct{}{}
}

// UnregisterActiveUser снимает отметку активности пользователя
func (m *Manager) UnregisterActiveUser(chatID, userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if users, ok := m.activeUsers[chatID]; ok {
		delete(users, userID)
	}
}

// ActiveUserCount возвращает число активных пользователей чата
func (m *Manager) ActiveUserCount(chatID int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activeUsers[chatID])
}

// StartVote открывает голосование и сразу учитывает голос создателя.
// Пока в чате идет голосование, новое не открывается.
func (m *Manager) StartVote(chatID int64, kind, targetID string, createdBy int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[chatID]; ok && existing.active {
		return nil, fmt.Errorf("vote %s already in progress", existing.Kind)
	}

	session := &Session{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		Kind:      kind,
		TargetID:  targetID,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
		votes:     map[int64]struct{}{createdBy: {}},
		active:    true,
	}
	m.sessions[chatID] = session

	sessionID := session.ID
	m.timers.Schedule(chatID, playback.TimerVoteExpiry, m.expiry, func() {
		m.expire(chatID, sessionID)
	})

	m.logger.Info("Vote started",
		zap.Int64("chat_id", chatID),
		zap.String("kind", kind),
		zap.String("vote_id", session.ID))

	if m.passedLocked(session) {
		m.finishLocked(session)
	}
	return session, nil
}

// Vote учитывает голос пользователя. Возвращает число голосов, нужный
// порог и признак того, что голосование прошло.
func (m *Manager) Vote(chatID int64, kind string, userID int64) (votes, needed int, passed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[chatID]
	if !ok || !session.active || session.Kind != kind {
		return 0, 0, false, fmt.Errorf("no active %s vote", kind)
	}

	if _, voted := session.votes[userID]; voted {
		return session.VoteCount(), m.neededLocked(chatID), false, fmt.Errorf("already voted")
	}
	session.votes[userID] = struct{}{}

	needed = m.neededLocked(chatID)
	votes = session.VoteCount()

	if m.passedLocked(session) {
		m.finishLocked(session)
		return votes, needed, true, nil
	}
	return votes, needed, false, nil
}

// Cancel снимает активное голосование
func (m *Manager) Cancel(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[chatID]; ok {
		session.active = false
		delete(m.sessions, chatID)
		m.timers.Cancel(chatID, playback.TimerVoteExpiry)
	}
}

// Active возвращает активное голосование чата, если оно есть
func (m *Manager) Active(chatID int64) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[chatID]
	if !ok || !session.active {
		return nil, false
	}
	return session, true
}

// neededLocked возвращает порог голосов. Вызывается только под локом.
func (m *Manager) neededLocked(chatID int64) int {
	active := len(m.activeUsers[chatID])
	needed := int(math.Ceil(m.threshold * float64(active)))
	if needed < 1 {
		needed = 1
	}
	return needed
}

// passedLocked проверяет, набрано ли нужное число голосов
func (m *Manager) passedLocked(session *Session) bool {
	return session.VoteCount() >= m.neededLocked(session.ChatID)
}

// finishLocked закрывает прошедшее голосование и запускает обработчик
func (m *Manager) finishLocked(session *Session) {
	session.active = false
	delete(m.sessions, session.ChatID)
	m.timers.Cancel(session.ChatID, playback.TimerVoteExpiry)

	m.logger.Info("Vote passed",
		zap.Int64("chat_id", session.ChatID),
		zap.String("kind", session.Kind),
		zap.Int("votes", session.VoteCount()))

	if handler, ok := m.handlers[session.Kind]; ok {
		// Обработчик вызывается вне лока менеджера
		go handler(session.ChatID, session.TargetID)
	}
}

// expire срабатывает по таймеру истечения. Состояние перепроверяется
// под локом: голосование могло завершиться или смениться новым.
func (m *Manager) expire(chatID int64, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[chatID]
	if !ok || session.ID != sessionID {
		return
	}

	session.active = false
	delete(m.sessions, chatID)

	m.logger.Info("Vote expired",
		zap.Int64("chat_id", chatID),
		zap.String("kind", session.Kind))
}
