package playback

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimerKind различает виды отложенных задач сессии
type TimerKind int

const (
	// TimerSettle — пауза после окончания стрима перед автовоспроизведением
	TimerSettle TimerKind = iota
	// TimerIdleLeave — отложенный выход из голосового чата при пустой очереди
	TimerIdleLeave
	// TimerVoteExpiry — истечение голосования
	TimerVoteExpiry
	// TimerStream — окончание проигрываемого стрима в локальном бекенде
	TimerStream
)

// String возвращает строковое представление вида таймера
func (k TimerKind) String() string {
	switch k {
	case TimerSettle:
		return "settle"
	case TimerIdleLeave:
		return "idle_leave"
	case TimerVoteExpiry:
		return "vote_expiry"
	case TimerStream:
		return "stream"
	default:
		return "unknown"
	}
}

type timerKey struct {
	chatID int64
	kind   TimerKind
}

// TimerSupervisor управляет отменяемыми отложенными задачами сессий.
// На каждую пару (чат, вид) существует не более одного живого таймера:
// постановка нового заменяет прежний.
//
// Сработавший колбэк обязан сам перепроверить свое условие под локом
// сессии: отмена таймера не гарантия от гонки со срабатыванием.
type TimerSupervisor struct {
	mu     sync.Mutex
	timers map[timerKey]*time.Timer
	logger *zap.Logger
}

// NewTimerSupervisor создает новый супервизор таймеров
func NewTimerSupervisor(logger *zap.Logger) *TimerSupervisor {
	return &TimerSupervisor{
		timers: make(map[timerKey]*time.Timer),
		logger: logger,
	}
}

// Schedule взводит таймер данного вида для чата, отменяя прежний
func (s *TimerSupervisor) Schedule(chatID int64, kind TimerKind, delay time.Duration, fn func()) {
	key := timerKey{chatID: chatID, kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}

	s.timers[key] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, key)
		s.mu.Unlock()
		fn()
	})

	s.logger.Debug("Timer scheduled",
		zap.Int64("chat_id", chatID),
		zap.String("kind", kind.String()),
		zap.Duration("delay", delay))
}

// Cancel отменяет таймер данного вида для чата, если он взведен
func (s *TimerSupervisor) Cancel(chatID int64, kind TimerKind) {
	key := timerKey{chatID: chatID, kind: kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
		s.logger.Debug("Timer canceled",
			zap.Int64("chat_id", chatID),
			zap.String("kind", kind.String()))
	}
}

// CancelAll отменяет все таймеры чата
func (s *TimerSupervisor) CancelAll(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		if key.chatID == chatID {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

// Stop отменяет все таймеры всех чатов
func (s *TimerSupervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

// Pending сообщает, взведен ли таймер данного вида для чата
func (s *TimerSupervisor) Pending(chatID int64, kind TimerKind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.timers[timerKey{chatID: chatID, kind: kind}]
	return ok
}
