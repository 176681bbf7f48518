package playback

import (
	"time"

	"groovebot/internal/model"
)

// State представляет состояние жизненного цикла сессии
type State int

const (
	// StateNotJoined — бот не находится в голосовом чате
	StateNotJoined State = iota
	// StateJoining — идет вход в голосовой чат
	StateJoining
	// StateActive — бот в голосовом чате, играет или на паузе
	StateActive
	// StateLeaving — идет выход из голосового чата
	StateLeaving
)

// String возвращает строковое представление состояния
func (s State) String() string {
	switch s {
	case StateNotJoined:
		return "not_joined"
	case StateJoining:
		return "joining"
	case StateActive:
		return "active"
	case StateLeaving:
		return "leaving"
	default:
		return "unknown"
	}
}

// Session представляет сессию воспроизведения одного чата.
//
// Все поля читаются и изменяются только контроллером под локом сессии.
// Инвариант: у сессии не более одного текущего трека.
type Session struct {
	ChatID    int64
	State     State
	Paused    bool
	Current   *model.Track
	Volume    int
	StartedBy int64
	StartTime time.Time

	// IdleDeadline — момент срабатывания таймера простоя, нулевое
	// значение когда таймер не взведен
	IdleDeadline time.Time

	// StreamSeq — номер поколения стрима, увеличивается при каждом
	// запуске трека. Отложенные колбеки сверяют его с тем, что сняли
	// при постановке: несовпадение означает, что стрим уже заменен
	StreamSeq uint64
}

// NewSession создает новую сессию воспроизведения
func NewSession(chatID, startedBy int64, volume int) *Session {
	return &Session{
		ChatID:    chatID,
		State:     StateNotJoined,
		Volume:    volume,
		StartedBy: startedBy,
		StartTime: time.Now(),
	}
}

// Snapshot представляет копию состояния сессии для чтения вне лока
type Snapshot struct {
	ChatID    int64
	State     State
	Paused    bool
	Current   *model.Track
	Volume    int
	StartedBy int64
	StartTime time.Time
}

// snapshot снимает копию состояния. Вызывается только под локом сессии.
func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ChatID:    s.ChatID,
		State:     s.State,
		Paused:    s.Paused,
		Current:   s.Current,
		Volume:    s.Volume,
		StartedBy: s.StartedBy,
		StartTime: s.StartTime,
	}
}
