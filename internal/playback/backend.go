package playback

import (
	"context"

	"groovebot/internal/model"
)

// VoiceBackend определяет интерфейс голосового бекенда.
//
// Реализация обязана возвращать ошибки через сентинели этого пакета:
// ErrNotInCall, ErrAlreadyInCall, ErrJoinFailed (допустимо оборачивание,
// контроллер сверяет через errors.Is).
type VoiceBackend interface {
	// Join входит в голосовой чат
	Join(ctx context.Context, chatID int64) error
	// Leave выходит из голосового чата
	Leave(ctx context.Context, chatID int64) error
	// ChangeStream переключает стрим на указанное аудио
	ChangeStream(ctx context.Context, chatID int64, mediaPath string) error
	// Pause приостанавливает текущий стрим
	Pause(ctx context.Context, chatID int64) error
	// Resume возобновляет текущий стрим
	Resume(ctx context.Context, chatID int64) error
	// SetVolume устанавливает громкость стрима
	SetVolume(ctx context.Context, chatID int64, volume int) error
}

// MediaResolver определяет интерфейс получения аудио трека
type MediaResolver interface {
	// AcquireMedia скачивает аудио и возвращает копию трека с заполненным
	// MediaPath
	AcquireMedia(ctx context.Context, track *model.Track) (*model.Track, error)
}

// PlayRecorder определяет интерфейс записи истории воспроизведения.
// Контроллер вызывает его в режиме fire-and-forget и не зависит от успеха.
type PlayRecorder interface {
	RecordPlay(chatID int64, track *model.Track) error
}

// StreamEnded — событие окончания стрима в голосовом чате.
// Доставляется бекендом в канал контроллера, а не прямым вызовом.
type StreamEnded struct {
	ChatID int64
}
