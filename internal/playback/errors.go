package playback

import "errors"

// Ожидаемые ошибки воспроизведения. Все они восстановимые и показываются
// пользователю; ни одна не роняет контроллер или реестр сессий.
var (
	// ErrQueueFull возвращается при попытке добавить трек в заполненную очередь
	ErrQueueFull = errors.New("queue limit reached")

	// ErrNoMoreTracks возвращается когда в очереди больше нет треков
	ErrNoMoreTracks = errors.New("no more tracks in the queue")

	// ErrInvalidIndex возвращается при выходе индекса за границы очереди
	ErrInvalidIndex = errors.New("invalid track index")

	// ErrInvalidVolume возвращается при громкости вне диапазона 0-200
	ErrInvalidVolume = errors.New("volume must be between 0 and 200")

	// ErrNotInCall возвращается когда бот не находится в голосовом чате
	ErrNotInCall = errors.New("not in a voice chat")

	// ErrAlreadyInCall возвращается бекендом при повторном входе в голосовой чат
	ErrAlreadyInCall = errors.New("already in a voice chat")

	// ErrJoinFailed возвращается когда не удалось войти в голосовой чат
	ErrJoinFailed = errors.New("failed to join voice chat")

	// ErrDownloadUnavailable возвращается когда аудио трека недоступно
	ErrDownloadUnavailable = errors.New("failed to download track")
)
