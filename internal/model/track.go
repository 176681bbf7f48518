// Package model содержит модели данных.
package model

import (
	"time"
)

// Track представляет трек, найденный через Spotify
//
// Трек неизменяем после создания: сессия никогда не меняет его поля.
// MediaPath заполняется один раз после успешного скачивания.
type Track struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Artists     string        `json:"artists"`
	Album       string        `json:"album"`
	Duration    time.Duration `json:"duration"`
	PreviewURL  string        `json:"preview_url"`
	ExternalURL string        `json:"external_url"`
	AlbumArtURL string        `json:"album_art_url"`

	// MediaPath — локальный путь к скачанному аудио, пустой пока трек не скачан
	MediaPath string `json:"media_path,omitempty"`

	// Кто и когда добавил трек
	AddedBy int64     `json:"added_by"`
	AddedAt time.Time `json:"added_at"`
}

// HasMedia сообщает, скачан ли трек
func (t *Track) HasMedia() bool {
	return t.MediaPath != ""
}

// WithMedia возвращает копию трека с заполненным путем к аудио
func (t *Track) WithMedia(path string) *Track {
	clone := *t
	clone.MediaPath = path
	return &clone
}

// WithSubmitter возвращает копию трека с информацией о добавившем пользователе
func (t *Track) WithSubmitter(userID int64, at time.Time) *Track {
	clone := *t
	clone.AddedBy = userID
	clone.AddedAt = at
	return &clone
}
