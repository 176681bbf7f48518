package model

import (
	"time"

	"github.com/uptrace/bun"
)

// PlayRecord представляет запись в истории воспроизведения
type PlayRecord struct {
	bun.BaseModel `bun:"table:groovebot.play_records"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	ChatID    int64     `bun:"chat_id,notnull" json:"chat_id"`
	TrackID   string    `bun:"track_id,notnull" json:"track_id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Artists   string    `bun:"artists,notnull" json:"artists"`
	Album     string    `bun:"album" json:"album"`
	PlayedBy  int64     `bun:"played_by" json:"played_by"`
	PlayedAt  time.Time `bun:"played_at,notnull,default:current_timestamp" json:"played_at"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TopTrack представляет агрегированную строку статистики по чату
type TopTrack struct {
	TrackID   string `bun:"track_id" json:"track_id"`
	Title     string `bun:"title" json:"title"`
	Artists   string `bun:"artists" json:"artists"`
	PlayCount int    `bun:"play_count" json:"play_count"`
}

// PlayRecordRepository определяет интерфейс для работы с историей воспроизведения
type PlayRecordRepository interface {
	Create(record *PlayRecord) error
	RecordPlay(chatID int64, track *Track) error
	TopTracks(chatID int64, limit int) ([]TopTrack, error)
	CountByChat(chatID int64) (int, error)
}
