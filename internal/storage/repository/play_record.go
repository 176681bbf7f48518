// Package repository содержит репозитории для работы с базой данных.
package repository

import (
	"context"
	"fmt"
	"time"

	"groovebot/internal/model"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// PlayRecordRepository реализует интерфейс для работы с историей воспроизведения
type PlayRecordRepository struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPlayRecordRepository создает новый репозиторий истории воспроизведения
func NewPlayRecordRepository(db *bun.DB, logger *zap.Logger) *PlayRecordRepository {
	return &PlayRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create сохраняет запись о воспроизведенном треке
func (r *PlayRecordRepository) Create(record *model.PlayRecord) error {
	ctx := context.Background()

	_, err := r.db.NewInsert().
		Model(record).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create play record: %w", err)
	}

	return nil
}

// RecordPlay строит и сохраняет запись истории по треку.
// Используется контроллером воспроизведения в режиме fire-and-forget.
func (r *PlayRecordRepository) RecordPlay(chatID int64, track *model.Track) error {
	return r.Create(&model.PlayRecord{
		ChatID:   chatID,
		TrackID:  track.ID,
		Title:    track.Title,
		Artists:  track.Artists,
		Album:    track.Album,
		PlayedBy: track.AddedBy,
		PlayedAt: time.Now(),
	})
}

// TopTracks возвращает самые воспроизводимые треки чата
func (r *PlayRecordRepository) TopTracks(chatID int64, limit int) ([]model.TopTrack, error) {
	ctx := context.Background()
	var tracks []model.TopTrack

	err := r.db.NewSelect().
		Model((*model.PlayRecord)(nil)).
		Column("track_id", "title", "artists").
		ColumnExpr("COUNT(*) AS play_count").
		Where("chat_id = ?", chatID).
		Group("track_id", "title", "artists").
		OrderExpr("play_count DESC").
		Limit(limit).
		Scan(ctx, &tracks)
	if err != nil {
		return nil, fmt.Errorf("failed to get top tracks: %w", err)
	}

	return tracks, nil
}

// CountByChat возвращает общее число воспроизведений в чате
func (r *PlayRecordRepository) CountByChat(chatID int64) (int, error) {
	ctx := context.Background()

	count, err := r.db.NewSelect().
		Model((*model.PlayRecord)(nil)).
		Where("chat_id = ?", chatID).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count play records: %w", err)
	}

	return count, nil
}
