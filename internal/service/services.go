// Package service содержит агрегат сервисов приложения.
package service

import (
	"groovebot/internal/gateway/lyrics"
	"groovebot/internal/gateway/spotify"
	"groovebot/internal/model"
	"groovebot/internal/playback"
	"groovebot/internal/voting"

	"go.uber.org/zap"
)

// Services содержит все сервисы приложения
type Services struct {
	Playback *playback.Controller
	Voting   *voting.Manager
	Spotify  *spotify.Client
	Lyrics   *lyrics.Client
	History  model.PlayRecordRepository

	logger *zap.Logger
}

// NewServices создает новый агрегат сервисов
func NewServices(
	playbackController *playback.Controller,
	votingManager *voting.Manager,
	spotifyClient *spotify.Client,
	lyricsClient *lyrics.Client,
	history model.PlayRecordRepository,
	logger *zap.Logger,
) *Services {
	return &Services{
		Playback: playbackController,
		Voting:   votingManager,
		Spotify:  spotifyClient,
		Lyrics:   lyricsClient,
		History:  history,
		logger:   logger,
	}
}
