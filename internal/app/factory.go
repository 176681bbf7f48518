// Package app содержит фабрику компонентов приложения.
package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"groovebot/internal/config"
	"groovebot/internal/gateway/lyrics"
	"groovebot/internal/gateway/spotify"
	"groovebot/internal/gateway/telegram"
	"groovebot/internal/gateway/voice"
	"groovebot/internal/health"
	"groovebot/internal/middleware"
	"groovebot/internal/playback"
	"groovebot/internal/service"
	"groovebot/internal/storage"
	"groovebot/internal/voting"

	"go.uber.org/zap"
)

// ComponentFactory создает компоненты приложения
type ComponentFactory struct {
	config *config.Config
	logger *zap.Logger
}

// NewComponentFactory создает новую фабрику компонентов
func NewComponentFactory(config *config.Config, logger *zap.Logger) *ComponentFactory {
	if config == nil {
		logger.Fatal("Config cannot be nil")
	}
	if logger == nil {
		panic("Logger cannot be nil")
	}

	return &ComponentFactory{
		config: config,
		logger: logger,
	}
}

// CreateDataDirectories создает директории данных и кэша
func (f *ComponentFactory) CreateDataDirectories() error {
	for _, dir := range []string{f.config.AppDataDir, f.config.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			f.logger.Error("Failed to create directory", zap.String("dir", dir), zap.Error(err))
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f.logger.Info("Data directories ready",
		zap.String("data_dir", f.config.AppDataDir),
		zap.String("cache_dir", f.config.CacheDir))
	return nil
}

// CreateDatabase создает подключение к базе данных и применяет миграции
func (f *ComponentFactory) CreateDatabase() (*storage.Postgres, error) {
	if f.config.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	db, err := storage.NewPostgres(f.config.DatabaseURL, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	f.logger.Info("Database connection created successfully")
	return db, nil
}

// CreateTelegramClient создает клиент Telegram
func (f *ComponentFactory) CreateTelegramClient() (*telegram.Client, error) {
	if f.config.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	client, err := telegram.NewClient(f.config.BotToken, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	f.logger.Info("Telegram client created successfully")
	return client, nil
}

// CreateSpotifyClient создает Spotify клиент
func (f *ComponentFactory) CreateSpotifyClient() (*spotify.Client, error) {
	if f.config.SpotifyClientID == "" || f.config.SpotifyClientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret are required")
	}

	client, err := spotify.NewClient(f.config.SpotifyClientID, f.config.SpotifyClientSecret, f.config.CacheDir, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create spotify client: %w", err)
	}

	f.logger.Info("Spotify client created successfully")
	return client, nil
}

// CreateLyricsClient создает клиент текстов песен
func (f *ComponentFactory) CreateLyricsClient() *lyrics.Client {
	client := lyrics.NewClient(f.config.LyricsBaseURL, f.logger)
	f.logger.Info("Lyrics client created successfully")
	return client
}

// CreatePlayback создает голосовой бекенд и контроллер воспроизведения
func (f *ComponentFactory) CreatePlayback(resolver playback.MediaResolver, recorder playback.PlayRecorder) (*playback.Controller, *voice.LocalBackend) {
	backend := voice.NewLocalBackend(f.logger)
	controller := playback.NewController(f.config, backend, resolver, recorder, f.logger)
	backend.SetStreamEndHandler(controller.OnStreamEnd)

	f.logger.Info("Playback controller created successfully")
	return controller, backend
}

// CreateVoting создает менеджер голосований
func (f *ComponentFactory) CreateVoting(controller *playback.Controller) *voting.Manager {
	timers := playback.NewTimerSupervisor(f.logger)
	manager := voting.NewManager(f.config.VoteThreshold, f.config.VoteExpiry, timers, f.logger)

	// Прошедшее голосование за пропуск выполняет обычный Skip
	manager.RegisterHandler(voting.KindSkip, func(chatID int64, targetID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := controller.Skip(ctx, chatID); err != nil {
			f.logger.Warn("Vote-skip failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	})
	manager.RegisterHandler(voting.KindStop, func(chatID int64, targetID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := controller.Leave(ctx, chatID); err != nil {
			f.logger.Warn("Vote-stop failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	})

	f.logger.Info("Voting manager created successfully")
	return manager
}

// CreateMiddleware создает middleware
func (f *ComponentFactory) CreateMiddleware() *middleware.Middleware {
	middlewareManager := middleware.New(f.logger)
	f.logger.Info("Middleware created successfully")
	return middlewareManager
}

// CreateHealthServer создает сервер health check
func (f *ComponentFactory) CreateHealthServer(db *storage.Postgres, sessions health.SessionCounter) (*health.Server, error) {
	if !f.config.HealthCheckEnabled {
		f.logger.Info("Health check server is disabled")
		return nil, nil
	}

	if f.config.HealthPort == "" {
		return nil, fmt.Errorf("health port is required when health check is enabled")
	}

	server := health.NewServer(f.config.HealthPort, f.logger, db, sessions)
	f.logger.Info("Health check server created", zap.String("port", f.config.HealthPort))
	return server, nil
}

// CreateBot создает полный экземпляр бота со всеми зависимостями
func (f *ComponentFactory) CreateBot() (*Bot, error) {
	if err := f.CreateDataDirectories(); err != nil {
		return nil, err
	}

	db, err := f.CreateDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	spotifyClient, err := f.CreateSpotifyClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create spotify client: %w", err)
	}

	lyricsClient := f.CreateLyricsClient()

	history := db.GetPlayRecordRepository()
	controller, backend := f.CreatePlayback(spotifyClient, history)
	votingManager := f.CreateVoting(controller)

	services := service.NewServices(controller, votingManager, spotifyClient, lyricsClient, history, f.logger)

	tgClient, err := f.CreateTelegramClient()
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}

	healthServer, err := f.CreateHealthServer(db, controller)
	if err != nil {
		return nil, fmt.Errorf("failed to create health server: %w", err)
	}

	middlewareManager := f.CreateMiddleware()

	bot, err := NewBot(f.config, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	bot.db = db
	bot.telegram = tgClient
	bot.health = healthServer
	bot.services = services
	bot.middleware = middlewareManager
	bot.playback = controller
	bot.backend = backend

	f.logger.Info("Bot created successfully with all dependencies")
	return bot, nil
}
