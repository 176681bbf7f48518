package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"groovebot/internal/config"
	"groovebot/internal/model"

	"go.uber.org/zap"
)

// Controller управляет сессиями воспроизведения.
//
// Каждая операция захватывает лок сессии на время критической секции,
// включая обращения к бекенду. Команды пользователей и асинхронные
// уведомления об окончании стрима проходят через один и тот же лок,
// поэтому для одного чата они полностью упорядочены.
type Controller struct {
	backend  VoiceBackend
	resolver MediaResolver
	recorder PlayRecorder

	queue    *QueueStore
	registry *Registry
	timers   *TimerSupervisor

	defaultVolume  int
	autoplayDelay  time.Duration
	idleLeaveDelay time.Duration

	events   chan StreamEnded
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// PlayResult описывает исход команды воспроизведения
type PlayResult struct {
	Track *model.Track
	// Queued — трек поставлен в очередь, а не заиграл сразу
	Queued bool
	// Position — позиция в очереди (с единицы), если Queued
	Position int
}

// NewController создает новый контроллер воспроизведения
func NewController(cfg *config.Config, backend VoiceBackend, resolver MediaResolver, recorder PlayRecorder, logger *zap.Logger) *Controller {
	return &Controller{
		backend:        backend,
		resolver:       resolver,
		recorder:       recorder,
		queue:          NewQueueStore(cfg.MaxQueueSize, cfg.MaxHistorySize, logger),
		registry:       NewRegistry(logger),
		timers:         NewTimerSupervisor(logger),
		defaultVolume:  cfg.DefaultVolume,
		autoplayDelay:  cfg.AutoplayDelay,
		idleLeaveDelay: cfg.IdleLeaveDelay,
		events:         make(chan StreamEnded, 64),
		stopChan:       make(chan struct{}),
		logger:         logger,
	}
}

// Start запускает цикл обработки событий окончания стрима
func (c *Controller) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Event loop stopped by context")
				return
			case <-c.stopChan:
				c.logger.Info("Event loop stopped")
				return
			case ev := <-c.events:
				c.handleStreamEnd(ev.ChatID)
			}
		}
	}()
}

// Stop отменяет все таймеры и останавливает цикл событий
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
	})
	c.timers.Stop()
	c.wg.Wait()
}

// OnStreamEnd принимает уведомление бекенда об окончании стрима
func (c *Controller) OnStreamEnd(chatID int64) {
	select {
	case c.events <- StreamEnded{ChatID: chatID}:
	default:
		c.logger.Warn("Stream end event dropped, channel full",
			zap.Int64("chat_id", chatID))
	}
}

// Join входит в голосовой чат и регистрирует сессию.
// Повторный вызов для активной сессии идемпотентен.
func (c *Controller) Join(ctx context.Context, chatID, userID int64) error {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	if s, ok := c.registry.Get(chatID); ok && s.State == StateActive {
		return nil
	}

	session := NewSession(chatID, userID, c.defaultVolume)
	session.State = StateJoining

	err := c.backend.Join(ctx, chatID)
	switch {
	case err == nil:
	case errors.Is(err, ErrAlreadyInCall):
		// Бекенд уже в чате: сверяем локальное состояние вместо ошибки
		c.logger.Info("Already in voice chat, reconciling state",
			zap.Int64("chat_id", chatID))
	default:
		c.logger.Error("Failed to join voice chat",
			zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrJoinFailed, err)
	}

	session.State = StateActive
	if err := c.registry.Create(session); err != nil {
		return err
	}

	c.logger.Info("Joined voice chat",
		zap.Int64("chat_id", chatID), zap.Int64("user_id", userID))
	return nil
}

// Play воспроизводит трек либо ставит его в очередь.
//
// Если текущего трека нет, трек играет сразу. Если текущий трек есть,
// новый уходит в очередь: у сессии не более одного текущего трека.
func (c *Controller) Play(ctx context.Context, chatID int64, track *model.Track, userID int64) (*PlayResult, error) {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok || session.State != StateActive {
		return nil, ErrNotInCall
	}

	submitted := track.WithSubmitter(userID, time.Now())

	if session.Current != nil {
		position, err := c.queue.Add(chatID, submitted)
		if err != nil {
			return nil, err
		}
		return &PlayResult{Track: submitted, Queued: true, Position: position}, nil
	}

	played, err := c.playLocked(ctx, session, submitted)
	if err != nil {
		return nil, err
	}
	return &PlayResult{Track: played}, nil
}

// playLocked запускает трек в сессии. Вызывается только под локом сессии.
//
// Первым действием отменяет таймер простоя и settle-таймер, до
// обращения к бекенду: иначе остается окно, в котором устаревший
// таймер сработает уже после возобновления воспроизведения.
func (c *Controller) playLocked(ctx context.Context, session *Session, track *model.Track) (*model.Track, error) {
	c.timers.Cancel(session.ChatID, TimerIdleLeave)
	c.timers.Cancel(session.ChatID, TimerSettle)
	session.IdleDeadline = time.Time{}

	if !track.HasMedia() {
		resolved, err := c.resolver.AcquireMedia(ctx, track)
		if err != nil {
			c.logger.Error("Failed to acquire media",
				zap.Int64("chat_id", session.ChatID),
				zap.String("track", track.Title),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %s", ErrDownloadUnavailable, track.Title)
		}
		track = resolved
	}

	if err := c.backend.ChangeStream(ctx, session.ChatID, track.MediaPath); err != nil {
		if errors.Is(err, ErrNotInCall) {
			c.dropSessionLocked(session.ChatID)
			return nil, ErrNotInCall
		}
		return nil, fmt.Errorf("failed to change stream: %w", err)
	}

	session.Current = track
	session.Paused = false
	session.StreamSeq++
	c.recordPlay(session.ChatID, track)

	c.logger.Info("Playing track",
		zap.Int64("chat_id", session.ChatID),
		zap.String("track", track.Title),
		zap.String("artists", track.Artists))
	return track, nil
}

// Pause приостанавливает текущий стрим
func (c *Controller) Pause(ctx context.Context, chatID int64) error {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return ErrNotInCall
	}

	if err := c.backend.Pause(ctx, chatID); err != nil {
		if errors.Is(err, ErrNotInCall) {
			c.dropSessionLocked(chatID)
			return ErrNotInCall
		}
		return fmt.Errorf("failed to pause stream: %w", err)
	}

	session.Paused = true
	c.logger.Info("Paused playback", zap.Int64("chat_id", chatID))
	return nil
}

// Resume возобновляет текущий стрим
func (c *Controller) Resume(ctx context.Context, chatID int64) error {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return ErrNotInCall
	}

	if err := c.backend.Resume(ctx, chatID); err != nil {
		if errors.Is(err, ErrNotInCall) {
			c.dropSessionLocked(chatID)
			return ErrNotInCall
		}
		return fmt.Errorf("failed to resume stream: %w", err)
	}

	session.Paused = false
	c.logger.Info("Resumed playback", zap.Int64("chat_id", chatID))
	return nil
}

// Skip пропускает текущий трек и запускает следующий из очереди.
// Требует текущего трека; при пустой очереди снимает текущий трек и
// возвращает ErrNoMoreTracks, оставляя сессию активной: выход по
// простою происходит только через уведомление об окончании стрима.
func (c *Controller) Skip(ctx context.Context, chatID int64) (*model.Track, error) {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return nil, ErrNotInCall
	}

	if session.Current == nil {
		return nil, ErrNoMoreTracks
	}

	next := c.queue.PopNext(chatID)
	if next == nil {
		session.Current = nil
		return nil, ErrNoMoreTracks
	}

	return c.playLocked(ctx, session, next)
}

// SetVolume устанавливает громкость сессии. Значения вне диапазона
// 0-200 отклоняются, а не подрезаются.
func (c *Controller) SetVolume(ctx context.Context, chatID int64, volume int) error {
	if volume < 0 || volume > 200 {
		return fmt.Errorf("%w: %d", ErrInvalidVolume, volume)
	}

	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return ErrNotInCall
	}

	if err := c.backend.SetVolume(ctx, chatID, volume); err != nil {
		if errors.Is(err, ErrNotInCall) {
			c.dropSessionLocked(chatID)
			return ErrNotInCall
		}
		return fmt.Errorf("failed to set volume: %w", err)
	}

	session.Volume = volume
	c.logger.Info("Volume changed",
		zap.Int64("chat_id", chatID), zap.Int("volume", volume))
	return nil
}

// Leave выходит из голосового чата, очищает очередь и удаляет сессию.
// Идемпотентен: выход из чата, в котором бота нет, не ошибка.
func (c *Controller) Leave(ctx context.Context, chatID int64) error {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return nil
	}
	return c.leaveLocked(ctx, session)
}

// leaveLocked выполняет выход. Вызывается только под локом сессии.
func (c *Controller) leaveLocked(ctx context.Context, session *Session) error {
	session.State = StateLeaving

	if err := c.backend.Leave(ctx, session.ChatID); err != nil && !errors.Is(err, ErrNotInCall) {
		session.State = StateActive
		return fmt.Errorf("failed to leave voice chat: %w", err)
	}

	c.timers.CancelAll(session.ChatID)
	c.queue.Clear(session.ChatID)
	c.registry.Remove(session.ChatID)

	c.logger.Info("Left voice chat", zap.Int64("chat_id", session.ChatID))
	return nil
}

// dropSessionLocked убирает устаревшую сессию, когда бекенд сообщил,
// что бота в чате уже нет. Вызывается только под локом сессии.
func (c *Controller) dropSessionLocked(chatID int64) {
	c.timers.CancelAll(chatID)
	c.registry.Remove(chatID)
	c.logger.Warn("Dropped stale session", zap.Int64("chat_id", chatID))
}

// handleStreamEnd ставит settle-таймер перед автовоспроизведением.
// Короткая пауза гасит гонку между окончанием стрима и треком,
// добавленным в тот же момент. Номер поколения стрима снимается под
// локом, чтобы сработавший колбек мог распознать, что стрим за время
// ожидания заменила команда skip или play.
func (c *Controller) handleStreamEnd(chatID int64) {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return
	}
	seq := session.StreamSeq

	c.logger.Info("Stream ended", zap.Int64("chat_id", chatID))
	c.timers.Schedule(chatID, TimerSettle, c.autoplayDelay, func() {
		c.autoplayNext(chatID, seq)
	})
}

// autoplayNext запускает следующий трек после окончания стрима либо
// взводит таймер простоя при пустой очереди. Колбек с устаревшим
// поколением стрима ничего не делает: новый стрим уже запущен
func (c *Controller) autoplayNext(chatID int64, seq uint64) {
	ctx := context.Background()

	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return
	}
	if session.StreamSeq != seq {
		return
	}

	if next := c.queue.PopNext(chatID); next != nil {
		if _, err := c.playLocked(ctx, session, next); err != nil {
			c.logger.Error("Autoplay failed",
				zap.Int64("chat_id", chatID), zap.Error(err))
			c.scheduleIdleLeaveLocked(session)
		}
		return
	}

	// Стрим закончился, играть нечего: текущего трека больше нет
	session.Current = nil
	c.scheduleIdleLeaveLocked(session)
}

// scheduleIdleLeaveLocked взводит таймер простоя. Вызывается только под
// локом сессии.
func (c *Controller) scheduleIdleLeaveLocked(session *Session) {
	session.Current = nil
	session.IdleDeadline = time.Now().Add(c.idleLeaveDelay)
	c.timers.Schedule(session.ChatID, TimerIdleLeave, c.idleLeaveDelay, func() {
		c.idleLeave(session.ChatID)
	})

	c.logger.Info("Idle leave timer scheduled",
		zap.Int64("chat_id", session.ChatID),
		zap.Duration("delay", c.idleLeaveDelay))
}

// idleLeave срабатывает по таймеру простоя. Условие выхода обязательно
// перепроверяется под локом сессии: проверка до захвата лока — гонка
// с параллельной командой play.
func (c *Controller) idleLeave(chatID int64) {
	ctx := context.Background()

	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return
	}

	if session.Current != nil || c.queue.HasTracks(chatID) {
		// За время ожидания появился трек, выходить не нужно
		return
	}

	c.logger.Info("No more tracks in queue, leaving voice chat",
		zap.Int64("chat_id", chatID))
	if err := c.leaveLocked(ctx, session); err != nil {
		c.logger.Error("Idle leave failed",
			zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// recordPlay отправляет запись в историю воспроизведения, не блокируя
// операцию и не завися от ее успеха
func (c *Controller) recordPlay(chatID int64, track *model.Track) {
	if c.recorder == nil {
		return
	}
	go func() {
		if err := c.recorder.RecordPlay(chatID, track); err != nil {
			c.logger.Warn("Failed to record play",
				zap.Int64("chat_id", chatID),
				zap.String("track", track.Title),
				zap.Error(err))
		}
	}()
}

// Queue возвращает очередь чата в порядке воспроизведения
func (c *Controller) Queue(chatID int64) []*model.Track {
	return c.queue.List(chatID)
}

// History возвращает историю воспроизведения чата
func (c *Controller) History(chatID int64) []*model.Track {
	return c.queue.ListHistory(chatID)
}

// PeekNext возвращает следующий трек очереди, не снимая его
func (c *Controller) PeekNext(chatID int64) *model.Track {
	return c.queue.Peek(chatID)
}

// RemoveAt удаляет трек из очереди по индексу
func (c *Controller) RemoveAt(chatID int64, index int) (*model.Track, error) {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)
	return c.queue.RemoveAt(chatID, index)
}

// Move переставляет трек в очереди
func (c *Controller) Move(chatID int64, from, to int) error {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)
	return c.queue.Move(chatID, from, to)
}

// SessionInfo возвращает копию состояния сессии чата
func (c *Controller) SessionInfo(chatID int64) (Snapshot, bool) {
	c.registry.LockSession(chatID)
	defer c.registry.UnlockSession(chatID)

	session, ok := c.registry.Get(chatID)
	if !ok {
		return Snapshot{}, false
	}
	return session.snapshot(), true
}

// ActiveSessions возвращает число активных сессий
func (c *Controller) ActiveSessions() int {
	return c.registry.Count()
}
