package handlers

import (
	"fmt"
	"strings"
	"time"

	"groovebot/internal/model"
	"groovebot/internal/playback"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// formatDuration форматирует длительность как m:ss
func formatDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// formatTrack форматирует одну строку с треком
func formatTrack(track *model.Track) string {
	line := fmt.Sprintf("%s — %s", track.Artists, track.Title)
	if track.Duration > 0 {
		line += fmt.Sprintf(" (%s)", formatDuration(track.Duration))
	}
	if track.ExternalURL != "" {
		line = fmt.Sprintf("%s (<a href=\"%s\">Spotify</a>)", line, track.ExternalURL)
	}
	return line
}

// formatNowPlaying форматирует сообщение о текущем треке
func formatNowPlaying(snapshot playback.Snapshot) string {
	if snapshot.Current == nil {
		return "Сейчас ничего не играет."
	}

	status := "▶️ Сейчас играет"
	if snapshot.Paused {
		status = "⏸ На паузе"
	}
	return fmt.Sprintf("%s: %s\n🔊 Громкость: %d", status, formatTrack(snapshot.Current), snapshot.Volume)
}

// formatQueue форматирует список очереди
func formatQueue(tracks []*model.Track) string {
	if len(tracks) == 0 {
		return "Очередь пуста."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🎵 Очередь (%d):\n", len(tracks)))
	for i, track := range tracks {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatTrack(track)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatHistory форматирует историю воспроизведения
func formatHistory(tracks []*model.Track) string {
	if len(tracks) == 0 {
		return "История пуста."
	}

	var sb strings.Builder
	sb.WriteString("📜 Недавно игравшие:\n")
	for i, track := range tracks {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatTrack(track)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// formatTopTracks форматирует статистику чата
func formatTopTracks(rows []model.TopTrack, total int) string {
	if len(rows) == 0 {
		return "В этом чате еще ничего не игралось."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 Всего воспроизведений: %d\n\n🏆 Топ треков:\n", total))
	for i, row := range rows {
		sb.WriteString(fmt.Sprintf("%d. %s — %s (%d)\n", i+1, row.Artists, row.Title, row.PlayCount))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// controlsKeyboard возвращает клавиатуру управления воспроизведением
func controlsKeyboard() tgbotapi.InlineKeyboardMarkup {
	titler := cases.Title(language.English)

	controls := []string{"pause", "resume", "skip", "queue"}
	var row []tgbotapi.InlineKeyboardButton
	for _, control := range controls {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			titler.String(control),
			"ctl_"+control,
		))
	}

	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}

// searchKeyboard возвращает клавиатуру выбора трека из результатов поиска
func searchKeyboard(tracks []*model.Track) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, track := range tracks {
		label := fmt.Sprintf("%s — %s", track.Artists, track.Title)
		// Обрезаем по рунам: срез по байтам ломает кириллицу
		if runes := []rune(label); len(runes) > 60 {
			label = string(runes[:57]) + "..."
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "track_"+track.ID),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// lyricsKeyboard возвращает клавиатуру пагинации текста песни
func lyricsKeyboard(page, total int) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️", fmt.Sprintf("lyr_%d", page-1)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%d/%d", page+1, total), "lyr_noop"))
	if page < total-1 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡️", fmt.Sprintf("lyr_%d", page+1)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(row...))
}
