// Package lyrics реализует получение текстов песен со страниц Genius.
package lyrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

var (
	sectionMarkers = regexp.MustCompile(`\[.*?\]`)
	blankLines     = regexp.MustCompile(`\n{3,}`)
	slugCleanup    = regexp.MustCompile(`[^a-z0-9]+`)
)

// Client представляет клиент для получения текстов песен
type Client struct {
	baseURL string
	logger  *zap.Logger
}

// NewClient создает новый клиент текстов песен
func NewClient(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// newCollector создает collector с общими настройками
func (c *Client) newCollector() *colly.Collector {
	collector := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"),
	)
	collector.SetRequestTimeout(30 * time.Second)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.5")
	})

	return collector
}

// Fetch получает текст песни по названию и исполнителю
func (c *Client) Fetch(title, artist string) (string, error) {
	url := c.songURL(title, artist)
	return c.FetchByURL(url)
}

// FetchByURL извлекает текст песни со страницы
func (c *Client) FetchByURL(url string) (string, error) {
	collector := c.newCollector()

	var parts []string
	collector.OnHTML(`div[data-lyrics-container="true"]`, func(e *colly.HTMLElement) {
		parts = append(parts, extractText(e.DOM))
	})

	if err := collector.Visit(url); err != nil {
		return "", fmt.Errorf("failed to fetch lyrics page: %w", err)
	}
	collector.Wait()

	if len(parts) == 0 {
		c.logger.Warn("No lyrics container found", zap.String("url", url))
		return "", fmt.Errorf("lyrics not found at %s", url)
	}

	lyrics := cleanLyrics(strings.Join(parts, "\n"))
	c.logger.Info("Fetched lyrics", zap.String("url", url), zap.Int("length", len(lyrics)))
	return lyrics, nil
}

// songURL строит адрес страницы песни из названия и исполнителя
func (c *Client) songURL(title, artist string) string {
	slug := slugify(artist + " " + title)
	return fmt.Sprintf("%s/%s-lyrics", c.baseURL, slug)
}

// slugify переводит строку в формат адресов Genius
func slugify(s string) string {
	s = strings.ToLower(s)
	s = slugCleanup.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return s
	}
	// Первая буква адреса заглавная
	return strings.ToUpper(s[:1]) + s[1:]
}

// extractText собирает текст с переносами строк вместо <br>
func extractText(sel *goquery.Selection) string {
	html, err := sel.Html()
	if err != nil {
		return sel.Text()
	}

	html = strings.ReplaceAll(html, "<br/>", "\n")
	html = strings.ReplaceAll(html, "<br>", "\n")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return sel.Text()
	}
	return doc.Text()
}

// cleanLyrics убирает метки секций и лишние пустые строки
func cleanLyrics(lyrics string) string {
	lyrics = sectionMarkers.ReplaceAllString(lyrics, "")
	lyrics = blankLines.ReplaceAllString(lyrics, "\n\n")
	return strings.TrimSpace(lyrics)
}

// Pages разбивает текст на страницы для отправки в Telegram
func Pages(lyrics string, pageSize int) []string {
	if lyrics == "" {
		return nil
	}
	if pageSize <= 0 {
		pageSize = 900
	}

	var pages []string
	var current strings.Builder

	for _, line := range strings.Split(lyrics, "\n") {
		if current.Len() > 0 && current.Len()+len(line)+1 > pageSize {
			pages = append(pages, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}

	if strings.TrimSpace(current.String()) != "" {
		pages = append(pages, strings.TrimSpace(current.String()))
	}
	return pages
}
