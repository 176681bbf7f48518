// Package spotify реализует поиск треков и получение аудио через Spotify Web API.
package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"groovebot/internal/model"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
)

// tokenTransport добавляет токен к каждому запросу
type tokenTransport struct {
	base      http.RoundTripper
	token     string
	tokenType string
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", t.tokenType+" "+t.token)

	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// Client представляет клиент для работы с Spotify API
type Client struct {
	clientID     string
	clientSecret string
	cacheDir     string
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient создает новый Spotify клиент с использованием Client Credentials Flow
func NewClient(clientID, clientSecret, cacheDir string, logger *zap.Logger) (*Client, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify client ID and secret are required")
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	logger.Info("Spotify client created successfully with client credentials flow")

	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		cacheDir:     cacheDir,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}, nil
}

// createSpotifyClient создает новый Spotify клиент для каждого запроса
func (c *Client) createSpotifyClient(ctx context.Context) (*spotify.Client, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, "POST", "https://accounts.spotify.com/api/token", strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if tokenResponse.AccessToken == "" {
		return nil, fmt.Errorf("no access token received")
	}

	tokenClient := &http.Client{
		Transport: &tokenTransport{
			base:      http.DefaultTransport,
			token:     tokenResponse.AccessToken,
			tokenType: tokenResponse.TokenType,
		},
	}

	return spotify.New(tokenClient), nil
}

// Search ищет треки по запросу
func (c *Client) Search(ctx context.Context, query string, limit int) ([]*model.Track, error) {
	client, err := c.createSpotifyClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create spotify client: %w", err)
	}

	result, err := client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	if result.Tracks == nil {
		return nil, nil
	}

	tracks := make([]*model.Track, 0, len(result.Tracks.Tracks))
	for i := range result.Tracks.Tracks {
		tracks = append(tracks, convertTrack(&result.Tracks.Tracks[i]))
	}

	c.logger.Info("Search completed",
		zap.String("query", query),
		zap.Int("results", len(tracks)))
	return tracks, nil
}

// GetTrack получает трек по его Spotify ID
func (c *Client) GetTrack(ctx context.Context, id string) (*model.Track, error) {
	client, err := c.createSpotifyClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create spotify client: %w", err)
	}

	track, err := client.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get track %s: %w", id, err)
	}

	return convertTrack(track), nil
}

// AcquireMedia скачивает аудио трека в кэш и возвращает копию трека с
// заполненным путем к файлу
func (c *Client) AcquireMedia(ctx context.Context, track *model.Track) (*model.Track, error) {
	if track.PreviewURL == "" {
		return nil, fmt.Errorf("no audio available for track %s", track.Title)
	}

	cacheFile := filepath.Join(c.cacheDir, track.ID+".mp3")

	// Файл мог быть скачан раньше
	if _, err := os.Stat(cacheFile); err == nil {
		c.logger.Info("Using cached track",
			zap.String("track", track.Title),
			zap.String("path", cacheFile))
		return track.WithMedia(cacheFile), nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", track.PreviewURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download track: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Failed to close response body", zap.Error(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(cacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache file: %w", err)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		_ = out.Close()
		_ = os.Remove(cacheFile)
		return nil, fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close cache file: %w", err)
	}

	c.logger.Info("Downloaded track",
		zap.String("track", track.Title),
		zap.String("path", cacheFile))
	return track.WithMedia(cacheFile), nil
}

// convertTrack переводит трек Spotify во внутреннюю модель
func convertTrack(track *spotify.FullTrack) *model.Track {
	artists := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		artists = append(artists, artist.Name)
	}

	albumArt := ""
	if len(track.Album.Images) > 0 {
		albumArt = track.Album.Images[0].URL
	}

	externalURL := ""
	if u, ok := track.ExternalURLs["spotify"]; ok {
		externalURL = u
	}

	return &model.Track{
		ID:          string(track.ID),
		Title:       track.Name,
		Artists:     strings.Join(artists, ", "),
		Album:       track.Album.Name,
		Duration:    time.Duration(track.Duration) * time.Millisecond,
		PreviewURL:  track.PreviewURL,
		ExternalURL: externalURL,
		AlbumArtURL: albumArt,
	}
}
