package lyrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestFetchByURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>
			<div data-lyrics-container="true">[Verse 1]<br>First line<br>Second line<br><br>[Chorus]<br>Chorus line</div>
		</body></html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	lyrics, err := client.FetchByURL(server.URL + "/Song-lyrics")
	if err != nil {
		t.Fatalf("FetchByURL failed: %v", err)
	}

	if strings.Contains(lyrics, "[Verse 1]") || strings.Contains(lyrics, "[Chorus]") {
		t.Errorf("section markers not removed: %q", lyrics)
	}
	for _, line := range []string{"First line", "Second line", "Chorus line"} {
		if !strings.Contains(lyrics, line) {
			t.Errorf("lyrics missing %q: %q", line, lyrics)
		}
	}
}

func TestFetchByURL_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><p>nothing here</p></body></html>`))
	}))
	defer server.Close()

	client := NewClient(server.URL, zap.NewNop())

	if _, err := client.FetchByURL(server.URL + "/Missing-lyrics"); err == nil {
		t.Error("FetchByURL on page without lyrics must fail")
	}
}

func TestSongURL(t *testing.T) {
	client := NewClient("https://genius.com", zap.NewNop())

	got := client.songURL("Bohemian Rhapsody", "Queen")
	want := "https://genius.com/Queen-bohemian-rhapsody-lyrics"
	if got != want {
		t.Errorf("songURL = %s, want %s", got, want)
	}
}

func TestPages(t *testing.T) {
	lyrics := strings.Repeat("line one\n", 50)

	pages := Pages(lyrics, 100)
	if len(pages) < 2 {
		t.Fatalf("pages = %d, want at least 2", len(pages))
	}
	for i, page := range pages {
		if len(page) > 100+len("line one") {
			t.Errorf("page %d too long: %d", i, len(page))
		}
	}

	if got := Pages("", 100); got != nil {
		t.Errorf("Pages of empty lyrics = %v, want nil", got)
	}
}
