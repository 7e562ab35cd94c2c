package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/media"
	"marquee/internal/testsupport"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(func(c *commandContext) {
		c.newLogger = func(*config.Config) (*slog.Logger, error) { return logging.NewNop(), nil }
	})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"TMDB_API_KEY", "OMDB_API_KEY", "OPENAI_API_KEY", "LLM_API_KEY", "MARQUEE_API_TOKEN"} {
		t.Setenv(key, "")
	}
	return home
}

func TestConfigInitWritesSample(t *testing.T) {
	isolateHome(t)
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey("tmdb-secret-1234"))
	path := writeConfig(t, cfg)

	out, _, err := runCLI(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "tmdb-secret-1234") {
		t.Fatalf("secret leaked into output:\n%s", out)
	}
	if !strings.Contains(out, "****1234") {
		t.Fatalf("expected masked key in output:\n%s", out)
	}
}

func TestMissingTMDBKeyFails(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBKey(""))
	path := writeConfig(t, cfg)

	_, _, err := runCLI(t, "--config", path, "cache", "stats")
	if err == nil || !strings.Contains(err.Error(), "tmdb.api_key") {
		t.Fatalf("expected tmdb key error, got %v", err)
	}
}

type upstreams struct {
	tmdb *httptest.Server
	omdb *httptest.Server
	llm  *httptest.Server
}

// newUpstreams serves two discoverable movies (ids 11 and 12) rated 6.5 and 8.2.
func newUpstreams(t *testing.T) upstreams {
	t.Helper()
	tmdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/discover/movie":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `{"page":1,"total_pages":1,"results":[{"id":11,"genre_ids":[18]},{"id":12,"genre_ids":[18]}]}`)
				return
			}
			fmt.Fprint(w, `{"page":2,"total_pages":1,"results":[]}`)
		case strings.HasSuffix(r.URL.Path, "/videos"):
			fmt.Fprint(w, `{"results":[]}`)
		case r.URL.Path == "/movie/11":
			fmt.Fprint(w, `{"id":11,"title":"Quiet Harbor","overview":"A drama.","release_date":"2019-05-01","genres":[{"id":18}],"imdb_id":"tt0000011"}`)
		case r.URL.Path == "/movie/12":
			fmt.Fprint(w, `{"id":12,"title":"Loud Harbor","overview":"Another drama.","release_date":"2020-05-01","genres":[{"id":18}],"imdb_id":"tt0000012"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	omdb := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("i") {
		case "tt0000011":
			fmt.Fprint(w, `{"Response":"True","imdbRating":"6.5","imdbVotes":"2,000"}`)
		case "tt0000012":
			fmt.Fprint(w, `{"Response":"True","imdbRating":"8.2","imdbVotes":"15,000"}`)
		default:
			fmt.Fprint(w, `{"Response":"False","Error":"Incorrect IMDb ID."}`)
		}
	}))
	llm := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not used", http.StatusServiceUnavailable)
	}))
	t.Cleanup(func() {
		tmdb.Close()
		omdb.Close()
		llm.Close()
	})
	return upstreams{tmdb: tmdb, omdb: omdb, llm: llm}
}

func TestRecommendJSONEndToEnd(t *testing.T) {
	isolateHome(t)
	up := newUpstreams(t)
	cfg := testsupport.NewConfig(t,
		testsupport.WithUpstreams(up.tmdb.URL, up.omdb.URL, up.llm.URL),
		testsupport.WithWorkers(2),
	)
	cfg.TMDB.RequestsPerSecond = 1000
	path := writeConfig(t, cfg)

	out, _, err := runCLI(t, "--config", path, "--json", "recommend", "--sort", "rating")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	var cards []media.Card
	if err := json.Unmarshal([]byte(out), &cards); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d: %s", len(cards), out)
	}
	if cards[0].TMDBID != 12 || cards[1].TMDBID != 11 {
		t.Fatalf("expected rating order [12 11], got [%d %d]", cards[0].TMDBID, cards[1].TMDBID)
	}
	if cards[0].Title != "Loud Harbor" || cards[0].IMDbVotes != 15000 {
		t.Fatalf("unexpected first card %+v", cards[0])
	}

	out, _, err = runCLI(t, "--config", path, "--json", "recommend", "--min-rating", "7")
	if err != nil {
		t.Fatalf("recommend with min rating: %v", err)
	}
	cards = nil
	if err := json.Unmarshal([]byte(out), &cards); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(cards) != 1 || cards[0].TMDBID != 12 {
		t.Fatalf("expected only id 12, got %+v", cards)
	}

	if _, _, err := runCLI(t, "--config", path, "status", "set", "movie", "12", "seen", "--user", "3"); err != nil {
		t.Fatalf("status set: %v", err)
	}
	out, _, err = runCLI(t, "--config", path, "--json", "recommend", "--user", "3")
	if err != nil {
		t.Fatalf("recommend for user: %v", err)
	}
	cards = nil
	if err := json.Unmarshal([]byte(out), &cards); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(cards) != 1 || cards[0].TMDBID != 11 {
		t.Fatalf("expected seen title excluded, got %+v", cards)
	}

	out, _, err = runCLI(t, "--config", path, "--json", "status", "list", "movie", "seen", "--user", "3")
	if err != nil {
		t.Fatalf("status list: %v", err)
	}
	cards = nil
	if err := json.Unmarshal([]byte(out), &cards); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(cards) != 1 || cards[0].TMDBID != 12 {
		t.Fatalf("expected seen list [12], got %+v", cards)
	}
}

func TestRecommendRejectsBadFlags(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t)
	path := writeConfig(t, cfg)

	cases := [][]string{
		{"recommend", "--kind", "book"},
		{"recommend", "--sort", "revenue"},
		{"recommend", "--from", "2020", "--to", "2010"},
		{"recommend", "--language", "klingon"},
		{"status", "set", "movie", "abc", "seen"},
		{"status", "set", "movie", "5", "loved"},
	}
	for _, args := range cases {
		if _, _, err := runCLI(t, append([]string{"--config", path}, args...)...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestCacheStatsJSON(t *testing.T) {
	isolateHome(t)
	cfg := testsupport.NewConfig(t)
	path := writeConfig(t, cfg)

	out, _, err := runCLI(t, "--config", path, "--json", "cache", "stats")
	if err != nil {
		t.Fatalf("cache stats: %v", err)
	}
	var stats struct {
		Movies  int `json:"movies"`
		TVShows int `json:"tv_shows"`
	}
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode stats %q: %v", out, err)
	}
	if stats.Movies != 0 || stats.TVShows != 0 {
		t.Fatalf("expected empty cache, got %+v", stats)
	}
}

func TestMaskSecret(t *testing.T) {
	cases := map[string]string{"": "", "abc": "****", "abcdef": "****cdef"}
	for in, want := range cases {
		if got := maskSecret(in); got != want {
			t.Fatalf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseSortAliases(t *testing.T) {
	cases := map[string]string{
		"":                media.SortPopularity,
		"rating":          media.SortVoteAverage,
		"VOTES":           media.SortVoteCount,
		"vote_count.desc": media.SortVoteCount,
	}
	for in, want := range cases {
		got, err := parseSort(in)
		if err != nil || got != want {
			t.Fatalf("parseSort(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
}

func TestTestNotifySendsToTopic(t *testing.T) {
	isolateHome(t)
	var gotTitle string
	topic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
	}))
	t.Cleanup(topic.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = topic.URL
	path := writeConfig(t, cfg)

	out, _, err := runCLI(t, "--config", path, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(out, "Test notification sent") || gotTitle != "marquee - Test" {
		t.Fatalf("unexpected result: out=%q title=%q", out, gotTitle)
	}
}
