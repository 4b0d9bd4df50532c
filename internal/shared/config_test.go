package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./mindmap.db" {
			t.Errorf("expected database path ./mindmap.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Server.SessionTTL.Duration != 720*time.Hour {
			t.Errorf("expected session ttl 720h, got %s", config.Server.SessionTTL)
		}

		if config.Credentials.Spotify.RedirectURI != "http://127.0.0.1:5000/callback" {
			t.Errorf("unexpected redirect uri %s", config.Credentials.Spotify.RedirectURI)
		}

		if config.Recommendations.Count != 6 || config.Recommendations.Margin != 5 {
			t.Errorf("expected count 6 margin 5, got %d/%d", config.Recommendations.Count, config.Recommendations.Margin)
		}

		if config.Recommendations.RememberShown {
			t.Error("remember_shown should default to false")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
host = "0.0.0.0"
port = 8080
session_ttl = "1h"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:8080/callback"

[credentials.lastfm]
api_key = "lastfm_key"

[recommendations]
remember_shown = true
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if config.Server.SessionTTL.Duration != time.Hour {
			t.Errorf("expected session ttl 1h, got %s", config.Server.SessionTTL)
		}
		if config.Credentials.LastFM.APIKey != "lastfm_key" {
			t.Errorf("expected lastfm key, got %s", config.Credentials.LastFM.APIKey)
		}
		if !config.Recommendations.RememberShown {
			t.Error("expected remember_shown to be true")
		}
		if config.Recommendations.Count != 6 {
			t.Errorf("expected count to keep default 6, got %d", config.Recommendations.Count)
		}
	})

	t.Run("LoadConfig with bad duration", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[server]\nsession_ttl = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error for invalid duration")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			"SPOTIPY_CLIENT_ID":     "env_id",
			"SPOTIFY_CLIENT_SECRET": "env_secret",
			"LASTFM_API_KEY":        "env_lastfm",
			"YOUTUBE_API_KEY":       "env_youtube",
			"MINDMAP_DB_PATH":       "/tmp/env.db",
		}
		config := DefaultConfig()
		config.Credentials.Spotify.RedirectURI = "http://example.test/callback"

		config.ApplyEnv(func(k string) string { return env[k] })

		if config.Credentials.Spotify.ClientID != "env_id" {
			t.Errorf("expected env_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env_secret" {
			t.Errorf("expected SPOTIFY_ fallback to apply, got %s", config.Credentials.Spotify.ClientSecret)
		}
		if config.Credentials.Spotify.RedirectURI != "http://example.test/callback" {
			t.Errorf("unset variables should keep file values, got %s", config.Credentials.Spotify.RedirectURI)
		}
		if config.Database.Path != "/tmp/env.db" {
			t.Errorf("expected db path override, got %s", config.Database.Path)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected config to validate, got %v", err)
		}
	})

	t.Run("LoadEnv", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		if err := os.WriteFile(envPath, []byte("MINDMAP_TEST_LOADENV=from_file\n"), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv("MINDMAP_TEST_LOADENV") })

		if err := LoadEnv(envPath, filepath.Join(dir, "missing.env")); err != nil {
			t.Fatalf("expected missing env file to be ignored, got %v", err)
		}
		if got := os.Getenv("MINDMAP_TEST_LOADENV"); got != "from_file" {
			t.Errorf("expected from_file, got %q", got)
		}
	})

	t.Run("Validate reports missing credentials", func(t *testing.T) {
		err := DefaultConfig().Validate()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})
}
