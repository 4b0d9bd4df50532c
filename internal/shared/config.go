package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials     CredentialsConfig     `toml:"credentials"`
	Database        DatabaseConfig        `toml:"database"`
	Server          ServerConfig          `toml:"server"`
	Recommendations RecommendationsConfig `toml:"recommendations"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	LastFM  LastFMConfig  `toml:"lastfm"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// LastFMConfig contains Last.fm API credentials and request pacing.
type LastFMConfig struct {
	APIKey            string  `toml:"api_key"`
	APISecret         string  `toml:"api_secret"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// YouTubeConfig contains the YouTube Data API key.
type YouTubeConfig struct {
	APIKey string `toml:"api_key"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string   `toml:"host"`
	Port          int      `toml:"port"`
	SessionTTL    Duration `toml:"session_ttl"`
	SecureCookies bool     `toml:"secure_cookies"`
}

// Addr returns the host:port pair the server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RecommendationsConfig tunes the recommendation assembler.
type RecommendationsConfig struct {
	Count         int  `toml:"count"`          // results per page
	Margin        int  `toml:"margin"`         // extra candidates requested on top of count + seen
	SearchLimit   int  `toml:"search_limit"`   // results on the search page
	RememberShown bool `toml:"remember_shown"` // also add recommended ids to the seen-set
}

// Duration is a [time.Duration] that decodes from TOML strings like "720h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from the given .env files (default ".env") into the process environment.
//
// Missing files are ignored; variables already set in the environment win.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, p, err)
		}
	}
	return nil
}

// ApplyEnv overlays credentials and paths from environment variables onto the config.
//
// The SPOTIPY_* names are accepted alongside SPOTIFY_* so existing .env files keep working.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.Credentials.Spotify.ClientID, "SPOTIPY_CLIENT_ID", "SPOTIFY_CLIENT_ID")
	set(&c.Credentials.Spotify.ClientSecret, "SPOTIPY_CLIENT_SECRET", "SPOTIFY_CLIENT_SECRET")
	set(&c.Credentials.Spotify.RedirectURI, "SPOTIPY_REDIRECT_URI", "SPOTIFY_REDIRECT_URI")
	set(&c.Credentials.LastFM.APIKey, "LASTFM_API_KEY")
	set(&c.Credentials.LastFM.APISecret, "LASTFM_API_SECRET")
	set(&c.Credentials.YouTube.APIKey, "YOUTUBE_API_KEY")
	set(&c.Database.Path, "MINDMAP_DB_PATH")
}

// Validate reports which credentials required by the web server are missing.
func (c *Config) Validate() error {
	var missing []string
	if c.Credentials.Spotify.ClientID == "" {
		missing = append(missing, "credentials.spotify.client_id")
	}
	if c.Credentials.Spotify.ClientSecret == "" {
		missing = append(missing, "credentials.spotify.client_secret")
	}
	if c.Credentials.Spotify.RedirectURI == "" {
		missing = append(missing, "credentials.spotify.redirect_uri")
	}
	if c.Credentials.LastFM.APIKey == "" {
		missing = append(missing, "credentials.lastfm.api_key")
	}
	if c.Credentials.YouTube.APIKey == "" {
		missing = append(missing, "credentials.youtube.api_key")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrMissingCredentials, missing)
	}

	if c.Recommendations.Count <= 0 || c.Recommendations.Margin < 0 {
		return fmt.Errorf("%w: recommendations.count must be positive and margin non-negative", ErrInvalidConfig)
	}
	return nil
}
