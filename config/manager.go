package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Settings is the persisted CineHub configuration.
type Settings struct {
	Server   ServerSettings   `json:"server"`
	Database DatabaseSettings `json:"database"`
	Cache    CacheSettings    `json:"cache"`
	Tmdb     TmdbSettings     `json:"tmdb"`
	Sync     SyncSettings     `json:"sync"`
	Images   ImageSettings    `json:"images"`
	Logging  LoggingSettings  `json:"logging"`
}

// ServerSettings configures the HTTP listener.
type ServerSettings struct {
	ListenAddr string `json:"listenAddr"`
}

// DatabaseSettings configures the sqlite entity store.
type DatabaseSettings struct {
	Path string `json:"path"`
}

// CacheSettings configures the badger cache store.
type CacheSettings struct {
	Path                 string `json:"path"`
	InstanceName         string `json:"instanceName"`
	DefaultExpiryMinutes int    `json:"defaultExpiryMinutes"`
	EnableLogging        bool   `json:"enableLogging"`
}

// DefaultExpiry returns the default cache TTL.
func (c CacheSettings) DefaultExpiry() time.Duration {
	if c.DefaultExpiryMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.DefaultExpiryMinutes) * time.Minute
}

// TmdbSettings configures the upstream catalog provider client.
type TmdbSettings struct {
	APIKey                 string `json:"apiKey"`
	BaseURL                string `json:"baseUrl"`
	ImageBaseURL           string `json:"imageBaseUrl"`
	RequestsPerSecondLimit int    `json:"requestsPerSecondLimit"`
}

// SyncSettings configures the periodic trending warmup task.
type SyncSettings struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"intervalMinutes"`
}

// Interval returns the warmup interval, defaulting to one hour.
func (s SyncSettings) Interval() time.Duration {
	if s.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// ImageSettings configures the on-disk image cache.
type ImageSettings struct {
	CachePath string `json:"cachePath"`
}

// LoggingSettings configures log file rotation.
type LoggingSettings struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

// DefaultSettings returns the configuration used on first boot.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			ListenAddr: ":8080",
		},
		Database: DatabaseSettings{
			Path: "data/cinehub.db",
		},
		Cache: CacheSettings{
			Path:                 "data/cache",
			InstanceName:         "cinehub:",
			DefaultExpiryMinutes: 30,
			EnableLogging:        false,
		},
		Tmdb: TmdbSettings{
			BaseURL:                "https://api.themoviedb.org",
			ImageBaseURL:           "https://image.tmdb.org/t/p/",
			RequestsPerSecondLimit: 10,
		},
		Sync: SyncSettings{
			Enabled:         true,
			IntervalMinutes: 60,
		},
		Images: ImageSettings{
			CachePath: "data/images",
		},
		Logging: LoggingSettings{
			Path:       "data/logs/cinehub.log",
			MaxSizeMB:  25,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Manager loads and persists settings from a JSON file on disk.
type Manager struct {
	path string
	mu   sync.RWMutex
}

// NewManager creates a settings manager for the given file path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads settings from disk, creating the file with defaults when it does
// not exist yet.
func (m *Manager) Load() (*Settings, error) {
	m.mu.RLock()
	data, err := os.ReadFile(m.path)
	m.mu.RUnlock()

	if os.IsNotExist(err) {
		defaults := DefaultSettings()
		if err := m.Save(defaults); err != nil {
			return nil, err
		}
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	return &settings, nil
}

// Save writes settings atomically via a temp file rename.
func (m *Manager) Save(settings Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}
