package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/goblin987/legendary-meme/types"
)

// LoadEnv reads an optional .env file from the working directory. Missing
// files are fine; real environment variables always win.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetMusicDir returns the music folder the shop serves tracks from
func GetMusicDir() string {
	if dir := os.Getenv("SHOP_MUSIC_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(".", "music")
}

// GetCORSOrigins returns the comma-separated list of allowed origins
func GetCORSOrigins() string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return origins
	}
	return "http://localhost:3000,http://localhost:5173"
}

// Settings represents the hand-editable player settings: an optional
// {name, src} playlist that replaces the scanned folder, and the autoplay
// flag for newly opened sessions.
type Settings struct {
	Autoplay bool                  `json:"autoplay"`
	Entries  []types.PlaylistEntry `json:"entries,omitempty"`
}

// DefaultSettings returns the settings used when no settings file exists
func DefaultSettings() *Settings {
	return &Settings{Autoplay: true}
}

// GetSettingsFilePath returns the path to the settings file
func GetSettingsFilePath() string {
	if path := os.Getenv("SHOP_SETTINGS_FILE"); path != "" {
		return path
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".shopmusic-settings.json")
}

// LoadSettings loads settings from the settings file, falling back to
// defaults when the file does not exist.
func LoadSettings() (*Settings, error) {
	settingsPath := GetSettingsFilePath()

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return DefaultSettings(), nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveSettings writes settings to the settings file
func SaveSettings(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(GetSettingsFilePath(), data, 0644)
}
