// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
	Export     ExportConfig     `mapstructure:"export"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ElevenLabsConfig holds the credentials and tuning for the platform API.
type ElevenLabsConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Timeout  int    `mapstructure:"timeout"` // milliseconds
	PageSize int    `mapstructure:"page_size"`
}

// ExportConfig holds settings for the CSV export surface.
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
