package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	NER     NERConfig
	Wati    WatiConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type StorageConfig struct {
	// ProfilesDir holds one JSON file per profile record.
	ProfilesDir string
	// DataDir holds runtime state: the query history database, the API
	// token file, and the PID file.
	DataDir string
}

type NERConfig struct {
	// ModelPath points at an ONNX token-classification model directory.
	// Empty disables the recognizer; resolution falls back to exact,
	// fuzzy, and pattern matching.
	ModelPath string
}

type WatiConfig struct {
	APIURL     string
	APIKey     string
	WebhookURL string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Storage: StorageConfig{
			ProfilesDir: "profiles",
			DataDir:     defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration in ascending precedence: built-in defaults, the
// JSON config file at $XDG_CONFIG_HOME/qbot/config.json, a .env file in the
// working directory, then QBOT_* environment variables.
//
// Secrets (the Wati API key) are never read from the config file; provide
// them via .env or the environment.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b *fileBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	// .env populates the process environment without overriding variables
	// that are already set, so real env vars keep the last word.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	return cfg, nil
}
