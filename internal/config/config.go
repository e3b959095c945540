package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// App contains the collaboration platform credentials and hosts.
type App struct {
	AppID     string `toml:"app_id"`
	AppSecret string `toml:"app_secret"`
	// APIHost is the platform OpenAPI base, e.g. https://open.feishu.cn.
	APIHost string `toml:"api_host"`
	// AppLinkHost wraps authorization URLs for in-client opening.
	AppLinkHost string `toml:"applink_host"`
	// DocHost is the base for user-facing document links.
	DocHost string `toml:"doc_host"`
	// RedirectBase is this service's public base URL for OAuth callbacks.
	RedirectBase string `toml:"redirect_base"`
	// RequestTimeout bounds each platform HTTP call, in seconds.
	RequestTimeout int `toml:"request_timeout"`
}

// Server contains the event-intake HTTP server settings.
type Server struct {
	Bind string `toml:"bind"`
}

// Workflow contains polling budgets and pacing for the stage pipeline.
type Workflow struct {
	// PollMaxAttempts bounds every poll-with-backoff loop.
	PollMaxAttempts int `toml:"poll_max_attempts"`
	// PollBaseDelay is the backoff delay unit in seconds; attempt n waits
	// base*(n+1).
	PollBaseDelay int `toml:"poll_base_delay"`
	// BlockInsertSpacing is the pause between dependent document block
	// inserts, in seconds, to respect platform rate limits.
	BlockInsertSpacing int `toml:"block_insert_spacing"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Journal contains workflow journal settings.
type Journal struct {
	// Dir holds the SQLite journal database. Empty disables journaling.
	Dir string `toml:"dir"`
}

// Config encapsulates all configuration values for Scribe.
type Config struct {
	App      App      `toml:"app"`
	Server   Server   `toml:"server"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
	Journal  Journal  `toml:"journal"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/scribe/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("scribe.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Logging.Dir, c.Journal.Dir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
