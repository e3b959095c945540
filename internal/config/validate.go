package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateApp(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateApp() error {
	if strings.TrimSpace(c.App.AppID) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/scribe/config.toml"
		}
		return fmt.Errorf("app.app_id is required. Set SCRIBE_APP_ID env var or edit %s (create with 'scribe config init')", defaultPath)
	}
	if strings.TrimSpace(c.App.AppSecret) == "" {
		return errors.New("app.app_secret is required. Set SCRIBE_APP_SECRET env var or add it to the config file")
	}
	if strings.TrimSpace(c.App.RedirectBase) == "" {
		return errors.New("app.redirect_base must be set to this service's public base URL")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.PollMaxAttempts > 100 {
		return errors.New("workflow.poll_max_attempts must not exceed 100")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}
