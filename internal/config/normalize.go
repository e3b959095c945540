package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeApp(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeApp() error {
	if c.App.AppID == "" {
		if value, ok := os.LookupEnv("SCRIBE_APP_ID"); ok {
			c.App.AppID = value
		}
	}
	if c.App.AppSecret == "" {
		if value, ok := os.LookupEnv("SCRIBE_APP_SECRET"); ok {
			c.App.AppSecret = value
		}
	}
	c.App.APIHost = trimHost(c.App.APIHost, defaultAPIHost)
	c.App.AppLinkHost = trimHost(c.App.AppLinkHost, defaultAppLinkHost)
	c.App.DocHost = trimHost(c.App.DocHost, defaultDocHost)
	c.App.RedirectBase = strings.TrimRight(strings.TrimSpace(c.App.RedirectBase), "/")
	if c.App.RequestTimeout <= 0 {
		c.App.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
		return fmt.Errorf("logging.dir: %w", err)
	}
	if c.Journal.Dir, err = expandPath(c.Journal.Dir); err != nil {
		return fmt.Errorf("journal.dir: %w", err)
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.PollMaxAttempts <= 0 {
		c.Workflow.PollMaxAttempts = defaultPollMaxAttempts
	}
	if c.Workflow.PollBaseDelay <= 0 {
		c.Workflow.PollBaseDelay = defaultPollBaseDelay
	}
	if c.Workflow.BlockInsertSpacing <= 0 {
		c.Workflow.BlockInsertSpacing = defaultBlockInsertSpacing
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimHost(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
