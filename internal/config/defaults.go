package config

const (
	defaultAPIHost            = "https://open.feishu.cn"
	defaultAppLinkHost        = "https://applink.feishu.cn"
	defaultDocHost            = "https://example.feishu.cn"
	defaultRequestTimeout     = 15
	defaultServerBind         = "0.0.0.0:8888"
	defaultPollMaxAttempts    = 20
	defaultPollBaseDelay      = 10
	defaultBlockInsertSpacing = 1
	defaultLogFormat          = "auto"
	defaultLogLevel           = "info"
	defaultLogDir             = "~/.local/share/scribe/logs"
	defaultJournalDir         = "~/.local/share/scribe"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		App: App{
			APIHost:        defaultAPIHost,
			AppLinkHost:    defaultAppLinkHost,
			DocHost:        defaultDocHost,
			RequestTimeout: defaultRequestTimeout,
		},
		Server: Server{
			Bind: defaultServerBind,
		},
		Workflow: Workflow{
			PollMaxAttempts:    defaultPollMaxAttempts,
			PollBaseDelay:      defaultPollBaseDelay,
			BlockInsertSpacing: defaultBlockInsertSpacing,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			Dir:    defaultLogDir,
		},
		Journal: Journal{
			Dir: defaultJournalDir,
		},
	}
}
