package config

const (
	defaultArchiveRoot   = "~/.local/share/mailcrate/archives"
	defaultLogDir        = "~/.local/share/mailcrate/logs"
	defaultWorkflowsFile = "~/.config/mailcrate/workflows.toml"
	defaultIMAPPort      = 993
	defaultIMAPFolder    = "INBOX"
	defaultLLMBaseURL    = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMTimeout    = 120
	defaultFFmpegBinary  = "ffmpeg"
	defaultTargetLUFS    = -16.0
	defaultBitrate       = "320k"
	defaultOutputFormat  = "original"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArchiveRoot:   defaultArchiveRoot,
			LogDir:        defaultLogDir,
			WorkflowsFile: defaultWorkflowsFile,
		},
		IMAP: IMAP{
			Port:          defaultIMAPPort,
			TLS:           true,
			DefaultFolder: defaultIMAPFolder,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Audio: Audio{
			FFmpegBinary: defaultFFmpegBinary,
			TargetLUFS:   defaultTargetLUFS,
			Bitrate:      defaultBitrate,
			OutputFormat: defaultOutputFormat,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
