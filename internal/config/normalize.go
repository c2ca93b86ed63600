package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIMAP()
	c.normalizeLLM()
	c.normalizeAudio()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ArchiveRoot, err = expandPath(c.Paths.ArchiveRoot); err != nil {
		return fmt.Errorf("paths.archive_root: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkflowsFile) == "" {
		c.Paths.WorkflowsFile = defaultWorkflowsFile
	}
	if c.Paths.WorkflowsFile, err = expandPath(c.Paths.WorkflowsFile); err != nil {
		return fmt.Errorf("paths.workflows_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeIMAP() {
	c.IMAP.Server = strings.TrimSpace(c.IMAP.Server)
	c.IMAP.Username = strings.TrimSpace(c.IMAP.Username)
	if c.IMAP.Port == 0 {
		c.IMAP.Port = defaultIMAPPort
	}
	if strings.TrimSpace(c.IMAP.DefaultFolder) == "" {
		c.IMAP.DefaultFolder = defaultIMAPFolder
	}
	if c.IMAP.Password == "" {
		c.IMAP.Password = os.Getenv("MAILCRATE_IMAP_PASSWORD")
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = strings.TrimSpace(os.Getenv("MAILCRATE_LLM_API_KEY"))
	}
	if strings.TrimSpace(c.LLM.BaseURL) == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
}

func (c *Config) normalizeAudio() {
	if strings.TrimSpace(c.Audio.FFmpegBinary) == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	if c.Audio.TargetLUFS == 0 {
		c.Audio.TargetLUFS = defaultTargetLUFS
	}
	if strings.TrimSpace(c.Audio.Bitrate) == "" {
		c.Audio.Bitrate = defaultBitrate
	}
	if strings.TrimSpace(c.Audio.OutputFormat) == "" {
		c.Audio.OutputFormat = defaultOutputFormat
	}
}

func (c *Config) normalizeLogging() {
	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaultLogFormat
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaultLogLevel
	}
}
