package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIMAP(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ArchiveRoot) == "" {
		return errors.New("paths.archive_root must be set")
	}
	return nil
}

func (c *Config) validateIMAP() error {
	if strings.TrimSpace(c.IMAP.Server) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/mailcrate/config.toml"
		}
		return fmt.Errorf("imap.server is required; edit %s (create with 'mailcrate config init')", defaultPath)
	}
	if c.IMAP.Port < 1 || c.IMAP.Port > 65535 {
		return fmt.Errorf("imap.port %d is out of range", c.IMAP.Port)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.TargetLUFS > 0 {
		return fmt.Errorf("audio.target_lufs must be negative, got %g", c.Audio.TargetLUFS)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
}

// RequireLLM verifies the LLM section carries credentials. Called at workflow
// load when any workflow enables metadata generation.
func (c *Config) RequireLLM() error {
	if c.LLM.APIKey == "" {
		return errors.New("llm.api_key is required when a workflow enables metadata generation; set MAILCRATE_LLM_API_KEY or edit the config file")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model is required when a workflow enables metadata generation")
	}
	return nil
}
