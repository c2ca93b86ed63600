package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"mailcrate/internal/audio"
	"mailcrate/internal/config"
	"mailcrate/internal/engine"
	"mailcrate/internal/handler"
	"mailcrate/internal/logging"
	"mailcrate/internal/mail"
	"mailcrate/internal/metadata"
	"mailcrate/internal/services/llm"
	"mailcrate/internal/workflow"
)

// commandContext lazily loads the configuration and workflows file once per
// invocation and hands out the shared pieces commands need.
type commandContext struct {
	configFlag *string

	once      sync.Once
	cfg       *config.Config
	workflows *workflow.Set
	log       *slog.Logger
	err       error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func knownHandlerNames() []string {
	return handler.NewRegistry(nil, logging.NewNop()).Names()
}

func (c *commandContext) ensure() (*config.Config, *workflow.Set, error) {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.err = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.err = err
			return
		}

		logger, err := logging.New(logging.Options{
			Level:   cfg.Logging.Level,
			Format:  cfg.Logging.Format,
			Outputs: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "mailcrate.log")},
		})
		if err != nil {
			c.err = err
			return
		}

		set, err := workflow.LoadFile(cfg.Paths.WorkflowsFile, knownHandlerNames())
		if err != nil {
			c.err = err
			return
		}
		applyAudioDefaults(set, cfg)

		if set.AnyGeneratesMetadata() {
			if err := cfg.RequireLLM(); err != nil {
				c.err = err
				return
			}
		}

		c.cfg = cfg
		c.workflows = set
		c.log = logger
	})
	return c.cfg, c.workflows, c.err
}

// applyAudioDefaults fills in the configured normalization defaults for
// workflows that do not override them.
func applyAudioDefaults(set *workflow.Set, cfg *config.Config) {
	for _, name := range set.Names() {
		wf, err := set.Get(name)
		if err != nil {
			continue
		}
		if wf.AudioOutputFormat == "" {
			wf.AudioOutputFormat = cfg.Audio.OutputFormat
		}
		if wf.AudioBitrate == "" {
			wf.AudioBitrate = cfg.Audio.Bitrate
		}
		if wf.AudioTargetLUFS == 0 {
			wf.AudioTargetLUFS = cfg.Audio.TargetLUFS
		}
	}
}

func (c *commandContext) getWorkflow(name string) (*workflow.Workflow, error) {
	_, set, err := c.ensure()
	if err != nil {
		return nil, err
	}
	return set.Get(name)
}

func (c *commandContext) allWorkflows() ([]*workflow.Workflow, error) {
	_, set, err := c.ensure()
	if err != nil {
		return nil, err
	}
	workflows := make([]*workflow.Workflow, 0, len(set.Names()))
	for _, name := range set.Names() {
		wf, err := set.Get(name)
		if err != nil {
			return nil, err
		}
		workflows = append(workflows, wf)
	}
	return workflows, nil
}

// newProcessor assembles the full ingestion stack for one workflow.
func (c *commandContext) newProcessor(wf *workflow.Workflow) (*engine.Processor, error) {
	cfg, _, err := c.ensure()
	if err != nil {
		return nil, err
	}

	source := mail.NewIMAPSource(cfg.IMAP, c.log)
	normalizer := audio.NewFFmpeg(c.log, audio.WithBinary(cfg.Audio.FFmpegBinary))
	handlers := handler.NewRegistry(normalizer, c.log)

	var generator engine.MetadataGenerator
	if wf.GenerateMetadata {
		generator = metadata.NewGenerator(c.newLLMClient(cfg), c.log)
	}

	return engine.New(cfg, wf, source, handlers, generator, c.log), nil
}

func (c *commandContext) newLLMClient(cfg *config.Config) *llm.Client {
	return llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
}

// acquireRunLock serializes runs for one workflow across processes. The
// returned release function is safe to call exactly once.
func (c *commandContext) acquireRunLock(workflowName string) (func(), error) {
	cfg, _, err := c.ensure()
	if err != nil {
		return nil, err
	}
	lock := flock.New(cfg.LockPath(workflowName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("workflow %q already has a run in progress", workflowName)
	}
	return func() { _ = lock.Unlock() }, nil
}
