package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"mailcrate/internal/config"
	"mailcrate/internal/dedup"
	"mailcrate/internal/handler"
	"mailcrate/internal/logging"
	"mailcrate/internal/mail"
	"mailcrate/internal/metadata"
	"mailcrate/internal/release"
	"mailcrate/internal/services"
	"mailcrate/internal/textutil"
	"mailcrate/internal/workflow"
)

// MetadataGenerator derives metadata.json for a release folder.
type MetadataGenerator interface {
	Generate(ctx context.Context, dir string) error
}

// Options select what one run processes.
type Options struct {
	// Force reprocesses messages the dedup registry already knows and
	// rebuilds existing releases.
	Force bool
	// Title names the release for named_release workflows.
	Title string
	// UID and MessageID narrow the run to one message. They bypass the
	// resume cursor.
	UID       string
	MessageID string
}

// Summary counts what a run did.
type Summary struct {
	Fetched   int
	Processed int
	Skipped   int
	Failed    int
}

// Processor runs one workflow against the mail source.
type Processor struct {
	cfg       *config.Config
	wf        *workflow.Workflow
	source    mail.Source
	handlers  *handler.Registry
	registry  *dedup.Registry
	generator MetadataGenerator
	logger    *slog.Logger
}

// New builds a processor. The generator may be nil when the workflow does
// not produce metadata.
func New(cfg *config.Config, wf *workflow.Workflow, source mail.Source, handlers *handler.Registry, generator MetadataGenerator, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Processor{
		cfg:       cfg,
		wf:        wf,
		source:    source,
		handlers:  handlers,
		registry:  dedup.NewRegistry(filepath.Join(wf.BaseDir(cfg.Paths.ArchiveRoot), wf.RegistryFilename)),
		generator: generator,
		logger:    logging.NewComponentLogger(logger, "engine"),
	}
}

// Run executes the workflow once: resolve the fetch cursor, pull matching
// messages, process them strictly in sequence. Per-message failures are
// logged and counted; only configuration errors abort the run.
func (p *Processor) Run(ctx context.Context, opts Options) (*Summary, error) {
	ctx = services.WithWorkflow(ctx, p.wf.Name)
	ctx = services.WithRunID(ctx, uuid.NewString())
	log := logging.WithContext(ctx, p.logger)

	p.resolveCursor(opts, log)

	crit := p.wf.SourceQuery()
	if opts.UID != "" || opts.MessageID != "" {
		crit.UID = opts.UID
		crit.MessageID = opts.MessageID
	}

	messages, err := p.source.Fetch(ctx, crit)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "engine", "fetch", "mail source", err)
	}
	log.Info("fetched messages", logging.Int("count", len(messages)))

	summary := &Summary{Fetched: len(messages)}
	for _, msg := range messages {
		processed, err := p.processMessage(ctx, msg, opts)
		switch {
		case err != nil && services.Fatal(err):
			return summary, err
		case err != nil:
			summary.Failed++
			logging.WithContext(services.WithUID(ctx, msg.UID), p.logger).Error("message failed",
				logging.String(logging.FieldSubject, msg.Subject), logging.Error(err))
		case processed:
			summary.Processed++
		default:
			summary.Skipped++
		}
	}
	log.Info("run complete",
		logging.Int("processed", summary.Processed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// resolveCursor establishes the fetch lower bound from the most recent
// archived record. Explicit date bounds in the workflow and direct lookups
// both disable the scan.
func (p *Processor) resolveCursor(opts Options, log *slog.Logger) {
	if p.wf.HasExplicitAfter() || opts.UID != "" || opts.MessageID != "" || opts.Force {
		return
	}
	newest := release.NewestRecordDate(p.wf.BaseDir(p.cfg.Paths.ArchiveRoot), p.logger)
	if newest.IsZero() {
		return
	}
	p.wf.AfterDate = newest
	log.Info("resuming after most recent archived record",
		logging.String("after", newest.Format("2006-01-02")))
}

// processMessage takes one message through dedup, release resolution,
// attachment dispatch, merge, persistence and metadata. The returned bool
// reports whether the message was actually processed (false means skipped).
func (p *Processor) processMessage(ctx context.Context, msg mail.Message, opts Options) (bool, error) {
	ctx = services.WithUID(ctx, msg.UID)
	log := logging.WithContext(ctx, p.logger)

	if !opts.Force {
		seen, err := p.registry.Contains(msg.UID)
		if err != nil {
			return false, services.Wrap(services.ErrExternal, "engine", "dedup", "read registry", err)
		}
		if seen {
			log.Debug("already processed, skipping", logging.String(logging.FieldSubject, msg.Subject))
			return false, nil
		}
	}

	cleanSubject := textutil.CleanText(msg.Subject)
	identifier, err := p.resolveRelease(cleanSubject, opts)
	if err != nil {
		return false, err
	}
	folder := p.wf.ResolveFolderName(identifier)
	dir := filepath.Join(p.wf.BaseDir(p.cfg.Paths.ArchiveRoot), folder)
	ctx = services.WithRelease(ctx, folder)
	log = logging.WithContext(ctx, p.logger)

	if release.Exists(dir) && !p.wf.MergeFragments && !opts.Force {
		log.Info("release already archived, skipping", logging.String(logging.FieldSubject, cleanSubject))
		return false, nil
	}
	if opts.Force && len(msg.Attachments) > 0 {
		// Stale files from a previous, differently shaped attachment set
		// must not survive a forced rebuild.
		if _, err := os.Stat(release.AudioDir(dir)); err == nil {
			log.Info("force: clearing audio directory")
			if err := os.RemoveAll(release.AudioDir(dir)); err != nil {
				return false, services.Wrap(services.ErrExternal, "engine", "force", "clear audio directory", err)
			}
		}
	}
	for _, sub := range []string{release.AudioDir(dir), release.ImagesDir(dir)} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return false, services.Wrap(services.ErrExternal, "engine", "prepare", "create release directories", err)
		}
	}

	acc := handler.NewSideChannel()
	var saved []handler.SavedFile
	for _, att := range msg.Attachments {
		files, err := p.handlers.Dispatch(ctx, att, dir, acc, p.wf)
		if err != nil {
			if services.Fatal(err) {
				return false, err
			}
			log.Error("attachment failed, continuing",
				logging.String(logging.FieldAttachment, att.Filename), logging.Error(err))
			continue
		}
		saved = append(saved, files...)
	}

	if err := p.persistRecord(msg, cleanSubject, dir, saved, acc); err != nil {
		return false, err
	}

	if p.wf.GenerateMetadata && p.generator != nil {
		if err := p.generator.Generate(ctx, dir); err != nil {
			log.Warn("metadata generation failed, raw record remains usable", logging.Error(err))
		} else if err := metadata.BackfillDurations(dir, log); err != nil {
			log.Warn("duration backfill failed", logging.Error(err))
		}
	}

	// Registering the uid last keeps an interrupted message eligible for
	// retry on the next run.
	if err := p.registry.Add(msg.UID); err != nil {
		return false, services.Wrap(services.ErrExternal, "engine", "dedup", "update registry", err)
	}
	log.Info("archived", logging.String(logging.FieldSubject, cleanSubject),
		logging.Int("attachments", len(saved)))
	return true, nil
}

// resolveRelease maps a message to its release identifier according to the
// collection type. Failures here are hard skips for the message only.
func (p *Processor) resolveRelease(cleanSubject string, opts Options) (string, error) {
	switch p.wf.CollectionType {
	case workflow.BoundVolume:
		number, ok := p.wf.ExtractReleaseNumber(cleanSubject)
		if !ok {
			return "", services.Wrap(services.ErrResolution, "engine", "resolve",
				fmt.Sprintf("no release number in subject %q", cleanSubject), nil)
		}
		return number, nil
	case workflow.Playlist:
		return p.wf.SingleReleaseName, nil
	case workflow.NamedRelease:
		if opts.Title == "" {
			return "", services.Wrap(services.ErrResolution, "engine", "resolve",
				"named_release workflows require a title", nil)
		}
		return opts.Title, nil
	default:
		return "", services.Wrap(services.ErrConfiguration, "engine", "resolve",
			fmt.Sprintf("unknown collection type %q", p.wf.CollectionType), nil)
	}
}

// persistRecord builds the record for this message and writes it, merging
// into an existing record when the workflow collects fragments.
func (p *Processor) persistRecord(msg mail.Message, cleanSubject, dir string, saved []handler.SavedFile, acc *handler.SideChannel) error {
	rec := &release.Record{
		UID:         []string{msg.UID},
		MessageID:   []string{msg.MessageID},
		Subject:     []string{cleanSubject},
		Body:        textutil.SanitizeForJSON(msg.Body()),
		Date:        release.FormatDate(msg.Date),
		From:        msg.From,
		To:          msg.To,
		Attachments: saved,
		Extra:       acc.Fields(),
	}

	final := rec
	if p.wf.MergeFragments && release.Exists(dir) {
		existing, err := release.Load(dir)
		if err != nil {
			// Never overwrite a record we could not read back.
			return services.Wrap(services.ErrExternal, "engine", "merge", "load existing record", err)
		}
		release.Merge(existing, rec)
		final = existing
	}
	if err := release.Save(dir, final); err != nil {
		return services.Wrap(services.ErrExternal, "engine", "persist", "write record", err)
	}
	return nil
}
