package workflow

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"mailcrate/internal/services"
)

//go:embed sample_workflows.toml
var sampleWorkflows string

const defaultRegistryFilename = "downloaded_uids.json"

const dateLayout = "2006-01-02"

// Set is the immutable collection of workflows loaded at process start.
type Set struct {
	byName map[string]*Workflow
	names  []string
}

type workflowsFile struct {
	Workflows []Workflow `toml:"workflow"`
}

// LoadFile parses the workflows file and validates every workflow against
// the supplied set of known handler names. Any validation failure is a
// configuration error that aborts before mail is fetched.
func LoadFile(path string, knownHandlers []string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "read workflows file", path, err)
	}
	return Parse(data, knownHandlers)
}

// Parse builds a Set from raw TOML.
func Parse(data []byte, knownHandlers []string) (*Set, error) {
	var file workflowsFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "parse workflows file", "", err)
	}
	if len(file.Workflows) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "parse workflows file", "no workflows defined", nil)
	}

	handlers := make(map[string]struct{}, len(knownHandlers))
	for _, name := range knownHandlers {
		handlers[name] = struct{}{}
	}

	set := &Set{byName: make(map[string]*Workflow, len(file.Workflows))}
	for i := range file.Workflows {
		wf := &file.Workflows[i]
		if err := prepare(wf, handlers); err != nil {
			return nil, err
		}
		if _, exists := set.byName[wf.Name]; exists {
			return nil, services.Wrap(services.ErrConfiguration, "workflow", "load", fmt.Sprintf("duplicate workflow %q", wf.Name), nil)
		}
		set.byName[wf.Name] = wf
		set.names = append(set.names, wf.Name)
	}
	sort.Strings(set.names)
	return set, nil
}

// Get returns the named workflow or an UnknownWorkflow configuration error.
func (s *Set) Get(name string) (*Workflow, error) {
	wf, ok := s.byName[name]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "lookup",
			fmt.Sprintf("unknown workflow %q (available: %s)", name, strings.Join(s.names, ", ")), nil)
	}
	return wf, nil
}

// Names lists workflow names in sorted order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// AnyGeneratesMetadata reports whether at least one workflow needs the LLM.
func (s *Set) AnyGeneratesMetadata() bool {
	for _, wf := range s.byName {
		if wf.GenerateMetadata {
			return true
		}
	}
	return false
}

func prepare(wf *Workflow, handlers map[string]struct{}) error {
	fail := func(op, msg string, err error) error {
		return services.Wrap(services.ErrConfiguration, "workflow", op, msg, err)
	}

	wf.Name = strings.TrimSpace(wf.Name)
	if wf.Name == "" {
		return fail("validate", "workflow name is required", nil)
	}
	if wf.Dir != "" && (filepath.IsAbs(wf.Dir) || strings.Contains(wf.Dir, "..")) {
		return fail("validate", fmt.Sprintf("%s: dir must be a plain directory name", wf.Name), nil)
	}
	if wf.RegistryFilename == "" {
		wf.RegistryFilename = defaultRegistryFilename
	}

	switch wf.CollectionType {
	case BoundVolume:
		if wf.ReleaseNumberPattern != "" {
			re, err := regexp.Compile(wf.ReleaseNumberPattern)
			if err != nil {
				return fail("validate", fmt.Sprintf("%s: release_number_pattern", wf.Name), err)
			}
			if re.NumSubexp() < 1 {
				return fail("validate", fmt.Sprintf("%s: release_number_pattern needs a capture group for the number", wf.Name), nil)
			}
			wf.releaseNumberRe = re
		}
		if wf.FolderPattern != "" && !strings.Contains(wf.FolderPattern, "{number}") {
			return fail("validate", fmt.Sprintf("%s: folder_pattern must contain {number}", wf.Name), nil)
		}
	case Playlist:
		if strings.TrimSpace(wf.SingleReleaseName) == "" {
			return fail("validate", fmt.Sprintf("%s: playlist workflows require single_release_name", wf.Name), nil)
		}
	case NamedRelease:
		// Title arrives at runtime; nothing to validate here.
	default:
		return fail("validate", fmt.Sprintf("%s: unknown collection_type %q", wf.Name, wf.CollectionType), nil)
	}

	var err error
	if wf.beforeDate, err = parseDate(wf.Before); err != nil {
		return fail("validate", fmt.Sprintf("%s: before", wf.Name), err)
	}
	if wf.afterDate, err = parseDate(wf.After); err != nil {
		return fail("validate", fmt.Sprintf("%s: after", wf.Name), err)
	}

	for i := range wf.AttachmentProcessors {
		proc := &wf.AttachmentProcessors[i]
		if proc.Name == "" {
			return fail("validate", fmt.Sprintf("%s: attachment processor %d has no name", wf.Name, i), nil)
		}
		if len(proc.FilePatterns) == 0 {
			return fail("validate", fmt.Sprintf("%s: processor %q has no file_patterns", wf.Name, proc.Name), nil)
		}
		for _, pattern := range proc.FilePatterns {
			if _, err := path.Match(strings.ToLower(pattern), "probe"); err != nil {
				return fail("validate", fmt.Sprintf("%s: processor %q pattern %q", wf.Name, proc.Name, pattern), err)
			}
		}
		if _, ok := handlers[proc.Handler]; !ok {
			return fail("validate", fmt.Sprintf("%s: processor %q references unknown handler %q", wf.Name, proc.Name, proc.Handler), nil)
		}
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}

// CreateSample writes a sample workflows file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workflows directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleWorkflows), 0o644); err != nil {
		return fmt.Errorf("write sample workflows: %w", err)
	}
	return nil
}
