// Package dedup tracks which message uids a workflow has already archived.
// The registry is a flat JSON list rewritten wholesale on every addition;
// callers append an id only after the release record has been persisted, so
// an interrupted run leaves the message eligible for retry.
package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"

	"mailcrate/internal/fileutil"
)

// Registry is the file-backed set of processed message identifiers.
type Registry struct {
	path string
}

// NewRegistry points at the registry file for one workflow. The file is
// created on first Add.
func NewRegistry(path string) *Registry {
	return &Registry{path: path}
}

// Path returns the backing file location.
func (r *Registry) Path() string { return r.path }

// Contains reports whether uid was already processed. A missing registry
// file means nothing has been processed yet.
func (r *Registry) Contains(uid string) (bool, error) {
	ids, err := r.load()
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == uid {
			return true, nil
		}
	}
	return false, nil
}

// Add appends uid to the registry and rewrites the whole file. Adding an
// already-present uid is a no-op.
func (r *Registry) Add(uid string) error {
	ids, err := r.load()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == uid {
			return nil
		}
	}
	ids = append(ids, uid)

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(ids, "", "    ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(r.path, data, 0o644)
}

// All returns every processed uid, in insertion order.
func (r *Registry) All() ([]string, error) {
	return r.load()
}

func (r *Registry) load() ([]string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// Tolerate registries written with numeric uids.
		var numbers []json.Number
		if err2 := json.Unmarshal(data, &numbers); err2 != nil {
			return nil, err
		}
		ids = make([]string, len(numbers))
		for i, n := range numbers {
			ids[i] = n.String()
		}
	}
	return ids, nil
}
