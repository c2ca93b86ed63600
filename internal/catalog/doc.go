// Package catalog builds the derived views over an archive: per-collection
// manifests, the cross-collection track registry, completeness status, and
// the audio-file verification report. It only reads what the ingestion
// engine persisted; nothing here mutates release records.
package catalog
