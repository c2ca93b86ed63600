// Package metadata derives the structured metadata.json document for a
// release from its raw record, using a JSON-only model completion, and
// backfills track durations from the saved audio files afterwards.
package metadata
