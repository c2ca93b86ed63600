// Package config loads, validates, and normalizes mailcrate's TOML
// configuration.
//
// Configuration sections by subsystem:
//   - Paths: archive root, log directory, workflows file
//   - IMAP: mail server connection settings
//   - LLM: shared connection settings for structured metadata generation
//   - Audio: ffmpeg binary and default normalization targets
//   - Logging: log format, level, and outputs
//
// Workflow definitions live in a separate workflows file (see package
// workflow) so collections can be added without touching connection secrets.
package config
