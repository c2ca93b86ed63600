// Package audio wraps the external loudness-normalization tool and the
// lightweight probes used to read durations and tag titles from saved
// audio files.
package audio
