// Package textutil provides text processing utilities for email subjects,
// filenames, and record bodies.
//
// The primary use cases are:
//   - Flattening email subject lines and filenames into single-line text
//   - Slugifying attachment filenames for safe filesystem use
//   - Sanitizing body text before it is embedded in JSON records and prompts
//
// Slugification lowercases, strips diacritics via Unicode NFD decomposition,
// and collapses every non-alphanumeric run into a single underscore while
// preserving the (lowercased) extension.
package textutil
