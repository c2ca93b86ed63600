// Package release owns the persisted release record: the raw.json document
// written under each release folder, the merge rules for multi-part emails,
// and the on-disk layout (audio/, images/, metadata.json) built around it.
package release
