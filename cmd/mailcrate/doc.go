// Command mailcrate archives email newsletter releases. It fetches matching
// messages over IMAP, saves and transforms their attachments per workflow,
// and maintains per-release records, metadata, and collection catalogs.
package main
