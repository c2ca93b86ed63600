// Package mail defines the external mail source consumed by the processing
// engine and provides the IMAP implementation.
//
// The engine only sees the Source interface: a finite, newest-first fetch of
// parsed messages matching a workflow's criteria. Folder misses are reported
// as an empty result with a logged warning rather than an error, so a
// misconfigured mailbox never aborts a batch run.
package mail
