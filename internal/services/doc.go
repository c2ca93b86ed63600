// Package services holds the error taxonomy and context plumbing shared by
// the ingestion engine and its external collaborators.
//
// Errors are tagged with sentinel markers so callers can decide scope:
// configuration errors abort a run before fetching, resolution and attachment
// errors skip the offending message or attachment, and external-service
// errors leave the release usable without the derived artifact.
package services
