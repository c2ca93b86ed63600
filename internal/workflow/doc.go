// Package workflow loads and validates the declarative ingestion rules for
// each collection.
//
// A workflow couples a mail filter (sender, subject, folder, date bounds)
// with a folder-naming strategy, an ordered attachment-processor chain, and
// behavior flags. Workflows are immutable for the life of a run with one
// exception: the AfterDate resume cursor, which the engine sets from the most
// recent archived record and which is never persisted back to configuration.
//
// Processor order is significant: dispatch picks the first processor whose
// glob patterns match an attachment's filename, so a "*.zip" entry listed
// before a catch-all "*" wins for zip files. Handler names are checked
// against the registry when the file is loaded, so a typo fails the run
// before any mail is fetched.
package workflow
