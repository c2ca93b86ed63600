// Package handler implements the attachment processing chain: a registry of
// named handlers plus the first-match dispatch that routes each attachment
// through the processors a workflow declares. Processor order in the
// workflows file is the tie-break when patterns overlap, so a *.zip entry
// listed before a catch-all wins.
package handler
