// Package engine drives a workflow run: fetch matching messages, resolve
// each one to a release, push attachments through the handler chain, merge
// and persist the release record, then derive metadata. One message is fully
// processed before the next begins, and a failure in one message never stops
// the batch.
package engine
