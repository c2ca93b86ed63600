package release

import "strings"

// fragmentSeparator marks where a later email fragment's body begins.
const fragmentSeparator = "\n\n--- PART 2 ---\n\n"

// Merge folds a newly extracted record into an existing one for the same
// release. Merging the same fragment twice is a no-op for the identity
// fields and the body; attachments are concatenated as-is since distinct
// fragments may legitimately reuse filenames.
func Merge(existing, incoming *Record) {
	existing.UID = appendMissing(existing.UID, incoming.UID)
	existing.MessageID = appendMissing(existing.MessageID, incoming.MessageID)
	existing.Subject = appendMissing(existing.Subject, incoming.Subject)

	if incoming.Body != "" && !strings.Contains(existing.Body, incoming.Body) {
		existing.Body = strings.TrimSpace(existing.Body + fragmentSeparator + incoming.Body)
	}

	existing.Attachments = append(existing.Attachments, incoming.Attachments...)

	// Side-channel fields are last-write-wins, not merged.
	if len(incoming.Extra) > 0 && existing.Extra == nil {
		existing.Extra = make(map[string]string, len(incoming.Extra))
	}
	for key, value := range incoming.Extra {
		existing.Extra[key] = value
	}
}

func appendMissing(existing, incoming []string) []string {
	for _, value := range incoming {
		if value == "" {
			continue
		}
		found := false
		for _, have := range existing {
			if have == value {
				found = true
				break
			}
		}
		if !found {
			existing = append(existing, value)
		}
	}
	return existing
}
