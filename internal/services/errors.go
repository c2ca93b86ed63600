package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks unknown workflows or handlers. Fatal: the run
	// stops before any mail is fetched.
	ErrConfiguration = errors.New("configuration error")
	// ErrResolution marks a message whose release cannot be determined.
	// Only that message is skipped.
	ErrResolution = errors.New("resolution error")
	// ErrAttachment marks a single attachment that failed processing.
	// Remaining attachments keep flowing.
	ErrAttachment = errors.New("attachment error")
	// ErrExternal marks a failed normalization or metadata call. The raw
	// record remains valid without the derived artifact.
	ErrExternal = errors.New("external service error")
	// ErrRateLimited marks a rate-limit response. Retried with backoff, then
	// escalated as ErrExternal once retries are exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrNotFound marks a missing record, release, or message.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes processing context while tagging
// it with the provided marker for later scope classification. The marker
// should be one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error must abort the whole run rather than skip
// the current message or attachment.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
