package mail

import (
	"context"
	"time"
)

// Attachment is one file carried by an email message.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is a parsed email consumed read-only by the engine.
type Message struct {
	UID         string
	MessageID   string
	Subject     string
	Date        time.Time
	From        string
	To          []string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Body returns the preferred body text: plain text when present, HTML otherwise.
func (m Message) Body() string {
	if m.TextBody != "" {
		return m.TextBody
	}
	return m.HTMLBody
}

// Criteria narrows a fetch. UID and MessageID are direct lookups that take
// precedence over the filter fields.
type Criteria struct {
	Sender          string
	SubjectContains string
	Folder          string
	Before          time.Time
	After           time.Time
	HasAttachment   bool

	UID       string
	MessageID string
}

// Source is the external mail transport. Fetch returns matching messages
// newest-first; an unknown folder yields an empty result, not an error.
type Source interface {
	Fetch(ctx context.Context, crit Criteria) ([]Message, error)
}
