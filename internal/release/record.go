package release

import (
	"encoding/json"
	"time"

	"mailcrate/internal/handler"
)

// Record is the durable raw document for one release. The uid, message_id
// and subject fields are always lists: a release assembled from several
// email fragments carries one entry per fragment. Extra holds side-channel
// text (extracted lyrics, notes) flattened to top-level JSON keys.
type Record struct {
	UID         []string
	MessageID   []string
	Subject     []string
	Body        string
	Date        string
	From        string
	To          []string
	Attachments []handler.SavedFile
	Extra       map[string]string
}

// reserved keys that can never be shadowed by side-channel fields.
var recordKeys = map[string]struct{}{
	"uid": {}, "message_id": {}, "subject": {}, "body": {},
	"date": {}, "from": {}, "to": {}, "attachments": {},
}

// MarshalJSON flattens Extra into the top-level object.
func (r Record) MarshalJSON() ([]byte, error) {
	attachments := r.Attachments
	if attachments == nil {
		attachments = []handler.SavedFile{}
	}
	doc := map[string]any{
		"uid":         emptyList(r.UID),
		"message_id":  emptyList(r.MessageID),
		"subject":     emptyList(r.Subject),
		"body":        r.Body,
		"date":        r.Date,
		"from":        r.From,
		"to":          emptyList(r.To),
		"attachments": attachments,
	}
	for key, value := range r.Extra {
		if _, reserved := recordKeys[key]; reserved {
			continue
		}
		doc[key] = value
	}
	return json.Marshal(doc)
}

// UnmarshalJSON accepts both the current always-list shape and legacy
// documents where uid, message_id or subject are scalars. Unknown top-level
// string fields land in Extra.
func (r *Record) UnmarshalJSON(data []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	r.UID = stringList(doc["uid"])
	r.MessageID = stringList(doc["message_id"])
	r.Subject = stringList(doc["subject"])
	r.To = stringList(doc["to"])
	r.Body = stringValue(doc["body"])
	r.From = stringValue(doc["from"])
	// Some archived records carry the date as a one-element list.
	if dates := stringList(doc["date"]); len(dates) > 0 {
		r.Date = dates[0]
	}

	if raw, ok := doc["attachments"]; ok && string(raw) != "null" {
		// Older records sometimes stored the list JSON-encoded as a string.
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err == nil && encoded != "" {
			raw = json.RawMessage(encoded)
		}
		if err := json.Unmarshal(raw, &r.Attachments); err != nil {
			return err
		}
	}

	r.Extra = make(map[string]string)
	for key, raw := range doc {
		if _, reserved := recordKeys[key]; reserved {
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil {
			r.Extra[key] = value
		}
	}
	return nil
}

// stringList coerces a raw JSON value to a list of strings, accepting a
// scalar, a list, or null.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	if single := stringValue(raw); single != "" {
		return []string{single}
	}
	return nil
}

func stringValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err == nil {
		return value
	}
	// Tolerate numeric uids from hand-edited records.
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return number.String()
	}
	return ""
}

func emptyList(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// recordDateLayouts covers the formats archived records have carried over
// time; first match wins.
var recordDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads a record's date field. Returns the zero time when the
// value matches no known layout.
func ParseDate(value string) time.Time {
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatDate renders an email date for storage.
func FormatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}
