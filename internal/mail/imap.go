package mail

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	gomail "github.com/emersion/go-message/mail"

	"mailcrate/internal/config"
	"mailcrate/internal/logging"
)

// IMAPSource fetches messages from an IMAP server.
type IMAPSource struct {
	cfg    config.IMAP
	logger *slog.Logger
}

// NewIMAPSource constructs an IMAP-backed mail source.
func NewIMAPSource(cfg config.IMAP, logger *slog.Logger) *IMAPSource {
	return &IMAPSource{cfg: cfg, logger: logging.NewComponentLogger(logger, "mail")}
}

var _ Source = (*IMAPSource)(nil)

func (s *IMAPSource) connect() (*imapclient.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server, s.cfg.Port)

	var client *imapclient.Client
	var err error
	if s.cfg.TLS {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to imap %s: %w", addr, err)
	}

	if err := client.Login(s.cfg.Username, s.cfg.Password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("imap login for %s: %w", s.cfg.Username, err)
	}
	return client, nil
}

// Fetch searches the configured mailbox and returns full parsed messages,
// newest-first.
func (s *IMAPSource) Fetch(ctx context.Context, crit Criteria) ([]Message, error) {
	client, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	folder := strings.TrimSpace(crit.Folder)
	if folder == "" {
		folder = s.cfg.DefaultFolder
	}
	if _, err := client.Select(folder, nil).Wait(); err != nil {
		s.logger.Warn("mailbox folder not selectable, returning no messages",
			logging.String("folder", folder), logging.Error(err))
		return nil, nil
	}

	searchCriteria, err := buildSearchCriteria(crit)
	if err != nil {
		return nil, err
	}

	searchData, err := client.UIDSearch(searchCriteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap search: %w", err)
	}
	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(imap.UIDSetNum(uids...), fetchOpts)
	defer fetchCmd.Close()

	var messages []Message
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			s.logger.Warn("could not collect message, skipping", logging.Error(err))
			continue
		}

		msg := messageFromBuffer(buf)
		if raw := buf.FindBodySection(bodySection); raw != nil {
			msg.TextBody, msg.HTMLBody, msg.Attachments = parseMIMEBody(raw)
		}
		if crit.HasAttachment && len(msg.Attachments) == 0 {
			continue
		}
		messages = append(messages, msg)
	}
	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("imap fetch: %w", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Date.After(messages[j].Date)
	})
	return messages, nil
}

func buildSearchCriteria(crit Criteria) (*imap.SearchCriteria, error) {
	sc := &imap.SearchCriteria{}

	if uid := strings.TrimSpace(crit.UID); uid != "" {
		parsed, err := strconv.ParseUint(uid, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid uid %q: %w", uid, err)
		}
		sc.UID = []imap.UIDSet{imap.UIDSetNum(imap.UID(parsed))}
		return sc, nil
	}
	if msgID := strings.TrimSpace(crit.MessageID); msgID != "" {
		sc.Header = append(sc.Header, imap.SearchCriteriaHeaderField{Key: "Message-Id", Value: msgID})
		return sc, nil
	}

	if sender := strings.TrimSpace(crit.Sender); sender != "" {
		sc.Header = append(sc.Header, imap.SearchCriteriaHeaderField{Key: "From", Value: sender})
	}
	if subject := strings.TrimSpace(crit.SubjectContains); subject != "" {
		sc.Header = append(sc.Header, imap.SearchCriteriaHeaderField{Key: "Subject", Value: subject})
	}
	if !crit.After.IsZero() {
		sc.Since = crit.After
	}
	if !crit.Before.IsZero() {
		sc.Before = crit.Before
	}
	return sc, nil
}

func messageFromBuffer(buf *imapclient.FetchMessageBuffer) Message {
	msg := Message{UID: strconv.FormatUint(uint64(buf.UID), 10)}

	if buf.Envelope != nil {
		msg.MessageID = buf.Envelope.MessageID
		msg.Subject = buf.Envelope.Subject
		msg.Date = buf.Envelope.Date
		if len(buf.Envelope.From) > 0 {
			msg.From = buf.Envelope.From[0].Addr()
		}
		for _, to := range buf.Envelope.To {
			msg.To = append(msg.To, to.Addr())
		}
	}
	return msg
}

// parseMIMEBody walks a raw RFC 2822 message with go-message and extracts the
// text/plain body, text/html body, and attachment payloads.
func parseMIMEBody(raw []byte) (textBody, htmlBody string, attachments []Attachment) {
	mr, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		// Unparseable structure: treat the whole payload as plain text.
		return string(raw), "", nil
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		switch h := part.Header.(type) {
		case *gomail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			switch {
			case strings.HasPrefix(contentType, "text/plain") && textBody == "":
				textBody = string(body)
			case strings.HasPrefix(contentType, "text/html") && htmlBody == "":
				htmlBody = string(body)
			}

		case *gomail.AttachmentHeader:
			filename, _ := h.Filename()
			if filename == "" {
				continue
			}
			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}
			attachments = append(attachments, Attachment{Filename: filename, Data: body})
		}
	}
	return textBody, htmlBody, attachments
}
