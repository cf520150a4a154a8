package actions

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/textproto"
	"regexp"
	"strings"

	"github.com/seu-repo/vox-assistant/internal/domain"
)

var (
	emailAddress = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	emailToken   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

const gmailNotConnected = "Gmail is not connected. Connect your Google account in Settings → Integrations to send email."

func (s *Service) SendEmail(ctx context.Context, userID string, p domain.SendEmailParams) domain.ExecutionOutcome {
	recipient, err := s.resolveRecipient(ctx, userID, p.To)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Failed(fmt.Sprintf(
			"I don't know %s's email address. Ask me to remember it first, for example: \"remember that %s's email is name@example.com\".",
			p.To, p.To))
	}
	if err != nil {
		return s.fail(domain.IntentSendEmail, userID, "Failed to look up the recipient", err)
	}

	token, err := within(ctx, s, "Google", func(ctx context.Context) (string, error) {
		return s.deps.Tokens.AccessToken(ctx, userID, domain.ProviderGoogle)
	})
	if errors.Is(err, domain.ErrNotConnected) {
		return domain.Failed(gmailNotConnected)
	}
	if err != nil {
		return s.fail(domain.IntentSendEmail, userID, "Failed to send email", err)
	}

	raw, err := buildMessage(recipient, p.Subject, p.Body)
	if err != nil {
		return s.fail(domain.IntentSendEmail, userID, "Failed to compose email", err)
	}
	id, err := withinWrite(ctx, s, "Gmail", func(ctx context.Context) (string, error) {
		return s.deps.Mail.SendRaw(ctx, token, raw)
	})
	if err != nil {
		return s.fail(domain.IntentSendEmail, userID, "Failed to send email", err)
	}

	display := fmt.Sprintf("📧 Email sent to %s\nSubject: %s", recipient, p.Subject)
	spoken := fmt.Sprintf("Email sent to %s.", p.To)
	return domain.Succeeded(display, spoken).
		WithData("message_id", id).
		WithData("to", recipient)
}

// resolveRecipient returns to when it already is an address. Otherwise to is
// a contact name looked up line by line in the knowledge base.
func (s *Service) resolveRecipient(ctx context.Context, userID, to string) (string, error) {
	if emailAddress.MatchString(to) {
		return to, nil
	}
	kb, err := s.knowledgeBase(ctx, userID)
	if err != nil {
		return "", err
	}
	if addr := findContactEmail(kb, to); addr != "" {
		return addr, nil
	}
	return "", fmt.Errorf("contact %q: %w", to, domain.ErrNotFound)
}

func findContactEmail(knowledge, name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ""
	}
	for _, line := range strings.Split(knowledge, "\n") {
		if !strings.Contains(strings.ToLower(line), name) {
			continue
		}
		if addr := emailToken.FindString(line); addr != "" {
			return addr
		}
	}
	return ""
}

// buildMessage renders a multipart/alternative message and encodes it the way
// the Gmail API expects its raw field.
func buildMessage(to, subject, body string) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", w.Boundary())

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=UTF-8", body},
		{"text/html; charset=UTF-8", "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>"},
	}
	for _, part := range parts {
		pw, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {part.contentType}})
		if err != nil {
			return "", fmt.Errorf("create part: %w", err)
		}
		if _, err := pw.Write([]byte(part.content)); err != nil {
			return "", fmt.Errorf("write part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close message: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}
