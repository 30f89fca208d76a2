package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DevSender writes outgoing email to disk instead of sending it.
// Each message produces an .html body and a .json envelope sharing one
// timestamped base name.
type DevSender struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// DevSenderOption configures a DevSender.
type DevSenderOption func(*DevSender)

// WithDevClock overrides the clock used for file names.
func WithDevClock(now func() time.Time) DevSenderOption {
	return func(d *DevSender) { d.now = now }
}

// WithDevLogger sets the logger that reports written files.
func WithDevLogger(l *slog.Logger) DevSenderOption {
	return func(d *DevSender) { d.logger = l }
}

// NewDevSender creates a sender that saves emails into dir. The directory is
// created on first send.
func NewDevSender(dir string, opts ...DevSenderOption) *DevSender {
	d := &DevSender{dir: dir, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type devEnvelope struct {
	SentAt  string `json:"sent_at"`
	SendTo  string `json:"send_to"`
	Subject string `json:"subject"`
	Tag     string `json:"tag,omitempty"`
	Body    string `json:"body_file"`
}

// SendEmail validates params and writes them to disk.
func (d *DevSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("create %s: %w", d.dir, err))
	}

	now := d.now()
	label := params.Tag
	if label == "" {
		label = params.Subject
	}
	base := now.Format("20060102_150405.000") + "_" + safeName(label)

	htmlFile := base + ".html"
	if err := os.WriteFile(filepath.Join(d.dir, htmlFile), []byte(params.BodyHTML), 0o644); err != nil {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("write body: %w", err))
	}

	data, err := json.MarshalIndent(devEnvelope{
		SentAt:  now.Format(time.RFC3339),
		SendTo:  params.SendTo,
		Subject: params.Subject,
		Tag:     params.Tag,
		Body:    htmlFile,
	}, "", "  ")
	if err != nil {
		return errors.Join(ErrFailedToSendEmail, err)
	}
	if err := os.WriteFile(filepath.Join(d.dir, base+".json"), data, 0o644); err != nil {
		return errors.Join(ErrFailedToSendEmail, fmt.Errorf("write envelope: %w", err))
	}

	d.logger.DebugContext(ctx, "Email written to disk",
		slog.String("to", params.SendTo),
		slog.String("file", htmlFile),
	)
	return nil
}

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9\-_.]`)

// safeName lowercases s, maps spaces to underscores and drops anything else
// outside [a-z0-9-_.], capped at 100 bytes.
func safeName(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, " ", "_"))
	s = unsafeNameChars.ReplaceAllString(s, "")
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		return "email"
	}
	return s
}
