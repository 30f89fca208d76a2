package sms

import (
	"context"
	"log/slog"
	"strings"
)

// LogSender logs messages instead of sending them and reports ErrNotSent so
// callers record the channel as failed.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

func (s *LogSender) SendSMS(ctx context.Context, params SendSMSParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "SMS not sent, no provider configured",
		slog.String("phone_number", maskPhone(params.PhoneNumber)),
		slog.Int("length", len(params.Message)),
	)
	return ErrNotSent
}

// maskPhone keeps the last four digits.
func maskPhone(p string) string {
	const visible = 4
	if len(p) <= visible {
		return strings.Repeat("*", len(p))
	}
	return strings.Repeat("*", len(p)-visible) + p[len(p)-visible:]
}
