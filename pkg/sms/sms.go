// Package sms sends short text messages. SNSSender delivers through AWS SNS;
// LogSender only logs and is used when no provider is configured.
package sms

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/dmitrymomot/notifyengine/pkg/validator"
)

var (
	ErrInvalidParams = errors.New("sms: invalid params")
	ErrInvalidConfig = errors.New("sms: invalid config")
	ErrFailedToSend  = errors.New("sms: failed to send")
	ErrNotSent       = errors.New("sms: provider not configured, message was not sent")
)

// MaxLength caps a message at ten concatenated segments.
const MaxLength = 1600

// Sender sends one SMS.
type Sender interface {
	SendSMS(ctx context.Context, params SendSMSParams) error
}

// SendSMSParams is one outbound message.
type SendSMSParams struct {
	PhoneNumber   string `json:"phone_number"`
	Message       string `json:"message"`
	Transactional bool   `json:"transactional"`
}

// Validate checks the phone number and message.
func (p SendSMSParams) Validate() error {
	if err := validator.Apply(
		validator.RequiredString("phone_number", p.PhoneNumber),
		validator.ValidPhone("phone_number", p.PhoneNumber),
		validator.RequiredString("message", p.Message),
		validator.MaxLenString("message", p.Message, MaxLength),
	); err != nil {
		return errors.Join(ErrInvalidParams, err)
	}
	return nil
}

// Truncate shortens msg to at most n runes, ending with "..." when cut.
func Truncate(msg string, n int) string {
	if utf8.RuneCountInString(msg) <= n {
		return msg
	}
	if n <= 3 {
		return string([]rune(msg)[:n])
	}
	return string([]rune(msg)[:n-3]) + "..."
}
