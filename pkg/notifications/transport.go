package notifications

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/notifyengine/pkg/email"
	"github.com/dmitrymomot/notifyengine/pkg/email/templates"
	"github.com/dmitrymomot/notifyengine/pkg/sms"
)

// ErrContactNotFound is returned when a user has no address for a channel.
var ErrContactNotFound = errors.New("user contact not found")

// ContactResolver maps users to their delivery addresses.
type ContactResolver interface {
	EmailAddress(ctx context.Context, userID string) (string, error)
	PhoneNumber(ctx context.Context, userID string) (string, error)
}

// Contact is one user's delivery addresses.
type Contact struct {
	Email string `yaml:"email" json:"email"`
	Phone string `yaml:"phone" json:"phone"`
}

// StaticContacts is a ContactResolver backed by a fixed map.
type StaticContacts map[string]Contact

func (c StaticContacts) EmailAddress(_ context.Context, userID string) (string, error) {
	if ct, ok := c[userID]; ok && ct.Email != "" {
		return ct.Email, nil
	}
	return "", fmt.Errorf("%w: no email for user %s", ErrContactNotFound, userID)
}

func (c StaticContacts) PhoneNumber(_ context.Context, userID string) (string, error) {
	if ct, ok := c[userID]; ok && ct.Phone != "" {
		return ct.Phone, nil
	}
	return "", fmt.Errorf("%w: no phone for user %s", ErrContactNotFound, userID)
}

// LoadContacts decodes a YAML document of the form
//
//	contacts:
//	  user-1: {email: a@example.com, phone: "+14155550100"}
func LoadContacts(r io.Reader) (StaticContacts, error) {
	var doc struct {
		Contacts StaticContacts `yaml:"contacts"`
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	if doc.Contacts == nil {
		doc.Contacts = StaticContacts{}
	}
	return doc.Contacts, nil
}

// LoadContactsFile reads contacts from path.
func LoadContactsFile(path string) (StaticContacts, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open contacts: %w", err)
	}
	defer f.Close()
	return LoadContacts(f)
}

type emailTransport struct {
	sender   email.EmailSender
	contacts ContactResolver
}

// NewEmailTransport adapts an email sender to the router's email channel.
func NewEmailTransport(sender email.EmailSender, contacts ContactResolver) EmailTransport {
	return &emailTransport{sender: sender, contacts: contacts}
}

func (t *emailTransport) SendEmail(ctx context.Context, userID, title, message string, level Level) error {
	to, err := t.contacts.EmailAddress(ctx, userID)
	if err != nil {
		return err
	}
	body, err := templates.Render(ctx, templates.Notification(templates.NotificationData{
		Title:   title,
		Message: message,
		Level:   string(level),
	}))
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	return t.sender.SendEmail(ctx, email.SendEmailParams{
		SendTo:   to,
		Subject:  title,
		BodyHTML: body,
		Tag:      "notification-" + string(level),
	})
}

type smsTransport struct {
	sender   sms.Sender
	contacts ContactResolver
}

// NewSMSTransport adapts an SMS sender to the router's SMS channel. Messages
// longer than sms.MaxLength are truncated.
func NewSMSTransport(sender sms.Sender, contacts ContactResolver) SMSTransport {
	return &smsTransport{sender: sender, contacts: contacts}
}

func (t *smsTransport) SendSMS(ctx context.Context, userID, message string, level Level) error {
	phone, err := t.contacts.PhoneNumber(ctx, userID)
	if err != nil {
		return err
	}
	return t.sender.SendSMS(ctx, sms.SendSMSParams{
		PhoneNumber:   phone,
		Message:       sms.Truncate(message, sms.MaxLength),
		Transactional: level == LevelCritical || level == LevelHigh,
	})
}
