package notifications

import (
	"time"

	"github.com/dmitrymomot/notifyengine/pkg/validator"
)

const (
	maxTitleLength   = 200
	maxMessageLength = 5000
)

// ContextData carries the optional signals the priority calculator scores.
type ContextData struct {
	BusinessEntityID   string     `json:"business_entity_id,omitempty"`
	ComplianceDeadline *time.Time `json:"compliance_deadline,omitempty"`
	DocumentType       string     `json:"document_type,omitempty"`
	Amount             float64    `json:"amount,omitempty"`
	IsTimeSensitive    bool       `json:"is_time_sensitive,omitempty"`
	RequiresAction     bool       `json:"requires_action,omitempty"`
}

// Request is the caller-supplied description of a business event. It is never
// stored as-is; Manager.Create turns it into a Notification.
type Request struct {
	UserID            string       `json:"user_id"`
	Type              string       `json:"type"`
	Title             string       `json:"title"`
	Message           string       `json:"message"`
	Category          Category     `json:"category"`
	RelatedEntityID   string       `json:"related_entity_id,omitempty"`
	RelatedEntityType string       `json:"related_entity_type,omitempty"`
	ActionURL         string       `json:"action_url,omitempty"`
	Context           *ContextData `json:"context_data,omitempty"`
}

// Validate checks required fields. It returns validator.ValidationErrors.
func (r Request) Validate() error {
	rules := []validator.Rule{
		validator.RequiredString("user_id", r.UserID),
		validator.RequiredString("type", r.Type),
		validator.RequiredString("title", r.Title),
		validator.MaxLenString("title", r.Title, maxTitleLength),
		validator.RequiredString("message", r.Message),
		validator.MaxLenString("message", r.Message, maxMessageLength),
		validator.RequiredString("category", string(r.Category)),
	}
	if r.Context != nil {
		rules = append(rules, validator.NonNegativeAmount("context_data.amount", r.Context.Amount))
	}
	return validator.Apply(rules...)
}
