package notifications

import (
	"time"
)

// Category groups notifications by the business area that produced them.
type Category string

const (
	CategoryCompliance Category = "compliance"
	CategoryPayment    Category = "payment"
	CategoryDocument   Category = "document"
	CategoryFormation  Category = "formation"
	CategoryAccount    Category = "account"
	CategorySystem     Category = "system"
	CategoryMarketing  Category = "marketing"
)

// Level is the discrete priority tier derived from a score.
type Level string

const (
	LevelCritical Level = "critical"
	LevelHigh     Level = "high"
	LevelNormal   Level = "normal"
	LevelLow      Level = "low"
)

// Rank orders levels from most (0) to least (3) urgent.
// Unknown levels rank after LevelLow.
func (l Level) Rank() int {
	switch l {
	case LevelCritical:
		return 0
	case LevelHigh:
		return 1
	case LevelNormal:
		return 2
	case LevelLow:
		return 3
	default:
		return 4
	}
}

// Urgency describes how soon the user should look at a notification.
type Urgency string

const (
	UrgencyImmediate  Urgency = "immediate"
	UrgencyWithinHour Urgency = "within_hour"
	UrgencyWithinDay  Urgency = "within_day"
	UrgencyWithinWeek Urgency = "within_week"
)

// BusinessImpact describes the consequence of ignoring a notification.
type BusinessImpact string

const (
	ImpactHigh   BusinessImpact = "high"
	ImpactMedium BusinessImpact = "medium"
	ImpactLow    BusinessImpact = "low"
)

// Channel is a delivery channel.
type Channel string

const (
	ChannelInApp Channel = "in_app"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Valid reports whether c is one of the known channels.
func (c Channel) Valid() bool {
	switch c {
	case ChannelInApp, ChannelEmail, ChannelSMS:
		return true
	}
	return false
}

// Metadata is the scoring outcome persisted with every notification.
type Metadata struct {
	PriorityScore  int            `json:"priority_score" bson:"priority_score"`
	Urgency        Urgency        `json:"urgency" bson:"urgency"`
	BusinessImpact BusinessImpact `json:"business_impact" bson:"business_impact"`
}

// Notification is the persisted record. Its existence is the in-app delivery.
type Notification struct {
	ID                string     `json:"id" bson:"_id"`
	UserID            string     `json:"user_id" bson:"user_id"`
	Type              string     `json:"type" bson:"type"`
	Title             string     `json:"title" bson:"title"`
	Message           string     `json:"message" bson:"message"`
	Category          Category   `json:"category" bson:"category"`
	Priority          Level      `json:"priority" bson:"priority"`
	ActionURL         string     `json:"action_url,omitempty" bson:"action_url,omitempty"`
	RelatedEntityID   string     `json:"related_entity_id,omitempty" bson:"related_entity_id,omitempty"`
	RelatedEntityType string     `json:"related_entity_type,omitempty" bson:"related_entity_type,omitempty"`
	Metadata          Metadata   `json:"metadata" bson:"metadata"`
	Read              bool       `json:"is_read" bson:"is_read"`
	ReadAt            *time.Time `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
}

// MarkAsRead transitions the notification to read. Already-read
// notifications keep their original ReadAt.
func (n *Notification) MarkAsRead(at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
}
