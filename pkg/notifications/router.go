package notifications

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/notifyengine/pkg/logger"
)

// ErrChannelNotConfigured is recorded when a routed channel has no transport.
var ErrChannelNotConfigured = errors.New("delivery channel not configured")

// EmailTransport sends the email copy of a notification.
type EmailTransport interface {
	SendEmail(ctx context.Context, userID, title, message string, level Level) error
}

// SMSTransport sends the SMS copy of a notification.
type SMSTransport interface {
	SendSMS(ctx context.Context, userID, message string, level Level) error
}

// Route is the set of channels that fire for one notification.
type Route struct {
	InApp bool
	Email bool
	SMS   bool
}

// Channels lists the routed channels in a fixed order.
func (r Route) Channels() []Channel {
	out := make([]Channel, 0, 3)
	if r.InApp {
		out = append(out, ChannelInApp)
	}
	if r.Email {
		out = append(out, ChannelEmail)
	}
	if r.SMS {
		out = append(out, ChannelSMS)
	}
	return out
}

// DeliveryReport records what happened on each routed channel.
type DeliveryReport struct {
	Delivered []Channel
	Failed    map[Channel]error
}

// DeliveryRouter picks channels by score and invokes their transports.
type DeliveryRouter struct {
	s settings
}

// NewDeliveryRouter creates a router. Transports come from WithEmailTransport
// and WithSMSTransport.
func NewDeliveryRouter(opts ...Option) *DeliveryRouter {
	return &DeliveryRouter{s: newSettings(opts)}
}

// Route decides channels for n. In-app is always on: the stored record is the
// in-app delivery. Without a rule only in-app fires.
func (r *DeliveryRouter) Route(n Notification, rule Rule, found bool) Route {
	route := Route{InApp: true}
	if !found {
		return route
	}
	score := n.Metadata.PriorityScore
	route.Email = rule.HasChannel(ChannelEmail) && score >= r.s.emailThreshold
	route.SMS = rule.HasChannel(ChannelSMS) && score >= r.s.smsThreshold
	return route
}

// Deliver invokes the transports for the routed channels. Failures are logged
// and recorded in the report; they never propagate.
func (r *DeliveryRouter) Deliver(ctx context.Context, n Notification, route Route) DeliveryReport {
	report := DeliveryReport{Failed: make(map[Channel]error)}
	if route.InApp {
		report.Delivered = append(report.Delivered, ChannelInApp)
	}

	if route.Email {
		var err error
		if r.s.email == nil {
			err = ErrChannelNotConfigured
		} else {
			err = r.s.email.SendEmail(ctx, n.UserID, n.Title, n.Message, n.Priority)
		}
		r.record(ctx, &report, n, ChannelEmail, err)
	}

	if route.SMS {
		var err error
		if r.s.sms == nil {
			err = ErrChannelNotConfigured
		} else {
			err = r.s.sms.SendSMS(ctx, n.UserID, n.Title+": "+n.Message, n.Priority)
		}
		r.record(ctx, &report, n, ChannelSMS, err)
	}

	return report
}

func (r *DeliveryRouter) record(ctx context.Context, report *DeliveryReport, n Notification, ch Channel, err error) {
	if err == nil {
		report.Delivered = append(report.Delivered, ch)
		return
	}
	report.Failed[ch] = err
	r.s.logger.LogAttrs(ctx, slog.LevelWarn, "Failed to deliver notification, in-app copy is kept",
		logger.NotificationID(n.ID),
		logger.UserID(n.UserID),
		logger.Channel(ch),
		logger.Error(err),
	)
}
