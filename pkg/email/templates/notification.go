package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// NotificationData is the content of a notification email.
type NotificationData struct {
	Title     string
	Message   string
	Level     string // critical, high, normal, low
	ActionURL string
}

var levelColors = map[string]string{
	"critical": "#b91c1c",
	"high":     "#c2410c",
	"normal":   "#1d4ed8",
	"low":      "#4b5563",
}

// Notification renders a single notification as a minimal inline-styled
// email. All text is escaped; the action URL is sanitized.
func Notification(d NotificationData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		color, ok := levelColors[d.Level]
		if !ok {
			color = levelColors["normal"]
		}

		_, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#111827;">`+
				`<div style="border-left:4px solid %s;padding:12px 16px;">`+
				`<h2 style="margin:0 0 8px 0;">%s</h2><p style="margin:0;">%s</p>`,
			color, templ.EscapeString(d.Title), templ.EscapeString(d.Message),
		)
		if err != nil {
			return err
		}

		if d.ActionURL != "" {
			href := string(templ.URL(d.ActionURL))
			if _, err := fmt.Fprintf(w,
				`<p style="margin:16px 0 0 0;"><a href="%s" style="background:%s;color:#ffffff;padding:8px 16px;text-decoration:none;border-radius:4px;">View details</a></p>`,
				templ.EscapeString(href), color,
			); err != nil {
				return err
			}
		}

		_, err = io.WriteString(w, `</div></body></html>`)
		return err
	})
}
