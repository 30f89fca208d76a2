package notifications_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/dmitrymomot/notifyengine/pkg/notifications"
)

func ExampleManager_Create() {
	ctx := context.Background()
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)

	manager := notifications.NewManager(
		notifications.NewMemoryStorage(),
		notifications.DefaultRegistry(),
		notifications.WithClock(func() time.Time { return now }),
	)

	deadline := now.Add(12 * time.Hour)
	n, err := manager.Create(ctx, notifications.Request{
		UserID:   "user123",
		Category: notifications.CategoryCompliance,
		Type:     "deadline_critical",
		Title:    "Annual report due",
		Message:  "Your annual report is due tomorrow.",
		Context: &notifications.ContextData{
			ComplianceDeadline: &deadline,
			RequiresAction:     true,
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(n.Priority, n.Metadata.PriorityScore, n.Metadata.Urgency)
	// Output: critical 100 immediate
}

func ExampleManager_Feed() {
	ctx := context.Background()
	now := time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)
	manager := notifications.NewManager(
		notifications.NewMemoryStorage(),
		notifications.DefaultRegistry(),
		notifications.WithClock(func() time.Time { return now }),
	)

	requests := []notifications.Request{
		{UserID: "u1", Category: notifications.CategoryMarketing, Type: "feature_announcement", Title: "New dashboard", Message: "Try it out."},
		{UserID: "u1", Category: notifications.CategoryPayment, Type: "payment_failed", Title: "Payment failed", Message: "Update your card."},
	}
	for _, req := range requests {
		if _, err := manager.Create(ctx, req); err != nil {
			log.Fatal(err)
		}
	}

	feed, err := manager.Feed(ctx, "u1", 10)
	if err != nil {
		log.Fatal(err)
	}
	for _, item := range feed {
		fmt.Printf("%s: %s (%s)\n", item.Priority, item.Title, item.Insights.RecommendedAction)
	}
	// Output:
	// critical: Payment failed (Resolve the payment issue)
	// low: New dashboard (Mark as read)
}
