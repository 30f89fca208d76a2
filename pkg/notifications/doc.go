// Package notifications scores, throttles, stores and routes user
// notifications for business-formation workflows.
//
// A Request goes through a fixed pipeline inside Manager.Create:
//
//   - Validate the request
//   - ThrottleGuard: drop it if the (user, category) cap is reached
//   - PriorityCalculator: derive a 0..100 score from the Registry rule,
//     request context, user engagement and business hours
//   - Storage: persist the record (this is the in-app delivery)
//   - DeliveryRouter: fan out to email and SMS when the score clears the
//     channel threshold and the rule allows the channel
//
// Throttled requests return (nil, nil). Email and SMS failures are logged
// and never fail the call.
//
// # Basic Usage
//
//	storage := notifications.NewMemoryStorage()
//	manager := notifications.NewManager(storage, notifications.DefaultRegistry(),
//	    notifications.WithLogger(log),
//	)
//
//	n, err := manager.Create(ctx, notifications.Request{
//	    UserID:   "user123",
//	    Category: notifications.CategoryCompliance,
//	    Type:     "deadline_critical",
//	    Title:    "Annual report due",
//	    Message:  "Your Delaware annual report is due tomorrow.",
//	    Context: &notifications.ContextData{
//	        ComplianceDeadline: &deadline,
//	        RequiresAction:     true,
//	    },
//	})
//
// # Read Paths
//
// Feed returns unread notifications ordered critical to low, then read ones,
// newest first within each group, each with display insights. Analytics
// reports a 30-day window with the three trending categories of the last
// 7 days. Both are recomputed from storage on every call.
//
// # Rules
//
// Rules are keyed by (category, type). A lookup falls back to the category's
// wildcard rule (empty type), then to the first rule of the category. The
// built-in table is embedded from rules.yaml; LoadRules reads the same format.
//
// # Storage
//
// MemoryStorage is for tests and development. Postgres and MongoDB
// implementations live in the pgstore and mongostore subpackages.
package notifications
