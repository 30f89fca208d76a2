// Package logger builds *slog.Logger instances for the notification engine
// and keeps attribute naming consistent across packages.
//
// New assembles a JSON or text handler from functional options and wraps it
// with a decorator that pulls request-scoped values (for example a request id)
// out of context.Context on every record.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "notifyd"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "notification created",
//	    logger.NotificationID(n.ID),
//	    logger.UserID(n.UserID),
//	    logger.Category(n.Category),
//	)
//
// Attribute helpers return an empty slog.Attr for nil input, which slog drops,
// so call sites never need to guard optional values.
package logger
