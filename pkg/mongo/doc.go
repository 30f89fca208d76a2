// Package mongo connects to MongoDB with retries and exposes a readiness
// probe. The notification collection itself lives in notifications/mongostore.
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer db.Client().Disconnect(context.Background())
package mongo
