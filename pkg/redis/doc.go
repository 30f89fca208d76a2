// Package redis connects to Redis with retries and provides the distributed
// Locker that serializes the notification throttle check with the insert.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	locker := redis.NewLockerFromConfig(client, cfg)
//	manager := notifications.NewManager(store, rules, notifications.WithLocker(locker))
//
// Healthcheck returns a probe usable by the HTTP readiness endpoint.
package redis
