// Package mongostore persists notifications in a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/notifyengine/pkg/notifications"
)

// DefaultCollection is the collection name used by New.
const DefaultCollection = "notifications"

// Store implements notifications.Storage on a MongoDB collection.
type Store struct {
	coll *mongo.Collection
}

var _ notifications.Storage = (*Store)(nil)

// New uses DefaultCollection in db.
func New(db *mongo.Database) *Store {
	return NewWithCollection(db.Collection(DefaultCollection))
}

func NewWithCollection(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// EnsureIndexes creates the indexes the throttle, feed and analytics queries
// rely on. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, indexModels())
	return err
}

func indexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_category_created"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("user_read_created"),
		},
	}
}

// Create inserts n. BSON dates hold milliseconds, so CreatedAt is stored
// truncated to millisecond precision in UTC.
func (s *Store) Create(ctx context.Context, n notifications.Notification) error {
	if n.UserID == "" {
		return notifications.ErrUserIDRequired
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	n.CreatedAt = n.CreatedAt.UTC().Truncate(time.Millisecond)

	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("notification %s already exists: %w", n.ID, err)
		}
		return err
	}
	return nil
}

func (s *Store) Get(ctx context.Context, userID, notifID string) (*notifications.Notification, error) {
	var n notifications.Notification
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: notifID}, {Key: "user_id", Value: userID}}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notifications.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) List(ctx context.Context, filter notifications.Filter) ([]notifications.Notification, error) {
	cur, err := s.coll.Find(ctx, filterDoc(filter), findOptions(filter))
	if err != nil {
		return nil, err
	}
	out := make([]notifications.Notification, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, filter notifications.Filter) (int, error) {
	n, err := s.coll.CountDocuments(ctx, filterDoc(filter))
	return int(n), err
}

func (s *Store) MarkRead(ctx context.Context, userID string, readAt time.Time, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.coll.UpdateMany(ctx,
		bson.D{
			{Key: "user_id", Value: userID},
			{Key: "_id", Value: bson.D{{Key: "$in", Value: notifIDs}}},
			{Key: "is_read", Value: false},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "is_read", Value: true},
			{Key: "read_at", Value: readAt.UTC()},
		}}},
	)
	return err
}

func filterDoc(f notifications.Filter) bson.D {
	doc := bson.D{{Key: "user_id", Value: f.UserID}}
	if f.Category != "" {
		doc = append(doc, bson.E{Key: "category", Value: string(f.Category)})
	}
	if f.Since != nil || f.Until != nil {
		created := bson.D{}
		if f.Since != nil {
			created = append(created, bson.E{Key: "$gte", Value: f.Since.UTC()})
		}
		if f.Until != nil {
			created = append(created, bson.E{Key: "$lt", Value: f.Until.UTC()})
		}
		doc = append(doc, bson.E{Key: "created_at", Value: created})
	}
	if f.Read != nil {
		doc = append(doc, bson.E{Key: "is_read", Value: *f.Read})
	}
	return doc
}

func findOptions(f notifications.Filter) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	return opts
}
