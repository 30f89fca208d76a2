// Package pgstore persists notifications in PostgreSQL through pgx.
package pgstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/notifyengine/pkg/notifications"
	"github.com/dmitrymomot/notifyengine/pkg/pg"
)

// DB is the subset of *pgxpool.Pool used by the store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements notifications.Storage.
type Store struct {
	db DB
}

var _ notifications.Storage = (*Store)(nil)

func New(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, n notifications.Notification) error {
	if n.UserID == "" {
		return notifications.ErrUserIDRequired
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(ctx, insertQuery,
		n.ID, n.UserID, n.Type, n.Title, n.Message, string(n.Category), string(n.Priority), n.ActionURL,
		n.RelatedEntityID, n.RelatedEntityType, n.Metadata.PriorityScore, string(n.Metadata.Urgency),
		string(n.Metadata.BusinessImpact), n.Read, n.ReadAt, n.CreatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return fmt.Errorf("notification %s already exists: %w", n.ID, err)
	}
	return err
}

func (s *Store) Get(ctx context.Context, userID, notifID string) (*notifications.Notification, error) {
	n, err := scan(s.db.QueryRow(ctx, getQuery, userID, notifID))
	if pg.IsNotFoundError(err) {
		return nil, notifications.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) List(ctx context.Context, filter notifications.Filter) ([]notifications.Notification, error) {
	query, params := listQuery(filter)
	rows, err := s.db.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (notifications.Notification, error) {
		return scan(row)
	})
}

func (s *Store) Count(ctx context.Context, filter notifications.Filter) (int, error) {
	query, params := countQuery(filter)
	var count int
	if err := s.db.QueryRow(ctx, query, params...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) MarkRead(ctx context.Context, userID string, readAt time.Time, notifIDs ...string) error {
	if len(notifIDs) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx, markReadQuery, readAt, userID, notifIDs)
	return err
}

func scan(row pgx.Row) (notifications.Notification, error) {
	var (
		n        notifications.Notification
		category string
		priority string
		urgency  string
		impact   string
	)
	err := row.Scan(
		&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &category, &priority, &n.ActionURL,
		&n.RelatedEntityID, &n.RelatedEntityType, &n.Metadata.PriorityScore, &urgency, &impact,
		&n.Read, &n.ReadAt, &n.CreatedAt,
	)
	if err != nil {
		return notifications.Notification{}, err
	}
	n.Category = notifications.Category(category)
	n.Priority = notifications.Level(priority)
	n.Metadata.Urgency = notifications.Urgency(urgency)
	n.Metadata.BusinessImpact = notifications.BusinessImpact(impact)
	return n, nil
}
