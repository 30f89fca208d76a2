package mongostore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/notifyengine/pkg/notifications"
)

func TestFilterDoc(t *testing.T) {
	t.Parallel()

	since := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	until := since.Add(time.Hour)

	tests := []struct {
		name   string
		filter notifications.Filter
		want   bson.D
	}{
		{
			name:   "user only",
			filter: notifications.Filter{UserID: "u1", Limit: 10},
			want:   bson.D{{Key: "user_id", Value: "u1"}},
		},
		{
			name:   "throttle window",
			filter: notifications.Filter{UserID: "u1", Category: notifications.CategoryPayment, Since: &since},
			want: bson.D{
				{Key: "user_id", Value: "u1"},
				{Key: "category", Value: "payment"},
				{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
			},
		},
		{
			name:   "bounded unread",
			filter: notifications.Filter{UserID: "u1", Since: &since, Until: &until, Read: notifications.Bool(false)},
			want: bson.D{
				{Key: "user_id", Value: "u1"},
				{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}, {Key: "$lt", Value: until}}},
				{Key: "is_read", Value: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, filterDoc(tt.filter))
		})
	}
}

func TestNotificationBSONShape(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	raw, err := bson.Marshal(notifications.Notification{
		ID:        "n1",
		UserID:    "u1",
		Category:  notifications.CategoryCompliance,
		Priority:  notifications.LevelCritical,
		Metadata:  notifications.Metadata{PriorityScore: 97, Urgency: notifications.UrgencyImmediate},
		CreatedAt: created,
	})
	require.NoError(t, err)

	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	assert.Equal(t, "n1", doc["_id"])
	assert.Equal(t, "u1", doc["user_id"])
	assert.Equal(t, false, doc["is_read"])
	assert.NotContains(t, doc, "read_at")

	score := bson.Raw(raw).Lookup("metadata", "priority_score")
	assert.Equal(t, int64(97), score.AsInt64())
}

func TestIndexModels(t *testing.T) {
	t.Parallel()

	models := indexModels()
	require.Len(t, models, 2)
	assert.Equal(t, bson.D{{Key: "user_id", Value: 1}, {Key: "category", Value: 1}, {Key: "created_at", Value: -1}}, models[0].Keys)
}
