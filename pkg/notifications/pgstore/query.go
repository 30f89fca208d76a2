package pgstore

import (
	"strconv"
	"strings"

	"github.com/dmitrymomot/notifyengine/pkg/notifications"
)

const columns = `id, user_id, type, title, message, category, priority, action_url,
	related_entity_id, related_entity_type, priority_score, urgency, business_impact,
	is_read, read_at, created_at`

const insertQuery = `INSERT INTO notifications (` + columns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const getQuery = `SELECT ` + columns + ` FROM notifications WHERE user_id = $1 AND id = $2`

const markReadQuery = `UPDATE notifications SET is_read = TRUE, read_at = $1
WHERE user_id = $2 AND id = ANY($3) AND is_read = FALSE`

// args collects positional parameters.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// where renders the filter as a WHERE clause. Pagination is not included.
func where(f notifications.Filter) (string, []any) {
	var a args
	conds := []string{"user_id = " + a.add(f.UserID)}
	if f.Category != "" {
		conds = append(conds, "category = "+a.add(string(f.Category)))
	}
	if f.Since != nil {
		conds = append(conds, "created_at >= "+a.add(*f.Since))
	}
	if f.Until != nil {
		conds = append(conds, "created_at < "+a.add(*f.Until))
	}
	if f.Read != nil {
		conds = append(conds, "is_read = "+a.add(*f.Read))
	}
	return " WHERE " + strings.Join(conds, " AND "), a
}

func listQuery(f notifications.Filter) (string, []any) {
	clause, params := where(f)
	a := args(params)

	var sb strings.Builder
	sb.WriteString("SELECT " + columns + " FROM notifications")
	sb.WriteString(clause)
	sb.WriteString(" ORDER BY created_at DESC, id ASC")
	if f.Limit > 0 {
		sb.WriteString(" LIMIT " + a.add(f.Limit))
	}
	if f.Offset > 0 {
		sb.WriteString(" OFFSET " + a.add(f.Offset))
	}
	return sb.String(), a
}

func countQuery(f notifications.Filter) (string, []any) {
	clause, params := where(f)
	return "SELECT count(*) FROM notifications" + clause, params
}
