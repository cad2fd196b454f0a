package database

import (
	"context"
	"database/sql"

	"github.com/gridpanel/gridpanel/internal/apierror"
)

// FindDuplicateUser reports which field (username or email) an existing,
// non-deleted user already claims. excludeUUID skips the record being
// updated. An empty return means no collision.
//
// The constraint on the users table is still the final arbiter; this
// pre-check only exists to produce a friendlier message.
func (d Datasource) FindDuplicateUser(ctx context.Context, username, email, excludeUUID string) (string, error) {
	var field string
	err := d.Conn.QueryRowContext(ctx, `
		SELECT CASE WHEN username = $1 THEN 'username' ELSE 'email' END
		FROM users
		WHERE (username = $1 OR email = $2) AND is_deleted = FALSE AND user_uuid != $3
		LIMIT 1
	`, username, email, excludeUUID).Scan(&field)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", apierror.NewAPIError(apierror.CodeInternal, "Failed to check for duplicate user", err)
	}
	return field, nil
}
