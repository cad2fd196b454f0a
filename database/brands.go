package database

import (
	"context"
	"database/sql"

	"github.com/gridpanel/gridpanel/internal/apierror"
)

// GetBrandID resolves a human-facing brand UUID to the internal numeric id
// that models reference.
func (d Datasource) GetBrandID(ctx context.Context, brandUUID string) (int64, error) {
	var id int64
	err := d.Conn.QueryRowContext(ctx,
		"SELECT id FROM brands WHERE brand_uuid = $1 AND is_deleted = FALSE", brandUUID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, apierror.NewAPIError(apierror.CodeNotFound, "brand not found", err)
	}
	if err != nil {
		return 0, apierror.NewAPIError(apierror.CodeInternal, "Failed to resolve brand", err)
	}
	return id, nil
}
