package database

import (
	"context"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/model"
)

// SaveErrorLog persists one failed-operation record. Called from the error
// log worker, never from the request path.
func (d Datasource) SaveErrorLog(ctx context.Context, entry model.ErrorLog) error {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO error_logs (api_name, method, payload, message, stack, error_code)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.ApiName, entry.Method, entry.Payload, entry.Message, entry.Stack, entry.ErrorCode)
	if err != nil {
		return apierror.NewAPIError(apierror.CodeInternal, "Failed to save error log", err)
	}
	return nil
}
