package query

import (
	"context"
	"database/sql"

	"github.com/gridpanel/gridpanel/internal/apierror"
)

// Execute runs the plan's COUNT and data queries against the pool and
// returns the uniform search result. Both queries filter identically, so
// Total stays consistent with the windowed Data regardless of page/limit.
func Execute(ctx context.Context, db *sql.DB, plan *Plan) (*Result, error) {
	var total int64
	if err := db.QueryRowContext(ctx, plan.CountSQL, plan.CountArgs...).Scan(&total); err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to count rows", err)
	}

	rows, err := db.QueryContext(ctx, plan.DataSQL, plan.DataArgs...)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to fetch rows", err)
	}
	defer rows.Close()

	data, err := ScanRows(rows)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to scan rows", err)
	}

	return &Result{
		Data:  data,
		Total: total,
		Page:  plan.Page,
		Limit: plan.Limit,
	}, nil
}

// ScanRows reads every row into a column-name keyed map. The factories work
// against declarative table descriptors, so there is no static struct to
// scan into.
func ScanRows(rows *sql.Rows) ([]map[string]interface{}, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []map[string]interface{}{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		holders := make([]interface{}, len(columns))
		for i := range values {
			holders[i] = &values[i]
		}
		if err := rows.Scan(holders...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		out = append(out, row)
	}

	return out, rows.Err()
}
