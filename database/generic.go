package database

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/query"
	"github.com/gridpanel/gridpanel/model"
)

// identRegex guards column names taken from request bodies. Keys that do
// not look like plain identifiers are dropped before they reach the SQL.
var identRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// dupDetailRegex pulls the colliding column and value out of a Postgres
// unique-violation detail, e.g. `Key (code)=(USD) already exists.`
var dupDetailRegex = regexp.MustCompile(`Key \((.+?)\)=\((.+?)\)`)

func columnKeys(body map[string]interface{}, exclude ...string) []string {
	keys := make([]string, 0, len(body))
	for k := range body {
		if !identRegex.MatchString(k) {
			continue
		}
		skip := false
		for _, ex := range exclude {
			if k == ex {
				skip = true
				break
			}
		}
		if !skip {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func duplicateError(pqErr *pq.Error) apierror.APIError {
	if m := dupDetailRegex.FindStringSubmatch(pqErr.Detail); m != nil {
		return apierror.NewAPIError(apierror.CodeDuplicate,
			fmt.Sprintf("%s already exists for %s", m[2], m[1]), pqErr)
	}
	return apierror.NewAPIError(apierror.CodeDuplicate, "record already exists", pqErr)
}

// CreateRecord inserts every well-formed body key as a column, stamping a
// fresh prefixed UUID. A unique-constraint violation surfaces as a
// duplicate error naming the colliding value, not a generic failure.
func (d Datasource) CreateRecord(ctx context.Context, desc model.EntityDescriptor, body map[string]interface{}) (map[string]interface{}, error) {
	uuid := model.GenerateUUIDWithSuffix(model.UUIDPrefix(desc.Key))

	keys := columnKeys(body, desc.UUIDColumn)
	columns := append([]string{desc.UUIDColumn}, keys...)
	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	args[0] = uuid
	placeholders[0] = "$1"
	for i, k := range keys {
		placeholders[i+1] = fmt.Sprintf("$%d", i+2)
		args[i+1] = body[k]
	}

	_, err := d.Conn.ExecContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		desc.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "),
	), args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return nil, duplicateError(pqErr)
		}
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to create record", err)
	}

	created := make(map[string]interface{}, len(body)+1)
	for _, k := range keys {
		created[k] = body[k]
	}
	created[desc.UUIDColumn] = uuid
	return created, nil
}

// ListRecords fetches every non-deleted row ordered by creation time, with
// the creator/modifier UUIDs resolved to usernames.
func (d Datasource) ListRecords(ctx context.Context, desc model.EntityDescriptor) ([]map[string]interface{}, error) {
	a := desc.Alias
	rows, err := d.Conn.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s.*, creators.username AS created_by_name, modifiers.username AS modified_by_name
		FROM %s %s
		LEFT JOIN users creators ON creators.user_uuid = %s.created_by
		LEFT JOIN users modifiers ON modifiers.user_uuid = %s.modified_by
		WHERE %s.is_deleted = FALSE
		ORDER BY %s.created_at ASC
	`, a, desc.Table, a, a, a, a, a))
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to list records", err)
	}
	defer rows.Close()

	records, err := query.ScanRows(rows)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to scan records", err)
	}
	return records, nil
}

// GetRecordByUUID fetches one non-deleted row by its UUID column.
func (d Datasource) GetRecordByUUID(ctx context.Context, desc model.EntityDescriptor, uuid string) (map[string]interface{}, error) {
	rows, err := d.Conn.QueryContext(ctx, fmt.Sprintf(
		"SELECT %s.* FROM %s %s WHERE %s.%s = $1 AND %s.is_deleted = FALSE",
		desc.Alias, desc.Table, desc.Alias, desc.Alias, desc.UUIDColumn, desc.Alias,
	), uuid)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to fetch record", err)
	}
	defer rows.Close()

	records, err := query.ScanRows(rows)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to scan record", err)
	}
	if len(records) == 0 {
		return nil, apierror.NewAPIError(apierror.CodeNotFound, fmt.Sprintf("%s not found", desc.Key), nil)
	}
	return records[0], nil
}

// UpdateRecord checks existence first, then applies a dynamic SET built
// from the body keys, always stamping modified_at.
func (d Datasource) UpdateRecord(ctx context.Context, desc model.EntityDescriptor, uuid string, body map[string]interface{}) error {
	if _, err := d.GetRecordByUUID(ctx, desc, uuid); err != nil {
		return err
	}

	keys := columnKeys(body, desc.UUIDColumn)
	if len(keys) == 0 {
		return apierror.NewAPIError(apierror.CodeValidation, "nothing to update", nil)
	}

	sets := make([]string, 0, len(keys)+1)
	args := make([]interface{}, 0, len(keys)+1)
	for i, k := range keys {
		sets = append(sets, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, body[k])
	}
	sets = append(sets, "modified_at = NOW()")
	args = append(args, uuid)

	_, err := d.Conn.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		desc.Table, strings.Join(sets, ", "), desc.UUIDColumn, len(keys)+1,
	), args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return duplicateError(pqErr)
		}
		return apierror.NewAPIError(apierror.CodeInternal, "Failed to update record", err)
	}
	return nil
}

// SoftDeleteRecord marks a row deleted; nothing is ever physically removed
// through this layer. Deleting an already-deleted row reports not-found.
func (d Datasource) SoftDeleteRecord(ctx context.Context, desc model.EntityDescriptor, uuid, deletedBy string) error {
	res, err := d.Conn.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET is_deleted = TRUE, is_active = FALSE, deleted_at = NOW(), deleted_by = $1 WHERE %s = $2 AND is_deleted = FALSE",
		desc.Table, desc.UUIDColumn,
	), deletedBy, uuid)
	if err != nil {
		return apierror.NewAPIError(apierror.CodeInternal, "Failed to delete record", err)
	}
	return requireRow(res, desc.Key)
}

// SetRecordStatus sets is_active and stamps the modifier.
func (d Datasource) SetRecordStatus(ctx context.Context, desc model.EntityDescriptor, uuid string, active bool, modifiedBy string) error {
	res, err := d.Conn.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET is_active = $1, modified_by = $2, modified_at = NOW() WHERE %s = $3 AND is_deleted = FALSE",
		desc.Table, desc.UUIDColumn,
	), active, modifiedBy, uuid)
	if err != nil {
		return apierror.NewAPIError(apierror.CodeInternal, "Failed to set record status", err)
	}
	return requireRow(res, desc.Key)
}

// SetRecordLock sets is_locked and stamps the modifier.
func (d Datasource) SetRecordLock(ctx context.Context, desc model.EntityDescriptor, uuid string, locked bool, modifiedBy string) error {
	res, err := d.Conn.ExecContext(ctx, fmt.Sprintf(
		"UPDATE %s SET is_locked = $1, modified_by = $2, modified_at = NOW() WHERE %s = $3 AND is_deleted = FALSE",
		desc.Table, desc.UUIDColumn,
	), locked, modifiedBy, uuid)
	if err != nil {
		return apierror.NewAPIError(apierror.CodeInternal, "Failed to set record lock", err)
	}
	return requireRow(res, desc.Key)
}

func requireRow(res interface{ RowsAffected() (int64, error) }, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.CodeInternal, "Failed to read affected rows", err)
	}
	if n == 0 {
		return apierror.NewAPIError(apierror.CodeNotFound, fmt.Sprintf("%s not found", key), nil)
	}
	return nil
}

// AdvancedSearch runs the dynamic query builder over the entity
// definition. Soft-deleted rows are always excluded.
func (d Datasource) AdvancedSearch(ctx context.Context, def query.Definition, spec query.Spec, scope query.Scope) (*query.Result, error) {
	baseWhere := fmt.Sprintf("%s.is_deleted = FALSE", def.Alias)
	plan, err := query.BuildSearch(def, spec, scope, baseWhere, nil)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to build search query", err)
	}
	return query.Execute(ctx, d.Conn, plan)
}

// ListPagination is the lightweight search+window path used by simple list
// UIs, independent of the advanced query builder.
func (d Datasource) ListPagination(ctx context.Context, desc model.EntityDescriptor, search string, page, limit int) (*query.Result, error) {
	spec := query.Spec{Page: page, Limit: limit}
	spec.Normalize()

	a := desc.Alias
	b := query.NewBuilder()
	b.Where(fmt.Sprintf("%s.is_deleted = FALSE", a))

	if search = strings.TrimSpace(search); search != "" {
		parts := make([]string, 0, len(desc.Searchable()))
		args := make([]interface{}, 0, len(desc.Searchable()))
		for _, f := range desc.Searchable() {
			parts = append(parts, fmt.Sprintf("LOWER(%s.%s) LIKE LOWER(?)", a, f))
			args = append(args, "%"+search+"%")
		}
		b.Where("("+strings.Join(parts, " OR ")+")", args...)
	}

	where, args, pos, err := b.Render(1)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.CodeInternal, "Failed to build pagination query", err)
	}

	from := fmt.Sprintf("FROM %s %s WHERE %s", desc.Table, a, where)
	plan := &query.Plan{
		CountSQL:  fmt.Sprintf("SELECT COUNT(*) %s", from),
		DataSQL:   fmt.Sprintf("SELECT %s.* %s ORDER BY %s.created_at DESC LIMIT $%d OFFSET $%d", a, from, a, pos, pos+1),
		CountArgs: args,
		DataArgs:  append(append([]interface{}{}, args...), spec.Limit, (spec.Page-1)*spec.Limit),
		Page:      spec.Page,
		Limit:     spec.Limit,
	}
	return query.Execute(ctx, d.Conn, plan)
}
