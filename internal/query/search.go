package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// Plan is the assembled artifact of one advanced-search request: a windowed
// data query and a COUNT query sharing the same WHERE clause and bound
// values. Plans are built fresh per request and never cached.
type Plan struct {
	CountSQL  string
	DataSQL   string
	CountArgs []interface{}
	DataArgs  []interface{}
	Page      int
	Limit     int
}

// BuildSearch translates a Spec into a Plan against the entity Definition.
// baseWhere is a fixed predicate (? markers) always ANDed in front of the
// dynamic predicate, with baseArgs occupying the first placeholder
// positions. A PRIVATE scope appends a created_by restriction.
func BuildSearch(def Definition, spec Spec, scope Scope, baseWhere string, baseArgs []interface{}) (*Plan, error) {
	spec.Normalize()

	b := NewBuilder()
	if baseWhere != "" {
		b.Where(baseWhere, baseArgs...)
	}
	if scope.Type == ScopePrivate && scope.UserID != "" {
		b.Where(fmt.Sprintf("%s.created_by = ?", def.Alias), scope.UserID)
	}

	if search := strings.TrimSpace(spec.Search); search != "" {
		if expr, args := buildSearchClause(def, search); expr != "" {
			b.Where(expr, args...)
		}
	}

	for _, f := range spec.Filters {
		addFilterClause(b, def, f)
	}

	where, args, pos, err := b.Render(1)
	if err != nil {
		return nil, err
	}

	from := fmt.Sprintf("FROM %s %s", def.Table, def.Alias)
	if def.JoinSQL != "" {
		from = from + " " + def.JoinSQL
	}

	whereSQL := ""
	if where != "" {
		whereSQL = " WHERE " + where
	}

	selects := []string{fmt.Sprintf("%s.*", def.Alias)}
	for _, name := range sortedCustomFieldNames(def) {
		if sel := def.CustomFields[name].Select; sel != "" {
			selects = append(selects, sel)
		}
	}

	orderBy := resolveSort(def, spec.SortField, spec.SortOrder)
	offset := (spec.Page - 1) * spec.Limit

	countSQL := fmt.Sprintf("SELECT COUNT(*) %s%s", from, whereSQL)
	dataSQL := fmt.Sprintf("SELECT %s %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		strings.Join(selects, ", "), from, whereSQL, orderBy, pos, pos+1)

	dataArgs := make([]interface{}, 0, len(args)+2)
	dataArgs = append(dataArgs, args...)
	dataArgs = append(dataArgs, spec.Limit, offset)

	return &Plan{
		CountSQL:  countSQL,
		DataSQL:   dataSQL,
		CountArgs: args,
		DataArgs:  dataArgs,
		Page:      spec.Page,
		Limit:     spec.Limit,
	}, nil
}

// buildSearchClause ORs a case-insensitive LIKE across every allow-listed
// field that supports text matching. Date fields are excluded; custom
// fields contribute their Search expression.
func buildSearchClause(def Definition, search string) (string, []interface{}) {
	needle := "%" + search + "%"
	var parts []string
	var args []interface{}

	for _, field := range def.Fields {
		if def.isDateField(field) {
			continue
		}
		expr := fmt.Sprintf("CAST(%s.%s AS TEXT)", def.Alias, field)
		if cf, ok := def.CustomFields[field]; ok {
			if cf.Search == "" {
				continue
			}
			expr = cf.Search
		}
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", expr))
		args = append(args, needle)
	}

	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

// addFilterClause resolves one declarative filter against the allow-list and
// appends the matching predicate. Unrecognized fields are dropped, never
// interpolated.
func addFilterClause(b *Builder, def Definition, f Filter) {
	expr := ""
	if cf, ok := def.CustomFields[f.Field]; ok && cf.Search != "" {
		expr = cf.Search
	} else if def.allowed(f.Field) {
		expr = fmt.Sprintf("%s.%s", def.Alias, f.Field)
	} else {
		return
	}

	if def.isDateField(f.Field) {
		if f.From != "" {
			b.Where(expr+" >= ?", f.From)
		}
		if f.To != "" {
			b.Where(expr+" <= ?", f.To)
		}
		return
	}

	switch v := f.Value.(type) {
	case nil:
		return
	case []interface{}:
		if len(v) == 0 {
			return
		}
		if isStringSlice(v) {
			b.Where(expr+" = ANY(?)", pq.Array(toStringSlice(v)))
			return
		}
		markers := strings.TrimSuffix(strings.Repeat("?, ", len(v)), ", ")
		b.Where(fmt.Sprintf("%s IN (%s)", expr, markers), v...)
	case []string:
		if len(v) == 0 {
			return
		}
		b.Where(expr+" = ANY(?)", pq.Array(v))
	default:
		b.Where(expr+" = ?", v)
	}
}

// resolveSort picks the ORDER BY expression. The sort field falls back to
// the definition default when absent or not allow-listed; the direction is
// validated against a fixed enum.
func resolveSort(def Definition, sortField, sortOrder string) string {
	expr := ""
	if cf, ok := def.CustomFields[sortField]; ok && cf.Sort != "" {
		expr = cf.Sort
	} else if def.allowed(sortField) {
		expr = fmt.Sprintf("%s.%s", def.Alias, sortField)
	} else {
		fallback := def.DefaultSort
		if fallback == "" {
			fallback = "created_at"
		}
		if cf, ok := def.CustomFields[fallback]; ok && cf.Sort != "" {
			expr = cf.Sort
		} else {
			expr = fmt.Sprintf("%s.%s", def.Alias, fallback)
		}
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}

	return expr + " " + direction
}

func sortedCustomFieldNames(def Definition) []string {
	names := make([]string, 0, len(def.CustomFields))
	for name := range def.CustomFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isStringSlice(values []interface{}) bool {
	for _, v := range values {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}

func toStringSlice(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}
