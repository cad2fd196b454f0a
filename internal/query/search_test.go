package query

import (
	"strings"
	"testing"
)

func settingsDef() Definition {
	return Definition{
		Table:       "settings",
		Alias:       "s",
		DefaultSort: "created_at",
		Fields:      []string{"code", "name", "settingdate", "created_at"},
		DateFields:  []string{"settingdate", "created_at"},
	}
}

func usersDef() Definition {
	return Definition{
		Table:       "users",
		Alias:       "u",
		DefaultSort: "created_at",
		Fields:      []string{"username", "email", "created_at"},
		DateFields:  []string{"created_at"},
		CustomFields: map[string]CustomField{
			"createdByName": {
				Select: `creators.username AS "createdByName"`,
				Search: "creators.username",
				Sort:   "creators.username",
			},
		},
		JoinSQL: "LEFT JOIN users creators ON creators.user_uuid = u.created_by",
	}
}

func TestBuildSearchDefaults(t *testing.T) {
	plan, err := BuildSearch(settingsDef(), Spec{}, Scope{}, "s.is_deleted = FALSE", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if plan.CountSQL != "SELECT COUNT(*) FROM settings s WHERE s.is_deleted = FALSE" {
		t.Errorf("unexpected count SQL: %q", plan.CountSQL)
	}
	wantData := "SELECT s.* FROM settings s WHERE s.is_deleted = FALSE ORDER BY s.created_at DESC LIMIT $1 OFFSET $2"
	if plan.DataSQL != wantData {
		t.Errorf("unexpected data SQL: %q", plan.DataSQL)
	}
	if plan.Page != 1 || plan.Limit != 10 {
		t.Errorf("expected default page/limit 1/10, got %d/%d", plan.Page, plan.Limit)
	}
	if len(plan.DataArgs) != 2 || plan.DataArgs[0] != 10 || plan.DataArgs[1] != 0 {
		t.Errorf("unexpected data args: %v", plan.DataArgs)
	}
}

func TestBuildSearchOffsetLaw(t *testing.T) {
	plan, err := BuildSearch(settingsDef(), Spec{Page: 3, Limit: 20}, Scope{}, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n := len(plan.DataArgs)
	if plan.DataArgs[n-2] != 20 || plan.DataArgs[n-1] != 40 {
		t.Errorf("expected limit 20 offset 40, got %v", plan.DataArgs[n-2:])
	}
}

func TestBuildSearchLimitCap(t *testing.T) {
	plan, err := BuildSearch(settingsDef(), Spec{Limit: 5000}, Scope{}, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, plan.Limit)
	}
}

func TestBuildSearchFreeText(t *testing.T) {
	plan, err := BuildSearch(settingsDef(), Spec{Search: "usd"}, Scope{}, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "(LOWER(CAST(s.code AS TEXT)) LIKE LOWER($1) OR LOWER(CAST(s.name AS TEXT)) LIKE LOWER($2))"
	if !strings.Contains(plan.CountSQL, want) {
		t.Errorf("count SQL missing search clause: %q", plan.CountSQL)
	}
	if len(plan.CountArgs) != 2 || plan.CountArgs[0] != "%usd%" || plan.CountArgs[1] != "%usd%" {
		t.Errorf("unexpected count args: %v", plan.CountArgs)
	}
}

func TestBuildSearchFilters(t *testing.T) {
	t.Run("equality", func(t *testing.T) {
		plan, err := BuildSearch(settingsDef(), Spec{Filters: []Filter{{Field: "code", Value: "USD"}}}, Scope{}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(plan.CountSQL, "s.code = $1") {
			t.Errorf("missing equality predicate: %q", plan.CountSQL)
		}
	})

	t.Run("list membership", func(t *testing.T) {
		plan, err := BuildSearch(settingsDef(), Spec{Filters: []Filter{{Field: "code", Value: []interface{}{"USD", "EUR"}}}}, Scope{}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(plan.CountSQL, "s.code = ANY($1)") {
			t.Errorf("missing membership predicate: %q", plan.CountSQL)
		}
		if len(plan.CountArgs) != 1 {
			t.Errorf("expected one array arg, got %v", plan.CountArgs)
		}
	})

	t.Run("date range is inclusive and two-sided", func(t *testing.T) {
		plan, err := BuildSearch(settingsDef(), Spec{Filters: []Filter{{Field: "settingdate", From: "2024-01-01", To: "2024-12-31"}}}, Scope{}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(plan.CountSQL, "s.settingdate >= $1 AND s.settingdate <= $2") {
			t.Errorf("missing range predicates: %q", plan.CountSQL)
		}
		if plan.CountArgs[0] != "2024-01-01" || plan.CountArgs[1] != "2024-12-31" {
			t.Errorf("unexpected range args: %v", plan.CountArgs)
		}
	})

	t.Run("unknown field has no effect on the SQL", func(t *testing.T) {
		evil := "code; DROP TABLE settings--"
		plan, err := BuildSearch(settingsDef(), Spec{
			Filters:   []Filter{{Field: evil, Value: "x"}},
			SortField: evil,
		}, Scope{}, "", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(plan.CountSQL, "DROP TABLE") || strings.Contains(plan.DataSQL, "DROP TABLE") {
			t.Errorf("unlisted field leaked into SQL: %q", plan.DataSQL)
		}
		if len(plan.CountArgs) != 0 {
			t.Errorf("expected the filter to be dropped, got args %v", plan.CountArgs)
		}
		if !strings.Contains(plan.DataSQL, "ORDER BY s.created_at DESC") {
			t.Errorf("sort did not fall back to default: %q", plan.DataSQL)
		}
	})
}

func TestBuildSearchCustomFieldSort(t *testing.T) {
	plan, err := BuildSearch(usersDef(), Spec{SortField: "createdByName", SortOrder: "asc"}, Scope{}, "u.is_deleted = FALSE", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(plan.DataSQL, "ORDER BY creators.username ASC") {
		t.Errorf("custom sort expression not used: %q", plan.DataSQL)
	}
	if !strings.Contains(plan.DataSQL, `creators.username AS "createdByName"`) {
		t.Errorf("custom select missing: %q", plan.DataSQL)
	}
	if !strings.Contains(plan.DataSQL, "LEFT JOIN users creators") {
		t.Errorf("join missing from data SQL: %q", plan.DataSQL)
	}
	if !strings.Contains(plan.CountSQL, "LEFT JOIN users creators") {
		t.Errorf("join missing from count SQL: %q", plan.CountSQL)
	}
}

func TestBuildSearchInvalidSortOrder(t *testing.T) {
	plan, err := BuildSearch(settingsDef(), Spec{SortField: "code", SortOrder: "ASC; DROP"}, Scope{}, "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(plan.DataSQL, "ORDER BY s.code DESC") {
		t.Errorf("invalid direction not rejected: %q", plan.DataSQL)
	}
}

func TestBuildSearchPrivateScope(t *testing.T) {
	plan, err := BuildSearch(settingsDef(), Spec{}, Scope{Type: ScopePrivate, UserID: "usr_9"}, "s.is_deleted = FALSE", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(plan.CountSQL, "s.is_deleted = FALSE AND s.created_by = $1") {
		t.Errorf("private scope restriction missing: %q", plan.CountSQL)
	}
	if plan.CountArgs[0] != "usr_9" {
		t.Errorf("expected scope user first in args, got %v", plan.CountArgs)
	}
}

func TestBuildSearchBaseParamsComeFirst(t *testing.T) {
	plan, err := BuildSearch(settingsDef(), Spec{
		Filters: []Filter{{Field: "code", Value: "USD"}},
	}, Scope{}, "s.is_deleted = FALSE AND s.is_active = ?", []interface{}{true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(plan.CountSQL, "s.is_active = $1") {
		t.Errorf("base param not first: %q", plan.CountSQL)
	}
	if !strings.Contains(plan.CountSQL, "s.code = $2") {
		t.Errorf("dynamic predicate not after base params: %q", plan.CountSQL)
	}
	if plan.CountArgs[0] != true || plan.CountArgs[1] != "USD" {
		t.Errorf("args out of lockstep: %v", plan.CountArgs)
	}
}

func TestCountAndDataFilterIdentically(t *testing.T) {
	plan, err := BuildSearch(usersDef(), Spec{
		Search:  "jo",
		Filters: []Filter{{Field: "email", Value: "jo@example.com"}},
		Page:    2,
		Limit:   25,
	}, Scope{Type: ScopePrivate, UserID: "usr_1"}, "u.is_deleted = FALSE", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The data args are the count args plus the limit/offset pair.
	if len(plan.DataArgs) != len(plan.CountArgs)+2 {
		t.Fatalf("expected data args = count args + 2, got %d vs %d", len(plan.DataArgs), len(plan.CountArgs))
	}
	for i := range plan.CountArgs {
		if plan.DataArgs[i] != plan.CountArgs[i] {
			t.Errorf("arg %d differs between count and data: %v vs %v", i, plan.CountArgs[i], plan.DataArgs[i])
		}
	}

	countWhere := plan.CountSQL[strings.Index(plan.CountSQL, "WHERE"):]
	dataWhere := plan.DataSQL[strings.Index(plan.DataSQL, "WHERE"):strings.Index(plan.DataSQL, " ORDER BY")]
	if countWhere != dataWhere {
		t.Errorf("WHERE clauses differ:\ncount: %q\ndata:  %q", countWhere, dataWhere)
	}
}
