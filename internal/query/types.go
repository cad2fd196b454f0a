package query

// Filter is one declarative predicate from an advanced-search request.
// A scalar Value becomes an equality match, a slice Value becomes a
// list-membership match, and From/To carry inclusive bounds for fields
// declared as date fields.
type Filter struct {
	Field string      `json:"field"`
	Value interface{} `json:"value,omitempty"`
	From  string      `json:"from,omitempty"`
	To    string      `json:"to,omitempty"`
}

// Spec is the request side of an advanced search: free-text search,
// declarative filters, sort and a 1-indexed page window.
type Spec struct {
	Search    string   `json:"search,omitempty"`
	Filters   []Filter `json:"filters,omitempty"`
	SortField string   `json:"sortField,omitempty"`
	SortOrder string   `json:"sortOrder,omitempty"`
	Page      int      `json:"page,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Normalize applies the page/limit defaults and the limit cap.
func (s *Spec) Normalize() {
	if s.Page < 1 {
		s.Page = DefaultPage
	}
	if s.Limit < 1 {
		s.Limit = DefaultLimit
	}
	if s.Limit > MaxLimit {
		s.Limit = MaxLimit
	}
}

// CustomField maps a logical field that is not physically on the base table
// to the SQL fragments used in each clause position. Select feeds the select
// list (and should carry an AS alias), Search feeds WHERE predicates and
// Sort feeds ORDER BY.
type CustomField struct {
	Select string
	Search string
	Sort   string
}

// Definition is the per-entity declarative configuration the builder works
// from. Fields is the authoritative allow-list: anything not named there is
// dropped from search, filter and sort evaluation.
type Definition struct {
	Table        string
	Alias        string
	DefaultSort  string
	Fields       []string
	DateFields   []string
	CustomFields map[string]CustomField
	JoinSQL      string
}

func (d Definition) allowed(field string) bool {
	for _, f := range d.Fields {
		if f == field {
			return true
		}
	}
	return false
}

func (d Definition) isDateField(field string) bool {
	for _, f := range d.DateFields {
		if f == field {
			return true
		}
	}
	return false
}

// ScopeType restricts row visibility for a request.
type ScopeType string

const (
	ScopePublic  ScopeType = "PUBLIC"
	ScopePrivate ScopeType = "PRIVATE"
)

// Scope is threaded explicitly into query building. A PRIVATE scope limits
// results to rows created by UserID.
type Scope struct {
	Type   ScopeType
	UserID string
}

// Result is the uniform advanced-search payload.
type Result struct {
	Data  []map[string]interface{} `json:"data"`
	Total int64                    `json:"total"`
	Page  int                      `json:"page"`
	Limit int                      `json:"limit"`
}
