package model

import "github.com/gridpanel/gridpanel/internal/query"

// EntityDescriptor declares one admin entity wired through the master
// factories: its table, primary UUID column, and the field allow-lists the
// query builder works from. The factories generate every standard operation
// from this value alone.
type EntityDescriptor struct {
	Key          string
	Table        string
	Alias        string
	UUIDColumn   string
	Fields       []string
	DateFields   []string
	CustomFields map[string]query.CustomField
	JoinSQL      string

	// SearchableFields limits the lightweight listpagination search.
	// Defaults to code and name when empty.
	SearchableFields []string

	// TranslateBrand marks entities whose create/update bodies carry a
	// human-facing brand_uuid that must be swapped for the internal numeric
	// brand_id before the responder sees the payload.
	TranslateBrand bool
}

// Searchable returns the listpagination search columns, applying the
// code/name default.
func (d EntityDescriptor) Searchable() []string {
	if len(d.SearchableFields) == 0 {
		return []string{"code", "name"}
	}
	return d.SearchableFields
}

// QueryDefinition assembles the query-builder definition for this entity,
// folding in the creator/updater username joins every advancefilter gets.
func (d EntityDescriptor) QueryDefinition() query.Definition {
	custom := map[string]query.CustomField{
		"createdByName": {
			Select: `creators.username AS "createdByName"`,
			Search: "creators.username",
			Sort:   "creators.username",
		},
		"modifiedByName": {
			Select: `modifiers.username AS "modifiedByName"`,
			Search: "modifiers.username",
			Sort:   "modifiers.username",
		},
	}
	for name, cf := range d.CustomFields {
		custom[name] = cf
	}

	join := "LEFT JOIN users creators ON creators.user_uuid = " + d.Alias + ".created_by " +
		"LEFT JOIN users modifiers ON modifiers.user_uuid = " + d.Alias + ".modified_by"
	if d.JoinSQL != "" {
		join = join + " " + d.JoinSQL
	}

	return query.Definition{
		Table:        d.Table,
		Alias:        d.Alias,
		DefaultSort:  "created_at",
		Fields:       d.Fields,
		DateFields:   d.DateFields,
		CustomFields: custom,
		JoinSQL:      join,
	}
}
