package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUUIDWithSuffix(t *testing.T) {
	id := GenerateUUIDWithSuffix("cty")
	assert.True(t, strings.HasPrefix(id, "cty_"))
	assert.NotEqual(t, id, GenerateUUIDWithSuffix("cty"))
}

func TestEntityLookup(t *testing.T) {
	d, ok := Entity("currency")
	assert.True(t, ok)
	assert.Equal(t, "currencies", d.Table)
	assert.Equal(t, "currency_uuid", d.UUIDColumn)

	_, ok = Entity("nope")
	assert.False(t, ok)
}

func TestSearchableDefaults(t *testing.T) {
	d, _ := Entity("country")
	assert.Equal(t, []string{"code", "name"}, d.Searchable())

	u, _ := Entity("user")
	assert.Equal(t, []string{"username", "email"}, u.Searchable())
}

func TestQueryDefinitionInjectsAuditJoins(t *testing.T) {
	d, _ := Entity("setting")
	def := d.QueryDefinition()

	assert.Contains(t, def.JoinSQL, "LEFT JOIN users creators")
	assert.Contains(t, def.JoinSQL, "LEFT JOIN users modifiers")
	assert.Contains(t, def.CustomFields, "createdByName")
	assert.Contains(t, def.CustomFields, "modifiedByName")
	assert.Equal(t, "created_at", def.DefaultSort)
}
