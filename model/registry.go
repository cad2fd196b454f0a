package model

// Entities returns the descriptor for every entity wired through the master
// factories. Hand-written responders (users) still appear here so the route
// factory mounts their endpoints; their overrides are registered on top of
// the generated handlers.
func Entities() []EntityDescriptor {
	return []EntityDescriptor{
		{
			Key:        "country",
			Table:      "countries",
			Alias:      "c",
			UUIDColumn: "country_uuid",
			Fields:     []string{"code", "name", "dial_code", "is_active", "created_at"},
			DateFields: []string{"created_at"},
		},
		{
			Key:        "city",
			Table:      "cities",
			Alias:      "ct",
			UUIDColumn: "city_uuid",
			Fields:     []string{"code", "name", "country_uuid", "is_active", "created_at"},
			DateFields: []string{"created_at"},
		},
		{
			Key:        "currency",
			Table:      "currencies",
			Alias:      "cu",
			UUIDColumn: "currency_uuid",
			Fields:     []string{"code", "name", "symbol", "is_active", "created_at"},
			DateFields: []string{"created_at"},
		},
		{
			Key:        "role",
			Table:      "roles",
			Alias:      "r",
			UUIDColumn: "role_uuid",
			Fields:     []string{"code", "name", "description", "is_active", "created_at"},
			DateFields: []string{"created_at"},
		},
		{
			Key:        "setting",
			Table:      "settings",
			Alias:      "s",
			UUIDColumn: "setting_uuid",
			Fields:     []string{"code", "name", "value", "settingdate", "is_active", "created_at"},
			DateFields: []string{"settingdate", "created_at"},
		},
		{
			Key:        "cmsblock",
			Table:      "cms_blocks",
			Alias:      "cb",
			UUIDColumn: "cmsblock_uuid",
			Fields:     []string{"code", "name", "title", "content", "is_active", "created_at"},
			DateFields: []string{"created_at"},
		},
		{
			Key:        "brand",
			Table:      "brands",
			Alias:      "b",
			UUIDColumn: "brand_uuid",
			Fields:     []string{"code", "name", "is_active", "created_at"},
			DateFields: []string{"created_at"},
		},
		{
			Key:            "model",
			Table:          "models",
			Alias:          "m",
			UUIDColumn:     "model_uuid",
			Fields:         []string{"code", "name", "brand_id", "is_active", "created_at"},
			DateFields:     []string{"created_at"},
			TranslateBrand: true,
		},
		{
			Key:              "user",
			Table:            "users",
			Alias:            "u",
			UUIDColumn:       "user_uuid",
			Fields:           []string{"username", "email", "first_name", "last_name", "role_uuid", "is_active", "created_at"},
			DateFields:       []string{"created_at"},
			SearchableFields: []string{"username", "email"},
		},
	}
}

// Entity looks a descriptor up by key.
func Entity(key string) (EntityDescriptor, bool) {
	for _, d := range Entities() {
		if d.Key == key {
			return d, true
		}
	}
	return EntityDescriptor{}, false
}
