package model

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateUUIDWithSuffix returns a prefixed UUID, e.g. cty_<uuid> for
// countries. The prefix makes identifiers self-describing in logs and
// payloads.
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// UUIDPrefix maps an entity key to its identifier prefix.
func UUIDPrefix(key string) string {
	switch key {
	case "country":
		return "cty"
	case "city":
		return "cit"
	case "currency":
		return "cur"
	case "role":
		return "rol"
	case "setting":
		return "set"
	case "cmsblock":
		return "cms"
	case "brand":
		return "brd"
	case "model":
		return "mdl"
	case "user":
		return "usr"
	default:
		return "rec"
	}
}
