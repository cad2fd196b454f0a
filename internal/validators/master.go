package validators

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Master validates a create payload for the named entity. Only create is
// validated; update bodies are free-form and the database enforces the
// rest. A nil return means the body passed.
func Master(entity, action string, body map[string]interface{}) error {
	if action != "create" {
		return nil
	}

	keys := rulesFor(entity)
	return validation.Validate(body, validation.Map(keys...).AllowExtraKeys())
}

func rulesFor(entity string) []*validation.KeyRules {
	switch entity {
	case "user":
		return []*validation.KeyRules{
			validation.Key("username", validation.Required, validation.Length(3, 60)),
			validation.Key("email", validation.Required, is.Email),
		}
	case "setting":
		return []*validation.KeyRules{
			validation.Key("code", validation.Required),
			validation.Key("name", validation.Required),
			validation.Key("value", validation.Required),
		}
	case "model":
		return []*validation.KeyRules{
			validation.Key("code", validation.Required),
			validation.Key("name", validation.Required),
			validation.Key("brand_uuid", validation.Required),
		}
	case "cmsblock":
		return []*validation.KeyRules{
			validation.Key("code", validation.Required),
			validation.Key("name", validation.Required),
			validation.Key("content", validation.Required),
		}
	default:
		return []*validation.KeyRules{
			validation.Key("code", validation.Required),
			validation.Key("name", validation.Required),
		}
	}
}
