package validation

import (
	"fmt"
	"strings"
)

var messages = map[string]string{
	"required":    "The %s field is required.",
	"not_null":    "The %s field must not be null.",
	"nul":         "The %s field must not contain null characters.",
	"string":      "The %s field must be a string.",
	"email":       "The %s field must be a valid email address.",
	"integer":     "The %s field must be an integer.",
	"uuid":        "The %s field must be a valid UUID.",
	"max.string":  "The %s field must not be greater than %d characters.",
	"max.numeric": "The %s field must not be greater than %d.",
	"min.string":  "The %s field must be at least %d characters.",
	"min.numeric": "The %s field must be at least %d.",
	"in":          "The selected %s is invalid.",
	"unique":      "The %s has already been taken.",
	"exists":      "The selected %s is invalid.",
}

func typeKey(k kind) string {
	switch k {
	case kindEmail:
		return "email"
	case kindInt:
		return "integer"
	case kindUUID:
		return "uuid"
	}
	return "string"
}

// message renders the text for key; field names are shown with spaces
// ("last_name" reads "last name").
func message(key, field string, args ...interface{}) string {
	label := strings.ReplaceAll(field, "_", " ")
	return fmt.Sprintf(messages[key], append([]interface{}{label}, args...)...)
}
