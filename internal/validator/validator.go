// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var hexColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var enums = map[string][]string{
	"transaction_type":    {"income", "expense", "transfer"},
	"category_type":       {"income", "expense", "transfer"},
	"payment_method_type": {"cash", "card", "bank", "digital", "crypto", "other"},
	"space_type":          {"personal", "shared"},
	"tag_operation":       {"add", "remove", "replace"},
	"export_format":       {"json", "csv", "xlsx"},
	"trend_period":        {"day", "week", "month", "year"},
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("hex_color", validateHexColor)
	for tag, allowed := range enums {
		_ = v.RegisterValidation(tag, oneOf(allowed))
	}
}

// IsHexColor reports whether s is a #RRGGBB color.
func IsHexColor(s string) bool {
	return hexColorRegex.MatchString(s)
}

func validateHexColor(fl validator.FieldLevel) bool {
	return IsHexColor(fl.Field().String())
}

func oneOf(allowed []string) validator.Func {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		_, ok := set[fl.Field().String()]
		return ok
	}
}
