package collection

import (
	"fmt"
	"sort"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ptbrtranslations "github.com/go-playground/validator/v10/translations/pt_BR"

	"github.com/escolaware/secretaria/core"
)

// InitValidators registers the pt_BR error messages for validator-native errors.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = ptbrtranslations.RegisterDefaultTranslations(validate, translator)
}

// ValidatePayload checks a write payload against the definition:
// required fields first, in definition order; then present keys against the
// allowed set, in sorted order. Only the first violation is reported.
// There is no type, format or cross-field checking.
func (d Definition) ValidatePayload(validate *validator.Validate, rec Record) error {
	rules := make(map[string]interface{}, len(d.Required))
	for _, f := range d.Required {
		rules[f] = "required"
	}

	failed := validate.ValidateMap(rec, rules)
	for _, f := range d.Required {
		if _, ok := failed[f]; ok {
			return core.NewValidationError(nil, core.FieldError{
				Field: f,
				Error: fmt.Sprintf("%s precisa ter um '%s'", d.Label, f),
			})
		}
	}

	allowed := d.allowed()
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := allowed[k]; !ok {
			return core.NewValidationError(nil, core.FieldError{
				Field: k,
				Error: fmt.Sprintf("O campo '%s' não é permitido", k),
			})
		}
	}
	return nil
}
