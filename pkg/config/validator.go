package config

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/compozy/unitgen/engine/generator"
)

// RegisterCustomValidators registers custom validation functions
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("generator_kind", validateGeneratorKind); err != nil {
		return err
	}
	return v.RegisterValidation("regexp", validateRegexp)
}

func validateGeneratorKind(fl validator.FieldLevel) bool {
	kind := fl.Field().String()
	if kind == "" {
		return true
	}
	for _, k := range generator.Kinds {
		if string(k) == kind {
			return true
		}
	}
	return false
}

func validateRegexp(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}
