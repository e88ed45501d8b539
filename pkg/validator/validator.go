package validator

import (
	"github.com/go-playground/validator/v10"
)

// Validate is a shared instance; the validator caches struct metadata,
// so one instance per process is the cheap way to use it.
var Validate *validator.Validate

func init() {
	Validate = validator.New()
}

// Struct validates the exported fields of s against their validate tags.
func Struct(s any) error {
	return Validate.Struct(s)
}
