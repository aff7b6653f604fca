package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/healthflow/clinic-api/pkg/cnpj"
)

// RegisterCustomValidators installs domain validation tags on gin's
// binding engine. Call once at startup.
func RegisterCustomValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return cnpj.IsValid(fl.Field().String())
	})
	v.RegisterValidation("cnes", func(fl validator.FieldLevel) bool {
		return cnpj.IsValidCNES(fl.Field().String())
	})
}
