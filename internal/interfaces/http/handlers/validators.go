package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/vistream-inc/vistream/internal/shared/biztime"
)

// RegisterValidations installs custom binding validators. Safe to call more
// than once.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// dateonly accepts accounting dates in YYYY-MM-DD form.
	_ = v.RegisterValidation("dateonly", func(fl validator.FieldLevel) bool {
		_, err := biztime.ParseDate(fl.Field().String())
		return err == nil
	})
}
