package utils

import (
	"github.com/go-playground/validator"
	"github.com/xelth-com/loadboard/internal/timeorder"
)

// NewValidator returns a validator with the project's custom tags registered:
//
//	hhmm - a 24-hour HH:MM time
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return timeorder.Valid(fl.Field().String())
	})
	return v
}
