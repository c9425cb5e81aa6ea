package common

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// validate is the shared validator instance. Validate caches struct
// metadata, so the whole process uses a single one.
var validate = validator.New()

// GenericEchoValidator adapts the go-playground validator to echo's
// Validator interface.
type GenericEchoValidator struct {
	Validator *validator.Validate
}

func (gv *GenericEchoValidator) Validate(i interface{}) error {
	if gv.Validator == nil {
		gv.Validator = validate
	}
	if err := gv.Validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("received invalid request body: %v", err))
	}
	return nil
}

// ValidateStruct checks any struct carrying validate tags against the shared
// validator.
func ValidateStruct(i interface{}) error {
	return validate.Struct(i)
}
