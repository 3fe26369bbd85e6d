// Package request decodes and validates handler inputs.
package request

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-playground/validator"

	"github.com/dipaca/autolavado/internal/lib/apperr"
)

// NewValidator returns the validator every handler uses. On top of the
// built-in tags it understands datetime=<layout> for string fields.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("datetime", isDatetime)
	return v
}

func isDatetime(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.String {
		return false
	}
	_, err := time.Parse(fl.Param(), fl.Field().String())
	return err == nil
}

// Decode reads a JSON body into dst and validates it.
// A validator failure is returned as validator.ValidationErrors.
func Decode(r *http.Request, validate *validator.Validate, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.ErrValidation, "Invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}

// ValidationErrors extracts validator failures from err.
func ValidationErrors(err error) (validator.ValidationErrors, bool) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

// ID parses a positive integer URL parameter.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation("Invalid " + name)
	}
	return id, nil
}

// Limit parses the optional "limit" query parameter. Zero means unset.
func Limit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("Invalid limit")
	}
	return n, nil
}

// InvalidParam reports a malformed query parameter.
func InvalidParam(name string) error {
	return apperr.Validation("Invalid " + name)
}
