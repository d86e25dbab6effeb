package rest

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"hotel-curator/internal/domain"
)

const (
	tagCheckoutAfterCheckin = "after_checkin"
	tagPriceWindow          = "price_window"
)

// Validator wraps go-playground/validator and satisfies echo.Validator.
type Validator struct {
	validator *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(searchRequestRules, domain.SearchRequest{})

	return &Validator{validator: validate}
}

// Validate validates a struct and returns a *ValidationError listing every failing field.
func (v *Validator) Validate(i any) error {
	err := v.validator.Struct(i)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	return NewValidationError(errs)
}

// searchRequestRules holds the cross-field checks of a search request.
func searchRequestRules(sl validator.StructLevel) {
	req := sl.Current().Interface().(domain.SearchRequest)

	if in, out, err := req.Dates(); err == nil && !out.After(in) {
		sl.ReportError(req.Checkout, "checkout", "Checkout", tagCheckoutAfterCheckin, "")
	}
	if req.MinPricePerNight != nil && req.MaxPricePerNight != nil && *req.MinPricePerNight > *req.MaxPricePerNight {
		sl.ReportError(req.MaxPricePerNight, "max_price_per_night", "MaxPricePerNight", tagPriceWindow, "")
	}
}

// ValidationError maps field names to user-facing messages.
type ValidationError struct {
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, e.Errors[field]))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, ", "))
}

// Unwrap lets callers classify the error as a validation failure.
func (e ValidationError) Unwrap() error {
	return domain.ErrValidation
}

func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	out := make(map[string]string, len(errs))
	for _, err := range errs {
		field := fieldPath(err)
		switch err.Tag() {
		case "required":
			out[field] = fmt.Sprintf("%s is required", field)
		case "datetime":
			out[field] = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
		case "min", "gte":
			out[field] = fmt.Sprintf("%s must be at least %s", field, err.Param())
		case "max", "lte":
			out[field] = fmt.Sprintf("%s must be at most %s", field, err.Param())
		case "gt":
			out[field] = fmt.Sprintf("%s must be greater than %s", field, err.Param())
		case "len":
			out[field] = fmt.Sprintf("%s must be exactly %s characters", field, err.Param())
		case "alpha", "lowercase":
			out[field] = fmt.Sprintf("%s must be a lowercase two-letter code", field)
		case "iso4217":
			out[field] = fmt.Sprintf("%s must be an ISO 4217 currency code", field)
		case tagCheckoutAfterCheckin:
			out[field] = "checkout must be after checkin"
		case tagPriceWindow:
			out[field] = "max_price_per_night must not be below min_price_per_night"
		default:
			out[field] = fmt.Sprintf("%s is invalid", field)
		}
	}
	return &ValidationError{Errors: out}
}

// fieldPath drops the root struct name from the namespace, e.g. "guests[0].adults".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}
