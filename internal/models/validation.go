package models

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator builds the shared validator.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	RegisterValidators(v)
	return v
}

// RegisterValidators installs the model rules on v. Field names in errors use
// the JSON tag so reported paths match the wire format ("financials.capRate").
// Handlers call it on gin's binding engine so request binding reports the same
// names.
func RegisterValidators(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
}

// InvalidField describes the first field that violated the model contract.
type InvalidField struct {
	Field  string
	Reason string
}

func (f *InvalidField) Error() string {
	return fmt.Sprintf("%s %s", f.Field, f.Reason)
}

// Validate checks that every float field is finite, required strings are
// non-empty and enums hold known values. Numeric ranges are intentionally not
// checked. It returns nil or an *InvalidField naming the offending field.
func (r *AnalysisResult) Validate() error {
	return firstInvalidField(validate.Struct(r))
}

// Validate checks the buy-box criteria.
func (b *BuyBox) Validate() error {
	return firstInvalidField(validate.Struct(b))
}

func firstInvalidField(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	return &InvalidField{
		Field:  fieldPath(fe.Namespace()),
		Reason: describeTag(fe),
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "finite":
		return "must be a finite number"
	case "required":
		return "is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}
