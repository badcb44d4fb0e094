package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"wallet-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount a NUMERIC(20,2) column can hold.
var MaxAmount = decimal.RequireFromString("999999999999999999.99")

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators installs the money and metadata rules on v.
func RegisterValidators(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{}, Amount{})
	_ = v.RegisterValidation("money", validateMoney)
	_ = v.RegisterValidation("scalar_map", validateScalarMap)
}

// decimalValue exposes decimals to the validator as their exact string form.
func decimalValue(field reflect.Value) interface{} {
	switch d := field.Interface().(type) {
	case decimal.Decimal:
		return d.String()
	case Amount:
		return d.String()
	}
	return nil
}

// validateMoney requires MinAmount <= amount <= MaxAmount.
func validateMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(domain.MinAmount) && d.LessThanOrEqual(MaxAmount)
}

// validateScalarMap accepts maps whose values are strings, numbers, booleans or null.
func validateScalarMap(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	iter := field.MapRange()
	for iter.Next() {
		if !isScalar(iter.Value().Interface()) {
			return false
		}
	}
	return true
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64, json.Number:
		return true
	default:
		return false
	}
}

// ValidationMessage turns binding errors into a client-facing message.
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "money":
			msgs = append(msgs, fmt.Sprintf("%s must be between %s and %s",
				field, domain.FormatMoney(domain.MinAmount), domain.FormatMoney(MaxAmount)))
		case "scalar_map":
			msgs = append(msgs, fmt.Sprintf("%s values must be strings, numbers, booleans or null", field))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' rule", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
