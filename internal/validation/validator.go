// Package validation turns raw key/value payloads into typed, constrained
// inputs or a field-level error.
package validation

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"blood-request-coordinator/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var phonePattern = regexp.MustCompile(`^\d{10,12}$`)

// messages are keyed by "<field>.<tag>", falling back to "<field>"
var messages = map[string]string{
	"name":        "Hospital name must be at least 3 characters.",
	"locality":    "Locality must be at least 3 characters.",
	"phone":       "Please enter a valid 10-12 digit phone number.",
	"mapLink":     "Map link must be a valid URL.",
	"hospitalId":  "Please select a hospital.",
	"bloodGroup":  "Please select a valid blood group.",
	"units":       "At least one unit is required.",
	"urgency":     "Please select a valid urgency level.",
	"patientName": "Patient name is required.",
	"status":      "Status must be either active or inactive.",
}

// Error lists the invalid fields of a payload and why each one failed
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

func (e *Error) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *Error) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		return models.BloodGroup(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("urgency", func(fl validator.FieldLevel) bool {
		return models.Urgency(fl.Field().String()).Valid()
	})
	return v
}

// decode copies scalar payload values into a struct of strings. Nested
// objects and arrays are reported as field errors instead of being coerced.
func decode(payload map[string]interface{}, out interface{}, verr *Error) {
	for key, value := range payload {
		switch reflect.ValueOf(value).Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			verr.add(key, fmt.Sprintf("%s must be a single value.", key))
			delete(payload, key)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		verr.add("payload", "Invalid data provided.")
		return
	}
	if err := decoder.Decode(payload); err != nil {
		verr.add("payload", "Invalid data provided.")
	}
}

func check(input interface{}, verr *Error) {
	err := validate.Struct(input)
	if err == nil {
		return
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.add("payload", "Invalid data provided.")
		return
	}
	for _, e := range validationErrs {
		field := e.Field()
		if _, exists := verr.Fields[field]; exists {
			continue
		}
		if msg, ok := messages[field+"."+e.Tag()]; ok {
			verr.add(field, msg)
		} else if msg, ok := messages[field]; ok {
			verr.add(field, msg)
		} else {
			verr.add(field, fmt.Sprintf("%s is invalid.", field))
		}
	}
}

// CoerceUnits converts a units value to a whole number. It accepts integral
// decimals such as "3.0" and rejects fractions and non-numeric text.
func CoerceUnits(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func copyPayload(payload map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
