// Package env loads configuration structs from environment variables.
package env

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"
)

// Validator is implemented by config structs that need validation.
type Validator interface {
	Validate() error
}

// Sentinel errors wrapped by Load.
var (
	ErrNotStructPointer = errors.New("env: argument must be a pointer to struct")
	ErrUnsupportedType  = errors.New("env: unsupported field type")
)

// FieldError reports a variable whose value could not be applied to its field.
type FieldError struct {
	Field string
	Var   string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid value for %s=%q (field %s): %v", e.Var, e.Value, e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
)

// Load loads configuration from environment variables into the provided struct pointer.
//
// Supported struct tags:
//   - env:"VAR_NAME" maps the field to VAR_NAME
//   - default:"value" is used when VAR_NAME is unset
//
// A variable that is set, even to the empty string, always wins over the default.
// Supported field types are string, bool, the signed integers and
// time.Duration (Go duration strings such as "5s" or "1m30s").
//
// Nested and embedded structs are loaded recursively. Any struct that
// implements Validator, the root included, is validated after loading.
func Load(v any) error {
	ptrVal := reflect.ValueOf(v)
	if ptrVal.Kind() != reflect.Pointer || ptrVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w, got %T", ErrNotStructPointer, v)
	}

	if err := parseStruct(ptrVal.Elem()); err != nil {
		return err
	}

	if validator, ok := v.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return err
		}
	}

	return nil
}

func parseStruct(val reflect.Value) error {
	for _, sf := range reflect.VisibleFields(val.Type()) {
		if len(sf.Index) > 1 {
			continue // promoted fields are reached through their embedded struct
		}
		field := val.Field(sf.Index[0])
		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct && field.Type() != timeType {
			if err := parseStruct(field); err != nil {
				return err
			}
			if v, ok := field.Addr().Interface().(Validator); ok {
				if err := v.Validate(); err != nil {
					return err
				}
			}
			continue
		}

		key, value, ok := lookup(sf)
		if !ok {
			continue
		}
		if err := setField(field, value); err != nil {
			return &FieldError{Field: sf.Name, Var: key, Value: value, Err: err}
		}
	}

	return nil
}

// lookup returns the field's variable name and its value, falling back to
// the default tag. ok is false when neither is present.
func lookup(sf reflect.StructField) (key, value string, ok bool) {
	key = sf.Tag.Get("env")
	if key == "" {
		return "", "", false
	}
	if value, ok = os.LookupEnv(key); ok {
		return key, value, true
	}
	value, ok = sf.Tag.Lookup("default")
	return key, value, ok
}

func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
		return nil

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
			return nil
		}

		i, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return err
		}
		field.SetInt(i)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedType, field.Kind())
	}
}
