package event

import (
	"reflect"
	"slices"
	"strings"
)

// DefaultFieldExtractor selects struct fields by their json name.
type DefaultFieldExtractor struct{}

// ExtractFields returns the requested fields of obj keyed by json name.
// Embedded structs are flattened; unexported and json-excluded fields
// are never extracted.
func (e *DefaultFieldExtractor) ExtractFields(obj interface{}, fields []string) map[string]interface{} {
	result := make(map[string]interface{})
	if obj == nil || len(fields) == 0 {
		return result
	}

	val := reflect.ValueOf(obj)
	for val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return result
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return result
	}

	e.collect(val, fields, result)
	return result
}

func (e *DefaultFieldExtractor) collect(val reflect.Value, fields []string, result map[string]interface{}) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			e.collect(val.Field(i), fields, result)
			continue
		}

		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		if slices.Contains(fields, name) {
			result[name] = val.Field(i).Interface()
		}
	}
}

