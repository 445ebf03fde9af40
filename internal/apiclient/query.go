package apiclient

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// BuildQuery serializes the non-zero fields of a filter struct tagged with
// `url:"name"` into an encoded query string. Zero values count as unset.
func BuildQuery(filter any) string {
	v := reflect.ValueOf(filter)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}

	params := url.Values{}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Tag.Get("url")
		if name == "" || name == "-" || !field.IsExported() {
			continue
		}
		fv := v.Field(i)
		if fv.IsZero() {
			continue
		}
		if fv.Kind() == reflect.Pointer {
			fv = fv.Elem()
		}
		params.Add(name, formatValue(fv))
	}
	return params.Encode()
}

func formatValue(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	}
	return fmt.Sprint(v.Interface())
}

// WithQuery appends the encoded filter to path.
func WithQuery(path string, filter any) string {
	if q := BuildQuery(filter); q != "" {
		return path + "?" + q
	}
	return path
}
