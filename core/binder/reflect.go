package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

func targetStruct(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, bindError(ErrInvalidTarget, "", fmt.Sprintf("got %T", v))
	}
	return rv.Elem(), nil
}

func bindValues(v any, tag string, values map[string][]string, bindErr error) error {
	return eachField(v, tag, bindErr, func(name string) []string {
		return values[name]
	})
}

// eachField sets every exported field whose tag resolves to a non-empty
// lookup result.
func eachField(v any, tag string, bindErr error, lookup func(name string) []string) error {
	rv, err := targetStruct(v)
	if err != nil {
		return err
	}
	rt := rv.Type()

	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, skip := fieldName(sf, tag)
		if skip {
			continue
		}
		values := lookup(name)
		if len(values) == 0 {
			continue
		}
		if err := setField(rv.Field(i), values); err != nil {
			return bindError(bindErr, sf.Name, err.Error())
		}
	}
	return nil
}

// fieldName returns the tag name, or the lowercased field name when the
// field has no tag. File fields are left to bindFiles.
func fieldName(sf reflect.StructField, tag string) (string, bool) {
	if _, ok := sf.Tag.Lookup("file"); ok {
		return "", true
	}
	t, ok := sf.Tag.Lookup(tag)
	if !ok {
		return strings.ToLower(sf.Name), false
	}
	name, _, _ := strings.Cut(t, ",")
	if name == "-" || name == "" {
		return "", true
	}
	return name, false
}

func setField(field reflect.Value, values []string) error {
	switch field.Kind() {
	case reflect.Pointer:
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setField(field.Elem(), values)

	case reflect.Slice:
		var all []string
		for _, v := range values {
			for part := range strings.SplitSeq(v, ",") {
				all = append(all, strings.TrimSpace(part))
			}
		}
		slice := reflect.MakeSlice(field.Type(), len(all), len(all))
		for i, s := range all {
			if err := setScalar(slice.Index(i), s); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}

	// the last value wins, as in multipart.Body.Field
	return setScalar(field, values[len(values)-1])
}

func setScalar(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(sanitizeString(s))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		field.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", s)
		}
		field.SetUint(n)

	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		field.SetFloat(n)

	case reflect.Bool:
		switch strings.ToLower(s) {
		case "1", "t", "true", "on", "yes":
			field.SetBool(true)
		case "0", "f", "false", "off", "no", "":
			field.SetBool(false)
		default:
			return fmt.Errorf("invalid boolean %q", s)
		}

	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}

// sanitizeString strips control characters other than tab, which keeps
// CR/LF out of values that may end up in headers or logs.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
}
