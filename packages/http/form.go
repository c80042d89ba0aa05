package http

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitclient/packages/uri"
	"github.com/mitchellh/mapstructure"
)

// FormEncode serializes body as application/x-www-form-urlencoded.
//
// Maps and structs are accepted. Nested maps become key[sub]=v, slices of
// scalars become key[]=v and slices of objects become key[i][sub]=v. Keys are
// emitted in sorted order and spaces are encoded as "+".
func FormEncode(body any) (string, error) {
	if values, ok := body.(url.Values); ok {
		return values.Encode(), nil
	}

	fields, err := toMap(body)
	if err != nil {
		return "", err
	}

	var pairs []string
	add := func(key string, value any) {
		pairs = append(pairs, formEscape(key)+"="+formEscape(uri.Stringify(value)))
	}
	for _, k := range sortedKeys(fields) {
		buildFormParams(k, fields[k], add)
	}
	return strings.Join(pairs, "&"), nil
}

func buildFormParams(prefix string, value any, add func(string, any)) {
	if value == nil {
		add(prefix, "")
		return
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			add(prefix, "")
			return
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			add(prefix, rv.Interface())
			return
		}
		for i := 0; i < rv.Len(); i++ {
			item := rv.Index(i).Interface()
			if isComposite(item) {
				buildFormParams(fmt.Sprintf("%s[%d]", prefix, i), item, add)
			} else {
				buildFormParams(prefix+"[]", item, add)
			}
		}
	case reflect.Map, reflect.Struct:
		fields, err := toMap(rv.Interface())
		if err != nil {
			add(prefix, rv.Interface())
			return
		}
		for _, k := range sortedKeys(fields) {
			buildFormParams(prefix+"["+k+"]", fields[k], add)
		}
	default:
		add(prefix, rv.Interface())
	}
}

// toMap flattens one level of a map or struct into map[string]any. Structs
// honor json tags.
func toMap(body any) (map[string]any, error) {
	switch m := body.(type) {
	case map[string]any:
		return m, nil
	case uri.Params:
		return m, nil
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}

	rv := reflect.ValueOf(body)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return out, nil
	case reflect.Struct:
		out := make(map[string]any)
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &out,
		})
		if err != nil {
			return nil, fmt.Errorf("form decoder: %w", err)
		}
		if err := decoder.Decode(rv.Interface()); err != nil {
			return nil, fmt.Errorf("flatten form body: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: form body must be a map or struct, got %T", ErrUnsupportedBody, body)
}

func isComposite(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Struct:
		return true
	case reflect.Slice, reflect.Array:
		return rv.Type().Elem().Kind() != reflect.Uint8
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formEscape(s string) string {
	return strings.ReplaceAll(uri.EncodeComponent(s), "%20", "+")
}
