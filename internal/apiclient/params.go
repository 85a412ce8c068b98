package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strings"
)

// Params are the query parameters of a request. Nil values, nil pointers and empty
// strings are omitted from the encoded query.
type Params map[string]any

// ParamsFrom converts a filter struct into Params using its json tags, so the query
// keys match the backend's field names.
func ParamsFrom(v any) (Params, error) {
	if v == nil {
		return Params{}, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	params := Params{}
	if err := dec.Decode(&params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}

	return params, nil
}

// Encode returns the URL-encoded query sorted by key.
func (p Params) Encode() string {
	values := url.Values{}

	for key, value := range p {
		if s, ok := formatParam(value); ok {
			values.Set(key, s)
		}
	}

	return values.Encode()
}

func formatParam(value any) (string, bool) {
	switch v := value.(type) {
	case nil:
		return "", false
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	}

	rv := reflect.ValueOf(value)

	//nolint:exhaustive
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return "", false
		}

		return formatParam(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]string, 0, rv.Len())

		for i := range rv.Len() {
			if s, ok := formatParam(rv.Index(i).Interface()); ok {
				items = append(items, s)
			}
		}

		return strings.Join(items, ","), len(items) > 0
	default:
		return fmt.Sprint(value), true
	}
}
