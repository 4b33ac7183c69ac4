package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// defaultListKeys are wrapper keys the backend uses around list payloads.
var defaultListKeys = []string{"results", "data"}

// DecodeList decodes a list payload into out (a pointer to a slice). The
// backend answers list endpoints in three shapes: a bare array, an object
// wrapping the array under one of keys (or "results"/"data"), or an object
// keyed by id. All three end up as the same slice. Keyed objects are
// ordered by key, numerically when the keys are numbers.
func DecodeList(body []byte, out any, keys ...string) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.Unmarshal([]byte("[]"), out)
	}

	switch trimmed[0] {
	case '[':
		return json.Unmarshal(trimmed, out)
	case '{':
	default:
		return fmt.Errorf("unexpected list payload starting with %q", trimmed[0])
	}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return fmt.Errorf("decode list envelope: %w", err)
	}

	for _, key := range append(append([]string{}, keys...), defaultListKeys...) {
		raw, ok := object[key]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '[' {
			return json.Unmarshal(raw, out)
		}
	}

	names := make([]string, 0, len(object))
	for name, raw := range object {
		raw = bytes.TrimSpace(raw)
		if len(raw) > 0 && raw[0] == '{' {
			names = append(names, name)
		}
	}
	sortKeys(names)

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(object[name])
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), out)
}

func sortKeys(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		a, errA := strconv.ParseInt(names[i], 10, 64)
		b, errB := strconv.ParseInt(names[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return names[i] < names[j]
		}
	})
}

// ErrorDetail extracts the backend's explanation from an error body:
// the "error", "detail" or "message" field, or a bare JSON string.
func ErrorDetail(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return s
		}
		return ""
	}
	var object map[string]json.RawMessage
	if json.Unmarshal(trimmed, &object) != nil {
		return ""
	}
	for _, key := range []string{"error", "detail", "message"} {
		raw, ok := object[key]
		if !ok {
			continue
		}
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// ErrNoValidationDetail is returned when a 400 body carries nothing usable.
var ErrNoValidationDetail = errors.New("no validation detail")

// ValidationDetail flattens a field-error map such as
// {"end_date": ["must be after start"]} into
// "Validation errors: end_date: must be after start. ".
// A bare JSON string is returned as is.
func ValidationDetail(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", ErrNoValidationDetail
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil || s == "" {
			return "", ErrNoValidationDetail
		}
		return s, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) == 0 {
		return "", ErrNoValidationDetail
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Validation errors: ")
	for _, name := range names {
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(strings.Join(messagesOf(fields[name]), ", "))
		b.WriteString(". ")
	}
	return b.String(), nil
}

func messagesOf(raw json.RawMessage) []string {
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return list
	}
	var single string
	if json.Unmarshal(raw, &single) == nil {
		return []string{single}
	}
	return []string{string(bytes.TrimSpace(raw))}
}
