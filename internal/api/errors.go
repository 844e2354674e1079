package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrUnauthorized marks authentication/authorization failures. A RequestError
// with a 401/403 status matches it via errors.Is; the session controller
// treats it (and any other verification failure) as a forced logout.
var ErrUnauthorized = errors.New("unauthorized")

// RequestError is a non-2xx response with whatever structured detail the
// server provided. Validation failures arrive as a field → messages mapping;
// permission and auth failures usually carry only a detail string.
type RequestError struct {
	StatusCode int
	// Fields holds per-field validation messages ({"amount": ["required"]}).
	Fields map[string][]string
	// Detail is the server's "detail" / "non_field_errors" text, if any.
	Detail string
}

func (e *RequestError) Error() string {
	msg := e.message()
	if msg == "" {
		return fmt.Sprintf("server returned %s", http.StatusText(e.StatusCode))
	}
	return msg
}

func (e *RequestError) Is(target error) bool {
	return target == ErrUnauthorized &&
		(e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}

// message flattens the structured payload for display: "field: a, b; field2: c".
// Field order is sorted so the output is stable.
func (e *RequestError) message() string {
	parts := make([]string, 0, len(e.Fields)+1)
	if strings.TrimSpace(e.Detail) != "" {
		parts = append(parts, strings.TrimSpace(e.Detail))
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msgs := e.Fields[k]
		if len(msgs) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(msgs, ", ")))
	}
	return strings.Join(parts, "; ")
}

// FieldError returns the joined messages for one field ("" when the server
// reported nothing for it). Views use this for field-level error display.
func (e *RequestError) FieldError(field string) string {
	if msgs, ok := e.Fields[field]; ok {
		return strings.Join(msgs, ", ")
	}
	return ""
}

// parseRequestError interprets a non-2xx body. The server's error payloads
// are JSON objects whose values are either message lists (validation) or
// plain strings (detail); anything unparseable degrades to a generic error
// carrying just the status.
func parseRequestError(status int, body []byte) *RequestError {
	re := &RequestError{StatusCode: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return re
	}

	for key, val := range raw {
		var msgs []string
		if err := json.Unmarshal(val, &msgs); err == nil {
			if key == "non_field_errors" {
				re.Detail = joinDetail(re.Detail, strings.Join(msgs, ", "))
				continue
			}
			if re.Fields == nil {
				re.Fields = map[string][]string{}
			}
			re.Fields[key] = msgs
			continue
		}
		var msg string
		if err := json.Unmarshal(val, &msg); err == nil {
			if key == "detail" || key == "non_field_errors" || key == "error" || key == "message" {
				re.Detail = joinDetail(re.Detail, msg)
				continue
			}
			if re.Fields == nil {
				re.Fields = map[string][]string{}
			}
			re.Fields[key] = []string{msg}
		}
	}
	return re
}

func joinDetail(a, b string) string {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "; " + b
}
