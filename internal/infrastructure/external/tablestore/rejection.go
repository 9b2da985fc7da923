package tablestore

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RejectionKind classifies why the backend refused a write.
type RejectionKind string

const (
	// RejectionMissingField means a required field was absent from the payload.
	RejectionMissingField RejectionKind = "missing_field"
	// RejectionUnknownField means the payload referenced a field the schema
	// does not have.
	RejectionUnknownField RejectionKind = "unknown_field"
	// RejectionOther covers everything else the backend refused.
	RejectionOther RejectionKind = "other"
)

// RejectionError is a structured schema rejection from the tablestore.
// Field is best-effort: it is filled when the backend's message names the
// offending field in a parseable way, empty otherwise.
type RejectionError struct {
	Kind       RejectionKind
	Field      string
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e *RejectionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("tablestore rejection (%s, field=%q, status=%d): %s", e.Kind, e.Field, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tablestore rejection (%s, status=%d): %s", e.Kind, e.StatusCode, e.Message)
}

// errorBody covers the envelope shapes tabular backends answer with. Both
// flat {"message": ...} and nested {"error": {"message": ...}} occur in the
// wild, so we accept either.
type errorBody struct {
	Message string `json:"message"`
	Field   string `json:"field"`
	Error   *struct {
		Message string `json:"message"`
		Field   string `json:"field"`
	} `json:"error"`
}

var (
	quotedFieldPattern  = regexp.MustCompile("['\"`]([A-Za-z0-9_.-]+)['\"`]")
	colonedFieldPattern = regexp.MustCompile(`(?i)field[:\s]+([A-Za-z0-9_.-]+)`)
)

// classifyRejection turns a non-2xx response into a RejectionError. The body
// is parsed for the two phrasings the submission engine cares about: a
// required field is missing, or an unknown field was referenced.
func classifyRejection(statusCode int, body []byte) *RejectionError {
	message := string(body)
	field := ""

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != nil && parsed.Error.Message != "" {
			message = parsed.Error.Message
			field = parsed.Error.Field
		} else if parsed.Message != "" {
			message = parsed.Message
			field = parsed.Field
		}
	}

	rej := &RejectionError{
		Kind:       RejectionOther,
		Field:      field,
		Message:    message,
		StatusCode: statusCode,
	}

	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "unknown field") ||
		strings.Contains(lower, "unrecognized field") ||
		strings.Contains(lower, "no such field") ||
		strings.Contains(lower, "not a valid field"):
		rej.Kind = RejectionUnknownField
	case (strings.Contains(lower, "required") && strings.Contains(lower, "missing")) ||
		strings.Contains(lower, "missing field") ||
		strings.Contains(lower, "is required"):
		rej.Kind = RejectionMissingField
	}

	if rej.Field == "" && rej.Kind != RejectionOther {
		rej.Field = extractFieldName(message)
	}
	return rej
}

// extractFieldName pulls the field name out of a rejection message. Quoted
// names win over the "field: name" form.
func extractFieldName(message string) string {
	if m := quotedFieldPattern.FindStringSubmatch(message); len(m) == 2 {
		return m[1]
	}
	if m := colonedFieldPattern.FindStringSubmatch(message); len(m) == 2 {
		return m[1]
	}
	return ""
}
