package cardcontent

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a single field-level validation failure.
type ErrorKind string

// Validation error kinds. Structural kinds apply to every card type;
// semantic kinds are produced by type-specific rules.
const (
	KindMissingField              ErrorKind = "missing_field"
	KindTypeMismatch              ErrorKind = "type_mismatch"
	KindLengthExceeded            ErrorKind = "length_exceeded"
	KindInvalidValue              ErrorKind = "invalid_value"
	KindInvalidReference          ErrorKind = "invalid_reference"
	KindDuplicateChoice           ErrorKind = "duplicate_choice"
	KindMalformedClozeSyntax      ErrorKind = "malformed_cloze_syntax"
	KindEmptyClozeDeletion        ErrorKind = "empty_cloze_deletion"
	KindUnsupportedImageExtension ErrorKind = "unsupported_image_extension"
)

// FieldError is one validation failure on a single field.
type FieldError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// FieldErrors maps field names to their accumulated validation failures.
// Validation never fails fast: every rule is evaluated and every failure
// recorded, so authors and import batches see the complete error set.
type FieldErrors map[string][]FieldError

// Add records a failure for the named field.
func (fe FieldErrors) Add(field string, kind ErrorKind, format string, args ...any) {
	fe[field] = append(fe[field], FieldError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// Empty reports whether no failures were recorded.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// Error implements the error interface so a FieldErrors value can travel
// through error-returning call chains. Fields are listed in sorted order
// for deterministic output.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "no validation errors"
	}

	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		msgs := make([]string, len(fe[f]))
		for j, e := range fe[f] {
			msgs[j] = e.Message
		}
		fmt.Fprintf(&b, "%s: %s", f, strings.Join(msgs, ", "))
	}
	return b.String()
}
