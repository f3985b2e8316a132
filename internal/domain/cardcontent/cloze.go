package cardcontent

import (
	"regexp"
	"strings"
)

// ClozePlaceholder replaces each deletion when rendering the question side
// of a cloze card.
const ClozePlaceholder = "[...]"

// clozePrefix matches the optional cN:: numbering prefix inside a deletion,
// as in {{c1::capital}}.
var clozePrefix = regexp.MustCompile(`^c\d+::`)

// clozeSpan is one {{...}} deletion found in cloze text.
type clozeSpan struct {
	start   int    // byte offset of the opening {{
	end     int    // byte offset just past the closing }}
	content string // cleaned deletion content, cN:: prefix stripped
}

// parseClozeSpans scans text left to right for {{...}} deletions.
// Deletions must not be nested, and every opening marker needs a matching
// close (and vice versa) within the same scan. A malformed marker aborts the
// scan and returns a single FieldError describing the defect; empty deletion
// content is not an error here and is left to the validator.
func parseClozeSpans(text string) ([]clozeSpan, *FieldError) {
	var spans []clozeSpan
	i := 0
	for i < len(text) {
		rest := text[i:]
		open := strings.Index(rest, "{{")
		closing := strings.Index(rest, "}}")

		if open == -1 && closing == -1 {
			break
		}
		if open == -1 || (closing != -1 && closing < open) {
			return nil, &FieldError{
				Kind:    KindMalformedClozeSyntax,
				Message: "closing marker }} without a matching opening {{",
			}
		}

		inner := rest[open+2:]
		innerClose := strings.Index(inner, "}}")
		if innerClose == -1 {
			return nil, &FieldError{
				Kind:    KindMalformedClozeSyntax,
				Message: "opening marker {{ without a matching closing }}",
			}
		}
		if nested := strings.Index(inner[:innerClose], "{{"); nested != -1 {
			return nil, &FieldError{
				Kind:    KindMalformedClozeSyntax,
				Message: "nested opening marker inside a deletion",
			}
		}

		content := strings.TrimSpace(inner[:innerClose])
		content = strings.TrimSpace(clozePrefix.ReplaceAllString(content, ""))

		spans = append(spans, clozeSpan{
			start:   i + open,
			end:     i + open + 2 + innerClose + 2,
			content: content,
		})
		i = i + open + 2 + innerClose + 2
	}
	return spans, nil
}

// renderClozeQuestion returns text with every deletion replaced by the
// literal placeholder marker.
func renderClozeQuestion(text string, spans []clozeSpan) string {
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	prev := 0
	for _, s := range spans {
		b.WriteString(text[prev:s.start])
		b.WriteString(ClozePlaceholder)
		prev = s.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

// clozeAnswers returns the deletion contents in order: the full joined list
// for the answer side, and the unique first-occurrence set.
func clozeAnswers(spans []clozeSpan) (joined string, unique []string) {
	all := make([]string, 0, len(spans))
	seen := make(map[string]bool, len(spans))
	for _, s := range spans {
		all = append(all, s.content)
		if !seen[s.content] {
			seen[s.content] = true
			unique = append(unique, s.content)
		}
	}
	return strings.Join(all, ", "), unique
}
