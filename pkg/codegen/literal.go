package codegen

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Literal syntax for generated source. JSON is a subset of JavaScript
// expression syntax, so every value is written as its JSON form. Both the
// prop serializer and the entry file's data constant go through here.

// encodeLiteral returns v as a single-line source literal.
func encodeLiteral(v any) (string, error) {
	return encodeIndented(v, "")
}

// encodeIndented returns v as a source literal, pretty-printed with the given
// indent unit when it is non-empty.
func encodeIndented(v any, indent string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// generated source is not HTML; keep <, > and & readable
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// attrSafe reports whether s can be written verbatim inside a double-quoted
// JSX attribute. JSX attribute strings have no escape sequences and decode
// HTML entities, so '&' also forces the expression form.
func attrSafe(s string) bool {
	return !strings.ContainsAny(s, "\"\\\n\r&")
}
