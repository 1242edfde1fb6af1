package osu

import (
	"mime"
	"strings"
)

// FileNameFromDisposition extracts the suggested file name from a
// Content-Disposition header value.
//
// The header is parsed as a media type first, which handles quoting and the
// RFC 5987 filename* form. Servers that send unquoted names containing spaces
// or other separators fail that parse; for those the parameters are split on
// ';' outside quotes and the filename value is unquoted by hand.
func FileNameFromDisposition(header string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return "", false
	}

	if _, params, err := mime.ParseMediaType(header); err == nil {
		if name := params["filename"]; name != "" {
			return name, true
		}
	}

	for _, part := range splitParams(header) {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(key), "filename") {
			continue
		}
		if value = unquote(strings.TrimSpace(value)); value != "" {
			return value, true
		}
	}

	return "", false
}

// splitParams splits a header value on ';' outside double quotes.
func splitParams(header string) []string {
	var (
		parts   []string
		start   int
		quoted  bool
		escaped bool
	)
	for i := 0; i < len(header); i++ {
		c := header[i]
		switch {
		case escaped:
			escaped = false
		case quoted && c == '\\':
			escaped = true
		case c == '"':
			quoted = !quoted
		case c == ';' && !quoted:
			parts = append(parts, header[start:i])
			start = i + 1
		}
	}
	return append(parts, header[start:])
}

// unquote strips surrounding double quotes and resolves backslash escapes.
// An unterminated quote keeps the rest of the value.
func unquote(value string) string {
	if !strings.HasPrefix(value, `"`) {
		return value
	}
	value = strings.TrimSuffix(value[1:], `"`)

	var b strings.Builder
	escaped := false
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		b.WriteByte(c)
	}
	return b.String()
}
