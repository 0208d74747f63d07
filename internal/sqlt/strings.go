package sqlt

import "strings"

// DecodeString returns the value of a lexed string literal: prefixes and
// quotes are stripped and, unless the literal was raw, backslash escapes are
// resolved.
func DecodeString(raw string) string {
	prefixLen := 0
	for prefixLen < len(raw) && raw[prefixLen] != '\'' && raw[prefixLen] != '"' {
		prefixLen++
	}
	isRaw := strings.ContainsAny(raw[:prefixLen], "rR")
	body := raw[prefixLen:]
	if len(body) >= 6 && (strings.HasPrefix(body, `'''`) || strings.HasPrefix(body, `"""`)) {
		body = body[3 : len(body)-3]
	} else if len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	if isRaw || !strings.ContainsRune(body, '\\') {
		return body
	}
	var out strings.Builder
	out.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			out.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case '0':
			out.WriteByte(0)
		default:
			out.WriteByte(body[i])
		}
	}
	return out.String()
}

// EncodeString renders a value as a target-dialect single-quoted literal.
func EncodeString(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// QuoteIdent wraps one identifier part in double quotes.
func QuoteIdent(part string) string {
	return `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
}

// StripQuotes removes one layer of surrounding back-tick, single- or
// double-quote characters from an identifier.
func StripQuotes(ident string) string {
	if len(ident) >= 2 {
		first, last := ident[0], ident[len(ident)-1]
		if first == last && (first == '`' || first == '\'' || first == '"') {
			return ident[1 : len(ident)-1]
		}
	}
	return ident
}

// QualifiedName joins non-empty name components with dots, double-quoting
// each part.
func QualifiedName(parts ...string) string {
	quoted := make([]string, 0, len(parts))
	for _, part := range parts {
		part = StripQuotes(part)
		if part == "" {
			continue
		}
		quoted = append(quoted, QuoteIdent(part))
	}
	return strings.Join(quoted, ".")
}
