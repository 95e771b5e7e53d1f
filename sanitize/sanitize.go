// Package sanitize provides escaping and stripping of untrusted
// strings for interpolation into three output contexts.
//
// SECURITY: sanitization is defense in depth, not a substitute for
// context-aware templating or parameterized queries. The SQL context
// in particular only backslash-escapes metacharacters; callers must
// still bind values through placeholders upstream.
//
//	safe := sanitize.Sanitize(userInput, sanitize.XSS)
//
// Sanitize is a pure, total function: it never fails, and empty input
// yields empty output.
package sanitize

import (
	"regexp"
	"strings"
)

// Context selects the output context the string is being prepared for.
type Context string

const (
	// HTML escapes markup metacharacters to entities for safe
	// interpolation into element content or attribute values.
	HTML Context = "html"

	// SQL backslash-escapes quote and terminator characters.
	SQL Context = "sql"

	// XSS strips script blocks, javascript: URI schemes, and inline
	// event handler attributes, then entity-escapes what remains.
	// This is the default context.
	XSS Context = "xss"
)

var (
	scriptBlockPattern  = regexp.MustCompile(`(?is)<script\b.*?</script\s*>`)
	jsSchemePattern     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
	sqlMetaPattern      = regexp.MustCompile(`['";\\]`)
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

var xssEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// Sanitize prepares input for the given output context.
// Unrecognized contexts are treated as XSS.
func Sanitize(input string, ctx Context) string {
	if input == "" {
		return ""
	}

	switch ctx {
	case HTML:
		return htmlEscaper.Replace(input)

	case SQL:
		return sqlMetaPattern.ReplaceAllString(input, `\$0`)

	default:
		return xssEscaper.Replace(stripActiveContent(input))
	}
}

// stripActiveContent removes script blocks, javascript: schemes, and
// inline event handlers until no pattern matches. A single pass is not
// enough: the text surrounding a removed match can reassemble into a
// new match, e.g. "javajavascript:script:" strips to "javascript:".
// The loop terminates because every replacement shortens the string.
func stripActiveContent(s string) string {
	for {
		prev := s
		s = scriptBlockPattern.ReplaceAllString(s, "")
		s = jsSchemePattern.ReplaceAllString(s, "")
		s = eventHandlerPattern.ReplaceAllString(s, "")
		if s == prev {
			return s
		}
	}
}
