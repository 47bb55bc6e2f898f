package security

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// plainTextPolicy strips all markup, keeping only text content.
	plainTextPolicy = bluemonday.StrictPolicy()

	// richTextPolicy preserves a small allow-list of inline formatting tags.
	// Script, object, embed, iframe and form tags and all on* attributes are
	// outside the allow-list and therefore stripped.
	richTextPolicy = newRichTextPolicy()

	// dangerousSchemes matches script-injection vectors that can survive
	// markup stripping because they live in plain text.
	dangerousSchemes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)data:`),
		regexp.MustCompile(`(?i)vbscript:`),
		regexp.MustCompile(`(?i)on\w+=`),
	}

	angleBrackets = strings.NewReplacer("<", "", ">", "")
)

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "p", "br", "span")
	p.AllowAttrs("class").OnElements("span")
	return p
}

// SanitizePlainText strips all markup and known script-injection vectors from
// free-text input and trims surrounding whitespace. It never fails; the result
// contains no angle brackets and no dangerous scheme prefixes.
func SanitizePlainText(input string) string {
	cleaned := plainTextPolicy.Sanitize(input)

	for _, re := range dangerousSchemes {
		cleaned = re.ReplaceAllString(cleaned, "")
	}

	// The policy escapes stray brackets rather than removing them; drop any
	// literal ones that remain so the output is safe to re-render verbatim.
	cleaned = angleBrackets.Replace(cleaned)

	return strings.TrimSpace(cleaned)
}

// SanitizeRichText sanitizes HTML for redisplay as formatted content,
// preserving only b, i, em, strong, p, br and span (with a class attribute).
// Everything else, including script/object/embed/iframe/form tags and
// inline event handlers, is stripped.
func SanitizeRichText(input string) string {
	return richTextPolicy.Sanitize(input)
}
