package security

import (
	"net/url"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/mlacademy/authkit/internal/util"
)

var (
	// DefaultTrustedImageDomains lists registrable domains image URLs may point at.
	DefaultTrustedImageDomains = []string{
		"upload.wikimedia.org",
		"i.pinimg.com",
		"easydrawingguides.com",
		"variety.com",
		"www.citypng.com",
		"gifer.com",
		"githubusercontent.com",
	}

	// DefaultTrustedLinkDomains lists registrable domains general links may point at.
	DefaultTrustedLinkDomains = []string{
		"api.github.com",
		"httpbin.org",
		"wikipedia.org",
		"github.com",
		"stackoverflow.com",
		"medium.com",
		"kaggle.com",
		"arxiv.org",
		"youtube.com",
		"coursera.org",
		"edx.org",
	}

	// suspiciousPatterns are rejected outright by Validate. They cover raw
	// markup vectors plus entity-encoded and URL-encoded script fragments.
	suspiciousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script[^>]*>`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)vbscript:`),
		regexp.MustCompile(`(?i)on\w+\s*=`),
		regexp.MustCompile(`(?i)<iframe[^>]*>`),
		regexp.MustCompile(`(?i)<object[^>]*>`),
		regexp.MustCompile(`(?i)<embed[^>]*>`),
		regexp.MustCompile(`(?i)<link[^>]*>`),
		regexp.MustCompile(`(?i)<meta[^>]*>`),
		regexp.MustCompile(`(?i)data:text/html`),
		regexp.MustCompile(`(?i)&#x`),
		regexp.MustCompile(`&#\d`),
		regexp.MustCompile(`(?i)%3C%73%63%72%69%70%74`), // URL-encoded "<script"
	}

	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)

	// domainPattern validates domains added to the image allow-list at runtime.
	domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,61}[a-zA-Z0-9](?:\.[a-zA-Z]{2,})+$`)
)

const (
	// MaxEmailLength bounds email addresses accepted at login.
	MaxEmailLength = 100

	// MinNameLength and MaxNameLength bound display names accepted at login.
	MinNameLength = 2
	MaxNameLength = 50
)

// ValidatorConfig configures a Validator.
type ValidatorConfig struct {
	// RequireHTTPS rejects non-HTTPS image URLs. Enable when the content is
	// served over HTTPS so embedded resources cannot downgrade the page.
	RequireHTTPS bool

	// ImageDomains overrides the trusted image domain allow-list.
	// If nil, DefaultTrustedImageDomains is used.
	ImageDomains []string

	// LinkDomains overrides the trusted link domain allow-list.
	// If nil, DefaultTrustedLinkDomains is used.
	LinkDomains []string
}

// Validator checks free-text input and URLs against suspicious-content
// heuristics and domain allow-lists. Failed checks are reported to the
// auditor; the input itself is never modified.
type Validator struct {
	auditor      *Auditor
	requireHTTPS bool

	mu           sync.RWMutex
	imageDomains []string
	linkDomains  []string
}

// NewValidator creates a Validator. A nil config selects the defaults.
func NewValidator(auditor *Auditor, cfg *ValidatorConfig) *Validator {
	if cfg == nil {
		cfg = &ValidatorConfig{}
	}

	imageDomains := cfg.ImageDomains
	if imageDomains == nil {
		imageDomains = append([]string(nil), DefaultTrustedImageDomains...)
	}
	linkDomains := cfg.LinkDomains
	if linkDomains == nil {
		linkDomains = append([]string(nil), DefaultTrustedLinkDomains...)
	}

	return &Validator{
		auditor:      auditor,
		requireHTTPS: cfg.RequireHTTPS,
		imageDomains: imageDomains,
		linkDomains:  linkDomains,
	}
}

// Validate reports whether input is acceptable free text of at most maxLength
// characters. Empty input is invalid. Input matching a suspicious pattern is
// rejected and audited. Validate has no side effect on the input; callers
// must sanitize separately before storing.
func (v *Validator) Validate(input string, maxLength int) bool {
	if input == "" {
		return false
	}
	// Length bounds count characters, not bytes, so multibyte text is not
	// penalized for its encoding.
	if utf8.RuneCountInString(input) > maxLength {
		return false
	}

	for _, re := range suspiciousPatterns {
		if re.MatchString(input) {
			v.auditor.Log(EventSuspiciousInput, map[string]any{
				"input": util.SafeTruncate(input, 100),
			})
			return false
		}
	}

	return true
}

// ValidateEmail reports whether email is a plausible address. Addresses
// carrying scheme prefixes or angle brackets are rejected and audited.
func (v *Validator) ValidateEmail(email string) bool {
	lowered := strings.ToLower(email)
	if strings.Contains(lowered, "javascript:") || strings.Contains(lowered, "data:") ||
		strings.ContainsAny(email, "<>") {
		v.auditor.Log(EventSuspiciousInput, map[string]any{
			"field": "email",
			"email": util.SafeTruncate(email, 20),
		})
		return false
	}

	return len(email) <= MaxEmailLength && emailPattern.MatchString(email)
}

// ValidateName reports whether name is an acceptable display name:
// letters, spaces, hyphens, apostrophes and periods, trimmed length 2-50.
func (v *Validator) ValidateName(name string) bool {
	if !v.Validate(name, MaxNameLength) {
		return false
	}
	if !namePattern.MatchString(name) {
		return false
	}
	trimmed := len(strings.TrimSpace(name))
	return trimmed >= MinNameLength && trimmed <= MaxNameLength
}

// ValidateURL reports whether rawURL points at an allow-listed link domain.
func (v *Validator) ValidateURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return false
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	return hostTrusted(u.Hostname(), v.linkDomains)
}

// ValidateImageURL reports whether rawURL is an acceptable image source:
// parseable, HTTPS when required, and hosted on an allow-listed domain.
// Any failure is audited.
func (v *Validator) ValidateImageURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		v.auditor.Log(EventInvalidURLFormat, map[string]any{
			"url": util.SafeTruncate(rawURL, 100),
		})
		return false
	}

	if v.requireHTTPS && u.Scheme != "https" {
		return false
	}

	v.mu.RLock()
	trusted := hostTrusted(u.Hostname(), v.imageDomains)
	v.mu.RUnlock()

	if !trusted {
		v.auditor.Log(EventUntrustedImageDomain, map[string]any{
			"domain": u.Hostname(),
		})
		return false
	}

	return true
}

// AddTrustedImageDomain appends a domain to the image allow-list.
// Returns false without modifying the list if the domain is malformed.
func (v *Validator) AddTrustedImageDomain(domain string) bool {
	if !domainPattern.MatchString(domain) {
		return false
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.imageDomains = append(v.imageDomains, domain)
	return true
}

// hostTrusted reports whether hostname equals an allow-listed domain or is a
// true subdomain of one. Matching on the label boundary prevents bypasses
// like "trusted.example.com.attacker.com".
func hostTrusted(hostname string, domains []string) bool {
	for _, domain := range domains {
		if hostname == domain || strings.HasSuffix(hostname, "."+domain) {
			return true
		}
	}
	return false
}
