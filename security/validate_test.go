package security

import (
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestValidator(cfg *ValidatorConfig) *Validator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewValidator(NewAuditor(logger, true), cfg)
}

func TestValidate(t *testing.T) {
	v := newTestValidator(nil)

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      bool
	}{
		{"valid short text", "hello world", 100, true},
		{"empty input is invalid", "", 100, false},
		{"over length", strings.Repeat("a", 101), 100, false},
		{"length exactly at bound", strings.Repeat("a", 100), 100, true},
		{"multibyte at bound counts characters", strings.Repeat("é", 100), 100, true},
		{"multibyte over bound", strings.Repeat("é", 101), 100, false},
		{"cjk within bound", strings.Repeat("学", 50), 100, true},
		{"zero max length rejects everything", "a", 0, false},
		{"script tag", "<script>alert(1)</script>", 100, false},
		{"javascript scheme", "javascript:alert(1)", 100, false},
		{"vbscript scheme", "vbscript:msgbox", 100, false},
		{"event handler", `x onerror= alert(1)`, 100, false},
		{"iframe tag", `<iframe src="x">`, 100, false},
		{"object tag", "<object data=x>", 100, false},
		{"embed tag", "<embed src=x>", 100, false},
		{"link tag", `<link rel="stylesheet">`, 100, false},
		{"meta tag", `<meta http-equiv="refresh">`, 100, false},
		{"data text html", "data:text/html,x", 100, false},
		{"hex entity", "&#x3c;script", 100, false},
		{"decimal entity", "&#60;script", 100, false},
		{"url encoded script", "%3C%73%63%72%69%70%74", 100, false},
		{"plain angle brackets allowed here", "a < b", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Validate(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("Validate(%q, %d) = %v, want %v", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	v := newTestValidator(nil)

	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"valid", "jane@example.com", true},
		{"valid with plus", "jane+ml@example.co.uk", true},
		{"missing at", "jane.example.com", false},
		{"missing tld", "jane@example", false},
		{"javascript scheme", "javascript:alert@example.com", false},
		{"data scheme", "data:jane@example.com", false},
		{"angle brackets", "<jane>@example.com", false},
		{"too long", strings.Repeat("a", 95) + "@example.com", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ValidateEmail(tt.email); got != tt.want {
				t.Errorf("ValidateEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	v := newTestValidator(nil)

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"simple name", "Jane Doe", true},
		{"hyphenated", "Mary-Jane Watson", true},
		{"apostrophe", "O'Brien", true},
		{"initials", "J. R. R. Tolkien", true},
		{"too short", "J", false},
		{"digits rejected", "Jane2", false},
		{"markup rejected", "<Jane>", false},
		{"too long", strings.Repeat("a", 51), false},
		{"only spaces", "   ", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ValidateName(tt.input); got != tt.want {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	v := newTestValidator(nil)

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"exact domain", "https://github.com/mlacademy", true},
		{"subdomain", "https://gist.github.com/x", true},
		{"wikipedia subdomain", "https://en.wikipedia.org/wiki/ML", true},
		{"untrusted domain", "https://evil.example.com/", false},
		{"suffix bypass attempt", "https://github.com.attacker.com/", false},
		{"embedded trusted name", "https://notgithub.com/", false},
		{"unparseable", "https://%zz/", false},
		{"no host", "/relative/path", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.ValidateURL(tt.url); got != tt.want {
				t.Errorf("ValidateURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		requireHTTPS bool
		want         bool
	}{
		{"trusted domain", "https://upload.wikimedia.org/img.png", false, true},
		{"trusted subdomain", "https://raw.githubusercontent.com/x/y.png", false, true},
		{"untrusted domain", "https://attacker.example/img.png", false, false},
		{"suffix bypass attempt", "https://upload.wikimedia.org.attacker.com/img.png", false, false},
		{"http allowed when not required", "http://upload.wikimedia.org/img.png", false, true},
		{"http rejected when https required", "http://upload.wikimedia.org/img.png", true, false},
		{"unparseable", "https://%zz/", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestValidator(&ValidatorConfig{RequireHTTPS: tt.requireHTTPS})
			if got := v.ValidateImageURL(tt.url); got != tt.want {
				t.Errorf("ValidateImageURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestAddTrustedImageDomain(t *testing.T) {
	v := newTestValidator(nil)

	if v.ValidateImageURL("https://images.mlacademy.io/logo.png") {
		t.Fatal("domain unexpectedly trusted before being added")
	}

	if !v.AddTrustedImageDomain("images.mlacademy.io") {
		t.Fatal("AddTrustedImageDomain rejected a valid domain")
	}
	if !v.ValidateImageURL("https://images.mlacademy.io/logo.png") {
		t.Error("domain not trusted after being added")
	}

	tests := []struct {
		domain string
		want   bool
	}{
		{"example.com", true},
		{"sub.example.co.uk", true},
		{"no-tld", false},
		{"-leading.example.com", false},
		{"", false},
		{"spaces in.example.com", false},
	}
	for _, tt := range tests {
		if got := v.AddTrustedImageDomain(tt.domain); got != tt.want {
			t.Errorf("AddTrustedImageDomain(%q) = %v, want %v", tt.domain, got, tt.want)
		}
	}
}
