package sanitize_test

import (
	"strings"
	"testing"

	"github.com/vendorly/secgate/sanitize"
)

func TestSanitize_HTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text untouched", "hello world", "hello world"},
		{"ampersand", "a&b", "a&amp;b"},
		{"angle brackets", "<b>bold</b>", "&lt;b&gt;bold&lt;&#x2F;b&gt;"},
		{"quotes", `say "hi" and 'bye'`, "say &quot;hi&quot; and &#x27;bye&#x27;"},
		{"slash", "a/b", "a&#x2F;b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.Sanitize(tt.input, sanitize.HTML); got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize_SQL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text untouched", "hello world", "hello world"},
		{"single quote", "O'Brien", `O\'Brien`},
		{"injection attempt", `'; DROP TABLE users; --`, `\'\; DROP TABLE users\; --`},
		{"backslash", `a\b`, `a\\b`},
		{"double quote", `a"b`, `a\"b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitize.Sanitize(tt.input, sanitize.SQL); got != tt.want {
				t.Errorf("Sanitize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitize_XSS(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantContain string
		wantAbsent  []string
	}{
		{
			name:        "script block stripped",
			input:       "<script>alert(1)</script>Hi",
			wantContain: "Hi",
			wantAbsent:  []string{"<script", "alert(1)"},
		},
		{
			name:       "script block with attributes",
			input:      `<script type="text/javascript">steal()</script>`,
			wantAbsent: []string{"<script", "steal()"},
		},
		{
			name:        "javascript scheme stripped",
			input:       `<a href="javascript:alert(1)">x</a>`,
			wantContain: "x",
			wantAbsent:  []string{"javascript:"},
		},
		{
			name:       "inline event handler stripped",
			input:      `<img src=x onerror=alert(1)>`,
			wantAbsent: []string{"onerror="},
		},
		{
			name:       "mixed case scheme",
			input:      "JaVaScRiPt:void(0)",
			wantAbsent: []string{"javascript:", "JaVaScRiPt:"},
		},
		{
			name:        "residual markup escaped",
			input:       "<b>ok</b>",
			wantContain: "&lt;b&gt;ok&lt;/b&gt;",
			wantAbsent:  []string{"<b>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitize.Sanitize(tt.input, sanitize.XSS)
			if tt.wantContain != "" && !strings.Contains(got, tt.wantContain) {
				t.Errorf("Sanitize() = %q, want it to contain %q", got, tt.wantContain)
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("Sanitize() = %q, must not contain %q", got, absent)
				}
			}
		})
	}
}

func TestSanitize_XSS_NeverEmitsScript(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"<SCRIPT>alert(1)</SCRIPT>",
		"<script src=//evil.example></script>",
		"<scr<script>ipt>alert(1)</scr</script>ipt>",
		"javascript:javascript:alert(1)",
		"<script>unterminated",
		// Overlapping fragments that reassemble the scheme once the
		// inner match is removed.
		"jjavascript:avascript:",
		"javajavascript:script:alert(1)",
		"javascrjavascript:ipt:jaonclick=vascript:",
	}

	for _, input := range inputs {
		got := sanitize.Sanitize(input, sanitize.XSS)
		lower := strings.ToLower(got)
		if strings.Contains(lower, "<script") {
			t.Errorf("Sanitize(%q) = %q, contains literal <script", input, got)
		}
		if strings.Contains(lower, "javascript:") {
			t.Errorf("Sanitize(%q) = %q, contains javascript:", input, got)
		}
	}
}

func TestSanitize_DefaultContextIsXSS(t *testing.T) {
	got := sanitize.Sanitize("<script>alert(1)</script>Hi", "")
	if strings.Contains(got, "<script") {
		t.Errorf("unknown context must sanitize as XSS, got %q", got)
	}
	if !strings.Contains(got, "Hi") {
		t.Errorf("content after script block lost: %q", got)
	}
}
