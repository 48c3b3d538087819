// Package sanitize normalizes untrusted request and storage values. Every function is total:
// malformed input degrades to a default instead of failing.
package sanitize

import (
	"encoding/json"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"assetvaluer/internal/locale"
)

var (
	nonLanguage = regexp.MustCompile(`[^a-z_-]`)
	nonLetter   = regexp.MustCompile(`[^A-Z]`)
	nonNumeric  = regexp.MustCompile(`[^0-9.+-]`)
	nonKey      = regexp.MustCompile(`[^a-z0-9_-]`)
	blankLines  = regexp.MustCompile(`\n\s*\n`)
)

// Sanitizer applies the normalization rules against a fixed set of settings.
// It is safe for concurrent use.
type Sanitizer struct {
	settings locale.Settings
	policy   *bluemonday.Policy
}

// New returns a Sanitizer bound to settings.
func New(settings locale.Settings) *Sanitizer {
	return &Sanitizer{
		settings: settings,
		policy:   bluemonday.StrictPolicy(),
	}
}

// Settings returns the settings the sanitizer was built with.
func (s *Sanitizer) Settings() locale.Settings { return s.settings }

// Language lower-cases raw, strips everything outside [a-z_-] and returns the default
// language when the result is not supported.
func (s *Sanitizer) Language(raw string) string {
	code := nonLanguage.ReplaceAllString(strings.ToLower(raw), "")
	if !s.settings.Supports(code) {
		return s.settings.DefaultLanguage()
	}
	return code
}

// Currency upper-cases raw, strips non-letters and returns the default currency unless
// exactly three letters remain.
func (s *Sanitizer) Currency(raw string) string {
	code := nonLetter.ReplaceAllString(strings.ToUpper(raw), "")
	if len(code) != 3 {
		return s.settings.DefaultCurrency()
	}
	return code
}

// Locale maps a language code to its locale tag, falling back to the code itself and then
// to the default locale.
func (s *Sanitizer) Locale(language string) string {
	if tag, ok := s.settings.LocaleFor(language); ok {
		return tag
	}
	if language != "" {
		return language
	}
	return s.settings.DefaultLocale()
}

// Number extracts a finite number from raw.
func (s *Sanitizer) Number(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		return s.Number(v.String())
	case string:
		cleaned := nonNumeric.ReplaceAllString(v, "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Key lower-cases raw and strips everything outside [a-z0-9_-].
func (s *Sanitizer) Key(raw string) string {
	return nonKey.ReplaceAllString(strings.ToLower(raw), "")
}

// PlainText strips markup and collapses all whitespace to single spaces.
// Non-string input yields "".
func (s *Sanitizer) PlainText(raw any) string {
	str, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(s.stripMarkup(str)), " ")
}

// MultilineText strips markup like PlainText but keeps line breaks.
func (s *Sanitizer) MultilineText(raw any) string {
	str, ok := raw.(string)
	if !ok {
		return ""
	}
	str = strings.ReplaceAll(str, "\r\n", "\n")
	lines := strings.Split(s.stripMarkup(str), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// stripMarkup removes tags, drops script/style bodies and decodes entities. A second pass
// catches markup that only appears after decoding.
func (s *Sanitizer) stripMarkup(str string) string {
	str = strings.ToValidUTF8(str, "")
	str = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, str)
	out := html.UnescapeString(s.policy.Sanitize(str))
	if strings.ContainsAny(out, "<>") {
		out = html.UnescapeString(s.policy.Sanitize(out))
	}
	return out
}

// HTML escapes text for display inside markup.
func (s *Sanitizer) HTML(text string) string {
	return html.EscapeString(text)
}

// Paragraphs wraps blank-line separated blocks of text in <p> elements and turns single
// newlines into <br />. Text that already contains paragraph markup is returned unchanged.
func Paragraphs(text string) string {
	if text == "" || strings.Contains(text, "<p") {
		return text
	}
	var b strings.Builder
	for _, block := range blankLines.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		for i, l := range lines {
			lines[i] = html.EscapeString(strings.TrimSpace(l))
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(lines, "<br />\n"))
		b.WriteString("</p>\n")
	}
	return b.String()
}
