package language

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Language identifies a normalized language.
type Language struct {
	// Code is the ISO 639-1 two-letter code.
	Code string
	// Name is the English display name.
	Name string
	// CJK reports whether the language is written without inter-word spaces.
	CJK bool
}

var cjkCodes = map[string]bool{
	"zh": true,
	"ja": true,
	"ko": true,
	"th": true,
}

// wordForms maps common full names onto codes for user-friendly CLI input.
var wordForms = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"japanese":   "ja",
	"korean":     "ko",
	"chinese":    "zh",
	"mandarin":   "zh",
	"russian":    "ru",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"thai":       "th",
}

// Normalize resolves a user-supplied language identifier (code, BCP-47 tag,
// or English name) to a Language.
func Normalize(input string) (Language, error) {
	trimmed := strings.ToLower(strings.TrimSpace(input))
	if trimmed == "" {
		return Language{}, fmt.Errorf("empty language identifier")
	}
	if code, ok := wordForms[trimmed]; ok {
		trimmed = code
	}

	tag, err := language.Parse(trimmed)
	if err != nil {
		return Language{}, fmt.Errorf("unrecognized language %q: %w", input, err)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return Language{}, fmt.Errorf("unrecognized language %q", input)
	}

	code := base.String()
	return Language{
		Code: code,
		Name: display.English.Languages().Name(tag),
		CJK:  cjkCodes[code],
	}, nil
}

// MustNormalize is Normalize for known-good constants; it panics on error.
func MustNormalize(input string) Language {
	lang, err := Normalize(input)
	if err != nil {
		panic(err)
	}
	return lang
}
