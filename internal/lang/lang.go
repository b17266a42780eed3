// Package lang maps between ISO language codes and the English display
// names the translation prompt uses.
package lang

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// supportedCodes are the languages offered in the UI, roughly ordered by
// how often they show up in uploaded videos.
var supportedCodes = []string{
	"en", "vi", "zh", "ja", "ko", "fr", "de", "es", "pt", "ru",
	"it", "th", "id", "ms", "hi", "ar", "tr", "nl", "pl", "uk",
}

var namer = display.English.Languages()

// Language pairs a code with its English display name.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Supported returns the selectable languages in display order.
func Supported() []Language {
	out := make([]Language, 0, len(supportedCodes))
	for _, code := range supportedCodes {
		out = append(out, Language{Code: code, Name: nameForCode(code)})
	}
	return out
}

// Name resolves a code or English name to the canonical English name.
// Returns "" for anything unrecognized.
func Name(codeOrName string) string {
	v := strings.TrimSpace(codeOrName)
	if v == "" {
		return ""
	}
	if n := nameForCode(v); n != "" {
		return n
	}
	// Accept a display name as-is if one of the supported codes maps to it.
	for _, code := range supportedCodes {
		if strings.EqualFold(nameForCode(code), v) {
			return nameForCode(code)
		}
	}
	return ""
}

// Code resolves a code or English name to the ISO code. Unrecognized
// values come back lowercased so filenames stay predictable.
func Code(codeOrName string) string {
	v := strings.TrimSpace(codeOrName)
	if v == "" {
		return "und"
	}
	for _, code := range supportedCodes {
		if strings.EqualFold(code, v) || strings.EqualFold(nameForCode(code), v) {
			return code
		}
	}
	if tag, err := language.Parse(strings.ToLower(v)); err == nil {
		base, conf := tag.Base()
		if conf >= language.High {
			return base.String()
		}
	}
	return sanitizeCode(v)
}

func nameForCode(code string) string {
	for _, c := range supportedCodes {
		if strings.EqualFold(c, code) {
			tag, err := language.Parse(c)
			if err != nil {
				return ""
			}
			return namer.Name(tag)
		}
	}
	return ""
}

func sanitizeCode(v string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(v) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "und"
	}
	return b.String()
}
