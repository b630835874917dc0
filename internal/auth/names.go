package auth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CapitalizeName collapses whitespace and title-cases each word:
// "  mARY   jane" becomes "Mary Jane". Blank input returns "".
func CapitalizeName(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	caser := cases.Title(language.English)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
