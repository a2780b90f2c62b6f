package statement

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxDisplayLen = 50

var titleCaser = cases.Title(language.Russian)

// FormatDisplayName formats a raw merchant description for display: digit
// runs and masked-card noise are already stripped by the parser, so this
// only title-cases the words the statement shouted in capitals. Short
// tokens (legal-form abbreviations, country codes) stay uppercase.
func FormatDisplayName(raw string) string {
	words := strings.Fields(raw)
	for i, word := range words {
		if len([]rune(word)) > 2 {
			words[i] = titleCaser.String(strings.ToLower(word))
		} else {
			words[i] = strings.ToUpper(word)
		}
	}

	result := strings.Join(words, " ")
	if runes := []rune(result); len(runes) > maxDisplayLen {
		result = string(runes[:maxDisplayLen])
	}
	return result
}
