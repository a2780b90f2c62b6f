package statement

import (
	"regexp"
	"strings"
)

// App-side category labels. Imported transactions always land in one of
// these; CategoryOther is the guaranteed fallback.
const (
	CategoryGroceries     = "Продукты"
	CategoryTransport     = "Транспорт"
	CategoryCafes         = "Кафе и рестораны"
	CategoryTransfers     = "Переводы"
	CategorySubscriptions = "Подписки"
	CategoryOther         = "Другое"
)

// descriptionFallback is used when neither the main line nor the lookahead
// window yields a merchant description and no category label was matched.
const descriptionFallback = "Без описания"

// sourceCategoryRe is the closed vocabulary of category labels that appear
// verbatim in statement lines. Alternation order is significant: matching is
// leftmost-first, so "Перевод" wins over its longer variants at the same
// position (they all map to the same app category).
var sourceCategoryRe = regexp.MustCompile(
	`(Супермаркеты|Транспорт|Рестораны и кафе|Прочие расходы|Прочие операции|` +
		`Перевод|Перевод СБП|Перевод на карту|Перевод с карты|Оплата по QR)`,
)

// sourceCategoryMap maps statement vocabulary labels to app categories.
var sourceCategoryMap = map[string]string{
	"Супермаркеты":      CategoryGroceries,
	"Транспорт":         CategoryTransport,
	"Рестораны и кафе":  CategoryCafes,
	"Прочие расходы":    CategoryOther,
	"Прочие операции":   CategoryOther,
	"Перевод":           CategoryTransfers,
	"Перевод СБП":       CategoryTransfers,
	"Перевод на карту":  CategoryTransfers,
	"Перевод с карты":   CategoryTransfers,
	"Оплата по QR":      CategoryTransfers,
}

// MapSourceCategory resolves a vocabulary label to its app category.
// Unknown labels map to CategoryOther.
func MapSourceCategory(label string) string {
	if mapped, ok := sourceCategoryMap[label]; ok {
		return mapped
	}
	return CategoryOther
}

// findSourceCategory returns the first vocabulary label present in the line,
// or "" when none matches.
func findSourceCategory(line string) string {
	return sourceCategoryRe.FindString(line)
}

// Merchant keyword tables for category inference when no vocabulary label is
// present. Matched as substrings of the uppercased description.
var (
	groceryKeywords = []string{
		"MAGNIT", "PEREKRESTOK", "PYATEROCHKA", "MONETKA",
		"BRISTOL", "KRASNOE", "BELOE", "POLYUSTORG",
	}
	transportKeywords = []string{"TRANSPORT", "TRAMVAI", "МЕТРО", "ТАКСИ"}
	cafeKeywords      = []string{"PAPA", "DZHONS", "TURLOV", "SHAURMA", "CAFE", "RESTAURANT"}
	transferKeywords  = []string{"ПЕРЕВОД", "СБП"}
	railKeywords      = []string{"Ж/Д", "ПЕРЕВОЗОК"}
)

// GuessCategory infers an app category from a merchant description.
// Returns CategoryOther when no keyword matches.
func GuessCategory(description string) string {
	if description == "" {
		return CategoryOther
	}
	desc := strings.ToUpper(description)

	if containsAny(desc, groceryKeywords) {
		return CategoryGroceries
	}
	if containsAny(desc, transportKeywords) ||
		(strings.Contains(desc, "YANDEX") && strings.Contains(desc, "GO")) {
		return CategoryTransport
	}
	if containsAny(desc, cafeKeywords) {
		return CategoryCafes
	}

	// Yandex services split by product: Plus is a subscription, Go is a ride.
	if strings.Contains(desc, "YANDEX") {
		if strings.Contains(desc, "PLUS") {
			return CategorySubscriptions
		}
		if strings.Contains(desc, "GO") {
			return CategoryTransport
		}
		return CategoryOther
	}

	if containsAny(desc, transferKeywords) {
		return CategoryTransfers
	}
	if containsAny(desc, railKeywords) {
		return CategoryTransport
	}

	return CategoryOther
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
