// Package statement provides rule-based transaction extraction from bank
// statement PDFs: text extraction, block parsing and category inference.
package statement

import (
	"log"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	// lookaheadLines bounds how far past a block's main line the parser may
	// scan for a merchant description.
	lookaheadLines = 4

	// maxAmountMagnitude rejects implausibly large amount tokens.
	maxAmountMagnitude = 10_000_000

	// cardOperationMarker lines carry card metadata, never a merchant name.
	cardOperationMarker = "Операция по карте"

	timestampLayout = "02.01.2006 15:04"
)

var (
	// blockStartRe marks the main line of a transaction block.
	blockStartRe = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}\s+\d{2}:\d{2}`)

	dateTimeRe = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})\s+(\d{2}:\d{2})`)
	authCodeRe = regexp.MustCompile(`\d{2}:\d{2}\s+(\d{6})`)

	// Prefix cleanup before amount tokenization.
	timeAuthRe   = regexp.MustCompile(`\d{2}:\d{2}\s+\d{6}\s+`)
	datePrefixRe = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}(?:\s+\d{2}:\d{2})?`)

	// amountTokenRe matches one signed monetary token on a whitespace-free
	// line: integer part, comma or dot separator, exactly two fraction digits.
	amountTokenRe = regexp.MustCompile(`[+-]?\d+[,.]\d{2}`)

	// Description cleanup.
	sixDigitCodeRe = regexp.MustCompile(`\s*\d{6}\s*`)
	amountSubstrRe = regexp.MustCompile(`[+-]?\s*\d{1,3}(?:[,\s]\d{3})*[,.]\d{2}`)
	anyDateRe      = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
	numericLineRe  = regexp.MustCompile(`^[\d\s.,+-]+$`)
	cardMarkerRe   = regexp.MustCompile(`Операция по карте \*+\d+\.?`)
	trailingRusRe  = regexp.MustCompile(`\s+RUS\.?$`)
	currencyCodeRe = regexp.MustCompile(`\s+[A-Z]{3}\s*$`)
	longDigitRunRe = regexp.MustCompile(`\d{6,}`)
	blankRunRe     = regexp.MustCompile(`\s+`)
	bareAmountRe   = regexp.MustCompile(`\d+[,.]\d{2}`)
)

// Transaction is one parsed statement operation. Category and Description
// are always non-empty: construction fully fallback-fills them, or the
// block is discarded when no amount could be located.
type Transaction struct {
	OccurredAt  time.Time
	AuthCode    string // 6-digit authorization code, "" when absent
	Amount      int    // minor-unit-rounded magnitude; sign lives in IsIncome
	IsIncome    bool
	Category    string
	Description string
}

// Parser extracts transactions from statement text. It holds no state
// across calls beside compiled patterns and the clock, so a single Parser
// is safe for concurrent use on independent inputs.
type Parser struct {
	now func() time.Time
}

// NewParser returns a Parser using the wall clock for timestamp fallbacks.
func NewParser() *Parser {
	return &Parser{now: time.Now}
}

// NewParserWithClock returns a Parser with an injected clock. Tests use
// this to make the unparseable-date fallback deterministic.
func NewParserWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse splits statement text into transaction blocks and returns the
// expense transactions in source order. Income transactions are recognized
// and counted but excluded from the result; blocks without a locatable
// amount are dropped.
func (p *Parser) Parse(text string) []Transaction {
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	var expenses []Transaction
	incomeCount := 0
	droppedCount := 0

	i := 0
	for i < len(lines) {
		if lines[i] == "" || !blockStartRe.MatchString(lines[i]) {
			i++
			continue
		}
		tx, consumed := p.parseBlock(lines, i)
		i += consumed
		if tx == nil {
			droppedCount++
			continue
		}
		if tx.IsIncome {
			incomeCount++
			log.Printf("[statement-parser] skipping income transaction: amount=%d %q", tx.Amount, tx.Description)
			continue
		}
		expenses = append(expenses, *tx)
	}

	log.Printf("[statement-parser] parsed %d expenses (%d income skipped, %d blocks dropped)",
		len(expenses), incomeCount, droppedCount)
	return expenses
}

// parseBlock assembles one transaction from the main line at start plus a
// bounded lookahead window. It returns the number of lines consumed: the
// main line alone, or through the lookahead line that produced the
// description. Date-looking lines inside the scanned window are treated as
// plain text, never as new block starts.
func (p *Parser) parseBlock(lines []string, start int) (*Transaction, int) {
	mainLine := lines[start]
	tx := &Transaction{}

	if m := authCodeRe.FindStringSubmatch(mainLine); m != nil {
		tx.AuthCode = m[1]
	}

	tx.OccurredAt = p.parseTimestamp(mainLine)

	sourceLabel := findSourceCategory(mainLine)
	if sourceLabel != "" {
		tx.Category = MapSourceCategory(sourceLabel)
	}

	amounts := extractAmounts(mainLine)
	if len(amounts) == 0 {
		log.Printf("[statement-parser] no amount found, dropping block: %q", mainLine)
		return nil, 1
	}
	// On statement lines the operation amount is followed by the running
	// balance and the balance token is the one kept; single-token lines
	// fall back to index 0 rather than failing.
	chosen := amounts[0]
	if len(amounts) > 1 {
		chosen = amounts[1]
	}
	if chosen < 0 {
		chosen = -chosen
	}
	tx.Amount = chosen
	tx.IsIncome = strings.Contains(mainLine, "+")

	tx.Description = descriptionFromMainLine(mainLine, sourceLabel)

	consumed := 1
	if tx.Description == "" {
		end := start + 1 + lookaheadLines
		if end > len(lines) {
			end = len(lines)
		}
		for j := start + 1; j < end; j++ {
			line := lines[j]
			if line == "" || strings.Contains(line, cardOperationMarker) {
				continue
			}
			if name := merchantNameFromLine(line); name != "" {
				tx.Description = name
				consumed = j - start + 1
				break
			}
		}
	}

	if tx.Category == "" && tx.Description != "" {
		tx.Category = GuessCategory(tx.Description)
	}
	if tx.Category == "" {
		tx.Category = CategoryOther
	}
	if tx.Description == "" {
		if sourceLabel != "" {
			tx.Description = sourceLabel
		} else {
			tx.Description = descriptionFallback
		}
	}

	return tx, consumed
}

// parseTimestamp reads the leading DD.MM.YYYY HH:MM pair. Any failure falls
// back to the clock; a malformed date never drops the block.
func (p *Parser) parseTimestamp(line string) time.Time {
	m := dateTimeRe.FindStringSubmatch(line)
	if m == nil {
		return p.now()
	}
	t, err := time.ParseInLocation(timestampLayout, m[1]+" "+m[2], time.Local)
	if err != nil {
		log.Printf("[statement-parser] unparseable timestamp %q: %v", m[1]+" "+m[2], err)
		return p.now()
	}
	return t
}

// extractAmounts tokenizes every monetary amount on the main line. The
// time+auth prefix and the date are stripped first, then all whitespace, so
// "Супермаркеты 349,97 36 975,65" scans as "Супермаркеты349,9736975,65". A
// token must follow a non-digit rune or start exactly where the previous
// accepted token ended; zero and implausibly large values are discarded.
func extractAmounts(line string) []int {
	cleaned := replaceFirst(timeAuthRe, line, " ")
	cleaned = replaceFirst(datePrefixRe, cleaned, " ")
	compact := blankRunRe.ReplaceAllString(cleaned, "")

	var amounts []int
	prevEnd := -1
	for _, loc := range amountTokenRe.FindAllStringIndex(compact, -1) {
		start, end := loc[0], loc[1]
		if start > 0 && start != prevEnd {
			r, _ := utf8.DecodeLastRuneInString(compact[:start])
			if unicode.IsDigit(r) {
				continue
			}
		}
		token := strings.Replace(compact[start:end], ",", ".", 1)
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		amount := roundHalfUp(v)
		if amount == 0 || amount >= maxAmountMagnitude || amount <= -maxAmountMagnitude {
			continue
		}
		amounts = append(amounts, amount)
		prevEnd = end
	}
	return amounts
}

// roundHalfUp rounds to the nearest integer with halves toward +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// descriptionFromMainLine strips the date+time prefix, a 6-digit code, the
// matched category label and all amount-shaped substrings, then collapses
// whitespace. Remainders of 1-2 runes are noise and discarded.
func descriptionFromMainLine(line, sourceLabel string) string {
	cleaned := replaceFirst(dateTimeRe, line, "")
	cleaned = replaceFirst(sixDigitCodeRe, cleaned, " ")
	if sourceLabel != "" {
		cleaned = strings.ReplaceAll(cleaned, sourceLabel, "")
	}
	cleaned = amountSubstrRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(blankRunRe.ReplaceAllString(cleaned, " "))

	if utf8.RuneCountInString(cleaned) > 2 {
		return cleaned
	}
	return ""
}

// merchantNameFromLine extracts a merchant/purpose description from a
// lookahead line. Lines carrying a date or only digits and punctuation are
// plain noise and yield nothing.
func merchantNameFromLine(line string) string {
	if anyDateRe.MatchString(line) || numericLineRe.MatchString(line) {
		return ""
	}

	cleaned := cardMarkerRe.ReplaceAllString(line, "")
	cleaned = trailingRusRe.ReplaceAllString(cleaned, "")
	cleaned = currencyCodeRe.ReplaceAllString(cleaned, "")
	cleaned = longDigitRunRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSpace(bareAmountRe.ReplaceAllString(cleaned, ""))

	if utf8.RuneCountInString(cleaned) > 3 && !numericLineRe.MatchString(cleaned) {
		return cleaned
	}
	return ""
}

// replaceFirst substitutes only the first match, mirroring how the block
// cleanup treats repeated patterns on one line.
func replaceFirst(re *regexp.Regexp, s, repl string) string {
	loc := re.FindStringIndex(s)
	if loc == nil {
		return s
	}
	return s[:loc[0]] + repl + s[loc[1]:]
}
