package wealth

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// isinRegex checks for the basic structure: 2 letters, 9 alphanumeric, 1 digit.
var isinRegex = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)

// exchangePrefixes are stripped from broker symbols like "NSE:INFY" or "BSE-TCS".
var exchangePrefixes = []string{"NSE:", "BSE:", "NSE-", "BSE-", "NYSE:", "NASDAQ:"}

// keptSeriesSuffixes are exchange series that identify a different security.
var keptSeriesSuffixes = map[string]bool{"RR": true}

// ValidateISIN checks if a string is a validly formatted ISIN.
// It returns nil if valid, or a descriptive error if invalid.
func ValidateISIN(isin string) error {
	// 1. Length validation
	if len(isin) != 12 {
		return fmt.Errorf("invalid length: must be 12 characters, got %d", len(isin))
	}

	// 2. Format validation
	if !isinRegex.MatchString(isin) {
		return fmt.Errorf("invalid format: must be 2 uppercase letters, 9 alphanumeric chars, and 1 digit")
	}

	// 3. Convert letters to numbers for check digit calculation
	var numericStr strings.Builder
	for _, char := range isin[:11] {
		if char >= 'A' && char <= 'Z' {
			numericStr.WriteString(strconv.Itoa(int(char - 'A' + 10)))
		} else {
			numericStr.WriteRune(char)
		}
	}

	// 4. Apply a variation of the Luhn algorithm
	sum := 0
	isSecond := true
	digits := numericStr.String()
	for i := len(digits) - 1; i >= 0; i-- {
		digit, _ := strconv.Atoi(string(digits[i]))

		if isSecond {
			digit *= 2
		}

		sum += (digit / 10) + (digit % 10)
		isSecond = !isSecond
	}

	// 5. Validate the check digit
	expectedCheckDigit := (10 - (sum % 10)) % 10
	actualCheckDigit, _ := strconv.Atoi(string(isin[11]))

	if expectedCheckDigit != actualCheckDigit {
		return fmt.Errorf("invalid check digit: expected %d, got %d", expectedCheckDigit, actualCheckDigit)
	}

	return nil
}

// NormalizeISIN trims and upper-cases s and validates it.
// An empty input returns "" and no error.
func NormalizeISIN(s string) (string, error) {
	isin := strings.ToUpper(strings.TrimSpace(s))
	if isin == "" || isin == "NONE" || isin == "-" {
		return "", nil
	}
	if err := ValidateISIN(isin); err != nil {
		return "", fmt.Errorf("invalid ISIN %q: %w", isin, err)
	}
	return isin, nil
}

// NormalizeSymbol cleans a broker trading symbol: exchange prefixes are removed,
// and short exchange series suffixes ("RAJESHEXPO-Z", "SILVERBEES-E") are
// stripped, except REIT units ("-RR").
func NormalizeSymbol(s string) string {
	sym := strings.ToUpper(strings.TrimSpace(s))
	for _, p := range exchangePrefixes {
		if strings.HasPrefix(sym, p) {
			sym = strings.TrimSpace(sym[len(p):])
			break
		}
	}
	if i := strings.LastIndex(sym, "-"); i > 0 {
		suffix := sym[i+1:]
		if len(suffix) > 0 && len(suffix) <= 2 && !keptSeriesSuffixes[suffix] {
			sym = sym[:i]
		}
	}
	return sym
}

// canonical returns the identity form of a free text symbol or name:
// upper case with collapsed white spaces.
func canonical(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
