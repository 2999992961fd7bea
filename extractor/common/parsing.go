package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TwoDigitYearPivot resolves two-digit Gregorian years: values at or below
// the pivot map into the 2000s, values above it into the 1900s.
const TwoDigitYearPivot = 50

// Buddhist Era years are normalized to the common calendar by a fixed
// offset. Anything at or above the floor is treated as a BE year.
const (
	BuddhistYearOffset = 543
	buddhistYearFloor  = 2400
)

// DateOrder selects the day/month order of slash-separated numeric dates.
type DateOrder int

const (
	DayFirst DateOrder = iota
	MonthFirst
)

// DateStyle is the per-institution date dialect: component order for
// numeric dates and whether two-digit years are Buddhist Era.
type DateStyle struct {
	Order    DateOrder
	Buddhist bool
}

// monthsByName maps lowercase month names to months. English abbreviations
// and full names, plus Thai abbreviated month names with and without the
// trailing dot.
var monthsByName = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,

	"ม.ค.": time.January, "ม.ค": time.January,
	"ก.พ.": time.February, "ก.พ": time.February,
	"มี.ค.": time.March, "มี.ค": time.March,
	"เม.ย.": time.April, "เม.ย": time.April,
	"พ.ค.": time.May, "พ.ค": time.May,
	"มิ.ย.": time.June, "มิ.ย": time.June,
	"ก.ค.": time.July, "ก.ค": time.July,
	"ส.ค.": time.August, "ส.ค": time.August,
	"ก.ย.": time.September, "ก.ย": time.September,
	"ต.ค.": time.October, "ต.ค": time.October,
	"พ.ย.": time.November, "พ.ย": time.November,
	"ธ.ค.": time.December, "ธ.ค": time.December,
}

var (
	slashDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	shortSlashDate   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	currencyStrip    = strings.NewReplacer(
		"$", "", "฿", "", "£", "", "€", "", "¢", "",
		",", "", " ", "", " ", "",
	)
	numericAmount  = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)
	foreignPattern = regexp.MustCompile(`(?i)^\s*([\d,]+(?:\.\d+)?)\s+([A-Za-z]{3})\s*=\s*([\d,]+(?:\.\d+)?)\s+([A-Za-z]{3})\s+(?:at|@)\s+([\d.]+)\s*$`)
)

// normalizeYear expands two-digit years and converts Buddhist Era years
// to the common calendar.
func normalizeYear(year int, buddhist bool) int {
	if year < 100 {
		if buddhist {
			year += 2500
		} else if year <= TwoDigitYearPivot {
			year += 2000
		} else {
			year += 1900
		}
	}
	if year >= buddhistYearFloor {
		year -= BuddhistYearOffset
	}
	return year
}

// makeDate builds a midnight local date, rejecting out-of-range day or
// month values (Feb 30 and the like fail the round-trip check).
func makeDate(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day %d month %d out of range", day, month)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.Local)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, fmt.Errorf("no day %d in month %d of %d", day, month, year)
	}
	return t, nil
}

// ParseDate parses a full date: slash-separated numeric dates in the
// style's day/month order, or named-month forms ("Dec 15, 2024",
// "Dec 15 2024", "15 Dec 2024", "15 ม.ค. 2568"). Buddhist Era years are
// normalized by the fixed offset.
func ParseDate(raw string, style DateStyle) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := slashDatePattern.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		day, month := first, second
		if style.Order == MonthFirst {
			day, month = second, first
		}
		return makeDate(normalizeYear(year, style.Buddhist), time.Month(month), day)
	}

	// Named-month forms. Commas are separators only.
	fields := strings.Fields(strings.ReplaceAll(s, ",", " "))
	if len(fields) == 3 {
		if month, ok := lookupMonth(fields[0]); ok {
			// Mon D YYYY
			day, errD := strconv.Atoi(fields[1])
			year, errY := strconv.Atoi(fields[2])
			if errD == nil && errY == nil {
				return makeDate(normalizeYear(year, style.Buddhist), month, day)
			}
		}
		if month, ok := lookupMonth(fields[1]); ok {
			// D Mon YYYY
			day, errD := strconv.Atoi(fields[0])
			year, errY := strconv.Atoi(fields[2])
			if errD == nil && errY == nil {
				return makeDate(normalizeYear(year, style.Buddhist), month, day)
			}
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

func lookupMonth(token string) (time.Month, bool) {
	month, ok := monthsByName[strings.ToLower(token)]
	return month, ok
}

// ParseShortDate parses a date printed without a year ("12/01", "4 Dec",
// "Dec 4"). The year comes from the reference date; if the inferred date
// would land more than one month after the reference, the statement spans
// a year boundary and the year rolls back by one.
func ParseShortDate(raw string, reference time.Time, style DateStyle) (time.Time, error) {
	if reference.IsZero() {
		return time.Time{}, fmt.Errorf("no reference date for short date %q", raw)
	}
	s := strings.TrimSpace(raw)

	var month time.Month
	var day int
	if m := shortSlashDate.FindStringSubmatch(s); m != nil {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		day, month = first, time.Month(second)
		if style.Order == MonthFirst {
			day, month = second, time.Month(first)
		}
	} else if fields := strings.Fields(s); len(fields) == 2 {
		if mo, ok := lookupMonth(fields[0]); ok {
			d, err := strconv.Atoi(fields[1])
			if err != nil {
				return time.Time{}, fmt.Errorf("unrecognized short date %q", raw)
			}
			month, day = mo, d
		} else if mo, ok := lookupMonth(fields[1]); ok {
			d, err := strconv.Atoi(fields[0])
			if err != nil {
				return time.Time{}, fmt.Errorf("unrecognized short date %q", raw)
			}
			month, day = mo, d
		} else {
			return time.Time{}, fmt.Errorf("unrecognized short date %q", raw)
		}
	} else {
		return time.Time{}, fmt.Errorf("unrecognized short date %q", raw)
	}

	t, err := makeDate(reference.Year(), month, day)
	if err != nil {
		return time.Time{}, err
	}
	if t.After(reference.AddDate(0, 1, 0)) {
		t, err = makeDate(reference.Year()-1, month, day)
		if err != nil {
			return time.Time{}, err
		}
	}
	return t, nil
}

// ParseAmount parses a monetary figure, stripping currency symbols and
// thousands separators. Parenthesized values, a trailing CR marker, and
// the isCredit flag all negate the result. Non-numeric input fails.
func ParseAmount(raw string, isCredit bool) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := isCredit
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if upper := strings.ToUpper(s); strings.HasSuffix(upper, "CR") {
		negative = true
		s = strings.TrimSpace(s[:len(s)-2])
	}

	s = currencyStrip.Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	if !numericAmount.MatchString(s) {
		return decimal.Zero, fmt.Errorf("non-numeric amount %q", raw)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

// ForeignDetail is the foreign-currency annotation that some statements
// print on the line after a transaction:
// "150.00 EUR = 163.50 USD at 1.09".
type ForeignDetail struct {
	OriginalAmount   decimal.Decimal
	OriginalCurrency string
	ExchangeRate     decimal.Decimal
}

// IsForeignDetailLine reports whether a line is a foreign-currency
// annotation. Parsers skip such lines; they belong to the transaction
// above them.
func IsForeignDetailLine(line string) bool {
	return foreignPattern.MatchString(line)
}

// ExtractForeignDetails inspects the line following index for a
// foreign-currency annotation and returns its parsed detail.
func ExtractForeignDetails(lines []string, index int) (ForeignDetail, bool) {
	if index < 0 || index+1 >= len(lines) {
		return ForeignDetail{}, false
	}
	m := foreignPattern.FindStringSubmatch(lines[index+1])
	if m == nil {
		return ForeignDetail{}, false
	}
	amount, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return ForeignDetail{}, false
	}
	rate, err := decimal.NewFromString(m[5])
	if err != nil {
		return ForeignDetail{}, false
	}
	return ForeignDetail{
		OriginalAmount:   amount,
		OriginalCurrency: strings.ToUpper(m[2]),
		ExchangeRate:     rate,
	}, true
}

var (
	merchantPunct   = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
	multipleSpaces  = regexp.MustCompile(`\s+`)
	quoteNormalizer = strings.NewReplacer(`"`, "", "'", "", "‘", "", "’", "", "“", "", "”", "")
)

// NormalizeMerchant lowercases a merchant or description, drops
// punctuation, and collapses runs of whitespace. Fingerprinting and
// fuzzy merchant comparison both go through here.
func NormalizeMerchant(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = merchantPunct.ReplaceAllString(s, " ")
	return strings.TrimSpace(multipleSpaces.ReplaceAllString(s, " "))
}

// NormalizeDescription lowercases, strips quote characters, and collapses
// whitespace. Used for cross-source description comparison.
func NormalizeDescription(s string) string {
	s = strings.ToLower(strings.TrimSpace(quoteNormalizer.Replace(s)))
	return multipleSpaces.ReplaceAllString(s, " ")
}
