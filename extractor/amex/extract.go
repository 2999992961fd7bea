// Package amex parses American Express card statements. Statement dates
// are named-month US forms; transaction lines carry MM/DD dates resolved
// against the statement period, with bare date headers carrying forward
// over undated lines.
package amex

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dsil-design/joot-statements/datematch"
	"github.com/dsil-design/joot-statements/extractor/common"
)

const parserKey = "amex"

var dateStyle = common.DateStyle{Order: common.MonthFirst}

// identifiers are checked in order; co-branded product names are included
// because some statement layouts never print the issuer name outside the
// logo image.
var identifiers = []string{
	"american express",
	"americanexpress.com",
	"amex",
	"membership rewards",
	"delta skymiles",
	"hilton honors",
	"marriott bonvoy",
}

const (
	namedDate   = `[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4}`
	amountToken = `\(?-?\$?[\d,]+\.\d{2}\)?(?:\s*CR)?`
)

var (
	periodRangePattern = regexp.MustCompile(`(?i)(` + namedDate + `)\s*(?:-|–|through)\s*(` + namedDate + `)`)
	periodFromTo       = regexp.MustCompile(`(?i)from\s+(` + namedDate + `)\s+to\s+(` + namedDate + `)`)
	closingPattern     = regexp.MustCompile(`(?i)closing date[:\s]+(` + namedDate + `)`)
	duePattern         = regexp.MustCompile(`(?i)payment due date[:\s]+(` + namedDate + `)`)

	previousBalancePattern = regexp.MustCompile(`(?i)previous balance\s*:?\s*(` + amountToken + `)`)
	newBalancePattern      = regexp.MustCompile(`(?i)new balance\s*:?\s*(` + amountToken + `)`)
	minimumPaymentPattern  = regexp.MustCompile(`(?i)minimum (?:payment|amount) due\s*:?\s*(` + amountToken + `)`)
	creditLimitPattern     = regexp.MustCompile(`(?i)credit limit\s*:?\s*(` + amountToken + `)`)

	accountEndingPattern = regexp.MustCompile(`(?i)account ending(?:\s+in)?[:\s-]+(\d{4,5})`)
	maskedAccountPattern = regexp.MustCompile(`(?i)(?:[x*]{4,6}[-\s]){1,2}[x*]*(\d{4,5})`)

	txLinePattern      = regexp.MustCompile(`^(\d{1,2}/\d{1,2})\s+(.+?)\s+(` + amountToken + `)\s*$`)
	undatedLinePattern = regexp.MustCompile(`^(.+?)\s+(` + amountToken + `)\s*$`)
	dateHeaderPattern  = regexp.MustCompile(`^(?:\d{1,2}/\d{1,2}(?:/\d{2,4})?|[A-Za-z]{3,9}\.?\s+\d{1,2},?\s+\d{4})$`)
	totalsPattern      = regexp.MustCompile(`(?i)^\s*(?:(?:sub\s*)?total|grand total)\b`)
	labelLinePattern   = regexp.MustCompile(`(?i)^(?:previous balance|new balance|minimum (?:payment|amount) due|credit limit|payment due date|closing date|account ending|rewards balance)`)
	stateSuffixPattern = regexp.MustCompile(`\s+[A-Z]{2}$`)
)

// sectionHeaders are checked in order; a line that could match several
// hints resolves to the first.
var sectionHeaders = []struct {
	pattern *regexp.Regexp
	section common.Section
}{
	{regexp.MustCompile(`(?i)^\s*new charges\b`), common.SectionCharges},
	{regexp.MustCompile(`(?i)^\s*payments and credits\b`), common.SectionPayments},
	{regexp.MustCompile(`(?i)^\s*payments\b`), common.SectionPayments},
	{regexp.MustCompile(`(?i)^\s*fees\b`), common.SectionFees},
	{regexp.MustCompile(`(?i)^\s*interest charged\b`), common.SectionInterest},
	{regexp.MustCompile(`(?i)^\s*membership rewards\b`), common.SectionExcluded},
	{regexp.MustCompile(`(?i)^\s*points summary\b`), common.SectionExcluded},
}

// cardTypes are checked most-specific first so co-branded products win
// over the bare tier names.
var cardTypes = []struct{ keyword, label string }{
	{"delta skymiles", "Delta SkyMiles"},
	{"hilton honors", "Hilton Honors"},
	{"marriott bonvoy", "Marriott Bonvoy"},
	{"platinum card", "Platinum Card"},
	{"gold card", "Gold Card"},
	{"green card", "Green Card"},
	{"platinum", "Platinum"},
	{"gold", "Gold"},
}

var typeRules = common.TypeRules{
	Payment:  []string{"payment received", "autopay", "online payment", "payment - thank you"},
	Fee:      []string{"annual membership", "late fee", "annual fee", "service charge", "foreign transaction fee"},
	Interest: []string{"interest charge", "interest on"},
	Credit:   []string{"refund", "reversal", "credit adjustment", "rebate", "cashback", "statement credit"},
}

var categoryBuckets = []common.CategoryBucket{
	{Name: "Dining", Keywords: []string{"starbucks", "restaurant", "cafe", "coffee", "pizza", "mcdonald", "burger", "sushi", "bakery", "dining"}},
	{Name: "Groceries", Keywords: []string{"whole foods", "trader joe", "safeway", "kroger", "grocery", "supermarket", "market"}},
	{Name: "Travel", Keywords: []string{"airline", "airways", "delta air", "united air", "hotel", "marriott", "hilton", "airbnb", "expedia", "airport"}},
	{Name: "Transport", Keywords: []string{"uber", "lyft", "taxi", "shell", "chevron", "exxon", "parking", "transit", "mta", "gas station"}},
	{Name: "Shopping", Keywords: []string{"amazon", "target", "walmart", "best buy", "apple store", "nike", "ikea"}},
	{Name: "Utilities", Keywords: []string{"comcast", "verizon", "at&t", "t-mobile", "electric", "water utility", "internet"}},
	{Name: "Entertainment", Keywords: []string{"netflix", "spotify", "hulu", "cinema", "theatre", "steam", "playstation"}},
	{Name: "Health", Keywords: []string{"pharmacy", "cvs", "walgreens", "clinic", "hospital", "dental", "gym", "fitness"}},
}

// Parser is the American Express statement parser.
type Parser struct{}

func New() *Parser { return &Parser{} }

func (p *Parser) Key() string { return parserKey }

func (p *Parser) Identifiers() []string { return identifiers }

func (p *Parser) CanParse(text string) bool {
	return common.ContainsAnyFold(text, identifiers)
}

func (p *Parser) Parse(text string, opts common.Options) common.ParseResult {
	if strings.TrimSpace(text) == "" {
		return common.FailedResult(parserKey, "empty statement text")
	}
	if !p.CanParse(text) {
		return common.FailedResult(parserKey, "no American Express identifiers found in text")
	}

	result := common.ParseResult{
		Success:      true,
		Parser:       parserKey,
		Transactions: []common.Transaction{},
	}

	result.Period = findPeriod(text)
	result.Summary = findSummary(text)
	result.Account = findAccount(text)

	var reference time.Time
	if result.Period != nil {
		reference = result.Period.ReferenceDate()
	}

	lines := strings.Split(text, "\n")
	section := common.SectionNone
	currentDate := reference

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || common.IsPageBreak(line) {
			continue
		}
		if sec, ok := matchSection(line); ok {
			section = sec
			continue
		}
		if section == common.SectionExcluded {
			continue
		}
		if totalsPattern.MatchString(line) || labelLinePattern.MatchString(line) {
			continue
		}
		if common.IsForeignDetailLine(line) {
			continue
		}
		if dateHeaderPattern.MatchString(line) {
			if d, err := parseHeaderDate(line, reference); err == nil {
				currentDate = d
			}
			continue
		}

		var dateStr, desc, amountStr string
		if m := txLinePattern.FindStringSubmatch(line); m != nil {
			dateStr, desc, amountStr = m[1], m[2], m[3]
		} else if m := undatedLinePattern.FindStringSubmatch(line); m != nil && !currentDate.IsZero() && section != common.SectionNone {
			desc, amountStr = m[1], m[2]
		} else {
			continue
		}

		date := currentDate
		if dateStr != "" {
			parsed, err := common.ParseShortDate(dateStr, reference, dateStyle)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("skipped line with unparseable date %q", dateStr))
				continue
			}
			date = parsed
			currentDate = parsed
		}
		if date.IsZero() {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped undatable line %q", line))
			continue
		}

		amount, err := common.ParseAmount(amountStr, false)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped line with unparseable amount %q", amountStr))
			continue
		}

		desc = strings.TrimSpace(desc)
		creditFlagged := amount.IsNegative()
		tx := common.Transaction{
			Date:        date,
			Description: desc,
			Merchant:    merchantFromDescription(desc),
			Amount:      amount.Abs(),
			Currency:    "USD",
			Type:        common.ClassifyType(desc, creditFlagged, section.TypeHint(), typeRules),
			Category:    common.Categorize(desc, categoryBuckets),
		}
		if detail, ok := common.ExtractForeignDetails(lines, i); ok {
			orig := detail.OriginalAmount
			rate := detail.ExchangeRate
			tx.OriginalAmount = &orig
			tx.OriginalCurrency = detail.OriginalCurrency
			tx.ExchangeRate = &rate
		}
		result.Transactions = append(result.Transactions, tx)
	}

	result.Transactions = common.DedupeExact(result.Transactions)
	common.SortTransactions(result.Transactions)

	if result.Period != nil && !result.Period.StartDate.IsZero() && !result.Period.EndDate.IsZero() {
		maxDays := opts.MaxDaysDiff
		if maxDays <= 0 {
			maxDays = datematch.DefaultMaxDaysDiff
		}
		lo := result.Period.StartDate.AddDate(0, 0, -maxDays)
		hi := result.Period.EndDate.AddDate(0, 0, maxDays)
		for _, tx := range result.Transactions {
			if !datematch.InPeriod(tx.Date, lo, hi) {
				result.Warnings = append(result.Warnings, fmt.Sprintf("transaction %q dated %s falls outside the statement period", tx.Description, tx.Date.Format("2006-01-02")))
			}
		}
	}

	if result.Period == nil {
		result.Warnings = append(result.Warnings, "no statement period found")
	}
	if len(result.Transactions) == 0 {
		result.Warnings = append(result.Warnings, "no transactions found")
	}

	result.PageCount = common.CountPages(lines)
	result.Confidence = common.CalculateConfidence(&result)
	if opts.IncludeRawText {
		result.RawText = text
	}
	return result
}

// findPeriod tries the ordered period patterns: explicit range, then
// "From X To Y", then closing-date-only. Closing and due dates attach to
// whichever form matched.
func findPeriod(text string) *common.StatementPeriod {
	var period *common.StatementPeriod

	if m := periodRangePattern.FindStringSubmatch(text); m != nil {
		period = periodFromRange(m[1], m[2])
	}
	if period == nil {
		if m := periodFromTo.FindStringSubmatch(text); m != nil {
			period = periodFromRange(m[1], m[2])
		}
	}

	var closing *time.Time
	if m := closingPattern.FindStringSubmatch(text); m != nil {
		if d, err := common.ParseDate(m[1], dateStyle); err == nil {
			closing = &d
		}
	}
	if period == nil && closing != nil {
		period = &common.StatementPeriod{ClosingDate: closing}
	} else if period != nil {
		period.ClosingDate = closing
	}
	if period == nil {
		return nil
	}

	if m := duePattern.FindStringSubmatch(text); m != nil {
		if d, err := common.ParseDate(m[1], dateStyle); err == nil {
			period.DueDate = &d
		}
	}
	return period
}

func periodFromRange(startRaw, endRaw string) *common.StatementPeriod {
	start, errStart := common.ParseDate(startRaw, dateStyle)
	end, errEnd := common.ParseDate(endRaw, dateStyle)
	if errStart != nil || errEnd != nil || start.After(end) {
		return nil
	}
	return &common.StatementPeriod{StartDate: start, EndDate: end}
}

func findSummary(text string) *common.Summary {
	summary := &common.Summary{}
	found := false

	if m := previousBalancePattern.FindStringSubmatch(text); m != nil {
		if v, err := common.ParseAmount(m[1], false); err == nil {
			summary.PreviousBalance = &v
			found = true
		}
	}
	if m := newBalancePattern.FindStringSubmatch(text); m != nil {
		if v, err := common.ParseAmount(m[1], false); err == nil {
			summary.NewBalance = &v
			found = true
		}
	}
	if m := minimumPaymentPattern.FindStringSubmatch(text); m != nil {
		if v, err := common.ParseAmount(m[1], false); err == nil {
			summary.MinimumPayment = &v
			found = true
		}
	}
	if m := creditLimitPattern.FindStringSubmatch(text); m != nil {
		if v, err := common.ParseAmount(m[1], false); err == nil {
			summary.CreditLimit = &v
			found = true
		}
	}
	if !found {
		return nil
	}
	return summary
}

func findAccount(text string) *common.AccountInfo {
	info := &common.AccountInfo{}
	if m := accountEndingPattern.FindStringSubmatch(text); m != nil {
		info.AccountNumber = m[1]
	} else if m := maskedAccountPattern.FindStringSubmatch(text); m != nil {
		info.AccountNumber = m[1]
	}

	lower := strings.ToLower(text)
	for _, ct := range cardTypes {
		if strings.Contains(lower, ct.keyword) {
			info.CardType = ct.label
			break
		}
	}

	if info.AccountNumber == "" && info.CardType == "" {
		return nil
	}
	return info
}

func matchSection(line string) (common.Section, bool) {
	for _, h := range sectionHeaders {
		if h.pattern.MatchString(line) {
			return h.section, true
		}
	}
	return common.SectionNone, false
}

func parseHeaderDate(line string, reference time.Time) (time.Time, error) {
	if d, err := common.ParseDate(line, dateStyle); err == nil {
		return d, nil
	}
	return common.ParseShortDate(line, reference, dateStyle)
}

// merchantFromDescription trims the trailing two-letter state code many
// US merchant descriptors carry ("STARBUCKS NEW YORK NY").
func merchantFromDescription(desc string) string {
	return strings.TrimSpace(stateSuffixPattern.ReplaceAllString(desc, ""))
}
