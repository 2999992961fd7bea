// Package kasikorn parses Kasikornbank credit-card statements. Labels
// are bilingual Thai/English, dates are day-first with two-digit
// Buddhist Era years, and foreign purchases carry a conversion line under
// the transaction.
package kasikorn

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dsil-design/joot-statements/extractor/common"
)

const parserKey = "kasikorn"

var dateStyle = common.DateStyle{Order: common.DayFirst, Buddhist: true}

var identifiers = []string{
	"kasikornbank",
	"kasikorn",
	"ธนาคารกสิกรไทย",
	"kbank",
	"k-credit",
	"the wisdom",
}

const (
	thaiDate    = `\d{1,2}/\d{1,2}/\d{2,4}`
	amountToken = `\(?[\d,]+\.\d{2}\)?(?:\s*CR)?`
)

var (
	periodThaiPattern = regexp.MustCompile(`ตั้งแต่\s*(` + thaiDate + `)\s*ถึง\s*(` + thaiDate + `)`)
	periodFromTo      = regexp.MustCompile(`(?i)from\s+(` + thaiDate + `)\s+to\s+(` + thaiDate + `)`)
	closingPattern    = regexp.MustCompile(`(?i)(?:วันที่สรุปยอด|statement date)\s*/?\s*[A-Za-z ]*[:\s]+(` + thaiDate + `)`)
	duePattern        = regexp.MustCompile(`(?i)(?:กำหนดชำระ|payment due date)\s*/?\s*[A-Za-z ]*[:\s]+(` + thaiDate + `)`)

	previousBalancePattern = regexp.MustCompile(`(?i)(?:ยอดยกมา|previous balance)\s*/?\s*[A-Za-z ]*[:\s]+(` + amountToken + `)`)
	newBalancePattern      = regexp.MustCompile(`(?i)(?:ยอดที่เรียกเก็บ|new balance|total amount due)\s*/?\s*[A-Za-z ]*[:\s]+(` + amountToken + `)`)
	minimumPaymentPattern  = regexp.MustCompile(`(?i)(?:ยอดชำระขั้นต่ำ|minimum payment)\s*/?\s*[A-Za-z ]*[:\s]+(` + amountToken + `)`)
	creditLimitPattern     = regexp.MustCompile(`(?i)(?:วงเงินบัตร|credit limit)\s*/?\s*[A-Za-z ]*[:\s]+(` + amountToken + `)`)

	accountPattern = regexp.MustCompile(`(?i)(?:หมายเลขบัตร|card number)\s*/?\s*[A-Za-z ]*[:\s]+[x*]{4}[-\s]?[x*]{4}[-\s]?[x*]{4}[-\s]?(\d{4})`)

	txLinePattern = regexp.MustCompile(`^(` + thaiDate + `)\s+(.+?)\s+(` + amountToken + `)\s*$`)
	totalsPattern = regexp.MustCompile(`(?i)^\s*(?:total\b|รวม|ยอดรวม)`)
	labelPattern  = regexp.MustCompile(`(?i)^(?:ยอดยกมา|ยอดที่เรียกเก็บ|ยอดชำระขั้นต่ำ|วงเงินบัตร|previous balance|new balance|minimum payment|credit limit|วันที่สรุปยอด|statement date|กำหนดชำระ|payment due date|หมายเลขบัตร|card number)`)
)

var sectionHeaders = []struct {
	pattern *regexp.Regexp
	section common.Section
}{
	// \b is ASCII-only in Go regexps, so the word-boundary guards apply
	// to the English alternatives only.
	{regexp.MustCompile(`(?i)^\s*(?:รายการใช้จ่าย|transactions?\b|new charges\b)`), common.SectionCharges},
	{regexp.MustCompile(`(?i)^\s*(?:การชำระเงิน|payments?\b)`), common.SectionPayments},
	{regexp.MustCompile(`(?i)^\s*(?:ค่าธรรมเนียม|fees?\b)`), common.SectionFees},
	{regexp.MustCompile(`(?i)^\s*(?:ดอกเบี้ย|interest\b)`), common.SectionInterest},
	{regexp.MustCompile(`(?i)^\s*(?:คะแนนสะสม|k point\b|rewards? summary\b)`), common.SectionExcluded},
}

// cardTypes are ordered so co-branded products beat the plain tiers.
var cardTypes = []struct{ keyword, label string }{
	{"the wisdom", "The Wisdom"},
	{"line points", "LINE Points"},
	{"platinum", "Platinum"},
	{"gold", "Gold"},
	{"classic", "Classic"},
}

var typeRules = common.TypeRules{
	Payment:  []string{"ชำระเงิน", "payment received", "payment - thank you", "autopay"},
	Fee:      []string{"ค่าธรรมเนียม", "annual fee", "late fee", "service charge"},
	Interest: []string{"ดอกเบี้ย", "interest"},
	Credit:   []string{"คืนเงิน", "refund", "reversal", "rebate", "cashback"},
}

var categoryBuckets = []common.CategoryBucket{
	{Name: "Dining", Keywords: []string{"starbucks", "restaurant", "cafe", "ร้านอาหาร", "mk ", "food"}},
	{Name: "Groceries", Keywords: []string{"lotus", "big c", "tops", "villa market", "7-eleven", "gourmet"}},
	{Name: "Travel", Keywords: []string{"thai airways", "airasia", "agoda", "hotel", "airport"}},
	{Name: "Transport", Keywords: []string{"grab", "bts", "mrt", "ptt", "bangchak", "taxi"}},
	{Name: "Shopping", Keywords: []string{"lazada", "shopee", "central", "siam paragon", "uniqlo"}},
	{Name: "Utilities", Keywords: []string{"ais", "true", "dtac", "การไฟฟ้า", "electricity"}},
	{Name: "Entertainment", Keywords: []string{"netflix", "spotify", "major cineplex", "cinema"}},
	{Name: "Health", Keywords: []string{"hospital", "โรงพยาบาล", "pharmacy", "boots", "watsons"}},
}

// Parser is the Kasikornbank statement parser.
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
		return common.FailedResult(parserKey, "no Kasikornbank identifiers found in text")
	}

	result := common.ParseResult{
		Success:      true,
		Parser:       parserKey,
		Transactions: []common.Transaction{},
	}

	result.Period = findPeriod(text)
	result.Summary = findSummary(text)
	result.Account = findAccount(text)

	lines := strings.Split(text, "\n")
	section := common.SectionNone

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
		if totalsPattern.MatchString(line) || labelPattern.MatchString(line) {
			continue
		}

		m := txLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		date, err := common.ParseDate(m[1], dateStyle)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped line with unparseable date %q", m[1]))
			continue
		}
		amount, err := common.ParseAmount(m[3], false)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("skipped line with unparseable amount %q", m[3]))
			continue
		}

		desc := strings.TrimSpace(m[2])
		creditFlagged := amount.IsNegative()
		tx := common.Transaction{
			Date:        date,
			Description: desc,
			Merchant:    desc,
			Amount:      amount.Abs(),
			Currency:    "THB",
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

func findPeriod(text string) *common.StatementPeriod {
	var period *common.StatementPeriod
	for _, pattern := range []*regexp.Regexp{periodThaiPattern, periodFromTo} {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, errStart := common.ParseDate(m[1], dateStyle)
		end, errEnd := common.ParseDate(m[2], dateStyle)
		if errStart != nil || errEnd != nil || start.After(end) {
			continue
		}
		period = &common.StatementPeriod{StartDate: start, EndDate: end}
		break
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
	if m := accountPattern.FindStringSubmatch(text); m != nil {
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
