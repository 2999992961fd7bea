// Package bangkokbank parses Bangkok Bank savings-account statements.
// Dates are day-first with Buddhist Era years; labels appear in Thai,
// English, or both. Deposits map to income, withdrawals to charge, with
// the keyword cascade overriding for fees, interest and payments.
package bangkokbank

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dsil-design/joot-statements/extractor/common"
)

const parserKey = "bangkokbank"

var dateStyle = common.DateStyle{Order: common.DayFirst, Buddhist: true}

var identifiers = []string{
	"bangkok bank",
	"ธนาคารกรุงเทพ",
	"bangkokbank.com",
	"bualuang",
	"bbl ",
}

const thaiDate = `\d{1,2}/\d{1,2}/\d{2,4}`

var (
	periodThaiPattern  = regexp.MustCompile(`ตั้งแต่\s*(` + thaiDate + `)\s*ถึง\s*(` + thaiDate + `)`)
	periodRangePattern = regexp.MustCompile(`(` + thaiDate + `)\s*(?:-|–)\s*(` + thaiDate + `)`)
	periodFromTo       = regexp.MustCompile(`(?i)from\s+(` + thaiDate + `)\s+to\s+(` + thaiDate + `)`)

	previousBalancePattern = regexp.MustCompile(`(?i)(?:ยอดยกมา|beginning balance|opening balance)\s*/?\s*[A-Za-z ]*[:\s]+([\d,]+\.\d{2})`)
	newBalancePattern      = regexp.MustCompile(`(?i)(?:ยอดคงเหลือ|ยอดยกไป|ending balance|closing balance)\s*/?\s*[A-Za-z ]*[:\s]+([\d,]+\.\d{2})`)

	accountPattern = regexp.MustCompile(`(?i)(?:เลขที่บัญชี|account no\.?)\s*/?\s*[A-Za-z .]*[:#]?\s*[x*]{3}-?[x*]-?[x*]{2}(\d{3})-?(\d)`)

	txLinePattern = regexp.MustCompile(`^(` + thaiDate + `)\s+(.+?)\s+([\d,]+\.\d{2})\s+(CR|DR)(?:\s+([\d,]+\.\d{2}))?\s*$`)
	totalsPattern = regexp.MustCompile(`(?i)^\s*(?:total\b|รวม|ยอดรวม)`)
	labelPattern  = regexp.MustCompile(`(?i)^(?:ยอดยกมา|ยอดคงเหลือ|ยอดยกไป|beginning balance|ending balance|opening balance|closing balance|เลขที่บัญชี|account no)`)
)

// accountTypes are ordered most-specific first.
var accountTypes = []struct{ keyword, label string }{
	{"สะสมทรัพย์", "Savings Account"},
	{"savings account", "Savings Account"},
	{"กระแสรายวัน", "Current Account"},
	{"current account", "Current Account"},
	{"ประจำ", "Fixed Deposit"},
	{"fixed deposit", "Fixed Deposit"},
}

var typeRules = common.TypeRules{
	Payment:  []string{"ชำระ", "payment", "bill pay"},
	Fee:      []string{"ค่าธรรมเนียม", "fee", "charge for"},
	Interest: []string{"ดอกเบี้ย", "interest"},
	Credit:   []string{"คืนเงิน", "refund", "reversal"},
}

var categoryBuckets = []common.CategoryBucket{
	{Name: "Income", Keywords: []string{"เงินเดือน", "salary", "payroll"}},
	{Name: "Dining", Keywords: []string{"restaurant", "cafe", "starbucks", "ร้านอาหาร"}},
	{Name: "Groceries", Keywords: []string{"lotus", "big c", "tops", "makro", "7-eleven", "ตลาด"}},
	{Name: "Transport", Keywords: []string{"bts", "mrt", "grab", "taxi", "ptt", "น้ำมัน"}},
	{Name: "Utilities", Keywords: []string{"การไฟฟ้า", "การประปา", "true", "ais", "electricity", "water supply"}},
	{Name: "Shopping", Keywords: []string{"lazada", "shopee", "central", "เซ็นทรัล"}},
	{Name: "Health", Keywords: []string{"โรงพยาบาล", "hospital", "pharmacy", "คลินิก"}},
}

// Parser is the Bangkok Bank statement parser.
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
		return common.FailedResult(parserKey, "no Bangkok Bank identifiers found in text")
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
	var current *common.Transaction

	flush := func() {
		if current != nil {
			result.Transactions = append(result.Transactions, *current)
			current = nil
		}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || common.IsPageBreak(line) {
			flush()
			continue
		}
		if totalsPattern.MatchString(line) || labelPattern.MatchString(line) {
			flush()
			continue
		}

		if m := txLinePattern.FindStringSubmatch(line); m != nil {
			flush()

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
			hint := common.TypeCharge
			if m[4] == "CR" {
				hint = common.TypeIncome
			}
			current = &common.Transaction{
				Date:        date,
				Description: desc,
				Merchant:    desc,
				Amount:      amount.Abs(),
				Currency:    "THB",
				Type:        common.ClassifyType(desc, false, hint, typeRules),
				Category:    common.Categorize(desc, categoryBuckets),
			}
			continue
		}

		// Indented continuation lines extend the open transaction's
		// description.
		if current != nil && strings.HasPrefix(raw, " ") {
			current.Description = current.Description + " " + line
			continue
		}
		flush()
	}
	flush()

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
	for _, pattern := range []*regexp.Regexp{periodThaiPattern, periodRangePattern, periodFromTo} {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		start, errStart := common.ParseDate(m[1], dateStyle)
		end, errEnd := common.ParseDate(m[2], dateStyle)
		if errStart != nil || errEnd != nil || start.After(end) {
			continue
		}
		return &common.StatementPeriod{StartDate: start, EndDate: end}
	}
	return nil
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
	if !found {
		return nil
	}
	return summary
}

func findAccount(text string) *common.AccountInfo {
	info := &common.AccountInfo{}
	if m := accountPattern.FindStringSubmatch(text); m != nil {
		info.AccountNumber = m[1] + m[2]
	}
	lower := strings.ToLower(text)
	for _, at := range accountTypes {
		if strings.Contains(lower, at.keyword) {
			info.CardType = at.label
			break
		}
	}
	if info.AccountNumber == "" && info.CardType == "" {
		return nil
	}
	return info
}
