package common

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType encodes the direction and nature of a transaction.
// Amounts on Transaction are always non-negative magnitudes; the type
// carries the direction.
type TransactionType string

const (
	TypeCharge     TransactionType = "charge"
	TypePayment    TransactionType = "payment"
	TypeFee        TransactionType = "fee"
	TypeInterest   TransactionType = "interest"
	TypeCredit     TransactionType = "credit"
	TypeAdjustment TransactionType = "adjustment"
	TypeIncome     TransactionType = "income"
)

func (t TransactionType) String() string {
	return string(t)
}

// Transaction is a single statement entry.
type Transaction struct {
	Date             time.Time        `json:"transaction_date"`
	Description      string           `json:"description"`
	Merchant         string           `json:"merchant,omitempty"`
	Amount           decimal.Decimal  `json:"amount"`
	Currency         string           `json:"currency"`
	OriginalAmount   *decimal.Decimal `json:"original_amount,omitempty"`
	OriginalCurrency string           `json:"original_currency,omitempty"`
	ExchangeRate     *decimal.Decimal `json:"exchange_rate,omitempty"`
	Type             TransactionType  `json:"type"`
	Category         string           `json:"category,omitempty"`
	Tags             []string         `json:"tags,omitempty"`
}

// MerchantOrDescription returns the merchant name, falling back to the
// full description when no merchant was extracted.
func (t Transaction) MerchantOrDescription() string {
	if t.Merchant != "" {
		return t.Merchant
	}
	return t.Description
}

// StatementPeriod covers the date range of one statement.
// StartDate <= EndDate whenever both are present.
type StatementPeriod struct {
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	ClosingDate *time.Time `json:"closing_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// ReferenceDate is the anchor used to resolve transaction dates printed
// without a year: the period end, or the closing date when no range was
// found.
func (p *StatementPeriod) ReferenceDate() time.Time {
	if !p.EndDate.IsZero() {
		return p.EndDate
	}
	if p.ClosingDate != nil {
		return *p.ClosingDate
	}
	return time.Time{}
}

// AccountInfo holds the masked account identity. AccountNumber keeps only
// the trailing digits; the masked prefix is discarded.
type AccountInfo struct {
	AccountNumber string `json:"account_number"`
	CardType      string `json:"card_type,omitempty"`
}

// Summary holds the statement totals block. Every field is independently
// optional; the parser enforces no cross-field invariant.
type Summary struct {
	PreviousBalance *decimal.Decimal `json:"previous_balance,omitempty"`
	NewBalance      *decimal.Decimal `json:"new_balance,omitempty"`
	MinimumPayment  *decimal.Decimal `json:"minimum_payment,omitempty"`
	CreditLimit     *decimal.Decimal `json:"credit_limit,omitempty"`
}

// ParseResult is the outcome of one parse() call. It is constructed once
// and never mutated afterwards.
type ParseResult struct {
	Success      bool             `json:"success"`
	Parser       string           `json:"parser"`
	Transactions []Transaction    `json:"transactions"`
	Period       *StatementPeriod `json:"period,omitempty"`
	Summary      *Summary         `json:"summary,omitempty"`
	Account      *AccountInfo     `json:"account,omitempty"`
	Confidence   int              `json:"confidence"`
	Errors       []string         `json:"errors,omitempty"`
	Warnings     []string         `json:"warnings,omitempty"`
	PageCount    int              `json:"page_count,omitempty"`
	RawText      string           `json:"raw_text,omitempty"`
}

// Options is the caller-supplied options bag for a parse.
type Options struct {
	IncludeRawText bool `json:"include_raw_text,omitempty"`
	MaxDaysDiff    int  `json:"max_days_diff,omitempty"`
	StrictMode     bool `json:"strict_mode,omitempty"`
}

// FailedResult builds the fixed shape for precondition failures: one
// error, zero transactions, zero confidence.
func FailedResult(parserKey, reason string) ParseResult {
	return ParseResult{
		Success:      false,
		Parser:       parserKey,
		Transactions: []Transaction{},
		Errors:       []string{reason},
	}
}

// SortTransactions orders transactions ascending by date, keeping the
// original order for same-day entries.
func SortTransactions(txs []Transaction) {
	slices.SortStableFunc(txs, func(a, b Transaction) int {
		return a.Date.Compare(b.Date)
	})
}

// ContainsAnyFold reports whether text contains any of the identifiers,
// case-insensitively. Identifiers are checked in order.
func ContainsAnyFold(text string, identifiers []string) bool {
	lower := strings.ToLower(text)
	for _, id := range identifiers {
		if id != "" && strings.Contains(lower, strings.ToLower(id)) {
			return true
		}
	}
	return false
}

// CategoryBucket is one entry of an ordered category keyword table.
type CategoryBucket struct {
	Name     string
	Keywords []string
}

// Categorize returns the name of the first bucket with a keyword present
// in the description, or "" when no bucket matches.
func Categorize(description string, buckets []CategoryBucket) string {
	lower := strings.ToLower(description)
	for _, bucket := range buckets {
		for _, kw := range bucket.Keywords {
			if strings.Contains(lower, kw) {
				return bucket.Name
			}
		}
	}
	return ""
}
