package common

import (
	"regexp"
	"strings"
)

// Section is the parser's position within a statement body. Section
// header lines move the cursor; transaction lines inherit the current
// section as a type hint.
type Section int

const (
	SectionNone Section = iota
	SectionCharges
	SectionPayments
	SectionFees
	SectionInterest
	// SectionExcluded marks subsections whose lines are skipped entirely
	// (rewards and points summaries).
	SectionExcluded
)

// TypeHint maps a section to the transaction type it implies, or "" when
// the section carries no hint.
func (s Section) TypeHint() TransactionType {
	switch s {
	case SectionCharges:
		return TypeCharge
	case SectionPayments:
		return TypePayment
	case SectionFees:
		return TypeFee
	case SectionInterest:
		return TypeInterest
	default:
		return ""
	}
}

// TypeRules are the per-institution keyword lists for the type cascade.
type TypeRules struct {
	Payment  []string
	Fee      []string
	Interest []string
	Credit   []string
}

// ClassifyType runs the ordered type cascade: payment keywords, then fee,
// then interest, then credit keywords or the credit marker, then the
// section hint, then the default charge. First match wins.
func ClassifyType(description string, creditFlagged bool, hint TransactionType, rules TypeRules) TransactionType {
	lower := strings.ToLower(description)
	if containsAny(lower, rules.Payment) {
		return TypePayment
	}
	if containsAny(lower, rules.Fee) {
		return TypeFee
	}
	if containsAny(lower, rules.Interest) {
		return TypeInterest
	}
	if creditFlagged || containsAny(lower, rules.Credit) {
		return TypeCredit
	}
	if hint != "" {
		return hint
	}
	return TypeCharge
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var pageMarkerPattern = regexp.MustCompile(`(?i)^\s*page\s+\d+\s*(?:of|/)\s*\d+\s*$`)

// IsPageBreak reports whether a line is a page-break marker: a form feed
// or a bare "Page N of M" line.
func IsPageBreak(line string) bool {
	return strings.ContainsRune(line, '\f') || pageMarkerPattern.MatchString(line)
}

// CountPages counts page-break markers in the text; a statement is one
// page plus one per marker.
func CountPages(lines []string) int {
	pages := 1
	for _, line := range lines {
		if IsPageBreak(line) {
			pages++
		}
	}
	return pages
}

// DedupeExact collapses exact repeats of (date, normalized description,
// amount) to the first occurrence. Page-break duplication in source
// documents produces such repeats; this is not the cross-source
// duplicate detector.
func DedupeExact(txs []Transaction) []Transaction {
	seen := make(map[string]bool, len(txs))
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		key := tx.Date.Format("2006-01-02") + "|" + NormalizeMerchant(tx.Description) + "|" + tx.Amount.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tx)
	}
	return out
}
