// Package recon cross-checks transaction populations produced by
// independent sources. The duplicate detector clusters likely-identical
// records inside one population; the cross-reference engine matches
// entries across the authoritative store, an imported file, and the
// source document, then flags months where the three disagree.
//
// Nothing here fails outright: empty input yields zero counts, and every
// finding is a value in a report.
package recon

import (
	"strings"

	"github.com/dsil-design/joot-statements/extractor/common"
)

// Priority ranks a recommendation.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
)

// Recommendation is one actionable finding, with a handful of example
// transactions for context.
type Recommendation struct {
	Priority Priority             `json:"priority"`
	Issue    string               `json:"issue"`
	Action   string               `json:"action"`
	Examples []common.Transaction `json:"examples,omitempty"`
}

// maxExamples bounds the example transactions attached to a
// recommendation.
const maxExamples = 5

func exampleSlice(txs []common.Transaction) []common.Transaction {
	if len(txs) <= maxExamples {
		return txs
	}
	return txs[:maxExamples]
}

// merchantsMatch compares merchant names case- and
// punctuation-insensitively, accepting equality or containment in either
// direction.
func merchantsMatch(a, b string) bool {
	na := common.NormalizeMerchant(a)
	nb := common.NormalizeMerchant(b)
	if na == "" || nb == "" {
		return na == nb
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// descriptionsMatch compares descriptions after case and quote
// normalization, accepting equality or containment in either direction.
func descriptionsMatch(a, b string) bool {
	na := common.NormalizeDescription(a)
	nb := common.NormalizeDescription(b)
	if na == "" || nb == "" {
		return na == nb
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}
