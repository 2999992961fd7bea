package recon

import (
	"fmt"
	"strings"

	"github.com/dsil-design/joot-statements/datematch"
	"github.com/dsil-design/joot-statements/extractor/common"
)

// DetectorConfig holds the named thresholds of the duplicate detector.
type DetectorConfig struct {
	// NearDateToleranceDays is how many days apart two transactions may
	// post and still count as near duplicates of each other.
	NearDateToleranceDays int
}

// DefaultDetectorConfig returns the tolerances used when the caller
// passes a zero config.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{NearDateToleranceDays: datematch.DefaultTolerance}
}

func (c DetectorConfig) withDefaults() DetectorConfig {
	if c.NearDateToleranceDays <= 0 {
		c.NearDateToleranceDays = datematch.DefaultTolerance
	}
	return c
}

// ClusterKind distinguishes exact fingerprint clusters from near ones.
type ClusterKind string

const (
	ClusterExact ClusterKind = "exact"
	ClusterNear  ClusterKind = "near"
)

// DuplicateCluster is one group of likely-identical transactions.
type DuplicateCluster struct {
	Kind         ClusterKind          `json:"kind"`
	Transactions []common.Transaction `json:"transactions"`
}

// DuplicateReport summarizes duplicate findings for one population.
type DuplicateReport struct {
	ExactCount           int                `json:"exact_count"`
	NearCount            int                `json:"near_count"`
	AffectedTransactions int                `json:"affected_transactions"`
	Clusters             []DuplicateCluster `json:"clusters,omitempty"`
	Recommendations      []Recommendation   `json:"recommendations,omitempty"`
}

// fingerprint is the exact-duplicate key: calendar day, normalized
// merchant, amount, currency.
func fingerprint(tx common.Transaction) string {
	return strings.Join([]string{
		tx.Date.Format("2006-01-02"),
		common.NormalizeMerchant(tx.MerchantOrDescription()),
		tx.Amount.String(),
		strings.ToUpper(tx.Currency),
	}, "|")
}

// DetectDuplicates clusters exact and near duplicates within a single
// transaction population. It never fails; an empty population yields an
// all-zero report.
func DetectDuplicates(txs []common.Transaction, cfg DetectorConfig) DuplicateReport {
	cfg = cfg.withDefaults()
	report := DuplicateReport{}

	// Exact clusters: group by fingerprint, preserving first-seen order.
	groups := make(map[string][]int, len(txs))
	var order []string
	for i, tx := range txs {
		key := fingerprint(tx)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	inExact := make([]bool, len(txs))
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		cluster := DuplicateCluster{Kind: ClusterExact}
		for _, i := range members {
			cluster.Transactions = append(cluster.Transactions, txs[i])
			inExact[i] = true
		}
		report.Clusters = append(report.Clusters, cluster)
		report.ExactCount++
		report.AffectedTransactions += len(members)
	}

	// Near clusters over the remainder: same amount and currency, dates
	// within tolerance, merchants equal or containing one another up to
	// case and punctuation.
	clustered := make([]bool, len(txs))
	for i := range txs {
		if inExact[i] || clustered[i] {
			continue
		}
		members := []int{i}
		for j := i + 1; j < len(txs); j++ {
			if inExact[j] || clustered[j] {
				continue
			}
			if nearDuplicate(txs[i], txs[j], cfg) {
				members = append(members, j)
			}
		}
		if len(members) < 2 {
			continue
		}
		cluster := DuplicateCluster{Kind: ClusterNear}
		for _, m := range members {
			cluster.Transactions = append(cluster.Transactions, txs[m])
			clustered[m] = true
		}
		report.Clusters = append(report.Clusters, cluster)
		report.NearCount++
		report.AffectedTransactions += len(members)
	}

	report.Recommendations = duplicateRecommendations(report)
	return report
}

func nearDuplicate(a, b common.Transaction, cfg DetectorConfig) bool {
	if !a.Amount.Equal(b.Amount) {
		return false
	}
	if !strings.EqualFold(a.Currency, b.Currency) {
		return false
	}
	if !datematch.WithinTolerance(a.Date, b.Date, cfg.NearDateToleranceDays) {
		return false
	}
	return merchantsMatch(a.MerchantOrDescription(), b.MerchantOrDescription())
}

func duplicateRecommendations(report DuplicateReport) []Recommendation {
	var recs []Recommendation

	if report.ExactCount > 0 {
		var examples []common.Transaction
		for _, c := range report.Clusters {
			if c.Kind == ClusterExact {
				examples = append(examples, c.Transactions...)
			}
		}
		recs = append(recs, Recommendation{
			Priority: PriorityCritical,
			Issue:    fmt.Sprintf("%d exact duplicate cluster(s) covering identical date, merchant, amount and currency", report.ExactCount),
			Action:   "remove the duplicate rows before importing into the store",
			Examples: exampleSlice(examples),
		})
	}

	if report.NearCount > 0 {
		var examples []common.Transaction
		for _, c := range report.Clusters {
			if c.Kind == ClusterNear {
				examples = append(examples, c.Transactions...)
			}
		}
		priority := PriorityMedium
		if report.NearCount >= 3 {
			priority = PriorityHigh
		}
		recs = append(recs, Recommendation{
			Priority: priority,
			Issue:    fmt.Sprintf("%d near-duplicate cluster(s) differing only in posting date or merchant formatting", report.NearCount),
			Action:   "review the clustered transactions and keep one record per purchase",
			Examples: exampleSlice(examples),
		})
	}

	return recs
}
