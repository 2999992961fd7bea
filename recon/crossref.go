package recon

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dsil-design/joot-statements/datematch"
	"github.com/dsil-design/joot-statements/extractor/common"
)

// Population names of the three cross-referenced sources.
const (
	PopulationStore    = "store"
	PopulationImport   = "import"
	PopulationDocument = "document"
)

// CrossRefConfig holds the named thresholds of the cross-reference
// engine.
type CrossRefConfig struct {
	// DateToleranceDays is the day tolerance for treating two entries as
	// the same transaction.
	DateToleranceDays int
	// AmountEpsilon is the largest absolute amount difference two
	// matching entries may carry.
	AmountEpsilon decimal.Decimal
	// CountMismatchThreshold separates HIGH from MEDIUM count-mismatch
	// recommendations.
	CountMismatchThreshold int
}

// DefaultCrossRefConfig returns the thresholds used when the caller
// passes a zero config.
func DefaultCrossRefConfig() CrossRefConfig {
	return CrossRefConfig{
		DateToleranceDays:      datematch.DefaultTolerance,
		AmountEpsilon:          decimal.NewFromFloat(0.01),
		CountMismatchThreshold: 5,
	}
}

func (c CrossRefConfig) withDefaults() CrossRefConfig {
	if c.DateToleranceDays <= 0 {
		c.DateToleranceDays = datematch.DefaultTolerance
	}
	if c.AmountEpsilon.IsZero() {
		c.AmountEpsilon = decimal.NewFromFloat(0.01)
	}
	if c.CountMismatchThreshold <= 0 {
		c.CountMismatchThreshold = 5
	}
	return c
}

// Population is one named transaction source.
type Population struct {
	Name         string               `json:"name"`
	Transactions []common.Transaction `json:"transactions"`
}

// PairResult is the match outcome for one ordered population pair.
type PairResult struct {
	First        string               `json:"first"`
	Second       string               `json:"second"`
	MatchedCount int                  `json:"matched_count"`
	OnlyInFirst  []common.Transaction `json:"only_in_first,omitempty"`
	OnlyInSecond []common.Transaction `json:"only_in_second,omitempty"`
}

// MonthStats is the per-month population comparison. Deltas are signed
// counts keyed "first/second".
type MonthStats struct {
	Month      string         `json:"month"`
	Counts     map[string]int `json:"counts"`
	Deltas     map[string]int `json:"deltas"`
	Discrepant bool           `json:"discrepant"`
}

// CrossReferenceReport is the full reconciliation finding set.
type CrossReferenceReport struct {
	Pairs           []PairResult     `json:"pairs"`
	Months          []MonthStats     `json:"months,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// CrossReference matches the authoritative store, an imported file, and
// the source document against each other and aggregates monthly
// discrepancies with prioritized recommendations. It never fails: empty
// populations produce zero counts.
func CrossReference(store, imported, document []common.Transaction, cfg CrossRefConfig) CrossReferenceReport {
	cfg = cfg.withDefaults()

	populations := []Population{
		{Name: PopulationStore, Transactions: store},
		{Name: PopulationImport, Transactions: imported},
		{Name: PopulationDocument, Transactions: document},
	}

	report := CrossReferenceReport{}
	for i := 0; i < len(populations); i++ {
		for j := i + 1; j < len(populations); j++ {
			report.Pairs = append(report.Pairs, matchPair(populations[i], populations[j], cfg))
		}
	}

	report.Months = monthlyBreakdown(populations)
	report.Recommendations = crossRefRecommendations(report, cfg)
	return report
}

// sortedView returns a deterministic ordering of a population so that
// greedy matching is invariant to the caller's array order.
func sortedView(txs []common.Transaction) []common.Transaction {
	view := slices.Clone(txs)
	slices.SortStableFunc(view, func(a, b common.Transaction) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c
		}
		return strings.Compare(a.Description, b.Description)
	})
	return view
}

// matchPair greedily matches entries of two populations. Each entry of
// the second population is consumed by at most one match.
func matchPair(first, second Population, cfg CrossRefConfig) PairResult {
	a := sortedView(first.Transactions)
	b := sortedView(second.Transactions)

	result := PairResult{First: first.Name, Second: second.Name}
	consumed := make([]bool, len(b))

	for _, ta := range a {
		matched := false
		for j, tb := range b {
			if consumed[j] {
				continue
			}
			if entriesMatch(ta, tb, cfg) {
				consumed[j] = true
				matched = true
				break
			}
		}
		if matched {
			result.MatchedCount++
		} else {
			result.OnlyInFirst = append(result.OnlyInFirst, ta)
		}
	}
	for j, tb := range b {
		if !consumed[j] {
			result.OnlyInSecond = append(result.OnlyInSecond, tb)
		}
	}
	return result
}

// entriesMatch is the composite cross-source equality: tolerant date,
// amount within epsilon, same currency, description equal or containing.
func entriesMatch(a, b common.Transaction, cfg CrossRefConfig) bool {
	if !datematch.WithinTolerance(a.Date, b.Date, cfg.DateToleranceDays) {
		return false
	}
	if a.Amount.Sub(b.Amount).Abs().GreaterThan(cfg.AmountEpsilon) {
		return false
	}
	if !strings.EqualFold(a.Currency, b.Currency) {
		return false
	}
	return descriptionsMatch(a.Description, b.Description)
}

func monthlyBreakdown(populations []Population) []MonthStats {
	byMonth := make(map[string]map[string]int)
	for _, pop := range populations {
		for _, tx := range pop.Transactions {
			month := tx.Date.Format("2006-01")
			if byMonth[month] == nil {
				byMonth[month] = make(map[string]int, len(populations))
			}
			byMonth[month][pop.Name]++
		}
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	stats := make([]MonthStats, 0, len(months))
	for _, month := range months {
		counts := byMonth[month]
		stat := MonthStats{
			Month:  month,
			Counts: make(map[string]int, len(populations)),
			Deltas: make(map[string]int),
		}
		for _, pop := range populations {
			stat.Counts[pop.Name] = counts[pop.Name]
		}
		for i := 0; i < len(populations); i++ {
			for j := i + 1; j < len(populations); j++ {
				delta := counts[populations[i].Name] - counts[populations[j].Name]
				stat.Deltas[populations[i].Name+"/"+populations[j].Name] = delta
				if delta != 0 {
					stat.Discrepant = true
				}
			}
		}
		stats = append(stats, stat)
	}
	return stats
}

func crossRefRecommendations(report CrossReferenceReport, cfg CrossRefConfig) []Recommendation {
	var recs []Recommendation

	// Entries present in the source document but absent from the store
	// mean an import failed somewhere.
	for _, pair := range report.Pairs {
		if pair.First == PopulationStore && pair.Second == PopulationDocument && len(pair.OnlyInSecond) > 0 {
			recs = append(recs, Recommendation{
				Priority: PriorityCritical,
				Issue:    fmt.Sprintf("%d transaction(s) appear in the source document but not in the store", len(pair.OnlyInSecond)),
				Action:   "re-run the import for the affected statement period",
				Examples: exampleSlice(pair.OnlyInSecond),
			})
		}
	}

	for _, pair := range report.Pairs {
		unmatched := len(pair.OnlyInFirst) + len(pair.OnlyInSecond)
		if unmatched == 0 {
			continue
		}
		if pair.First == PopulationStore && pair.Second == PopulationDocument && len(pair.OnlyInSecond) > 0 {
			// Already covered by the critical recommendation.
			continue
		}
		priority := PriorityMedium
		if unmatched > cfg.CountMismatchThreshold {
			priority = PriorityHigh
		}
		examples := append(slices.Clone(pair.OnlyInFirst), pair.OnlyInSecond...)
		recs = append(recs, Recommendation{
			Priority: priority,
			Issue:    fmt.Sprintf("%d unmatched transaction(s) between %s and %s", unmatched, pair.First, pair.Second),
			Action:   fmt.Sprintf("compare the %s and %s records for the flagged months", pair.First, pair.Second),
			Examples: exampleSlice(examples),
		})
	}

	return recs
}
