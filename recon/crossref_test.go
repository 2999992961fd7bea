package recon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsil-design/joot-statements/extractor/common"
)

// monthOfTxs builds n distinct June 2024 transactions. Amounts differ by
// whole dollars so tolerant dates never cause accidental cross-matches.
func monthOfTxs(n int) []common.Transaction {
	txs := make([]common.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, tx(1+i%28, "MERCHANT", decimal.NewFromInt(int64(100+i)).String()))
	}
	return txs
}

func TestCrossReference_AllAgree(t *testing.T) {
	store := monthOfTxs(20)
	report := CrossReference(store, monthOfTxs(20), monthOfTxs(20), CrossRefConfig{})

	require.Len(t, report.Pairs, 3)
	for _, pair := range report.Pairs {
		assert.Equal(t, 20, pair.MatchedCount, "%s/%s", pair.First, pair.Second)
		assert.Empty(t, pair.OnlyInFirst)
		assert.Empty(t, pair.OnlyInSecond)
	}
	assert.Empty(t, report.Recommendations)
	for _, month := range report.Months {
		assert.False(t, month.Discrepant)
	}
}

func TestCrossReference_Empty(t *testing.T) {
	report := CrossReference(nil, nil, nil, CrossRefConfig{})
	require.Len(t, report.Pairs, 3)
	for _, pair := range report.Pairs {
		assert.Zero(t, pair.MatchedCount)
	}
	assert.Empty(t, report.Months)
	assert.Empty(t, report.Recommendations)
}

func TestCrossReference_DocumentAheadOfStore(t *testing.T) {
	store := monthOfTxs(100)
	imported := monthOfTxs(100)
	document := append(monthOfTxs(100),
		tx(12, "MISSING CHARGE A", "500.25"),
		tx(19, "MISSING CHARGE B", "600.75"),
	)

	report := CrossReference(store, imported, document, CrossRefConfig{})

	var storeVsDoc *PairResult
	for i := range report.Pairs {
		if report.Pairs[i].First == PopulationStore && report.Pairs[i].Second == PopulationDocument {
			storeVsDoc = &report.Pairs[i]
		}
	}
	require.NotNil(t, storeVsDoc)
	assert.Equal(t, 100, storeVsDoc.MatchedCount)
	assert.Empty(t, storeVsDoc.OnlyInFirst)
	assert.Len(t, storeVsDoc.OnlyInSecond, 2)

	var criticals []Recommendation
	for _, rec := range report.Recommendations {
		if rec.Priority == PriorityCritical {
			criticals = append(criticals, rec)
		}
	}
	require.Len(t, criticals, 1)
	assert.Contains(t, criticals[0].Issue, "2 transaction(s)")
	assert.Len(t, criticals[0].Examples, 2)

	// June is flagged as discrepant: 100 vs 100 vs 102.
	require.Len(t, report.Months, 1)
	assert.True(t, report.Months[0].Discrepant)
	assert.Equal(t, "2024-06", report.Months[0].Month)
	assert.Equal(t, 102, report.Months[0].Counts[PopulationDocument])
	assert.Equal(t, -2, report.Months[0].Deltas[PopulationStore+"/"+PopulationDocument])
}

func TestCrossReference_OrderInvariant(t *testing.T) {
	store := monthOfTxs(30)
	document := append(monthOfTxs(30), tx(25, "EXTRA", "999.99"))

	baseline := CrossReference(store, store, document, CrossRefConfig{})

	reversed := func(txs []common.Transaction) []common.Transaction {
		out := make([]common.Transaction, len(txs))
		for i, tr := range txs {
			out[len(txs)-1-i] = tr
		}
		return out
	}
	shuffled := CrossReference(reversed(store), store, reversed(document), CrossRefConfig{})

	assert.Equal(t, baseline, shuffled)
}

func TestCrossReference_DateTolerance(t *testing.T) {
	store := []common.Transaction{tx(10, "STARBUCKS", "5.75")}
	document := []common.Transaction{tx(12, "STARBUCKS", "5.75")}

	report := CrossReference(store, store, document, CrossRefConfig{})
	for _, pair := range report.Pairs {
		assert.Equal(t, 1, pair.MatchedCount, "%s/%s", pair.First, pair.Second)
	}

	tight := CrossReference(store, store, document, CrossRefConfig{DateToleranceDays: 1})
	var storeVsDoc *PairResult
	for i := range tight.Pairs {
		if tight.Pairs[i].First == PopulationStore && tight.Pairs[i].Second == PopulationDocument {
			storeVsDoc = &tight.Pairs[i]
		}
	}
	require.NotNil(t, storeVsDoc)
	assert.Zero(t, storeVsDoc.MatchedCount)
}

func TestCrossReference_AmountEpsilon(t *testing.T) {
	store := []common.Transaction{tx(10, "STARBUCKS", "5.75")}
	near := []common.Transaction{tx(10, "STARBUCKS", "5.76")}
	far := []common.Transaction{tx(10, "STARBUCKS", "5.80")}

	within := CrossReference(store, store, near, CrossRefConfig{})
	var pair *PairResult
	for i := range within.Pairs {
		if within.Pairs[i].First == PopulationStore && within.Pairs[i].Second == PopulationDocument {
			pair = &within.Pairs[i]
		}
	}
	require.NotNil(t, pair)
	assert.Equal(t, 1, pair.MatchedCount)

	beyond := CrossReference(store, store, far, CrossRefConfig{})
	for i := range beyond.Pairs {
		if beyond.Pairs[i].First == PopulationStore && beyond.Pairs[i].Second == PopulationDocument {
			assert.Zero(t, beyond.Pairs[i].MatchedCount)
		}
	}
}

func TestCrossReference_CurrencyMustAgree(t *testing.T) {
	store := []common.Transaction{tx(10, "AGODA", "150.00")}
	doc := []common.Transaction{tx(10, "AGODA", "150.00")}
	doc[0].Currency = "THB"

	report := CrossReference(store, store, doc, CrossRefConfig{})
	for i := range report.Pairs {
		if report.Pairs[i].First == PopulationStore && report.Pairs[i].Second == PopulationDocument {
			assert.Zero(t, report.Pairs[i].MatchedCount)
		}
	}
}

func TestCrossReference_CountMismatchPriority(t *testing.T) {
	// Six extra entries in the import push the store/import pair past
	// the default mismatch threshold.
	store := monthOfTxs(10)
	extras := []common.Transaction{
		tx(2, "EXTRA ONE", "501.00"),
		tx(4, "EXTRA TWO", "502.00"),
		tx(6, "EXTRA THREE", "503.00"),
		tx(8, "EXTRA FOUR", "504.00"),
		tx(10, "EXTRA FIVE", "505.00"),
		tx(12, "EXTRA SIX", "506.00"),
	}
	imported := append(monthOfTxs(10), extras...)

	report := CrossReference(store, imported, store, CrossRefConfig{})

	var found bool
	for _, rec := range report.Recommendations {
		if rec.Priority == PriorityHigh {
			found = true
		}
	}
	assert.True(t, found, "expected a high-priority count mismatch recommendation")
}
