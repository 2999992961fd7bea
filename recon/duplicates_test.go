package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsil-design/joot-statements/extractor/common"
)

func tx(day int, merchant, amount string) common.Transaction {
	a, _ := decimal.NewFromString(amount)
	return common.Transaction{
		Date:        time.Date(2024, time.June, day, 0, 0, 0, 0, time.UTC),
		Description: merchant,
		Merchant:    merchant,
		Amount:      a,
		Currency:    "USD",
		Type:        common.TypeCharge,
	}
}

func TestDetectDuplicates_Empty(t *testing.T) {
	report := DetectDuplicates(nil, DetectorConfig{})
	assert.Zero(t, report.ExactCount)
	assert.Zero(t, report.NearCount)
	assert.Zero(t, report.AffectedTransactions)
	assert.Empty(t, report.Clusters)
	assert.Empty(t, report.Recommendations)
}

func TestDetectDuplicates_Exact(t *testing.T) {
	txs := []common.Transaction{
		tx(10, "STARBUCKS NEW YORK", "5.75"),
		tx(10, "starbucks new york", "5.75"),
		tx(11, "WHOLE FOODS", "84.20"),
	}
	report := DetectDuplicates(txs, DetectorConfig{})

	assert.Equal(t, 1, report.ExactCount)
	assert.Equal(t, 0, report.NearCount)
	assert.Equal(t, 2, report.AffectedTransactions)
	require.Len(t, report.Clusters, 1)
	assert.Equal(t, ClusterExact, report.Clusters[0].Kind)
	assert.Len(t, report.Clusters[0].Transactions, 2)

	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, PriorityCritical, report.Recommendations[0].Priority)
}

func TestDetectDuplicates_Near(t *testing.T) {
	// Same amount, two days apart, merchant differing only in formatting.
	txs := []common.Transaction{
		tx(10, "STARBUCKS #123", "5.75"),
		tx(12, "Starbucks", "5.75"),
		tx(11, "WHOLE FOODS", "84.20"),
	}
	report := DetectDuplicates(txs, DetectorConfig{})

	assert.Equal(t, 0, report.ExactCount)
	assert.Equal(t, 1, report.NearCount)
	assert.Equal(t, 2, report.AffectedTransactions)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, PriorityMedium, report.Recommendations[0].Priority)
}

func TestDetectDuplicates_NearOutsideTolerance(t *testing.T) {
	txs := []common.Transaction{
		tx(10, "STARBUCKS", "5.75"),
		tx(15, "STARBUCKS", "5.75"),
	}
	report := DetectDuplicates(txs, DetectorConfig{NearDateToleranceDays: 3})
	assert.Zero(t, report.NearCount)

	wider := DetectDuplicates(txs, DetectorConfig{NearDateToleranceDays: 7})
	assert.Equal(t, 1, wider.NearCount)
}

func TestDetectDuplicates_DifferentAmountsNotClustered(t *testing.T) {
	txs := []common.Transaction{
		tx(10, "STARBUCKS", "5.75"),
		tx(10, "STARBUCKS", "6.25"),
	}
	report := DetectDuplicates(txs, DetectorConfig{})
	assert.Zero(t, report.ExactCount)
	assert.Zero(t, report.NearCount)
}

func TestDetectDuplicates_CurrencySeparatesClusters(t *testing.T) {
	a := tx(10, "AGODA", "150.00")
	b := tx(10, "AGODA", "150.00")
	b.Currency = "THB"
	report := DetectDuplicates([]common.Transaction{a, b}, DetectorConfig{})
	assert.Zero(t, report.ExactCount)
	assert.Zero(t, report.NearCount)
}

func TestDetectDuplicates_HighPriorityAtThreeNearClusters(t *testing.T) {
	txs := []common.Transaction{
		tx(1, "ALPHA STORE", "10.00"), tx(2, "Alpha Store Inc", "10.00"),
		tx(5, "BETA MART", "20.00"), tx(6, "Beta Mart #2", "20.00"),
		tx(10, "GAMMA CAFE", "30.00"), tx(11, "Gamma Cafe LLC", "30.00"),
	}
	report := DetectDuplicates(txs, DetectorConfig{})
	assert.Equal(t, 3, report.NearCount)
	require.Len(t, report.Recommendations, 1)
	assert.Equal(t, PriorityHigh, report.Recommendations[0].Priority)
}

func TestDetectDuplicates_RemovalIsIdempotent(t *testing.T) {
	txs := []common.Transaction{
		tx(10, "STARBUCKS", "5.75"),
		tx(10, "STARBUCKS", "5.75"),
		tx(11, "WHOLE FOODS", "84.20"),
	}
	report := DetectDuplicates(txs, DetectorConfig{})
	require.Equal(t, 1, report.ExactCount)

	// Keep the first member of each exact cluster and re-run.
	cleaned := common.DedupeExact(txs)
	second := DetectDuplicates(cleaned, DetectorConfig{})
	assert.Zero(t, second.ExactCount)
	assert.Zero(t, second.AffectedTransactions)
}
