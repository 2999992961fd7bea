package cmd

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dsil-design/joot-statements/extractor/common"
	"github.com/dsil-design/joot-statements/recon"
)

var (
	storeFile    string
	importFile   string
	documentFile string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Cross-reference store, import and source-document populations",
	Long: `Reconcile loads three transaction populations from JSON files,
matches them pairwise, and prints a cross-reference report with monthly
discrepancies and prioritized recommendations.`,
	RunE: runReconcile,
}

// dedupeCmd runs the single-population duplicate detector.
var dedupeCmd = &cobra.Command{
	Use:   "dedupe [transactions.json]",
	Short: "Detect exact and near duplicates within one population",
	Args:  cobra.ExactArgs(1),
	RunE:  runDedupe,
}

func init() {
	rootCmd.AddCommand(reconcileCmd, dedupeCmd)
	reconcileCmd.Flags().StringVar(&storeFile, "store", "", "JSON file with the authoritative store transactions")
	reconcileCmd.Flags().StringVar(&importFile, "import", "", "JSON file with the imported transactions")
	reconcileCmd.Flags().StringVar(&documentFile, "document", "", "JSON file with the source-document transactions")
	reconcileCmd.MarkFlagRequired("store")
	reconcileCmd.MarkFlagRequired("import")
	reconcileCmd.MarkFlagRequired("document")
}

func crossRefConfig() recon.CrossRefConfig {
	cfg := recon.DefaultCrossRefConfig()
	if v := viper.GetInt("recon.date_tolerance_days"); v > 0 {
		cfg.DateToleranceDays = v
	}
	if v := viper.GetString("recon.amount_epsilon"); v != "" {
		if eps, err := decimal.NewFromString(v); err == nil {
			cfg.AmountEpsilon = eps
		}
	}
	if v := viper.GetInt("recon.count_mismatch_threshold"); v > 0 {
		cfg.CountMismatchThreshold = v
	}
	return cfg
}

func detectorConfig() recon.DetectorConfig {
	cfg := recon.DefaultDetectorConfig()
	if v := viper.GetInt("recon.near_date_tolerance_days"); v > 0 {
		cfg.NearDateToleranceDays = v
	}
	return cfg
}

func runReconcile(cmd *cobra.Command, args []string) error {
	store, err := loadTransactions(storeFile)
	if err != nil {
		return err
	}
	imported, err := loadTransactions(importFile)
	if err != nil {
		return err
	}
	document, err := loadTransactions(documentFile)
	if err != nil {
		return err
	}

	log.Infof("cross-referencing %d store / %d import / %d document transactions",
		len(store), len(imported), len(document))
	report := recon.CrossReference(store, imported, document, crossRefConfig())
	return printJSON(report)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	txs, err := loadTransactions(args[0])
	if err != nil {
		return err
	}
	log.Infof("scanning %d transactions for duplicates", len(txs))
	report := recon.DetectDuplicates(txs, detectorConfig())
	return printJSON(report)
}

func loadTransactions(path string) ([]common.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}
	var txs []common.Transaction
	if err := json.Unmarshal(data, &txs); err != nil {
		return nil, errors.Wrapf(err, "cannot decode transactions from %s", path)
	}
	return txs, nil
}
