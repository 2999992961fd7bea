package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dsil-design/joot-statements/pkg/logger"
)

// Embedded default configuration. Every tolerance the matching and
// reconciliation layers use is a named value here so deployments can
// override them without a rebuild.
const defaultConfigYAML = `
match:
  max_days_diff: 10
  strict: false
recon:
  date_tolerance_days: 3
  near_date_tolerance_days: 3
  amount_epsilon: "0.01"
  count_mismatch_threshold: 5
parse:
  include_raw_text: false
`

var (
	cfgFile string
	verbose bool
	log     = logger.New()

	rootCmd = &cobra.Command{
		Use:   "joot-statements [filename]",
		Short: "Parse and reconcile financial statement text",
		Long: `joot-statements converts raw statement text into structured
transactions and cross-references transaction populations from
independent sources to find duplicates and discrepancies.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runParse(cmd, args)
			}
			return cmd.Help()
		},
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.joot-statements.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	logger.SetVerbose(log, verbose)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".joot-statements")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}
