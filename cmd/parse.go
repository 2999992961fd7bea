package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dsil-design/joot-statements/extractor"
	"github.com/dsil-design/joot-statements/extractor/common"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file or directory]",
	Short: "Parse statement text file(s) into structured transactions",
	Long: `Parse reads plain-text statement files (text already extracted
from the source documents), detects the institution, and prints one
ParseResult per file as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Bool("raw-text", false, "include the raw statement text in each result")
	viper.BindPFlag("parse.include_raw_text", parseCmd.Flags().Lookup("raw-text"))
}

func parseOptions() common.Options {
	return common.Options{
		IncludeRawText: viper.GetBool("parse.include_raw_text"),
		MaxDaysDiff:    viper.GetInt("match.max_days_diff"),
		StrictMode:     viper.GetBool("match.strict"),
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	target := args[0]
	opts := parseOptions()

	info, err := os.Stat(target)
	if err != nil {
		return errors.Wrapf(err, "cannot access %s", target)
	}

	if info.IsDir() {
		entries, err := os.ReadDir(target)
		if err != nil {
			return errors.Wrapf(err, "cannot scan %s", target)
		}
		results := []common.ParseResult{}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			result, err := parseFile(filepath.Join(target, e.Name()), opts)
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		return printJSON(results)
	}

	result, err := parseFile(target, opts)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func parseFile(path string, opts common.Options) (common.ParseResult, error) {
	log.Infof("parsing %s", path)
	text, err := os.ReadFile(path)
	if err != nil {
		return common.ParseResult{}, errors.Wrapf(err, "cannot read %s", path)
	}
	return extractor.Parse(string(text), opts, log), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "cannot encode output")
}
