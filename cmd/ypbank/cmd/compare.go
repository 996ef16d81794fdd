/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/compare"
)

var compareOpts struct {
	file1    string
	file2    string
	format1  codec.Format
	format2  codec.Format
	currency string
}

// compareCmd represents the compare command
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two transaction files by tx_id",
	Long: `Decode two transaction files, possibly in different formats, and report
records that differ or exist in only one of them. Records are matched by
tx_id; their order does not matter.

Examples:
  ypbank compare --file1 a.csv --format1 csv --file2 b.bin --format2 binary
  ypbank compare --file1 a.txt --format1 txt --file2 b.txt --format2 txt --currency EUR`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFormat("format1", compareOpts.format1); err != nil {
			return err
		}
		if err := requireFormat("format2", compareOpts.format2); err != nil {
			return err
		}

		first, err := readSet(cmd, compareOpts.file1, compareOpts.format1)
		if err != nil {
			return err
		}
		second, err := readSet(cmd, compareOpts.file2, compareOpts.format2)
		if err != nil {
			return err
		}

		currency := appConfig.Report.Currency
		if cmd.Flags().Changed("currency") {
			currency = compareOpts.currency
		}

		report := compare.Compare(first, second)
		logger.Debug("compared record sets",
			"matched", report.Matched,
			"mismatched", len(report.Mismatches),
			"only_in_first", len(report.OnlyInFirst),
			"only_in_second", len(report.OnlyInSecond),
		)
		return report.Render(cmd.OutOrStdout(), compareOpts.file1, compareOpts.file2, compare.RenderOptions{Currency: currency})
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	flags := compareCmd.Flags()
	flags.StringVar(&compareOpts.file1, "file1", "", "First file (required)")
	flags.StringVar(&compareOpts.file2, "file2", "", "Second file (required)")
	flags.Var(&compareOpts.format1, "format1", "Format of the first file: csv, txt or binary (required)")
	flags.Var(&compareOpts.format2, "format2", "Format of the second file: csv, txt or binary (required)")
	flags.StringVar(&compareOpts.currency, "currency", "", "ISO 4217 code for displaying amount differences")
	for _, name := range []string{"file1", "file2"} {
		if err := compareCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}
