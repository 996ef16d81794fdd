/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/codec"
)

var convertOpts struct {
	input  string
	output string
	from   codec.Format
	to     codec.Format
}

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a transaction file between formats",
	Long: `Decode a transaction file in one format and write it in another.
Output goes to stdout unless --out is given.

Examples:
  ypbank convert -i records.csv -f csv -o binary > records.bin
  ypbank convert -i records.bin -f binary -o txt --out records.txt
  cat records.txt | ypbank convert -i - -f txt -o csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFormat("input-format", convertOpts.from); err != nil {
			return err
		}
		if err := requireFormat("output-format", convertOpts.to); err != nil {
			return err
		}

		set, err := readSet(cmd, convertOpts.input, convertOpts.from)
		if err != nil {
			return err
		}
		if err := writeSet(cmd, convertOpts.output, set, convertOpts.to); err != nil {
			return err
		}

		logger.Info("converted records",
			"records", len(set),
			"from", string(convertOpts.from),
			"to", string(convertOpts.to),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	flags := convertCmd.Flags()
	flags.StringVarP(&convertOpts.input, "input", "i", "", "Input file, - for stdin (required)")
	flags.VarP(&convertOpts.from, "input-format", "f", "Input format: csv, txt or binary (required)")
	flags.VarP(&convertOpts.to, "output-format", "o", "Output format: csv, txt or binary (required)")
	flags.StringVar(&convertOpts.output, "out", "", "Output file (default stdout)")
	if err := convertCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
}
