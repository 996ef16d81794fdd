/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/codec"
)

var importOpts struct {
	input  string
	format codec.Format
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a transaction file into the ledger",
	Long: `Decode a transaction file and store every record in the ledger as one
batch. A record whose tx_id is already stored replaces the old one.

Example:
  ypbank import -i records.csv -f csv`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireFormat("format", importOpts.format); err != nil {
			return err
		}

		set, err := readSet(cmd, importOpts.input, importOpts.format)
		if err != nil {
			return err
		}

		l, err := openLedger()
		if err != nil {
			return err
		}
		defer l.Close()

		id, err := l.Import(set)
		if err != nil {
			return err
		}

		logger.Info("imported batch", "batch_id", id.String(), "records", len(set))
		cmd.Printf("Imported %d records as batch %s\n", len(set), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importOpts.input, "input", "i", "", "Input file, - for stdin (required)")
	importCmd.Flags().VarP(&importOpts.format, "format", "f", "Input format: csv, txt or binary (required)")
	if err := importCmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}
}
