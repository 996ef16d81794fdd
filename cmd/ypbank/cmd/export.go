/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/record"
)

var exportOpts struct {
	format codec.Format
	batch  string
	output string
	list   bool
}

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger records",
	Long: `Write every ledger record, ordered by tx_id, or the records of a single
import batch.

Examples:
  ypbank export -o binary --out ledger.bin
  ypbank export -o txt --batch 0ujtsYcgvSTl8PAuAdqWYSMnLOv
  ypbank export --list-batches`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := openLedger()
		if err != nil {
			return err
		}
		defer l.Close()

		if exportOpts.list {
			ids, err := l.Batches()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, id.Time().UTC().Format(time.RFC3339))
			}
			return nil
		}

		var set record.Set
		if exportOpts.batch != "" {
			id, err := ksuid.Parse(exportOpts.batch)
			if err != nil {
				return fmt.Errorf("invalid batch id %q: %w", exportOpts.batch, err)
			}
			set, err = l.Batch(id)
			if err != nil {
				return err
			}
		} else {
			set, err = l.All()
			if err != nil {
				return err
			}
		}

		if err := writeSet(cmd, exportOpts.output, set, exportOpts.format); err != nil {
			return err
		}
		logger.Info("exported records", "records", len(set), "format", string(exportOpts.format))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportOpts.format = codec.FormatCSV
	flags := exportCmd.Flags()
	flags.VarP(&exportOpts.format, "output-format", "o", "Output format: csv, txt or binary")
	flags.StringVar(&exportOpts.batch, "batch", "", "Export only this import batch")
	flags.StringVar(&exportOpts.output, "out", "", "Output file (default stdout)")
	flags.BoolVar(&exportOpts.list, "list-batches", false, "List batch ids and creation times instead")
}
