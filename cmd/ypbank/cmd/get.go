/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/ypbank/pkg/codec"
	"github.com/ssargent/ypbank/pkg/record"
)

var getFormat = codec.FormatText

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <tx_id>",
	Short: "Print one ledger record",
	Long: `Print the ledger record stored under a transaction id.

Example:
  ypbank get 1000000000000001
  ypbank get 1000000000000001 -o csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, err := parseTxID(args[0])
		if err != nil {
			return err
		}

		l, err := openLedger()
		if err != nil {
			return err
		}
		defer l.Close()

		tx, err := l.Get(txID)
		if err != nil {
			return err
		}
		return writeSet(cmd, "", record.Set{tx}, getFormat)
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
	getCmd.Flags().VarP(&getFormat, "output-format", "o", "Output format: csv, txt or binary")
}
