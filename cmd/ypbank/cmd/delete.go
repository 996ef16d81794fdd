/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete <tx_id>",
	Short: "Delete a ledger record",
	Long: `Delete the ledger record stored under a transaction id.

Example:
  ypbank delete 1000000000000001`,
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

		if err := l.Delete(txID); err != nil {
			return err
		}

		cmd.Printf("Deleted transaction %d\n", txID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
