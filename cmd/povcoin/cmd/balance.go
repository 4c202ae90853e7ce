package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print this wallet's confirmed balance.",
	Run: func(cmd *cobra.Command, args []string) {
		n, _, err := newNode(nil)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(n.Balance())
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}
