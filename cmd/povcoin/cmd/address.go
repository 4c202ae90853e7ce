package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print this wallet's address.",
	Run: func(cmd *cobra.Command, args []string) {
		n, _, err := newNode(nil)
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(n.Address())
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}
