package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sendTo     string
	sendAmount uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Build, sign, and admit a spend to the mempool.",
	Run: func(cmd *cobra.Command, args []string) {
		n, _, err := newNode(nil)
		if err != nil {
			fmt.Println(err)
			return
		}

		tx, err := n.SendTransaction(sendTo, sendAmount)
		if err != nil {
			fmt.Println(err)
			return
		}

		out, _ := json.MarshalIndent(tx, "", "  ")
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendTo, "to", "t", "", "Receiver address.")
	sendCmd.Flags().Uint64VarP(&sendAmount, "amount", "a", 0, "Amount to send.")
}
