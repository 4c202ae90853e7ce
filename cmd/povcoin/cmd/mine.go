package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Mine a block containing the current mempool and a coinbase reward.",
	Run: func(cmd *cobra.Command, args []string) {
		n, _, err := newNode(nil)
		if err != nil {
			fmt.Println(err)
			return
		}

		block, err := n.MineBlock(context.Background())
		if err != nil {
			fmt.Println(err)
			return
		}

		out, _ := json.MarshalIndent(block, "", "  ")
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
