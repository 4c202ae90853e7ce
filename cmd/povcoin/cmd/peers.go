package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "List connected gossip peers.",
	Run: func(cmd *cobra.Command, args []string) {
		n, _, err := newNode(nil)
		if err != nil {
			fmt.Println(err)
			return
		}
		for _, p := range n.ListPeers() {
			fmt.Println(p)
		}
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
}
