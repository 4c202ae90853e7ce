// This is the principal entrypoint for the povcoin node CLI: a thin
// wrapper over foundation/blockchain/node that starts the gossip
// transport and exercises the wallet/mining commands from the command
// line. There is no HTTP control surface; every command talks to an
// in-process node.Node directly.
package main

import "github.com/ardanlabs/povcoin/cmd/povcoin/cmd"

func main() {
	cmd.Execute()
}
