// Package cmd contains the povcoin node CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ardanlabs/povcoin/foundation/blockchain/chain"
	"github.com/ardanlabs/povcoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/povcoin/foundation/blockchain/node"
	"github.com/ardanlabs/povcoin/foundation/blockchain/peer"
	"github.com/ardanlabs/povcoin/foundation/blockchain/wallet"
	"github.com/ardanlabs/povcoin/foundation/keystore"
	"github.com/ardanlabs/povcoin/foundation/logger"
)

var (
	walletPath string
	knownPeers []string
)

// rootCmd is the base command when povcoin is called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "povcoin",
	Short: "A minimal proof-of-work UTXO cryptocurrency node",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&walletPath, "wallet", "w", "node/wallet/private_key", "Path to the wallet's private key file.")
	rootCmd.PersistentFlags().StringSliceVarP(&knownPeers, "peer", "p", nil, "Gossip URL of a known peer (repeatable).")
}

// Execute runs the configured command tree. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger constructs the service logger used by long-running commands.
func newLogger(service string) *zap.SugaredLogger {
	log, err := logger.New(service)
	if err != nil {
		// The logger itself failed to build; there is nothing left to log
		// through, so report to stderr and stop.
		fmt.Fprintln(os.Stderr, "constructing logger:", err)
		os.Exit(1)
	}
	return log
}

// newNode wires a fresh chain, mempool, gossip layer, and wallet around
// the key at walletPath, dialing every configured known peer before
// returning. The chain and mempool are process-resident only: nothing is
// loaded from or persisted to disk beyond the wallet's key file.
func newNode(log *zap.SugaredLogger) (*node.Node, *peer.Gossip, error) {
	priv, err := keystore.Load(walletPath)
	if err != nil {
		return nil, nil, err
	}

	pool := mempool.New()

	var n *node.Node
	c := chain.New(pool, func(b chain.Block) {
		n.OnNewHead(b)
	})
	g := peer.New(c, pool)
	n = node.New(c, pool, g, wallet.New(priv))

	for _, url := range knownPeers {
		if err := g.Dial(url); err != nil && log != nil {
			log.Infow("startup", "status", "peer dial failed", "peer", url, "ERROR", err)
		}
	}

	return n, g, nil
}
