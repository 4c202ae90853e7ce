// Package node is the facade that ties the chain, mempool, wallet, and
// gossip layer together behind the small set of commands an external
// control surface invokes: list/query the chain, manage peers, build and
// mine transactions, and read wallet balance and history. It owns no
// consensus logic of its own; every command either reads a defensive
// snapshot or delegates the mutation to chain.Chain or mempool.Pool.
package node

import (
	"context"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/ardanlabs/povcoin/foundation/blockchain/chain"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
	"github.com/ardanlabs/povcoin/foundation/blockchain/wallet"
)

// Dialer is the subset of *peer.Gossip a node needs to manage peers and
// broadcast. Narrowed to an interface so tests can stand in a fake.
type Dialer interface {
	Dial(url string) error
	Peers() []string
	BroadcastLatest(b chain.Block)
}

// Node is the single façade an external control surface (CLI, RPC layer)
// talks to. It holds no mutation lane of its own: chain.Chain already
// serializes every write, so Node is safe for concurrent command
// invocation without any locking of its own state, except around the
// in-flight mining cancellation below.
type Node struct {
	chain  *chain.Chain
	pool   *mempool.Pool
	gossip Dialer
	wallet *wallet.Wallet

	validate *validator.Validate
	trans    ut.Translator

	mu         sync.Mutex
	cancelMine context.CancelFunc
}

// New constructs a Node wired to chain c, mempool pool, gossip layer g,
// and wallet w. c's broadcast callback should already be wired to call
// Node.OnNewHead (see newNode in cmd/povcoin/cmd/root.go) so an adopted
// head cancels any mining attempt this node has in flight.
func New(c *chain.Chain, pool *mempool.Pool, g Dialer, w *wallet.Wallet) *Node {
	validate := validator.New()

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, trans)

	return &Node{
		chain:    c,
		pool:     pool,
		gossip:   g,
		wallet:   w,
		validate: validate,
		trans:    trans,
	}
}

// OnNewHead cancels any mining attempt this node currently has in flight.
// Wired as (part of) the chain's broadcast callback so a head adopted from
// a peer or from this node's own miner promptly aborts a now-stale search,
// per the cancel-before-or-with-commit rule.
func (n *Node) OnNewHead(chain.Block) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.cancelMine != nil {
		n.cancelMine()
	}
}

// beginMining registers cancel as the in-flight mining attempt and returns
// a func that clears it again once that attempt completes.
func (n *Node) beginMining(cancel context.CancelFunc) func() {
	n.mu.Lock()
	n.cancelMine = cancel
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		n.cancelMine = nil
		n.mu.Unlock()
	}
}

// ListChain returns a defensive copy of the full block sequence.
func (n *Node) ListChain() []chain.Block {
	return n.chain.ChainSnapshot()
}

// ListPeers returns the remote address of every connected peer session.
func (n *Node) ListPeers() []string {
	if n.gossip == nil {
		return nil
	}
	return n.gossip.Peers()
}

// AddPeer dials url and registers it as a gossip session.
func (n *Node) AddPeer(url string) error {
	if err := n.validate.Var(url, "required,url"); err != nil {
		return errs.New(errs.TransportError, "node: %s", n.translate(err))
	}
	if n.gossip == nil {
		return errs.New(errs.TransportError, "node: no gossip layer configured")
	}
	return n.gossip.Dial(url)
}

// MineBlock builds a coinbase output to this node's wallet plus the
// current mempool snapshot, mines a block extending the head, and
// broadcasts it on success.
func (n *Node) MineBlock(ctx context.Context) (chain.Block, error) {
	return n.mineData(ctx, n.pool.Snapshot())
}

// MineRawBlock mines data verbatim as a block's transaction list. Only
// meaningful if data is itself a valid coinbase-first transaction list;
// chain.AcceptBlock rejects anything else. Exposed for tests and tooling
// that need to assemble a block's contents directly.
func (n *Node) MineRawBlock(ctx context.Context, data []txn.Transaction) (chain.Block, error) {
	return n.mineData(ctx, data)
}

// MineTransaction builds and signs a spend of amount to address, then
// mines it into a block together with a coinbase reward, atomically: the
// transaction never passes through the mempool.
func (n *Node) MineTransaction(ctx context.Context, address string, amount uint64) (chain.Block, error) {
	if err := n.validateSpend(address, amount); err != nil {
		return chain.Block{}, err
	}

	tx, err := n.wallet.Build(address, amount, n.chain.UTXOs(), n.pool)
	if err != nil {
		return chain.Block{}, err
	}

	return n.mineData(ctx, []txn.Transaction{tx})
}

// mineData builds the coinbase for the next block index, prepends it to
// data, and runs the interruptible search.
func (n *Node) mineData(ctx context.Context, data []txn.Transaction) (chain.Block, error) {
	head := n.chain.Latest()

	coinbase := txn.WithID(txn.Transaction{
		TxIns:  []txn.TxIn{{TxOutIndex: uint32(head.Index + 1)}},
		TxOuts: []txn.TxOut{{Address: n.wallet.Address(), Amount: txn.CoinbaseAmount}},
	})

	full := make([]txn.Transaction, 0, len(data)+1)
	full = append(full, coinbase)
	full = append(full, data...)

	mineCtx, cancel := context.WithCancel(ctx)
	done := n.beginMining(cancel)
	defer done()
	defer cancel()

	block, err := n.chain.MineWith(mineCtx, full)
	if err != nil {
		return chain.Block{}, err
	}

	if n.gossip != nil {
		n.gossip.BroadcastLatest(block)
	}

	return block, nil
}

// SendTransaction builds, signs, and admits a spend of amount to address
// into the mempool. It does not mine: the transaction waits for the next
// mined block. It does not broadcast the transaction either: a peer
// receives it only in the RESPONSE_TRANSACTION_POOL reply to a
// QUERY_TRANSACTION_POOL it sends.
func (n *Node) SendTransaction(address string, amount uint64) (txn.Transaction, error) {
	if err := n.validateSpend(address, amount); err != nil {
		return txn.Transaction{}, err
	}

	tx, err := n.wallet.Build(address, amount, n.chain.UTXOs(), n.pool)
	if err != nil {
		return txn.Transaction{}, err
	}

	if err := n.pool.Add(tx, n.chain.UTXOs()); err != nil {
		return txn.Transaction{}, err
	}

	// A new mempool entry propagates through the existing
	// QUERY_TRANSACTION_POOL / RESPONSE_TRANSACTION_POOL exchange;
	// BroadcastLatest only announces new blocks.

	return tx, nil
}

// Balance returns the sum of UTXOs locked to this node's wallet address.
func (n *Node) Balance() uint64 {
	return n.wallet.Balance(n.chain.UTXOs())
}

// Address returns this node's wallet address.
func (n *Node) Address() string {
	return n.wallet.Address()
}

// ListUnspent returns every UTXO in the authoritative set.
func (n *Node) ListUnspent() []txn.UTXO {
	return n.chain.UTXOs().All()
}

// ListMyUnspent returns the UTXOs locked to this node's wallet address.
func (n *Node) ListMyUnspent() []txn.UTXO {
	return n.chain.UTXOs().ByAddress(n.wallet.Address())
}

// ListMempool returns a defensive, insertion-ordered copy of the mempool.
func (n *Node) ListMempool() []txn.Transaction {
	return n.pool.Snapshot()
}

// ListByAddress returns every UTXO locked to address.
func (n *Node) ListByAddress(address string) []txn.UTXO {
	return n.chain.UTXOs().ByAddress(address)
}

// GetBlockByHash returns the block with the given hash.
func (n *Node) GetBlockByHash(hash string) (chain.Block, error) {
	for _, b := range n.chain.ChainSnapshot() {
		if b.Hash == hash {
			return b, nil
		}
	}
	return chain.Block{}, errs.New(errs.StructureInvalid, "node: no block with hash %s", hash)
}

// GetTransactionByID searches the chain, then the mempool, for a
// transaction with the given id.
func (n *Node) GetTransactionByID(id string) (txn.Transaction, error) {
	for _, b := range n.chain.ChainSnapshot() {
		for _, tx := range b.Data {
			if tx.ID == id {
				return tx, nil
			}
		}
	}

	for _, tx := range n.pool.Snapshot() {
		if tx.ID == id {
			return tx, nil
		}
	}

	return txn.Transaction{}, errs.New(errs.StructureInvalid, "node: no transaction with id %s", id)
}

// validateSpend checks the address/amount shape shared by SendTransaction
// and MineTransaction before either builds a transaction against them.
func (n *Node) validateSpend(address string, amount uint64) error {
	if err := n.validate.Var(address, "required,len=130"); err != nil {
		return errs.New(errs.AddressInvalid, "node: %s", n.translate(err))
	}
	if err := n.validate.Var(amount, "required,gt=0"); err != nil {
		return errs.New(errs.StructureInvalid, "node: %s", n.translate(err))
	}
	return nil
}

func (n *Node) translate(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return verrs[0].Translate(n.trans)
	}
	return err.Error()
}
