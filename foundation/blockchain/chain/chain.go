package chain

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/povcoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// ErrNoBlock is returned by MineWith when the solved block no longer
// extends the current head by the time mining completes: some other block
// was accepted first, and the result is discarded.
var ErrNoBlock = errors.New("chain: mined block no longer extends the head")

// Chain owns the block sequence and the authoritative UTXOSet. All
// mutating methods serialize through mu, the single mutation lane for
// this node's ledger state.
type Chain struct {
	mu     sync.Mutex
	blocks []Block
	utxos  *txn.UTXOSet

	pool      *mempool.Pool
	broadcast func(Block)
}

// New constructs a chain seeded with the fixed genesis block, processes its
// coinbase into the UTXOSet, and wires pool for post-accept reconciliation
// and broadcast for announcing new heads. broadcast may be nil.
func New(pool *mempool.Pool, broadcast func(Block)) *Chain {
	genesis := genesisBlock()

	utxos, err := txn.ProcessTransactions(genesis.Data, genesis.Index, txn.NewUTXOSet())
	if err != nil {
		panic("chain: genesis block failed to process: " + err.Error())
	}

	if broadcast == nil {
		broadcast = func(Block) {}
	}

	return &Chain{
		blocks:    []Block{genesis},
		utxos:     utxos,
		pool:      pool,
		broadcast: broadcast,
	}
}

// Latest returns a copy of the head block.
func (c *Chain) Latest() Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.blocks[len(c.blocks)-1]
}

// ChainSnapshot returns a defensive copy of the full chain.
func (c *Chain) ChainSnapshot() []Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// UTXOs returns a defensive copy of the authoritative UTXOSet.
func (c *Chain) UTXOs() *txn.UTXOSet {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.utxos.Copy()
}

// MineWith searches for the next block containing data, off the mutation
// lane, then attempts to accept it. ctx governs cancellation: callers
// should cancel it as soon as a new head is adopted from elsewhere so a
// stale search is abandoned promptly. Returns ErrNoBlock if the solved
// block no longer extends the head once mining completes.
func (c *Chain) MineWith(ctx context.Context, data []txn.Transaction) (Block, error) {
	c.mu.Lock()
	head := c.blocks[len(c.blocks)-1]
	difficulty := nextDifficulty(c.blocks)
	c.mu.Unlock()

	timestamp := uint64(time.Now().Unix())

	block, err := findBlock(ctx, head.Index+1, head.Hash, timestamp, data, difficulty)
	if err != nil {
		return Block{}, err
	}

	if err := c.AcceptBlock(block); err != nil {
		if c.Latest().Hash != head.Hash {
			return Block{}, ErrNoBlock
		}
		return Block{}, err
	}

	return block, nil
}

// AcceptBlock validates b against the current head and, if it extends it
// cleanly, appends it, commits the resulting UTXOSet, reconciles the
// mempool, and broadcasts the new head.
func (c *Chain) AcceptBlock(b Block) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	latest := c.blocks[len(c.blocks)-1]
	if err := isValidNewBlock(b, latest); err != nil {
		return err
	}

	next, err := txn.ProcessTransactions(b.Data, b.Index, c.utxos)
	if err != nil {
		return err
	}

	c.blocks = append(c.blocks, b)
	c.utxos = next
	if c.pool != nil {
		c.pool.Reconcile(next)
	}
	c.broadcast(b)

	return nil
}

// ReplaceChain runs fork choice: if candidate validates and carries
// strictly greater cumulative work than the current chain, it replaces it
// wholesale, adopts the recomputed UTXOSet, reconciles the mempool, and
// broadcasts the new head. Ties keep the current chain.
func (c *Chain) ReplaceChain(candidate []Block) (bool, error) {
	next, err := isValidChain(candidate)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if totalWork(candidate) <= totalWork(c.blocks) {
		return false, nil
	}

	c.blocks = append([]Block(nil), candidate...)
	c.utxos = next
	if c.pool != nil {
		c.pool.Reconcile(next)
	}
	c.broadcast(c.blocks[len(c.blocks)-1])

	return true, nil
}
