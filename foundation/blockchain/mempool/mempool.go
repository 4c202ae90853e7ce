// Package mempool holds unconfirmed transactions awaiting inclusion in a
// block: an insertion-ordered store that rejects conflicting spends and
// reconciles itself against a new UTXO set after every chain change.
package mempool

import (
	"sync"

	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// Pool is an insertion-ordered set of unconfirmed transactions.
type Pool struct {
	mu  sync.Mutex
	ids []string
	set map[string]txn.Transaction
}

// New constructs an empty mempool.
func New() *Pool {
	return &Pool{
		set: make(map[string]txn.Transaction),
	}
}

// Add validates tx against set and, if none of its inputs conflict with an
// input already in the mempool, appends it in insertion order.
func (p *Pool) Add(tx txn.Transaction, set *txn.UTXOSet) error {
	if err := txn.ValidateTransaction(tx, set); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.set[tx.ID]; exists {
		return nil
	}

	for _, in := range tx.TxIns {
		op := txn.OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex}
		if p.conflicts(op) {
			return errs.New(errs.ConflictInMempool, "mempool: input %s:%d already spent by a pending transaction", op.TxOutID, op.TxOutIndex)
		}
	}

	p.ids = append(p.ids, tx.ID)
	p.set[tx.ID] = tx
	return nil
}

// conflicts reports whether op is already referenced by a pending
// transaction. Caller must hold p.mu.
func (p *Pool) conflicts(op txn.OutPoint) bool {
	for _, tx := range p.set {
		for _, in := range tx.TxIns {
			if in.TxOutID == op.TxOutID && in.TxOutIndex == op.TxOutIndex {
				return true
			}
		}
	}
	return false
}

// Snapshot returns a defensive, insertion-ordered copy of the pool.
func (p *Pool) Snapshot() []txn.Transaction {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]txn.Transaction, 0, len(p.ids))
	for _, id := range p.ids {
		out = append(out, p.set[id])
	}
	return out
}

// Len returns the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.ids)
}

// Remove drops a single transaction, e.g. once it has been mined.
func (p *Pool) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.remove(id)
}

// remove deletes id from both the set and the order slice. Caller must
// hold p.mu.
func (p *Pool) remove(id string) {
	if _, ok := p.set[id]; !ok {
		return
	}
	delete(p.set, id)

	for i, existing := range p.ids {
		if existing == id {
			p.ids = append(p.ids[:i], p.ids[i+1:]...)
			break
		}
	}
}

// Reconcile drops every pending transaction that references a UTXO not
// present in set, preserving the relative order of survivors. Called
// after a chain change (a new block accepted, or a fork-choice replace).
func (p *Pool) Reconcile(set *txn.UTXOSet) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var keep []string
	for _, id := range p.ids {
		tx := p.set[id]

		ok := true
		for _, in := range tx.TxIns {
			if _, present := set.Get(txn.OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex}); !present {
				ok = false
				break
			}
		}

		if ok {
			keep = append(keep, id)
		} else {
			delete(p.set, id)
		}
	}
	p.ids = keep
}
