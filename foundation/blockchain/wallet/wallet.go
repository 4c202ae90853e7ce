// Package wallet builds and signs spend transactions on behalf of a single
// key: select unspent, unreserved outputs, cover the requested amount, and
// return change to the sender.
package wallet

import (
	"crypto/ecdsa"
	"sort"

	"github.com/ardanlabs/povcoin/foundation/blockchain/crypto"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/mempool"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// Wallet owns a private key and builds transactions that spend the coins
// locked to its address.
type Wallet struct {
	priv *ecdsa.PrivateKey
	addr string
}

// New wraps priv as a spendable wallet.
func New(priv *ecdsa.PrivateKey) *Wallet {
	return &Wallet{priv: priv, addr: crypto.Address(priv)}
}

// Address returns the wallet's hex public-key address.
func (w *Wallet) Address() string {
	return w.addr
}

// Balance sums every UTXO in set locked to the wallet's address.
func (w *Wallet) Balance(set *txn.UTXOSet) uint64 {
	var total uint64
	for _, u := range set.ByAddress(w.addr) {
		total += u.Amount
	}
	return total
}

// spendable returns the wallet's UTXOs from set, minus any outpoint already
// referenced by a pending transaction in pool, sorted for deterministic
// selection.
func (w *Wallet) spendable(set *txn.UTXOSet, pool *mempool.Pool) []txn.UTXO {
	reserved := make(map[txn.OutPoint]struct{})
	if pool != nil {
		for _, tx := range pool.Snapshot() {
			for _, in := range tx.TxIns {
				reserved[txn.OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex}] = struct{}{}
			}
		}
	}

	all := set.ByAddress(w.addr)
	out := make([]txn.UTXO, 0, len(all))
	for _, u := range all {
		if _, taken := reserved[u.OutPoint()]; taken {
			continue
		}
		out = append(out, u)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TxOutID != out[j].TxOutID {
			return out[i].TxOutID < out[j].TxOutID
		}
		return out[i].TxOutIndex < out[j].TxOutIndex
	})

	return out
}

// Build selects inputs from set (skipping anything already spent in pool),
// covers amount to receiver, returns any remainder to the wallet's own
// address as a change output, and signs every input. pool may be nil.
func (w *Wallet) Build(receiver string, amount uint64, set *txn.UTXOSet, pool *mempool.Pool) (txn.Transaction, error) {
	if err := crypto.ValidateAddress(receiver); err != nil {
		return txn.Transaction{}, errs.New(errs.AddressInvalid, "wallet: %s", err)
	}
	if amount == 0 {
		return txn.Transaction{}, errs.New(errs.StructureInvalid, "wallet: amount must be greater than zero")
	}

	candidates := w.spendable(set, pool)

	var selected []txn.UTXO
	var total uint64
	for _, u := range candidates {
		selected = append(selected, u)
		total += u.Amount
		if total >= amount {
			break
		}
	}

	if total < amount {
		return txn.Transaction{}, errs.New(errs.InsufficientFunds, "wallet: %s has %d, needs %d", w.addr, total, amount)
	}

	tx := txn.Transaction{
		TxOuts: []txn.TxOut{{Address: receiver, Amount: amount}},
	}
	for _, u := range selected {
		tx.TxIns = append(tx.TxIns, txn.TxIn{TxOutID: u.TxOutID, TxOutIndex: u.TxOutIndex})
	}
	if change := total - amount; change > 0 {
		tx.TxOuts = append(tx.TxOuts, txn.TxOut{Address: w.addr, Amount: change})
	}

	tx = txn.WithID(tx)
	for i := range tx.TxIns {
		if err := txn.SignTxIn(&tx, i, w.priv, set); err != nil {
			return txn.Transaction{}, err
		}
	}

	return tx, nil
}
