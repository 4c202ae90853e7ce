// Package txn implements the UTXO transaction engine: transaction and
// UTXO types, id computation, signing support, structural and semantic
// validation against a UTXO snapshot, coinbase rules, and the UTXO-set
// fold that advances the ledger one block at a time.
package txn

import (
	"crypto/ecdsa"
	"fmt"
	"strconv"

	"github.com/ardanlabs/povcoin/foundation/blockchain/crypto"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
)

// CoinbaseAmount is the fixed block reward, constant per spec.
const CoinbaseAmount uint64 = 50

// TxIn references the UTXO being spent. Signature is empty for coinbase.
type TxIn struct {
	TxOutID    string `json:"txOutId"`
	TxOutIndex uint32 `json:"txOutIndex"`
	Signature  string `json:"signature"`
}

// TxOut locks coins to an address (the hex, uncompressed public key of
// whoever can spend them).
type TxOut struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

// Transaction is a signed set of inputs consuming prior outputs and a set
// of outputs creating new spendable coins.
type Transaction struct {
	ID     string  `json:"id"`
	TxIns  []TxIn  `json:"txIns"`
	TxOuts []TxOut `json:"txOuts"`
}

// OutPoint identifies a UTXO by the transaction and output index that
// produced it.
type OutPoint struct {
	TxOutID    string
	TxOutIndex uint32
}

// ComputeID hashes the transaction's input references and outputs,
// deliberately excluding signatures so that signing can bind to this id.
func ComputeID(tx Transaction) string {
	var preimage []byte
	for _, in := range tx.TxIns {
		preimage = append(preimage, in.TxOutID...)
		preimage = append(preimage, strconv.FormatUint(uint64(in.TxOutIndex), 10)...)
	}
	for _, out := range tx.TxOuts {
		preimage = append(preimage, out.Address...)
		preimage = append(preimage, strconv.FormatUint(out.Amount, 10)...)
	}

	return crypto.HashBytes(preimage)
}

// WithID returns a copy of tx with its ID field set from ComputeID.
func WithID(tx Transaction) Transaction {
	tx.ID = ComputeID(tx)
	return tx
}

// SignTxIn locates the UTXO referenced by tx.TxIns[index], requires that
// priv's public key matches its address, and signs tx.ID with priv,
// writing the hex DER signature into tx.TxIns[index].Signature.
func SignTxIn(tx *Transaction, index int, priv *ecdsa.PrivateKey, set *UTXOSet) error {
	if index < 0 || index >= len(tx.TxIns) {
		return errs.New(errs.StructureInvalid, "txn: signing index %d out of range", index)
	}

	in := tx.TxIns[index]
	utxo, ok := set.Get(OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex})
	if !ok {
		return errs.New(errs.UTXOMissing, "txn: no utxo for %s:%d", in.TxOutID, in.TxOutIndex)
	}

	if crypto.Address(priv) != utxo.Address {
		return errs.New(errs.SignatureInvalid, "txn: private key does not own utxo %s:%d", in.TxOutID, in.TxOutIndex)
	}

	sig, err := crypto.Sign([]byte(tx.ID), priv)
	if err != nil {
		return fmt.Errorf("txn: sign: %w", err)
	}

	tx.TxIns[index].Signature = sig
	return nil
}

// IsCoinbase reports whether tx has the single-input, empty-reference,
// empty-signature shape of a coinbase transaction. It does not validate
// the transaction; use ValidateCoinbase for that.
func IsCoinbase(tx Transaction) bool {
	return len(tx.TxIns) == 1 && tx.TxIns[0].TxOutID == "" && tx.TxIns[0].Signature == ""
}
