package txn

import (
	"github.com/ardanlabs/povcoin/foundation/blockchain/crypto"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
)

// ValidateTransaction checks a single non-coinbase transaction against a
// UTXO snapshot: recomputed id matches, every input resolves to an unspent
// UTXO whose signature verifies, and inputs sum to outputs.
func ValidateTransaction(tx Transaction, set *UTXOSet) error {
	if ComputeID(tx) != tx.ID {
		return errs.New(errs.TransactionIDMismatch, "txn: id mismatch for tx %s", tx.ID)
	}

	var inputTotal uint64
	for _, in := range tx.TxIns {
		utxo, ok := set.Get(OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex})
		if !ok {
			return errs.New(errs.UTXOMissing, "txn: tx %s references unknown utxo %s:%d", tx.ID, in.TxOutID, in.TxOutIndex)
		}

		if err := crypto.Verify([]byte(tx.ID), in.Signature, utxo.Address); err != nil {
			return errs.New(errs.SignatureInvalid, "txn: tx %s input %s:%d: %s", tx.ID, in.TxOutID, in.TxOutIndex, err)
		}

		inputTotal += utxo.Amount
	}

	var outputTotal uint64
	for _, out := range tx.TxOuts {
		if err := crypto.ValidateAddress(out.Address); err != nil {
			return errs.New(errs.AddressInvalid, "txn: tx %s: %s", tx.ID, err)
		}
		outputTotal += out.Amount
	}

	if inputTotal != outputTotal {
		return errs.New(errs.AmountsUnbalanced, "txn: tx %s: inputs %d != outputs %d", tx.ID, inputTotal, outputTotal)
	}

	return nil
}

// ValidateCoinbase checks the coinbase shape: one empty-reference,
// empty-signature input whose index equals blockIndex, and one output of
// exactly CoinbaseAmount.
func ValidateCoinbase(tx Transaction, blockIndex uint64) error {
	if ComputeID(tx) != tx.ID {
		return errs.New(errs.TransactionIDMismatch, "txn: coinbase id mismatch for tx %s", tx.ID)
	}

	if len(tx.TxIns) != 1 {
		return errs.New(errs.CoinbaseInvalid, "txn: coinbase must have exactly one input")
	}

	in := tx.TxIns[0]
	if in.Signature != "" || in.TxOutID != "" {
		return errs.New(errs.CoinbaseInvalid, "txn: coinbase input must be empty")
	}
	if uint64(in.TxOutIndex) != blockIndex {
		return errs.New(errs.CoinbaseInvalid, "txn: coinbase input index %d != block index %d", in.TxOutIndex, blockIndex)
	}

	if len(tx.TxOuts) != 1 {
		return errs.New(errs.CoinbaseInvalid, "txn: coinbase must have exactly one output")
	}
	if tx.TxOuts[0].Amount != CoinbaseAmount {
		return errs.New(errs.CoinbaseInvalid, "txn: coinbase amount %d != %d", tx.TxOuts[0].Amount, CoinbaseAmount)
	}
	if err := crypto.ValidateAddress(tx.TxOuts[0].Address); err != nil {
		return errs.New(errs.AddressInvalid, "txn: coinbase: %s", err)
	}

	return nil
}

// ValidateBlockTransactions checks the full set of transactions for one
// block: the first is a valid coinbase, no two inputs across the block
// reference the same UTXO, and every remaining transaction validates
// against set.
func ValidateBlockTransactions(txs []Transaction, blockIndex uint64, set *UTXOSet) error {
	if len(txs) == 0 {
		return errs.New(errs.StructureInvalid, "txn: block has no transactions")
	}

	if err := ValidateCoinbase(txs[0], blockIndex); err != nil {
		return err
	}

	seen := make(map[OutPoint]struct{})
	for _, tx := range txs {
		for _, in := range tx.TxIns {
			if in.TxOutID == "" && in.Signature == "" {
				continue
			}
			op := OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex}
			if _, dup := seen[op]; dup {
				return errs.New(errs.DuplicateInputsInBlock, "txn: duplicate input %s:%d in block", op.TxOutID, op.TxOutIndex)
			}
			seen[op] = struct{}{}
		}
	}

	for _, tx := range txs[1:] {
		if IsCoinbase(tx) {
			return errs.New(errs.CoinbaseInvalid, "txn: only the first transaction may be a coinbase")
		}
		if err := ValidateTransaction(tx, set); err != nil {
			return err
		}
	}

	return nil
}

// ProcessTransactions validates txs against set and, on success, returns
// the post-block UTXO set: consumed outpoints removed, new outputs added.
// set itself is left untouched.
func ProcessTransactions(txs []Transaction, blockIndex uint64, set *UTXOSet) (*UTXOSet, error) {
	if err := ValidateBlockTransactions(txs, blockIndex, set); err != nil {
		return nil, err
	}

	next := set.Copy()

	var consumed []OutPoint
	var created []UTXO
	for _, tx := range txs {
		for _, in := range tx.TxIns {
			if in.TxOutID == "" && in.Signature == "" {
				continue
			}
			consumed = append(consumed, OutPoint{TxOutID: in.TxOutID, TxOutIndex: in.TxOutIndex})
		}
		for i, out := range tx.TxOuts {
			created = append(created, UTXO{
				TxOutID:    tx.ID,
				TxOutIndex: uint32(i),
				Address:    out.Address,
				Amount:     out.Amount,
			})
		}
	}

	next.apply(consumed, created)
	return next, nil
}
