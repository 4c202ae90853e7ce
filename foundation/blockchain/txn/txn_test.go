package txn_test

import (
	"crypto/ecdsa"
	"testing"

	"github.com/ardanlabs/povcoin/foundation/blockchain/crypto"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func newKey(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("\t%s\tshould be able to generate a key : %s", failed, err)
	}
	return priv, crypto.Address(priv)
}

func coinbase(t *testing.T, blockIndex uint64, to string) txn.Transaction {
	t.Helper()
	tx := txn.Transaction{
		TxIns:  []txn.TxIn{{TxOutIndex: uint32(blockIndex)}},
		TxOuts: []txn.TxOut{{Address: to, Amount: txn.CoinbaseAmount}},
	}
	return txn.WithID(tx)
}

func TestComputeIDExcludesSignature(t *testing.T) {
	t.Log("Given the need for a transaction id independent of its signatures.")
	{
		_, addr := newKey(t)
		tx := txn.Transaction{
			TxIns:  []txn.TxIn{{TxOutID: "abc", TxOutIndex: 0}},
			TxOuts: []txn.TxOut{{Address: addr, Amount: 10}},
		}

		id1 := txn.ComputeID(tx)
		tx.TxIns[0].Signature = "deadbeef"
		id2 := txn.ComputeID(tx)

		if id1 != id2 {
			t.Fatalf("\t%s\tshould compute the same id regardless of signature : %s != %s", failed, id1, id2)
		}
		t.Logf("\t%s\tshould compute the same id regardless of signature.", success)
	}
}

func TestCoinbaseValidation(t *testing.T) {
	t.Log("Given the need to validate a coinbase transaction.")
	{
		_, addr := newKey(t)
		tx := coinbase(t, 1, addr)

		if err := txn.ValidateCoinbase(tx, 1); err != nil {
			t.Fatalf("\t%s\tshould accept a well formed coinbase : %s", failed, err)
		}
		t.Logf("\t%s\tshould accept a well formed coinbase.", success)

		if err := txn.ValidateCoinbase(tx, 2); err == nil {
			t.Fatalf("\t%s\tshould reject a coinbase whose index does not match the block", failed)
		}
		t.Logf("\t%s\tshould reject a coinbase whose index does not match the block.", success)

		bad := tx
		bad.TxOuts = []txn.TxOut{{Address: addr, Amount: 999}}
		bad = txn.WithID(bad)
		if err := txn.ValidateCoinbase(bad, 1); !errs.Is(err, errs.CoinbaseInvalid) {
			t.Fatalf("\t%s\tshould reject a coinbase with the wrong reward amount : %v", failed, err)
		}
		t.Logf("\t%s\tshould reject a coinbase with the wrong reward amount.", success)
	}
}

func TestProcessTransactionsAndValidate(t *testing.T) {
	t.Log("Given the need to process a block of transactions against a UTXO set.")
	{
		minerKey, minerAddr := newKey(t)
		recvKey, recvAddr := newKey(t)

		set := txn.NewUTXOSet()

		cb := coinbase(t, 1, minerAddr)
		next, err := txn.ProcessTransactions([]txn.Transaction{cb}, 1, set)
		if err != nil {
			t.Fatalf("\t%s\tshould process a block with only a coinbase : %s", failed, err)
		}
		t.Logf("\t%s\tshould process a block with only a coinbase.", success)

		if next.Len() != 1 {
			t.Fatalf("\t%s\tshould leave exactly one utxo behind : got %d", failed, next.Len())
		}
		t.Logf("\t%s\tshould leave exactly one utxo behind.", success)

		spend := txn.Transaction{
			TxIns:  []txn.TxIn{{TxOutID: cb.ID, TxOutIndex: 0}},
			TxOuts: []txn.TxOut{{Address: recvAddr, Amount: 20}, {Address: minerAddr, Amount: 30}},
		}
		spend = txn.WithID(spend)
		if err := txn.SignTxIn(&spend, 0, minerKey, next); err != nil {
			t.Fatalf("\t%s\tshould be able to sign the spend : %s", failed, err)
		}
		t.Logf("\t%s\tshould be able to sign the spend.", success)

		if err := txn.ValidateTransaction(spend, next); err != nil {
			t.Fatalf("\t%s\tshould accept a balanced, signed transaction : %s", failed, err)
		}
		t.Logf("\t%s\tshould accept a balanced, signed transaction.", success)

		cb2 := coinbase(t, 2, minerAddr)
		final, err := txn.ProcessTransactions([]txn.Transaction{cb2, spend}, 2, next)
		if err != nil {
			t.Fatalf("\t%s\tshould process a block spending the prior coinbase : %s", failed, err)
		}
		t.Logf("\t%s\tshould process a block spending the prior coinbase.", success)

		if got := len(final.ByAddress(recvAddr)); got != 1 {
			t.Fatalf("\t%s\tshould credit the receiver with one utxo : got %d", failed, got)
		}
		t.Logf("\t%s\tshould credit the receiver with one utxo.", success)

		_, consumed := final.Get(txn.OutPoint{TxOutID: cb.ID, TxOutIndex: 0})
		if consumed {
			t.Fatalf("\t%s\tshould remove the consumed utxo", failed)
		}
		t.Logf("\t%s\tshould remove the consumed utxo.", success)

		_ = recvKey
	}
}

func TestAmountsUnbalancedRejected(t *testing.T) {
	t.Log("Given the need to reject a transaction whose outputs exceed its inputs.")
	{
		minerKey, minerAddr := newKey(t)
		_, recvAddr := newKey(t)

		set := txn.NewUTXOSet()
		cb := coinbase(t, 1, minerAddr)
		next, err := txn.ProcessTransactions([]txn.Transaction{cb}, 1, set)
		if err != nil {
			t.Fatalf("\t%s\tshould process the coinbase block : %s", failed, err)
		}

		overspend := txn.Transaction{
			TxIns:  []txn.TxIn{{TxOutID: cb.ID, TxOutIndex: 0}},
			TxOuts: []txn.TxOut{{Address: recvAddr, Amount: 60}},
		}
		overspend = txn.WithID(overspend)
		if err := txn.SignTxIn(&overspend, 0, minerKey, next); err != nil {
			t.Fatalf("\t%s\tshould be able to sign the overspend : %s", failed, err)
		}

		err = txn.ValidateTransaction(overspend, next)
		if !errs.Is(err, errs.AmountsUnbalanced) {
			t.Fatalf("\t%s\tshould reject with AmountsUnbalanced : got %v", failed, err)
		}
		t.Logf("\t%s\tshould reject with AmountsUnbalanced.", success)
	}
}

func TestDuplicateInputsInBlockRejected(t *testing.T) {
	t.Log("Given the need to reject a block that double spends a utxo.")
	{
		minerKey, minerAddr := newKey(t)
		_, recvAddr := newKey(t)

		set := txn.NewUTXOSet()
		cb := coinbase(t, 1, minerAddr)
		next, _ := txn.ProcessTransactions([]txn.Transaction{cb}, 1, set)

		mk := func() txn.Transaction {
			tx := txn.Transaction{
				TxIns:  []txn.TxIn{{TxOutID: cb.ID, TxOutIndex: 0}},
				TxOuts: []txn.TxOut{{Address: recvAddr, Amount: 50}},
			}
			tx = txn.WithID(tx)
			if err := txn.SignTxIn(&tx, 0, minerKey, next); err != nil {
				t.Fatalf("\t%s\tshould be able to sign : %s", failed, err)
			}
			return tx
		}

		tx1, tx2 := mk(), mk()
		cb2 := coinbase(t, 2, minerAddr)

		_, err := txn.ProcessTransactions([]txn.Transaction{cb2, tx1, tx2}, 2, next)
		if !errs.Is(err, errs.DuplicateInputsInBlock) {
			t.Fatalf("\t%s\tshould reject with DuplicateInputsInBlock : got %v", failed, err)
		}
		t.Logf("\t%s\tshould reject with DuplicateInputsInBlock.", success)
	}
}
