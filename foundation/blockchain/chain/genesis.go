package chain

import "github.com/ardanlabs/povcoin/foundation/blockchain/txn"

// zeroHash is the previousHash carried by the genesis block.
const zeroHash = "0000000000000000000000000000000000000000000000000000000000000000"

// genesisAddress is the address credited by the genesis coinbase. It is a
// fixed constant, not a key anyone holds; the genesis coins exist only to
// give the chain a non-empty starting UTXOSet.
const genesisAddress = "04d0dea022d12ecca3a5148b13608a08ec55e046cd0207c67d7a0b001807bf6d1fe7191672f0695d4c2ab6cfa5ea73aa559b6a53195c085e749f77b9b6f0e7b232"

const genesisTimestamp = 1465154705

// Genesis returns the fixed first block of the chain.
func Genesis() Block {
	return genesisBlock()
}

// genesisBlock returns the fixed first block of the chain. Its bytes are a
// build-time constant: same coinbase transaction, same timestamp, same
// zero difficulty and nonce, on every node.
func genesisBlock() Block {
	coinbase := txn.WithID(txn.Transaction{
		TxIns:  []txn.TxIn{{TxOutIndex: 0}},
		TxOuts: []txn.TxOut{{Address: genesisAddress, Amount: txn.CoinbaseAmount}},
	})

	b := Block{
		Index:        0,
		PreviousHash: zeroHash,
		Timestamp:    genesisTimestamp,
		Data:         []txn.Transaction{coinbase},
		Difficulty:   0,
		Nonce:        0,
	}

	hash, err := computeHash(b.Index, b.PreviousHash, b.Timestamp, b.Data, b.Difficulty, b.Nonce)
	if err != nil {
		panic("chain: genesis block failed to hash: " + err.Error())
	}
	b.Hash = hash

	return b
}
