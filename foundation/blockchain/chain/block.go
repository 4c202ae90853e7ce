// Package chain implements the proof-of-work block engine: block
// construction and hashing, the interruptible mining search, structural
// and difficulty validation, chain validation, difficulty retargeting, and
// cumulative-work fork choice.
package chain

import (
	"encoding/hex"
	"encoding/json"
	"math/bits"
	"strconv"

	"github.com/ardanlabs/povcoin/foundation/blockchain/crypto"
	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// Protocol constants.
const (
	BlockGenerationInterval       = 10 // seconds
	DifficultyAdjustmentInterval  = 10 // blocks
	timestampToleranceSeconds     = 60
)

// Block is one link in the chain: an index, a reference to its parent, a
// timestamp, an ordered batch of transactions, the proof-of-work solution,
// and the hash that binds all of the above.
type Block struct {
	Index        uint64            `json:"index"`
	PreviousHash string            `json:"previousHash"`
	Timestamp    uint64            `json:"timestamp"`
	Data         []txn.Transaction `json:"data"`
	Hash         string            `json:"hash"`
	Difficulty   uint32            `json:"difficulty"`
	Nonce        uint64            `json:"nonce"`
}

// computeHash hashes the canonical pre-image of a block: decimal index,
// previousHash, decimal timestamp, data as a JSON array in declared field
// order, decimal difficulty, decimal nonce.
func computeHash(index uint64, previousHash string, timestamp uint64, data []txn.Transaction, difficulty uint32, nonce uint64) (string, error) {
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	preimage := strconv.FormatUint(index, 10) +
		previousHash +
		strconv.FormatUint(timestamp, 10) +
		string(dataJSON) +
		strconv.FormatUint(uint64(difficulty), 10) +
		strconv.FormatUint(nonce, 10)

	return crypto.HashBytes([]byte(preimage)), nil
}

// hashMeetsDifficulty reports whether hash's binary expansion begins with
// at least difficulty zero bits.
func hashMeetsDifficulty(hash string, difficulty uint32) bool {
	if difficulty == 0 {
		return true
	}

	raw, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}

	var zeroBits uint32
	for _, b := range raw {
		if b == 0 {
			zeroBits += 8
			continue
		}
		zeroBits += uint32(bits.LeadingZeros8(b))
		break
	}

	return zeroBits >= difficulty
}

// work returns 2^difficulty, the cumulative-work contribution of a single
// block.
func work(difficulty uint32) uint64 {
	return uint64(1) << difficulty
}

// isValidStructure checks the fields every block must carry regardless of
// position: a hash of the declared length and a non-empty data slice. The
// shape of the transactions themselves, including the leading coinbase, is
// checked by txn.ProcessTransactions, not here.
func isValidStructure(b Block) error {
	if len(b.Hash) != 64 {
		return errs.New(errs.StructureInvalid, "chain: block %d hash has invalid length", b.Index)
	}
	if len(b.Data) == 0 {
		return errs.New(errs.StructureInvalid, "chain: block %d has no transactions", b.Index)
	}
	return nil
}
