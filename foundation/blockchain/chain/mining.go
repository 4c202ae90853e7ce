package chain

import (
	"context"

	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// findBlock searches nonces starting at zero until the resulting hash
// satisfies difficulty, returning the solved block. It checks ctx on every
// iteration so a stale mining attempt can be abandoned as soon as a better
// head is adopted elsewhere.
func findBlock(ctx context.Context, index uint64, previousHash string, timestamp uint64, data []txn.Transaction, difficulty uint32) (Block, error) {
	for nonce := uint64(0); ; nonce++ {
		if err := ctx.Err(); err != nil {
			return Block{}, err
		}

		hash, err := computeHash(index, previousHash, timestamp, data, difficulty, nonce)
		if err != nil {
			return Block{}, err
		}

		if hashMeetsDifficulty(hash, difficulty) {
			return Block{
				Index:        index,
				PreviousHash: previousHash,
				Timestamp:    timestamp,
				Data:         data,
				Hash:         hash,
				Difficulty:   difficulty,
				Nonce:        nonce,
			}, nil
		}
	}
}
