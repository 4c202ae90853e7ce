package chain

import (
	"reflect"
	"time"

	"github.com/ardanlabs/povcoin/foundation/blockchain/errs"
	"github.com/ardanlabs/povcoin/foundation/blockchain/txn"
)

// isValidNewBlock checks n against its declared predecessor p: structure,
// index/parent linkage, timestamp tolerance, and proof-of-work.
func isValidNewBlock(n, p Block) error {
	if err := isValidStructure(n); err != nil {
		return err
	}

	if n.Index != p.Index+1 {
		return errs.New(errs.IndexMismatch, "chain: block index %d does not follow %d", n.Index, p.Index)
	}

	if n.PreviousHash != p.Hash {
		return errs.New(errs.PrevHashMismatch, "chain: block %d previousHash %s != parent hash %s", n.Index, n.PreviousHash, p.Hash)
	}

	now := uint64(time.Now().Unix())
	if !withinTolerance(p.Timestamp, n.Timestamp) || !withinTolerance(n.Timestamp, now) {
		return errs.New(errs.TimestampOutOfRange, "chain: block %d timestamp %d out of tolerance of parent %d / now %d", n.Index, n.Timestamp, p.Timestamp, now)
	}

	hash, err := computeHash(n.Index, n.PreviousHash, n.Timestamp, n.Data, n.Difficulty, n.Nonce)
	if err != nil {
		return errs.Wrap(errs.StructureInvalid, err)
	}
	if hash != n.Hash {
		return errs.New(errs.HashMismatch, "chain: block %d recomputed hash %s != declared %s", n.Index, hash, n.Hash)
	}

	if !hashMeetsDifficulty(n.Hash, n.Difficulty) {
		return errs.New(errs.DifficultyNotMet, "chain: block %d hash %s does not meet difficulty %d", n.Index, n.Hash, n.Difficulty)
	}

	return nil
}

// withinTolerance reports whether b is later than a minus
// timestampToleranceSeconds, per the spec's `a - 60 < b` predicate expressed
// without risking unsigned underflow. The check is one-sided: any b at or
// after a passes, however far ahead of a it is.
func withinTolerance(a, b uint64) bool {
	if a > b {
		return a-b < timestampToleranceSeconds
	}
	return true
}

// isValidChain checks that cs starts at the fixed genesis block and that
// every subsequent block validates against its predecessor and folds
// cleanly through processTransactions. It returns the resulting UTXOSet.
func isValidChain(cs []Block) (*txn.UTXOSet, error) {
	if len(cs) == 0 {
		return nil, errs.New(errs.StructureInvalid, "chain: empty candidate chain")
	}

	genesis := genesisBlock()
	if !reflect.DeepEqual(cs[0], genesis) {
		return nil, errs.New(errs.StructureInvalid, "chain: candidate chain does not start at genesis")
	}

	set := txn.NewUTXOSet()
	for i, b := range cs {
		if i > 0 {
			if err := isValidNewBlock(b, cs[i-1]); err != nil {
				return nil, err
			}
		}

		next, err := txn.ProcessTransactions(b.Data, b.Index, set)
		if err != nil {
			return nil, err
		}
		set = next
	}

	return set, nil
}

// totalWork returns the cumulative proof-of-work, Σ 2^difficulty, of cs.
func totalWork(cs []Block) uint64 {
	var total uint64
	for _, b := range cs {
		total += work(b.Difficulty)
	}
	return total
}
