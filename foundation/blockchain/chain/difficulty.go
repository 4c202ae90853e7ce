package chain

// expectedInterval is the target time, in seconds, for one difficulty
// adjustment window: BlockGenerationInterval seconds per block times
// DifficultyAdjustmentInterval blocks.
const expectedInterval = BlockGenerationInterval * DifficultyAdjustmentInterval

// nextDifficulty computes the difficulty the next block mined on top of cs
// must satisfy. cs is always the chain being examined (never a
// package-level variable), so the same logic is correct whether cs is the
// local chain or a candidate received from a peer.
func nextDifficulty(cs []Block) uint32 {
	latest := cs[len(cs)-1]

	if latest.Index == 0 || latest.Index%DifficultyAdjustmentInterval != 0 {
		return latest.Difficulty
	}

	prev := cs[latest.Index-DifficultyAdjustmentInterval]
	taken := latest.Timestamp - prev.Timestamp

	switch {
	case taken < expectedInterval/2:
		return prev.Difficulty + 1
	case taken > expectedInterval*2:
		if prev.Difficulty == 0 {
			return 0
		}
		return prev.Difficulty - 1
	default:
		return prev.Difficulty
	}
}
