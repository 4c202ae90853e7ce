package chain

import "testing"

// Success and failure markers.
const (
	diffSuccess = "✓"
	diffFailed  = "✗"
)

// buildDifficultyChain returns a chain slice of n blocks, index 0..n-1, with
// the given per-index timestamp and difficulty. It exists only to drive
// nextDifficulty directly; no other Block field is populated.
func buildDifficultyChain(n int, ts, diff func(i int) uint64) []Block {
	cs := make([]Block, n)
	for i := range cs {
		cs[i] = Block{
			Index:      uint64(i),
			Timestamp:  ts(i),
			Difficulty: uint32(diff(i)),
		}
	}
	return cs
}

func TestNextDifficulty(t *testing.T) {
	t.Log("Given the need to retarget difficulty every DifficultyAdjustmentInterval blocks.")
	{
		tests := []struct {
			name string
			cs   []Block
			want uint32
		}{
			{
				name: "genesis never retargets",
				cs:   buildDifficultyChain(1, func(i int) uint64 { return 0 }, func(i int) uint64 { return 9 }),
				want: 9,
			},
			{
				name: "non-boundary index carries the latest difficulty forward",
				cs: buildDifficultyChain(6,
					func(i int) uint64 { return uint64(i) * expectedInterval },
					func(i int) uint64 { return 3 },
				),
				want: 3,
			},
			{
				name: "fast window raises difficulty",
				cs: buildDifficultyChain(DifficultyAdjustmentInterval+1,
					func(i int) uint64 {
						if i == 0 {
							return 1000
						}
						if i == DifficultyAdjustmentInterval {
							return 1000 + expectedInterval/4
						}
						return 1000
					},
					func(i int) uint64 {
						if i == 0 {
							return 2
						}
						return 0
					},
				),
				want: 3,
			},
			{
				name: "slow window lowers difficulty",
				cs: buildDifficultyChain(DifficultyAdjustmentInterval+1,
					func(i int) uint64 {
						if i == 0 {
							return 1000
						}
						if i == DifficultyAdjustmentInterval {
							return 1000 + expectedInterval*4
						}
						return 1000
					},
					func(i int) uint64 {
						if i == 0 {
							return 5
						}
						return 0
					},
				),
				want: 4,
			},
			{
				name: "slow window floors at zero instead of underflowing a uint32",
				cs: buildDifficultyChain(DifficultyAdjustmentInterval+1,
					func(i int) uint64 {
						if i == 0 {
							return 1000
						}
						if i == DifficultyAdjustmentInterval {
							return 1000 + expectedInterval*4
						}
						return 1000
					},
					func(i int) uint64 { return 0 },
				),
				want: 0,
			},
			{
				name: "on-target window keeps the prior difficulty",
				cs: buildDifficultyChain(DifficultyAdjustmentInterval+1,
					func(i int) uint64 {
						if i == 0 {
							return 1000
						}
						if i == DifficultyAdjustmentInterval {
							return 1000 + expectedInterval
						}
						return 1000
					},
					func(i int) uint64 {
						if i == 0 {
							return 6
						}
						return 0
					},
				),
				want: 6,
			},
			{
				name: "second window retargets off index-10, not index-0",
				cs: buildDifficultyChain(2*DifficultyAdjustmentInterval+1,
					func(i int) uint64 {
						switch i {
						case 0:
							return 0
						case DifficultyAdjustmentInterval:
							return 1_000_000
						case 2 * DifficultyAdjustmentInterval:
							return 1_000_000 + expectedInterval/4
						default:
							return 0
						}
					},
					func(i int) uint64 {
						switch i {
						case 0:
							return 9
						case DifficultyAdjustmentInterval:
							return 2
						default:
							return 0
						}
					},
				),
				want: 3,
			},
		}

		for _, tt := range tests {
			t.Logf("\tTest %s", tt.name)
			got := nextDifficulty(tt.cs)
			if got != tt.want {
				t.Fatalf("\t%s\t%s : got difficulty %d, want %d", diffFailed, tt.name, got, tt.want)
			}
			t.Logf("\t%s\t%s.", diffSuccess, tt.name)
		}
	}
}

// TestNextDifficultyIsStatelessPerCall proves retargeting always reads the
// chain slice it is given rather than a package-level variable: calling it
// back-to-back on two unrelated chains must not let either call's answer
// leak into the other.
func TestNextDifficultyIsStatelessPerCall(t *testing.T) {
	t.Log("Given the need for retargeting to depend only on the chain under examination.")
	{
		fastChain := buildDifficultyChain(DifficultyAdjustmentInterval+1,
			func(i int) uint64 {
				if i == DifficultyAdjustmentInterval {
					return expectedInterval / 4
				}
				return 0
			},
			func(i int) uint64 { return 0 },
		)

		slowChain := buildDifficultyChain(DifficultyAdjustmentInterval+1,
			func(i int) uint64 {
				if i == DifficultyAdjustmentInterval {
					return expectedInterval * 4
				}
				return 0
			},
			func(i int) uint64 { return 3 },
		)

		if got := nextDifficulty(fastChain); got != 1 {
			t.Fatalf("\t%s\tshould raise difficulty on the fast chain : got %d", diffFailed, got)
		}
		if got := nextDifficulty(slowChain); got != 2 {
			t.Fatalf("\t%s\tshould lower difficulty on the slow chain, unaffected by the prior call : got %d", diffFailed, got)
		}
		if got := nextDifficulty(fastChain); got != 1 {
			t.Fatalf("\t%s\tshould still raise difficulty on the fast chain after examining the slow one : got %d", diffFailed, got)
		}
		t.Logf("\t%s\tshould answer each call from its own chain slice alone.", diffSuccess)
	}
}
