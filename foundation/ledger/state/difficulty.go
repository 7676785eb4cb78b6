package state

import "time"

// Bounds for the local difficulty. The ceiling keeps the work solvable
// within the hash space the solver checks.
const (
	minDifficulty = 1
	maxDifficulty = 16
)

// adjustDifficulty retunes the local difficulty after a mined block based on
// how long the work took against the block time target. Each node tunes
// independently, the difficulty is never shared across peers.
func (s *State) adjustDifficulty(mineTime time.Duration) {
	blockTime := time.Duration(s.genesis.BlockTimeMS) * time.Millisecond
	if blockTime == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	difficulty := retuneDifficulty(s.difficulty, mineTime, blockTime)
	if difficulty == s.difficulty {
		return
	}

	s.evHandler("state: adjustDifficulty: difficulty[%d] -> [%d]: mineTime[%v]: target[%v]", s.difficulty, difficulty, mineTime, blockTime)
	s.difficulty = difficulty
}

// retuneDifficulty raises the difficulty when blocks are being solved in
// under half the target time and lowers it when they take more than twice
// the target time.
func retuneDifficulty(difficulty uint32, mineTime time.Duration, blockTime time.Duration) uint32 {
	switch {
	case mineTime < blockTime/2:
		if difficulty < maxDifficulty {
			difficulty++
		}

	case mineTime > blockTime*2:
		if difficulty > minDifficulty {
			difficulty--
		}
	}

	return difficulty
}
