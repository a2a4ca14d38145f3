package game

import (
	"math/rand"

	"github.com/cbodonnell/deacoudre/pkg/game/types"
)

// MarkerLedger maps participants to the block written on cells they claim.
type MarkerLedger map[types.Participant]types.BlockState

// DrawMarkers shuffles the candidate blocks and then draws one for each
// participant independently. Two participants may end up with the same
// block; assignment is not a deal without replacement.
func DrawMarkers(rng *rand.Rand, participants []types.Participant, candidates []types.BlockState) MarkerLedger {
	pool := make([]types.BlockState, len(candidates))
	copy(pool, candidates)
	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	m := make(MarkerLedger, len(participants))
	if len(pool) == 0 {
		return m
	}
	for _, p := range participants {
		m[p] = pool[rng.Intn(len(pool))]
	}
	return m
}

func (m MarkerLedger) Get(p types.Participant) (types.BlockState, bool) {
	b, ok := m[p]
	return b, ok
}

func (m MarkerLedger) Remove(p types.Participant) {
	delete(m, p)
}
