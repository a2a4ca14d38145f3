package game

import "github.com/cbodonnell/deacoudre/pkg/game/types"

// LifeLedger maps participants to their remaining lives.
type LifeLedger map[types.Participant]int

func NewLifeLedger(participants []types.Participant, life int) LifeLedger {
	l := make(LifeLedger, len(participants))
	for _, p := range participants {
		l[p] = life
	}
	return l
}

// Get returns the lives of p and whether p is in the ledger.
func (l LifeLedger) Get(p types.Participant) (int, bool) {
	lives, ok := l[p]
	return lives, ok
}

// Add changes the lives of p by delta and returns the new total.
// Unknown participants are left untouched.
func (l LifeLedger) Add(p types.Participant, delta int) int {
	lives, ok := l[p]
	if !ok {
		return 0
	}
	lives += delta
	if lives < 0 {
		lives = 0
	}
	l[p] = lives
	return lives
}

func (l LifeLedger) Remove(p types.Participant) {
	delete(l, p)
}
