package types

// WinResult is the outcome of a win check.
// A win with a nil winner means the pool was covered or nobody is left online.
type WinResult struct {
	win    bool
	winner Participant
}

func NoResult() WinResult {
	return WinResult{}
}

func Win(winner Participant) WinResult {
	return WinResult{win: true, winner: winner}
}

func (r WinResult) IsWin() bool {
	return r.win
}

// Winner returns the winning participant, if there is an individual winner.
func (r WinResult) Winner() (Participant, bool) {
	if !r.win || r.winner.IsNil() {
		return NilParticipant, false
	}
	return r.winner, true
}
