package game

import (
	"slices"

	"github.com/cbodonnell/deacoudre/pkg/game/types"
)

type RotationOutcome uint8

const (
	// RotationAdvanced means a different participant was chosen.
	RotationAdvanced RotationOutcome = iota
	// RotationRepeated means the holder was chosen again, which is only
	// legal in single participant testing mode.
	RotationRepeated
	// RotationInconsistent means no valid next participant exists.
	RotationInconsistent
)

func (o RotationOutcome) String() string {
	switch o {
	case RotationAdvanced:
		return "advanced"
	case RotationRepeated:
		return "repeated"
	case RotationInconsistent:
		return "inconsistent"
	default:
		return "unknown"
	}
}

type RotationResult struct {
	Next    types.Participant
	Outcome RotationOutcome
}

// Rotation is the insertion-ordered turn order of the active participants.
type Rotation struct {
	order []types.Participant
}

func NewRotation(participants []types.Participant) *Rotation {
	return &Rotation{order: slices.Clone(participants)}
}

func (r *Rotation) Len() int {
	return len(r.order)
}

func (r *Rotation) Contains(p types.Participant) bool {
	return slices.Contains(r.order, p)
}

// Participants returns a copy of the turn order.
func (r *Rotation) Participants() []types.Participant {
	return slices.Clone(r.order)
}

// Remove drops p from the order, keeping the relative order of the rest.
func (r *Rotation) Remove(p types.Participant) bool {
	i := slices.Index(r.order, p)
	if i < 0 {
		return false
	}
	r.order = slices.Delete(r.order, i, i+1)
	return true
}

// Next picks the participant after current, wrapping to the front.
// A current that is no longer in the order yields the first participant.
func (r *Rotation) Next(current types.Participant, testing bool) RotationResult {
	if len(r.order) == 0 {
		return RotationResult{Next: types.NilParticipant, Outcome: RotationInconsistent}
	}

	next := r.order[0]
	if i := slices.Index(r.order, current); i >= 0 {
		next = r.order[(i+1)%len(r.order)]
	}

	if next != current {
		return RotationResult{Next: next, Outcome: RotationAdvanced}
	}
	if testing {
		return RotationResult{Next: next, Outcome: RotationRepeated}
	}
	return RotationResult{Next: types.NilParticipant, Outcome: RotationInconsistent}
}
