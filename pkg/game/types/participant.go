package types

import "github.com/google/uuid"

// Participant identifies a player for the lifetime of a session.
// It is an identity, not a live connection: a participant that goes offline
// and reconnects keeps the same value.
type Participant uuid.UUID

// NilParticipant is the zero participant and stands for "nobody".
var NilParticipant = Participant(uuid.Nil)

func NewParticipant() Participant {
	return Participant(uuid.New())
}

// ParseParticipant parses the canonical uuid form of a participant.
func ParseParticipant(s string) (Participant, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return NilParticipant, err
	}
	return Participant(id), nil
}

func (p Participant) IsNil() bool {
	return p == NilParticipant
}

func (p Participant) String() string {
	return uuid.UUID(p).String()
}

func (p Participant) MarshalText() ([]byte, error) {
	return uuid.UUID(p).MarshalText()
}

func (p *Participant) UnmarshalText(data []byte) error {
	return (*uuid.UUID)(p).UnmarshalText(data)
}
