package game

import "github.com/cbodonnell/deacoudre/pkg/game/types"

// ParticipantSnapshot is the read-only view of one participant.
type ParticipantSnapshot struct {
	Participant types.Participant `json:"participant"`
	Name        string            `json:"name,omitempty"`
	Lives       int               `json:"lives"`
	Marker      types.BlockState  `json:"marker"`
	Online      bool              `json:"online"`
}

// Snapshot is a copy of the session state for displays and the status API.
type Snapshot struct {
	State        State                 `json:"state"`
	NextJumper   *types.Participant    `json:"next_jumper,omitempty"`
	TurnStarting bool                  `json:"turn_starting"`
	Testing      bool                  `json:"testing"`
	Ticks        int64                 `json:"ticks"`
	Seconds      int64                 `json:"seconds"`
	CloseTime    int64                 `json:"close_time"`
	Finished     bool                  `json:"finished"`
	Winner       *types.Participant    `json:"winner,omitempty"`
	Participants []ParticipantSnapshot `json:"participants"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:        s.state,
		TurnStarting: s.turnStarting,
		Testing:      s.ignoreWinState,
		Ticks:        s.ticks,
		Seconds:      s.seconds,
		CloseTime:    s.closeTime,
		Finished:     s.result.IsWin(),
		Participants: make([]ParticipantSnapshot, 0, s.rotation.Len()),
	}
	if !s.nextJumper.IsNil() {
		jumper := s.nextJumper
		snap.NextJumper = &jumper
	}
	if winner, ok := s.result.Winner(); ok {
		snap.Winner = &winner
	}
	for _, p := range s.rotation.Participants() {
		ps := ParticipantSnapshot{Participant: p}
		ps.Lives, _ = s.lives.Get(p)
		ps.Marker, _ = s.markers.Get(p)
		if e, ok := s.world.Entity(p); ok {
			ps.Name = e.Name()
			ps.Online = true
		}
		snap.Participants = append(snap.Participants, ps)
	}
	return snap
}
