package memory

import (
	"github.com/cbodonnell/deacoudre/pkg/game"
	"github.com/cbodonnell/deacoudre/pkg/game/types"
)

// Recorder is a game.Broadcaster that keeps everything it is sent.
type Recorder struct {
	Messages []types.Text
	Sounds   []types.Sound
}

func (r *Recorder) Message(text types.Text) {
	r.Messages = append(r.Messages, text)
}

func (r *Recorder) Sound(sound types.Sound) {
	r.Sounds = append(r.Sounds, sound)
}

func (r *Recorder) Reset() {
	r.Messages = nil
	r.Sounds = nil
}

// Scoreboard keeps the last snapshot it was given.
type Scoreboard struct {
	Last    game.Snapshot
	Updates int
	Closes  int
}

func (s *Scoreboard) Update(snapshot game.Snapshot) {
	s.Last = snapshot
	s.Updates++
}

func (s *Scoreboard) Close() {
	s.Closes++
}

// CloseSignal is a game.Closer that counts close requests.
type CloseSignal struct {
	Requests int
}

func (c *CloseSignal) RequestClose() {
	c.Requests++
}
