package models

// MatchResult is the record of one finished game.
type MatchResult struct {
	ID int64 `json:"id"`
	// StartedAt and EndedAt are unix milliseconds
	StartedAt int64 `json:"started_at"`
	EndedAt   int64 `json:"ended_at"`
	// Winner is the winning participant, empty when nobody won
	Winner       string             `json:"winner,omitempty"`
	WinnerName   string             `json:"winner_name,omitempty"`
	Ticks        int64              `json:"ticks"`
	Participants []MatchParticipant `json:"participants"`
}

type MatchParticipant struct {
	Participant string `json:"participant"`
	Name        string `json:"name,omitempty"`
	Lives       int    `json:"lives"`
	Marker      string `json:"marker"`
}
