package types

// ConnectPlayerEvent is queued when a client joins as a player.
type ConnectPlayerEvent struct {
	ClientID    uint32
	Participant Participant
	Name        string
}

// DisconnectPlayerEvent is queued when a player's connection goes away.
type DisconnectPlayerEvent struct {
	ClientID    uint32
	Participant Participant
}
