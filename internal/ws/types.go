package ws

// Control messages written by the server alongside domain events.
const (
	MsgReady = "ready"
	MsgPong  = "pong"

	// client - server
	MsgPing = "ping"
)
