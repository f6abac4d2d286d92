package domain

// EventType names a change pushed to a user's live connections.
type EventType string

const (
	EventListCreated EventType = "list_created"
	EventListDeleted EventType = "list_deleted"
	EventTaskCreated EventType = "task_created"
	EventTaskUpdated EventType = "task_updated"
	EventTaskDeleted EventType = "task_deleted"
)

// Event is the payload written to websocket subscribers.
type Event struct {
	Type   EventType `json:"type"`
	ListID int64     `json:"list_id,omitempty"`
	TaskID int64     `json:"task_id,omitempty"`
	Data   any       `json:"data,omitempty"`
}
