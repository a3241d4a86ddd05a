package models

// Chat relay event types, in emission order.
const (
	EventConversationID = "conversation_id"
	EventContent        = "content"
	EventDone           = "done"
	EventError          = "error"
)

// ChatFailureMessage is the only error text a client ever sees from a failed turn.
const ChatFailureMessage = "Failed to get response"

// ChatEvent is one frame of the relay stream. Data is omitted for "done".
type ChatEvent struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

func ConversationIDEvent(id int64) ChatEvent { return ChatEvent{Type: EventConversationID, Data: id} }
func ContentEvent(fragment string) ChatEvent { return ChatEvent{Type: EventContent, Data: fragment} }
func DoneEvent() ChatEvent                   { return ChatEvent{Type: EventDone} }
func ErrorEvent(msg string) ChatEvent        { return ChatEvent{Type: EventError, Data: msg} }
