// Package broadcast propagates navigation between the open surfaces of a
// deck. A Port delivers each published Message to every subscriber except
// its publisher; Bus is the in-process implementation, and the WebSocket and
// SSE handlers attach remote surfaces to it.
package broadcast

// Message types.
const (
	TypeNavigate = "NAVIGATE"
	TypeReload   = "RELOAD"
)

// Message is one cross-surface event. NAVIGATE carries the 1-based slide
// index and the reveal step; RELOAD carries the checksum of the reloaded
// deck.
type Message struct {
	Type     string `json:"type"`
	Index    int    `json:"index"`
	Step     int    `json:"step"`
	Checksum string `json:"checksum,omitempty"`
}

// Navigate builds a NAVIGATE message.
func Navigate(index, step int) Message {
	return Message{Type: TypeNavigate, Index: index, Step: step}
}

// Reload builds a RELOAD message.
func Reload(checksum string) Message {
	return Message{Type: TypeReload, Checksum: checksum}
}

// Handler receives messages for one subscriber. Calls for the same
// subscriber never overlap.
type Handler func(Message)

// Port is the publish/subscribe contract between surfaces.
//
// Publish is fire-and-forget: no acknowledgement, no retry, and a message
// may be lost when a subscriber falls behind. Subscribe registers handler
// under id; messages published with origin == id are not delivered back to
// it. The returned cancel func releases the subscription and may be called
// more than once.
type Port interface {
	Publish(origin string, msg Message)
	Subscribe(id string, handler Handler) (cancel func())
}
