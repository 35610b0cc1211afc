package funnel

// Actions offered once the funnel is complete.
const (
	ActionResend = "resend"
	ActionClose  = "close"
)

// InputPrompt describes the free-text input shown for name and phone.
type InputPrompt struct {
	Type        string `json:"type"`
	Placeholder string `json:"placeholder"`
}

// Snapshot is the render-ready view of a session. Input, Options and
// Actions are only set when the visitor can act, i.e. not while composing.
type Snapshot struct {
	ID         string       `json:"id"`
	State      State        `json:"state"`
	Messages   []Message    `json:"messages"`
	Composing  bool         `json:"composing"`
	Lead       Lead         `json:"lead"`
	Input      *InputPrompt `json:"input,omitempty"`
	Options    []string     `json:"options,omitempty"`
	Actions    []string     `json:"actions,omitempty"`
	HandoffURL string       `json:"handoff_url,omitempty"`
	Dispatches int          `json:"dispatches"`
}

// EventType names a live session event.
type EventType string

const (
	EventTyping  EventType = "typing"
	EventMessage EventType = "message"
	EventState   EventType = "state"
	EventReset   EventType = "reset"
)

// Event is pushed to the Observer as the session changes.
type Event struct {
	Type      EventType `json:"type"`
	State     State     `json:"state"`
	Composing bool      `json:"composing,omitempty"`
	Message   *Message  `json:"message,omitempty"`
}

// Observer receives session events. Publish is called with the session
// locked, so it must not block or call back into the session.
type Observer interface {
	Publish(sessionID string, ev Event)
}

func (s *Session) emit(ev Event) {
	if s.opts.Observer != nil {
		s.opts.Observer.Publish(s.id, ev)
	}
}
