package platforms

import "context"

// Message is one delivery. Data is the event payload, marshalled as-is.
type Message struct {
	EventID  string `json:"event_id,omitempty"`
	Event    string `json:"event"`
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	ServerTS int64  `json:"server_ts"`
	Data     any    `json:"data"`
}

type Adapter interface {
	Name() string
	Send(ctx context.Context, endpoint, secret string, msg Message) error
}
