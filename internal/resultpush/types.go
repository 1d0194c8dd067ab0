package resultpush

import "time"

const (
	EventSessionRotated   = "session_rotated"
	EventPayoutsProcessed = "payouts_processed"
)

type Target struct {
	Platform string   `json:"platform"`
	Endpoint string   `json:"endpoint"`
	Secret   string   `json:"secret"`
	Events   []string `json:"events"`
	Enabled  *bool    `json:"enabled,omitempty"`
}

func (t Target) enabled() bool {
	return t.Enabled == nil || *t.Enabled
}

type Config struct {
	Enabled             bool
	ConfigPath          string
	ConfigReload        time.Duration
	Targets             []Target
	Workers             int
	RetryMax            int
	RetryBase           time.Duration
	FailureThreshold    int
	CircuitOpenDuration time.Duration
	RequestTimeout      time.Duration
	DispatchBuffer      int
}

// Event is a result worth delivering, whatever produced it.
type Event struct {
	ID       string
	Type     string
	ServerTS int64
	Payload  any
}

type pushJob struct {
	Target  Target
	Event   Event
	Attempt int
}

func (j pushJob) key() string {
	return targetKey(j.Target)
}

func targetKey(t Target) string {
	return t.Platform + "|" + t.Endpoint
}
