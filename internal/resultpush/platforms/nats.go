package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
)

// Publisher is the slice of *nats.Conn the adapter needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSAdapter publishes to "<endpoint>.<event>", where the target endpoint is
// a subject prefix such as "arcade.results".
type NATSAdapter struct {
	pub Publisher
}

func NewNATSAdapter(pub Publisher) *NATSAdapter {
	return &NATSAdapter{pub: pub}
}

func (a *NATSAdapter) Name() string {
	return "nats"
}

func (a *NATSAdapter) Send(_ context.Context, endpoint, _ string, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	subject := Subject(endpoint, msg.Event)
	if err := a.pub.Publish(subject, raw); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subject joins prefix and event, mapping characters NATS treats as tokens.
func Subject(prefix, event string) string {
	event = strings.NewReplacer(".", "_", " ", "_", "*", "_", ">", "_").Replace(event)
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return event
	}
	return prefix + "." + event
}

// ConnectNATS dials url with reconnects enabled.
func ConnectNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url, nats.Name("arcade-tournament"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}
