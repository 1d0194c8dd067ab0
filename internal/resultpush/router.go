package resultpush

import "strings"

// DefaultEvents are delivered to targets that do not list their own.
var DefaultEvents = []string{
	"game-ended",
	"tournament-finished",
	EventSessionRotated,
	EventPayoutsProcessed,
}

type Router struct{}

func (r Router) MatchTargets(targets []Target, evType string) []Target {
	if len(targets) == 0 {
		return nil
	}
	out := make([]Target, 0, len(targets))
	for _, target := range targets {
		if !target.enabled() {
			continue
		}
		if !eventAllowed(target.Events, evType) {
			continue
		}
		out = append(out, target)
	}
	return out
}

func eventAllowed(allowlist []string, evType string) bool {
	if len(allowlist) == 0 {
		allowlist = DefaultEvents
	}
	evType = strings.ToLower(strings.TrimSpace(evType))
	for _, v := range allowlist {
		if v == "*" || strings.ToLower(strings.TrimSpace(v)) == evType {
			return true
		}
	}
	return false
}
