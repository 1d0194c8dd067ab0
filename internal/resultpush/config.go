package resultpush

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"arcade-tournament/internal/config"
)

var supportedPlatforms = map[string]bool{"webhook": true, "nats": true}

func ConfigFromEnv(cfg config.PushConfig) (Config, error) {
	out := Config{
		Enabled:             cfg.Enabled,
		ConfigPath:          strings.TrimSpace(cfg.ConfigPath),
		ConfigReload:        time.Duration(cfg.ConfigReloadMS) * time.Millisecond,
		Workers:             cfg.Workers,
		RetryMax:            cfg.RetryMax,
		RetryBase:           time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		FailureThreshold:    3,
		CircuitOpenDuration: 30 * time.Second,
		RequestTimeout:      5 * time.Second,
		DispatchBuffer:      1024,
	}
	if !out.Enabled {
		return out, nil
	}
	if out.Workers <= 0 {
		out.Workers = 2
	}
	if out.RetryMax < 0 {
		out.RetryMax = 0
	}
	if out.RetryBase <= 0 {
		out.RetryBase = 500 * time.Millisecond
	}
	if out.ConfigReload <= 0 {
		out.ConfigReload = time.Second
	}
	if out.ConfigPath == "" {
		return out, nil
	}

	raw, err := os.ReadFile(out.ConfigPath)
	if err != nil {
		return Config{}, fmt.Errorf("read result push config path %q: %w", out.ConfigPath, err)
	}
	targets, err := parseTargetsJSON(strings.TrimSpace(string(raw)))
	if err != nil {
		return Config{}, err
	}
	out.Targets = targets
	return out, nil
}

// parseTargetsJSON accepts {"targets":[...]} and keeps enabled targets on a
// supported platform with an endpoint.
func parseTargetsJSON(jsonRaw string) ([]Target, error) {
	if jsonRaw == "" {
		return nil, nil
	}
	var file struct {
		Targets []Target `json:"targets"`
	}
	if err := json.Unmarshal([]byte(jsonRaw), &file); err != nil {
		return nil, fmt.Errorf("parse result push targets: %w", err)
	}
	filtered := make([]Target, 0, len(file.Targets))
	for _, target := range file.Targets {
		target.Platform = strings.ToLower(strings.TrimSpace(target.Platform))
		if !supportedPlatforms[target.Platform] {
			continue
		}
		target.Endpoint = strings.TrimSpace(target.Endpoint)
		if target.Endpoint == "" || !target.enabled() {
			continue
		}
		for i := range target.Events {
			target.Events[i] = strings.ToLower(strings.TrimSpace(target.Events[i]))
		}
		filtered = append(filtered, target)
	}
	return filtered, nil
}
