package platforms

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

const (
	SignatureHeader = "X-Arcade-Signature"
	EventHeader     = "X-Arcade-Event"
)

// WebhookAdapter posts each message as JSON. When the target has a secret the
// body is signed with HMAC-SHA256 and the hex digest sent in SignatureHeader.
type WebhookAdapter struct {
	client *HTTPClient
}

func NewWebhookAdapter(client *HTTPClient) *WebhookAdapter {
	return &WebhookAdapter{client: client}
}

func (a *WebhookAdapter) Name() string {
	return "webhook"
}

func (a *WebhookAdapter) Send(ctx context.Context, endpoint, secret string, msg Message) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	headers := map[string]string{
		EventHeader:         msg.Event,
		"X-Arcade-Timestamp": strconv.FormatInt(msg.ServerTS, 10),
	}
	if secret != "" {
		headers[SignatureHeader] = Sign(secret, raw)
	}
	_, err = a.client.PostRaw(ctx, endpoint, headers, raw)
	return err
}

func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
