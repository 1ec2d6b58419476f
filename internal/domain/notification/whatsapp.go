package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// UltramsgSender delivers WhatsApp messages through the Ultramsg
// HTTP gateway.
type UltramsgSender struct {
	BaseURL    string
	InstanceID string
	Token      string
	client     *http.Client
}

// NewUltramsgSender creates a WhatsApp sender for one Ultramsg instance.
func NewUltramsgSender(baseURL, instanceID, token string) *UltramsgSender {
	return &UltramsgSender{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		InstanceID: instanceID,
		Token:      token,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Send posts one chat message to the gateway.
func (s *UltramsgSender) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/%s/messages/chat", s.BaseURL, s.InstanceID)

	form := url.Values{}
	form.Set("token", s.Token)
	form.Set("to", to)
	form.Set("body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting message: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Sent    any    `json:"sent"`
		Message string `json:"message"`
		Error   any    `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	// The gateway reports sent as either a bool or the string "true".
	if result.Sent == true || result.Sent == "true" {
		return nil
	}
	if result.Message != "" {
		return fmt.Errorf("gateway rejected message: %s", result.Message)
	}
	return fmt.Errorf("gateway rejected message: %v", result.Error)
}
