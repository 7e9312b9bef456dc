// Package line sends push messages through the LINE Messaging API.
package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"habitloop/internal/domain"
)

const defaultPushURL = "https://api.line.me/v2/bot/message/push"

// Notifier delivers messages to a user's LINE account. Users without stored
// settings, or with notifications disabled, are skipped silently.
type Notifier struct {
	settings domain.NotificationSettingsRepository
	token    string
	client   *http.Client
	pushURL  string
}

// NewNotifier creates a Notifier using the given channel access token.
func NewNotifier(settings domain.NotificationSettingsRepository, channelToken string) *Notifier {
	return &Notifier{
		settings: settings,
		token:    channelToken,
		client:   &http.Client{Timeout: 10 * time.Second},
		pushURL:  defaultPushURL,
	}
}

var _ domain.Notifier = (*Notifier)(nil)

type pushRequest struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify pushes a text message to the user's LINE account.
func (n *Notifier) Notify(ctx context.Context, userID int64, message string) error {
	s, err := n.settings.GetSettings(ctx, userID)
	if err != nil {
		return fmt.Errorf("load notification settings: %w", err)
	}
	if s == nil || !s.Enabled || s.LineUserID == "" {
		return nil
	}

	body, err := json.Marshal(pushRequest{
		To:       s.LineUserID,
		Messages: []pushMessage{{Type: "text", Text: message}},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.pushURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.token)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("push message: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("push message: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// Nop is a Notifier that discards every message. Used when no LINE channel
// token is configured.
type Nop struct{}

// Notify does nothing.
func (Nop) Notify(ctx context.Context, userID int64, message string) error {
	return nil
}

var _ domain.Notifier = Nop{}
