package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers one WhatsApp message. Implementations are best-effort;
// callers never block a state transition on the result.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}

// FonnteClient sends WhatsApp messages through the Fonnte HTTP API.
type FonnteClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewFonnteClient(baseURL, token string) *FonnteClient {
	return &FonnteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type fonnteResponse struct {
	Status bool   `json:"status"`
	Reason string `json:"reason"`
}

func (c *FonnteClient) Send(ctx context.Context, phone, message string) error {
	if strings.TrimSpace(phone) == "" {
		return fmt.Errorf("phone number is empty")
	}

	form := url.Values{}
	form.Set("target", phone)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fonnte returned status %d", resp.StatusCode)
	}

	var parsed fonnteResponse
	if err := json.Unmarshal(body, &parsed); err == nil && !parsed.Status && parsed.Reason != "" {
		return fmt.Errorf("fonnte rejected message: %s", parsed.Reason)
	}

	return nil
}

// Dispatch sends a message in the background with its own timeout. Failures
// are logged and never propagated; the triggering transition has already
// committed.
func Dispatch(sender Sender, phone, message string) {
	if sender == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := sender.Send(ctx, phone, message); err != nil {
			log.Println("[NOTIFY] [ERROR] whatsapp send failed:", err)
			return
		}
		log.Println("[NOTIFY] [INFO] whatsapp message sent")
	}()
}
