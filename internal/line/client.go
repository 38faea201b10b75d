package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultAPIBaseURL = "https://api.line.me"

// Client calls the LINE Messaging API.
type Client struct {
	baseURL     string
	accessToken string
	http        *http.Client
}

// NewClient creates a client with the given channel access token.
func NewClient(accessToken string) *Client {
	return &Client{
		baseURL:     defaultAPIBaseURL,
		accessToken: accessToken,
		http:        &http.Client{},
	}
}

// Reply answers a webhook event using its reply token. Reply tokens are
// single-use and short-lived; failures are not retried.
func (c *Client) Reply(ctx context.Context, replyToken string, messages []OutMessage) error {
	payload := struct {
		ReplyToken string       `json:"replyToken"`
		Messages   []OutMessage `json:"messages"`
	}{ReplyToken: replyToken, Messages: messages}
	return c.post(ctx, "/v2/bot/message/reply", payload)
}

// Push sends messages to a user, group or room outside a reply window.
func (c *Client) Push(ctx context.Context, to string, messages []OutMessage) error {
	payload := struct {
		To       string       `json:"to"`
		Messages []OutMessage `json:"messages"`
	}{To: to, Messages: messages}
	return c.post(ctx, "/v2/bot/message/push", payload)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling %s payload: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, string(detail))
	}
	return nil
}
