package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ChatClient talks to the remote assistant endpoint: POST /chat with
// {message, user_id}, success is a 2xx carrying {response}.
type ChatClient struct {
	BaseURL string
	HTTP    *http.Client
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type chatResponse struct {
	Response string `json:"response"`
}

func NewChatClient(baseURL string, httpClient *http.Client) *ChatClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ChatClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    httpClient,
	}
}

// Send posts one message and returns the complete assistant response. Any
// transport failure or non-2xx status is an error; the caller decides how to
// surface it.
func (c *ChatClient) Send(ctx context.Context, message, userID string) (string, error) {
	payload, err := json.Marshal(chatRequest{Message: message, UserID: userID})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("malformed chat response: %w", err)
	}
	return out.Response, nil
}
