package aiplatform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/papertrader/engine/internal/providers"
)

// ClaudeClient talks to the Anthropic messages API.
type ClaudeClient struct {
	client *http.Client
	creds  providers.CredentialSource
	log    zerolog.Logger
}

func NewClaudeClient(creds providers.CredentialSource, log zerolog.Logger) *ClaudeClient {
	return &ClaudeClient{
		client: &http.Client{Timeout: httpTimeout},
		creds:  creds,
		log:    log.With().Str("platform", "claude").Logger(),
	}
}

func (c *ClaudeClient) Name() string { return "claude" }

type claudeRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (c *ClaudeClient) GenerateStockList(prompt string) (string, error) {
	key, ok := c.creds.Credential("claude")
	if !ok {
		return "", fmt.Errorf("missing claude credential")
	}

	body, err := json.Marshal(claudeRequest{
		Model:     "claude-3-5-sonnet-latest",
		MaxTokens: 512,
		Messages: []chatMessage{
			{Role: "user", Content: "Respond only with a comma-separated list of stock ticker symbols. " + prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal claude request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build claude request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read claude response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claude returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed claudeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse claude response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("claude returned no content")
	}
	return parsed.Content[0].Text, nil
}
