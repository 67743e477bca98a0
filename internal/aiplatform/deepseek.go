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

// DeepseekClient talks to the Deepseek chat completions API.
type DeepseekClient struct {
	client *http.Client
	creds  providers.CredentialSource
	log    zerolog.Logger
}

func NewDeepseekClient(creds providers.CredentialSource, log zerolog.Logger) *DeepseekClient {
	return &DeepseekClient{
		client: &http.Client{Timeout: httpTimeout},
		creds:  creds,
		log:    log.With().Str("platform", "deepseek").Logger(),
	}
}

func (c *DeepseekClient) Name() string { return "deepseek" }

type chatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *DeepseekClient) GenerateStockList(prompt string) (string, error) {
	key, ok := c.creds.Credential("deepseek")
	if !ok {
		return "", fmt.Errorf("missing deepseek credential")
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: "deepseek-chat",
		Messages: []chatMessage{
			{Role: "system", Content: "Respond only with a comma-separated list of stock ticker symbols."},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal deepseek request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.deepseek.com/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build deepseek request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("deepseek request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read deepseek response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("deepseek returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse deepseek response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("deepseek returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
