package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/example/lexbox/pkg/models"
)

// ChatGPT represents a client for the OpenAI chat completions API, used to
// enrich a bare term with translation, part of speech and example sentences.
// The scheduler treats the produced content as fully opaque.
type ChatGPT struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// New creates a new ChatGPT client
func New() (*ChatGPT, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	return &ChatGPT{
		apiKey:      apiKey,
		apiURL:      "https://api.openai.com/v1/chat/completions",
		model:       "gpt-4o-mini",
		maxTokens:   400,
		temperature: 0.7,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You are a German vocabulary assistant. For the given term, reply with a single JSON object: " +
	`{"part_of_speech": "...", "translation": "...", "examples": ["...", "..."], "fields": {}}. ` +
	"For nouns put article and plural into fields; for verbs put the principal parts. Reply with JSON only."

// Enrich asks the model for structured content for one term. Implements
// the backlog.Enricher interface.
func (c *ChatGPT) Enrich(ctx context.Context, term string) (models.CardContent, error) {
	request := ChatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: term},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return models.CardContent{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return models.CardContent{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return models.CardContent{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return models.CardContent{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return models.CardContent{}, fmt.Errorf("API error: %s", response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return models.CardContent{}, fmt.Errorf("no response choices returned")
	}

	raw := strings.TrimSpace(response.Choices[0].Message.Content)
	// Models occasionally wrap the JSON in a code fence.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var content models.CardContent
	if err := json.Unmarshal([]byte(raw), &content); err != nil {
		return models.CardContent{}, fmt.Errorf("failed to parse enrichment payload: %w", err)
	}
	return content, nil
}
