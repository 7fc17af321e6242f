package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/hanzi-quest/backend/internal/models"
)

const (
	defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash-exp:generateContent"
	defaultOpenAIURL = "https://api.openai.com/v1/chat/completions"

	openAIModel = "gpt-4o-mini"
	claudeModel = "claude-3-5-sonnet-20241022"

	requestTimeout = 60 * time.Second
)

// Config selects the provider and carries its credentials for one call.
type Config struct {
	Model  models.AIModel
	APIKey string
}

// Gateway dispatches generation requests to the configured AI provider and
// normalizes every failure into a classified *Error. Orchestration code never
// learns which provider answered.
type Gateway struct {
	httpClient *http.Client
	geminiURL  string
	openaiURL  string

	// claudeBaseURL overrides the Anthropic SDK endpoint in tests.
	claudeBaseURL string
}

func NewGateway() *Gateway {
	return &Gateway{
		httpClient: &http.Client{Timeout: requestTimeout},
		geminiURL:  defaultGeminiURL,
		openaiURL:  defaultOpenAIURL,
	}
}

// NewGatewayWith injects the HTTP client and provider endpoints.
func NewGatewayWith(client *http.Client, geminiURL, openaiURL, claudeBaseURL string) *Gateway {
	return &Gateway{
		httpClient:    client,
		geminiURL:     geminiURL,
		openaiURL:     openaiURL,
		claudeBaseURL: claudeBaseURL,
	}
}

// Generate builds the prompt, calls the configured provider, and parses the
// structured response. Every error it returns is a *Error.
func (g *Gateway) Generate(ctx context.Context, config Config, req Request) (*Response, error) {
	if config.APIKey == "" {
		return nil, newError(ErrAuth, "no API key configured", nil)
	}

	prompt := BuildPrompt(req)

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var (
		text string
		err  error
	)
	switch config.Model {
	case models.AIModelGemini:
		text, err = g.callGemini(ctx, config.APIKey, prompt)
	case models.AIModelOpenAI:
		text, err = g.callOpenAI(ctx, config.APIKey, prompt)
	case models.AIModelClaude:
		text, err = g.callClaude(ctx, config.APIKey, prompt)
	default:
		return nil, newError(ErrUnknown, fmt.Sprintf("unsupported AI model %q", config.Model), nil)
	}
	if err != nil {
		var genErr *Error
		if errors.As(err, &genErr) {
			return nil, genErr
		}
		return nil, newError(ErrUnknown, "generation failed", err)
	}

	return ParseResponse(text)
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gateway) callGemini(ctx context.Context, apiKey, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	body, err := g.postJSON(ctx, "gemini", g.geminiURL, payload, func(h http.Header) {
		h.Set("x-goog-api-key", apiKey)
	})
	if err != nil {
		return "", err
	}

	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", newError(ErrInvalidResponse, "gemini returned unparseable JSON", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", newError(ErrInvalidResponse, "gemini returned no content", nil)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func (g *Gateway) callOpenAI(ctx context.Context, apiKey, prompt string) (string, error) {
	payload := openAIRequest{
		Model:       openAIModel,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		Temperature: 0.7,
	}

	body, err := g.postJSON(ctx, "openai", g.openaiURL, payload, func(h http.Header) {
		h.Set("Authorization", "Bearer "+apiKey)
	})
	if err != nil {
		return "", err
	}

	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", newError(ErrInvalidResponse, "openai returned unparseable JSON", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", newError(ErrInvalidResponse, "openai returned no content", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *Gateway) callClaude(ctx context.Context, apiKey, prompt string) (string, error) {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if g.claudeBaseURL != "" {
		opts = append(opts, option.WithBaseURL(g.claudeBaseURL))
	}
	if g.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(g.httpClient))
	}
	client := anthropic.NewClient(opts...)

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(claudeModel),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apierr *anthropic.Error
		if errors.As(err, &apierr) {
			return "", classifyStatus("claude", apierr.StatusCode)
		}
		return "", newError(ErrNetwork, "claude request failed", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", newError(ErrInvalidResponse, "claude returned no text content", nil)
}

// postJSON issues one JSON POST to a provider and returns the raw body on
// 2xx, or a classified error otherwise.
func (g *Gateway) postJSON(ctx context.Context, provider, url string, payload any, setAuth func(http.Header)) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, newError(ErrUnknown, "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, newError(ErrUnknown, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req.Header)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, newError(ErrNetwork, provider+" request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		classified := classifyStatus(provider, resp.StatusCode)
		log.Printf("[generator] WARN: %v", classified)
		return nil, classified
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, newError(ErrNetwork, "read "+provider+" response", err)
	}
	return buf.Bytes(), nil
}
