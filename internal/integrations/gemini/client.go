// Package gemini adapts the Google generative AI SDK to the assistant's
// Generator interface.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

// TokenGetter resolves secrets stored in the parameter store.
type TokenGetter interface {
	GetToken(ctx context.Context, name string) (string, error)
}

// contentGenerator is the part of *genai.GenerativeModel the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type modelFactory func(ctx context.Context, apiKey, model string) (contentGenerator, func() error, error)

type Client struct {
	tokens    TokenGetter
	tokenName string
	modelName string
	maxTokens int32
	newModel  modelFactory

	mu      sync.Mutex
	model   contentGenerator
	closeFn func() error
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if m := strings.TrimSpace(model); m != "" {
			c.modelName = m
		}
	}
}

func WithMaxTokens(n int32) Option {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// NewClient creates a Client whose API key is the parameter-store token
// tokenName. The SDK client is built on first use.
func NewClient(tokens TokenGetter, tokenName string, opts ...Option) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("gemini: token getter must not be nil")
	}
	tokenName = strings.TrimSpace(tokenName)
	if tokenName == "" {
		return nil, errors.New("gemini: token name must not be empty")
	}
	c := &Client{
		tokens:    tokens,
		tokenName: tokenName,
		modelName: defaultModel,
		maxTokens: 400,
		newModel:  sdkModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func sdkModel(ctx context.Context, apiKey, model string) (contentGenerator, func() error, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, err
	}
	return client.GenerativeModel(model), client.Close, nil
}

// resolveModel builds the SDK model on first success. A failed key fetch or
// client creation is retried on the next call.
func (c *Client) resolveModel(ctx context.Context) (contentGenerator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.model != nil {
		return c.model, nil
	}
	apiKey, err := c.tokens.GetToken(ctx, c.tokenName)
	if err != nil {
		return nil, fmt.Errorf("gemini: resolve api key: %w", err)
	}
	model, closeFn, err := c.newModel(ctx, apiKey, c.modelName)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	if m, ok := model.(*genai.GenerativeModel); ok && c.maxTokens > 0 {
		m.SetMaxOutputTokens(c.maxTokens)
	}
	c.model, c.closeFn = model, closeFn
	return model, nil
}

// Generate returns the text of the first candidate for prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("gemini: prompt must not be empty")
	}
	model, err := c.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini: no response candidates")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini: unexpected response format")
	}
	return sb.String(), nil
}

// Close releases the SDK client if one was created.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeFn == nil {
		return nil
	}
	err := c.closeFn()
	c.model, c.closeFn = nil, nil
	return err
}
