// Package assistant answers open-ended questions with a generative model.
// Responses are cached by input and context, concurrent identical requests
// share one call, and calls are spaced by a process-wide minimum interval.
// Respond never fails: when the model is unavailable it serves a stale
// cached answer or a canned one.
package assistant

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"nft-gallery-agent/internal/cache"
	"nft-gallery-agent/internal/domain"
	"nft-gallery-agent/internal/knowledge"
)

const (
	DefaultMinInterval  = time.Second
	DefaultCallTimeout  = 20 * time.Second
	DefaultHistoryLimit = 4
)

// Generator produces a completion for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Source string

const (
	SourceAI       Source = "ai"
	SourceCache    Source = "cache"
	SourceStale    Source = "stale_cache"
	SourceFallback Source = "fallback"
)

type Request struct {
	Input    string
	Intent   domain.Intent
	Language domain.Language
	// RecordID is the catalog record the question was resolved to, if any.
	RecordID string
	History  []domain.ConversationMessage
}

type Reply struct {
	Text   string
	Source Source
}

type Config struct {
	MinInterval  time.Duration
	CallTimeout  time.Duration
	CacheTTL     time.Duration
	CacheSize    int
	HistoryLimit int
}

type Service struct {
	gen          Generator
	records      []domain.CatalogRecord
	cache        *cache.Cache
	limiter      *rate.Limiter
	group        singleflight.Group
	callTimeout  time.Duration
	historyLimit int
}

type Option func(*options)

type options struct {
	cacheOpts []cache.Option
}

// WithCacheClock replaces the clock used to age cache entries, for tests.
func WithCacheClock(now func() time.Time) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, cache.WithClock(now))
	}
}

// New builds a Service over gen. records form the knowledge base embedded
// in every prompt.
func New(gen Generator, records []domain.CatalogRecord, cfg Config, opts ...Option) (*Service, error) {
	if gen == nil {
		return nil, errors.New("assistant: generator must not be nil")
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = DefaultMinInterval
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Service{
		gen:          gen,
		records:      records,
		cache:        cache.New(cfg.CacheSize, cfg.CacheTTL, o.cacheOpts...),
		limiter:      rate.NewLimiter(rate.Every(cfg.MinInterval), 1),
		callTimeout:  cfg.CallTimeout,
		historyLimit: cfg.HistoryLimit,
	}, nil
}

type flightResult struct {
	text   string
	source Source
}

// Respond returns the model's answer to req, or the best available
// substitute when the model cannot be reached.
func (s *Service) Respond(ctx context.Context, req Request) Reply {
	key := CacheKey(req)
	if e, ok := s.cache.Get(key); ok {
		return Reply{Text: e.Response, Source: SourceCache}
	}

	// The flight outlives any single caller: it runs detached from the
	// leader's cancellation, bounded by the call timeout, and each caller
	// stops waiting when its own context ends.
	flightCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		// A flight that finished just before this one may have filled the
		// cache.
		if e, ok := s.cache.Get(key); ok {
			return flightResult{text: e.Response, source: SourceCache}, nil
		}
		text, err := s.generate(flightCtx, req)
		if err != nil {
			return nil, err
		}
		s.cache.Set(key, text)
		return flightResult{text: text, source: SourceAI}, nil
	})

	var err error
	select {
	case res := <-ch:
		if res.Err == nil {
			r := res.Val.(flightResult)
			return Reply{Text: r.text, Source: r.source}
		}
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}

	if e, ok := s.cache.GetStale(key); ok {
		slog.Warn("assistant: generation failed, serving stale cache entry", "intent", req.Intent, "cachedAt", e.Timestamp, "err", err)
		return Reply{Text: e.Response, Source: SourceStale}
	}
	slog.Warn("assistant: generation failed, serving canned fallback", "intent", req.Intent, "err", err)
	return Reply{Text: knowledge.Fallback(req.Intent, req.Language), Source: SourceFallback}
}

func (s *Service) generate(ctx context.Context, req Request) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("assistant: rate limiter wait: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	prompt := buildPrompt(s.records, req, lastMessages(req.History, s.historyLimit))
	text, err := s.gen.Generate(callCtx, prompt)
	if err != nil {
		return "", fmt.Errorf("assistant: generate: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("assistant: generate: empty completion")
	}
	return text, nil
}

// keyContext is the part of a request, besides the input, that changes the
// answer. History is left out so a repeated question is served from cache.
type keyContext struct {
	Intent   domain.Intent   `json:"intent"`
	Language domain.Language `json:"language"`
	RecordID string          `json:"recordId,omitempty"`
}

// CacheKey fingerprints the normalized input together with its context.
func CacheKey(req Request) string {
	payload, _ := json.Marshal(keyContext{
		Intent:   req.Intent,
		Language: req.Language,
		RecordID: req.RecordID,
	})
	sum := sha256.Sum256([]byte(normalize(req.Input) + "\x00" + string(payload)))
	return hex.EncodeToString(sum[:])
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func lastMessages(history []domain.ConversationMessage, n int) []domain.ConversationMessage {
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
