// Package metadata fetches ERC-721 metadata documents for catalog records.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"nft-gallery-agent/internal/domain"
)

const (
	defaultGateway  = "https://ipfs.io/ipfs/"
	defaultAttempts = 3
	defaultBackoff  = time.Second
)

// Result is the metadata of a record and whether it came from the network.
type Result struct {
	Metadata domain.NFTMetadata
	Fetched  bool
}

type Fetcher struct {
	gateway    string
	httpClient *http.Client
	attempts   int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Fetcher)

// WithGateway sets the HTTP gateway that ipfs:// URIs are rewritten to.
func WithGateway(gateway string) Option {
	return func(f *Fetcher) {
		if s := strings.TrimSpace(gateway); s != "" {
			f.gateway = strings.TrimRight(s, "/") + "/"
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = httpClient
	}
}

// WithBackoff sets the base delay; attempt n waits n times this value.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		f.backoff = d
	}
}

func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		gateway:    defaultGateway,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		attempts:   defaultAttempts,
		backoff:    defaultBackoff,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the metadata of rec, retrying with a linear backoff.
// When every attempt fails the metadata is built from the record itself.
func (f *Fetcher) Fetch(ctx context.Context, rec domain.CatalogRecord) Result {
	uri := f.resolve(rec.MetadataURI)
	if uri == "" {
		return Result{Metadata: Local(rec)}
	}

	var lastErr error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		md, err := f.fetchOnce(ctx, uri)
		if err == nil {
			return Result{Metadata: merge(md, rec), Fetched: true}
		}
		lastErr = err
		if attempt == f.attempts {
			break
		}
		slog.Warn("metadata fetch failed, retrying", "record", rec.ID, "attempt", attempt, "err", err)
		if err := f.sleep(ctx, time.Duration(attempt)*f.backoff); err != nil {
			lastErr = err
			break
		}
	}
	slog.Warn("metadata fetch exhausted retries, using local fields", "record", rec.ID, "err", lastErr)
	return Result{Metadata: Local(rec)}
}

func (f *Fetcher) fetchOnce(ctx context.Context, uri string) (domain.NFTMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return domain.NFTMetadata{}, fmt.Errorf("metadata: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := f.httpClient.Do(req)
	if err != nil {
		return domain.NFTMetadata{}, fmt.Errorf("metadata: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return domain.NFTMetadata{}, fmt.Errorf("metadata: unexpected status %d from %s", res.StatusCode, uri)
	}

	var md domain.NFTMetadata
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&md); err != nil {
		return domain.NFTMetadata{}, fmt.Errorf("metadata: decode response: %w", err)
	}
	if strings.TrimSpace(md.Name) == "" || strings.TrimSpace(md.Image) == "" {
		return domain.NFTMetadata{}, errors.New("metadata: document missing name or image")
	}
	return md, nil
}

func (f *Fetcher) resolve(uri string) string {
	uri = strings.TrimSpace(uri)
	if rest, ok := strings.CutPrefix(uri, "ipfs://"); ok {
		return f.gateway + strings.TrimPrefix(rest, "ipfs/")
	}
	return uri
}

// Local builds metadata from the fields the catalog already knows.
func Local(rec domain.CatalogRecord) domain.NFTMetadata {
	return domain.NFTMetadata{
		Name:         rec.Name,
		Image:        rec.Image,
		Description:  rec.Description,
		Attributes:   append([]domain.Attribute(nil), rec.Attributes...),
		AnimationURL: rec.AnimationURI,
	}
}

// merge fills optional fields the remote document left out.
func merge(md domain.NFTMetadata, rec domain.CatalogRecord) domain.NFTMetadata {
	if md.Description == "" {
		md.Description = rec.Description
	}
	if len(md.Attributes) == 0 {
		md.Attributes = append([]domain.Attribute(nil), rec.Attributes...)
	}
	if md.AnimationURL == "" {
		md.AnimationURL = rec.AnimationURI
	}
	return md
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
