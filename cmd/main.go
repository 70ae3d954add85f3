package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"nft-gallery-agent/handler"
	"nft-gallery-agent/internal/assistant"
	"nft-gallery-agent/internal/catalog"
	"nft-gallery-agent/internal/conversation"
	"nft-gallery-agent/internal/format"
	"nft-gallery-agent/internal/integrations/gemini"
	"nft-gallery-agent/internal/integrations/openai"
	"nft-gallery-agent/internal/integrations/paramstore"
	"nft-gallery-agent/internal/metadata"
	"nft-gallery-agent/internal/pricefeed"
	"nft-gallery-agent/internal/repository"
	"nft-gallery-agent/internal/usecase"
)

const (
	openaiTokenParam = "openai-token"
	geminiTokenParam = "gemini-token"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	paramPrefix := mustEnv("PARAM_PREFIX")
	provider := strings.ToLower(envString("AI_PROVIDER", "openai"))
	model := envString("AI_MODEL", "")
	catalogTable := envString("CATALOG_TABLE", "")
	priceFeedURL := envString("PRICE_FEED_URL", "")
	priceCoinID := envString("PRICE_COIN_ID", "")
	ipfsGateway := envString("IPFS_GATEWAY", "")
	cacheTTL := envDuration("AI_CACHE_TTL", 5*time.Minute)
	cacheSize := envInt("AI_CACHE_SIZE", 256)
	minInterval := envDuration("AI_MIN_INTERVAL", time.Second)
	maxMessageLen := envInt("MAX_MESSAGE_LENGTH", 500)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg), paramPrefix)
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	// ---- Catalog ----
	store := catalog.Default()
	if catalogTable != "" {
		table, err := repository.New(awsdynamodb.NewFromConfig(cfg), catalogTable)
		if err != nil {
			slog.Error("failed to create catalog table client", "err", err)
			os.Exit(1)
		}
		records, err := table.ListRecords(ctx)
		if err != nil {
			slog.Error("failed to load catalog", "table", catalogTable, "err", err)
			os.Exit(1)
		}
		store, err = catalog.New(records)
		if err != nil {
			slog.Error("invalid catalog", "table", catalogTable, "err", err)
			os.Exit(1)
		}
	}
	slog.Info("catalog loaded", "records", store.Len())

	// ---- Formatting and metadata ----
	var priceOpts []pricefeed.Option
	if priceFeedURL != "" {
		priceOpts = append(priceOpts, pricefeed.WithBaseURL(priceFeedURL))
	}
	if priceCoinID != "" {
		priceOpts = append(priceOpts, pricefeed.WithCoinID(priceCoinID))
	}
	formatter, err := format.New(pricefeed.New(priceOpts...), store.All())
	if err != nil {
		slog.Error("failed to create formatter", "err", err)
		os.Exit(1)
	}
	fetcher := metadata.New(metadata.WithGateway(ipfsGateway))

	// ---- Assistant ----
	var (
		responder usecase.Responder
		shutdown  []func()
	)
	gen, err := newGenerator(ssmClient, provider, model)
	if err != nil {
		slog.Error("failed to create AI client", "provider", provider, "err", err)
		os.Exit(1)
	}
	if closer, ok := gen.(interface{ Close() error }); ok {
		shutdown = append(shutdown, func() {
			if err := closer.Close(); err != nil {
				slog.Warn("failed to close AI client", "provider", provider, "err", err)
			}
		})
	}
	if gen != nil {
		svc, err := assistant.New(gen, store.All(), assistant.Config{
			MinInterval: minInterval,
			CacheTTL:    cacheTTL,
			CacheSize:   cacheSize,
		})
		if err != nil {
			slog.Error("failed to create assistant", "err", err)
			os.Exit(1)
		}
		responder = svc
	} else {
		slog.Info("AI fallback disabled", "provider", provider)
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(store, formatter, responder, conversation.NewStore(), fetcher, maxMessageLen)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.StartWithOptions(h.Handle, lambda.WithEnableSIGTERM(shutdown...))
}

// newGenerator returns nil without error when the AI fallback is disabled.
func newGenerator(tokens *paramstore.Client, provider, model string) (assistant.Generator, error) {
	switch provider {
	case "openai":
		return openai.NewClient(tokens, openaiTokenParam, openai.WithModel(model))
	case "gemini":
		return gemini.NewClient(tokens, geminiTokenParam, gemini.WithModel(model))
	case "none", "":
		return nil, nil
	default:
		slog.Error("unknown AI provider", "provider", provider)
		os.Exit(1)
		return nil, nil
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
