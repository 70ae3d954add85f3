package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nft-gallery-agent/internal/assistant"
	"nft-gallery-agent/internal/catalog"
	"nft-gallery-agent/internal/conversation"
	"nft-gallery-agent/internal/domain"
	"nft-gallery-agent/internal/format"
	"nft-gallery-agent/internal/knowledge"
	"nft-gallery-agent/internal/metadata"
	"nft-gallery-agent/internal/pricefeed"
)

type stubRates struct{ usd float64 }

func (s stubRates) Rate(_ context.Context) pricefeed.Quote {
	return pricefeed.Quote{USD: s.usd, At: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

type stubResponder struct {
	reply assistant.Reply
	reqs  []assistant.Request
}

func (s *stubResponder) Respond(_ context.Context, req assistant.Request) assistant.Reply {
	s.reqs = append(s.reqs, req)
	return s.reply
}

type stubFetcher struct {
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, rec domain.CatalogRecord) metadata.Result {
	s.calls++
	return metadata.Result{Metadata: metadata.Local(rec)}
}

type failingGenerator struct{ calls int }

func (g *failingGenerator) Generate(_ context.Context, _ string) (string, error) {
	g.calls++
	return "", errors.New("upstream unavailable")
}

type testDeps struct {
	responder Responder
	store     *conversation.Store
	fetcher   *stubFetcher
}

func newService(t *testing.T, responder Responder) (*ChatService, *testDeps) {
	t.Helper()
	store := catalog.Default()
	f, err := format.New(stubRates{usd: 0.5}, store.All())
	require.NoError(t, err)
	deps := &testDeps{responder: responder, store: conversation.NewStore(), fetcher: &stubFetcher{}}
	svc, err := NewChatService(store, f, responder, deps.store, deps.fetcher, 0)
	require.NoError(t, err)
	return svc, deps
}

func requireCode(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	var ucErr *Error
	require.True(t, errors.As(err, &ucErr), "want *usecase.Error, got %v", err)
	require.Equal(t, code, ucErr.Code)
}

func TestNewChatService_Validates(t *testing.T) {
	f, err := format.New(stubRates{usd: 1}, nil)
	require.NoError(t, err)
	store := catalog.Default()
	conv := conversation.NewStore()
	md := &stubFetcher{}

	_, err = NewChatService(nil, f, nil, conv, md, 0)
	require.ErrorContains(t, err, "catalog")
	_, err = NewChatService(store, nil, nil, conv, md, 0)
	require.ErrorContains(t, err, "formatter")
	_, err = NewChatService(store, f, nil, nil, md, 0)
	require.ErrorContains(t, err, "conversation")
	_, err = NewChatService(store, f, nil, conv, nil, 0)
	require.ErrorContains(t, err, "metadata")
}

func TestChat_Validation(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.Chat(context.Background(), ChatInput{Message: "   "})
	requireCode(t, err, ErrorInvalidInput)

	_, err = svc.Chat(context.Background(), ChatInput{Message: strings.Repeat("ñ", defaultMaxMessageLen+1)})
	requireCode(t, err, ErrorInvalidInput)

	_, err = svc.Chat(context.Background(), ChatInput{Message: strings.Repeat("ñ", defaultMaxMessageLen)})
	require.NoError(t, err)
}

func TestChat_PriceOfRecord(t *testing.T) {
	restore := newUUID
	newUUID = func() string { return "conv-1" }
	defer func() { newUUID = restore }()

	responder := &stubResponder{}
	svc, deps := newService(t, responder)

	out, err := svc.Chat(context.Background(), ChatInput{Message: "precio de CHIDO"})
	require.NoError(t, err)
	require.Equal(t, "conv-1", out.ConversationID)
	require.Equal(t, domain.IntentPrice, out.Intent)
	require.Equal(t, domain.LanguageES, out.Language)
	require.Equal(t, "CHIDO", out.RecordID)
	require.Equal(t, SourceRules, out.Source)
	require.Contains(t, out.Reply, "0.5 POL (~$0.25 USD)")
	require.Empty(t, responder.reqs)

	require.NotEmpty(t, out.Suggestions)
	require.LessOrEqual(t, len(out.Suggestions), 4)
	require.Equal(t, "price", out.Suggestions[0].Category)

	history := deps.store.History("conv-1", 10)
	require.Len(t, history, 2)
	require.Equal(t, domain.SenderUser, history[0].Sender)
	require.Equal(t, domain.SenderBot, history[1].Sender)
	require.Equal(t, out.Reply, history[1].Text)
}

func TestChat_MuseumBlock(t *testing.T) {
	svc, _ := newService(t, &stubResponder{})

	out, err := svc.Chat(context.Background(), ChatInput{Message: "dónde está el museo"})
	require.NoError(t, err)
	require.Equal(t, domain.IntentMuseum, out.Intent)
	require.Equal(t, SourceRules, out.Source)
	require.Contains(t, out.Reply, "Playa del Carmen")
	require.Empty(t, out.RecordID)
}

func TestChat_TechnicalQuestionWithFailingModel(t *testing.T) {
	gen := &failingGenerator{}
	responder, err := assistant.New(gen, catalog.Default().All(), assistant.Config{MinInterval: time.Millisecond})
	require.NoError(t, err)
	svc, _ := newService(t, responder)

	out, err := svc.Chat(context.Background(), ChatInput{Message: "qué es blockchain"})
	require.NoError(t, err)
	require.Equal(t, domain.IntentTechnical, out.Intent)
	want, _ := knowledge.Block(domain.IntentTechnical, domain.LanguageES)
	require.Equal(t, want, out.Reply)
}

func TestChat_UnresolvedGoesToAssistantWithHistory(t *testing.T) {
	responder := &stubResponder{reply: assistant.Reply{Text: "Claro que sí.", Source: assistant.SourceAI}}
	svc, _ := newService(t, responder)

	first, err := svc.Chat(context.Background(), ChatInput{Message: "precio de AXO"})
	require.NoError(t, err)

	out, err := svc.Chat(context.Background(), ChatInput{Message: "hola, cuéntame algo bonito", ConversationID: first.ConversationID})
	require.NoError(t, err)
	require.Equal(t, "Claro que sí.", out.Reply)
	require.Equal(t, string(assistant.SourceAI), out.Source)
	require.Equal(t, domain.IntentGeneral, out.Intent)

	require.Len(t, responder.reqs, 1)
	req := responder.reqs[0]
	require.Equal(t, "hola, cuéntame algo bonito", req.Input)
	require.Equal(t, domain.LanguageES, req.Language)
	require.Len(t, req.History, 2)
	require.Equal(t, "precio de AXO", req.History[0].Text)
}

func TestChat_UnresolvedFailingModelServesCannedFallback(t *testing.T) {
	gen := &failingGenerator{}
	responder, err := assistant.New(gen, catalog.Default().All(), assistant.Config{MinInterval: time.Millisecond})
	require.NoError(t, err)
	svc, _ := newService(t, responder)

	out, err := svc.Chat(context.Background(), ChatInput{Message: "can you tell me a story about the stars"})
	require.NoError(t, err)
	require.Equal(t, string(assistant.SourceFallback), out.Source)
	require.Equal(t, knowledge.Fallback(domain.IntentGeneral, domain.LanguageEN), out.Reply)
	require.Equal(t, 1, gen.calls)
}

func TestChat_NoAssistantServesHelp(t *testing.T) {
	svc, _ := newService(t, nil)

	out, err := svc.Chat(context.Background(), ChatInput{Message: "what can you do"})
	require.NoError(t, err)
	require.Equal(t, SourceHelp, out.Source)
	require.Equal(t, knowledge.Help(domain.LanguageEN), out.Reply)
}

func TestChat_PendingTurnConflicts(t *testing.T) {
	svc, deps := newService(t, &stubResponder{})

	_, err := deps.store.Begin("busy", "first message")
	require.NoError(t, err)

	_, err = svc.Chat(context.Background(), ChatInput{Message: "precio de CHIDO", ConversationID: "busy"})
	requireCode(t, err, ErrorConflict)
	require.ErrorIs(t, err, conversation.ErrTurnPending)
}

func TestChat_CancelledContextAbortsTurn(t *testing.T) {
	svc, deps := newService(t, &stubResponder{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Chat(ctx, ChatInput{Message: "dónde está el museo", ConversationID: "c"})
	requireCode(t, err, ErrorInternal)
	require.Empty(t, deps.store.History("c", 10))

	_, err = svc.Chat(context.Background(), ChatInput{Message: "dónde está el museo", ConversationID: "c"})
	require.NoError(t, err)
}

type panickingResponder struct{}

func (panickingResponder) Respond(_ context.Context, _ assistant.Request) assistant.Reply {
	panic("generator crashed")
}

func TestChat_PanicReleasesTurn(t *testing.T) {
	svc, deps := newService(t, panickingResponder{})

	require.Panics(t, func() {
		_, _ = svc.Chat(context.Background(), ChatInput{Message: "hola, cuéntame algo bonito", ConversationID: "c"})
	})

	out, err := svc.Chat(context.Background(), ChatInput{Message: "dónde está el museo", ConversationID: "c"})
	require.NoError(t, err)
	require.Equal(t, SourceRules, out.Source)
	require.Len(t, deps.store.History("c", 10), 2)
}

func TestSuggestionsAndQuickActions(t *testing.T) {
	svc, _ := newService(t, nil)

	got := svc.Suggestions("precio")
	require.Len(t, got, 4)
	for i := 1; i < len(got); i++ {
		require.GreaterOrEqual(t, got[i-1].Priority, got[i].Priority)
	}
	require.Len(t, svc.QuickActions(), 4)
}

func TestRecord(t *testing.T) {
	svc, deps := newService(t, nil)

	out, err := svc.Record(context.Background(), "chido")
	require.NoError(t, err)
	require.Equal(t, "CHIDO", out.Record.ID)
	require.Equal(t, "C.H.I.D.O.", out.Metadata.Name)
	require.False(t, out.MetadataFetched)
	require.Equal(t, 1, deps.fetcher.calls)

	_, err = svc.Record(context.Background(), "NOPE")
	requireCode(t, err, ErrorNotFound)

	_, err = svc.Record(context.Background(), " ")
	requireCode(t, err, ErrorInvalidInput)
}
