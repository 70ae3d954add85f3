package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nft-gallery-agent/internal/catalog"
	"nft-gallery-agent/internal/domain"
	"nft-gallery-agent/internal/knowledge"
)

type stubGenerator struct {
	mu      sync.Mutex
	answers []string
	err     error
	delay   time.Duration
	calls   int
	prompts []string
	times   []time.Time
}

func (g *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	g.times = append(g.times, time.Now())
	idx := g.calls - 1
	err := g.err
	g.mu.Unlock()

	if g.delay > 0 {
		select {
		case <-time.After(g.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if len(g.answers) == 0 {
		return "answer", nil
	}
	if idx >= len(g.answers) {
		idx = len(g.answers) - 1
	}
	return g.answers[idx], nil
}

func (g *stubGenerator) setErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestService(t *testing.T, gen Generator, cfg Config, opts ...Option) *Service {
	t.Helper()
	if cfg.MinInterval == 0 {
		cfg.MinInterval = time.Millisecond
	}
	svc, err := New(gen, catalog.Default().All(), cfg, opts...)
	require.NoError(t, err)
	return svc
}

func request(input string) Request {
	return Request{Input: input, Intent: domain.IntentGeneral, Language: domain.LanguageES}
}

func TestNew_ValidatesDependency(t *testing.T) {
	_, err := New(nil, nil, Config{})
	require.Error(t, err)
}

func TestRespond_CachesWithinTTL(t *testing.T) {
	gen := &stubGenerator{answers: []string{"first", "second"}}
	svc := newTestService(t, gen, Config{})

	a := svc.Respond(context.Background(), request("¿Quién pintó esto?"))
	b := svc.Respond(context.Background(), request("  ¿QUIÉN   pintó esto? "))
	require.Equal(t, Reply{Text: "first", Source: SourceAI}, a)
	require.Equal(t, Reply{Text: "first", Source: SourceCache}, b)
	require.Equal(t, 1, gen.callCount())
}

func TestRespond_ContextChangesKey(t *testing.T) {
	gen := &stubGenerator{answers: []string{"es", "en"}}
	svc := newTestService(t, gen, Config{})

	svc.Respond(context.Background(), request("hola"))
	req := request("hola")
	req.Language = domain.LanguageEN
	out := svc.Respond(context.Background(), req)
	require.Equal(t, "en", out.Text)
	require.Equal(t, 2, gen.callCount())
}

func TestRespond_ExpiredEntryIsRefetched(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	gen := &stubGenerator{answers: []string{"first", "second"}}
	svc := newTestService(t, gen, Config{CacheTTL: 5 * time.Minute}, WithCacheClock(clk.Now))

	require.Equal(t, "first", svc.Respond(context.Background(), request("hola")).Text)
	clk.Advance(5*time.Minute + time.Second)
	out := svc.Respond(context.Background(), request("hola"))
	require.Equal(t, Reply{Text: "second", Source: SourceAI}, out)
	require.Equal(t, 2, gen.callCount())
}

func TestRespond_ExpiredEntryServedWhenCallFails(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	gen := &stubGenerator{answers: []string{"first"}}
	svc := newTestService(t, gen, Config{CacheTTL: 5 * time.Minute}, WithCacheClock(clk.Now))

	svc.Respond(context.Background(), request("hola"))
	clk.Advance(10 * time.Minute)
	gen.setErr(errors.New("network down"))

	out := svc.Respond(context.Background(), request("hola"))
	require.Equal(t, Reply{Text: "first", Source: SourceStale}, out)
	require.Equal(t, 2, gen.callCount())
}

func TestRespond_CannedFallbackWithoutCache(t *testing.T) {
	gen := &stubGenerator{err: errors.New("network down")}
	svc := newTestService(t, gen, Config{})

	req := Request{Input: "qué es blockchain", Intent: domain.IntentTechnical, Language: domain.LanguageES}
	out := svc.Respond(context.Background(), req)
	require.Equal(t, SourceFallback, out.Source)
	require.Equal(t, knowledge.Fallback(domain.IntentTechnical, domain.LanguageES), out.Text)
	require.Contains(t, out.Text, "blockchain")
}

func TestRespond_EmptyCompletionIsFailure(t *testing.T) {
	gen := &stubGenerator{answers: []string{"   "}}
	svc := newTestService(t, gen, Config{})

	out := svc.Respond(context.Background(), request("hola"))
	require.Equal(t, SourceFallback, out.Source)
	require.NotEmpty(t, out.Text)
}

func TestRespond_TimeoutFallsBack(t *testing.T) {
	gen := &stubGenerator{delay: time.Second}
	svc := newTestService(t, gen, Config{CallTimeout: 20 * time.Millisecond})

	out := svc.Respond(context.Background(), request("hola"))
	require.Equal(t, SourceFallback, out.Source)
}

func TestRespond_SpacesCallsByMinInterval(t *testing.T) {
	gen := &stubGenerator{}
	interval := 100 * time.Millisecond
	svc := newTestService(t, gen, Config{MinInterval: interval})

	svc.Respond(context.Background(), request("first question"))
	svc.Respond(context.Background(), request("second question"))
	svc.Respond(context.Background(), request("third question"))

	require.Len(t, gen.times, 3)
	for i := 1; i < len(gen.times); i++ {
		gap := gen.times[i].Sub(gen.times[i-1])
		require.GreaterOrEqual(t, gap, interval-5*time.Millisecond, "call %d dispatched after %s", i, gap)
	}
}

func TestRespond_CollapsesConcurrentIdenticalRequests(t *testing.T) {
	gen := &stubGenerator{delay: 50 * time.Millisecond, answers: []string{"shared"}}
	svc := newTestService(t, gen, Config{})

	var wg sync.WaitGroup
	replies := make([]Reply, 8)
	for i := range replies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			replies[i] = svc.Respond(context.Background(), request("same question"))
		}(i)
	}
	wg.Wait()

	require.Equal(t, 1, gen.callCount())
	for _, r := range replies {
		require.Equal(t, "shared", r.Text)
	}
}

func TestRespond_CancelledCallerDoesNotFailSharedCall(t *testing.T) {
	gen := &stubGenerator{delay: 100 * time.Millisecond, answers: []string{"shared"}}
	svc := newTestService(t, gen, Config{})

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan Reply, 1)
	go func() { leader <- svc.Respond(leaderCtx, request("same question")) }()
	require.Eventually(t, func() bool { return gen.callCount() == 1 }, time.Second, time.Millisecond)

	follower := make(chan Reply, 1)
	go func() { follower <- svc.Respond(context.Background(), request("same question")) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	require.Equal(t, SourceFallback, (<-leader).Source)
	got := <-follower
	require.Equal(t, SourceAI, got.Source)
	require.Equal(t, "shared", got.Text)
	require.Equal(t, 1, gen.callCount())

	cached := svc.Respond(context.Background(), request("same question"))
	require.Equal(t, SourceCache, cached.Source)
}

func TestRespond_PromptCarriesKnowledgeAndHistory(t *testing.T) {
	gen := &stubGenerator{}
	svc := newTestService(t, gen, Config{HistoryLimit: 2})

	req := Request{
		Input:    "¿y cuál es la más rara?",
		Intent:   domain.IntentRarity,
		Language: domain.LanguageES,
		History: []domain.ConversationMessage{
			{Seq: 1, Text: "old question", Sender: domain.SenderUser},
			{Seq: 1, Text: "old answer", Sender: domain.SenderBot},
			{Seq: 2, Text: "háblame de CHIDO", Sender: domain.SenderUser},
			{Seq: 2, Text: "CHIDO es un piloto", Sender: domain.SenderBot},
		},
	}
	svc.Respond(context.Background(), req)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	require.Contains(t, p, "Knowledge Base:")
	require.Contains(t, p, "C.H.I.D.O. (id CHIDO)")
	require.Contains(t, p, "Playa del Carmen")
	require.Contains(t, p, "Answer in Spanish.")
	require.Contains(t, p, "User: háblame de CHIDO")
	require.Contains(t, p, "Assistant: CHIDO es un piloto")
	require.NotContains(t, p, "old question")
	require.Contains(t, p, "Question:\n¿y cuál es la más rara?")
}

func TestCacheKey_Deterministic(t *testing.T) {
	a := CacheKey(request("Hola  Mundo"))
	b := CacheKey(request("hola mundo"))
	require.Equal(t, a, b)
	require.Len(t, a, 64)

	withRecord := request("hola mundo")
	withRecord.RecordID = "CHIDO"
	require.NotEqual(t, a, CacheKey(withRecord))

	withHistory := request("hola mundo")
	withHistory.History = []domain.ConversationMessage{{Text: "x"}}
	require.Equal(t, a, CacheKey(withHistory))
}
