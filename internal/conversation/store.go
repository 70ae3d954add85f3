// Package conversation keeps per-conversation chat logs in memory for the
// lifetime of the process. Nothing is persisted.
package conversation

import (
	"errors"
	"sync"
	"time"

	"nft-gallery-agent/internal/domain"
)

const (
	defaultMaxMessages = 40
	defaultIdleTTL     = 30 * time.Minute
)

// ErrTurnPending is returned by Begin while the previous message of the
// same conversation is still waiting for its reply.
var ErrTurnPending = errors.New("conversation: previous message is still pending")

type Store struct {
	maxMessages int
	idleTTL     time.Duration
	now         func() time.Time

	mu    sync.Mutex
	seq   uint64 // store-wide, so a recreated conversation never reuses a turn number
	convs map[string]*thread
}

type thread struct {
	pending    uint64 // zero when no turn is in flight
	messages   []domain.ConversationMessage
	lastActive time.Time
}

type Option func(*Store)

func WithMaxMessages(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxMessages = n
		}
	}
}

func WithIdleTTL(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		maxMessages: defaultMaxMessages,
		idleTTL:     defaultIdleTTL,
		now:         time.Now,
		convs:       make(map[string]*thread),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin appends a user message and returns its sequence number. Only one
// turn per conversation may be in flight.
func (s *Store) Begin(conversationID, text string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdle(now)

	c, ok := s.convs[conversationID]
	if !ok {
		c = &thread{}
		s.convs[conversationID] = c
	}
	if c.pending != 0 {
		return 0, ErrTurnPending
	}
	s.seq++
	c.pending = s.seq
	c.lastActive = now
	c.messages = append(c.messages, domain.ConversationMessage{
		Seq:    s.seq,
		Text:   text,
		Sender: domain.SenderUser,
		At:     now,
	})
	return s.seq, nil
}

// Complete appends the bot reply for seq. Replies for any turn other than
// the pending one are discarded and Complete reports false.
func (s *Store) Complete(conversationID string, seq uint64, reply string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[conversationID]
	if !ok || seq == 0 || c.pending != seq {
		return false
	}
	now := s.now()
	c.pending = 0
	c.lastActive = now
	c.messages = append(c.messages, domain.ConversationMessage{
		Seq:    seq,
		Text:   reply,
		Sender: domain.SenderBot,
		At:     now,
	})
	if over := len(c.messages) - s.maxMessages; over > 0 {
		c.messages = append([]domain.ConversationMessage(nil), c.messages[over:]...)
	}
	return true
}

// Abort drops the pending user message of seq so the conversation accepts
// input again.
func (s *Store) Abort(conversationID string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[conversationID]
	if !ok || seq == 0 || c.pending != seq {
		return
	}
	c.pending = 0
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Seq == seq {
			c.messages = append(c.messages[:i], c.messages[i+1:]...)
			break
		}
	}
}

// History returns up to limit of the most recent answered messages in
// order. A pending user message is not included.
func (s *Store) History(conversationID string, limit int) []domain.ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.convs[conversationID]
	if !ok || limit <= 0 {
		return nil
	}
	out := make([]domain.ConversationMessage, 0, len(c.messages))
	for _, m := range c.messages {
		if c.pending != 0 && m.Seq == c.pending {
			continue
		}
		out = append(out, m)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// evictIdle must be called with the lock held. A turn left pending for
// longer than the idle TTL is treated as abandoned.
func (s *Store) evictIdle(now time.Time) {
	for id, c := range s.convs {
		if now.Sub(c.lastActive) > s.idleTTL {
			delete(s.convs, id)
		}
	}
}
