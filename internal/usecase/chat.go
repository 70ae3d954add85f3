package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"nft-gallery-agent/internal/assistant"
	"nft-gallery-agent/internal/conversation"
	"nft-gallery-agent/internal/domain"
	"nft-gallery-agent/internal/intent"
	"nft-gallery-agent/internal/metadata"
	"nft-gallery-agent/internal/suggest"
)

const (
	defaultMaxMessageLen = 500
	historyWindow        = 4
)

// Reply sources besides the assistant's own.
const (
	SourceRules = "rules"
	SourceHelp  = "help"
)

type Catalog interface {
	FindInText(text string) (domain.CatalogRecord, bool)
	Get(id string) (domain.CatalogRecord, bool)
}

type Formatter interface {
	Format(ctx context.Context, rec *domain.CatalogRecord, in domain.Intent, lang domain.Language) (string, bool)
	Help(lang domain.Language) string
}

type Responder interface {
	Respond(ctx context.Context, req assistant.Request) assistant.Reply
}

type MetadataFetcher interface {
	Fetch(ctx context.Context, rec domain.CatalogRecord) metadata.Result
}

type Conversations interface {
	Begin(conversationID, text string) (uint64, error)
	Complete(conversationID string, seq uint64, reply string) bool
	Abort(conversationID string, seq uint64)
	History(conversationID string, limit int) []domain.ConversationMessage
}

type ChatService struct {
	catalog       Catalog
	formatter     Formatter
	assistant     Responder
	conversations Conversations
	metadata      MetadataFetcher
	maxMessageLen int
}

type ChatInput struct {
	Message        string
	ConversationID string
}

type ChatOutput struct {
	Reply          string
	ConversationID string
	Intent         domain.Intent
	Language       domain.Language
	Source         string
	RecordID       string
	Suggestions    []domain.Suggestion
}

type RecordOutput struct {
	Record          domain.CatalogRecord
	Metadata        domain.NFTMetadata
	MetadataFetched bool
}

// NewChatService wires the chat pipeline. responder may be nil, in which
// case unresolved messages get the help text.
func NewChatService(c Catalog, f Formatter, responder Responder, conv Conversations, md MetadataFetcher, maxMessageLen int) (*ChatService, error) {
	if c == nil {
		return nil, errors.New("usecase: catalog must not be nil")
	}
	if f == nil {
		return nil, errors.New("usecase: formatter must not be nil")
	}
	if conv == nil {
		return nil, errors.New("usecase: conversation store must not be nil")
	}
	if md == nil {
		return nil, errors.New("usecase: metadata fetcher must not be nil")
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessageLen
	}
	return &ChatService{
		catalog:       c,
		formatter:     f,
		assistant:     responder,
		conversations: conv,
		metadata:      md,
		maxMessageLen: maxMessageLen,
	}, nil
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.maxMessageLen {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		convID = newUUID()
	}

	// History is read before Begin so it holds only answered turns.
	history := s.conversations.History(convID, historyWindow)

	seq, err := s.conversations.Begin(convID, message)
	if err != nil {
		if errors.Is(err, conversation.ErrTurnPending) {
			return ChatOutput{}, newError(ErrorConflict, "turn_pending", err)
		}
		return ChatOutput{}, newError(ErrorInternal, "conversation_begin_error", err)
	}
	completed := false
	defer func() {
		if !completed {
			s.conversations.Abort(convID, seq)
		}
	}()

	lang := intent.DetectLanguage(message)
	kind := intent.Classify(message)
	out := ChatOutput{
		ConversationID: convID,
		Intent:         kind,
		Language:       lang,
	}

	var recPtr *domain.CatalogRecord
	if rec, ok := s.catalog.FindInText(message); ok {
		recPtr = &rec
		out.RecordID = rec.ID
	}

	if text, ok := s.formatter.Format(ctx, recPtr, kind, lang); ok {
		out.Reply, out.Source = text, SourceRules
	} else if s.assistant != nil {
		reply := s.assistant.Respond(ctx, assistant.Request{
			Input:    message,
			Intent:   kind,
			Language: lang,
			RecordID: out.RecordID,
			History:  history,
		})
		out.Reply, out.Source = reply.Text, string(reply.Source)
	} else {
		out.Reply, out.Source = s.formatter.Help(lang), SourceHelp
	}

	if ctx.Err() != nil {
		return ChatOutput{}, newError(ErrorInternal, "request_cancelled", ctx.Err())
	}
	completed = true
	if !s.conversations.Complete(convID, seq, out.Reply) {
		slog.Warn("usecase: discarded stale reply", "conversationId", convID, "seq", seq)
	}

	out.Suggestions = suggest.Suggest(userTexts(history), message)
	return out, nil
}

// Suggestions returns quick replies for a partially typed input.
func (s *ChatService) Suggestions(input string) []domain.Suggestion {
	return suggest.Suggest(nil, input)
}

func (s *ChatService) QuickActions() []domain.Suggestion {
	return suggest.QuickActions()
}

// Record returns a catalog record with its metadata document.
func (s *ChatService) Record(ctx context.Context, id string) (RecordOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return RecordOutput{}, newError(ErrorInvalidInput, "empty_record_id", nil)
	}
	rec, ok := s.catalog.Get(id)
	if !ok {
		return RecordOutput{}, newError(ErrorNotFound, "record_not_found", nil)
	}
	md := s.metadata.Fetch(ctx, rec)
	return RecordOutput{Record: rec, Metadata: md.Metadata, MetadataFetched: md.Fetched}, nil
}

func userTexts(history []domain.ConversationMessage) []string {
	var out []string
	for _, m := range history {
		if m.Sender == domain.SenderUser {
			out = append(out, m.Text)
		}
	}
	return out
}

var newUUID = func() string {
	return uuid.NewString()
}
