package domain

import "time"

// ChatMessage is the provider-agnostic chat message shape used by the LLM
// integrations.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ConversationMessage is one entry of a conversation log. Seq is shared by a
// user message and the bot reply that answers it.
type ConversationMessage struct {
	Seq    uint64    `json:"seq"`
	Text   string    `json:"text"`
	Sender Sender    `json:"sender"`
	At     time.Time `json:"at"`
}

// CacheEntry is a generated response stored under the fingerprint of the
// input and context that produced it.
type CacheEntry struct {
	Key       string
	Response  string
	Timestamp time.Time
}
