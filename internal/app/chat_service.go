package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/muralianand12345/AI-API/internal/ai"
	"github.com/muralianand12345/AI-API/internal/memory"
	"github.com/muralianand12345/AI-API/internal/model"
)

// ErrChatFailed is the single error kind chat callers see for generation or
// internal failures. The wrapped cause is for logging only.
var ErrChatFailed = errors.New("chat failed")

// DocumentSearcher retrieves relevant chunk texts for a user's query.
type DocumentSearcher interface {
	Search(ctx context.Context, username, query string) ([]string, error)
}

// Generator invokes the language model with a composed prompt.
type Generator interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// ConversationMemory is the bounded per-user turn history.
type ConversationMemory interface {
	AppendTurn(username, userText, assistantText string)
	RenderRecent(username string, maxTurns int) []memory.Turn
	Clear(username string)
}

// TurnPublisher archives completed turns asynchronously.
type TurnPublisher interface {
	Publish(ctx context.Context, msg model.Message) error
}

// HistoryCache fronts the archived transcript reads.
type HistoryCache interface {
	GetHistory(ctx context.Context, username string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, username string, messages []model.Message) error
	DeleteHistory(ctx context.Context, username string) error
	MarkDirty(ctx context.Context, username string) error
	IsDirty(ctx context.Context, username string) (bool, error)
}

// MessageArchive is the durable transcript store.
type MessageArchive interface {
	ListByUsername(username string, limit int) ([]model.Message, error)
	DeleteByUsername(username string) error
}

// ChatService orchestrates a chat exchange: retrieve document context, render
// recent memory, call the model, and record the new turn pair.
type ChatService struct {
	docs         DocumentSearcher
	mem          ConversationMemory
	generator    Generator
	publisher    TurnPublisher
	historyCache HistoryCache
	archive      MessageArchive
	systemPrompt string
	bufferSize   int
}

func NewChatService(
	docs DocumentSearcher,
	mem ConversationMemory,
	generator Generator,
	publisher TurnPublisher,
	historyCache HistoryCache,
	archive MessageArchive,
	systemPrompt string,
	bufferSize int,
) *ChatService {
	if bufferSize <= 0 {
		bufferSize = memory.DefaultBufferSize
	}
	return &ChatService{
		docs:         docs,
		mem:          mem,
		generator:    generator,
		publisher:    publisher,
		historyCache: historyCache,
		archive:      archive,
		systemPrompt: systemPrompt,
		bufferSize:   bufferSize,
	}
}

// Chat answers the user's message with document context and conversational
// memory. Retrieval failures degrade to an empty context; generation failures
// abort the exchange with ErrChatFailed.
func (s *ChatService) Chat(ctx context.Context, username, message string) (string, error) {
	message = strings.TrimSpace(message)
	if username == "" || message == "" {
		return "", ErrInvalidInput
	}

	contextChunks, err := s.docs.Search(ctx, username, message)
	if err != nil {
		log.Printf("document search failed for %s, continuing without context: %v", username, err)
		contextChunks = nil
	}

	promptMessages := s.buildPromptMessages(username, message, contextChunks)

	reply, err := s.generator.Complete(ctx, promptMessages)
	if err != nil {
		return "", errors.Join(ErrChatFailed, err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		reply = "The model returned an empty response."
	}

	s.mem.AppendTurn(username, message, reply)
	s.archiveTurns(ctx, username, message, reply)

	return reply, nil
}

func (s *ChatService) buildPromptMessages(username, message string, contextChunks []string) []ai.ChatMessage {
	recent := s.mem.RenderRecent(username, s.bufferSize)

	messages := make([]ai.ChatMessage, 0, len(recent)+3)
	messages = append(messages, ai.ChatMessage{
		Role:    "system",
		Content: s.systemPrompt,
	})
	if len(contextChunks) > 0 {
		messages = append(messages, ai.ChatMessage{
			Role:    "system",
			Content: "Context from user documents:\n" + strings.Join(contextChunks, "\n\n"),
		})
	}
	for _, turn := range recent {
		messages = append(messages, ai.ChatMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, ai.ChatMessage{
		Role:    "user",
		Content: message,
	})
	return messages
}

// archiveTurns hands the turn pair to the archive queue. Archival is
// best-effort; a broker outage must not fail an otherwise successful chat.
func (s *ChatService) archiveTurns(ctx context.Context, username, userText, assistantText string) {
	if s.publisher == nil {
		return
	}
	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, username)
		_ = s.historyCache.DeleteHistory(ctx, username)
	}

	now := time.Now()
	pair := []model.Message{
		{Username: username, Role: memory.RoleUser, Content: userText, CreatedAt: now},
		{Username: username, Role: memory.RoleAssistant, Content: assistantText, CreatedAt: now},
	}
	for _, msg := range pair {
		if err := s.publisher.Publish(ctx, msg); err != nil {
			log.Printf("archive turn publish failed for %s: %v", username, err)
			return
		}
	}
}

// History returns the archived transcript, via cache when it is clean.
func (s *ChatService) History(ctx context.Context, username string, limit int) ([]model.Message, error) {
	if username == "" {
		return nil, ErrInvalidInput
	}
	if s.archive == nil {
		return nil, nil
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, username)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, username); cacheErr == nil && hit {
				return trimMessages(cached, limit), nil
			}
		}
	}

	messages, err := s.archive.ListByUsername(username, limit)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, username); dirtyErr == nil && !dirty {
			_ = s.historyCache.SetHistory(ctx, username, messages)
		}
	}
	return messages, nil
}

// ClearHistory wipes the user's conversational state: the in-memory buffer,
// the cache entry, and the archived transcript. Clearing a user with no
// history succeeds.
func (s *ChatService) ClearHistory(ctx context.Context, username string) error {
	if username == "" {
		return ErrInvalidInput
	}

	s.mem.Clear(username)
	if s.historyCache != nil {
		_ = s.historyCache.DeleteHistory(ctx, username)
	}
	if s.archive != nil {
		if err := s.archive.DeleteByUsername(username); err != nil {
			return err
		}
	}
	return nil
}

func trimMessages(messages []model.Message, limit int) []model.Message {
	if limit <= 0 || limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}
