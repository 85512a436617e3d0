package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"homeserve/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyMessage         = errors.New("message text is empty")
	ErrMessageTooLong       = errors.New("message is too long")
	ErrUnknownSender        = errors.New("unknown message sender")
)

const maxMessageLen = 2000

// Store persists conversations and their history.
type Store interface {
	SaveConversation(ctx context.Context, c *models.Conversation) error
	Conversation(ctx context.Context, id string) (*models.Conversation, error)
	AppendMessage(ctx context.Context, m *models.Message) error
	Messages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// Publisher fans events out to live subscribers of a conversation.
type Publisher interface {
	Publish(conversationID string, event *Event)
}

// Thread is a conversation with its message history.
type Thread struct {
	Conversation models.Conversation `json:"conversation"`
	Messages     []models.Message    `json:"messages"`
}

type Service struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, publisher Publisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, publisher: publisher, logger: logger, now: time.Now}
}

// Open starts a conversation for userID.
func (s *Service) Open(ctx context.Context, userID, topic string) (*models.Conversation, error) {
	now := s.now().UTC()
	c := &models.Conversation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Topic:     strings.TrimSpace(topic),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if c.Topic == "" {
		c.Topic = "support"
	}
	if err := s.store.SaveConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Conversation returns the user's conversation.
func (s *Service) Conversation(ctx context.Context, userID, id string) (*models.Conversation, error) {
	c, err := s.store.Conversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, ErrConversationNotFound
	}
	return c, nil
}

func (s *Service) History(ctx context.Context, userID, id string) (*Thread, error) {
	c, err := s.Conversation(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.Messages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Thread{Conversation: *c, Messages: msgs}, nil
}

// SaveDraft stores the user's unsent input.
func (s *Service) SaveDraft(ctx context.Context, userID, id, text string) (*models.Conversation, error) {
	if len(text) > maxMessageLen {
		return nil, ErrMessageTooLong
	}
	c, err := s.Conversation(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c.Draft = text
	c.UpdatedAt = s.now().UTC()
	if err := s.store.SaveConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Send appends a message to the conversation the user owns. A user message
// clears the saved draft.
func (s *Service) Send(ctx context.Context, userID, id string, sender models.Sender, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > maxMessageLen {
		return nil, ErrMessageTooLong
	}
	switch sender {
	case models.SenderUser, models.SenderAgent, models.SenderSystem:
	default:
		return nil, ErrUnknownSender
	}
	c, err := s.Conversation(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: id,
		Sender:         sender,
		Text:           text,
		CreatedAt:      now,
	}
	if err := s.store.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}
	c.UpdatedAt = now
	if sender == models.SenderUser {
		c.Draft = ""
	}
	if err := s.store.SaveConversation(ctx, c); err != nil {
		s.logger.Warn("failed to update conversation after send", zap.String("conversationId", id), zap.Error(err))
	}
	if s.publisher != nil {
		s.publisher.Publish(id, &Event{Type: EventNewMessage, ConversationID: id, Payload: msg})
	}
	return msg, nil
}
