package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homeserve/models"

	"github.com/go-redis/redis/v8"
)

const (
	conversationPrefix = "chat:conversation:"
	messagesPrefix     = "chat:messages:"

	// MaxHistory caps the stored messages per conversation.
	MaxHistory      = 200
	conversationTTL = 7 * 24 * time.Hour
)

// RedisStore keeps conversations as JSON and their messages as a capped list.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveConversation(ctx context.Context, c *models.Conversation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := s.client.Set(ctx, conversationPrefix+c.ID, data, conversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to store conversation: %w", err)
	}
	return nil
}

func (s *RedisStore) Conversation(ctx context.Context, id string) (*models.Conversation, error) {
	data, err := s.client.Get(ctx, conversationPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	var c models.Conversation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse conversation: %w", err)
	}
	return &c, nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, m *models.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	key := messagesPrefix + m.ConversationID
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.LTrim(ctx, key, -MaxHistory, -1)
		pipe.Expire(ctx, key, conversationTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (s *RedisStore) Messages(ctx context.Context, conversationID string) ([]models.Message, error) {
	raw, err := s.client.LRange(ctx, messagesPrefix+conversationID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	out := make([]models.Message, 0, len(raw))
	for _, r := range raw {
		var m models.Message
		if err := json.Unmarshal([]byte(r), &m); err != nil {
			return nil, fmt.Errorf("failed to parse message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}
