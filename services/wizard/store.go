package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"homeserve/models"

	"github.com/go-redis/redis/v8"
)

const (
	sessionPrefix = "wizard:session:"
	handoffPrefix = "wizard:handoff:"

	maxUpdateAttempts = 3
)

// RedisSessionStore keeps sessions as JSON documents with a sliding TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(id string) string { return sessionPrefix + id }

func (s *RedisSessionStore) Create(ctx context.Context, sess *models.WizardSession) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal booking session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sess.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store booking session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.WizardSession, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking session: %w", err)
	}
	return decodeSession(data)
}

// Update applies fn under WATCH so concurrent requests on one session cannot
// overwrite each other. A lost race re-runs fn on the fresh document.
func (s *RedisSessionStore) Update(ctx context.Context, id string, fn UpdateFunc) (*models.WizardSession, error) {
	key := sessionKey(id)
	var result *models.WizardSession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}
		sess, err := decodeSession(data)
		if err != nil {
			return err
		}
		changed, err := fn(sess)
		if err != nil {
			return err
		}
		result = sess
		if !changed {
			return nil
		}
		sess.UpdatedAt = time.Now().UTC()
		updated, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("failed to marshal booking session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConcurrentUpdate
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete booking session: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (*models.WizardSession, error) {
	var sess models.WizardSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse booking session: %w", err)
	}
	return &sess, nil
}

// RedisHandoffStore holds confirmations until read once or expired.
type RedisHandoffStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHandoffStore(client *redis.Client, ttl time.Duration) *RedisHandoffStore {
	return &RedisHandoffStore{client: client, ttl: ttl}
}

func (h *RedisHandoffStore) Put(ctx context.Context, c *models.Confirmation) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal confirmation: %w", err)
	}
	if err := h.client.Set(ctx, handoffPrefix+c.Token, data, h.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store confirmation: %w", err)
	}
	return nil
}

func (h *RedisHandoffStore) Take(ctx context.Context, token string) (*models.Confirmation, error) {
	data, err := h.client.GetDel(ctx, handoffPrefix+token).Bytes()
	if err == redis.Nil {
		return nil, ErrHandoffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmation: %w", err)
	}
	var c models.Confirmation
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse confirmation: %w", err)
	}
	return &c, nil
}
