package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"homeserve/models"

	"github.com/go-redis/redis/v8"
)

const (
	statePrefix = "tracking:booking:"
	activeKey   = "tracking:active"
	stateTTL    = 24 * time.Hour
)

// RedisStore keeps one tracking document per booking plus the set of
// bookings still moving.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, st *models.TrackingState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal tracking state: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, statePrefix+st.BookingID, data, stateTTL)
		if st.Status == models.TrackingArrived {
			pipe.SRem(ctx, activeKey, st.BookingID)
		} else {
			pipe.SAdd(ctx, activeKey, st.BookingID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store tracking state: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, bookingID string) (*models.TrackingState, error) {
	data, err := s.client.Get(ctx, statePrefix+bookingID).Bytes()
	if err == redis.Nil {
		return nil, ErrTrackingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tracking state: %w", err)
	}
	var st models.TrackingState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse tracking state: %w", err)
	}
	return &st, nil
}

// Active lists bookings whose professional has not arrived yet.
func (s *RedisStore) Active(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, activeKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list active tracking: %w", err)
	}
	return ids, nil
}

// Forget drops a booking from the active set, e.g. after its state expired.
func (s *RedisStore) Forget(ctx context.Context, bookingID string) error {
	return s.client.SRem(ctx, activeKey, bookingID).Err()
}
