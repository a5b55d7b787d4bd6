package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rental-marketplace-backend/reservations/services"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLineStore persists each user's reservation line set as one JSON
// document. Flat ordered list, no secondary indices; merge keys are derived
// from the lines themselves.
type RedisLineStore struct {
	client *redis.Client
}

func NewRedisLineStore(client *redis.Client) *RedisLineStore {
	return &RedisLineStore{client: client}
}

func cartKey(userID uuid.UUID) string {
	return fmt.Sprintf("cart:%s", userID)
}

func (s *RedisLineStore) Load(ctx context.Context, userID uuid.UUID) ([]services.ReservationLine, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cart from redis: %w", err)
	}

	var lines []services.ReservationLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode cart payload: %w", err)
	}
	return lines, nil
}

func (s *RedisLineStore) Save(ctx context.Context, userID uuid.UUID, lines []services.ReservationLine) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode cart payload: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write cart to redis: %w", err)
	}
	return nil
}

func (s *RedisLineStore) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to erase cart from redis: %w", err)
	}
	return nil
}
