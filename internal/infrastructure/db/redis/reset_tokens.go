package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clubroster/membership/internal/core/domain"
)

// ResetTokenStore keeps password reset tokens until used or expired.
// Key format: reset:<token>
type ResetTokenStore struct {
	client *redis.Client
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client}
}

func (s *ResetTokenStore) Issue(ctx context.Context, token, accountID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}
	return nil
}

// Consume reads and deletes the token atomically so it can be used once.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	accountID, err := s.client.GetDel(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return accountID, nil
}

func (s *ResetTokenStore) key(token string) string {
	return "reset:" + token
}
