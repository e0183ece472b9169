package utils

import (
	"context"
	"crypto/subtle"
	"fmt"
	"math/rand/v2"
	"time"

	"HospitalMS/cache"
)

const ResetCodeExpiry = 15 * time.Minute

// GenerateResetCode generates a random 6-digit reset code.
func GenerateResetCode() string {
	return fmt.Sprintf("%06d", rand.IntN(1000000))
}

// ResetCodeStore keeps reset codes in Redis.
type ResetCodeStore struct {
	cache *cache.Cache
}

func NewResetCodeStore(c *cache.Cache) *ResetCodeStore {
	return &ResetCodeStore{cache: c}
}

func resetCodeKey(email string) string {
	return "reset_code:" + email
}

// Save sets the reset code for a given email with an expiration time of 15 minutes.
func (s *ResetCodeStore) Save(ctx context.Context, email, code string) error {
	return s.cache.Set(ctx, resetCodeKey(email), code, ResetCodeExpiry)
}

// Consume checks the code and deletes it on success.
func (s *ResetCodeStore) Consume(ctx context.Context, email, code string) error {
	stored, err := s.cache.Get(ctx, resetCodeKey(email))
	if err != nil {
		return err
	}
	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidResetCode
	}
	return s.cache.Delete(ctx, resetCodeKey(email))
}
