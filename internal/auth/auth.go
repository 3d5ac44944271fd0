package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	redisadapter "github.com/robertarktes/wedding-invites-and-seating/internal/adapters/redis"
	"github.com/robertarktes/wedding-invites-and-seating/internal/domain"
)

const CookieName = "wedding_admin_session"

// Service gates the admin surface behind a single shared password. Session
// tokens live in redis with a TTL; the cookie carries only the token.
type Service struct {
	passwordHash []byte
	sessions     *redisadapter.Sessions
	ttl          time.Duration
}

func NewService(password string, sessions *redisadapter.Sessions, ttl time.Duration) *Service {
	sum := sha256.Sum256([]byte(password))
	return &Service{
		passwordHash: []byte(hex.EncodeToString(sum[:])),
		sessions:     sessions,
		ttl:          ttl,
	}
}

func (s *Service) TTL() time.Duration {
	return s.ttl
}

func (s *Service) VerifyPassword(password string) bool {
	sum := sha256.Sum256([]byte(password))
	candidate := []byte(hex.EncodeToString(sum[:]))
	return subtle.ConstantTimeCompare(candidate, s.passwordHash) == 1
}

// Login verifies the password and mints a session token.
func (s *Service) Login(ctx context.Context, password string) (string, error) {
	if !s.VerifyPassword(password) {
		return "", domain.ErrInvalidInput
	}
	token := uuid.NewString()
	if err := s.sessions.Create(ctx, token, s.ttl); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) IsAuthenticated(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	ok, err := s.sessions.Exists(ctx, token)
	return err == nil && ok
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}
