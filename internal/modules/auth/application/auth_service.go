package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/elimu/instructor-backend/internal/modules/auth/domain"
)

// AuthService resolves bearer tokens into identities.
type AuthService struct {
	validator domain.TokenValidator
}

func NewAuthService(validator domain.TokenValidator) *AuthService {
	return &AuthService{validator: validator}
}

func (s *AuthService) Authenticate(ctx context.Context, token string) (domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	identity, err := s.validator.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidToken) {
			slog.DebugContext(ctx, "token rejected", "error", err)
		} else {
			slog.WarnContext(ctx, "token validation failed", "error", err)
		}
		return domain.Identity{}, err
	}
	return identity, nil
}
