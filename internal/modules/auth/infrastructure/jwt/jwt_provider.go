package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/elimu/instructor-backend/internal/modules/auth/domain"
)

type CustomClaims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for identity that expires after duration.
func GenerateToken(secret string, duration time.Duration, identity domain.Identity) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		UserID: identity.UserID,
		Email:  identity.Email,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken verifies an HS256 token against secret and returns its claims.
func ValidateToken(tokenStr string, secret string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenMalformed
}

// LocalValidator checks tokens signed with a shared secret.
type LocalValidator struct {
	secret string
}

func NewLocalValidator(secret string) *LocalValidator {
	return &LocalValidator{secret: secret}
}

func (v *LocalValidator) Validate(_ context.Context, token string) (domain.Identity, error) {
	claims, err := ValidateToken(token, v.secret)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	identity := domain.Identity{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
	if identity.UserID == "" {
		identity.UserID = claims.Subject
	}
	if identity.UserID == "" {
		return domain.Identity{}, fmt.Errorf("%w: token has no subject", domain.ErrInvalidToken)
	}
	if identity.Role == "" {
		identity.Role = domain.RoleInstructor
	}
	return identity, nil
}

// DecodeUnverified reads identity claims without checking the signature. It is only
// used after the token has been accepted by the central auth service.
func DecodeUnverified(token string) (domain.Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return domain.Identity{}, err
	}

	identity := domain.Identity{
		UserID: firstString(claims, "sub", "id", "user_id", "_id"),
		Email:  firstString(claims, "email"),
		Role:   firstString(claims, "role"),
	}
	if identity.UserID == "" {
		return domain.Identity{}, fmt.Errorf("token has no user id claim")
	}
	if identity.Role == "" {
		identity.Role = domain.RoleInstructor
	}
	return identity, nil
}

func firstString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}
