package central

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elimu/instructor-backend/internal/modules/auth/domain"
	"github.com/elimu/instructor-backend/internal/modules/auth/infrastructure/jwt"
)

type validateRequest struct {
	Token string `json:"token"`
}

type validateResponse struct {
	IsValid bool `json:"isValid"`
	User    *struct {
		ID      string `json:"id"`
		MongoID string `json:"_id"`
		Email   string `json:"email"`
		Role    string `json:"role"`
	} `json:"user"`
}

// Validator asks the centralized auth service whether a token is valid.
// Each call is a single POST with a fixed timeout; results are not cached.
type Validator struct {
	baseURL string
	client  *http.Client
}

func NewValidator(baseURL string, timeout time.Duration) *Validator {
	return &Validator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (v *Validator) Validate(ctx context.Context, token string) (domain.Identity, error) {
	body, err := json.Marshal(validateRequest{Token: token})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/auth/validate", bytes.NewReader(body))
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrValidationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Identity{}, fmt.Errorf("%w: auth service returned %d", domain.ErrValidationFailed, resp.StatusCode)
	}

	var out validateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: decode response: %v", domain.ErrValidationFailed, err)
	}
	if !out.IsValid {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	claims, claimsErr := jwt.DecodeUnverified(token)
	if out.User == nil {
		if claimsErr != nil {
			return domain.Identity{}, fmt.Errorf("%w: no identity in accepted token: %v", domain.ErrValidationFailed, claimsErr)
		}
		return claims, nil
	}

	// The service may return a partial user; the token claims fill the gaps.
	identity := domain.Identity{UserID: out.User.ID, Email: out.User.Email, Role: out.User.Role}
	if identity.UserID == "" {
		identity.UserID = out.User.MongoID
	}
	if identity.UserID == "" {
		identity.UserID = claims.UserID
	}
	if identity.Email == "" {
		identity.Email = claims.Email
	}
	if identity.Role == "" {
		identity.Role = claims.Role
	}
	if identity.UserID == "" {
		return domain.Identity{}, fmt.Errorf("%w: no identity in accepted token", domain.ErrValidationFailed)
	}
	if identity.Role == "" {
		identity.Role = domain.RoleInstructor
	}
	return identity, nil
}
