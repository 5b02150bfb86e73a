package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/elimu/instructor-backend/internal/modules/settings/domain"
)

type SettingsService struct {
	repo domain.SettingsRepository
	now  func() time.Time
}

func NewSettingsService(repo domain.SettingsRepository) *SettingsService {
	return &SettingsService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the stored settings, or the defaults when none were saved.
func (s *SettingsService) Get(ctx context.Context, email string) (*domain.Settings, error) {
	settings, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrSettingsNotFound) {
		d := domain.Defaults(email)
		return &d, nil
	}
	return settings, err
}

// Update applies the changes on top of the current settings and saves the result.
func (s *SettingsService) Update(ctx context.Context, email string, in domain.UpdateSettingsInput) (*domain.Settings, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	settings, err := s.Get(ctx, email)
	if err != nil {
		return nil, err
	}
	in.Apply(settings)
	settings.Email = email
	settings.UpdatedAt = s.now()
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "settings updated", "email", email)
	return settings, nil
}
