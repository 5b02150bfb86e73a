package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/elimu/instructor-backend/internal/modules/settings/domain"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

const settingsColumns = `email, first_name, last_name, profile_picture, phone_number, bio, preferences, updated_at`

type settingsRow struct {
	Email          string                             `db:"email"`
	FirstName      string                             `db:"first_name"`
	LastName       string                             `db:"last_name"`
	ProfilePicture string                             `db:"profile_picture"`
	PhoneNumber    string                             `db:"phone_number"`
	Bio            string                             `db:"bio"`
	Preferences    database.JSONB[domain.Preferences] `db:"preferences"`
	UpdatedAt      time.Time                          `db:"updated_at"`
}

type PgSettingsRepository struct {
	db *sqlx.DB
}

func NewPgSettingsRepository(db *sqlx.DB) *PgSettingsRepository {
	return &PgSettingsRepository{db: db}
}

func (r *PgSettingsRepository) FindByEmail(ctx context.Context, email string) (*domain.Settings, error) {
	var row settingsRow
	query := `SELECT ` + settingsColumns + ` FROM user_settings WHERE email = $1`
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return &domain.Settings{
		Email:          row.Email,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		ProfilePicture: row.ProfilePicture,
		PhoneNumber:    row.PhoneNumber,
		Bio:            row.Bio,
		Preferences:    row.Preferences.V,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func (r *PgSettingsRepository) Upsert(ctx context.Context, s *domain.Settings) error {
	query := `
		INSERT INTO user_settings (` + settingsColumns + `)
		VALUES (:email, :first_name, :last_name, :profile_picture, :phone_number, :bio, :preferences, :updated_at)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_picture = EXCLUDED.profile_picture,
			phone_number = EXCLUDED.phone_number,
			bio = EXCLUDED.bio,
			preferences = EXCLUDED.preferences,
			updated_at = EXCLUDED.updated_at
	`
	row := settingsRow{
		Email:          s.Email,
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		ProfilePicture: s.ProfilePicture,
		PhoneNumber:    s.PhoneNumber,
		Bio:            s.Bio,
		Preferences:    database.JSONB[domain.Preferences]{V: s.Preferences},
		UpdatedAt:      s.UpdatedAt,
	}
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
