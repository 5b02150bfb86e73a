package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrInvalidSettings  = errors.New("invalid settings")
)

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	DefaultLanguage = "en"
)

type Preferences struct {
	Notifications bool   `json:"notifications" bson:"notifications"`
	Language      string `json:"language" bson:"language"`
	Theme         string `json:"theme" bson:"theme"`
}

// Settings are the profile and preferences of one user, keyed by email.
type Settings struct {
	Email          string      `json:"email" bson:"_id"`
	FirstName      string      `json:"firstName" bson:"firstName"`
	LastName       string      `json:"lastName" bson:"lastName"`
	ProfilePicture string      `json:"profilePicture" bson:"profilePicture"`
	PhoneNumber    string      `json:"phoneNumber" bson:"phoneNumber"`
	Bio            string      `json:"bio" bson:"bio"`
	Preferences    Preferences `json:"preferences" bson:"preferences"`
	UpdatedAt      time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// Defaults are returned for a user who never saved settings.
func Defaults(email string) Settings {
	return Settings{
		Email: email,
		Preferences: Preferences{
			Notifications: true,
			Language:      DefaultLanguage,
			Theme:         ThemeLight,
		},
	}
}

type PreferencesInput struct {
	Notifications *bool   `json:"notifications,omitempty"`
	Language      *string `json:"language,omitempty"`
	Theme         *string `json:"theme,omitempty"`
}

// UpdateSettingsInput changes only the fields that are set. The email cannot be changed.
type UpdateSettingsInput struct {
	FirstName      *string           `json:"firstName,omitempty"`
	LastName       *string           `json:"lastName,omitempty"`
	ProfilePicture *string           `json:"profilePicture,omitempty"`
	PhoneNumber    *string           `json:"phoneNumber,omitempty"`
	Bio            *string           `json:"bio,omitempty"`
	Preferences    *PreferencesInput `json:"preferences,omitempty"`
}

func (in UpdateSettingsInput) Validate() error {
	p := in.Preferences
	if p == nil {
		return nil
	}
	if p.Language != nil && strings.TrimSpace(*p.Language) == "" {
		return fmt.Errorf("%w: language cannot be empty", ErrInvalidSettings)
	}
	if p.Theme != nil {
		switch *p.Theme {
		case ThemeLight, ThemeDark, ThemeSystem:
		default:
			return fmt.Errorf("%w: unknown theme %q", ErrInvalidSettings, *p.Theme)
		}
	}
	return nil
}

// Apply copies the set fields onto s.
func (in UpdateSettingsInput) Apply(s *Settings) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&s.FirstName, in.FirstName)
	set(&s.LastName, in.LastName)
	set(&s.ProfilePicture, in.ProfilePicture)
	set(&s.PhoneNumber, in.PhoneNumber)
	set(&s.Bio, in.Bio)

	if p := in.Preferences; p != nil {
		if p.Notifications != nil {
			s.Preferences.Notifications = *p.Notifications
		}
		set(&s.Preferences.Language, p.Language)
		if p.Theme != nil {
			s.Preferences.Theme = *p.Theme
		}
	}
}

type SettingsRepository interface {
	// FindByEmail returns ErrSettingsNotFound when the user never saved settings.
	FindByEmail(ctx context.Context, email string) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
}
