package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/elimu/instructor-backend/internal/modules/notification/domain"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

const notificationColumns = `id, user_id, title, message, type, category, metadata, is_read, is_active, created_at, updated_at`

type notificationRow struct {
	ID        string                            `db:"id"`
	UserID    string                            `db:"user_id"`
	Title     string                            `db:"title"`
	Message   string                            `db:"message"`
	Type      string                            `db:"type"`
	Category  string                            `db:"category"`
	Metadata  database.JSONB[map[string]string] `db:"metadata"`
	IsRead    bool                              `db:"is_read"`
	IsActive  bool                              `db:"is_active"`
	CreatedAt time.Time                         `db:"created_at"`
	UpdatedAt time.Time                         `db:"updated_at"`
}

func toRow(n *domain.Notification) notificationRow {
	return notificationRow{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      string(n.Type),
		Category:  string(n.Category),
		Metadata:  database.JSONB[map[string]string]{V: n.Metadata},
		IsRead:    n.Read,
		IsActive:  n.Active,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

func (r notificationRow) toDomain() domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Message:   r.Message,
		Type:      domain.NotificationType(r.Type),
		Category:  domain.Category(r.Category),
		Metadata:  r.Metadata.V,
		Read:      r.IsRead,
		Active:    r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type PgNotificationRepository struct {
	db *sqlx.DB
}

func NewPgNotificationRepository(db *sqlx.DB) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (:id, :user_id, :title, :message, :type, :category, :metadata, :is_read, :is_active, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, toRow(n)); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *PgNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *PgNotificationRepository) FindActiveByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Notification, error) {
	query := `
		SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 AND is_active = TRUE
		ORDER BY created_at DESC
	`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT $2 OFFSET $3`
		args = append(args, limit, offset)
	}

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]domain.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PgNotificationRepository) MarkAsRead(ctx context.Context, id string, at time.Time) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = $2
		WHERE id = $1
		RETURNING ` + notificationColumns
	return r.getOne(ctx, query, id, at)
}

func (r *PgNotificationRepository) MarkAllAsRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE, updated_at = $2
		WHERE user_id = $1 AND is_read = FALSE AND is_active = TRUE
	`
	res, err := r.db.ExecContext(ctx, query, userID, at)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.RowsAffected()
}

func (r *PgNotificationRepository) SoftDelete(ctx context.Context, id string, at time.Time) (*domain.Notification, error) {
	query := `
		UPDATE notifications
		SET is_active = FALSE, updated_at = $2
		WHERE id = $1
		RETURNING ` + notificationColumns
	return r.getOne(ctx, query, id, at)
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE AND is_active = TRUE
	`
	var count int64
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *PgNotificationRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Notification, error) {
	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("query notification: %w", err)
	}
	n := row.toDomain()
	return &n, nil
}
