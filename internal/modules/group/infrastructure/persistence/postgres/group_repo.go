package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/elimu/instructor-backend/internal/modules/group/domain"
)

const groupColumns = `id, name, description, instructor_id, student_ids, meeting_ids, created_at, updated_at`

type groupRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Description  string         `db:"description"`
	InstructorID string         `db:"instructor_id"`
	StudentIDs   pq.StringArray `db:"student_ids"`
	MeetingIDs   pq.StringArray `db:"meeting_ids"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func toRow(g *domain.Group) groupRow {
	return groupRow{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		InstructorID: g.InstructorID,
		StudentIDs:   nonNil(g.StudentIDs),
		MeetingIDs:   nonNil(g.MeetingIDs),
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func (r groupRow) toDomain() domain.Group {
	return domain.Group{
		ID:           r.ID,
		Name:         r.Name,
		Description:  r.Description,
		InstructorID: r.InstructorID,
		StudentIDs:   nonNil(r.StudentIDs),
		MeetingIDs:   nonNil(r.MeetingIDs),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

type PgGroupRepository struct {
	db *sqlx.DB
}

func NewPgGroupRepository(db *sqlx.DB) *PgGroupRepository {
	return &PgGroupRepository{db: db}
}

func (r *PgGroupRepository) Create(ctx context.Context, g *domain.Group) error {
	query := `
		INSERT INTO groups (` + groupColumns + `)
		VALUES (:id, :name, :description, :instructor_id, :student_ids, :meeting_ids, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, toRow(g)); err != nil {
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *PgGroupRepository) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	return r.getOne(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
}

func (r *PgGroupRepository) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE instructor_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, instructorID)
}

func (r *PgGroupRepository) FindAll(ctx context.Context) ([]domain.Group, error) {
	return r.list(ctx, `SELECT `+groupColumns+` FROM groups ORDER BY created_at DESC`)
}

func (r *PgGroupRepository) Update(ctx context.Context, g *domain.Group) error {
	query := `
		UPDATE groups
		SET name = :name, description = :description, student_ids = :student_ids, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, toRow(g))
	if err != nil {
		return fmt.Errorf("update group: %w", err)
	}
	return requireRow(res)
}

func (r *PgGroupRepository) AppendMeeting(ctx context.Context, id, meetingID string, at time.Time) (*domain.Group, error) {
	query := `
		UPDATE groups
		SET meeting_ids = array_append(meeting_ids, $2), updated_at = $3
		WHERE id = $1
		RETURNING ` + groupColumns
	return r.getOne(ctx, query, id, meetingID, at)
}

func (r *PgGroupRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return requireRow(res)
}

func (r *PgGroupRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Group, error) {
	var row groupRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("query group: %w", err)
	}
	g := row.toDomain()
	return &g, nil
}

func (r *PgGroupRepository) list(ctx context.Context, query string, args ...any) ([]domain.Group, error) {
	var rows []groupRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out := make([]domain.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}
