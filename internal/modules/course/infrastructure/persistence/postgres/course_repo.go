package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/elimu/instructor-backend/internal/modules/course/domain"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

const courseColumns = `id, title, description, instructor_id, instructor_email, status, students, total_hours, live_sessions, reviews, created_at, updated_at`

type courseRow struct {
	ID              string                               `db:"id"`
	Title           string                               `db:"title"`
	Description     string                               `db:"description"`
	InstructorID    string                               `db:"instructor_id"`
	InstructorEmail string                               `db:"instructor_email"`
	Status          string                               `db:"status"`
	Students        pq.StringArray                       `db:"students"`
	TotalHours      float64                              `db:"total_hours"`
	LiveSessions    database.JSONB[[]domain.LiveSession] `db:"live_sessions"`
	Reviews         database.JSONB[[]domain.Review]      `db:"reviews"`
	CreatedAt       time.Time                            `db:"created_at"`
	UpdatedAt       time.Time                            `db:"updated_at"`
}

func toRow(c *domain.Course) courseRow {
	n := *c
	n.Normalize()
	return courseRow{
		ID:              n.ID,
		Title:           n.Title,
		Description:     n.Description,
		InstructorID:    n.InstructorID,
		InstructorEmail: n.InstructorEmail,
		Status:          string(n.Status),
		Students:        n.Students,
		TotalHours:      n.TotalHours,
		LiveSessions:    database.JSONB[[]domain.LiveSession]{V: n.LiveSessions},
		Reviews:         database.JSONB[[]domain.Review]{V: n.Reviews},
		CreatedAt:       n.CreatedAt,
		UpdatedAt:       n.UpdatedAt,
	}
}

func (r courseRow) toDomain() domain.Course {
	c := domain.Course{
		ID:              r.ID,
		Title:           r.Title,
		Description:     r.Description,
		InstructorID:    r.InstructorID,
		InstructorEmail: r.InstructorEmail,
		Status:          domain.Status(r.Status),
		Students:        r.Students,
		TotalHours:      r.TotalHours,
		LiveSessions:    r.LiveSessions.V,
		Reviews:         r.Reviews.V,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	c.Normalize()
	return c
}

type PgCourseRepository struct {
	db *sqlx.DB
}

func NewPgCourseRepository(db *sqlx.DB) *PgCourseRepository {
	return &PgCourseRepository{db: db}
}

func (r *PgCourseRepository) Create(ctx context.Context, c *domain.Course) error {
	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :title, :description, :instructor_id, :instructor_email, :status, :students,
			:total_hours, :live_sessions, :reviews, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, toRow(c)); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *PgCourseRepository) FindByID(ctx context.Context, id string) (*domain.Course, error) {
	return r.getOne(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
}

func (r *PgCourseRepository) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE instructor_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, instructorID)
}

func (r *PgCourseRepository) FindByInstructorEmail(ctx context.Context, email string) ([]domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE instructor_email = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, email)
}

func (r *PgCourseRepository) Update(ctx context.Context, c *domain.Course) error {
	query := `
		UPDATE courses
		SET title = :title, description = :description, status = :status, total_hours = :total_hours,
			live_sessions = :live_sessions, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, toRow(c))
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *PgCourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrCourseNotFound
	}
	return nil
}

func (r *PgCourseRepository) AddStudent(ctx context.Context, id, studentID string, at time.Time) (*domain.Course, error) {
	query := `
		UPDATE courses
		SET students = array_append(students, $2), updated_at = $3
		WHERE id = $1 AND NOT ($2 = ANY(students))
		RETURNING ` + courseColumns
	return r.getOne(ctx, query, id, studentID, at)
}

func (r *PgCourseRepository) AddReview(ctx context.Context, id string, review domain.Review, at time.Time) (*domain.Course, error) {
	query := `
		UPDATE courses
		SET reviews = reviews || $2::jsonb, updated_at = $3
		WHERE id = $1
		RETURNING ` + courseColumns
	entry := database.JSONB[[]domain.Review]{V: []domain.Review{review}}
	return r.getOne(ctx, query, id, entry, at)
}

func (r *PgCourseRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Course, error) {
	var row courseRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, fmt.Errorf("query course: %w", err)
	}
	c := row.toDomain()
	return &c, nil
}

func (r *PgCourseRepository) list(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make([]domain.Course, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
