package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/elimu/instructor-backend/internal/modules/assessment/domain"
	"github.com/elimu/instructor-backend/internal/shared/infrastructure/database"
)

const assessmentColumns = `id, title, subject, topic, difficulty, instructor_id, questions, status, created_at, updated_at`

type assessmentRow struct {
	ID           string                            `db:"id"`
	Title        string                            `db:"title"`
	Subject      string                            `db:"subject"`
	Topic        string                            `db:"topic"`
	Difficulty   string                            `db:"difficulty"`
	InstructorID string                            `db:"instructor_id"`
	Questions    database.JSONB[[]domain.Question] `db:"questions"`
	Status       string                            `db:"status"`
	CreatedAt    time.Time                         `db:"created_at"`
	UpdatedAt    time.Time                         `db:"updated_at"`
}

func toRow(a *domain.Assessment) assessmentRow {
	questions := a.Questions
	if questions == nil {
		questions = []domain.Question{}
	}
	return assessmentRow{
		ID:           a.ID,
		Title:        a.Title,
		Subject:      a.Subject,
		Topic:        a.Topic,
		Difficulty:   a.Difficulty,
		InstructorID: a.InstructorID,
		Questions:    database.JSONB[[]domain.Question]{V: questions},
		Status:       string(a.Status),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (r assessmentRow) toDomain() domain.Assessment {
	questions := r.Questions.V
	if questions == nil {
		questions = []domain.Question{}
	}
	return domain.Assessment{
		ID:           r.ID,
		Title:        r.Title,
		Subject:      r.Subject,
		Topic:        r.Topic,
		Difficulty:   r.Difficulty,
		InstructorID: r.InstructorID,
		Questions:    questions,
		Status:       domain.Status(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type PgAssessmentRepository struct {
	db *sqlx.DB
}

func NewPgAssessmentRepository(db *sqlx.DB) *PgAssessmentRepository {
	return &PgAssessmentRepository{db: db}
}

func (r *PgAssessmentRepository) Create(ctx context.Context, a *domain.Assessment) error {
	query := `
		INSERT INTO assessments (` + assessmentColumns + `)
		VALUES (:id, :title, :subject, :topic, :difficulty, :instructor_id, :questions, :status, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, toRow(a)); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (r *PgAssessmentRepository) FindByID(ctx context.Context, id string) (*domain.Assessment, error) {
	var row assessmentRow
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("query assessment: %w", err)
	}
	a := row.toDomain()
	return &a, nil
}

func (r *PgAssessmentRepository) FindByInstructor(ctx context.Context, instructorID string) ([]domain.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments WHERE instructor_id = $1 ORDER BY created_at DESC`
	var rows []assessmentRow
	if err := r.db.SelectContext(ctx, &rows, query, instructorID); err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	out := make([]domain.Assessment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *PgAssessmentRepository) Update(ctx context.Context, a *domain.Assessment) error {
	query := `
		UPDATE assessments
		SET title = :title, subject = :subject, topic = :topic, difficulty = :difficulty,
			questions = :questions, status = :status, updated_at = :updated_at
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, toRow(a))
	if err != nil {
		return fmt.Errorf("update assessment: %w", err)
	}
	return requireRow(res)
}

func (r *PgAssessmentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assessments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete assessment: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAssessmentNotFound
	}
	return nil
}
