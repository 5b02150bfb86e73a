package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimu/instructor-backend/internal/modules/assessment/domain"
	"github.com/elimu/instructor-backend/internal/modules/assessment/infrastructure/persistence/postgres"
)

var columns = []string{"id", "title", "subject", "topic", "difficulty", "instructor_id", "questions", "status", "created_at", "updated_at"}

const questionsJSON = `[{"question":"1/2 + 1/2?","options":["1","2"],"correctAnswer":0}]`

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(sqlDB, "sqlmock"), mock, func() { _ = sqlDB.Close() }
}

func TestPgAssessmentRepository_CreateAndFind(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgAssessmentRepository(db)
	now := time.Now().UTC()

	a := &domain.Assessment{ID: "a1", Title: "Quiz", Subject: "Maths", Topic: "Fractions", Difficulty: "easy",
		InstructorID: "i1", Status: domain.StatusDraft, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO assessments`).
		WithArgs("a1", "Quiz", "Maths", "Fractions", "easy", "i1", []byte(`[]`), "draft", now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), a))

	mock.ExpectQuery(`SELECT .* FROM assessments WHERE id = \$1`).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a1", "Quiz", "Maths", "Fractions", "easy", "i1", []byte(questionsJSON), "draft", now, now))
	got, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, []string{"1", "2"}, got.Questions[0].Options)
	assert.Equal(t, domain.StatusDraft, got.Status)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgAssessmentRepository_FindByID_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM assessments WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := postgres.NewPgAssessmentRepository(db).FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAssessmentNotFound)
}

func TestPgAssessmentRepository_FindByInstructor(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgAssessmentRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM assessments WHERE instructor_id = \$1 ORDER BY created_at DESC`).
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("a2", "B", "Maths", "Ratios", "hard", "i1", nil, "published", now, now).
			AddRow("a1", "A", "Maths", "Fractions", "easy", "i1", []byte(questionsJSON), "draft", now, now))
	list, err := repo.FindByInstructor(context.Background(), "i1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, []domain.Question{}, list[0].Questions)
	assert.Len(t, list[1].Questions, 1)

	mock.ExpectQuery(`SELECT .* FROM assessments`).WillReturnError(errors.New("boom"))
	_, err = repo.FindByInstructor(context.Background(), "i1")
	assert.Error(t, err)
}

func TestPgAssessmentRepository_UpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgAssessmentRepository(db)
	a := &domain.Assessment{ID: "a1", Title: "Quiz", Status: domain.StatusPublished, UpdatedAt: time.Now().UTC()}

	mock.ExpectExec(`UPDATE assessments\s+SET title = .*status = .*WHERE id = `).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), a))

	mock.ExpectExec(`UPDATE assessments`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), a), domain.ErrAssessmentNotFound)

	mock.ExpectExec(`DELETE FROM assessments WHERE id = \$1`).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "a1"))

	mock.ExpectExec(`DELETE FROM assessments`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), domain.ErrAssessmentNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
