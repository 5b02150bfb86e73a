package postgres_test

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elimu/instructor-backend/internal/modules/course/domain"
	"github.com/elimu/instructor-backend/internal/modules/course/infrastructure/persistence/postgres"
)

var columns = []string{"id", "title", "description", "instructor_id", "instructor_email", "status", "students",
	"total_hours", "live_sessions", "reviews", "created_at", "updated_at"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(sqlDB, "sqlmock"), mock, func() { _ = sqlDB.Close() }
}

func row(now time.Time, students, reviews string) []driver.Value {
	return []driver.Value{"c1", "Go", "", "i1", "i1@example.com", "pending", []byte(students), 10.0,
		[]byte(`[{"topic":"Intro","sessionDate":"2026-05-01T10:00:00Z"}]`), []byte(reviews), now, now}
}

func TestPgCourseRepository_CreateAndFind(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgCourseRepository(db)
	now := time.Now().UTC()

	c := &domain.Course{ID: "c1", Title: "Go", InstructorID: "i1", InstructorEmail: "i1@example.com",
		Status: domain.StatusPending, TotalHours: 10, CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(`INSERT INTO courses`).
		WithArgs("c1", "Go", "", "i1", "i1@example.com", "pending", `{}`, 10.0, []byte(`[]`), []byte(`[]`), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Create(context.Background(), c))

	mock.ExpectQuery(`SELECT .* FROM courses WHERE id = \$1`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(now, `{s1}`, `[]`)...))
	got, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, got.Students)
	require.Len(t, got.LiveSessions, 1)
	assert.Equal(t, "Intro", got.LiveSessions[0].Topic)
	assert.Equal(t, []domain.Review{}, got.Reviews)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_FindByID_NotFound(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT .* FROM courses`).WillReturnRows(sqlmock.NewRows(columns))
	_, err := postgres.NewPgCourseRepository(db).FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)
}

func TestPgCourseRepository_Lists(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgCourseRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM courses WHERE instructor_id = \$1`).
		WithArgs("i1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(now, `{}`, `[]`)...))
	mine, err := repo.FindByInstructor(context.Background(), "i1")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	mock.ExpectQuery(`SELECT .* FROM courses WHERE instructor_email = \$1`).
		WithArgs("i1@example.com").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(now, `{s1,s2}`, `[]`)...))
	byEmail, err := repo.FindByInstructorEmail(context.Background(), "i1@example.com")
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Len(t, byEmail[0].Students, 2)

	mock.ExpectQuery(`SELECT .* FROM courses WHERE instructor_email`).WillReturnError(errors.New("boom"))
	_, err = repo.FindByInstructorEmail(context.Background(), "x")
	assert.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_UpdateAndDelete(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgCourseRepository(db)
	c := &domain.Course{ID: "c1", Title: "Go", Status: domain.StatusArchived}

	mock.ExpectExec(`UPDATE courses\s+SET title = `).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), c))

	mock.ExpectExec(`UPDATE courses`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), c), domain.ErrCourseNotFound)

	mock.ExpectExec(`DELETE FROM courses WHERE id = \$1`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), "c1"))

	mock.ExpectExec(`DELETE FROM courses`).WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), "c1"), domain.ErrCourseNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_AddStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgCourseRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`UPDATE courses\s+SET students = array_append\(students, \$2\).*NOT \(\$2 = ANY\(students\)\)`).
		WithArgs("c1", "s2", now).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(row(now, `{s1,s2}`, `[]`)...))
	c, err := repo.AddStudent(context.Background(), "c1", "s2", now)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, c.Students)

	mock.ExpectQuery(`UPDATE courses`).
		WithArgs("c1", "s2", now).
		WillReturnRows(sqlmock.NewRows(columns))
	_, err = repo.AddStudent(context.Background(), "c1", "s2", now)
	assert.ErrorIs(t, err, domain.ErrCourseNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgCourseRepository_AddReview(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	repo := postgres.NewPgCourseRepository(db)
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	review := domain.Review{StudentID: "s1", Rating: 4, CreatedAt: now}

	mock.ExpectQuery(`UPDATE courses\s+SET reviews = reviews \|\| \$2::jsonb`).
		WithArgs("c1", []byte(`[{"studentId":"s1","rating":4,"createdAt":"2026-01-02T03:04:05Z"}]`), now).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(row(now, `{s1}`, `[{"studentId":"s1","rating":4,"createdAt":"2026-01-02T03:04:05Z"}]`)...))

	c, err := repo.AddReview(context.Background(), "c1", review, now)
	require.NoError(t, err)
	require.Len(t, c.Reviews, 1)
	assert.Equal(t, 4, c.Reviews[0].Rating)

	require.NoError(t, mock.ExpectationsWereMet())
}
