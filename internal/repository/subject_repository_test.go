package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subjectRows = []string{"id", "name", "code", "department_id", "year", "scheme", "credits", "faculty_id", "academic_year", "created_at", "updated_at"}

func TestSubjectRepositoryFindFirstByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT .+ FROM subjects WHERE code = .+ ORDER BY created_at, id LIMIT 1").
		WithArgs("CS201").
		WillReturnRows(sqlmock.NewRows(subjectRows).
			AddRow("sub-1", "Data Structures", "CS201", "dept-1", 2, "NEP", 4, nil, "2024-2025", time.Now(), time.Now()))

	subject, err := repo.FindFirstByCode(context.Background(), "CS201")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListByCodeAndLabel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT .+ FROM subjects WHERE code = .+ AND department_id = .+ AND academic_year").
		WithArgs("CS201", "dept-1", "2023-2024").
		WillReturnRows(sqlmock.NewRows(subjectRows).
			AddRow("sub-old", "Data Structures", "CS201", "dept-1", 2, "NEP", 4, nil, "2023-2024", time.Now(), time.Now()))

	subjects, err := repo.ListByCodeAndLabel(context.Background(), "CS201", "dept-1", "2023-2024")
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "2023-2024", subjects[0].AcademicYear)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListByCodeWithResultsInYears(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT DISTINCT s.id").
		WillReturnRows(sqlmock.NewRows(subjectRows).
			AddRow("sub-legacy", "Data Structures", "CS201", "dept-1", 2, "NEP", 4, nil, "", time.Now(), time.Now()))

	subjects, err := repo.ListByCodeWithResultsInYears(context.Background(), "CS201", "dept-1", []int{2023, 2024})
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "sub-legacy", subjects[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
