package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsRepositoryAggregate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) AS total").
		WillReturnRows(sqlmock.NewRows([]string{"total", "passed", "average", "highest", "lowest"}).
			AddRow(5, 3, 53.8, 100, 0))

	agg, err := repo.Aggregate(context.Background(), []string{"sub-1"})
	require.NoError(t, err)
	assert.Equal(t, 5, agg.Total)
	assert.Equal(t, 3, agg.Passed)
	require.NotNil(t, agg.Average)
	assert.InDelta(t, 53.8, *agg.Average, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryAggregateEmptyScope(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	// No subjects means no query at all.
	agg, err := repo.Aggregate(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, agg.Total)
	assert.Nil(t, agg.Average)
}

func TestAnalyticsRepositoryPerSubjectAggregates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery("SELECT s.id AS subject_id").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "code", "name", "total", "passed", "average", "highest", "lowest"}).
			AddRow("sub-1", "CS201", "Data Structures", 10, 8, 61.5, 95, 12))

	aggregates, err := repo.PerSubjectAggregates(context.Background(), []string{"sub-1"})
	require.NoError(t, err)
	require.Len(t, aggregates, 1)
	assert.Equal(t, "CS201", aggregates[0].Code)
	assert.Equal(t, 8, aggregates[0].Passed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalyticsRepositoryStudentRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAnalyticsRepository(db)

	mock.ExpectQuery("SELECT st.roll_number").
		WillReturnRows(sqlmock.NewRows([]string{"roll_number", "name", "course_code", "course_name", "marks_obtained", "total_marks", "exam_type", "semester"}).
			AddRow("21CS001", "John Doe", "CS201", "Data Structures", 85, 100, "Mid Term", "1st"))

	rows, err := repo.StudentRows(context.Background(), []string{"sub-1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "21CS001", rows[0].RollNo)
	assert.Equal(t, 85, rows[0].Marks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
