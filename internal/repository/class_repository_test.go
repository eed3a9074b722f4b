package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherClassIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(`SELECT DISTINCT c.id FROM classes c`).
		WithArgs("teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("class-a").AddRow("class-b"))

	ids, err := repo.TeacherClassIDs(context.Background(), "teacher-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"class-a", "class-b"}, ids)
}

func TestTeacherTeachesClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("class-a", "teacher-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.TeacherTeachesClass(context.Background(), "teacher-1", "class-a")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRosterStudentIDsWrapsError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(`FROM class_students`).WithArgs("class-a").WillReturnError(errors.New("conn reset"))

	_, err := repo.RosterStudentIDs(context.Background(), "class-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list class roster")
}
