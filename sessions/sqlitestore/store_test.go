package sqlitestore_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jrsteele09/go-billing-console/sessions"
	"github.com/jrsteele09/go-billing-console/sessions/sqlitestore"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresPath(t *testing.T) {
	_, err := sqlitestore.New("  ")
	require.Error(t, err)
}

func TestNew_CreatesParentDirectory(t *testing.T) {
	s, err := sqlitestore.New(filepath.Join(t.TempDir(), "nested", "dir", "session.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(sessions.Session{RefreshToken: "r"}))
	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "r", got.RefreshToken)
}

func TestSave_InsertFailureRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM session_entries").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO session_entries").
		WithArgs(sessions.KeyAccessToken, "access").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	s := sqlitestore.NewWithDB(db)
	err = s.Save(sessions.Session{AccessToken: "access", RefreshToken: "refresh"})
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_WritesOnlyPresentEntries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM session_entries").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO session_entries").
		WithArgs(sessions.KeyRefreshToken, "refresh").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	s := sqlitestore.NewWithDB(db)
	require.NoError(t, s.Save(sessions.Session{RefreshToken: "refresh"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_QueryFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT key, value FROM session_entries").WillReturnError(errors.New("locked"))

	_, err = sqlitestore.NewWithDB(db).Load()
	require.ErrorContains(t, err, "locked")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_RebuildsSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow(sessions.KeyAccessToken, "access").
		AddRow(sessions.KeyRefreshToken, "refresh").
		AddRow(sessions.KeyUser, `{"id":3,"username":"bob","roles":["USER"]}`)
	mock.ExpectQuery("SELECT key, value FROM session_entries").WillReturnRows(rows)

	got, err := sqlitestore.NewWithDB(db).Load()
	require.NoError(t, err)
	require.Equal(t, "access", got.AccessToken)
	require.Equal(t, "refresh", got.RefreshToken)
	require.NotNil(t, got.User)
	require.Equal(t, "bob", got.User.Username)
	require.Equal(t, []string{"USER"}, got.User.Roles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClear_ExecFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM session_entries").WillReturnError(errors.New("readonly"))

	require.ErrorContains(t, sqlitestore.NewWithDB(db).Clear(), "readonly")
	require.NoError(t, mock.ExpectationsWereMet())
}
