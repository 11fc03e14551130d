package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_AppliesEmbeddedMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "hata.db")

	db, err := New(path, Migrations())
	require.NoError(t, err)

	for _, table := range []string{"guilds", "roles", "channels", "channel_overwrites", "users", "guild_members", "member_roles"} {
		var count int
		err := db.Conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, table)
	}
	require.NoError(t, db.Close())

	// İkinci açılış migration'ları tekrar çalıştırmaz
	db, err = New(path, Migrations())
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)
}

func TestNew_InMemory(t *testing.T) {
	db, err := New(":memory:", Migrations())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Conn.Exec("INSERT INTO guilds (id, name, owner_id) VALUES (1, 'g', 2)")
	assert.NoError(t, err)
}

func TestNew_BootstrapsExistingInstall(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	migrations := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE guilds (id INTEGER PRIMARY KEY);")},
	}
	db, err := New(path, migrations)
	require.NoError(t, err)
	_, err = db.Conn.Exec("DELETE FROM schema_migrations")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// 002 idempotent değil; bootstrap sayesinde çalıştırılmamalı
	migrations["002_alter.sql"] = &fstest.MapFile{Data: []byte("ALTER TABLE nonexistent ADD COLUMN x INTEGER;")}
	db, err = New(path, migrations)
	require.NoError(t, err)
	defer db.Close()

	var applied int
	require.NoError(t, db.Conn.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 2, applied)
}

func TestNew_FailingMigration(t *testing.T) {
	migrations := fstest.MapFS{
		"001_bad.sql": {Data: []byte("CREATE TABLE x (;")},
	}
	_, err := New(filepath.Join(t.TempDir(), "bad.db"), migrations)
	assert.Error(t, err)
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple",
			input:    "CREATE TABLE a (id INTEGER); CREATE TABLE b (id INTEGER);",
			expected: []string{"CREATE TABLE a (id INTEGER)", "CREATE TABLE b (id INTEGER)"},
		},
		{
			name:     "semicolon in string literal",
			input:    "INSERT INTO a VALUES ('x;y'); SELECT 1",
			expected: []string{"INSERT INTO a VALUES ('x;y')", "SELECT 1"},
		},
		{
			name:     "escaped quote",
			input:    "INSERT INTO a VALUES ('it''s; fine');",
			expected: []string{"INSERT INTO a VALUES ('it''s; fine')"},
		},
		{
			name:     "line comments are ignored",
			input:    "-- guild'ler; açıklama\nCREATE TABLE a (id INTEGER);\n-- son",
			expected: []string{"CREATE TABLE a (id INTEGER)"},
		},
		{
			name:     "empty",
			input:    " ; ;\n",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitStatements(tt.input))
		})
	}
}

func TestWithTx_Commit(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO guilds").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = WithTx(context.Background(), conn, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO guilds (id, name, owner_id) VALUES (1, 'g', 2)")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO channels").WillReturnError(boom)
	mock.ExpectRollback()

	err = WithTx(context.Background(), conn, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO channels (id, kind) VALUES (1, 0)")
		return err
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = WithTx(context.Background(), conn, func(tx *sql.Tx) error {
			panic("unexpected")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_BeginError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	mock.ExpectBegin().WillReturnError(errors.New("locked"))

	err = WithTx(context.Background(), conn, func(tx *sql.Tx) error { return nil })
	assert.ErrorContains(t, err, "failed to begin transaction")
}
