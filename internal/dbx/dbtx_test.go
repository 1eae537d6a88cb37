package dbx

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openInventory returns an in-memory database with a cut-down upload record
// table and its per-component children.
func openInventory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS content_inventory (content_id TEXT PRIMARY KEY, status TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS component_status (content_id TEXT NOT NULL, component TEXT NOT NULL, UNIQUE(content_id, component))`,
	} {
		_, err = db.Exec(ddl)
		require.NoError(t, err)
	}
	return db
}

func count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func insertUpload(ctx context.Context, tx DBTX, id string, components ...string) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO content_inventory(content_id, status) VALUES (?, 'pending')`, id); err != nil {
		return err
	}
	for _, c := range components {
		if _, err := tx.ExecContext(ctx, `INSERT INTO component_status(content_id, component) VALUES (?, ?)`, id, c); err != nil {
			return err
		}
	}
	return nil
}

func TestWithTx_CommitsRecordWithComponents(t *testing.T) {
	db := openInventory(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return insertUpload(ctx, tx, "u1", "transcription", "scene_detection")
	})
	require.NoError(t, err)
	require.Equal(t, 1, count(t, db, "content_inventory"))
	require.Equal(t, 2, count(t, db, "component_status"))
}

func TestWithTx_ComponentFailureRollsBackRecord(t *testing.T) {
	db := openInventory(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		// duplicate component violates the unique constraint
		return insertUpload(ctx, tx, "u1", "transcription", "transcription")
	})
	require.Error(t, err)
	require.Equal(t, 0, count(t, db, "content_inventory"), "record must not outlive its components")
	require.Equal(t, 0, count(t, db, "component_status"))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := openInventory(t)
	boom := errors.New("boom")

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertUpload(ctx, tx, "u1"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, count(t, db, "content_inventory"))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := openInventory(t)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 0, count(t, db, "content_inventory"), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertUpload(ctx, tx, "u1"))
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := openInventory(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	require.ErrorContains(t, err, "begin tx")
}

func TestNullString(t *testing.T) {
	require.False(t, NullString("").Valid, "single PUT uploads store no session id")
	ns := NullString("mpu-1")
	require.True(t, ns.Valid)
	require.Equal(t, "mpu-1", ns.String)
}
