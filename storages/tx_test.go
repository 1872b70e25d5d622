package storages

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "tx.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(`create table kv (k text primary key, v integer)`); err != nil {
		t.Fatal(err)
	}

	if err := WithTx(ctx, db, func(tx Tx) error {
		_, err := tx.Exec(ctx, `insert into kv values ('a', 1)`)
		return err
	}); err != nil {
		t.Fatal(err)
	}

	failure := errors.New("failure")
	err = WithTx(ctx, db, func(tx Tx) error {
		if _, err := tx.Exec(ctx, `update kv set v = 2 where k = 'a'`); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("got %v", err)
	}

	if err := WithTx(ctx, db, func(tx Tx) error {
		row, err := tx.QueryRow(ctx, `select v from kv where k = 'a'`)
		if err != nil {
			return err
		}
		var v int
		if err := row.Scan(&v); err != nil {
			return err
		}
		if v != 1 {
			t.Fatalf("rolled back update is visible: %d", v)
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}
}
