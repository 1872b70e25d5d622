package storages

import (
	"context"
	"database/sql"
	"errors"
)

type Tx interface {
	Commit() error
	Rollback() error
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) (*sql.Row, error)
}

type sqlTx struct {
	tx *sql.Tx
}

var _ Tx = sqlTx{}

func Begin(ctx context.Context, db *sql.DB) (Tx, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{
		tx: tx,
	}, nil
}

func (s sqlTx) Commit() error {
	return s.tx.Commit()
}

func (s sqlTx) Rollback() error {
	return s.tx.Rollback()
}

func (s sqlTx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.tx.ExecContext(ctx, query, args...)
}

func (s sqlTx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.tx.QueryContext(ctx, query, args...)
}

func (s sqlTx) QueryRow(ctx context.Context, query string, args ...any) (*sql.Row, error) {
	row := s.tx.QueryRowContext(ctx, query, args...)
	return row, row.Err()
}

// WithTx runs fn in a transaction. It commits if fn succeeds and rolls back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(Tx) error) (err error) {
	tx, err := Begin(ctx, db)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
				err = errors.Join(err, rerr)
			}
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
