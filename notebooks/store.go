package notebooks

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reusee/e5"
	"github.com/reusee/symbook/outputs"
	"github.com/reusee/symbook/storages"
	_ "modernc.org/sqlite"
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

var ErrNotFound = errors.New("notebook not found")

const schema = `
create table if not exists notebooks (
	id text primary key,
	name text not null,
	created integer not null,
	updated integer not null
);

create table if not exists cells (
	notebook_id text not null references notebooks(id) on delete cascade,
	position integer not null,
	id text not null,
	kind text not null,
	source text not null,
	outputs text not null,
	execution_count integer,
	elapsed integer not null,
	primary key (notebook_id, position)
);
`

// Store persists notebooks in a sqlite database. Transient cell state is not stored.
type Store struct {
	db *sql.DB
}

func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, wrap(err)
	}
	// one writer, and in-memory databases are per connection
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, wrap(err)
	}
	return &Store{
		db: db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, name string) (*Notebook, error) {
	nb := NewNotebook(name, time.Now())
	if err := s.Save(ctx, nb); err != nil {
		return nil, err
	}
	return nb, nil
}

// Save writes nb and replaces all its stored cells.
func (s *Store) Save(ctx context.Context, nb *Notebook) error {
	if nb.Created.IsZero() {
		nb.Created = time.Now()
	}
	nb.Updated = time.Now()
	err := storages.WithTx(ctx, s.db, func(tx storages.Tx) error {
		if _, err := tx.Exec(ctx, `
			insert into notebooks (id, name, created, updated) values (?, ?, ?, ?)
			on conflict (id) do update set name = excluded.name, updated = excluded.updated
		`, nb.ID, nb.Name, nb.Created.UnixNano(), nb.Updated.UnixNano()); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `delete from cells where notebook_id = ?`, nb.ID); err != nil {
			return err
		}
		for i, cell := range nb.Cells {
			outs := cell.Outputs
			if outs == nil {
				outs = []outputs.Output{}
			}
			data, err := json.Marshal(outs)
			if err != nil {
				return err
			}
			var count sql.NullInt64
			if cell.ExecutionCount != nil {
				count = sql.NullInt64{
					Int64: int64(*cell.ExecutionCount),
					Valid: true,
				}
			}
			if _, err := tx.Exec(ctx, `
				insert into cells (notebook_id, position, id, kind, source, outputs, execution_count, elapsed)
				values (?, ?, ?, ?, ?, ?, ?, ?)
			`, nb.ID, i, cell.ID, string(cell.Kind), cell.Source, string(data), count, int64(cell.Elapsed)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrap(err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*Notebook, error) {
	var nb *Notebook
	err := storages.WithTx(ctx, s.db, func(tx storages.Tx) error {
		row, err := tx.QueryRow(ctx, `select name, created, updated from notebooks where id = ?`, id)
		if err != nil {
			return err
		}
		var name string
		var created, updated int64
		if err := row.Scan(&name, &created, &updated); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}
		nb = &Notebook{
			ID:      id,
			Name:    name,
			Cells:   []*Cell{},
			Created: time.Unix(0, created),
			Updated: time.Unix(0, updated),
		}

		rows, err := tx.Query(ctx, `
			select id, kind, source, outputs, execution_count, elapsed
			from cells where notebook_id = ? order by position
		`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			cell := new(Cell)
			var kind, data string
			var count sql.NullInt64
			var elapsed int64
			if err := rows.Scan(&cell.ID, &kind, &cell.Source, &data, &count, &elapsed); err != nil {
				return err
			}
			cell.Kind = CellKind(kind)
			cell.Elapsed = time.Duration(elapsed)
			if count.Valid {
				n := int(count.Int64)
				cell.ExecutionCount = &n
			}
			if err := json.Unmarshal([]byte(data), &cell.Outputs); err != nil {
				return fmt.Errorf("cell %s outputs: %w", cell.ID, err)
			}
			nb.Cells = append(nb.Cells, cell)
		}
		return rows.Err()
	})
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, wrap(err)
	}
	return nb, nil
}

type Summary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Cells   int       `json:"cells"`
	Updated time.Time `json:"updated"`
}

// List returns every notebook, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		select n.id, n.name, n.updated, count(c.id)
		from notebooks n left join cells c on c.notebook_id = n.id
		group by n.id
		order by n.updated desc, n.name
	`)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()
	ret := []Summary{}
	for rows.Next() {
		var summary Summary
		var updated int64
		if err := rows.Scan(&summary.ID, &summary.Name, &updated, &summary.Cells); err != nil {
			return nil, wrap(err)
		}
		summary.Updated = time.Unix(0, updated)
		ret = append(ret, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return ret, nil
}

func (s *Store) Rename(ctx context.Context, id string, name string) error {
	res, err := s.db.ExecContext(ctx, `update notebooks set name = ?, updated = ? where id = ?`,
		name, time.Now().UnixNano(), id)
	if err != nil {
		return wrap(err)
	}
	return checkAffected(res, id)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from notebooks where id = ?`, id)
	if err != nil {
		return wrap(err)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
