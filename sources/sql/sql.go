// Package sql is a worked BatchedSource implementation backed by Postgres.
// It demonstrates the batching half of the fetcher contract: many Row
// requests for the same table collapse into a single "WHERE id = ANY($1)"
// query instead of one round trip per row.
package sql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samsarahq/go/oops"

	"github.com/samsarahq/muse"
)

// Row requests a single row of table by id from Pool.
type Row struct {
	Pool  *pgxpool.Pool
	Table string
	ID    int64
}

type rowKey struct {
	table string
	id    int64
}

// Identity implements muse.Source.
func (r *Row) Identity() interface{} {
	return rowKey{table: r.Table, id: r.ID}
}

// Fetch implements muse.DataSource by delegating to FetchMany with an empty
// batch, so a lone Row still goes through the same query shape.
func (r *Row) Fetch(ctx context.Context, env *muse.Options) (interface{}, error) {
	responses, err := r.FetchMany(ctx, nil, env)
	if err != nil {
		return nil, err
	}
	return responses[r.Identity()], nil
}

// FetchMany implements muse.BatchedSource: one query per distinct table,
// covering self and every other Row sharing that table.
func (r *Row) FetchMany(ctx context.Context, others []muse.Source, env *muse.Options) (map[interface{}]interface{}, error) {
	ids := make([]int64, 0, len(others)+1)
	ids = append(ids, r.ID)
	for _, o := range others {
		row, ok := o.(*Row)
		if !ok {
			return nil, oops.Errorf("sql: FetchMany received a non-*Row source %T", o)
		}
		ids = append(ids, row.ID)
	}

	query := fmt.Sprintf("SELECT id, data FROM %s WHERE id = ANY($1)", r.Table)
	rows, err := r.Pool.Query(ctx, query, ids)
	if err != nil {
		return nil, oops.Wrapf(err, "querying %s for %d ids", r.Table, len(ids))
	}
	defer rows.Close()

	out := make(map[interface{}]interface{}, len(ids))
	for rows.Next() {
		var id int64
		var data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, oops.Wrapf(err, "scanning row from %s", r.Table)
		}
		out[rowKey{table: r.Table, id: id}] = data
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Wrapf(err, "iterating rows from %s", r.Table)
	}
	return out, nil
}
