// Package runner executes translated queries against a database/sql
// handle, converting the translator's named parameter set into the
// argument shape the target driver expects.
package runner

import (
	"context"
	"database/sql"

	"github.com/ratanachh/eql/internal/dialect"
	"github.com/ratanachh/eql/internal/translator"
)

// Runner binds a translated query stream to one database connection.
type Runner struct {
	db *sql.DB
	d  dialect.Dialect
}

// New creates a runner for the given database and dialect. The dialect
// must match the one the queries were translated for, otherwise the
// placeholder and argument shapes disagree.
func New(db *sql.DB, d dialect.Dialect) *Runner {
	return &Runner{db: db, d: d}
}

// DB exposes the underlying handle.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// WithDialect returns a runner on the same handle that shapes arguments
// for queries translated with d instead of the runner's own dialect.
func (r *Runner) WithDialect(d dialect.Dialect) *Runner {
	if d.Name == r.d.Name {
		return r
	}
	return &Runner{db: r.db, d: d}
}

// Args converts the parameter set into driver arguments. Named-style
// dialects get sql.Named values; $n dialects get one value per distinct
// parameter; bare ? dialects get one value per occurrence.
func (r *Runner) Args(params *translator.ParamSet) []any {
	if r.d.Placeholder.Named() {
		names := params.Names()
		args := make([]any, len(names))
		for i, n := range names {
			v, _ := params.Get(n)
			args[i] = sql.Named(n, v)
		}
		return args
	}
	if r.d.Placeholder == dialect.PlaceholderQuestion {
		return params.OccurrenceValues()
	}
	return params.Values()
}

// Row is one result row keyed by column name.
type Row map[string]any

// Query runs a translated SELECT and materializes the rows.
func (r *Runner) Query(ctx context.Context, res *translator.Result) ([]Row, []string, error) {
	rows, err := r.db.QueryContext(ctx, res.SQL, r.Args(res.Params)...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, cols, rows.Err()
}

// Exec runs a translated UPDATE or DELETE and reports affected rows.
func (r *Runner) Exec(ctx context.Context, res *translator.Result) (int64, error) {
	result, err := r.db.ExecContext(ctx, res.SQL, r.Args(res.Params)...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
