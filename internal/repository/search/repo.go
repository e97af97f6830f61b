package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/kmsearch/internal/db"
)

// Default searchable columns and table.
var (
	DefaultFields = []string{"khmer_title", "khmer_description"}
	DefaultTable  = "resources"
)

// Options tunes which table and columns the predicate targets.
type Options struct {
	Table    string
	Fields   []string
	Operator db.Operator
}

// Repo implements usecase/search.Matcher over a SQL store.
type Repo struct {
	q      db.Querier
	table  string
	fields []string
	op     db.Operator
}

// New creates a search repository.
func New(q db.Querier, opts Options) (*Repo, error) {
	r := &Repo{q: q, table: opts.Table, fields: opts.Fields, op: opts.Operator}
	if r.table == "" {
		r.table = DefaultTable
	}
	if len(r.fields) == 0 {
		r.fields = DefaultFields
	}
	if r.op == "" {
		r.op = db.OperatorLike
	}
	if !db.IsValidIdentifier(r.table) {
		return nil, fmt.Errorf("invalid table name %q", r.table)
	}
	return r, nil
}

func (r *Repo) predicate(terms []string) (db.Clause, error) {
	return db.NewPredicate(r.fields...).
		Terms(terms...).
		Operator(r.op).
		Build()
}

// Count returns how many published rows match every term.
func (r *Repo) Count(ctx context.Context, terms []string) (int, error) {
	clause, err := r.predicate(terms)
	if err != nil {
		return 0, fmt.Errorf("build predicate: %w", err)
	}

	query := "SELECT COUNT(*) FROM " + r.table + " WHERE " + clause.SQL
	var n int
	if err := r.q.QueryRowContext(ctx, query, clause.Args...).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: err}
	}
	return n, nil
}

// Match returns document ids of one page of matching published rows, ordered by id.
func (r *Repo) Match(ctx context.Context, terms []string, limit, offset int) ([]string, error) {
	clause, err := r.predicate(terms)
	if err != nil {
		return nil, fmt.Errorf("build predicate: %w", err)
	}

	query := "SELECT document_id FROM " + r.table + " WHERE " + clause.SQL +
		" ORDER BY id LIMIT ? OFFSET ?"
	args := append(clause.Args, limit, offset)

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return ids, nil
}
