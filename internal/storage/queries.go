package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

const listYears = `
SELECT year FROM aggregated_trees
UNION SELECT year FROM documents
UNION SELECT year FROM plans
ORDER BY year
`

func (q *Queries) ListYears(ctx context.Context) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listYears)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var year int64
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		items = append(items, year)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getAggregatedTree = `SELECT tree FROM aggregated_trees WHERE year = ?`

func (q *Queries) GetAggregatedTree(ctx context.Context, year int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getAggregatedTree, year)
	var tree string
	err := row.Scan(&tree)
	return tree, err
}

const upsertAggregatedTree = `
INSERT INTO aggregated_trees (year, tree) VALUES (?, ?)
ON CONFLICT(year) DO UPDATE SET tree = excluded.tree, updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertAggregatedTree(ctx context.Context, year int64, tree string) error {
	_, err := q.db.ExecContext(ctx, upsertAggregatedTree, year, tree)
	return err
}

const getDocumentLedger = `SELECT ledger FROM documents WHERE year = ?`

func (q *Queries) GetDocumentLedger(ctx context.Context, year int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getDocumentLedger, year)
	var ledger string
	err := row.Scan(&ledger)
	return ledger, err
}

const upsertDocument = `
INSERT INTO documents (year, ledger) VALUES (?, ?)
ON CONFLICT(year) DO UPDATE SET ledger = excluded.ledger, updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertDocument(ctx context.Context, year int64, ledger string) error {
	_, err := q.db.ExecContext(ctx, upsertDocument, year, ledger)
	return err
}

const getPlan = `SELECT plan FROM plans WHERE year = ?`

func (q *Queries) GetPlan(ctx context.Context, year int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getPlan, year)
	var plan string
	err := row.Scan(&plan)
	return plan, err
}

const upsertPlan = `
INSERT INTO plans (year, plan) VALUES (?, ?)
ON CONFLICT(year) DO UPDATE SET plan = excluded.plan, updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertPlan(ctx context.Context, year int64, plan string) error {
	_, err := q.db.ExecContext(ctx, upsertPlan, year, plan)
	return err
}

type Text struct {
	ID        string
	Label     string
	Atemporal string
	Temporal  string
	Links     string
}

const listTexts = `SELECT id, label, atemporal, temporal, links FROM texts ORDER BY id`

func (q *Queries) ListTexts(ctx context.Context) ([]Text, error) {
	rows, err := q.db.QueryContext(ctx, listTexts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Text
	for rows.Next() {
		var i Text
		if err := rows.Scan(&i.ID, &i.Label, &i.Atemporal, &i.Temporal, &i.Links); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertText = `
INSERT INTO texts (id, label, atemporal, temporal, links) VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    label = excluded.label,
    atemporal = excluded.atemporal,
    temporal = excluded.temporal,
    links = excluded.links,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertText(ctx context.Context, arg Text) error {
	_, err := q.db.ExecContext(ctx, upsertText, arg.ID, arg.Label, arg.Atemporal, arg.Temporal, arg.Links)
	return err
}
