package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"financeviz/internal/core"
	"financeviz/internal/source"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var (
	_ source.DocumentReader = (*SQLiteRepository)(nil)
	_ source.TextsReader    = (*SQLiteRepository)(nil)
	_ source.DocumentWriter = (*SQLiteRepository)(nil)
	_ source.TextsWriter    = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	if version, dirty, err := SchemaVersion(dbPath); err == nil {
		slog.Info("SQLite schema ready", "path", dbPath, "version", version, "dirty", dirty)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Years implements source.DocumentReader
func (r *SQLiteRepository) Years(ctx context.Context) ([]int, error) {
	rows, err := r.queries.ListYears(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	years := make([]int, len(rows))
	for i, y := range rows {
		years[i] = int(y)
	}
	return years, nil
}

// Aggregated implements source.DocumentReader
func (r *SQLiteRepository) Aggregated(ctx context.Context, year int) (*core.Node, error) {
	raw, err := r.queries.GetAggregatedTree(ctx, int64(year))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get aggregated tree %d: %w", year, err)
	}
	var tree core.Node
	if err := json.Unmarshal([]byte(raw), &tree); err != nil {
		return nil, fmt.Errorf("decode aggregated tree %d: %w", year, err)
	}
	return &tree, nil
}

// Document implements source.DocumentReader
func (r *SQLiteRepository) Document(ctx context.Context, year int) (*core.Document, error) {
	raw, err := r.queries.GetDocumentLedger(ctx, int64(year))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document %d: %w", year, err)
	}
	doc := &core.Document{Year: year}
	if err := json.Unmarshal([]byte(raw), &doc.Rows); err != nil {
		return nil, fmt.Errorf("decode document %d: %w", year, err)
	}
	return doc, nil
}

// Plan implements source.DocumentReader
func (r *SQLiteRepository) Plan(ctx context.Context, year int) (*core.Plan, error) {
	raw, err := r.queries.GetPlan(ctx, int64(year))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan %d: %w", year, err)
	}
	var plan core.Plan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		return nil, fmt.Errorf("decode plan %d: %w", year, err)
	}
	plan.Year = year
	return &plan, nil
}

// Texts implements source.TextsReader
func (r *SQLiteRepository) Texts(ctx context.Context) (map[string]core.Texts, error) {
	rows, err := r.queries.ListTexts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list texts: %w", err)
	}
	texts := make(map[string]core.Texts, len(rows))
	for _, row := range rows {
		t := core.Texts{Label: row.Label, Atemporal: row.Atemporal, Temporal: row.Temporal}
		if err := json.Unmarshal([]byte(row.Links), &t.Links); err != nil {
			return nil, fmt.Errorf("decode links of %s: %w", row.ID, err)
		}
		texts[row.ID] = t
	}
	return texts, nil
}

// SaveAggregated implements source.DocumentWriter
func (r *SQLiteRepository) SaveAggregated(ctx context.Context, year int, tree *core.Node) error {
	if tree == nil {
		return errors.New("nil aggregated tree")
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode aggregated tree: %w", err)
	}
	if err := r.queries.UpsertAggregatedTree(ctx, int64(year), string(raw)); err != nil {
		return fmt.Errorf("save aggregated tree %d: %w", year, err)
	}
	slog.InfoContext(ctx, "Aggregated tree saved to SQLite", "year", year, "bytes", len(raw))
	return nil
}

// SaveDocument implements source.DocumentWriter
func (r *SQLiteRepository) SaveDocument(ctx context.Context, doc *core.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	rows := doc.Rows
	if rows == nil {
		rows = []core.Row{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := r.queries.UpsertDocument(ctx, int64(doc.Year), string(raw)); err != nil {
		return fmt.Errorf("save document %d: %w", doc.Year, err)
	}
	slog.InfoContext(ctx, "Document saved to SQLite", "year", doc.Year, "rows", len(rows))
	return nil
}

// SavePlan implements source.DocumentWriter
func (r *SQLiteRepository) SavePlan(ctx context.Context, plan *core.Plan) error {
	if plan == nil {
		return errors.New("nil plan")
	}
	raw, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encode plan: %w", err)
	}
	if err := r.queries.UpsertPlan(ctx, int64(plan.Year), string(raw)); err != nil {
		return fmt.Errorf("save plan %d: %w", plan.Year, err)
	}
	slog.InfoContext(ctx, "Plan saved to SQLite", "year", plan.Year,
		"fonctions", len(plan.Fonctions), "natures", len(plan.Natures))
	return nil
}

// SaveTexts implements source.TextsWriter. All texts are written in one transaction.
func (r *SQLiteRepository) SaveTexts(ctx context.Context, texts map[string]core.Texts) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	for id, t := range texts {
		links := t.Links
		if links == nil {
			links = []core.Link{}
		}
		raw, err := json.Marshal(links)
		if err != nil {
			return fmt.Errorf("encode links of %s: %w", id, err)
		}
		if err := q.UpsertText(ctx, Text{
			ID:        id,
			Label:     t.Label,
			Atemporal: t.Atemporal,
			Temporal:  t.Temporal,
			Links:     string(raw),
		}); err != nil {
			return fmt.Errorf("save text %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit texts: %w", err)
	}
	slog.InfoContext(ctx, "Texts saved to SQLite", "count", len(texts))
	return nil
}
