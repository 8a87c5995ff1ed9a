package services

import (
	"context"
	"fmt"
	"log/slog"

	"financeviz/internal/amqp"
	"financeviz/internal/source"
)

// UpdatePublisher announces stored input changes.
type UpdatePublisher interface {
	PublishDocumentUpdated(ctx context.Context, year int, kind string) error
}

// ImportResult counts what an import wrote.
type ImportResult struct {
	Years      []int
	Aggregated int
	Documents  int
	Plans      int
	Texts      int
}

// Importer copies budget inputs from one source into a store and announces
// each change.
type Importer struct {
	store     ImportStore
	publisher UpdatePublisher
}

// ImportStore is the write side of a document backend.
type ImportStore interface {
	source.DocumentWriter
	source.TextsWriter
}

func NewImporter(store ImportStore, publisher UpdatePublisher) *Importer {
	return &Importer{store: store, publisher: publisher}
}

// Import copies every year and the texts of from.
func (i *Importer) Import(ctx context.Context, from interface {
	source.DocumentReader
	source.TextsReader
}) (ImportResult, error) {
	var res ImportResult

	years, err := from.Years(ctx)
	if err != nil {
		return res, fmt.Errorf("list years: %w", err)
	}
	res.Years = years

	for _, y := range years {
		tree, err := from.Aggregated(ctx, y)
		if err != nil {
			return res, fmt.Errorf("read aggregated %d: %w", y, err)
		}
		if tree != nil {
			if err := i.store.SaveAggregated(ctx, y, tree); err != nil {
				return res, err
			}
			res.Aggregated++
			i.publish(ctx, y, amqp.KindAggregated)
		}

		doc, err := from.Document(ctx, y)
		if err != nil {
			return res, fmt.Errorf("read document %d: %w", y, err)
		}
		if doc != nil {
			if err := i.store.SaveDocument(ctx, doc); err != nil {
				return res, err
			}
			res.Documents++
			i.publish(ctx, y, amqp.KindDocument)
		}

		plan, err := from.Plan(ctx, y)
		if err != nil {
			return res, fmt.Errorf("read plan %d: %w", y, err)
		}
		if plan != nil {
			if err := i.store.SavePlan(ctx, plan); err != nil {
				return res, err
			}
			res.Plans++
			i.publish(ctx, y, amqp.KindPlan)
		}
	}

	n, err := i.SyncTexts(ctx, from)
	res.Texts = n
	return res, err
}

// SyncTexts replaces the stored texts with those of from.
func (i *Importer) SyncTexts(ctx context.Context, from source.TextsReader) (int, error) {
	texts, err := from.Texts(ctx)
	if err != nil {
		return 0, fmt.Errorf("read texts: %w", err)
	}
	if len(texts) == 0 {
		return 0, nil
	}
	if err := i.store.SaveTexts(ctx, texts); err != nil {
		return 0, err
	}
	i.publish(ctx, 0, amqp.KindTexts)
	return len(texts), nil
}

// publish never fails the import: the data is already stored.
func (i *Importer) publish(ctx context.Context, year int, kind string) {
	if i.publisher == nil {
		return
	}
	if err := i.publisher.PublishDocumentUpdated(ctx, year, kind); err != nil {
		slog.ErrorContext(ctx, "Failed to publish document update",
			"year", year, "kind", kind, "error", err)
	}
}
