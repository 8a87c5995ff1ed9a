package source

import (
	"context"

	"financeviz/internal/core"
)

// Ports for outbound adapters.
type (
	// DocumentReader provides the yearly budget inputs. A year with no stored
	// value yields nil and no error.
	DocumentReader interface {
		// Years returns the years holding data, ascending.
		Years(ctx context.Context) ([]int, error)

		// Aggregated returns the aggregated hierarchy of a year.
		Aggregated(ctx context.Context, year int) (*core.Node, error)

		// Document returns the raw ledger of a year.
		Document(ctx context.Context, year int) (*core.Document, error)

		// Plan returns the accounting plan of a year.
		Plan(ctx context.Context, year int) (*core.Plan, error)
	}

	// TextsReader provides the editorial texts of finance elements.
	TextsReader interface {
		Texts(ctx context.Context) (map[string]core.Texts, error)
	}

	// DocumentWriter stores yearly budget inputs.
	DocumentWriter interface {
		SaveAggregated(ctx context.Context, year int, tree *core.Node) error
		SaveDocument(ctx context.Context, doc *core.Document) error
		SavePlan(ctx context.Context, plan *core.Plan) error
	}

	// TextsWriter stores editorial texts, replacing those with the same id.
	TextsWriter interface {
		SaveTexts(ctx context.Context, texts map[string]core.Texts) error
	}
)
