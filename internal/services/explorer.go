package services

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"financeviz/internal/cache"
	"financeviz/internal/core"
	"financeviz/internal/explore"
	"financeviz/internal/finance"
	"financeviz/internal/log"
	"financeviz/internal/m52"
	"financeviz/internal/metrics"
	"financeviz/internal/source"
)

// DefaultLoadConcurrency bounds the per-year loads of one view.
const DefaultLoadConcurrency = 4

var perspectiveTitles = map[m52.Perspective]string{
	m52.OperatingExpenditure:  "Dépense de fonctionnement",
	m52.InvestmentExpenditure: "Dépense d'investissement",
}

type (
	// ElementView is everything the finance element screen displays for one
	// element and one exploration year.
	ElementView struct {
		ContentID   string      `json:"contentId"`
		Perspective string      `json:"perspective,omitempty"`
		Title       string      `json:"title"`
		Year        int         `json:"year"`
		Years       []int       `json:"years"`
		Texts       *core.Texts `json:"texts,omitempty"`
		Amount      *core.Money `json:"amount,omitempty"`

		AmountByYear map[int]core.Money   `json:"amountByYear"`
		Context      []finance.ChainEntry `json:"contextElements"`

		// PartitionByYear is the full aligned and ordered partition.
		PartitionByYear finance.PartitionByYear `json:"partitionByYear"`
		// BarChartPartitionByYear has the dual-view merge applied.
		BarChartPartitionByYear finance.PartitionByYear `json:"barChartPartitionByYear"`
		// YearPartition is the exploration year's detail.
		YearPartition finance.Partition `json:"yearPartition"`
		Order         []string          `json:"order"`

		IsLeaf     bool                 `json:"isLeaf"`
		Legend     []finance.LegendItem `json:"legend,omitempty"`
		ColorClass string               `json:"colorClass,omitempty"`
		Rows       []RowView            `json:"rows,omitempty"`
	}

	// RowView is one raw ledger row with its plan labels.
	RowView struct {
		ID            string     `json:"id"`
		Fonction      string     `json:"fonction"`
		FonctionLabel string     `json:"fonctionLabel"`
		Nature        string     `json:"nature"`
		NatureLabel   string     `json:"natureLabel"`
		Amount        core.Money `json:"amount"`
	}

	yearInputs struct {
		aggregated *core.Node
		document   *core.Document
		plan       *core.Plan
	}
)

// Explorer builds element views from the yearly budget inputs.
type Explorer struct {
	documents    source.DocumentReader
	texts        source.TextsReader
	trees        *cache.Trees
	presentation atomic.Pointer[explore.Config]
	concurrency  int
	logger       *log.Logger
}

// ExplorerOption customises an Explorer.
type ExplorerOption func(*Explorer)

// WithTreeCache memoises classification trees in trees.
func WithTreeCache(trees *cache.Trees) ExplorerOption {
	return func(e *Explorer) { e.trees = trees }
}

// WithPresentation sets the color classes and dual-view rules.
func WithPresentation(cfg *explore.Config) ExplorerOption {
	return func(e *Explorer) { e.SetPresentation(cfg) }
}

// WithLoadConcurrency bounds how many years are loaded at once.
func WithLoadConcurrency(n int) ExplorerOption {
	return func(e *Explorer) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) ExplorerOption {
	return func(e *Explorer) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewExplorer(documents source.DocumentReader, texts source.TextsReader, opts ...ExplorerOption) *Explorer {
	e := &Explorer{
		documents:   documents,
		texts:       texts,
		concurrency: DefaultLoadConcurrency,
		logger:      log.New(log.DefaultConfig()).WithComponent(log.ComponentExplorer),
	}
	e.presentation.Store(explore.Default())
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetPresentation swaps the color classes and dual-view rules used by
// subsequent views. A nil cfg is ignored.
func (e *Explorer) SetPresentation(cfg *explore.Config) {
	if cfg != nil {
		e.presentation.Store(cfg)
	}
}

// Years lists the years with budget data, ascending.
func (e *Explorer) Years(ctx context.Context) ([]int, error) {
	years, err := e.documents.Years(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}

// ElementView builds the view of element id for year. A year of zero or
// less selects the latest year with data.
func (e *Explorer) ElementView(ctx context.Context, id string, year int) (view *ElementView, err error) {
	start := time.Now()
	defer func() { metrics.ObserveView(start, err) }()

	years, err := e.documents.Years(ctx)
	if err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	if len(years) == 0 {
		return nil, core.ErrYearNotFound
	}
	if year <= 0 {
		year = years[len(years)-1]
	}
	if !slices.Contains(years, year) {
		return nil, fmt.Errorf("%w: %d", core.ErrYearNotFound, year)
	}

	perspective, isM52 := m52.PerspectiveOf(id)

	inputs, err := e.loadYears(ctx, years)
	if err != nil {
		return nil, err
	}

	indexByYear := make(map[int]finance.ElementIndex, len(years))
	treeByYear := make(map[int]*core.Node, len(years))
	labels := map[string]core.Texts{}
	for _, y := range years {
		in := inputs[y]
		var tree *core.Node
		if isM52 {
			tree = e.classificationTree(y, perspective, in)
			if y != year {
				maps.Copy(labels, m52.Labels(tree, in.plan))
			}
		}
		treeByYear[y] = tree
		indexByYear[y] = finance.BuildIndex(in.aggregated, tree)
	}
	if isM52 {
		maps.Copy(labels, m52.Labels(treeByYear[year], inputs[year].plan))
	}

	found := false
	for _, idx := range indexByYear {
		if idx[id] != nil {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", core.ErrElementNotFound, id)
	}

	texts := finance.TextsFrom(e.loadTexts(ctx), labels)
	presentation := e.presentation.Load()
	colors := presentation.Colors()
	dualView := presentation.DualView()

	element := indexByYear[year][id]
	parents := finance.ParentIndex(inputs[year].aggregated, treeByYear[year])

	aligned := finance.AlignPartitions(indexByYear, id, texts)
	ordered, order := finance.OrderPartitions(aligned)
	barChart := ordered
	yearPartition := ordered[year]
	if dualView.Applies(id) {
		barChart = dualView.MergeAll(ordered)
		yearPartition = dualView.TrimDetail(yearPartition)
	}

	view = &ElementView{
		ContentID:               id,
		Year:                    year,
		Years:                   years,
		Texts:                   texts(id),
		AmountByYear:            amountByYear(indexByYear, id),
		Context:                 finance.BuildChain(element, parents, texts, colors),
		PartitionByYear:         ordered,
		BarChartPartitionByYear: barChart,
		YearPartition:           yearPartition,
		Order:                   order,
		IsLeaf:                  finance.IsLeaf(yearPartition),
	}
	if isM52 {
		view.Perspective = string(perspective)
	}
	if amount, ok := view.AmountByYear[year]; ok {
		view.Amount = &amount
	}
	view.Title = title(view)

	if view.IsLeaf {
		view.ColorClass = colors(id)
	} else {
		view.Legend = finance.LegendItems(barChart, order, colors)
	}
	if element != nil && element.IsLeaf() {
		view.Rows = rowViews(core.LeafRowsOf(element), inputs[year].plan)
	}

	e.logger.DebugContext(ctx, "Element view built",
		log.FieldElementID, id,
		log.FieldYear, year,
		log.FieldPerspective, view.Perspective,
		"years", len(years),
		"partition_size", len(yearPartition),
		"chain_length", len(view.Context))
	return view, nil
}

// loadYears fetches every year's inputs concurrently.
func (e *Explorer) loadYears(ctx context.Context, years []int) (map[int]yearInputs, error) {
	loaded := make([]yearInputs, len(years))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, y := range years {
		g.Go(func() error {
			aggregated, err := e.documents.Aggregated(gctx, y)
			if err != nil {
				return fmt.Errorf("load aggregated %d: %w", y, err)
			}
			document, err := e.documents.Document(gctx, y)
			if err != nil {
				return fmt.Errorf("load document %d: %w", y, err)
			}
			plan, err := e.documents.Plan(gctx, y)
			if err != nil {
				return fmt.Errorf("load plan %d: %w", y, err)
			}
			loaded[i] = yearInputs{aggregated: aggregated, document: document, plan: plan}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	inputs := make(map[int]yearInputs, len(years))
	for i, y := range years {
		inputs[y] = loaded[i]
	}
	return inputs, nil
}

func (e *Explorer) classificationTree(year int, perspective m52.Perspective, in yearInputs) *core.Node {
	build := func() *core.Node {
		return m52.BuildTree(in.document, in.plan, string(perspective))
	}
	if in.document == nil || in.plan == nil {
		return nil
	}
	if e.trees == nil {
		return build()
	}
	return e.trees.Get(year, string(perspective), build)
}

// loadTexts returns the editorial texts. Failures degrade to unlabelled
// elements rather than failing the view.
func (e *Explorer) loadTexts(ctx context.Context) map[string]core.Texts {
	if e.texts == nil {
		return nil
	}
	texts, err := e.texts.Texts(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to load texts, continuing without labels",
			log.FieldError, err)
		return nil
	}
	return texts
}

func amountByYear(indexByYear map[int]finance.ElementIndex, id string) map[int]core.Money {
	amounts := make(map[int]core.Money, len(indexByYear))
	for y, idx := range indexByYear {
		if n := idx[id]; n != nil {
			amounts[y] = core.TotalOf(n)
		}
	}
	return amounts
}

func rowViews(rows []core.Row, plan *core.Plan) []RowView {
	sorted := finance.SortRows(rows)
	views := make([]RowView, len(sorted))
	for i, r := range sorted {
		views[i] = RowView{
			ID:            r.ID(),
			Fonction:      r.Fonction,
			FonctionLabel: m52.FonctionLabel(plan, r.Fonction),
			Nature:        r.Nature,
			NatureLabel:   m52.NatureLabel(plan, r.Nature),
			Amount:        r.Amount,
		}
	}
	return views
}

func title(v *ElementView) string {
	label := ""
	if v.Texts != nil {
		label = v.Texts.Label
	}
	if prefix, ok := perspectiveTitles[m52.Perspective(v.Perspective)]; ok {
		return fmt.Sprintf("%s - %s en %d", prefix, label, v.Year)
	}
	return fmt.Sprintf("%s en %d", label, v.Year)
}
