package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"financeviz/internal/core"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "financeviz.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	total := core.Money{Cents: 12000}
	tree := &core.Node{ID: "total", Total: &total, Children: core.Children{{ID: "DF"}}}
	if err := repo.SaveAggregated(ctx, 2020, tree); err != nil {
		t.Fatalf("SaveAggregated: %v", err)
	}
	doc := &core.Document{Year: 2021, Rows: []core.Row{
		{Direction: "D", Section: "F", Fonction: "51", Nature: "6522", Amount: core.Money{Cents: 1050}},
	}}
	if err := repo.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	plan := &core.Plan{Year: 2021, Fonctions: map[string]string{"5": "Action sociale"}}
	if err := repo.SavePlan(ctx, plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	years, err := repo.Years(ctx)
	if err != nil {
		t.Fatalf("Years: %v", err)
	}
	if diff := cmp.Diff([]int{2020, 2021}, years); diff != "" {
		t.Fatalf("years (-want +got):\n%s", diff)
	}

	gotTree, err := repo.Aggregated(ctx, 2020)
	if err != nil {
		t.Fatalf("Aggregated: %v", err)
	}
	if diff := cmp.Diff(tree, gotTree); diff != "" {
		t.Fatalf("tree (-want +got):\n%s", diff)
	}
	gotDoc, _ := repo.Document(ctx, 2021)
	if diff := cmp.Diff(doc, gotDoc); diff != "" {
		t.Fatalf("document (-want +got):\n%s", diff)
	}
	gotPlan, _ := repo.Plan(ctx, 2021)
	if gotPlan == nil || gotPlan.Fonctions["5"] != "Action sociale" {
		t.Fatalf("unexpected plan: %+v", gotPlan)
	}
}

func TestRepositoryMissingYear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	tree, err := repo.Aggregated(ctx, 1999)
	if err != nil || tree != nil {
		t.Fatalf("expected nil tree and no error, got %v %v", tree, err)
	}
	doc, err := repo.Document(ctx, 1999)
	if err != nil || doc != nil {
		t.Fatalf("expected nil document and no error, got %v %v", doc, err)
	}
	plan, err := repo.Plan(ctx, 1999)
	if err != nil || plan != nil {
		t.Fatalf("expected nil plan and no error, got %v %v", plan, err)
	}
}

func TestRepositoryTextsUpsert(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	first := map[string]core.Texts{
		"DF":   {Label: "Dépenses"},
		"DF.1": {Label: "Actions sociales", Links: []core.Link{{Text: "x", URL: "#!/finance-details/DF.1"}}},
	}
	if err := repo.SaveTexts(ctx, first); err != nil {
		t.Fatalf("SaveTexts: %v", err)
	}
	if err := repo.SaveTexts(ctx, map[string]core.Texts{"DF": {Label: "Dépenses de fonctionnement"}}); err != nil {
		t.Fatalf("SaveTexts: %v", err)
	}

	got, err := repo.Texts(ctx)
	if err != nil {
		t.Fatalf("Texts: %v", err)
	}
	want := map[string]core.Texts{
		"DF":   {Label: "Dépenses de fonctionnement", Links: []core.Link{}},
		"DF.1": first["DF.1"],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("texts (-want +got):\n%s", diff)
	}
}

func TestSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "financeviz.db")

	version, dirty, err := SchemaVersion(path)
	if err != nil || version != 0 || dirty {
		t.Fatalf("fresh database: version=%d dirty=%v err=%v", version, dirty, err)
	}

	if err := RunMigrations(path); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second RunMigrations should be a no-op: %v", err)
	}
	version, dirty, err = SchemaVersion(path)
	if err != nil || version != 1 || dirty {
		t.Fatalf("migrated database: version=%d dirty=%v err=%v", version, dirty, err)
	}
}
