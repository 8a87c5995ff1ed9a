package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"financeviz/internal/source/memory"
)

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) PublishDocumentUpdated(_ context.Context, year int, kind string) error {
	p.events = append(p.events, fmt.Sprintf("%s/%d", kind, year))
	return p.err
}

func TestImporterCopiesEverything(t *testing.T) {
	ctx := context.Background()
	from := newTestStore(t)
	to := memory.New()
	pub := &recordingPublisher{}

	res, err := NewImporter(to, pub).Import(ctx, from)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	want := ImportResult{Years: []int{2020, 2021}, Aggregated: 2, Documents: 1, Plans: 1, Texts: 4}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("result (-want +got):\n%s", diff)
	}
	wantEvents := []string{"aggregated/2020", "aggregated/2021", "document/2021", "plan/2021", "texts/0"}
	if diff := cmp.Diff(wantEvents, pub.events); diff != "" {
		t.Fatalf("events (-want +got):\n%s", diff)
	}

	doc, _ := to.Document(ctx, 2021)
	if doc == nil || len(doc.Rows) != 3 {
		t.Fatalf("document not copied: %+v", doc)
	}
}

func TestImporterPublishFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{err: errors.New("broker down")}
	to := memory.New()

	n, err := NewImporter(to, pub).SyncTexts(ctx, newTestStore(t))
	if err != nil || n != 4 {
		t.Fatalf("SyncTexts = %d, %v", n, err)
	}
	texts, _ := to.Texts(ctx)
	if texts["DF"].Label != "Dépenses de fonctionnement" {
		t.Fatalf("texts not stored: %+v", texts)
	}
}

func TestImporterWithoutPublisher(t *testing.T) {
	to := memory.New()
	empty := memory.New()
	res, err := NewImporter(to, nil).Import(context.Background(), empty)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(res.Years) != 0 || res.Texts != 0 {
		t.Fatalf("expected an empty import, got %+v", res)
	}
}
