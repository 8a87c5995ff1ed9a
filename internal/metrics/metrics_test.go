package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveView(t *testing.T) {
	before := testutil.ToFloat64(viewBuilds.WithLabelValues("error"))
	ObserveView(time.Now(), errors.New("boom"))
	if got := testutil.ToFloat64(viewBuilds.WithLabelValues("error")); got != before+1 {
		t.Fatalf("error builds = %v, want %v", got, before+1)
	}
}

func TestTreeCacheLookup(t *testing.T) {
	hits := testutil.ToFloat64(treeCacheLookups.WithLabelValues("hit"))
	misses := testutil.ToFloat64(treeCacheLookups.WithLabelValues("miss"))
	TreeCacheLookup(true)
	TreeCacheLookup(false)
	TreeCacheLookup(false)
	if got := testutil.ToFloat64(treeCacheLookups.WithLabelValues("hit")); got != hits+1 {
		t.Fatalf("hits = %v", got)
	}
	if got := testutil.ToFloat64(treeCacheLookups.WithLabelValues("miss")); got != misses+2 {
		t.Fatalf("misses = %v", got)
	}
}

func TestDocumentUpdatedLabels(t *testing.T) {
	DocumentUpdated("plan", 0)
	DocumentUpdated("plan", 2021)
	if got := testutil.ToFloat64(documentUpdates.WithLabelValues("plan", "all")); got < 1 {
		t.Fatalf("expected an all-years update, got %v", got)
	}
	if got := testutil.ToFloat64(documentUpdates.WithLabelValues("plan", "2021")); got < 1 {
		t.Fatalf("expected a 2021 update, got %v", got)
	}

	before := testutil.ToFloat64(treeCacheInvalidations)
	TreesInvalidated(0)
	TreesInvalidated(3)
	if got := testutil.ToFloat64(treeCacheInvalidations); got != before+3 {
		t.Fatalf("invalidations = %v", got)
	}
}

func TestHTTPRequestAndRateLimited(t *testing.T) {
	notFound := testutil.ToFloat64(httpRequests.WithLabelValues("404"))
	limited := testutil.ToFloat64(rateLimited)
	HTTPRequest(404)
	RateLimited()
	if got := testutil.ToFloat64(httpRequests.WithLabelValues("404")); got != notFound+1 {
		t.Fatalf("404 requests = %v", got)
	}
	if got := testutil.ToFloat64(rateLimited); got != limited+1 {
		t.Fatalf("rate limited = %v", got)
	}
}
