package core

import (
	"encoding/json"
	"testing"
)

func money(cents int64) *Money { return &Money{Cents: cents} }

func TestChildrenUnmarshalArrayAndObject(t *testing.T) {
	arrayDoc := `{"id":"DF","children":[{"id":"DF.1"},{"id":"DF.2"}]}`
	objectDoc := `{"id":"DF","children":{"DF.2":{"total":3},"DF.1":{"id":"DF.1","total":1}}}`

	var a, o Node
	if err := json.Unmarshal([]byte(arrayDoc), &a); err != nil {
		t.Fatalf("array form: %v", err)
	}
	if err := json.Unmarshal([]byte(objectDoc), &o); err != nil {
		t.Fatalf("object form: %v", err)
	}

	if got := a.ChildIDs(); len(got) != 2 || got[0] != "DF.1" || got[1] != "DF.2" {
		t.Fatalf("array children: %v", got)
	}
	// object key order is kept and the key becomes the id
	if got := o.ChildIDs(); len(got) != 2 || got[0] != "DF.2" || got[1] != "DF.1" {
		t.Fatalf("object children: %v", got)
	}
	if o.Child("DF.2").Total.Cents != 300 {
		t.Fatalf("object child total: %+v", o.Child("DF.2").Total)
	}
}

func TestChildrenUnmarshalRejectsScalars(t *testing.T) {
	var n Node
	if err := json.Unmarshal([]byte(`{"id":"x","children":3}`), &n); err == nil {
		t.Fatalf("expected error for scalar children")
	}
}

func TestTotalOf(t *testing.T) {
	leafA := &Node{ID: "a", Elements: []Row{{Amount: Money{Cents: 100}}, {Amount: Money{Cents: 50}}}}
	leafB := &Node{ID: "b", Elements: []Row{{Amount: Money{Cents: 25}}}}
	root := &Node{ID: "root", Children: Children{leafA, leafB}}

	if got := TotalOf(root).Cents; got != 175 {
		t.Fatalf("derived total = %d, want 175", got)
	}

	root.Total = money(1000)
	if got := TotalOf(root).Cents; got != 1000 {
		t.Fatalf("own total should win, got %d", got)
	}

	// an explicit zero is a real total, not a missing one
	leafA.Total = money(0)
	if got := TotalOf(leafA).Cents; got != 0 {
		t.Fatalf("explicit zero total = %d", got)
	}

	if got := TotalOf(nil).Cents; got != 0 {
		t.Fatalf("nil node total = %d", got)
	}
}

func TestLeafRowsOf(t *testing.T) {
	leaf := &Node{ID: "leaf", Elements: []Row{{Nature: "6042"}}}
	mid := &Node{ID: "mid", Children: Children{leaf, {ID: "empty"}}}
	root := &Node{ID: "root", Children: Children{mid}}

	rows := LeafRowsOf(root)
	if len(rows) != 1 || rows[0].Nature != "6042" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if LeafRowsOf(nil) != nil {
		t.Fatalf("nil node should have no rows")
	}
}

func TestRowID(t *testing.T) {
	r := Row{Direction: "D", Section: "F", Fonction: "51", Nature: "6522"}
	if got := r.ID(); got != "DF-F51-N6522" {
		t.Fatalf("Row.ID() = %q", got)
	}
}
