package explore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"financeviz/internal/finance"
)

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(finance.DefaultDualView(), cfg.DualView()); diff != "" {
		t.Fatalf("dual view (-want +got):\n%s", diff)
	}
	if got := cfg.ColorClassOf("DF.2"); got != "rdfi-D rdfi-F area-color-2" {
		t.Fatalf("color class of DF.2 = %q", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "explore.yaml")
	content := `
color_classes:
  RF: revenue
  "M52-*": m52
  "M52-DF-*": m52-df
dual_view:
  parent_id: RF
  first_id: RF.1
  second_id: RF.2
  label: Fiscalité
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	dv := cfg.DualView()
	want := finance.DualView{
		ParentID:       "RF",
		FirstID:        "RF.1",
		SecondID:       "RF.2",
		Label:          "Fiscalité",
		FirstLinkText:  "(par prestation)",
		SecondLinkText: "(par public)",
	}
	if diff := cmp.Diff(want, dv); diff != "" {
		t.Fatalf("dual view (-want +got):\n%s", diff)
	}

	cases := map[string]string{
		"RF":        "revenue",
		"M52-DF-F5": "m52-df",
		"M52-RI":    "m52",
		"DI":        "",
	}
	for id, want := range cases {
		if got := cfg.ColorClassOf(id); got != want {
			t.Errorf("ColorClassOf(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestParseDisabledDualView(t *testing.T) {
	cfg, err := Parse([]byte("dual_view:\n  disabled: true\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.DualView().Applies("DF") {
		t.Fatalf("disabled dual view should never apply")
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"missing ids", "dual_view:\n  parent_id: DF\n", "first_id"},
		{"same ids", "dual_view:\n  parent_id: DF\n  first_id: A\n  second_id: A\n", "must differ"},
		{"bad yaml", "color_classes: [", "decode explore config"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.content))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
