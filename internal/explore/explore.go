// Package explore holds the presentation settings of the finance explorer:
// color classes per element and the dual-view merge rules.
package explore

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"financeviz/internal/finance"
)

// Config is the YAML presentation configuration.
type Config struct {
	// ColorClasses maps an element id, or an id prefix ending in "*", to a
	// CSS color class.
	ColorClasses map[string]string `yaml:"color_classes"`

	DualViewRules *DualViewConfig `yaml:"dual_view"`
}

// DualViewConfig configures the merged perspective. Disabled turns the
// merge off entirely.
type DualViewConfig struct {
	Disabled       bool   `yaml:"disabled"`
	ParentID       string `yaml:"parent_id"`
	FirstID        string `yaml:"first_id"`
	SecondID       string `yaml:"second_id"`
	Label          string `yaml:"label"`
	FirstLinkText  string `yaml:"first_link_text"`
	SecondLinkText string `yaml:"second_link_text"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ColorClasses: map[string]string{
			"DF":     "rdfi-D rdfi-F",
			"DF.1":   "rdfi-D rdfi-F area-color-1",
			"DF.2":   "rdfi-D rdfi-F area-color-2",
			"DF.3":   "rdfi-D rdfi-F area-color-3",
			"DF.4":   "rdfi-D rdfi-F area-color-4",
			"DF.5":   "rdfi-D rdfi-F area-color-5",
			"DF.6":   "rdfi-D rdfi-F area-color-6",
			"DI":     "rdfi-D rdfi-I",
			"RF":     "rdfi-R rdfi-F",
			"RI":     "rdfi-R rdfi-I",
			"M52-D*": "rdfi-D",
			"M52-R*": "rdfi-R",
		},
	}
}

// Load reads a YAML file. An empty path returns Default.
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read explore config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode explore config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the dual view ids.
func (c *Config) Validate() error {
	dv := c.DualViewRules
	if dv == nil || dv.Disabled {
		return nil
	}
	var errs []error
	if dv.ParentID == "" {
		errs = append(errs, errors.New("dual_view.parent_id is required"))
	}
	if dv.FirstID == "" || dv.SecondID == "" {
		errs = append(errs, errors.New("dual_view.first_id and dual_view.second_id are required"))
	}
	if dv.FirstID != "" && dv.FirstID == dv.SecondID {
		errs = append(errs, fmt.Errorf("dual_view sub-views must differ, both are %q", dv.FirstID))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid explore config: %w", errors.Join(errs...))
	}
	return nil
}

// DualView returns the merge rules. Without a dual_view section the
// built-in social-action split is used; a disabled section yields a rule
// that never applies.
func (c *Config) DualView() finance.DualView {
	if c == nil || c.DualViewRules == nil {
		return finance.DefaultDualView()
	}
	if c.DualViewRules.Disabled {
		return finance.DualView{}
	}
	dv := finance.DefaultDualView()
	dv.ParentID = c.DualViewRules.ParentID
	dv.FirstID = c.DualViewRules.FirstID
	dv.SecondID = c.DualViewRules.SecondID
	if c.DualViewRules.Label != "" {
		dv.Label = c.DualViewRules.Label
	}
	if c.DualViewRules.FirstLinkText != "" {
		dv.FirstLinkText = c.DualViewRules.FirstLinkText
	}
	if c.DualViewRules.SecondLinkText != "" {
		dv.SecondLinkText = c.DualViewRules.SecondLinkText
	}
	return dv
}

// ColorClassOf returns the color class of id: an exact entry first, then
// the longest matching prefix entry, else "".
func (c *Config) ColorClassOf(id string) string {
	if c == nil {
		return ""
	}
	if class, ok := c.ColorClasses[id]; ok {
		return class
	}
	best, class := -1, ""
	for key, v := range c.ColorClasses {
		prefix, ok := strings.CutSuffix(key, "*")
		if !ok || !strings.HasPrefix(id, prefix) {
			continue
		}
		if len(prefix) > best || (len(prefix) == best && v < class) {
			best, class = len(prefix), v
		}
	}
	return class
}

// Colors adapts ColorClassOf into a finance.ColorFunc.
func (c *Config) Colors() finance.ColorFunc {
	return c.ColorClassOf
}
