package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"financeviz/internal/core"
	"financeviz/internal/source"
)

// Store keeps every year's inputs in memory.
type Store struct {
	mu         sync.RWMutex
	aggregated map[int]*core.Node
	documents  map[int]*core.Document
	plans      map[int]*core.Plan
	texts      map[string]core.Texts
}

var (
	_ source.DocumentReader = (*Store)(nil)
	_ source.TextsReader    = (*Store)(nil)
	_ source.DocumentWriter = (*Store)(nil)
	_ source.TextsWriter    = (*Store)(nil)
)

func New() *Store {
	return &Store{
		aggregated: map[int]*core.Node{},
		documents:  map[int]*core.Document{},
		plans:      map[int]*core.Plan{},
		texts:      map[string]core.Texts{},
	}
}

// NewFromDir loads a data directory laid out as
//
//	<dir>/texts.json
//	<dir>/<year>/aggregated.json
//	<dir>/<year>/document.json
//	<dir>/<year>/plan.json
//
// Missing files are skipped. Directories whose name is not a year are ignored.
func NewFromDir(dir string) (*Store, error) {
	s := New()

	if err := readJSON(filepath.Join(dir, "texts.json"), &s.texts); err != nil {
		return nil, err
	}
	if s.texts == nil {
		s.texts = map[string]core.Texts{}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		year, err := strconv.Atoi(e.Name())
		if err != nil || year <= 0 {
			continue
		}
		yearDir := filepath.Join(dir, e.Name())

		var tree core.Node
		if ok, err := readOptional(filepath.Join(yearDir, "aggregated.json"), &tree); err != nil {
			return nil, err
		} else if ok {
			s.aggregated[year] = &tree
		}

		var doc core.Document
		if ok, err := readOptional(filepath.Join(yearDir, "document.json"), &doc); err != nil {
			return nil, err
		} else if ok {
			doc.Year = year
			s.documents[year] = &doc
		}

		var plan core.Plan
		if ok, err := readOptional(filepath.Join(yearDir, "plan.json"), &plan); err != nil {
			return nil, err
		} else if ok {
			plan.Year = year
			s.plans[year] = &plan
		}
	}
	return s, nil
}

func readOptional(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", path, err)
	}
	return true, nil
}

func readJSON(path string, v any) error {
	_, err := readOptional(path, v)
	return err
}

// Years returns every year holding at least one input, ascending.
func (s *Store) Years(_ context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[int]struct{}{}
	for y := range s.aggregated {
		seen[y] = struct{}{}
	}
	for y := range s.documents {
		seen[y] = struct{}{}
	}
	for y := range s.plans {
		seen[y] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen)), nil
}

func (s *Store) Aggregated(_ context.Context, year int) (*core.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aggregated[year], nil
}

func (s *Store) Document(_ context.Context, year int) (*core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.documents[year], nil
}

func (s *Store) Plan(_ context.Context, year int) (*core.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plans[year], nil
}

// Texts returns a copy of the stored texts.
func (s *Store) Texts(_ context.Context) (map[string]core.Texts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.texts), nil
}

func (s *Store) SaveAggregated(_ context.Context, year int, tree *core.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregated[year] = tree
	return nil
}

func (s *Store) SaveDocument(_ context.Context, doc *core.Document) error {
	if doc == nil {
		return errors.New("nil document")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.Year] = doc
	return nil
}

func (s *Store) SavePlan(_ context.Context, plan *core.Plan) error {
	if plan == nil {
		return errors.New("nil plan")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.Year] = plan
	return nil
}

func (s *Store) SaveTexts(_ context.Context, texts map[string]core.Texts) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.texts, texts)
	return nil
}
