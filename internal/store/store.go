package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rebeliceyang/lazydash/internal/dashboard"
	"github.com/rebeliceyang/lazydash/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	// ErrFilterNotFound is returned when no filter has the requested key or ID
	ErrFilterNotFound = errors.New("filter not found")
	// ErrFilterTypeImmutable is returned when an update tries to change a filter's type
	ErrFilterTypeImmutable = errors.New("filter type cannot be changed after creation")
	// ErrDuplicateKey is returned when a filter key or block ID is already used
	ErrDuplicateKey = errors.New("key already exists")
)

// Store persists one dashboard as a YAML file
type Store struct {
	path      string
	dashboard dashboard.Dashboard
}

// Open creates a store for path, loading the dashboard if the file exists
func Open(path string) (*Store, error) {
	s := &Store{
		path:      path,
		dashboard: dashboard.Dashboard{ID: uuid.New().String()},
	}

	// Load existing dashboard if file exists
	if _, err := os.Stat(path); err == nil {
		if err := s.Load(); err != nil {
			return nil, fmt.Errorf("failed to load dashboard: %w", err)
		}
	}

	return s, nil
}

// Path returns the dashboard file path
func (s *Store) Path() string {
	return s.path
}

// Load loads the dashboard from its YAML file
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read dashboard file: %w", err)
	}

	var d dashboard.Dashboard
	if err := yaml.Unmarshal(data, &d); err != nil {
		return fmt.Errorf("failed to parse dashboard: %w", err)
	}

	normalize(&d)
	s.dashboard = d
	return nil
}

// normalize assigns missing IDs and attaches bindings to the dashboard
func normalize(d *dashboard.Dashboard) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	for i := range d.Filters {
		if d.Filters[i].ID == "" {
			d.Filters[i].ID = uuid.New().String()
		}
	}
	for i := range d.Bindings {
		if d.Bindings[i].DashboardID == "" {
			d.Bindings[i].DashboardID = d.ID
		}
	}
}

// Save saves the dashboard to its YAML file
func (s *Store) Save() error {
	data, err := yaml.Marshal(s.dashboard)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard: %w", err)
	}

	// Ensure directory exists
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dashboard directory: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write dashboard file: %w", err)
	}

	return nil
}

// Dashboard returns a copy of the stored dashboard
func (s *Store) Dashboard() dashboard.Dashboard {
	d := s.dashboard
	d.Filters = append([]models.Filter(nil), s.dashboard.Filters...)
	d.Bindings = append([]models.QueryFilterBinding(nil), s.dashboard.Bindings...)
	d.Blocks = append([]dashboard.Block(nil), s.dashboard.Blocks...)
	return d
}

// SetName renames the dashboard
func (s *Store) SetName(name string) error {
	s.dashboard.Name = strings.TrimSpace(name)
	return s.save("dashboard name")
}

// SetVariable sets a dashboard variable
func (s *Store) SetVariable(name string, value any) error {
	if s.dashboard.Variables == nil {
		s.dashboard.Variables = models.Variables{}
	}
	s.dashboard.Variables[name] = value
	return s.save("variable")
}

// Filters returns all filters
func (s *Store) Filters() []models.Filter {
	return append([]models.Filter(nil), s.dashboard.Filters...)
}

// GetFilter returns a filter by key
func (s *Store) GetFilter(key string) (*models.Filter, error) {
	i := s.filterIndex(key)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrFilterNotFound, key)
	}
	f := s.dashboard.Filters[i]
	return &f, nil
}

// AddFilter validates and adds a new filter with a fresh ID
func (s *Store) AddFilter(f models.Filter) (*models.Filter, error) {
	f.Key = strings.TrimSpace(f.Key)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if s.filterIndex(f.Key) >= 0 {
		return nil, fmt.Errorf("%w: filter %q", ErrDuplicateKey, f.Key)
	}

	f.ID = uuid.New().String()
	s.dashboard.Filters = append(s.dashboard.Filters, f)

	if err := s.save("filter"); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpdateFilter replaces the filter with the same ID. The type of an existing
// filter never changes; use a new filter instead.
func (s *Store) UpdateFilter(f models.Filter) error {
	f.Key = strings.TrimSpace(f.Key)
	if err := f.Validate(); err != nil {
		return err
	}

	for i, existing := range s.dashboard.Filters {
		if existing.ID != f.ID {
			continue
		}
		if existing.Type != f.Type {
			return fmt.Errorf("%w: filter %q is %s", ErrFilterTypeImmutable, existing.Key, existing.Type)
		}
		if other := s.filterIndex(f.Key); other >= 0 && other != i {
			return fmt.Errorf("%w: filter %q", ErrDuplicateKey, f.Key)
		}
		if existing.Key != f.Key {
			s.renameBindings(existing.Key, f.Key)
		}
		s.dashboard.Filters[i] = f
		return s.save("filter")
	}
	return fmt.Errorf("%w: id %q", ErrFilterNotFound, f.ID)
}

// DeleteFilter removes a filter by key; its bindings fall back to the inactive branch
func (s *Store) DeleteFilter(key string) error {
	i := s.filterIndex(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrFilterNotFound, key)
	}
	s.dashboard.Filters = append(s.dashboard.Filters[:i], s.dashboard.Filters[i+1:]...)
	return s.save("filters after deletion")
}

// SetActive toggles whether a filter contributes its active fragment
func (s *Store) SetActive(key string, active bool) error {
	i := s.filterIndex(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrFilterNotFound, key)
	}
	s.dashboard.Filters[i].Active = active
	return s.save("filter state")
}

// SetCurrentValue sets the user's value for a filter; nil restores the initial value
func (s *Store) SetCurrentValue(key string, value any) error {
	i := s.filterIndex(key)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrFilterNotFound, key)
	}
	f := s.dashboard.Filters[i]
	f.CurrentValue = value
	if err := f.Validate(); err != nil {
		return err
	}
	s.dashboard.Filters[i] = f
	return s.save("filter value")
}

// ResetFilters clears every current value
func (s *Store) ResetFilters() error {
	for i := range s.dashboard.Filters {
		s.dashboard.Filters[i].CurrentValue = nil
	}
	return s.save("filter values")
}

// Bindings returns all bindings
func (s *Store) Bindings() []models.QueryFilterBinding {
	return append([]models.QueryFilterBinding(nil), s.dashboard.Bindings...)
}

// SetBinding adds or replaces the binding for b.FilterKey in this dashboard
func (s *Store) SetBinding(b models.QueryFilterBinding) error {
	b.DashboardID = s.dashboard.ID
	if err := b.Validate(); err != nil {
		return err
	}
	if s.filterIndex(b.FilterKey) < 0 {
		return fmt.Errorf("%w: %q", ErrFilterNotFound, b.FilterKey)
	}

	for i, existing := range s.dashboard.Bindings {
		if existing.DashboardID == b.DashboardID && existing.FilterKey == b.FilterKey {
			s.dashboard.Bindings[i] = b
			return s.save("binding")
		}
	}
	s.dashboard.Bindings = append(s.dashboard.Bindings, b)
	return s.save("binding")
}

// DeleteBinding removes the binding for key; a missing binding is not an error
func (s *Store) DeleteBinding(key string) error {
	kept := s.dashboard.Bindings[:0]
	for _, b := range s.dashboard.Bindings {
		if b.FilterKey != key {
			kept = append(kept, b)
		}
	}
	s.dashboard.Bindings = kept
	return s.save("bindings after deletion")
}

// AddBlock appends a block with a unique ID
func (s *Store) AddBlock(b dashboard.Block) error {
	if _, err := b.Config(); err != nil {
		return err
	}
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	if _, exists := s.dashboard.Block(b.ID); exists {
		return fmt.Errorf("%w: block %q", ErrDuplicateKey, b.ID)
	}
	s.dashboard.Blocks = append(s.dashboard.Blocks, b)
	return s.save("block")
}

func (s *Store) save(what string) error {
	if err := s.Save(); err != nil {
		return fmt.Errorf("failed to save %s: %w", what, err)
	}
	return nil
}

func (s *Store) filterIndex(key string) int {
	for i, f := range s.dashboard.Filters {
		if f.Key == key {
			return i
		}
	}
	return -1
}

func (s *Store) renameBindings(from, to string) {
	for i := range s.dashboard.Bindings {
		if s.dashboard.Bindings[i].FilterKey == from {
			s.dashboard.Bindings[i].FilterKey = to
		}
	}
}

// List returns the dashboard names (file names without extension) directly in dir, sorted
func List(dir string) ([]string, error) {
	return Find(dir, "*.{yaml,yml}")
}

// Find returns the names of dashboard files under dir matching a doublestar
// pattern such as "**/*.yaml". Names are slash-separated paths relative to dir
// without their extension. A missing dir yields no names.
func Find(dir, pattern string) ([]string, error) {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid dashboard pattern %q", pattern)
	}

	matches, err := doublestar.FilepathGlob(filepath.Join(dir, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, fmt.Errorf("failed to search dashboard directory: %w", err)
	}

	var names []string
	for _, match := range matches {
		ext := filepath.Ext(match)
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if info, err := os.Stat(match); err != nil || info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(dir, match)
		if err != nil {
			continue
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(rel, ext)))
	}
	sort.Strings(names)
	return names, nil
}
