package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/lazydash/internal/dashboard"
	"github.com/rebeliceyang/lazydash/internal/filter"
	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dashboards", "sales.yaml"))
	require.NoError(t, err)
	return s
}

func TestOpen_NewDashboardGetsID(t *testing.T) {
	s := openTemp(t)
	assert.NotEmpty(t, s.Dashboard().ID)
	assert.Empty(t, s.Filters())
}

func TestStore_AddFilterPersists(t *testing.T) {
	s := openTemp(t)

	f, err := s.AddFilter(models.Filter{Key: " region ", Name: "Region", Type: models.FilterString, InitialValue: "north"})
	require.NoError(t, err)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "region", f.Key)

	reopened, err := Open(s.Path())
	require.NoError(t, err)
	assert.Equal(t, s.Dashboard().ID, reopened.Dashboard().ID)
	require.Len(t, reopened.Filters(), 1)
	assert.Equal(t, f.ID, reopened.Filters()[0].ID)
	assert.Equal(t, "north", reopened.Filters()[0].InitialValue)
}

func TestStore_AddFilterRejectsDuplicatesAndInvalid(t *testing.T) {
	s := openTemp(t)
	_, err := s.AddFilter(models.Filter{Key: "region", Type: models.FilterString})
	require.NoError(t, err)

	_, err = s.AddFilter(models.Filter{Key: "region", Type: models.FilterInteger})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = s.AddFilter(models.Filter{Key: "bad", Type: "color"})
	assert.Error(t, err)
}

func TestStore_UpdateFilterTypeImmutable(t *testing.T) {
	s := openTemp(t)
	f, err := s.AddFilter(models.Filter{Key: "year", Type: models.FilterInteger, InitialValue: 2024})
	require.NoError(t, err)

	changed := *f
	changed.Type = models.FilterString
	assert.ErrorIs(t, s.UpdateFilter(changed), ErrFilterTypeImmutable)

	renamed := *f
	renamed.Name = "Fiscal year"
	require.NoError(t, s.UpdateFilter(renamed))
	got, err := s.GetFilter("year")
	require.NoError(t, err)
	assert.Equal(t, "Fiscal year", got.Name)

	missing := *f
	missing.ID = "nope"
	assert.ErrorIs(t, s.UpdateFilter(missing), ErrFilterNotFound)
}

func TestStore_UpdateFilterRenamesBindings(t *testing.T) {
	s := openTemp(t)
	f, err := s.AddFilter(models.Filter{Key: "year", Type: models.FilterInteger})
	require.NoError(t, err)
	_, err = s.AddFilter(models.Filter{Key: "region", Type: models.FilterString})
	require.NoError(t, err)
	require.NoError(t, s.SetBinding(models.QueryFilterBinding{FilterKey: "year", ActiveValue: "year = {{val}}", InactiveValue: "TRUE"}))

	clash := *f
	clash.Key = "region"
	assert.ErrorIs(t, s.UpdateFilter(clash), ErrDuplicateKey)

	renamed := *f
	renamed.Key = "fy"
	require.NoError(t, s.UpdateFilter(renamed))
	assert.Equal(t, "fy", s.Bindings()[0].FilterKey)
}

func TestStore_SetActiveAndValue(t *testing.T) {
	s := openTemp(t)
	_, err := s.AddFilter(models.Filter{
		Key:          "status",
		Type:         models.FilterList,
		InitialValue: []any{"open"},
		Options:      []models.FilterOption{{Label: "Open", Value: "open"}, {Label: "Closed", Value: "closed"}},
	})
	require.NoError(t, err)

	require.NoError(t, s.SetActive("status", true))
	require.NoError(t, s.SetCurrentValue("status", []any{"open", "closed"}))
	assert.Error(t, s.SetCurrentValue("status", []any{"archived"}))

	got, err := s.GetFilter("status")
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, []any{"open", "closed"}, got.EffectiveValue())

	require.NoError(t, s.ResetFilters())
	got, err = s.GetFilter("status")
	require.NoError(t, err)
	assert.Equal(t, []any{"open"}, got.EffectiveValue())

	assert.ErrorIs(t, s.SetActive("ghost", true), ErrFilterNotFound)
	assert.ErrorIs(t, s.SetCurrentValue("ghost", 1), ErrFilterNotFound)
}

func TestStore_SetBinding(t *testing.T) {
	s := openTemp(t)
	_, err := s.AddFilter(models.Filter{Key: "region", Type: models.FilterString})
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetBinding(models.QueryFilterBinding{FilterKey: "ghost"}), ErrFilterNotFound)
	assert.Error(t, s.SetBinding(models.QueryFilterBinding{FilterKey: "region", InactiveValue: "x = {{val}}"}))

	require.NoError(t, s.SetBinding(models.QueryFilterBinding{FilterKey: "region", ActiveValue: "a", InactiveValue: "b"}))
	require.NoError(t, s.SetBinding(models.QueryFilterBinding{FilterKey: "region", ActiveValue: "c", InactiveValue: "d"}))

	bindings := s.Bindings()
	require.Len(t, bindings, 1)
	assert.Equal(t, "c", bindings[0].ActiveValue)
	assert.Equal(t, s.Dashboard().ID, bindings[0].DashboardID)

	require.NoError(t, s.DeleteBinding("region"))
	assert.Empty(t, s.Bindings())
}

func TestStore_DeleteFilter(t *testing.T) {
	s := openTemp(t)
	_, err := s.AddFilter(models.Filter{Key: "a", Type: models.FilterString})
	require.NoError(t, err)

	require.NoError(t, s.DeleteFilter("a"))
	assert.Empty(t, s.Filters())
	assert.ErrorIs(t, s.DeleteFilter("a"), ErrFilterNotFound)
}

func TestStore_AddBlock(t *testing.T) {
	s := openTemp(t)

	require.NoError(t, s.AddBlock(dashboard.NewBlock("sales", "Sales", dashboard.QueryBlock{SQL: "SELECT 1"})))
	assert.ErrorIs(t, s.AddBlock(dashboard.NewBlock("sales", "", dashboard.TextBlock{})), ErrDuplicateKey)
	assert.Error(t, s.AddBlock(dashboard.Block{ID: "broken", Type: dashboard.BlockTable}))

	require.NoError(t, s.AddBlock(dashboard.NewBlock("", "", dashboard.TextBlock{Template: "hi"})))
	assert.Len(t, s.Dashboard().Blocks, 2)
}

func TestStore_DashboardIsACopy(t *testing.T) {
	s := openTemp(t)
	_, err := s.AddFilter(models.Filter{Key: "a", Type: models.FilterString})
	require.NoError(t, err)

	d := s.Dashboard()
	d.Filters[0].Key = "changed"
	assert.Equal(t, "a", s.Filters()[0].Key)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.yaml")
	body := `
id: ops
name: Operations
variables:
  team: SRE
filters:
  - key: region
    type: string
    active: true
    initial_value: north
  - key: amount
    type: integer_range
    active: true
    initial_value: [10, 100]
bindings:
  - filter_key: region
    active_value: "region = '{{val}}'"
    inactive_value: "1=1"
  - filter_key: amount
    active_value: "amount BETWEEN {{val}}"
    inactive_value: "TRUE"
blocks:
  - id: intro
    type: text
    text:
      template: "{{team}} view"
  - id: incidents
    type: table
    table:
      sql: "SELECT * FROM incidents WHERE {{region}} AND {{amount}}"
      page_size: 10
      columns:
        - key: id
          type: number
          sortable: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	s, err := Open(path)
	require.NoError(t, err)
	d := s.Dashboard()
	require.NoError(t, d.Validate())

	assert.Equal(t, "ops", d.ID)
	for _, f := range d.Filters {
		assert.NotEmpty(t, f.ID)
	}
	for _, b := range d.Bindings {
		assert.Equal(t, "ops", b.DashboardID)
	}

	block, ok := d.Block("incidents")
	require.True(t, ok)
	cfg, err := block.Config()
	require.NoError(t, err)
	tb := cfg.(dashboard.TableBlock)

	sql := filter.BindFilters(tb.SQL, d.ID, d.Filters, d.Bindings)
	assert.Equal(t, "SELECT * FROM incidents WHERE region = 'north' AND amount BETWEEN 10 AND 100", sql)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.yml", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755))

	names, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	names, err = List(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestFind(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"top.yaml", "team/ops.yaml", "team/deep/cost.yml", "team/readme.md"} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	names, err := Find(dir, "**/*.{yaml,yml}")
	require.NoError(t, err)
	assert.Equal(t, []string{"team/deep/cost", "team/ops", "top"}, names)

	names, err = Find(dir, "team/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"team/ops"}, names)

	_, err = Find(dir, "[")
	assert.Error(t, err)
}
