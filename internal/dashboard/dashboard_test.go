package dashboard

import (
	"testing"
	"time"

	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func sampleDashboard() Dashboard {
	return Dashboard{
		ID:        "d1",
		Name:      "Sales",
		Variables: models.Variables{"team": "EMEA", "title": "Dashboard"},
		Filters: []models.Filter{
			{ID: "f1", Key: "region", Type: models.FilterString, Active: true, InitialValue: "north"},
			{ID: "f2", Key: "year", Type: models.FilterInteger, Active: false, InitialValue: 2023},
		},
		Bindings: []models.QueryFilterBinding{
			{DashboardID: "d1", FilterKey: "region", ActiveValue: "region = '{{val}}'", InactiveValue: "1=1"},
			{DashboardID: "d1", FilterKey: "year", ActiveValue: "year = {{val}}", InactiveValue: "TRUE"},
		},
		Blocks: []Block{
			NewBlock("intro", "Intro", TextBlock{Template: "{{title}} for {{team}} in {{region}} on {{today}}"}),
			NewBlock("sales", "Sales", QueryBlock{SQL: "SELECT * FROM sales WHERE {{region}} AND {{year}}"}),
			NewBlock("orders", "Orders", TableBlock{
				SQL:      "SELECT * FROM orders WHERE {{region}} AND {{status}}",
				Columns:  []models.Column{{Key: "id", Type: models.ColumnNumber, Sortable: true}},
				PageSize: 5,
			}),
		},
	}
}

func TestBlock_Config(t *testing.T) {
	d := sampleDashboard()

	cfg, err := d.Blocks[0].Config()
	require.NoError(t, err)
	assert.IsType(t, TextBlock{}, cfg)

	cfg, err = d.Blocks[2].Config()
	require.NoError(t, err)
	assert.IsType(t, TableBlock{}, cfg)

	_, err = Block{ID: "x", Type: BlockQuery}.Config()
	assert.Error(t, err)

	_, err = Block{ID: "x", Type: "chart"}.Config()
	assert.Error(t, err)
}

func TestRenderBlock_Text(t *testing.T) {
	d := sampleDashboard()
	b := d.Blocks[0]
	b.Variables = models.Variables{"team": "APAC"}

	out, err := RenderBlock(d, b, fixedNow, nil)
	require.NoError(t, err)
	assert.Equal(t, BlockText, out.Type)
	assert.Equal(t, "Dashboard for APAC in north on 2024-03-05", out.Text)
	assert.Empty(t, out.Warnings)
}

func TestRenderBlock_TextSkipsInactiveFilters(t *testing.T) {
	d := sampleDashboard()
	b := NewBlock("t", "", TextBlock{Template: "year {{year}}"})

	out, err := RenderBlock(d, b, fixedNow, nil)
	require.NoError(t, err)
	assert.Equal(t, "year {{year}}", out.Text)
}

func TestRenderBlock_Query(t *testing.T) {
	d := sampleDashboard()

	out, err := RenderBlock(d, d.Blocks[1], fixedNow, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM sales WHERE region = 'north' AND TRUE", out.SQL)
	assert.Empty(t, out.Warnings)
	assert.Nil(t, out.Table)
}

func TestRenderBlock_TableReportsUnboundPlaceholders(t *testing.T) {
	d := sampleDashboard()

	out, err := RenderBlock(d, d.Blocks[2], fixedNow, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE region = 'north' AND {{status}}", out.SQL)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0].Message, "{{status}}")
	require.NotNil(t, out.Table)
	assert.Equal(t, 5, out.Table.PageSize)
}

func TestRenderBlock_BrokenBlock(t *testing.T) {
	_, err := RenderBlock(sampleDashboard(), Block{ID: "bad", Type: BlockTable}, fixedNow, nil)
	assert.Error(t, err)
}

func TestRenderAll(t *testing.T) {
	out, err := RenderAll(sampleDashboard(), fixedNow, nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, []string{"intro", "sales", "orders"}, []string{out[0].BlockID, out[1].BlockID, out[2].BlockID})
}

func TestDashboard_Validate(t *testing.T) {
	assert.NoError(t, sampleDashboard().Validate())

	d := sampleDashboard()
	d.Filters = append(d.Filters, models.Filter{Key: "region", Type: models.FilterString})
	d.Bindings = append(d.Bindings, models.QueryFilterBinding{DashboardID: "d1", FilterKey: "ghost"})
	d.Blocks = append(d.Blocks,
		Block{ID: "sales", Type: BlockText, Text: &TextBlock{}},
		NewBlock("empty", "", TableBlock{SQL: "SELECT 1"}),
	)

	err := d.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate filter key "region"`)
	assert.Contains(t, msg, `binding "ghost"`)
	assert.Contains(t, msg, `duplicate block id "sales"`)
	assert.Contains(t, msg, "declares no columns")
}

func TestDashboard_Lookups(t *testing.T) {
	d := sampleDashboard()

	b, ok := d.Block("sales")
	assert.True(t, ok)
	assert.Equal(t, BlockQuery, b.Type)

	_, ok = d.Block("nope")
	assert.False(t, ok)

	f, ok := d.Filter("year")
	assert.True(t, ok)
	assert.Equal(t, "f2", f.ID)
}

func TestNewTable(t *testing.T) {
	tb := TableBlock{
		Columns:  []models.Column{{Key: "id", Type: models.ColumnNumber, Sortable: true}},
		SortMode: models.SortModeBinary,
		Filters:  []models.ColumnFilter{{Column: "id", Type: models.ColumnNumber, Operator: models.OpGreaterThan, Value: 1}},
	}
	tbl := NewTable(tb, refine.TableOptions{PageSize: 10})
	tbl.SetRows([]models.Row{{"id": 1}, {"id": 2}, {"id": 3}})

	p := tbl.View()
	assert.Equal(t, 10, p.PageSize)
	assert.Equal(t, 2, p.TotalCount)

	tbl.ToggleSort("id")
	tbl.ToggleSort("id")
	tbl.ToggleSort("id")
	_, dir := tbl.Sort()
	assert.Equal(t, models.SortAsc, dir)
}
