package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rebeliceyang/lazydash/internal/models"
)

// Dashboard is a set of blocks sharing filters, bindings and variables
type Dashboard struct {
	ID        string                      `yaml:"id" json:"id"`
	Name      string                      `yaml:"name" json:"name"`
	Variables models.Variables            `yaml:"variables,omitempty" json:"variables,omitempty"`
	Filters   []models.Filter             `yaml:"filters,omitempty" json:"filters,omitempty"`
	Bindings  []models.QueryFilterBinding `yaml:"bindings,omitempty" json:"bindings,omitempty"`
	Blocks    []Block                     `yaml:"blocks,omitempty" json:"blocks,omitempty"`
}

// BlockType names a block variant
type BlockType string

const (
	BlockText  BlockType = "text"
	BlockQuery BlockType = "query"
	BlockTable BlockType = "table"
)

// Block is the stored form of one dashboard block. Exactly one of Text,
// Query or Table is set, according to Type.
type Block struct {
	ID        string           `yaml:"id" json:"id"`
	Title     string           `yaml:"title,omitempty" json:"title,omitempty"`
	Type      BlockType        `yaml:"type" json:"type"`
	Variables models.Variables `yaml:"variables,omitempty" json:"variables,omitempty"`

	Text  *TextBlock  `yaml:"text,omitempty" json:"text,omitempty"`
	Query *QueryBlock `yaml:"query,omitempty" json:"query,omitempty"`
	Table *TableBlock `yaml:"table,omitempty" json:"table,omitempty"`
}

// BlockConfig is the closed set of block variants
type BlockConfig interface {
	blockType() BlockType
}

// TextBlock renders a template with system, dashboard and block variables
type TextBlock struct {
	Template string `yaml:"template" json:"template"`
}

// QueryBlock is a SQL template bound against the dashboard filters
type QueryBlock struct {
	SQL string `yaml:"sql" json:"sql"`
}

// TableBlock is a query whose rows are refined and paged in memory
type TableBlock struct {
	SQL      string                `yaml:"sql" json:"sql"`
	Columns  []models.Column       `yaml:"columns" json:"columns"`
	PageSize int                   `yaml:"page_size,omitempty" json:"pageSize,omitempty"`
	SortMode models.SortMode       `yaml:"sort_mode,omitempty" json:"sortMode,omitempty"`
	Filters  []models.ColumnFilter `yaml:"filters,omitempty" json:"filters,omitempty"`
}

func (TextBlock) blockType() BlockType  { return BlockText }
func (QueryBlock) blockType() BlockType { return BlockQuery }
func (TableBlock) blockType() BlockType { return BlockTable }

// Config returns the variant selected by Type
func (b Block) Config() (BlockConfig, error) {
	switch b.Type {
	case BlockText:
		if b.Text == nil {
			return nil, fmt.Errorf("block %q: text block has no text section", b.ID)
		}
		return *b.Text, nil
	case BlockQuery:
		if b.Query == nil {
			return nil, fmt.Errorf("block %q: query block has no query section", b.ID)
		}
		return *b.Query, nil
	case BlockTable:
		if b.Table == nil {
			return nil, fmt.Errorf("block %q: table block has no table section", b.ID)
		}
		return *b.Table, nil
	default:
		return nil, fmt.Errorf("block %q: unknown block type %q", b.ID, b.Type)
	}
}

// NewBlock wraps a variant into its stored form
func NewBlock(id, title string, cfg BlockConfig) Block {
	b := Block{ID: id, Title: title, Type: cfg.blockType()}
	switch c := cfg.(type) {
	case TextBlock:
		b.Text = &c
	case QueryBlock:
		b.Query = &c
	case TableBlock:
		b.Table = &c
	}
	return b
}

// Block looks up a block by ID
func (d Dashboard) Block(id string) (Block, bool) {
	for _, b := range d.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return Block{}, false
}

// Filter looks up a filter by key
func (d Dashboard) Filter(key string) (models.Filter, bool) {
	for _, f := range d.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return models.Filter{}, false
}

// Validate checks filters, bindings and blocks and joins every problem found
func (d Dashboard) Validate() error {
	var errs []error

	keys := make(map[string]bool, len(d.Filters))
	for _, f := range d.Filters {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
		if keys[f.Key] {
			errs = append(errs, fmt.Errorf("duplicate filter key %q", f.Key))
		}
		keys[f.Key] = true
	}

	for _, b := range d.Bindings {
		if err := b.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if !keys[b.FilterKey] {
			errs = append(errs, fmt.Errorf("binding %q: no filter with that key", b.FilterKey))
		}
	}

	ids := make(map[string]bool, len(d.Blocks))
	for _, b := range d.Blocks {
		if strings.TrimSpace(b.ID) == "" {
			errs = append(errs, errors.New("block id cannot be empty"))
		} else if ids[b.ID] {
			errs = append(errs, fmt.Errorf("duplicate block id %q", b.ID))
		}
		ids[b.ID] = true

		cfg, err := b.Config()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if tb, ok := cfg.(TableBlock); ok && len(tb.Columns) == 0 {
			errs = append(errs, fmt.Errorf("block %q: table block declares no columns", b.ID))
		}
	}

	return errors.Join(errs...)
}
