package models

// ColumnType is the comparison type of an in-memory column
type ColumnType string

const (
	ColumnString  ColumnType = "string"
	ColumnNumber  ColumnType = "number"
	ColumnDate    ColumnType = "date"
	ColumnBoolean ColumnType = "boolean"
)

// Operator is a column predicate operator
type Operator string

const (
	OpContains       Operator = "contains"
	OpNotContains    Operator = "notContains"
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "notEquals"
	OpStartsWith     Operator = "startsWith"
	OpEndsWith       Operator = "endsWith"
	OpIsEmpty        Operator = "isEmpty"
	OpIsNotEmpty     Operator = "isNotEmpty"
	OpGreaterThan    Operator = "greaterThan"
	OpGreaterOrEqual Operator = "greaterOrEqual"
	OpLessThan       Operator = "lessThan"
	OpLessOrEqual    Operator = "lessOrEqual"
	OpBetween        Operator = "between"
	OpAfter          Operator = "after"
	OpAfterOrOn      Operator = "afterOrOn"
	OpBefore         Operator = "before"
	OpBeforeOrOn     Operator = "beforeOrOn"
	OpIsTrue         Operator = "isTrue"
	OpIsFalse        Operator = "isFalse"
)

// ColumnFilter is an ephemeral predicate over one in-memory column.
// Value and ValueTo are raw operands, never SQL-escaped.
type ColumnFilter struct {
	Column   string     `yaml:"column" json:"column"`
	Type     ColumnType `yaml:"type" json:"type"`
	Operator Operator   `yaml:"operator" json:"operator"`
	Value    any        `yaml:"value,omitempty" json:"value,omitempty"`
	ValueTo  any        `yaml:"value_to,omitempty" json:"valueTo,omitempty"`
}

// Column declares a table column
type Column struct {
	Key        string     `yaml:"key" json:"key"`
	Label      string     `yaml:"label,omitempty" json:"label,omitempty"`
	Type       ColumnType `yaml:"type" json:"type"`
	Filterable bool       `yaml:"filterable" json:"filterable"`
	Sortable   bool       `yaml:"sortable" json:"sortable"`
}

// Title returns the label, falling back to the key
func (c Column) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// Row is one loaded record keyed by column
type Row map[string]any

// SortDirection is the tri-state sort direction of a table
type SortDirection string

const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortMode selects how repeated header activation cycles the direction
type SortMode string

const (
	// SortModeTriState cycles none -> asc -> desc -> none
	SortModeTriState SortMode = "tri-state"
	// SortModeBinary toggles asc <-> desc
	SortModeBinary SortMode = "binary"
)
