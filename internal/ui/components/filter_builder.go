package components

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rebeliceyang/lazydash/internal/filter"
	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/predicate"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
)

// ApplyColumnFiltersMsg is sent when the edited column filters should be applied
type ApplyColumnFiltersMsg struct {
	Filters []models.ColumnFilter
}

// CloseFilterBuilderMsg is sent when the filter builder should close
type CloseFilterBuilderMsg struct{}

type builderMode string

const (
	modeList     builderMode = ""
	modeColumn   builderMode = "column"
	modeOperator builderMode = "operator"
	modeValue    builderMode = "value"
	modeValueTo  builderMode = "value_to"
)

// FilterBuilder edits the column filters of a table, one condition at a time
type FilterBuilder struct {
	Width  int
	Height int
	Theme  theme.Theme

	// Count reports how many of the loaded rows the filters keep
	Count func([]models.ColumnFilter) (kept, total int)

	// State
	columns         []models.Column
	filters         []models.ColumnFilter
	currentIndex    int
	editMode        builderMode
	columnInput     string
	operatorIndex   int
	valueInput      string
	pendingValue    string
	validationError string

	selectedColumn models.Column
	availableOps   []models.Operator
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder(th theme.Theme) *FilterBuilder {
	return &FilterBuilder{
		Width:  80,
		Height: 24,
		Theme:  th,
	}
}

// SetColumns updates the available columns for filtering
func (fb *FilterBuilder) SetColumns(columns []models.Column) {
	fb.columns = columns
}

// SetFilters loads the filters currently applied to the table
func (fb *FilterBuilder) SetFilters(filters []models.ColumnFilter) {
	fb.filters = append([]models.ColumnFilter(nil), filters...)
	fb.currentIndex = 0
	fb.editMode = modeList
	fb.validationError = ""
}

// Filters returns the edited filters
func (fb *FilterBuilder) Filters() []models.ColumnFilter {
	return append([]models.ColumnFilter(nil), fb.filters...)
}

// Mode returns the current edit step, empty when browsing conditions
func (fb *FilterBuilder) Mode() string {
	return string(fb.editMode)
}

// Error returns the last validation error
func (fb *FilterBuilder) Error() string {
	return fb.validationError
}

// Update handles keyboard input
func (fb *FilterBuilder) Update(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch fb.editMode {
	case modeColumn:
		return fb.handleColumnMode(msg)
	case modeOperator:
		return fb.handleOperatorMode(msg)
	case modeValue, modeValueTo:
		return fb.handleValueMode(msg)
	default:
		return fb.handleNavigationMode(msg)
	}
}

// handleNavigationMode handles keys while browsing conditions
func (fb *FilterBuilder) handleNavigationMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if fb.currentIndex > 0 {
			fb.currentIndex--
		}
	case "down", "j":
		if fb.currentIndex < len(fb.filters)-1 {
			fb.currentIndex++
		}
	case "a", "n":
		fb.editMode = modeColumn
		fb.columnInput = ""
	case "d", "x":
		if fb.currentIndex < len(fb.filters) {
			fb.filters = append(fb.filters[:fb.currentIndex], fb.filters[fb.currentIndex+1:]...)
			if fb.currentIndex > 0 && fb.currentIndex >= len(fb.filters) {
				fb.currentIndex--
			}
		}
	case "enter":
		// An empty list clears every column filter
		fb.validationError = ""
		filters := fb.Filters()
		return fb, func() tea.Msg {
			return ApplyColumnFiltersMsg{Filters: filters}
		}
	case "esc":
		return fb, func() tea.Msg {
			return CloseFilterBuilderMsg{}
		}
	}
	return fb, nil
}

// handleColumnMode handles column selection by name
func (fb *FilterBuilder) handleColumnMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.editMode = modeList
		fb.columnInput = ""
		fb.validationError = ""
	case "enter":
		for _, col := range fb.columns {
			if strings.EqualFold(col.Key, fb.columnInput) || strings.EqualFold(col.Label, fb.columnInput) {
				fb.selectedColumn = col
				fb.availableOps = filter.OperatorsForType(col.Type)
				if len(fb.availableOps) == 0 {
					fb.validationError = fmt.Sprintf("Column '%s' has no filterable type", col.Key)
					return fb, nil
				}
				fb.editMode = modeOperator
				fb.operatorIndex = 0
				fb.validationError = ""
				return fb, nil
			}
		}
		fb.validationError = fmt.Sprintf("Column '%s' not found", fb.columnInput)
	case "backspace":
		if len(fb.columnInput) > 0 {
			fb.columnInput = fb.columnInput[:len(fb.columnInput)-1]
		}
	default:
		if len(msg.Runes) > 0 {
			fb.columnInput += string(msg.Runes)
		}
	}
	return fb, nil
}

// handleOperatorMode handles operator selection
func (fb *FilterBuilder) handleOperatorMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.editMode = modeColumn
	case "up", "k":
		if fb.operatorIndex > 0 {
			fb.operatorIndex--
		}
	case "down", "j":
		if fb.operatorIndex < len(fb.availableOps)-1 {
			fb.operatorIndex++
		}
	case "enter":
		if needsValue(fb.availableOps[fb.operatorIndex]) {
			fb.editMode = modeValue
			fb.valueInput = ""
			return fb, nil
		}
		fb.addCondition(nil, nil)
	}
	return fb, nil
}

// handleValueMode handles operand input; between asks for a second bound
func (fb *FilterBuilder) handleValueMode(msg tea.KeyMsg) (*FilterBuilder, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fb.editMode = modeOperator
		fb.valueInput = ""
	case "enter":
		op := fb.availableOps[fb.operatorIndex]
		if op == models.OpBetween && fb.editMode == modeValue {
			fb.pendingValue = fb.valueInput
			fb.valueInput = ""
			fb.editMode = modeValueTo
			return fb, nil
		}
		if op == models.OpBetween {
			fb.addCondition(fb.pendingValue, fb.valueInput)
		} else {
			fb.addCondition(fb.valueInput, nil)
		}
		fb.valueInput = ""
		fb.pendingValue = ""
	case "backspace":
		if len(fb.valueInput) > 0 {
			fb.valueInput = fb.valueInput[:len(fb.valueInput)-1]
		}
	default:
		if len(msg.Runes) > 0 {
			fb.valueInput += string(msg.Runes)
		}
	}
	return fb, nil
}

func (fb *FilterBuilder) addCondition(value, valueTo any) {
	f := models.ColumnFilter{
		Column:   fb.selectedColumn.Key,
		Type:     fb.selectedColumn.Type,
		Operator: fb.availableOps[fb.operatorIndex],
		Value:    value,
		ValueTo:  valueTo,
	}
	if err := predicate.Validate(f); err != nil {
		fb.validationError = err.Error()
		return
	}
	fb.filters = append(fb.filters, f)
	fb.currentIndex = len(fb.filters) - 1
	fb.editMode = modeList
	fb.validationError = ""
}

func needsValue(op models.Operator) bool {
	switch op {
	case models.OpIsEmpty, models.OpIsNotEmpty, models.OpIsTrue, models.OpIsFalse:
		return false
	}
	return true
}

// DescribeFilter renders a column filter as a short readable condition
func DescribeFilter(f models.ColumnFilter) string {
	switch {
	case f.Operator == models.OpBetween:
		return fmt.Sprintf("%s %s %v and %v", f.Column, f.Operator, f.Value, f.ValueTo)
	case needsValue(f.Operator):
		return fmt.Sprintf("%s %s %v", f.Column, f.Operator, f.Value)
	default:
		return fmt.Sprintf("%s %s", f.Column, f.Operator)
	}
}

// View renders the filter builder
func (fb *FilterBuilder) View() string {
	var sections []string

	// Title
	titleStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Foreground).
		Background(fb.Theme.Info).
		Padding(0, 1).
		Bold(true)
	sections = append(sections, titleStyle.Render("Column Filters"))

	instructionStyle := lipgloss.NewStyle().
		Foreground(fb.Theme.Metadata).
		Padding(0, 1)

	var instructions string
	switch fb.editMode {
	case modeColumn:
		instructions = "Type column name, Enter to confirm, Esc to cancel"
	case modeOperator:
		instructions = "↑↓ Select operator, Enter to confirm, Esc to go back"
	case modeValue, modeValueTo:
		instructions = "Type value, Enter to confirm, Esc to go back"
	default:
		instructions = "a=Add d=Delete Enter=Apply Esc=Cancel"
	}
	sections = append(sections, instructionStyle.Render(instructions))

	if fb.validationError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Error).
			Padding(0, 1).
			Bold(true)
		sections = append(sections, errorStyle.Render("Error: "+fb.validationError))
	}

	if len(fb.filters) > 0 {
		sections = append(sections, "\nConditions (all must match):")
		for i, f := range fb.filters {
			style := lipgloss.NewStyle().Padding(0, 1)
			if i == fb.currentIndex && fb.editMode == modeList {
				style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
			}
			sections = append(sections, style.Render(fmt.Sprintf(" %d. %s", i+1, DescribeFilter(f))))
		}
	}

	// Edit area
	switch fb.editMode {
	case modeColumn:
		sections = append(sections, "", fmt.Sprintf("Column: %s_", fb.columnInput))
	case modeOperator:
		sections = append(sections, "", fmt.Sprintf("Column: %s", fb.selectedColumn.Key), "Select operator:")
		for i, op := range fb.availableOps {
			style := lipgloss.NewStyle().Padding(0, 1)
			if i == fb.operatorIndex {
				style = style.Background(fb.Theme.Selection).Foreground(fb.Theme.Foreground)
			}
			sections = append(sections, style.Render(fmt.Sprintf("  %s", op)))
		}
	case modeValue:
		sections = append(sections, "", fmt.Sprintf("Column: %s %s", fb.selectedColumn.Key, fb.availableOps[fb.operatorIndex]))
		sections = append(sections, fmt.Sprintf("Value: %s_", fb.valueInput))
	case modeValueTo:
		sections = append(sections, "", fmt.Sprintf("Column: %s between %s and", fb.selectedColumn.Key, fb.pendingValue))
		sections = append(sections, fmt.Sprintf("Upper bound: %s_", fb.valueInput))
	}

	// Match preview
	if fb.Count != nil {
		kept, total := fb.Count(fb.filters)
		previewStyle := lipgloss.NewStyle().
			Foreground(fb.Theme.Metadata).
			Padding(0, 1).
			Italic(true)
		sections = append(sections, "", previewStyle.Render(fmt.Sprintf("Matches %d of %d rows", kept, total)))
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(fb.Theme.Border).
		Width(fb.Width).
		Padding(1)

	return containerStyle.Render(strings.Join(sections, "\n"))
}
