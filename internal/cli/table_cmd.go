package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazydash/internal/export"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/rebeliceyang/lazydash/internal/ui/components"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
	"github.com/spf13/cobra"
)

// refineFlags are the refinement settings shared by table and browse
type refineFlags struct {
	search  string
	sort    string
	filters []string
	page    int
}

func (f *refineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Search the filterable columns")
	cmd.Flags().StringVar(&f.sort, "sort", "", "Sort by column[:asc|:desc]")
	cmd.Flags().StringArrayVarP(&f.filters, "filter", "f", nil, "Column filter column:operator[:value], between takes lower..upper, repeatable")
	cmd.Flags().IntVarP(&f.page, "page", "p", 1, "Page to show")
}

// apply configures t; the page is set last since every other change resets it
func (f *refineFlags) apply(t *refine.Table) error {
	for _, spec := range f.filters {
		cf, err := parseColumnFilter(spec, t.Columns())
		if err != nil {
			return err
		}
		t.AddColumnFilter(cf)
	}

	t.SetSearch(f.search)

	if f.sort != "" {
		column, dir, err := parseSort(f.sort)
		if err != nil {
			return err
		}
		c, ok := t.Column(column)
		if !ok || !c.Sortable {
			return fmt.Errorf("column %q is not sortable", column)
		}
		t.SetSort(c.Key, dir)
	}

	t.SetPage(f.page)
	return nil
}

func newTableCmd(a *app) *cobra.Command {
	var (
		flags   refineFlags
		format  string
		outPath string
		all     bool
	)

	cmd := &cobra.Command{
		Use:   "table <dashboard> <block>",
		Short: "Run a table block and print one refined page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, r, err := a.renderBlock(args[0], args[1])
			if err != nil {
				return err
			}
			t, err := a.loadTable(cmd.Context(), d, r)
			if err != nil {
				return err
			}
			if err := flags.apply(t); err != nil {
				return err
			}

			if format == "" {
				tv := components.NewTableView(theme.GetTheme(a.cfg.General.Theme))
				tv.MaxCellWidth = a.cfg.Table.MaxCellWidth
				tv.SetTable(t)
				fmt.Fprintln(cmd.OutOrStdout(), tv.View())
				return nil
			}

			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			page := t.View()
			if all {
				page = refine.Paginate(t.Refined(), 1, 0)
			}

			if f == export.FormatXLSX && outPath == "" {
				return fmt.Errorf("xlsx export needs --output")
			}

			if outPath != "" {
				keys := make([]string, 0, len(t.Columns()))
				for _, c := range t.Columns() {
					keys = append(keys, c.Key)
				}
				if err := export.ExportToFile(outPath, f, keys, page.Rows); err != nil {
					return err
				}
				a.log.Info().Str("path", outPath).Int("rows", len(page.Rows)).Msg("rows exported")
				return nil
			}

			if f == export.FormatJSON {
				err = export.PageToJSON(cmd.OutOrStdout(), t.Columns(), page)
			} else {
				err = export.PageToCSV(cmd.OutOrStdout(), t.Columns(), page)
			}
			if err != nil {
				return fmt.Errorf("failed to export rows: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "export", "e", "", "Print rows as csv, json or xlsx instead of a table")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "Write the export to a file")
	cmd.Flags().BoolVar(&all, "all", false, "Export every refined row instead of the current page")
	return cmd
}

func newBrowseCmd(a *app) *cobra.Command {
	var flags refineFlags

	cmd := &cobra.Command{
		Use:   "browse <dashboard> <block>",
		Short: "Browse a table block interactively",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, r, err := a.renderBlock(args[0], args[1])
			if err != nil {
				return err
			}
			t, err := a.loadTable(cmd.Context(), d, r)
			if err != nil {
				return err
			}
			if err := flags.apply(t); err != nil {
				return err
			}

			b, _ := d.Block(r.BlockID)
			browser := components.NewBrowser(blockTitle(b), t, theme.GetTheme(a.cfg.General.Theme))
			browser.TableView().MaxCellWidth = a.cfg.Table.MaxCellWidth

			p := tea.NewProgram(browser, tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running browser: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
