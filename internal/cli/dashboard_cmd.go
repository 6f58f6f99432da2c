package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rebeliceyang/lazydash/internal/dashboard"
	"github.com/rebeliceyang/lazydash/internal/filter"
	"github.com/rebeliceyang/lazydash/internal/predicate"
	"github.com/rebeliceyang/lazydash/internal/store"
	"github.com/rebeliceyang/lazydash/internal/ui/components"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [pattern]",
		Short: "List dashboards in the dashboard directory",
		Long:  "List dashboards in the dashboard directory. The optional pattern is a glob where ** spans directories.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "**/*.{yaml,yml}"
			if len(args) == 1 {
				pattern = args[0]
			}
			names, err := store.Find(a.cfg.General.DashboardDir, pattern)
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newRenderCmd(a *app) *cobra.Command {
	var width int

	cmd := &cobra.Command{
		Use:   "render <dashboard> [block]",
		Short: "Render dashboard blocks with the current filter values",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openDashboard(args[0])
			if err != nil {
				return err
			}
			d := s.Dashboard()

			blocks := d.Blocks
			if len(args) == 2 {
				b, ok := d.Block(args[1])
				if !ok {
					return fmt.Errorf("block %q not found in dashboard %q", args[1], d.Name)
				}
				blocks = []dashboard.Block{b}
			}

			th := theme.GetTheme(a.cfg.General.Theme)
			now := a.now()
			binder := a.binder()
			for _, b := range blocks {
				r, err := dashboard.RenderBlock(d, b, now, binder)
				if err != nil {
					return err
				}
				a.warn(r)

				panel := components.Panel{
					Title:   blockTitle(b),
					Content: renderedContent(r),
					Width:   width,
					Theme:   th,
				}
				fmt.Fprintln(cmd.OutOrStdout(), panel.View())
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&width, "width", 0, "Panel width, 0 fits the content")
	return cmd
}

func blockTitle(b dashboard.Block) string {
	title := b.Title
	if title == "" {
		title = b.ID
	}
	return fmt.Sprintf("%s (%s)", title, b.Type)
}

func renderedContent(r dashboard.Rendered) string {
	if r.Type == dashboard.BlockText {
		return r.Text
	}
	return r.SQL
}

func newBindCmd(a *app) *cobra.Command {
	var copyToClipboard bool

	cmd := &cobra.Command{
		Use:   "bind <dashboard> <block>",
		Short: "Print the SQL of a query or table block with filters bound",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := a.renderBlock(args[0], args[1])
			if err != nil {
				return err
			}
			if r.Type == dashboard.BlockText {
				return fmt.Errorf("block %q is a text block, use render", r.BlockID)
			}

			fmt.Fprintln(cmd.OutOrStdout(), r.SQL)

			if copyToClipboard {
				if err := clipboard.WriteAll(r.SQL); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				a.log.Info().Str("block", r.BlockID).Msg("bound SQL copied to clipboard")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyToClipboard, "copy", false, "Copy the bound SQL to the clipboard")
	return cmd
}

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <dashboard>",
		Short: "Check filters, bindings and block templates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openDashboard(args[0])
			if err != nil {
				return err
			}

			issues := lintDashboard(s.Dashboard(), a.now(), a.binder())
			for _, issue := range issues {
				fmt.Fprintln(cmd.OutOrStdout(), issue)
			}
			if len(issues) > 0 {
				return fmt.Errorf("%d issue(s) found", len(issues))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

// lintDashboard collects every structural problem and template warning of d
func lintDashboard(d dashboard.Dashboard, now time.Time, binder *filter.Binder) []string {
	var issues []string

	if err := d.Validate(); err != nil {
		issues = append(issues, strings.Split(err.Error(), "\n")...)
	}

	for _, b := range d.Blocks {
		r, err := dashboard.RenderBlock(d, b, now, binder)
		if err != nil {
			issues = append(issues, fmt.Sprintf("block %s: %v", b.ID, err))
			continue
		}
		for _, w := range r.Warnings {
			issues = append(issues, fmt.Sprintf("block %s: %s", b.ID, w))
		}
		if r.Table != nil {
			for _, f := range r.Table.Filters {
				if err := predicate.Validate(f); err != nil {
					issues = append(issues, fmt.Sprintf("block %s: %v", b.ID, err))
				}
			}
		}
	}

	return issues
}

func newFiltersCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "filters <dashboard>",
		Short: "List the filters of a dashboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openDashboard(args[0])
			if err != nil {
				return err
			}
			d := s.Dashboard()

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(d.Filters)
			}

			bound := make(map[string]bool, len(d.Bindings))
			for _, b := range d.Bindings {
				bound[b.FilterKey] = true
			}

			th := theme.GetTheme(a.cfg.General.Theme)
			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
				Headers("KEY", "TYPE", "ACTIVE", "VALUE", "BOUND")
			for _, f := range d.Filters {
				t.Row(f.Key, string(f.Type), fmt.Sprint(f.Active), filter.FormatFilterValue(f.EffectiveValue(), f.Type), fmt.Sprint(bound[f.Key]))
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print filters as JSON")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var active, inactive, reset bool

	cmd := &cobra.Command{
		Use:   "set <dashboard> <filter> [value...]",
		Short: "Change the current value or activity of a filter",
		Long: "Change the current value or activity of a filter.\n" +
			"Range filters take two values, list filters take any number.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if active && inactive {
				return errors.New("--active and --inactive are mutually exclusive")
			}
			values := args[2:]
			if reset && len(values) > 0 {
				return errors.New("--reset takes no values")
			}
			if !active && !inactive && !reset && len(values) == 0 {
				return errors.New("nothing to set: pass a value, --active, --inactive or --reset")
			}

			s, err := a.openDashboard(args[0])
			if err != nil {
				return err
			}
			f, err := s.GetFilter(args[1])
			if err != nil {
				return err
			}

			switch {
			case reset:
				err = s.SetCurrentValue(f.Key, nil)
			case len(values) > 0:
				var v any
				if v, err = parseFilterValue(f.Type, values); err == nil {
					err = s.SetCurrentValue(f.Key, v)
				}
			}
			if err != nil {
				return err
			}

			if active || inactive {
				if err := s.SetActive(f.Key, active); err != nil {
					return err
				}
			}

			f, err = s.GetFilter(f.Key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (active: %t)\n", f.Key, filter.FormatFilterValue(f.EffectiveValue(), f.Type), f.Active)
			return nil
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Activate the filter")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Deactivate the filter")
	cmd.Flags().BoolVar(&reset, "reset", false, "Restore the initial value")
	return cmd
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <dashboard>",
		Short: "Restore every filter to its initial value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openDashboard(args[0])
			if err != nil {
				return err
			}
			if err := s.ResetFilters(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %d filter(s)\n", len(s.Filters()))
			return nil
		},
	}
}
