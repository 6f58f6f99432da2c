package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazydash/internal/history"
	"github.com/rebeliceyang/lazydash/internal/ui/theme"
	"github.com/spf13/cobra"
)

const historyQueryWidth = 60

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit     int
		dashboard string
		block     string
		search    string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently executed bound queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if block != "" && dashboard == "" {
				return errors.New("--block requires --dashboard")
			}

			h, err := a.openHistory()
			if err != nil {
				return err
			}
			defer h.Close()

			var entries []history.Entry
			switch {
			case search != "":
				entries, err = h.Search(search, limit)
			case block != "":
				s, openErr := a.openDashboard(dashboard)
				if openErr != nil {
					return openErr
				}
				entries, err = h.ForBlock(s.Dashboard().ID, block, limit)
			default:
				entries, err = h.GetRecent(limit)
			}
			if err != nil {
				return fmt.Errorf("failed to read history: %w", err)
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no history")
				return nil
			}

			th := theme.GetTheme(a.cfg.General.Theme)
			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(lipgloss.NewStyle().Foreground(th.Border)).
				Headers("WHEN", "BLOCK", "DURATION", "ROWS", "STATUS", "QUERY")
			for _, e := range entries {
				status := "ok"
				if !e.Success {
					status = "error: " + e.ErrorMessage
				}
				t.Row(
					e.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
					e.BlockID,
					e.Duration.String(),
					fmt.Sprint(e.RowsAffected),
					runewidth.Truncate(status, 30, "…"),
					runewidth.Truncate(strings.Join(strings.Fields(e.Query), " "), historyQueryWidth, "…"),
				)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum entries to show")
	cmd.Flags().StringVar(&dashboard, "dashboard", "", "Dashboard owning --block")
	cmd.Flags().StringVar(&block, "block", "", "Only show entries for this block")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show queries containing this text")
	return cmd
}

func newPasswordCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Manage the database password kept in the system keyring",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set",
		Short: "Read a password from stdin and store it for the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password cannot be empty")
			}

			db := a.cfg.Database
			if err := a.passwords.Save(db.Host, db.Port, db.Database, db.User, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password stored for %s\n", db)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete",
		Short: "Remove the stored password for the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db := a.cfg.Database
			if err := a.passwords.Delete(db.Host, db.Port, db.Database, db.User); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "password removed for %s\n", db)
			return nil
		},
	})

	return cmd
}
