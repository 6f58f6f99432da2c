package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rebeliceyang/lazydash/internal/config"
	"github.com/rebeliceyang/lazydash/internal/dashboard"
	"github.com/rebeliceyang/lazydash/internal/db/connection"
	"github.com/rebeliceyang/lazydash/internal/db/query"
	"github.com/rebeliceyang/lazydash/internal/filter"
	"github.com/rebeliceyang/lazydash/internal/history"
	"github.com/rebeliceyang/lazydash/internal/logger"
	"github.com/rebeliceyang/lazydash/internal/models"
	"github.com/rebeliceyang/lazydash/internal/predicate"
	"github.com/rebeliceyang/lazydash/internal/refine"
	"github.com/rebeliceyang/lazydash/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// connectFunc opens a query executor and returns a function releasing it
type connectFunc func(ctx context.Context, cfg models.ConnectionConfig) (query.Querier, func(), error)

// app holds state shared by every command of one invocation
type app struct {
	configPath string
	logLevel   string

	cfg       *config.Config
	log       zerolog.Logger
	now       func() time.Time
	connect   connectFunc
	passwords *connection.PasswordStore
}

func newApp() *app {
	return &app{
		cfg:       config.GetDefaults(),
		log:       zerolog.Nop(),
		now:       time.Now,
		connect:   connectPool,
		passwords: connection.NewPasswordStore(),
	}
}

func connectPool(ctx context.Context, cfg models.ConnectionConfig) (query.Querier, func(), error) {
	pool, err := connection.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "lazydash",
		Short:         "Bind dashboard filters into SQL and refine table rows",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newListCmd(a),
		newRenderCmd(a),
		newBindCmd(a),
		newLintCmd(a),
		newFiltersCmd(a),
		newSetCmd(a),
		newResetCmd(a),
		newTableCmd(a),
		newBrowseCmd(a),
		newHistoryCmd(a),
		newPasswordCmd(a),
	)
	return root
}

func (a *app) init(w io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logger.New(level, cfg.Log.Pretty, w)
	return nil
}

// openDashboard opens an existing dashboard file by name or path
func (a *app) openDashboard(name string) (*store.Store, error) {
	path := a.cfg.DashboardPath(name)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open dashboard %s: %w", path, err)
	}
	return store.Open(path)
}

func (a *app) binder() *filter.Binder {
	return filter.NewBinder(filter.WithLogger(a.log))
}

// renderBlock renders one block of the named dashboard
func (a *app) renderBlock(name, blockID string) (dashboard.Dashboard, dashboard.Rendered, error) {
	s, err := a.openDashboard(name)
	if err != nil {
		return dashboard.Dashboard{}, dashboard.Rendered{}, err
	}
	d := s.Dashboard()
	b, ok := d.Block(blockID)
	if !ok {
		return d, dashboard.Rendered{}, fmt.Errorf("block %q not found in dashboard %q", blockID, d.Name)
	}
	r, err := dashboard.RenderBlock(d, b, a.now(), a.binder())
	if err != nil {
		return d, dashboard.Rendered{}, err
	}
	a.warn(r)
	return d, r, nil
}

func (a *app) warn(r dashboard.Rendered) {
	if !a.cfg.Binding.WarnOnTemplateIssues {
		return
	}
	for _, w := range r.Warnings {
		a.log.Warn().Str("block", r.BlockID).Msg(w.String())
	}
}

func (a *app) tableDefaults() refine.TableOptions {
	return refine.TableOptions{
		PageSize:  a.cfg.Table.PageSize,
		SortMode:  a.cfg.Table.Mode(),
		Evaluator: predicate.NewEvaluator(predicate.ParsePolicy(a.cfg.Table.UnknownOperator)),
	}
}

// loadTable executes a rendered table block and opens a refinement session over its rows
func (a *app) loadTable(ctx context.Context, d dashboard.Dashboard, r dashboard.Rendered) (*refine.Table, error) {
	if r.Table == nil {
		return nil, fmt.Errorf("block %q is a %s block, not a table", r.BlockID, r.Type)
	}
	rows, err := a.fetchRows(ctx, d.ID, r.BlockID, r.SQL)
	if err != nil {
		return nil, err
	}
	t := dashboard.NewTable(*r.Table, a.tableDefaults())
	t.SetRows(rows)
	return t, nil
}

func (a *app) fetchRows(ctx context.Context, dashboardID, blockID, sql string) ([]models.Row, error) {
	connCfg, err := a.passwords.Resolve(a.cfg.Database)
	if err != nil {
		a.log.Warn().Err(err).Msg("password lookup failed, using configured password")
	}

	q, release, err := a.connect(ctx, connCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", connCfg, err)
	}
	defer release()

	res := query.Execute(ctx, q, sql, connCfg.QueryTimeout)
	a.log.Info().
		Str("block", blockID).
		Dur("duration", res.Duration).
		Int("rows", len(res.Rows)).
		Msg("query executed")
	a.recordHistory(history.FromResult(dashboardID, blockID, sql, res))

	if res.Error != nil {
		return nil, fmt.Errorf("query failed: %w", res.Error)
	}
	return res.Rows, nil
}

func (a *app) openHistory() (*history.Store, error) {
	path, err := a.cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return history.NewStore(path)
}

func (a *app) recordHistory(e history.Entry) {
	if !a.cfg.History.Enabled {
		return
	}
	h, err := a.openHistory()
	if err != nil {
		a.log.Warn().Err(err).Msg("history unavailable")
		return
	}
	defer h.Close()

	if err := h.Add(e); err != nil {
		a.log.Warn().Err(err).Msg("failed to record query history")
		return
	}
	if a.cfg.History.MaxEntries > 0 {
		if n, err := h.Trim(a.cfg.History.MaxEntries); err != nil {
			a.log.Warn().Err(err).Msg("failed to trim query history")
		} else if n > 0 {
			a.log.Debug().Int64("removed", n).Msg("trimmed query history")
		}
	}
}
