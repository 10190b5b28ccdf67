package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"libregistry/janitor/pkg/cli"
	"libregistry/janitor/pkg/registry"
)

var runsFlags struct {
	limit  int
	format string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent maintenance runs",
	Long: `List recorded maintenance runs, most recent first.

Examples:
  janitor runs
  janitor runs --limit 50 --format json`,
	Args: cobra.NoArgs,
	RunE: listRuns,
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVarP(&runsFlags.limit, "limit", "n", 0, "maximum runs to list (default: maintenance.history_limit)")
	runsCmd.Flags().StringVarP(&runsFlags.format, "format", "f", "", "output format (table, json, text; default: table on a terminal, json otherwise)")
}

func listRuns(cmd *cobra.Command, args []string) error {
	format := cli.DefaultFormat(cmd.OutOrStdout())
	if runsFlags.format != "" {
		f, err := cli.ParseFormat(runsFlags.format)
		if err != nil {
			return cli.NewCommandError("runs", err)
		}
		format = f
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(&cfg.Database)
	if err != nil {
		return cli.NewCommandError("runs", err)
	}
	defer store.Close()

	limit := cfg.Maintenance.HistoryLimit
	if runsFlags.limit > 0 {
		limit = runsFlags.limit
	}

	runs, err := store.ListRuns(commandContext(cmd), limit)
	if err != nil {
		return cli.NewCommandError("runs", err)
	}

	var data any = runTable(runs)
	if format == cli.FormatJSON {
		data = runs
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

// runTable renders run history as a table.
type runTable []*registry.Run

func (t runTable) Header() []string {
	return []string{"ID", "TASK", "STARTED", "DURATION", "AFFECTED", "STATUS"}
}

func (t runTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		status := "ok"
		if !r.Succeeded() {
			status = "error: " + r.Error
		}
		rows = append(rows, []string{
			r.ID,
			r.Task,
			r.StartedAt.Local().Format(time.DateTime),
			r.Duration().Round(time.Millisecond).String(),
			strconv.FormatInt(r.Affected, 10),
			status,
		})
	}
	return rows
}

func (t runTable) RightAligned() []int { return []int{3, 4} }

// String is the text rendering of the run history.
func (t runTable) String() string {
	if len(t) == 0 {
		return "no maintenance runs recorded"
	}
	lines := make([]string, 0, len(t))
	for _, r := range t {
		lines = append(lines, runView{r}.String())
	}
	return strings.Join(lines, "\n")
}

// runView prints a single run in every output format.
type runView struct {
	*registry.Run
}

func (v runView) Header() []string { return runTable{v.Run}.Header() }
func (v runView) Rows() [][]string { return runTable{v.Run}.Rows() }

func (v runView) String() string {
	r := v.Run
	d := r.Duration().Round(time.Millisecond)
	if !r.Succeeded() {
		return fmt.Sprintf("%s failed after %s (run %s): %s", r.Task, d, r.ID, r.Error)
	}
	return fmt.Sprintf("%s affected %d in %s (run %s)", r.Task, r.Affected, d, r.ID)
}
