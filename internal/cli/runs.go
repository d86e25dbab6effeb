package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"hotel-curator/internal/cli/output"
	"hotel-curator/internal/domain"
)

func newRunsCommand(env *environment) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent audited searches (requires DB_ENABLED=true)",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := env.printer(cmd)
			if err != nil {
				return err
			}
			app, err := env.app(cmd)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			defer app.Close()

			if app.SearchRuns == nil {
				return errors.New("search run audit is disabled; set DB_ENABLED=true")
			}
			runs, err := app.SearchRuns.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			return renderRuns(p, runs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs")
	return cmd
}

func renderRuns(p *output.Printer, runs []domain.SearchRun) error {
	if len(runs) == 0 {
		p.Warning("no search runs recorded")
		return nil
	}
	t := output.NewTable(p.Out(), []string{"Started", "Status", "Found", "Shortlist", "Degraded", "Results", "Error"}, 2, 3, 4, 5)
	for _, r := range runs {
		t.AddRow([]string{
			r.StartedAt.Local().Format(time.DateTime),
			string(r.Status),
			strconv.Itoa(r.CandidatesFound),
			strconv.Itoa(r.ShortlistSize),
			strconv.Itoa(r.DegradedBatches),
			strconv.Itoa(len(r.ResultIDs)),
			r.ErrorKind,
		})
	}
	return t.Render()
}
