package scholia

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/soundprediction/scholia/pkg/checkpoint"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run_id]",
	Short: "List journaled builds or show one of them",
	Long: `Every build records the step it reached and how many nodes and edges it merged in the
checkpoint directory. A run that stopped after merging some nodes or edges left the graph
partially linked; re-running the build completes it.`,
	Example: `  scholia runs
  scholia runs --failed
  scholia runs 0f8fad5b-d9cb-469f-a165-70867728950e
  scholia runs --clean 720h`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

var (
	runsFailed bool
	runsClean  time.Duration
	runsJSON   bool
)

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().BoolVar(&runsFailed, "failed", false, "Only list runs that stopped on an error")
	runsCmd.Flags().DurationVar(&runsClean, "clean", 0, "Remove journal records older than this before listing")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "Print records as JSON")
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	manager, err := checkpoint.NewCheckpointManager(env.checkpointDir())
	if err != nil {
		return err
	}

	if len(args) == 1 {
		record, err := manager.Load(ctx, args[0])
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("no journal record for run %s", args[0])
		}
		if runsJSON {
			return printJSON(cmd, record)
		}
		fmt.Fprint(cmd.OutOrStdout(), record.Summary())
		return nil
	}

	if runsClean > 0 {
		removed, err := manager.CleanOld(ctx, runsClean)
		if err != nil {
			return err
		}
		env.logger.Info("Removed old journal records", "count", removed, "older_than", runsClean)
	}

	var records []*checkpoint.BuildCheckpoint
	if runsFailed {
		records, err = manager.FindFailed(ctx)
	} else {
		records, err = manager.List(ctx)
	}
	if err != nil {
		return err
	}

	if runsJSON {
		return printJSON(cmd, records)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No runs recorded in", manager.GetCheckpointDir())
		return nil
	}
	for _, r := range records {
		state := r.GetProgress()
		if r.Failed() {
			state += " failed"
		}
		if r.PartiallyWritten() {
			state += " partial"
		}
		fmt.Fprintf(out, "%s  %-20s  %-32s  %s  nodes %d/%d  edges %d/%d\n",
			r.LastUpdatedAt.Format(time.RFC3339), r.RunID, r.TimetableID, state,
			r.NodesWritten, r.NodesTotal, r.EdgesWritten, r.EdgesTotal)
	}
	return nil
}
