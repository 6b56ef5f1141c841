package scholia

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/driver"
	"github.com/soundprediction/scholia/pkg/tables"
	"github.com/soundprediction/scholia/pkg/types"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a timetable graph from tables",
	Long: `Build reads the timetable tables from --input and merges the calendar and timetable
layers into the configured graph store.

--input may be a workbook (.xlsx), a YAML document (.yaml) or a directory holding
school.csv, terms.csv, weeks.csv, days.csv and periods.csv. Every write is a merge, so
re-running a build after editing the tables updates the graph in place.`,
	Example: `  scholia build --input timetable.xlsx
  scholia build --input ./tables --school-id School_42 --school-path /srv/schools/42
  scholia build --input timetable.yaml --db-driver badger --db-path ./graph --ics-file term.ics`,
	RunE: runBuild,
}

var (
	buildInput         string
	buildDatabase      string
	buildSchoolID      string
	buildSchoolName    string
	buildSchoolPath    string
	buildDryRun        bool
	buildCreateIndices bool
	buildJSON          bool
	buildExport        exportOptions
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildInput, "input", "i", "", "Workbook, YAML document or CSV directory holding the tables")
	buildCmd.Flags().StringVar(&buildDatabase, "database", "", "Store database to write to (neo4j)")
	buildCmd.Flags().StringVar(&buildSchoolID, "school-id", "", "unique_id of the owning School node")
	buildCmd.Flags().StringVar(&buildSchoolName, "school-name", "", "Name of the owning School node")
	buildCmd.Flags().StringVar(&buildSchoolPath, "school-path", "", "Workspace directory of the owning School node")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "Build without writing to the store or the workspace")
	buildCmd.Flags().BoolVar(&buildCreateIndices, "create-indices", true, "Create uniqueness constraints before writing")
	buildCmd.Flags().BoolVar(&buildJSON, "json", false, "Print the build summary as JSON")
	addExportFlags(buildCmd, &buildExport)

	buildCmd.MarkFlagRequired("input")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	set, err := tables.Read(buildInput)
	if err != nil {
		return err
	}

	var school *types.SchoolRef
	if buildSchoolID != "" {
		school = &types.SchoolRef{UniqueID: buildSchoolID, Name: buildSchoolName, Path: buildSchoolPath}
	}

	var store driver.GraphStore
	if !buildDryRun {
		if store, err = env.openStore(ctx); err != nil {
			return err
		}
	}

	client, err := env.newClient(store, &scholia.Config{DryRun: buildDryRun, CreateIndices: buildCreateIndices})
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	result, err := client.BuildTimetable(ctx, set, buildDatabase, school)
	if err != nil {
		return err
	}

	if err := writeExports(ctx, env.logger, result, buildExport); err != nil {
		return err
	}
	return printSummary(cmd, result, buildJSON)
}

func printSummary(cmd *cobra.Command, result *scholia.BuildResult, asJSON bool) error {
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "Run:        %s\n", result.RunID)
	if tt := result.TimetableLayer; tt != nil && tt.Timetable != nil {
		fmt.Fprintf(out, "Timetable:  %s\n", tt.Timetable.UniqueID)
		fmt.Fprintf(out, "Years:      %d\n", len(tt.Years))
		fmt.Fprintf(out, "Terms:      %d\n", len(tt.Terms))
		fmt.Fprintf(out, "Weeks:      %d\n", len(tt.Weeks))
		fmt.Fprintf(out, "Days:       %d\n", len(tt.Days))
		fmt.Fprintf(out, "Periods:    %d\n", len(tt.Periods))
	}
	if result.DryRun {
		fmt.Fprintf(out, "Dry run:    %d nodes, %d edges built\n", len(result.Batch.Nodes), len(result.Batch.Edges))
	} else {
		fmt.Fprintf(out, "Written:    %d nodes, %d edges\n", result.NodesWritten, result.EdgesWritten)
	}
	if n := len(result.Report.SkippedDays); n > 0 {
		fmt.Fprintf(out, "Skipped:    %d day rows outside the calendar\n", n)
	}
	if result.Report.Ambiguities > 0 {
		fmt.Fprintf(out, "Ambiguous:  %d overlapping containers ignored\n", result.Report.Ambiguities)
	}
	return nil
}
