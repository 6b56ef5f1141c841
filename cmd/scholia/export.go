package scholia

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/soundprediction/scholia"
	"github.com/soundprediction/scholia/pkg/tables"
	"github.com/soundprediction/scholia/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a timetable to Parquet or iCalendar without touching the store",
	Long: `Export builds the timetable from --input as a dry run and writes the result to the
requested destinations. Defaults for --parquet-dir and --ics-file come from the export
section of the config file.`,
	Example: `  scholia export --input timetable.xlsx --parquet-dir ./out
  scholia export --input timetable.yaml --ics-file term.ics --timezone Europe/London`,
	RunE: runExport,
}

var (
	exportInput    string
	exportSchoolID string
	exportJSON     bool
	exportOpts     exportOptions
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Workbook, YAML document or CSV directory holding the tables")
	exportCmd.Flags().StringVar(&exportSchoolID, "school-id", "", "unique_id of the owning School node")
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "Print the build summary as JSON")
	addExportFlags(exportCmd, &exportOpts)

	exportCmd.MarkFlagRequired("input")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	env, err := setup(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	opts := exportOpts
	if opts.parquetDir == "" {
		opts.parquetDir = env.cfg.Export.ParquetDir
	}
	if opts.icsFile == "" {
		opts.icsFile = env.cfg.Export.ICSFile
	}
	if opts.empty() {
		return errors.New("nothing to export: set --parquet-dir or --ics-file")
	}

	set, err := tables.Read(exportInput)
	if err != nil {
		return err
	}
	var school *types.SchoolRef
	if exportSchoolID != "" {
		school = &types.SchoolRef{UniqueID: exportSchoolID}
	}

	client, err := scholia.NewClient(nil, nil, &scholia.Config{DryRun: true}, env.logger)
	if err != nil {
		return err
	}
	result, err := client.BuildTimetable(ctx, set, "", school)
	if err != nil {
		return err
	}

	if err := writeExports(ctx, env.logger, result, opts); err != nil {
		return err
	}
	return printSummary(cmd, result, exportJSON)
}
