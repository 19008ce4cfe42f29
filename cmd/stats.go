package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	stride "github.com/TFMV/stridewalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statsCmd = &cobra.Command{
	Use:   "stats [options] [path]",
	Short: "Summarize a directory tree",
	Long: `Count files, directories and bytes below a directory, and optionally
report storage usage by extension together with the largest, oldest and newest
files.

Examples:
  stridewalk stats /path/to/directory
  stridewalk stats --progress /path/to/directory
  stridewalk stats --report --top=20 --min-size=1MB /path/to/directory
  stridewalk stats --report --format=json --output-file=report.json /path/to/directory`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		return runStats(cmd.Context(), cmd.OutOrStdout(), dir)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().Bool("progress", false, "Show progress updates")
	statsCmd.Flags().String("format", "text", "Output format (text|json)")
	statsCmd.Flags().Bool("report", false, "Generate a storage usage report")
	statsCmd.Flags().Int("top", stride.DefaultReportTop, "Number of files listed per ranking in the report")
	statsCmd.Flags().String("min-size", "", "Ignore files smaller than this size in the report")
	statsCmd.Flags().String("max-size", "", "Ignore files larger than this size in the report")
	statsCmd.Flags().Bool("include-hidden", false, "Include hidden files and directories in the report")
	statsCmd.Flags().String("output-file", "", "File to write the report to")

	for _, name := range []string{"progress", "format", "report", "top", "min-size", "max-size", "include-hidden", "output-file"} {
		viper.BindPFlag("stats."+name, statsCmd.Flags().Lookup(name))
	}
}

func runStats(ctx context.Context, out io.Writer, root string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	format := viper.GetString("stats.format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (expected text or json)", format)
	}
	opts := walkOptions()
	defer opts.Logger.Sync()

	if viper.GetBool("stats.report") {
		return runReport(ctx, out, root, format, opts)
	}

	var progress stride.ProgressFn
	if viper.GetBool("stats.progress") {
		progress = func(stats stride.Stats) {
			fmt.Fprintf(os.Stderr, "\rProcessed: %d files, %d dirs, %d bytes, %.2f MB/s",
				stats.FilesProcessed, stats.DirsProcessed, stats.BytesProcessed, stats.SpeedMBPerSec)
		}
	}

	stats, err := stride.Summarize(ctx, root, maxDepth("max-depth"), opts, progress)
	if progress != nil {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}
	fmt.Fprintf(out, "Files:          %d\n", stats.FilesProcessed)
	fmt.Fprintf(out, "Directories:    %d (%d empty)\n", stats.DirsProcessed, stats.EmptyDirs)
	fmt.Fprintf(out, "Total size:     %s\n", stride.FormatSize(stats.BytesProcessed))
	fmt.Fprintf(out, "Average size:   %s\n", stride.FormatSize(stats.AvgFileSize))
	fmt.Fprintf(out, "Deepest level:  %d\n", stats.MaxDepth)
	fmt.Fprintf(out, "Errors:         %d (%d loops)\n", stats.ErrorCount, stats.LoopCount)
	fmt.Fprintf(out, "Elapsed:        %v\n", stats.ElapsedTime.Round(time.Millisecond))
	return nil
}

func runReport(ctx context.Context, out io.Writer, root, format string, walkOpts stride.WalkOptions) error {
	opts := stride.ReportOptions{
		MaxDepth:      maxDepth("max-depth"),
		Top:           viper.GetInt("stats.top"),
		IncludeHidden: viper.GetBool("stats.include-hidden"),
		Walk:          walkOpts,
	}
	var err error
	if opts.MinSize, err = stride.ParseSize(viper.GetString("stats.min-size")); err != nil {
		return fmt.Errorf("invalid min-size value: %w", err)
	}
	if opts.MaxSize, err = stride.ParseSize(viper.GetString("stats.max-size")); err != nil {
		return fmt.Errorf("invalid max-size value: %w", err)
	}

	report, err := stride.BuildReport(ctx, root, opts)
	if err != nil {
		return err
	}

	if path := viper.GetString("stats.output-file"); path != "" {
		if format == "json" {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("error saving report: %w", err)
			}
		} else if err := report.SaveToFile(path); err != nil {
			return fmt.Errorf("error saving report: %w", err)
		}
		fmt.Fprintf(out, "Report saved to %s\n", path)
		return nil
	}

	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	_, err = fmt.Fprint(out, report.String())
	return err
}
