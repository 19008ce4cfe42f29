package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	stride "github.com/TFMV/stridewalk/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch for filesystem changes",
	Long: `Watch for filesystem changes and perform actions when files are created, modified, or deleted.

Examples:
  stridewalk watch /path/to/watch
  stridewalk watch --events=create,modify --exec="echo Changed: {}" /path/to/watch
  stridewalk watch --pattern="*.go" --format="{base} was {event} at {time}" /path/to/watch
  stridewalk watch --recursive --max-depth=3 /path/to/watch`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		watchDir := "."
		if len(args) > 0 {
			watchDir = args[0]
		}
		return runWatch(cmd.Context(), cmd.OutOrStdout(), watchDir)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSlice("events", []string{}, "Events to watch for (create, modify, delete, rename, chmod)")
	watchCmd.Flags().Bool("recursive", false, "Watch subdirectories recursively")
	watchCmd.Flags().String("exec", "", "Command to execute when an event occurs")
	watchCmd.Flags().String("format", "", "Format string for output")
	watchCmd.Flags().String("pattern", "", "File pattern to match (e.g., *.go)")
	watchCmd.Flags().String("ignore", "", "File pattern to ignore")
	watchCmd.Flags().Duration("timeout", 0, "Duration to watch before exiting (e.g., 1h, 30m)")
	watchCmd.Flags().Bool("include-hidden", false, "Include hidden files and directories")

	for _, name := range []string{"events", "recursive", "exec", "format", "pattern", "ignore", "timeout", "include-hidden"} {
		viper.BindPFlag("watch."+name, watchCmd.Flags().Lookup(name))
	}
}

func runWatch(ctx context.Context, out io.Writer, watchDir string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var events []stride.WatchEvent
	for _, e := range viper.GetStringSlice("watch.events") {
		switch e {
		case "write":
			e = string(stride.EventModify)
		case "remove":
			e = string(stride.EventDelete)
		}
		event, err := stride.ParseWatchEvent(e)
		if err != nil {
			return err
		}
		events = append(events, event)
	}

	walkOpts := walkOptions()
	defer walkOpts.Logger.Sync()

	depth := viper.GetInt("max-depth")
	if depth < 0 {
		depth = 0
	}
	opts := stride.WatchOptions{
		Events:        events,
		Recursive:     viper.GetBool("watch.recursive"),
		MaxDepth:      depth,
		Pattern:       viper.GetString("watch.pattern"),
		IgnorePattern: viper.GetString("watch.ignore"),
		IncludeHidden: viper.GetBool("watch.include-hidden"),
		Timeout:       viper.GetDuration("watch.timeout"),
		Walk:          walkOpts,
	}

	if !viper.GetBool("silent") {
		fmt.Fprintf(os.Stderr, "Watching %s for changes...\n", watchDir)
		if opts.Timeout > 0 {
			fmt.Fprintf(os.Stderr, "Exiting after %v.\n", opts.Timeout.Round(time.Second))
		} else {
			fmt.Fprintln(os.Stderr, "Press Ctrl+C to exit.")
		}
	}

	if execCmd := viper.GetString("watch.exec"); execCmd != "" {
		return stride.WatchWithExec(ctx, watchDir, opts, execCmd, out)
	}
	if format := viper.GetString("watch.format"); format != "" {
		return stride.WatchWithFormat(ctx, watchDir, opts, format, out)
	}
	return stride.Watch(ctx, watchDir, opts, func(ctx context.Context, result stride.WatchResult) error {
		if result.Error != nil {
			walkOpts.Logger.Sugar().Warnw("watch error", "error", result.Error)
			return nil
		}
		_, err := fmt.Fprintf(out, "%s: %s\n", result.Message.Event, result.Message.Path)
		return err
	})
}
