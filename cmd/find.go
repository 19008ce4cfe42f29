package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	stride "github.com/TFMV/stridewalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var findCmd = &cobra.Command{
	Use:   "find [options] <path>",
	Short: "Find files with advanced filtering",
	Long: `Find files with advanced filtering capabilities.
Supports pattern matching, time-based filtering, size constraints, and more.
Can execute commands for each matched file or format output using templates.

Examples:
  stridewalk find /path/to/search --name="*.go"
  stridewalk find /path/to/search --regex=".*\\.txt$" --larger-than=1MB
  stridewalk find /path/to/search --type=d --name="testdata"
  stridewalk find /path/to/search --exec="echo Processing: {}"
  stridewalk find /path/to/search --format="{base} ({size} bytes)"`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	// Pattern matching options
	findCmd.Flags().StringP("name", "n", "", "Match by file name (supports wildcards)")
	findCmd.Flags().StringP("path", "p", "", "Match by path (supports wildcards)")
	findCmd.Flags().String("ignore", "", "Skip paths matching this pattern")
	findCmd.Flags().StringP("regex", "r", "", "Match by regular expression")
	findCmd.Flags().StringP("type", "t", "", "Match entries of this type (f, d or l)")

	// Time-based filtering
	findCmd.Flags().String("older-than", "", "Files older than this duration (e.g. 7d, 24h, 30m)")
	findCmd.Flags().String("newer-than", "", "Files newer than this duration (e.g. 7d, 24h, 30m)")

	// Size-based filtering
	findCmd.Flags().String("larger-than", "", "Files larger than this size (e.g. 1MB, 500KB)")
	findCmd.Flags().String("smaller-than", "", "Files smaller than this size (e.g. 1MB, 500KB)")

	// Execution options
	findCmd.Flags().String("exec", "", "Command to execute for each match")
	findCmd.Flags().String("format", "", "Format string for output")

	findCmd.Flags().Bool("include-hidden", false, "Include hidden files")

	// Bind flags to viper
	for _, name := range []string{
		"name", "path", "ignore", "regex", "type",
		"older-than", "newer-than", "larger-than", "smaller-than",
		"exec", "format", "include-hidden",
	} {
		viper.BindPFlag("find."+name, findCmd.Flags().Lookup(name))
	}
}

// findOptions builds FindOptions from the find.* configuration keys.
func findOptions() (stride.FindOptions, error) {
	opts := stride.FindOptions{
		NamePattern:   viper.GetString("find.name"),
		PathPattern:   viper.GetString("find.path"),
		IgnorePattern: viper.GetString("find.ignore"),
		IncludeHidden: viper.GetBool("find.include-hidden"),
	}

	var err error
	if opts.Type, err = stride.ParseEntryType(viper.GetString("find.type")); err != nil {
		return opts, err
	}

	if regexStr := viper.GetString("find.regex"); regexStr != "" {
		opts.RegexPattern, err = stride.CompileRegex(regexStr)
		if err != nil {
			return opts, fmt.Errorf("invalid regex pattern: %w", err)
		}
	}

	if olderThanStr := viper.GetString("find.older-than"); olderThanStr != "" {
		if opts.OlderThan, err = parseDuration(olderThanStr); err != nil {
			return opts, fmt.Errorf("invalid older-than value: %w", err)
		}
	}
	if newerThanStr := viper.GetString("find.newer-than"); newerThanStr != "" {
		if opts.NewerThan, err = parseDuration(newerThanStr); err != nil {
			return opts, fmt.Errorf("invalid newer-than value: %w", err)
		}
	}

	if largerThanStr := viper.GetString("find.larger-than"); largerThanStr != "" {
		if opts.LargerSize, err = stride.ParseSize(largerThanStr); err != nil {
			return opts, fmt.Errorf("invalid larger-than value: %w", err)
		}
	}
	if smallerThanStr := viper.GetString("find.smaller-than"); smallerThanStr != "" {
		if opts.SmallerSize, err = stride.ParseSize(smallerThanStr); err != nil {
			return opts, fmt.Errorf("invalid smaller-than value: %w", err)
		}
	}
	return opts, nil
}

func runFind(ctx context.Context, out io.Writer, root string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts, err := findOptions()
	if err != nil {
		return err
	}
	walkOpts := walkOptions()
	defer walkOpts.Logger.Sync()
	depth := maxDepth("max-depth")

	handler := stride.PrintHandler(out)
	if execCmd := viper.GetString("find.exec"); execCmd != "" {
		handler = stride.ExecHandler(execCmd, out)
	} else if format := viper.GetString("find.format"); format != "" {
		handler = stride.FormatHandler(format, out)
	}
	return stride.FindEach(ctx, root, depth, opts, walkOpts, skipFailures(walkOpts.Logger, handler))
}

// skipFailures logs unreadable entries instead of ending the search.
func skipFailures(log *zap.Logger, next stride.FindHandler) stride.FindHandler {
	return func(ctx context.Context, result stride.FindResult) error {
		if result.Error != nil {
			log.Warn("cannot visit entry", zap.String("path", result.Message.Path), zap.Error(result.Error))
			return nil
		}
		return next(ctx, result)
	}
}

// parseDuration parses a duration string with support for days (d)
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := parseFloat(s[:len(s)-1])
		if err != nil {
			return 0, err
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}
	return time.ParseDuration(s)
}

// parseFloat parses a float from a string
func parseFloat(s string) (float64, error) {
	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	return value, err
}
