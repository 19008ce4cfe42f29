package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	stride "github.com/TFMV/stridewalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	version = "0.2.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stridewalk [options] <path>",
	Short: "A lazy depth-first file tree walker",
	Long: `stridewalk walks a directory tree depth first, one entry at a time, and
prints every path it visits. Symbolic links are reported as leaves unless
--follow-symlinks is set, in which case link loops are detected and reported.

Examples:
  stridewalk /path/to/walk
  stridewalk --max-depth=2 --type=d /path/to/walk
  stridewalk --follow-symlinks --format=json /path/to/walk`,
	Version:       version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWalk(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.stridewalk.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("silent", false, "Disable all output except errors")
	rootCmd.PersistentFlags().Bool("follow-symlinks", false, "Follow symbolic links (loops are reported)")
	rootCmd.PersistentFlags().IntP("max-depth", "d", -1, "Maximum directory depth to traverse (-1 for unlimited)")

	rootCmd.Flags().String("format", "text", "Output format (text|json)")
	rootCmd.Flags().StringP("type", "t", "", "Only print entries of this type (f, d or l)")
	rootCmd.Flags().Bool("progress", false, "Print a summary when the walk ends")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("silent", rootCmd.PersistentFlags().Lookup("silent"))
	viper.BindPFlag("follow-symlinks", rootCmd.PersistentFlags().Lookup("follow-symlinks"))
	viper.BindPFlag("max-depth", rootCmd.PersistentFlags().Lookup("max-depth"))
	viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))
	viper.BindPFlag("type", rootCmd.Flags().Lookup("type"))
	viper.BindPFlag("progress", rootCmd.Flags().Lookup("progress"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".stridewalk" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".stridewalk")
	}

	viper.SetEnvPrefix("STRIDEWALK")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("silent") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// walkOptions builds the traversal options shared by every command.
func walkOptions() stride.WalkOptions {
	opts := stride.WalkOptions{FollowLinks: viper.GetBool("follow-symlinks")}
	switch {
	case viper.GetBool("verbose"):
		opts.LogLevel = stride.LogLevelDebug
	case viper.GetBool("silent"):
		opts.LogLevel = stride.LogLevelError
	default:
		opts.LogLevel = stride.LogLevelWarn
	}
	opts.Logger = stride.NewLogger(opts.LogLevel)
	return opts
}

// maxDepth converts the --max-depth flag, where a negative value means unlimited.
func maxDepth(key string) int {
	if d := viper.GetInt(key); d >= 0 {
		return d
	}
	return stride.Unlimited
}

// entryRecord is the JSON form of a walked entry.
type entryRecord struct {
	Path         string `json:"path"`
	Type         string `json:"type"`
	Size         int64  `json:"size"`
	Mode         string `json:"mode,omitempty"`
	LastModified string `json:"last_modified,omitempty"`
	Error        string `json:"error,omitempty"`
}

func newEntryRecord(path string, attrs stride.Attributes) entryRecord {
	rec := entryRecord{Path: path, Type: entryType(attrs), Size: attrs.Size()}
	if attrs.Info != nil {
		rec.Mode = attrs.Mode().String()
		rec.LastModified = attrs.ModTime().Format(time.RFC3339)
	}
	return rec
}

func entryType(attrs stride.Attributes) string {
	switch {
	case attrs.IsSymlink:
		return string(stride.TypeSymlink)
	case attrs.IsDir:
		return string(stride.TypeDir)
	default:
		return string(stride.TypeFile)
	}
}

func runWalk(ctx context.Context, out io.Writer, root string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	want, err := stride.ParseEntryType(viper.GetString("type"))
	if err != nil {
		return err
	}
	format := viper.GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s (expected text or json)", format)
	}
	silent := viper.GetBool("silent")

	opts := walkOptions()
	defer opts.Logger.Sync()

	enc := json.NewEncoder(out)
	var stats stride.Stats
	start := time.Now()

	emit := func(path string, attrs stride.Attributes) error {
		if want != stride.TypeAny && entryType(attrs) != string(want) {
			return nil
		}
		if silent {
			return nil
		}
		if format == "json" {
			return enc.Encode(newEntryRecord(path, attrs))
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		_, err = fmt.Fprintln(out, rel)
		return err
	}

	var failures int
	err = stride.WalkTreeContext(ctx, root, opts, maxDepth("max-depth"), stride.VisitorFuncs{
		PreVisitDirectoryFunc: func(path string, attrs stride.Attributes) (stride.VisitResult, error) {
			stats.DirsProcessed++
			return stride.Continue, emit(path, attrs)
		},
		VisitFileFunc: func(path string, attrs stride.Attributes) (stride.VisitResult, error) {
			if !attrs.IsDir {
				stats.FilesProcessed++
				stats.BytesProcessed += attrs.Size()
			}
			return stride.Continue, emit(path, attrs)
		},
		VisitFileFailedFunc: func(path string, err error) (stride.VisitResult, error) {
			failures++
			if errors.Is(err, stride.ErrLoop) {
				stats.LoopCount++
			}
			if format == "json" && !silent {
				return stride.Continue, enc.Encode(entryRecord{Path: path, Error: err.Error()})
			}
			opts.Logger.Warn("cannot visit entry", zap.String("path", path), zap.Error(err))
			return stride.Continue, nil
		},
		PostVisitDirectoryFunc: func(path string, err error) (stride.VisitResult, error) {
			if err != nil {
				failures++
				opts.Logger.Warn("cannot read directory", zap.String("path", path), zap.Error(err))
			}
			return stride.Continue, nil
		},
	})
	if err != nil {
		return err
	}

	if viper.GetBool("progress") {
		stats.ErrorCount = int64(failures)
		stats.ElapsedTime = time.Since(start)
		fmt.Fprintf(os.Stderr, "Processed: %d files, %d dirs, %d bytes, %d errors in %v\n",
			stats.FilesProcessed, stats.DirsProcessed, stats.BytesProcessed, stats.ErrorCount, stats.ElapsedTime.Round(time.Millisecond))
	}
	return nil
}
