package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	stride "github.com/TFMV/stridewalk/internal/walk"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list [options] <dir>",
	Short: "List the immediate entries of a directory",
	Long: `List the immediate entries of a directory without descending into it.
Entries are printed in the order the file system returns them.

Examples:
  stridewalk list /path/to/dir
  stridewalk list --long /path/to/dir`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runList(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("long", "l", false, "Print type, size and modification time")
	viper.BindPFlag("list.long", listCmd.Flags().Lookup("long"))
}

func runList(out io.Writer, dir string) error {
	opts := walkOptions()
	defer opts.Logger.Sync()

	seq, err := stride.List(dir, opts)
	if err != nil {
		return err
	}
	defer seq.Close()

	long := viper.GetBool("list.long")
	fsys := stride.NewOSFS()
	for seq.Next() {
		path := seq.Path()
		if !long {
			fmt.Fprintln(out, filepath.Base(path))
			continue
		}
		attrs, err := fsys.Stat(path, opts.FollowLinks)
		if err != nil {
			fmt.Fprintf(out, "?  %10s  %-16s  %s\n", "-", "-", filepath.Base(path))
			continue
		}
		fmt.Fprintf(out, "%s  %10s  %-16s  %s\n",
			entryType(attrs), stride.FormatSize(attrs.Size()), attrs.ModTime().Format("2006-01-02 15:04"), filepath.Base(path))
	}
	return seq.Err()
}
