package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	stride "github.com/TFMV/stridewalk/internal/walk"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var treeCmd = &cobra.Command{
	Use:   "tree [options] <path>",
	Short: "Print a directory tree",
	Long: `Print a directory tree with one entry per line, indented by depth.

Directories matching --prune are shown but not entered, --limit caps the
number of entries printed per directory and --dirs-only hides files.

Examples:
  stridewalk tree /path/to/dir
  stridewalk tree --prune=node_modules --prune=.git /path/to/dir
  stridewalk tree --max-depth=2 --limit=20 /path/to/dir`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTree(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	treeCmd.Flags().StringSlice("prune", nil, "Do not descend into directories matching these patterns")
	treeCmd.Flags().Int("limit", 0, "Maximum entries printed per directory (0 for no limit)")
	treeCmd.Flags().Bool("dirs-only", false, "Only print directories")
	treeCmd.Flags().Bool("no-color", false, "Disable colored output")

	viper.BindPFlag("tree.prune", treeCmd.Flags().Lookup("prune"))
	viper.BindPFlag("tree.limit", treeCmd.Flags().Lookup("limit"))
	viper.BindPFlag("tree.dirs-only", treeCmd.Flags().Lookup("dirs-only"))
	viper.BindPFlag("tree.no-color", treeCmd.Flags().Lookup("no-color"))
}

// treePrinter is a Visitor that renders the walk as an indented tree.
type treePrinter struct {
	out      io.Writer
	prune    []string
	limit    int
	dirsOnly bool

	// printed counts the entries printed in each open directory.
	printed []int

	dirs, files, failures int

	dirColor, linkColor, errColor *color.Color
}

func newTreePrinter(out io.Writer, noColor bool) *treePrinter {
	p := &treePrinter{
		out:       out,
		prune:     viper.GetStringSlice("tree.prune"),
		limit:     viper.GetInt("tree.limit"),
		dirsOnly:  viper.GetBool("tree.dirs-only"),
		dirColor:  color.New(color.FgBlue, color.Bold),
		linkColor: color.New(color.FgCyan),
		errColor:  color.New(color.FgRed),
	}
	if noColor {
		for _, c := range []*color.Color{p.dirColor, p.linkColor, p.errColor} {
			c.DisableColor()
		}
	}
	return p
}

func (p *treePrinter) pruned(path string) bool {
	name := filepath.Base(path)
	for _, pattern := range p.prune {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// full reports whether the current directory already printed --limit entries.
// It prints the elision marker when it does.
func (p *treePrinter) full() bool {
	n := len(p.printed)
	if n == 0 || p.limit <= 0 || p.printed[n-1] < p.limit {
		return false
	}
	fmt.Fprintf(p.out, "%s└── …\n", strings.Repeat("│   ", n-1))
	return true
}

// line prints one entry of the current directory.
func (p *treePrinter) line(path string, c *color.Color, suffix string) {
	depth := len(p.printed)
	name := filepath.Base(path)
	indent := ""
	if depth == 0 {
		name = path
	} else {
		indent = strings.Repeat("│   ", depth-1) + "├── "
		p.printed[depth-1]++
	}
	if c != nil {
		name = c.Sprint(name)
	}
	fmt.Fprintf(p.out, "%s%s%s\n", indent, name, suffix)
}

func (p *treePrinter) PreVisitDirectory(path string, attrs stride.Attributes) (stride.VisitResult, error) {
	if p.full() {
		return stride.SkipSiblings, nil
	}
	p.dirs++
	if len(p.printed) > 0 && p.pruned(path) {
		p.line(path, p.dirColor, " [pruned]")
		return stride.SkipSubtree, nil
	}
	p.line(path, p.dirColor, "")
	p.printed = append(p.printed, 0)
	return stride.Continue, nil
}

func (p *treePrinter) VisitFile(path string, attrs stride.Attributes) (stride.VisitResult, error) {
	if attrs.IsDir {
		if p.full() {
			return stride.SkipSiblings, nil
		}
		p.dirs++
		p.line(path, p.dirColor, "")
		return stride.Continue, nil
	}
	if p.dirsOnly {
		return stride.Continue, nil
	}
	if p.full() {
		return stride.SkipSiblings, nil
	}
	p.files++
	if attrs.IsSymlink {
		p.line(path, p.linkColor, " @")
	} else {
		p.line(path, nil, "")
	}
	return stride.Continue, nil
}

func (p *treePrinter) VisitFileFailed(path string, err error) (stride.VisitResult, error) {
	if p.full() {
		return stride.SkipSiblings, nil
	}
	p.failures++
	p.line(path, p.errColor, fmt.Sprintf(" [%v]", err))
	return stride.Continue, nil
}

func (p *treePrinter) PostVisitDirectory(path string, err error) (stride.VisitResult, error) {
	if err != nil {
		p.failures++
		fmt.Fprintf(p.out, "%s%s\n", strings.Repeat("│   ", len(p.printed)), p.errColor.Sprintf("[%v]", err))
	}
	p.printed = p.printed[:len(p.printed)-1]
	return stride.Continue, nil
}

func runTree(out io.Writer, root string) error {
	opts := walkOptions()
	defer opts.Logger.Sync()

	p := newTreePrinter(out, viper.GetBool("tree.no-color"))
	if err := stride.WalkTree(root, opts, maxDepth("max-depth"), p); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d directories, %d files", p.dirs, p.files)
	if p.failures > 0 {
		fmt.Fprintf(out, ", %d errors", p.failures)
	}
	fmt.Fprintln(out)
	return nil
}
