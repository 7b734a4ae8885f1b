// Command lgrep searches line sources for matches of a pattern using
// the lgrep engine.
//
// Usage:
//
//	cat access.log | lgrep 'GET /api/\w+'
//	lgrep -n 'ERROR|FATAL' server.log worker.log
//	lgrep -r 'TODO' ./src
//
// Exit status is 0 when at least one line was selected, 1 when none
// was, and 2 on a usage, pattern or read error.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/coregx/lgrep"
	"github.com/coregx/lgrep/grep"
)

// errNoMatch signals a clean "nothing selected" run to main, which
// turns it into exit status 1 without printing anything.
var errNoMatch = errors.New("no lines selected")

var rootCmd = &cobra.Command{
	Use:   "lgrep [flags] PATTERN [PATH ...]",
	Short: "Search lines matching a pattern",
	Long: `lgrep searches the named files (or stdin when none are given) for
lines matching PATTERN and prints them. Directories are searched
recursively with -r. The pattern dialect supports literals, '.',
character classes, \d \w \s, anchors, * + ?, grouping and
alternation.`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	registerFlags(rootCmd.Flags())

	viper.SetEnvPrefix("LGREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		panic(err)
	}
}

func registerFlags(fs *pflag.FlagSet) {
	fs.BoolP("recursive", "r", false, "search directories recursively")
	fs.BoolP("line-number", "n", false, "prefix each line with its line number")
	fs.BoolP("count", "c", false, "print only a count of selected lines per source")
	fs.BoolP("invert-match", "v", false, "select non-matching lines")
	fs.BoolP("with-filename", "H", false, "always prefix lines with the source name")
	fs.String("color", "auto", "highlight matches: auto, always or never")
	fs.Bool("debug", false, "enable debug logging to stderr")
}

func run(cmd *cobra.Command, args []string) error {
	pattern, paths := args[0], args[1:]

	logger := zap.NewNop()
	if viper.GetBool("debug") {
		l, err := zap.NewDevelopment()
		if err != nil {
			return errors.Wrap(err, "init logger")
		}
		logger = l
		defer logger.Sync() //nolint:errcheck
	}

	re, err := lgrep.Compile(pattern)
	if err != nil {
		return err
	}
	logger.Debug("pattern compiled",
		zap.String("pattern", pattern),
		zap.Int("states", re.NumStates()))

	recursive := viper.GetBool("recursive")
	opts := grep.Options{
		Recursive:    recursive,
		LineNumber:   viper.GetBool("line-number"),
		Count:        viper.GetBool("count"),
		Invert:       viper.GetBool("invert-match"),
		WithFilename: viper.GetBool("with-filename") || recursive || len(paths) > 1,
		Color:        colorEnabled(viper.GetString("color")),
		Logger:       logger,
	}

	searcher := grep.New(re, opts, os.Stdout, os.Stderr)
	matched, err := searcher.Run(paths, os.Stdin)
	if err != nil {
		return err
	}
	if !matched {
		return errNoMatch
	}
	return nil
}

// colorEnabled resolves the --color mode; "auto" means color only
// when stdout is a terminal.
func colorEnabled(mode string) bool {
	switch mode {
	case "always":
		return true
	case "auto":
		return term.IsTerminal(int(os.Stdout.Fd()))
	default:
		return false
	}
}

func main() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	if errors.Is(err, errNoMatch) {
		os.Exit(1)
	}
	// Partial-search failures were already reported line by line.
	if !errors.Is(err, grep.ErrPartial) {
		fmt.Fprintf(os.Stderr, "lgrep: %v\n", err)
	}
	os.Exit(2)
}
