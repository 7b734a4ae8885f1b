// Package grep is the search driver around the lgrep engine: it owns
// line sources (stdin, files, recursively walked directories), calls
// the compiled matcher once per line and formats matching lines for
// output. The engine itself stays free of any I/O.
package grep

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/coregx/lgrep"
)

// ANSI sequences for match highlighting, mirroring GNU grep's default
// GREP_COLORS match style.
const (
	colorMatch = "\x1b[01;31m"
	colorReset = "\x1b[0m"
)

// stdinLabel is the name printed for stdin when filenames are shown.
const stdinLabel = "(standard input)"

// ErrPartial reports that some sources could not be searched. The
// individual failures have already been written to the error writer;
// callers use this to pick the process exit status.
var ErrPartial = errors.New("some sources could not be searched")

// Options configures a Searcher.
type Options struct {
	// Recursive enables descending into directories. Without it a
	// directory argument is an error.
	Recursive bool

	// LineNumber prefixes each printed line with its 1-based number.
	LineNumber bool

	// WithFilename prefixes each printed line with its source name.
	// The command layer turns this on when more than one source is
	// searched.
	WithFilename bool

	// Invert selects lines that do NOT match.
	Invert bool

	// Count suppresses normal output and prints only the number of
	// selected lines per source.
	Count bool

	// Color wraps the matched span in ANSI highlighting. Resolved by
	// the caller (the CLI handles --color=auto).
	Color bool

	// MaxLineLen bounds the line scanner's buffer. Defaults to 4 MiB.
	MaxLineLen int

	// Workers bounds how many files are searched concurrently.
	// Defaults to GOMAXPROCS.
	Workers int

	// Logger receives debug traces. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Searcher runs a compiled pattern over line sources. The compiled
// Regex is immutable, so one Searcher may fan file searches out to
// several goroutines; output stays grouped per file.
type Searcher struct {
	re   *lgrep.Regex
	opts Options
	out  io.Writer
	errw io.Writer
	log  *zap.Logger
}

// New creates a Searcher writing matches to out and failures to errw.
func New(re *lgrep.Regex, opts Options, out, errw io.Writer) *Searcher {
	if opts.MaxLineLen <= 0 {
		opts.MaxLineLen = 4 << 20
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Searcher{
		re:   re,
		opts: opts,
		out:  out,
		errw: errw,
		log:  opts.Logger,
	}
}

// Run searches the given paths, or stdin when paths is empty. It
// returns whether any line was selected. Unreadable sources are
// reported to the error writer and skipped; if any were skipped the
// returned error wraps ErrPartial.
func (s *Searcher) Run(paths []string, stdin io.Reader) (bool, error) {
	if len(paths) == 0 {
		name := ""
		if s.opts.WithFilename {
			name = stdinLabel
		}
		n, err := s.searchReader(s.out, name, stdin)
		if err != nil {
			fmt.Fprintf(s.errw, "lgrep: %v\n", err)
			return n > 0, ErrPartial
		}
		return n > 0, nil
	}

	files, failures := s.collect(paths)
	for _, f := range failures {
		fmt.Fprintf(s.errw, "lgrep: %v\n", f)
	}

	results := make([]fileResult, len(files))
	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i, path := range files {
		g.Go(func() error {
			results[i].n, results[i].err = s.searchFile(&results[i].buf, path)
			return nil
		})
	}
	// Workers never return errors through the group; failures are
	// collected per file so one bad file cannot cancel the rest.
	_ = g.Wait()

	matched := false
	failed := len(failures) > 0
	for i := range results {
		if results[i].err != nil {
			fmt.Fprintf(s.errw, "lgrep: %v\n", results[i].err)
			failed = true
			continue
		}
		if _, err := s.out.Write(results[i].buf.Bytes()); err != nil {
			return matched, errors.Wrap(err, "write output")
		}
		if results[i].n > 0 {
			matched = true
		}
	}
	if failed {
		return matched, ErrPartial
	}
	return matched, nil
}

type fileResult struct {
	buf bytes.Buffer
	n   int
	err error
}

// searchFile scans a single file into w and returns the number of
// selected lines.
func (s *Searcher) searchFile(w io.Writer, path string) (int, error) {
	s.log.Debug("searching file", zap.String("path", path))
	f, err := openFile(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	name := ""
	if s.opts.WithFilename {
		name = path
	}
	n, err := s.searchReader(w, name, f)
	if err != nil {
		return 0, errors.Wrapf(err, "read %s", path)
	}
	return n, nil
}

// searchReader scans r line by line, writing selected lines to w.
// name is the source prefix; empty means no prefix.
func (s *Searcher) searchReader(w io.Writer, name string, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), s.opts.MaxLineLen)

	selected := 0
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Bytes()
		if s.re.Match(line) == s.opts.Invert {
			continue
		}
		selected++
		if s.opts.Count {
			continue
		}
		s.printLine(w, name, lineno, line)
	}
	if err := scanner.Err(); err != nil {
		return selected, err
	}
	if s.opts.Count {
		if name != "" {
			fmt.Fprintf(w, "%s:%d\n", name, selected)
		} else {
			fmt.Fprintf(w, "%d\n", selected)
		}
	}
	s.log.Debug("source done",
		zap.String("source", name),
		zap.Int("lines", lineno),
		zap.Int("selected", selected))
	return selected, nil
}

func (s *Searcher) printLine(w io.Writer, name string, lineno int, line []byte) {
	if name != "" {
		fmt.Fprintf(w, "%s:", name)
	}
	if s.opts.LineNumber {
		fmt.Fprintf(w, "%d:", lineno)
	}
	if s.opts.Color && !s.opts.Invert {
		if loc := s.re.FindIndex(line); loc != nil {
			w.Write(line[:loc[0]])
			io.WriteString(w, colorMatch)
			w.Write(line[loc[0]:loc[1]])
			io.WriteString(w, colorReset)
			w.Write(line[loc[1]:])
			io.WriteString(w, "\n")
			return
		}
	}
	w.Write(line)
	io.WriteString(w, "\n")
}
