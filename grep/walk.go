package grep

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// collect expands the path arguments into the list of files to
// search. Directories are walked only in recursive mode; hidden
// directories are skipped during the walk, matching the usual grep -r
// behavior. Problems are returned as a failure list rather than
// aborting, so the remaining sources still get searched.
func (s *Searcher) collect(paths []string) (files []string, failures []error) {
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			failures = append(failures, errors.Wrapf(err, "stat %s", path))
			continue
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		if !s.opts.Recursive {
			failures = append(failures, errors.Errorf("%s: is a directory", path))
			continue
		}
		walked, walkFailures := s.walk(path)
		files = append(files, walked...)
		failures = append(failures, walkFailures...)
	}
	return files, failures
}

// walk descends into root, collecting regular files.
func (s *Searcher) walk(root string) (files []string, failures []error) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			failures = append(failures, errors.Wrapf(err, "walk %s", path))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				s.log.Debug("skipping hidden directory", zap.String("path", path))
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		failures = append(failures, errors.Wrapf(err, "walk %s", root))
	}
	return files, failures
}

// openFile opens a path for searching with a uniform error form.
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	return f, nil
}
