// Package scan lists the documents currently in scope for a project.
package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"

	"github.com/starford/docbrief/internal/apperr"
)

// DefaultMaxFiles caps the scan result when configuration leaves it unset.
const DefaultMaxFiles = 200

// Options configures a Scanner. Glob patterns use doublestar syntax and are
// matched against slash-separated paths relative to InputDir.
type Options struct {
	InputDir string
	Include  []string
	Exclude  []string
	// FilenameRegex keeps files whose base name matches any expression.
	// Empty keeps everything.
	FilenameRegex []*regexp.Regexp
	MaxFiles      int
	// IgnoreFile names a gitignore-syntax file inside InputDir. A missing
	// file is not an error.
	IgnoreFile string
}

// Scanner resolves Options against the file system.
type Scanner struct {
	opts   Options
	logger *slog.Logger
}

// New validates the glob patterns and returns a Scanner.
func New(opts Options, logger *slog.Logger) (*Scanner, error) {
	for _, p := range slices.Concat(opts.Include, opts.Exclude) {
		if !doublestar.ValidatePattern(p) {
			return nil, apperr.Configuration("scan: invalid glob pattern %q", p)
		}
	}
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = DefaultMaxFiles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{opts: opts, logger: logger.With(slog.String("component", "scan"))}, nil
}

// Scan returns the matched document paths, sorted by path components,
// de-duplicated and capped at MaxFiles. Each path is InputDir joined with the
// file's relative path; this string is the document identity.
func (s *Scanner) Scan() ([]string, error) {
	root := s.opts.InputDir
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperr.IO("scan: input dir", err)
	}
	if !info.IsDir() {
		return nil, apperr.IO("scan: input dir", fmt.Errorf("%s is not a directory", root))
	}

	fsys := os.DirFS(root)
	seen := map[string]struct{}{}
	for _, pattern := range s.opts.Include {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, apperr.IO("scan: glob "+pattern, err)
		}
		for _, m := range matches {
			seen[m] = struct{}{}
		}
	}

	ignore := s.loadIgnore()

	var rels []string
	for rel := range seen {
		if s.excluded(rel) {
			continue
		}
		if ignored(ignore, rel) {
			continue
		}
		if !s.nameMatches(path.Base(rel)) {
			continue
		}
		// Skip-and-continue: a file may vanish or be replaced between the
		// glob and this check. It is simply not part of the current scan.
		fi, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			s.logger.Debug("skipping unreadable match", slog.String("path", rel), slog.String("reason", err.Error()))
			continue
		}
		if !fi.Mode().IsRegular() {
			s.logger.Debug("skipping non-regular match", slog.String("path", rel), slog.String("reason", fi.Mode().String()))
			continue
		}
		rels = append(rels, rel)
	}

	slices.SortFunc(rels, func(a, b string) int {
		return slices.Compare(strings.Split(a, "/"), strings.Split(b, "/"))
	})
	if len(rels) > s.opts.MaxFiles {
		rels = rels[:s.opts.MaxFiles]
	}

	out := make([]string, len(rels))
	for i, rel := range rels {
		out[i] = filepath.Join(root, filepath.FromSlash(rel))
	}
	return out, nil
}

func (s *Scanner) excluded(rel string) bool {
	for _, p := range s.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

func (s *Scanner) nameMatches(name string) bool {
	if len(s.opts.FilenameRegex) == 0 {
		return true
	}
	for _, re := range s.opts.FilenameRegex {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// ignored reports whether rel or any of its parent directories is ignored.
func ignored(gi gitignore.GitIgnore, rel string) bool {
	if gi == nil {
		return false
	}
	if m := gi.Relative(rel, false); m != nil && m.Ignore() {
		return true
	}
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		if m := gi.Relative(dir, true); m != nil && m.Ignore() {
			return true
		}
	}
	return false
}

// loadIgnore parses the ignore file. A missing file yields nil; an unreadable
// one is logged and ignored so that the scan still reflects include/exclude.
func (s *Scanner) loadIgnore() gitignore.GitIgnore {
	if s.opts.IgnoreFile == "" {
		return nil
	}
	p := filepath.Join(s.opts.InputDir, s.opts.IgnoreFile)
	f, err := os.Open(p)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("ignore file unreadable", slog.String("path", p), slog.String("error", err.Error()))
		}
		return nil
	}
	defer f.Close()
	return gitignore.New(f, s.opts.InputDir, nil)
}
