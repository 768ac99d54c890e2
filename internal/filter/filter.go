// Package filter trims a normalized pull request record according to
// user configuration. Filtering is pure: no I/O, no failure modes.
// Pattern validity is a configuration concern settled before this
// package is invoked.
package filter

import (
	"regexp"

	"github.com/dshills/prdigest/internal/pr"
)

// Options controls record filtering.
type Options struct {
	// MaxFiles truncates the file list to the first N entries in
	// provider order. Zero means no truncation.
	MaxFiles int

	// Exclude drops any file whose full filename matches one of the
	// patterns. Applied after truncation; the order is significant.
	Exclude []*regexp.Regexp
}

// Compile builds Options from already-validated configuration values.
func Compile(maxFiles int, patterns []string) (Options, error) {
	opts := Options{MaxFiles: maxFiles}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return Options{}, err
		}
		opts.Exclude = append(opts.Exclude, re)
	}
	return opts, nil
}

// Apply returns a copy of the record with the file list truncated and
// then pattern-filtered, and the derived metadata recomputed from the
// filtered list. The input record is not modified. Applying the same
// options twice yields the same result as once.
func Apply(rec *pr.Record, opts Options) *pr.Record {
	files := rec.Files
	if opts.MaxFiles > 0 && len(files) > opts.MaxFiles {
		files = files[:opts.MaxFiles]
	}

	kept := make([]pr.FileChange, 0, len(files))
	for _, f := range files {
		if matchesAny(f.Filename, opts.Exclude) {
			continue
		}
		kept = append(kept, f)
	}

	out := *rec
	out.Files = kept
	out.Derived = pr.ComputeMetadata(kept, out.Commits, out.Reviews)
	return &out
}

func matchesAny(filename string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(filename) {
			return true
		}
	}
	return false
}
