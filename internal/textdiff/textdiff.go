// Package textdiff renders unified diffs for file contents fetched at
// two refs. It fills in patches the provider omits.
package textdiff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const contextLines = 3

// Unified renders a unified diff between the base and head versions of
// a file. Either side may be nil, meaning the file does not exist at
// that ref. Returns "" when the contents are identical or the diff
// cannot be computed.
func Unified(filename string, base, head *string) string {
	var a, b string
	if base != nil {
		a = *base
	}
	if head != nil {
		b = *head
	}
	if a == b {
		return ""
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "a/" + filename,
		ToFile:   "b/" + filename,
		Context:  contextLines,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return ""
	}
	return strings.TrimRight(out, "\n")
}
