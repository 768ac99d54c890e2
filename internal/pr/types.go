package pr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Ref identifies a pull request on the hosting provider.
type Ref struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Number int    `json:"number"`
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

// ParseRef builds a Ref from an "owner/repo" string and a PR number.
func ParseRef(repoSpec string, number int) (Ref, error) {
	parts := strings.Split(repoSpec, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Ref{}, Errorf(KindInvalidReference, "invalid repository %q, expected owner/repo", repoSpec)
	}
	if number <= 0 {
		return Ref{}, Errorf(KindInvalidReference, "invalid pull request number %d", number)
	}
	return Ref{Owner: parts[0], Repo: parts[1], Number: number}, nil
}

// prURLPattern matches GitHub PR URLs with an optional trailing path,
// e.g. https://github.com/owner/repo/pull/123/files.
var prURLPattern = regexp.MustCompile(`github\.com/([^/]+)/([^/]+)/pull/(\d+)(?:/.*)?$`)

// ParseURL extracts a Ref from a GitHub pull request URL.
func ParseURL(url string) (Ref, error) {
	m := prURLPattern.FindStringSubmatch(url)
	if len(m) != 4 {
		return Ref{}, Errorf(KindInvalidReference, "invalid pull request URL %q, expected https://github.com/owner/repo/pull/123", url)
	}
	number, err := strconv.Atoi(m[3])
	if err != nil {
		return Ref{}, Errorf(KindInvalidReference, "invalid pull request number %q", m[3])
	}
	return ParseRef(m[1]+"/"+m[2], number)
}

// Metadata holds the PR-level fields sourced once per run.
type Metadata struct {
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	Author     string `json:"author"`
	BaseBranch string `json:"baseBranch"`
	HeadBranch string `json:"headBranch"`
	BaseSHA    string `json:"baseSha"`
	HeadSHA    string `json:"headSha"`
}

// FileStatus is the provider-reported change status of a file.
type FileStatus string

const (
	StatusAdded    FileStatus = "added"
	StatusModified FileStatus = "modified"
	StatusRemoved  FileStatus = "removed"
	StatusRenamed  FileStatus = "renamed"
)

// FileChange describes one changed file. Filename is unique within a
// snapshot. BaseContent/HeadContent are nil when the file does not
// exist at that ref (new and deleted files are expected to be
// one-sided). Patch is empty for binary files.
type FileChange struct {
	Filename    string     `json:"filename"`
	Status      FileStatus `json:"status"`
	Additions   int        `json:"additions"`
	Deletions   int        `json:"deletions"`
	Patch       string     `json:"patch,omitempty"`
	BaseContent *string    `json:"baseContent,omitempty"`
	HeadContent *string    `json:"headContent,omitempty"`
}

// Commit is one commit on the PR branch, in provider order.
type Commit struct {
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	AuthoredAt time.Time `json:"authoredAt"`
}

// Review is one submitted PR review.
type Review struct {
	Reviewer string `json:"reviewer"`
	State    string `json:"state"`
}

// AnalysisMetadata holds aggregates derived from the file, commit and
// review lists. It must be recomputed whenever those lists change.
type AnalysisMetadata struct {
	TotalFiles   int      `json:"totalFiles"`
	TotalCommits int      `json:"totalCommits"`
	TotalReviews int      `json:"totalReviews"`
	Additions    int      `json:"additions"`
	Deletions    int      `json:"deletions"`
	ChangedFiles []string `json:"changedFiles"`
	Reviewers    []string `json:"reviewers"`
}

// Record is the normalized snapshot of a pull request, the sole
// artifact the aggregation pipeline produces.
type Record struct {
	Ref      Ref              `json:"ref"`
	Metadata Metadata         `json:"metadata"`
	Files    []FileChange     `json:"files"`
	Commits  []Commit         `json:"commits"`
	Reviews  []Review         `json:"reviews"`
	Derived  AnalysisMetadata `json:"derived"`
}

// ComputeMetadata derives aggregates from the current lists. Reviewers
// are deduplicated by handle; insertion order is preserved but carries
// no meaning.
func ComputeMetadata(files []FileChange, commits []Commit, reviews []Review) AnalysisMetadata {
	m := AnalysisMetadata{
		TotalFiles:   len(files),
		TotalCommits: len(commits),
		TotalReviews: len(reviews),
		ChangedFiles: make([]string, 0, len(files)),
	}
	for _, f := range files {
		m.Additions += f.Additions
		m.Deletions += f.Deletions
		m.ChangedFiles = append(m.ChangedFiles, f.Filename)
	}
	seen := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.Reviewer]; ok {
			continue
		}
		seen[r.Reviewer] = struct{}{}
		m.Reviewers = append(m.Reviewers, r.Reviewer)
	}
	return m
}
