// Package pr defines the pull request data model shared by the fetch
// pipeline: references, metadata, file changes, commits, reviews, the
// normalized record, and the error taxonomy used across the pipeline.
package pr
