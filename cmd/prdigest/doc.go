// Prdigest is a CLI that aggregates a GitHub pull request's full state
// into a normalized snapshot and emits analysis reports.
//
// It fetches metadata, changed files with before and after content,
// commits, and reviews concurrently, applies configurable filtering,
// and renders the result as Markdown, JSON, or an analysis prompt dump
// with deterministic exit codes suitable for CI gating.
//
// Usage:
//
//	prdigest analyze octocat/hello-world 42        # markdown report to stdout
//	prdigest analyze octocat/hello-world#42 --format json
//	prdigest analyze https://github.com/octocat/hello-world/pull/42 --prompt
//	prdigest config init                           # create a user config file
//
// See https://github.com/dshills/prdigest for full documentation.
package main
