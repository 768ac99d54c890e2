// Package output serializes analysis reports for persistence or
// machine consumption.
//
// Two report formats are supported:
//   - json     — the full structured report, verbatim
//   - markdown — a fixed-template document with overview, statistics,
//     findings sections, changed files and reviewers
//
// Use [GetWriter] to obtain a [Writer] for a format string, then call
// [Writer.Write] with an [io.Writer] and an [*analyze.Report].
// [WriteReport] handles destination selection (file path or stdout).
// [WritePrompt] emits the raw prompt-dump form instead of a report.
package output
