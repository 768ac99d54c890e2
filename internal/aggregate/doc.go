// Package aggregate assembles a consistent snapshot of a pull request
// from the provider's independent endpoints. The four top-level
// queries run in parallel with fail-fast semantics; per-file content
// is fetched through a bounded pool and merged back by filename.
package aggregate
