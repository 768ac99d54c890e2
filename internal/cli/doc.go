// Package cli implements the prdigest command tree: analyze, config,
// and version. Commands map classified pipeline errors onto
// deterministic exit codes suitable for CI gating.
package cli
