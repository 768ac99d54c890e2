// Package config resolves the prdigest configuration.
//
// The effective configuration merges, in increasing priority:
// built-in defaults, the nearest .prdigest.yaml marker file (found by
// walking from the working directory up to the filesystem root, with
// the user config directory as fallback), PRDIGEST_* environment
// variables, and CLI flag overrides.
//
// Validation happens at load time: exclusion patterns must compile and
// numeric limits must be sane before the pipeline ever runs.
package config
